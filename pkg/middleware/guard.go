package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/contextkeys"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/observability"
)

// AccessChecker decides whether a user may perform an action on a project
type AccessChecker interface {
	Check(ctx context.Context, userID, projectID string, action authz.Action) authz.Decision
}

// DecisionHook observes every decision the guard makes, for audit trails.
// It runs after the decision and must not block.
type DecisionHook func(ctx context.Context, userID, projectID string, action authz.Action, d authz.Decision)

// Guard authorizes requests against the project named in the route
type Guard struct {
	checker AccessChecker
	logger  *observability.Logger
	metrics *observability.Metrics
	hook    DecisionHook
}

// NewGuard creates the authorization middleware. hook may be nil.
func NewGuard(checker AccessChecker, logger *observability.Logger, metrics *observability.Metrics, hook DecisionHook) *Guard {
	return &Guard{
		checker: checker,
		logger:  logger,
		metrics: metrics,
		hook:    hook,
	}
}

// Require wraps a handler so it only runs when the authenticated caller
// may perform the action on the {project_id} route variable. It must sit
// behind the Authenticator.
func (g *Guard) Require(action authz.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := GetIdentity(r)
			if identity == nil {
				// Route wired without the Authenticator in front
				httputil.WriteUnauthorized(w, "authentication required", "invalid_credential")
				return
			}

			projectID := mux.Vars(r)["project_id"]
			if projectID == "" {
				httputil.WriteBadRequest(w, "missing path parameter: project_id")
				return
			}

			start := time.Now()
			decision := g.checker.Check(r.Context(), identity.UserID, projectID, action)
			g.metrics.RecordDecision(string(action), decision.Outcome(), string(decision.DenialReason()), time.Since(start))
			if g.hook != nil {
				g.hook(r.Context(), identity.UserID, projectID, action, decision)
			}

			if !decision.Allowed() {
				g.deny(w, r, identity.UserID, projectID, action, decision)
				return
			}

			ctx := contextkeys.WithGrantedRole(r.Context(), string(decision.GrantedBy()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (g *Guard) deny(w http.ResponseWriter, r *http.Request, userID, projectID string, action authz.Action, d authz.Decision) {
	reason := d.DenialReason()

	g.logger.WithFields(map[string]interface{}{
		"user_id":    userID,
		"project_id": projectID,
		"action":     string(action),
		"reason":     string(reason),
		"request_id": contextkeys.GetRequestID(r.Context()),
	}).Info("access denied")

	switch reason {
	case authz.ReasonProjectNotFound, authz.ReasonProjectInactive:
		// Both map to 404 so callers cannot probe for frozen projects
		httputil.WriteNotFound(w, authz.ReasonProjectNotFound.Message())
	case authz.ReasonInternalError:
		httputil.WriteInternalError(w)
	default:
		httputil.WriteForbidden(w, "access denied", string(reason))
	}
}
