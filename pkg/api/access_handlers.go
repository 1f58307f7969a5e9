package api

import (
	"net/http"

	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/middleware"
)

// maxBatchSize bounds a single batch request; larger sets should page
const maxBatchSize = 1000

// CheckResponse is the body of a single access check
type CheckResponse struct {
	Allowed bool   `json:"allowed"`
	Role    string `json:"role,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// BatchCheckRequest asks which of the named projects the caller can read
type BatchCheckRequest struct {
	ProjectIDs []string `json:"project_ids"`
}

// BatchCheckResponse answers every requested project id
type BatchCheckResponse struct {
	Results map[string]bool `json:"results"`
}

// checkAccess reports a single decision. Denials are data here, not
// errors: a denied check is a successful 200 response.
func (s *Server) checkAccess(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	projectID := httputil.ParseQueryString(r, "project_id", "")
	if projectID == "" {
		httputil.WriteBadRequest(w, "project_id is required")
		return
	}

	action, err := authz.ParseAction(httputil.ParseQueryString(r, "action", string(authz.ActionRead)))
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	decision := s.checker.Check(r.Context(), identity.UserID, projectID, action)
	s.recorder.Record(r.Context(), audit.DecisionEvent(r.Context(), identity.UserID, projectID, action, decision))

	if decision.DenialReason() == authz.ReasonInternalError {
		httputil.WriteInternalError(w)
		return
	}

	httputil.WriteSuccess(w, CheckResponse{
		Allowed: decision.Allowed(),
		Role:    string(decision.GrantedBy()),
		Reason:  string(decision.DenialReason()),
	})
}

// batchCheck filters a set of project ids down to the readable ones. The
// response answers every requested id; absent records simply come back
// false.
func (s *Server) batchCheck(w http.ResponseWriter, r *http.Request) {
	identity := middleware.GetIdentity(r)

	var req BatchCheckRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if len(req.ProjectIDs) > maxBatchSize {
		httputil.WriteBadRequest(w, "too many project ids in one request")
		return
	}

	results := s.batch.CanRead(r.Context(), identity.UserID, req.ProjectIDs)

	allowed := 0
	for _, ok := range results {
		if ok {
			allowed++
		}
	}
	s.recorder.Record(r.Context(), audit.BatchDecisionEvent(r.Context(), identity.UserID, len(req.ProjectIDs), allowed))

	httputil.WriteSuccess(w, BatchCheckResponse{Results: results})
}
