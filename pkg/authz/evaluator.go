package authz

import (
	"context"

	"github.com/wardenhq/warden/pkg/observability"
)

// Evaluator applies the policy table to auth contexts, projects and
// actions. It never returns an error and never panics across its boundary:
// any failure becomes a denial.
type Evaluator struct {
	store  PolicyStore
	loader *ContextLoader
	policy Policy
	logger *observability.Logger
}

// NewEvaluator creates an evaluator using the default policy table
func NewEvaluator(store PolicyStore, loader *ContextLoader, logger *observability.Logger) *Evaluator {
	return &Evaluator{
		store:  store,
		loader: loader,
		policy: DefaultPolicy(),
		logger: logger,
	}
}

// Evaluate applies the policy to an already-loaded context. It performs no
// I/O. Precondition order is significant: the organization-isolation check
// runs before any role comparison, so identical role names across tenants
// can never grant access.
func (e *Evaluator) Evaluate(authCtx *AuthContext, project *Project, action Action) Decision {
	if authCtx == nil {
		return Deny(ReasonUserNotFound)
	}
	if !authCtx.IsActive {
		return Deny(ReasonUserInactive)
	}
	if project == nil {
		return Deny(ReasonProjectNotFound)
	}
	if !project.IsActive {
		return Deny(ReasonProjectInactive)
	}
	if project.OrganizationID != authCtx.OrganizationID {
		return Deny(ReasonWrongOrganization)
	}

	rule, ok := e.policy.Rule(action)
	if !ok {
		return Deny(ReasonInvalidAction)
	}

	if rule.OrgGrants(authCtx.OrganizationRole) {
		return Allow(authCtx.OrganizationRole)
	}

	teamRole, member := authCtx.TeamRole(project.TeamID)
	if !member {
		return Deny(ReasonNotTeamMember)
	}
	if rule.TeamGrants(teamRole) {
		return Allow(teamRole)
	}
	return Deny(ReasonInsufficientRole)
}

// Check resolves the user's context and the project, then evaluates. Store
// failures are logged and converted to internal_error denials.
func (e *Evaluator) Check(ctx context.Context, userID, projectID string, action Action) (d Decision) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithField("panic", r).Error("authorization check panicked")
			d = Deny(ReasonInternalError)
		}
	}()

	authCtx, err := e.loader.Load(ctx, userID)
	if err != nil {
		e.logger.WithError(err).WithField("user_id", userID).Error("auth context load failed")
		return Deny(ReasonInternalError)
	}

	project, err := e.store.GetProject(ctx, projectID)
	if err != nil {
		e.logger.WithError(err).WithField("project_id", projectID).Error("project fetch failed")
		return Deny(ReasonInternalError)
	}

	return e.Evaluate(authCtx, project, action)
}
