package authz

// Reason identifies why a decision denied access. Reasons are short,
// user-facing codes; internal error detail is logged, never returned.
type Reason string

const (
	ReasonUserNotFound      Reason = "user_not_found"
	ReasonUserInactive      Reason = "user_inactive"
	ReasonProjectNotFound   Reason = "project_not_found"
	ReasonProjectInactive   Reason = "project_inactive"
	ReasonWrongOrganization Reason = "wrong_organization"
	ReasonNotTeamMember     Reason = "not_team_member"
	ReasonInsufficientRole  Reason = "insufficient_role"
	ReasonInvalidAction     Reason = "invalid_action"
	ReasonInternalError     Reason = "internal_error"
)

var reasonMessages = map[Reason]string{
	ReasonUserNotFound:      "user not found",
	ReasonUserInactive:      "user account is deactivated",
	ReasonProjectNotFound:   "project not found",
	ReasonProjectInactive:   "project is inactive",
	ReasonWrongOrganization: "project belongs to a different organization",
	ReasonNotTeamMember:     "not a member of the project's team",
	ReasonInsufficientRole:  "role does not permit this action",
	ReasonInvalidAction:     "unknown action",
	ReasonInternalError:     "authorization check failed",
}

// Message returns the human-readable text for the reason
func (r Reason) Message() string {
	if msg, ok := reasonMessages[r]; ok {
		return msg
	}
	return string(r)
}

// Decision is the outcome of an authorization check. It is a closed
// allow/deny pair: construct it with Allow or Deny only. A denied decision
// always carries a reason; an allowed decision always carries the role
// that granted it.
type Decision struct {
	allowed bool
	role    Role
	reason  Reason
}

// Allow returns a granting decision carrying the effective role
func Allow(role Role) Decision {
	return Decision{allowed: true, role: role}
}

// Deny returns a denying decision carrying the reason
func Deny(reason Reason) Decision {
	return Decision{reason: reason}
}

// Allowed reports whether access was granted
func (d Decision) Allowed() bool {
	return d.allowed
}

// GrantedBy returns the role that granted access, empty when denied
func (d Decision) GrantedBy() Role {
	if !d.allowed {
		return ""
	}
	return d.role
}

// DenialReason returns the denial reason, empty when allowed
func (d Decision) DenialReason() Reason {
	if d.allowed {
		return ""
	}
	return d.reason
}

// Outcome returns "allowed" or "denied", for logs and metrics
func (d Decision) Outcome() string {
	if d.allowed {
		return "allowed"
	}
	return "denied"
}
