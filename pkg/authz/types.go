package authz

import (
	"fmt"
	"time"
)

// Role is a privilege level with a total order. The same set is used at
// organization and team scope, but the two scopes are independent: a user's
// organization role says nothing about their role inside any team.
type Role string

const (
	RoleViewer Role = "viewer"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
	RoleOwner  Role = "owner"
)

// roleRank orders roles for comparisons. Unknown roles rank below every
// valid role so they never satisfy a minimum.
var roleRank = map[Role]int{
	RoleViewer: 1,
	RoleMember: 2,
	RoleAdmin:  3,
	RoleOwner:  4,
}

// Valid reports whether the role is a known role
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// AtLeast reports whether the role ranks at or above min
func (r Role) AtLeast(min Role) bool {
	return roleRank[r] >= roleRank[min] && roleRank[r] > 0
}

// ParseRole parses a role name
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Action is an operation on a project, ordered by required privilege
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionManage Action = "manage"
)

// Valid reports whether the action is a known action
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionManage:
		return true
	}
	return false
}

// ParseAction parses an action name
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// User is a user record as read from the policy store
type User struct {
	ID             string
	Email          string
	OrganizationID string
	Role           Role
	IsActive       bool
}

// TeamMembership is a user's role within one team
type TeamMembership struct {
	TeamID string
	Role   Role
}

// Project is a project record as read from the policy store. OrganizationID
// is derived through the owning team; the store resolves the join.
type Project struct {
	ID             string
	TeamID         string
	OrganizationID string
	IsActive       bool
}

// AuthContext is the resolved snapshot of a user's roles and memberships
// used for a single authorization decision. It is built fresh (or served
// from the TTL cache) and never mutated after construction.
type AuthContext struct {
	UserID           string
	OrganizationID   string
	OrganizationRole Role
	TeamRoles        map[string]Role
	IsActive         bool
	LoadedAt         time.Time
}

// TeamRole returns the user's role in the given team, if any
func (c *AuthContext) TeamRole(teamID string) (Role, bool) {
	role, ok := c.TeamRoles[teamID]
	return role, ok
}
