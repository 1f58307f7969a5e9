package authz

// Rule lists the roles that grant an action, per scope. The organization
// set is consulted first (no team lookup needed); the team set applies to
// the user's role in the project's owning team.
type Rule struct {
	Org  []Role
	Team []Role
}

// OrgGrants reports whether the organization role grants the action
func (r Rule) OrgGrants(role Role) bool {
	return containsRole(r.Org, role)
}

// TeamGrants reports whether the team role grants the action
func (r Rule) TeamGrants(role Role) bool {
	return containsRole(r.Team, role)
}

func containsRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// Policy is the immutable role/action permission table
type Policy struct {
	rules map[Action]Rule
}

// DefaultPolicy returns the standard permission table. The whole matrix is
// expressed here so it can be reviewed and tested as one unit.
//
// The manage row is deliberately asymmetric: org admin grants write but not
// manage, so organization admins can modify projects without being able to
// delete or transfer them.
func DefaultPolicy() Policy {
	return Policy{
		rules: map[Action]Rule{
			ActionRead: {
				Org:  []Role{RoleAdmin, RoleOwner},
				Team: []Role{RoleViewer, RoleMember, RoleAdmin, RoleOwner},
			},
			ActionWrite: {
				Org:  []Role{RoleAdmin, RoleOwner},
				Team: []Role{RoleAdmin, RoleOwner},
			},
			ActionManage: {
				Org:  []Role{RoleOwner},
				Team: []Role{RoleOwner},
			},
		},
	}
}

// Rule returns the rule for an action
func (p Policy) Rule(action Action) (Rule, bool) {
	rule, ok := p.rules[action]
	return rule, ok
}
