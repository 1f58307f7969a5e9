package authz

import (
	"context"
	"testing"
)

func newTestEvaluator(store *fakeStore) *Evaluator {
	logger := quietLogger()
	loader := NewContextLoader(store, logger, 0, 0, nil)
	return NewEvaluator(store, loader, logger)
}

func TestEvaluatePreconditions(t *testing.T) {
	e := newTestEvaluator(fixtureStore())
	active := &Project{ID: "p", TeamID: "team-1", OrganizationID: "org-1", IsActive: true}

	t.Run("nil context denies", func(t *testing.T) {
		d := e.Evaluate(nil, active, ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonUserNotFound {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("inactive user denies", func(t *testing.T) {
		ctx := memberContext("org-1", RoleOwner, map[string]Role{"team-1": RoleOwner})
		ctx.IsActive = false
		d := e.Evaluate(ctx, active, ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonUserInactive {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("nil project denies", func(t *testing.T) {
		d := e.Evaluate(memberContext("org-1", RoleOwner, nil), nil, ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonProjectNotFound {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("inactive project denies every role", func(t *testing.T) {
		frozen := &Project{ID: "p", TeamID: "team-1", OrganizationID: "org-1", IsActive: false}
		ctx := memberContext("org-1", RoleOwner, map[string]Role{"team-1": RoleOwner})
		d := e.Evaluate(ctx, frozen, ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonProjectInactive {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("unknown action denies", func(t *testing.T) {
		ctx := memberContext("org-1", RoleOwner, nil)
		d := e.Evaluate(ctx, active, Action("destroy"))
		if d.Allowed() || d.DenialReason() != ReasonInvalidAction {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})
}

// Cross-tenant isolation is unconditional: even an organization owner is
// denied on another organization's project, for every action.
func TestEvaluateOrganizationIsolation(t *testing.T) {
	e := newTestEvaluator(fixtureStore())
	foreign := &Project{ID: "proj-2", TeamID: "team-2", OrganizationID: "org-2", IsActive: true}

	// Team role deliberately matches the foreign project's team id to prove
	// the isolation check runs before any role comparison.
	ctx := memberContext("org-1", RoleOwner, map[string]Role{"team-2": RoleOwner})

	for _, action := range []Action{ActionRead, ActionWrite, ActionManage} {
		d := e.Evaluate(ctx, foreign, action)
		if d.Allowed() {
			t.Errorf("%s: cross-organization access granted", action)
		}
		if d.DenialReason() != ReasonWrongOrganization {
			t.Errorf("%s: reason = %s, want %s", action, d.DenialReason(), ReasonWrongOrganization)
		}
	}
}

func TestEvaluateRoleMatrix(t *testing.T) {
	e := newTestEvaluator(fixtureStore())
	project := &Project{ID: "proj-1", TeamID: "team-1", OrganizationID: "org-1", IsActive: true}

	tests := []struct {
		name      string
		orgRole   Role
		teamRoles map[string]Role
		action    Action
		allowed   bool
		reason    Reason
		grantedBy Role
	}{
		{"org viewer no team read", RoleViewer, nil, ActionRead, false, ReasonNotTeamMember, ""},
		{"org member no team read", RoleMember, nil, ActionRead, false, ReasonNotTeamMember, ""},
		{"org admin no team read", RoleAdmin, nil, ActionRead, true, "", RoleAdmin},
		{"org owner no team read", RoleOwner, nil, ActionRead, true, "", RoleOwner},
		{"team viewer read", RoleViewer, map[string]Role{"team-1": RoleViewer}, ActionRead, true, "", RoleViewer},
		{"team member write denied", RoleViewer, map[string]Role{"team-1": RoleMember}, ActionWrite, false, ReasonInsufficientRole, ""},
		{"team admin write", RoleViewer, map[string]Role{"team-1": RoleAdmin}, ActionWrite, true, "", RoleAdmin},
		{"team admin manage denied", RoleViewer, map[string]Role{"team-1": RoleAdmin}, ActionManage, false, ReasonInsufficientRole, ""},
		{"team owner manage", RoleMember, map[string]Role{"team-1": RoleOwner}, ActionManage, true, "", RoleOwner},
		{"org admin manage denied", RoleAdmin, nil, ActionManage, false, ReasonNotTeamMember, ""},
		{"org owner manage", RoleOwner, nil, ActionManage, true, "", RoleOwner},
		{"other team membership does not count", RoleViewer, map[string]Role{"team-9": RoleOwner}, ActionRead, false, ReasonNotTeamMember, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := memberContext("org-1", tt.orgRole, tt.teamRoles)
			d := e.Evaluate(ctx, project, tt.action)
			if d.Allowed() != tt.allowed {
				t.Fatalf("allowed = %v, want %v (reason %s)", d.Allowed(), tt.allowed, d.DenialReason())
			}
			if !tt.allowed && d.DenialReason() != tt.reason {
				t.Errorf("reason = %s, want %s", d.DenialReason(), tt.reason)
			}
			if tt.allowed && d.GrantedBy() != tt.grantedBy {
				t.Errorf("granted by = %s, want %s", d.GrantedBy(), tt.grantedBy)
			}
		})
	}
}

// An organization admin with no team membership can write but not manage.
// This asymmetry keeps delete/transfer with owners and must hold exactly.
func TestEvaluateManageAsymmetry(t *testing.T) {
	e := newTestEvaluator(fixtureStore())
	project := &Project{ID: "proj-1", TeamID: "team-1", OrganizationID: "org-1", IsActive: true}
	ctx := memberContext("org-1", RoleAdmin, nil)

	if d := e.Evaluate(ctx, project, ActionRead); !d.Allowed() {
		t.Errorf("org admin read denied: %s", d.DenialReason())
	}
	if d := e.Evaluate(ctx, project, ActionWrite); !d.Allowed() {
		t.Errorf("org admin write denied: %s", d.DenialReason())
	}
	d := e.Evaluate(ctx, project, ActionManage)
	if d.Allowed() {
		t.Error("org admin manage must be denied")
	}
	if d.DenialReason() != ReasonNotTeamMember {
		t.Errorf("manage denial reason = %s, want %s", d.DenialReason(), ReasonNotTeamMember)
	}
	if d.DenialReason().Message() == "" {
		t.Error("denial must carry a human-readable message")
	}
}

// A team owner manages their team's projects regardless of a low org role.
func TestEvaluateTeamOwnerManages(t *testing.T) {
	e := newTestEvaluator(fixtureStore())
	project := &Project{ID: "proj-1", TeamID: "team-1", OrganizationID: "org-1", IsActive: true}
	ctx := memberContext("org-1", RoleMember, map[string]Role{"team-1": RoleOwner})

	d := e.Evaluate(ctx, project, ActionManage)
	if !d.Allowed() {
		t.Fatalf("team owner manage denied: %s", d.DenialReason())
	}
	if d.GrantedBy() != RoleOwner {
		t.Errorf("granted by = %s, want %s", d.GrantedBy(), RoleOwner)
	}
}

func TestCheckEndToEnd(t *testing.T) {
	store := fixtureStore()
	store.users["u-1"] = &User{ID: "u-1", OrganizationID: "org-1", Role: RoleAdmin, IsActive: true}
	store.memberships["u-1"] = nil
	e := newTestEvaluator(store)

	ctx := context.Background()

	if d := e.Check(ctx, "u-1", "proj-1", ActionWrite); !d.Allowed() {
		t.Errorf("expected allow, got %s", d.DenialReason())
	}
	if d := e.Check(ctx, "u-1", "proj-1", ActionManage); d.Allowed() {
		t.Error("expected deny for manage")
	}
	if d := e.Check(ctx, "u-1", "missing", ActionRead); d.DenialReason() != ReasonProjectNotFound {
		t.Errorf("reason = %s, want %s", d.DenialReason(), ReasonProjectNotFound)
	}
	if d := e.Check(ctx, "ghost", "proj-1", ActionRead); d.DenialReason() != ReasonUserNotFound {
		t.Errorf("reason = %s, want %s", d.DenialReason(), ReasonUserNotFound)
	}
}

func TestCheckInactiveUserDenied(t *testing.T) {
	store := fixtureStore()
	store.users["u-frozen"] = &User{ID: "u-frozen", OrganizationID: "org-1", Role: RoleOwner, IsActive: false}
	e := newTestEvaluator(store)

	d := e.Check(context.Background(), "u-frozen", "proj-1", ActionRead)
	if d.Allowed() {
		t.Fatal("inactive user granted access")
	}
	if d.DenialReason() != ReasonUserNotFound {
		t.Errorf("reason = %s, want %s", d.DenialReason(), ReasonUserNotFound)
	}
}

// Store faults at any query become internal_error denials, never a panic
// and never a grant.
func TestCheckFailsClosedOnStoreFault(t *testing.T) {
	t.Run("user query fault", func(t *testing.T) {
		store := fixtureStore()
		store.users["u-1"] = &User{ID: "u-1", OrganizationID: "org-1", Role: RoleOwner, IsActive: true}
		store.failUser = true
		e := newTestEvaluator(store)

		d := e.Check(context.Background(), "u-1", "proj-1", ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonInternalError {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("membership query fault", func(t *testing.T) {
		store := fixtureStore()
		store.users["u-1"] = &User{ID: "u-1", OrganizationID: "org-1", Role: RoleOwner, IsActive: true}
		store.failMemberships = true
		e := newTestEvaluator(store)

		d := e.Check(context.Background(), "u-1", "proj-1", ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonInternalError {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})

	t.Run("project query fault", func(t *testing.T) {
		store := fixtureStore()
		store.users["u-1"] = &User{ID: "u-1", OrganizationID: "org-1", Role: RoleOwner, IsActive: true}
		store.failProject = true
		e := newTestEvaluator(store)

		d := e.Check(context.Background(), "u-1", "proj-1", ActionRead)
		if d.Allowed() || d.DenialReason() != ReasonInternalError {
			t.Errorf("got %v/%v", d.Allowed(), d.DenialReason())
		}
	})
}

func TestDecisionShape(t *testing.T) {
	allow := Allow(RoleAdmin)
	if !allow.Allowed() || allow.GrantedBy() != RoleAdmin || allow.DenialReason() != "" {
		t.Error("allow decision malformed")
	}
	if allow.Outcome() != "allowed" {
		t.Errorf("outcome = %s", allow.Outcome())
	}

	deny := Deny(ReasonNotTeamMember)
	if deny.Allowed() || deny.DenialReason() != ReasonNotTeamMember || deny.GrantedBy() != "" {
		t.Error("deny decision malformed")
	}
	if deny.Outcome() != "denied" {
		t.Errorf("outcome = %s", deny.Outcome())
	}
}
