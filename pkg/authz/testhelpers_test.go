package authz

import (
	"context"
	"errors"
	"io"

	"github.com/wardenhq/warden/pkg/observability"
)

var errStoreDown = errors.New("store unavailable")

// fakeStore is an in-memory PolicyStore with per-query fault injection and
// call counting.
type fakeStore struct {
	users       map[string]*User
	memberships map[string][]TeamMembership
	projects    map[string]*Project

	failUser        bool
	failMemberships bool
	failProject     bool
	failProjects    bool

	calls map[string]int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:       make(map[string]*User),
		memberships: make(map[string][]TeamMembership),
		projects:    make(map[string]*Project),
		calls:       make(map[string]int),
	}
}

func (s *fakeStore) GetUser(ctx context.Context, userID string) (*User, error) {
	s.calls["GetUser"]++
	if s.failUser {
		return nil, errStoreDown
	}
	return s.users[userID], nil
}

func (s *fakeStore) GetTeamMemberships(ctx context.Context, userID string) ([]TeamMembership, error) {
	s.calls["GetTeamMemberships"]++
	if s.failMemberships {
		return nil, errStoreDown
	}
	return s.memberships[userID], nil
}

func (s *fakeStore) GetProject(ctx context.Context, projectID string) (*Project, error) {
	s.calls["GetProject"]++
	if s.failProject {
		return nil, errStoreDown
	}
	return s.projects[projectID], nil
}

func (s *fakeStore) GetProjects(ctx context.Context, projectIDs []string) ([]Project, error) {
	s.calls["GetProjects"]++
	if s.failProjects {
		return nil, errStoreDown
	}
	var out []Project
	for _, id := range projectIDs {
		if p, ok := s.projects[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func quietLogger() *observability.Logger {
	return observability.NewLogger(observability.ErrorLevel, io.Discard)
}

// fixtureStore builds the standard two-organization fixture used across
// the evaluator and batch tests:
//
//	org-1: team-1 owns proj-1 (active) and proj-frozen (inactive)
//	org-2: team-2 owns proj-2 (active)
func fixtureStore() *fakeStore {
	s := newFakeStore()
	s.projects["proj-1"] = &Project{ID: "proj-1", TeamID: "team-1", OrganizationID: "org-1", IsActive: true}
	s.projects["proj-frozen"] = &Project{ID: "proj-frozen", TeamID: "team-1", OrganizationID: "org-1", IsActive: false}
	s.projects["proj-2"] = &Project{ID: "proj-2", TeamID: "team-2", OrganizationID: "org-2", IsActive: true}
	return s
}

func memberContext(orgID string, orgRole Role, teamRoles map[string]Role) *AuthContext {
	if teamRoles == nil {
		teamRoles = map[string]Role{}
	}
	return &AuthContext{
		UserID:           "u-test",
		OrganizationID:   orgID,
		OrganizationRole: orgRole,
		TeamRoles:        teamRoles,
		IsActive:         true,
	}
}
