package authz

import "context"

// PolicyStore is the read-only data access surface the authorization core
// depends on. Implementations return (nil, nil) for absent records and must
// contain no policy logic of their own; every access rule lives in this
// package so there is exactly one implementation of the rules.
type PolicyStore interface {
	// GetUser returns the user record, or nil when no such user exists
	GetUser(ctx context.Context, userID string) (*User, error)

	// GetTeamMemberships returns all team memberships for the user
	GetTeamMemberships(ctx context.Context, userID string) ([]TeamMembership, error)

	// GetProject returns the project with its derived organization id, or
	// nil when no such project exists
	GetProject(ctx context.Context, projectID string) (*Project, error)

	// GetProjects bulk-fetches the given projects. Ids with no matching
	// record are simply absent from the result.
	GetProjects(ctx context.Context, projectIDs []string) ([]Project, error)
}
