package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"github.com/wardenhq/warden/pkg/authn"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/observability"
)

// Config holds database connection settings
type Config struct {
	PostgresURL  string
	MaxConns     int
	MinConns     int
	QueryTimeout time.Duration
}

// DefaultConfig returns sensible connection defaults
func DefaultConfig() Config {
	return Config{
		MaxConns:     25,
		MinConns:     5,
		QueryTimeout: 3 * time.Second,
	}
}

// Store is the PostgreSQL-backed policy store
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
	metrics      *observability.Metrics
}

// Open connects to PostgreSQL and verifies the connection
func Open(cfg Config, metrics *observability.Metrics) (*Store, error) {
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConns)
	db.SetMaxIdleConns(cfg.MinConns)
	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return New(db, cfg.QueryTimeout, metrics), nil
}

// New wraps an existing database handle; used by Open and by tests
func New(db *sql.DB, queryTimeout time.Duration, metrics *observability.Metrics) *Store {
	if queryTimeout <= 0 {
		queryTimeout = DefaultConfig().QueryTimeout
	}
	return &Store{
		db:           db,
		queryTimeout: queryTimeout,
		metrics:      metrics,
	}
}

// DB exposes the underlying handle for health checks
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close releases the connection pool
func (s *Store) Close() error {
	return s.db.Close()
}

// GetUser returns a user record, or nil when no such user exists
func (s *Store) GetUser(ctx context.Context, userID string) (user *authz.User, err error) {
	defer s.observe("get_user", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const query = `
		SELECT id, email, organization_id, org_role, is_active
		FROM users
		WHERE id = $1
	`

	var u authz.User
	var role string
	scanErr := s.db.QueryRowContext(ctx, query, userID).Scan(
		&u.ID, &u.Email, &u.OrganizationID, &role, &u.IsActive,
	)
	if scanErr == sql.ErrNoRows {
		return nil, nil
	}
	if scanErr != nil {
		return nil, fmt.Errorf("get user: %w", scanErr)
	}

	u.Role = authz.Role(role)
	return &u, nil
}

// GetTeamMemberships returns all of a user's team memberships in one query
func (s *Store) GetTeamMemberships(ctx context.Context, userID string) (memberships []authz.TeamMembership, err error) {
	defer s.observe("get_team_memberships", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const query = `
		SELECT team_id, role
		FROM team_members
		WHERE user_id = $1
	`

	rows, queryErr := s.db.QueryContext(ctx, query, userID)
	if queryErr != nil {
		return nil, fmt.Errorf("get team memberships: %w", queryErr)
	}
	defer rows.Close()

	for rows.Next() {
		var m authz.TeamMembership
		var role string
		if scanErr := rows.Scan(&m.TeamID, &role); scanErr != nil {
			return nil, fmt.Errorf("scan team membership: %w", scanErr)
		}
		m.Role = authz.Role(role)
		memberships = append(memberships, m)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate team memberships: %w", rowsErr)
	}

	return memberships, nil
}

// GetProject returns a project with its organization id derived through
// the owning team, or nil when no such project exists
func (s *Store) GetProject(ctx context.Context, projectID string) (project *authz.Project, err error) {
	defer s.observe("get_project", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const query = `
		SELECT p.id, p.team_id, t.organization_id, p.is_active
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		WHERE p.id = $1
	`

	var p authz.Project
	scanErr := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&p.ID, &p.TeamID, &p.OrganizationID, &p.IsActive,
	)
	if scanErr == sql.ErrNoRows {
		return nil, nil
	}
	if scanErr != nil {
		return nil, fmt.Errorf("get project: %w", scanErr)
	}

	return &p, nil
}

// GetProjects bulk-fetches projects by id. Unknown ids are simply absent
// from the result.
func (s *Store) GetProjects(ctx context.Context, projectIDs []string) (projects []authz.Project, err error) {
	if len(projectIDs) == 0 {
		return nil, nil
	}

	defer s.observe("get_projects", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	placeholders := make([]string, len(projectIDs))
	args := make([]interface{}, len(projectIDs))
	for i, id := range projectIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.team_id, t.organization_id, p.is_active
		FROM projects p
		JOIN teams t ON t.id = p.team_id
		WHERE p.id IN (%s)
	`, strings.Join(placeholders, ", "))

	rows, queryErr := s.db.QueryContext(ctx, query, args...)
	if queryErr != nil {
		return nil, fmt.Errorf("get projects: %w", queryErr)
	}
	defer rows.Close()

	for rows.Next() {
		var p authz.Project
		if scanErr := rows.Scan(&p.ID, &p.TeamID, &p.OrganizationID, &p.IsActive); scanErr != nil {
			return nil, fmt.Errorf("scan project: %w", scanErr)
		}
		projects = append(projects, p)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate projects: %w", rowsErr)
	}

	return projects, nil
}

// FindCredentialCandidates returns the stored API key hashes of active,
// unrevoked keys belonging to active users
func (s *Store) FindCredentialCandidates(ctx context.Context) (candidates []authn.CredentialCandidate, err error) {
	defer s.observe("find_credential_candidates", time.Now(), &err)
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	const query = `
		SELECT k.user_id, k.key_hash
		FROM api_keys k
		JOIN users u ON u.id = k.user_id
		WHERE k.revoked_at IS NULL AND u.is_active
	`

	rows, queryErr := s.db.QueryContext(ctx, query)
	if queryErr != nil {
		return nil, fmt.Errorf("find credential candidates: %w", queryErr)
	}
	defer rows.Close()

	for rows.Next() {
		var c authn.CredentialCandidate
		if scanErr := rows.Scan(&c.UserID, &c.CredentialHash); scanErr != nil {
			return nil, fmt.Errorf("scan credential candidate: %w", scanErr)
		}
		candidates = append(candidates, c)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("iterate credential candidates: %w", rowsErr)
	}

	return candidates, nil
}

func (s *Store) observe(query string, start time.Time, err *error) {
	s.metrics.RecordStoreQuery(query, time.Since(start), *err)
}
