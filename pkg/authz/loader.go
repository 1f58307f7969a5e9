package authz

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/wardenhq/warden/pkg/observability"
)

const (
	// DefaultCacheSize bounds the number of cached auth contexts
	DefaultCacheSize = 4096
	// DefaultCacheTTL keeps contexts fresh enough that role changes take
	// effect quickly while absorbing rapid sequential requests
	DefaultCacheTTL = 30 * time.Second
)

// ContextLoader builds AuthContexts from the policy store. A loaded context
// is cached per user id with a short TTL; Invalidate drops a user's entry
// when their roles change. Load failures are never cached and a nil context
// (missing or inactive user) is never cached either, so deactivation takes
// effect immediately.
type ContextLoader struct {
	store   PolicyStore
	cache   *lru.LRU[string, *AuthContext]
	logger  *observability.Logger
	metrics *observability.Metrics
}

// NewContextLoader creates a loader. A ttl of zero disables caching.
// metrics may be nil.
func NewContextLoader(store PolicyStore, logger *observability.Logger, cacheSize int, ttl time.Duration, metrics *observability.Metrics) *ContextLoader {
	var cache *lru.LRU[string, *AuthContext]
	if ttl > 0 {
		if cacheSize <= 0 {
			cacheSize = DefaultCacheSize
		}
		cache = lru.NewLRU[string, *AuthContext](cacheSize, nil, ttl)
	}

	return &ContextLoader{
		store:   store,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Load returns the user's auth context. It returns (nil, nil) when the user
// does not exist or is inactive; callers must treat a nil context as a
// denial. No partial contexts are ever returned.
func (l *ContextLoader) Load(ctx context.Context, userID string) (*AuthContext, error) {
	if l.cache != nil {
		if cached, ok := l.cache.Get(userID); ok {
			l.metrics.RecordContextCacheHit()
			return cached, nil
		}
		l.metrics.RecordContextCacheMiss()
	}

	user, err := l.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if user == nil || !user.IsActive {
		return nil, nil
	}

	memberships, err := l.store.GetTeamMemberships(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load team memberships for %s: %w", userID, err)
	}

	teamRoles := make(map[string]Role, len(memberships))
	for _, m := range memberships {
		teamRoles[m.TeamID] = m.Role
	}

	authCtx := &AuthContext{
		UserID:           user.ID,
		OrganizationID:   user.OrganizationID,
		OrganizationRole: user.Role,
		TeamRoles:        teamRoles,
		IsActive:         user.IsActive,
		LoadedAt:         time.Now().UTC(),
	}

	if l.cache != nil {
		l.cache.Add(userID, authCtx)
	}

	return authCtx, nil
}

// Invalidate drops the cached context for a user
func (l *ContextLoader) Invalidate(userID string) {
	if l.cache != nil {
		l.cache.Remove(userID)
	}
}
