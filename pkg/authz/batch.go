package authz

import (
	"context"

	"github.com/wardenhq/warden/pkg/observability"
)

// BatchChecker answers read access for many projects at once. It collapses
// the N-project case into two store round trips: one context load and one
// bulk project fetch. Per project it runs the exact single-project read
// evaluation, so batch results always match N individual checks.
type BatchChecker struct {
	store     PolicyStore
	loader    *ContextLoader
	evaluator *Evaluator
	logger    *observability.Logger
}

// NewBatchChecker creates a batch checker sharing the evaluator's policy
func NewBatchChecker(store PolicyStore, loader *ContextLoader, evaluator *Evaluator, logger *observability.Logger) *BatchChecker {
	return &BatchChecker{
		store:     store,
		loader:    loader,
		evaluator: evaluator,
		logger:    logger,
	}
}

// CanRead returns a read decision for every requested project id. Every id
// in the input appears in the result; ids with no matching project, and all
// ids on any load failure, map to false. An empty input returns an empty
// map without touching the store.
func (b *BatchChecker) CanRead(ctx context.Context, userID string, projectIDs []string) map[string]bool {
	result := make(map[string]bool, len(projectIDs))
	if len(projectIDs) == 0 {
		return result
	}
	for _, id := range projectIDs {
		result[id] = false
	}

	authCtx, err := b.loader.Load(ctx, userID)
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Error("batch check: context load failed")
		return result
	}
	if authCtx == nil {
		return result
	}

	projects, err := b.store.GetProjects(ctx, projectIDs)
	if err != nil {
		b.logger.WithError(err).WithField("user_id", userID).Error("batch check: bulk project fetch failed")
		return result
	}

	for i := range projects {
		project := &projects[i]
		result[project.ID] = b.evaluator.Evaluate(authCtx, project, ActionRead).Allowed()
	}

	return result
}
