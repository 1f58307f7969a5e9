package audit

import (
	"context"
	"time"

	"github.com/wardenhq/warden/pkg/observability"
)

// Purger deletes events older than a cutoff
type Purger interface {
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper enforces the audit retention policy
type Sweeper struct {
	purger    Purger
	retention time.Duration
	logger    *observability.Logger
}

// NewSweeper creates a retention sweeper keeping retentionDays of events
func NewSweeper(purger Purger, retentionDays int, logger *observability.Logger) *Sweeper {
	return &Sweeper{
		purger:    purger,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		logger:    logger,
	}
}

// Sweep purges events past retention. Failures are logged; the next
// scheduled run retries.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.retention)

	deleted, err := s.purger.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("audit retention sweep failed")
		return
	}
	if deleted > 0 {
		s.logger.WithFields(map[string]interface{}{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("audit retention sweep completed")
	}
}
