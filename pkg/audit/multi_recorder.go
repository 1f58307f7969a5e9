package audit

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// MultiRecorder fans events out to several recorders. Every recorder
// sees every event even when an earlier one fails.
type MultiRecorder struct {
	recorders []Recorder
}

// NewMultiRecorder combines recorders into one
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{recorders: recorders}
}

// Record delivers the event to all recorders concurrently. A slow or
// failing sink does not hold up the others.
func (m *MultiRecorder) Record(ctx context.Context, event *Event) error {
	var g errgroup.Group
	for _, r := range m.recorders {
		g.Go(func() error {
			return r.Record(ctx, event)
		})
	}
	return g.Wait()
}

// Close closes all recorders
func (m *MultiRecorder) Close() error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
