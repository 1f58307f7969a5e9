package audit

import "context"

// Recorder persists audit events
type Recorder interface {
	// Record stores one event
	Record(ctx context.Context, event *Event) error

	// Close flushes and releases the recorder
	Close() error
}

// NopRecorder discards all events; used when audit is disabled
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, event *Event) error { return nil }
func (NopRecorder) Close() error                                   { return nil }
