package audit

import (
	"context"
	"sync"
	"time"

	"github.com/wardenhq/warden/pkg/observability"
)

// recordTimeout bounds how long a single sink write may take once the
// event leaves the request path
const recordTimeout = 5 * time.Second

// AsyncRecorder buffers events and writes them on a background worker so
// recording never delays the request path. When the buffer is full the
// event is dropped and counted; authorization keeps working without its
// trail rather than the other way around.
type AsyncRecorder struct {
	sink   Recorder
	events chan *Event
	logger *observability.Logger

	mu      sync.Mutex
	dropped int64
	done    chan struct{}
	closed  bool
}

// NewAsyncRecorder wraps sink with a buffered worker
func NewAsyncRecorder(sink Recorder, bufferSize int, logger *observability.Logger) *AsyncRecorder {
	if bufferSize <= 0 {
		bufferSize = 1024
	}

	a := &AsyncRecorder{
		sink:   sink,
		events: make(chan *Event, bufferSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncRecorder) run() {
	defer close(a.done)
	for event := range a.events {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := a.sink.Record(ctx, event); err != nil {
			a.logger.WithError(err).Warn("audit event write failed")
		}
		cancel()
	}
}

// Record enqueues the event, dropping it when the buffer is full
func (a *AsyncRecorder) Record(ctx context.Context, event *Event) error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	select {
	case a.events <- event:
	default:
		a.mu.Lock()
		a.dropped++
		dropped := a.dropped
		a.mu.Unlock()
		a.logger.WithField("dropped_total", dropped).Warn("audit buffer full, event dropped")
	}
	return nil
}

// Dropped reports how many events were discarded due to a full buffer
func (a *AsyncRecorder) Dropped() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close drains buffered events and closes the sink
func (a *AsyncRecorder) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	close(a.events)
	<-a.done
	return a.sink.Close()
}
