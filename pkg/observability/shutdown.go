package observability

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownFunc is a cleanup function invoked during graceful shutdown
type ShutdownFunc func(context.Context) error

// ShutdownManager coordinates graceful shutdown of HTTP servers and
// registered cleanup functions on SIGINT/SIGTERM.
type ShutdownManager struct {
	logger  *Logger
	servers []*http.Server
	funcs   []ShutdownFunc
	timeout time.Duration
}

// NewShutdownManager creates a shutdown manager for the given servers
func NewShutdownManager(logger *Logger, timeout time.Duration, servers ...*http.Server) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger,
		servers: servers,
		timeout: timeout,
	}
}

// Register adds a cleanup function to run after the servers have drained
func (sm *ShutdownManager) Register(fn ShutdownFunc) {
	if fn != nil {
		sm.funcs = append(sm.funcs, fn)
	}
}

// Wait blocks until a termination signal arrives, then drains the servers
// and runs cleanup functions in registration order.
func (sm *ShutdownManager) Wait() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.WithField("signal", sig.String()).Info("starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	for _, srv := range sm.servers {
		if err := srv.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("server shutdown error")
		}
	}

	for _, fn := range sm.funcs {
		if err := fn(ctx); err != nil {
			sm.logger.WithError(err).Error("shutdown cleanup error")
		}
	}

	sm.logger.Info("shutdown complete")
}
