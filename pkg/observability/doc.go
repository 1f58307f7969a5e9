// Package observability provides structured logging, Prometheus metrics,
// health probes, OpenTelemetry tracing and graceful shutdown for the
// Warden authorization service.
//
// The Logger wraps log/slog with a JSON handler and supports field
// chaining:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("user_id", id).Info("context loaded")
//
// Metrics are registered against a caller-supplied Prometheus registry so
// tests can use isolated registries:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.RecordDecision("read", "allowed", "", elapsed)
//
// The HealthChecker exposes liveness and readiness probes; readiness pings
// the policy database and, when configured, Redis.
package observability
