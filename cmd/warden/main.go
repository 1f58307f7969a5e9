package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/wardenhq/warden/pkg/api"
	"github.com/wardenhq/warden/pkg/audit"
	"github.com/wardenhq/warden/pkg/authn"
	"github.com/wardenhq/warden/pkg/authz"
	"github.com/wardenhq/warden/pkg/config"
	"github.com/wardenhq/warden/pkg/middleware"
	"github.com/wardenhq/warden/pkg/observability"
	"github.com/wardenhq/warden/pkg/store"
)

// auditBufferSize bounds the async audit queue; events past it are dropped
const auditBufferSize = 1024

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)
	ctx := context.Background()

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(prometheus.NewRegistry())
	}

	st, err := store.Open(cfg.Store, metrics)
	if err != nil {
		logger.WithError(err).Error("failed to open policy store")
		os.Exit(1)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.URL,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		// The rate limiter fails closed, so requests are refused until
		// Redis comes back. Readiness reports the degradation.
		logger.WithError(err).Warn("redis unreachable at startup")
	}

	var verifier authn.TokenVerifier
	if cfg.Auth.OIDCIssuerURL != "" {
		v, err := authn.NewOIDCVerifier(ctx, authn.OIDCConfig{
			IssuerURL: cfg.Auth.OIDCIssuerURL,
			ClientID:  cfg.Auth.OIDCClientID,
		})
		if err != nil {
			logger.WithError(err).Error("failed to configure oidc verifier")
			os.Exit(1)
		}
		verifier = v
		logger.WithField("issuer", cfg.Auth.OIDCIssuerURL).Info("bearer token verification enabled")
	}

	loader := authz.NewContextLoader(st, logger, cfg.Auth.ContextCacheSize, cfg.Auth.ContextCacheTTL, metrics)
	evaluator := authz.NewEvaluator(st, loader, logger)
	batch := authz.NewBatchChecker(st, loader, evaluator, logger)
	resolver := authn.NewResolver(st, verifier, logger, metrics)

	recorder := audit.Recorder(audit.NopRecorder{})
	var sweeper *audit.Sweeper
	if cfg.Audit.Enabled {
		dbRecorder, err := audit.NewDBRecorder(st.DB())
		if err != nil {
			logger.WithError(err).Error("failed to initialize audit recorder")
			os.Exit(1)
		}
		recorder = audit.NewAsyncRecorder(
			audit.NewMultiRecorder(dbRecorder, audit.NewLogRecorder(os.Stdout)),
			auditBufferSize,
			logger,
		)
		sweeper = audit.NewSweeper(dbRecorder, cfg.Audit.RetentionDays, logger)
	}

	// Guarded routes record their decisions through the audit trail
	hook := func(ctx context.Context, userID, projectID string, action authz.Action, d authz.Decision) {
		recorder.Record(ctx, audit.DecisionEvent(ctx, userID, projectID, action, d))
	}

	var limiter *middleware.RateLimiter
	if cfg.Auth.RateLimitPerMinute > 0 {
		limiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			RequestsPerWindow: cfg.Auth.RateLimitPerMinute,
			WindowDuration:    time.Minute,
		}, logger)
	}

	server := api.NewServer(api.Deps{
		Checker:       evaluator,
		Batch:         batch,
		Store:         st,
		Authenticator: middleware.NewAuthenticator(resolver, logger),
		Guard:         middleware.NewGuard(evaluator, logger, metrics, hook),
		Limiter:       limiter,
		Recorder:      recorder,
		Metrics:       metrics,
		Logger:        logger,
	})

	tracingShutdown, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		logger.WithError(err).Error("failed to initialize tracing")
		os.Exit(1)
	}

	handler := http.Handler(server.Router())
	if cfg.Observability.OTelEnabled {
		handler = otelhttp.NewHandler(handler, "warden.http")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	health := observability.NewHealthChecker(st.DB(), redisClient, cfg.Observability.OTelServiceVersion)
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/healthz", health.Liveness)
	healthMux.HandleFunc("/readyz", health.Readiness)
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	var scheduler *cron.Cron
	if sweeper != nil {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.Audit.SweepSchedule, func() {
			sweeper.Sweep(context.Background())
		}); err != nil {
			logger.WithError(err).Error("invalid audit sweep schedule")
			os.Exit(1)
		}
		scheduler.Start()
		logger.WithField("schedule", cfg.Audit.SweepSchedule).Info("audit retention sweep scheduled")
	}

	shutdown := observability.NewShutdownManager(logger, cfg.Server.ShutdownTimeout, apiServer, healthServer)
	if scheduler != nil {
		shutdown.Register(func(ctx context.Context) error {
			select {
			case <-scheduler.Stop().Done():
			case <-ctx.Done():
			}
			return nil
		})
	}
	// Drain the audit queue before the connections it writes through go away
	shutdown.Register(func(context.Context) error { return recorder.Close() })
	shutdown.Register(func(context.Context) error { return redisClient.Close() })
	shutdown.Register(func(context.Context) error { return st.Close() })
	if tracingShutdown != nil {
		shutdown.Register(tracingShutdown)
	}

	go func() {
		logger.WithField("addr", apiServer.Addr).Info("authorization api listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("api server failed")
			os.Exit(1)
		}
	}()

	go func() {
		logger.WithField("addr", healthServer.Addr).Info("health server listening")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("health server failed")
			os.Exit(1)
		}
	}()

	shutdown.Wait()
}
