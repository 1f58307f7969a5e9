package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/wardenhq/warden/pkg/contextkeys"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/observability"
)

// RateLimitConfig defines rate limiting configuration
type RateLimitConfig struct {
	// RequestsPerWindow is the max requests allowed in the time window
	RequestsPerWindow int
	// WindowDuration is the fixed window length
	WindowDuration time.Duration
}

// DefaultRateLimitConfig returns default rate limit settings
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerWindow: 300,
		WindowDuration:    time.Minute,
	}
}

// RateLimiter implements a Redis-backed fixed-window limiter shared
// across service instances. This service is an authorization gate, so
// unlike a content API the limiter fails CLOSED: when Redis is down we
// refuse requests rather than let credential stuffing run unmetered.
type RateLimiter struct {
	redis  *redis.Client
	config RateLimitConfig
	prefix string
	logger *observability.Logger
}

// NewRateLimiter creates a Redis-backed rate limiter
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *observability.Logger) *RateLimiter {
	if config.RequestsPerWindow <= 0 {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		redis:  redisClient,
		config: config,
		prefix: "warden:ratelimit",
		logger: logger,
	}
}

// Allow counts a request against the window for key and reports whether
// it is within the limit
func (rl *RateLimiter) Allow(r *http.Request, key string) (bool, error) {
	redisKey := fmt.Sprintf("%s:%s", rl.prefix, key)

	pipe := rl.redis.Pipeline()
	incr := pipe.Incr(r.Context(), redisKey)
	pipe.Expire(r.Context(), redisKey, rl.config.WindowDuration)
	if _, err := pipe.Exec(r.Context()); err != nil {
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	return incr.Val() <= int64(rl.config.RequestsPerWindow), nil
}

// Handler wraps an HTTP handler with per-client rate limiting. Requests
// are keyed by client IP since they have not been authenticated yet.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := "ip:" + clientIP(r)

		allowed, err := rl.Allow(r, key)
		if err != nil {
			rl.logger.WithError(err).
				WithField("request_id", contextkeys.GetRequestID(r.Context())).
				Error("rate limiter unavailable")
			httputil.WriteServiceUnavailable(w, "service temporarily unavailable")
			return
		}

		if !allowed {
			w.Header().Set("Retry-After", fmt.Sprintf("%.0f", rl.config.WindowDuration.Seconds()))
			httputil.WriteTooManyRequests(w, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIP resolves the originating client address, trusting proxy
// headers when present
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		// First hop is the original client
		if idx := strings.IndexByte(forwarded, ','); idx >= 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
