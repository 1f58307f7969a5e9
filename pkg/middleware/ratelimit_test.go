package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestLimiter(t *testing.T, limit int) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	cfg := RateLimitConfig{RequestsPerWindow: limit, WindowDuration: time.Minute}
	return NewRateLimiter(client, cfg, testLogger()), mr
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterUnderLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 3)
	h := rl.Handler(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i+1, rec.Code)
		}
	}
}

func TestRateLimiterOverLimit(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)
	h := rl.Handler(okHandler())

	for i := 0; i < 2; i++ {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestRateLimiterSeparateClients(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	h := rl.Handler(okHandler())

	first := httptest.NewRequest("GET", "/", nil)
	first.Header.Set("X-Forwarded-For", "10.0.0.1")
	second := httptest.NewRequest("GET", "/", nil)
	second.Header.Set("X-Forwarded-For", "10.0.0.2")

	h.ServeHTTP(httptest.NewRecorder(), first)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("different client was throttled: status = %d", rec.Code)
	}
}

func TestRateLimiterFailsClosed(t *testing.T) {
	rl, mr := newTestLimiter(t, 10)
	mr.Close()

	rec := httptest.NewRecorder()
	rl.Handler(okHandler()).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
	if ip := clientIP(r); ip != "10.0.0.1" {
		t.Errorf("clientIP = %s, want 10.0.0.1", ip)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Real-IP", "10.0.0.9")
	if ip := clientIP(r); ip != "10.0.0.9" {
		t.Errorf("clientIP = %s, want 10.0.0.9", ip)
	}

	r = httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:4711"
	if ip := clientIP(r); ip != "192.0.2.1" {
		t.Errorf("clientIP = %s, want 192.0.2.1", ip)
	}
}
