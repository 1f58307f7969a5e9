package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/wardenhq/warden/pkg/contextkeys"
)

// RequestIDHeader carries the request id on both requests and responses
const RequestIDHeader = "X-Request-ID"

// RequestID assigns each request a unique id, honoring one supplied by a
// trusted proxy, and echoes it on the response
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestID)
		ctx := contextkeys.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
