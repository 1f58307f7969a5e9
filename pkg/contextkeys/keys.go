// Package contextkeys provides centralized context key definitions
//
// IMPORTANT: All context keys used across the application must be defined
// here. This prevents typos, documents dependencies, and makes key usage
// discoverable.
//
// USAGE PATTERN:
//
//	import "github.com/wardenhq/warden/pkg/contextkeys"
//	ctx = context.WithValue(ctx, contextkeys.IdentityKey, identity)
//	identity := ctx.Value(contextkeys.IdentityKey).(*authn.Identity)
package contextkeys

import "context"

// Key is the type for context keys to prevent collisions
type Key string

const (
	// IdentityKey contains *authn.Identity
	// Set by: middleware.Authenticator (pkg/middleware/authn.go)
	// Required by: guard middleware, API handlers, audit trail
	// Type: *authn.Identity
	IdentityKey Key = "identity"

	// GrantedRoleKey contains the role that granted access, as a string
	// Set by: middleware.Guard after an allow decision
	// Used by: Handlers that expose the effective role, audit trail
	// Type: string
	GrantedRoleKey Key = "granted_role"

	// RequestIDKey contains request ID string (UUID)
	// Set by: middleware.RequestID
	// Used by: Logger, audit trail, distributed tracing
	// Type: string
	RequestIDKey Key = "request_id"

	// UserIDKey contains user ID string
	// Set by: middleware.Authenticator after identity resolution
	// Used by: Logger, audit trail, user-scoped operations
	// Type: string
	UserIDKey Key = "user_id"

	// LoggerKey contains *observability.Logger
	// Set by: Observability middleware
	// Used by: Handlers that need structured logging with request context
	// Type: *observability.Logger
	LoggerKey Key = "logger"
)

// Helper functions for type-safe context operations

// WithIdentity adds the resolved caller identity to the context
func WithIdentity(ctx context.Context, identity interface{}) context.Context {
	return context.WithValue(ctx, IdentityKey, identity)
}

// WithGrantedRole records the role that granted access
func WithGrantedRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, GrantedRoleKey, role)
}

// WithRequestID adds request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithUserID adds user ID to the context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetGrantedRole retrieves the granting role from context
func GetGrantedRole(ctx context.Context) string {
	if role, ok := ctx.Value(GrantedRoleKey).(string); ok {
		return role
	}
	return ""
}

// GetRequestID retrieves request ID from context
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// GetUserID retrieves user ID from context
func GetUserID(ctx context.Context) string {
	if userID, ok := ctx.Value(UserIDKey).(string); ok {
		return userID
	}
	return ""
}
