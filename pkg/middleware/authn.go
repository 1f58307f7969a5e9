package middleware

import (
	"net/http"
	"strings"

	"github.com/wardenhq/warden/pkg/authn"
	"github.com/wardenhq/warden/pkg/contextkeys"
	"github.com/wardenhq/warden/pkg/httputil"
	"github.com/wardenhq/warden/pkg/observability"
)

// APIKeyHeader is an alternative to the Authorization header for API keys
const APIKeyHeader = "X-API-Key"

// Authenticator resolves inbound credentials to identities
type Authenticator struct {
	resolver *authn.Resolver
	logger   *observability.Logger
}

// NewAuthenticator creates the authentication middleware
func NewAuthenticator(resolver *authn.Resolver, logger *observability.Logger) *Authenticator {
	return &Authenticator{
		resolver: resolver,
		logger:   logger,
	}
}

// Handler wraps an HTTP handler with credential resolution. The resolved
// identity is stored in the request context; requests without a resolvable
// credential never reach the next handler.
func (a *Authenticator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := extractCredential(r)
		if credential == "" {
			httputil.WriteUnauthorized(w, "missing credentials", "invalid_credential")
			return
		}

		identity, err := a.resolver.Resolve(r.Context(), credential)
		if err != nil {
			if authn.IsAuthFailure(err) {
				httputil.WriteUnauthorized(w, "authentication failed", authn.ErrorCode(err))
				return
			}
			a.logger.WithError(err).
				WithField("request_id", contextkeys.GetRequestID(r.Context())).
				Error("credential resolution failed")
			httputil.WriteInternalError(w)
			return
		}

		ctx := contextkeys.WithIdentity(r.Context(), identity)
		ctx = contextkeys.WithUserID(ctx, identity.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// extractCredential pulls the credential from the X-API-Key header or the
// Authorization bearer scheme. The resolver discriminates key from token
// by prefix, so both arrive through either channel.
func extractCredential(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// GetIdentity extracts the resolved identity from the request, nil when
// the request did not pass through the Authenticator
func GetIdentity(r *http.Request) *authn.Identity {
	identity, ok := r.Context().Value(contextkeys.IdentityKey).(*authn.Identity)
	if !ok {
		return nil
	}
	return identity
}
