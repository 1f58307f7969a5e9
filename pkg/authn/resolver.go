package authn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/wardenhq/warden/pkg/observability"
)

// Method is how a credential was authenticated
type Method string

const (
	MethodAPIKey Method = "api_key"
	MethodBearer Method = "bearer"
)

// Identity is the canonical result of credential resolution. Both
// credential paths produce this same shape.
type Identity struct {
	UserID string
	Method Method
}

// Resolution failure modes. All of them map to an authentication failure
// (401) at the transport boundary; anything else that escapes Resolve is an
// internal fault.
var (
	// ErrInvalidCredential means the credential is malformed or too short
	ErrInvalidCredential = errors.New("invalid credential")
	// ErrTokenInvalid means the bearer token failed signature or expiry checks
	ErrTokenInvalid = errors.New("token expired or invalid")
	// ErrNoMatch means the API key matched no stored credential
	ErrNoMatch = errors.New("no matching credential")
)

// ErrorCode maps a resolution error to its short wire code
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrTokenInvalid):
		return "expired_or_invalid"
	case errors.Is(err, ErrNoMatch):
		return "no_match"
	default:
		return "internal_error"
	}
}

// IsAuthFailure reports whether the error is an authentication failure as
// opposed to an internal fault
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrNoMatch)
}

// CredentialCandidate is a stored API key hash with its owning user
type CredentialCandidate struct {
	UserID         string
	CredentialHash string
}

// CredentialSource supplies the stored API key hashes to scan
type CredentialSource interface {
	FindCredentialCandidates(ctx context.Context) ([]CredentialCandidate, error)
}

// TokenVerifier verifies a bearer token and returns its subject claim
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (subject string, err error)
}

// minCredentialLength rejects obviously malformed credentials before any
// expensive work
const minCredentialLength = 16

// Resolver maps inbound credentials to identities
type Resolver struct {
	source   CredentialSource
	verifier TokenVerifier
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// NewResolver creates a resolver. verifier may be nil when no OIDC provider
// is configured; bearer tokens are then rejected. metrics may be nil.
func NewResolver(source CredentialSource, verifier TokenVerifier, logger *observability.Logger, metrics *observability.Metrics) *Resolver {
	return &Resolver{
		source:   source,
		verifier: verifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve maps a credential to an identity. The credential's prefix picks
// the path: API keys are matched against stored bcrypt hashes, everything
// else is verified as a bearer token.
func (r *Resolver) Resolve(ctx context.Context, credential string) (*Identity, error) {
	credential = strings.TrimSpace(credential)
	if len(credential) < minCredentialLength {
		r.metrics.RecordResolution("unknown", "invalid")
		return nil, ErrInvalidCredential
	}

	if IsAPIKey(credential) {
		return r.resolveAPIKey(ctx, credential)
	}
	return r.resolveBearer(ctx, credential)
}

func (r *Resolver) resolveAPIKey(ctx context.Context, key string) (*Identity, error) {
	candidates, err := r.source.FindCredentialCandidates(ctx)
	if err != nil {
		r.metrics.RecordResolution(string(MethodAPIKey), "error")
		return nil, fmt.Errorf("credential lookup failed: %w", err)
	}

	// Linear scan with a constant-time comparison per candidate. O(n) in
	// issued keys; see package doc.
	for _, c := range candidates {
		if bcrypt.CompareHashAndPassword([]byte(c.CredentialHash), []byte(key)) == nil {
			r.metrics.RecordResolution(string(MethodAPIKey), "success")
			return &Identity{UserID: c.UserID, Method: MethodAPIKey}, nil
		}
	}

	r.metrics.RecordResolution(string(MethodAPIKey), "no_match")
	r.logger.WithField("key_prefix", DisplayPrefix(key)).Warn("api key matched no credential")
	return nil, ErrNoMatch
}

func (r *Resolver) resolveBearer(ctx context.Context, token string) (*Identity, error) {
	if r.verifier == nil {
		r.metrics.RecordResolution(string(MethodBearer), "invalid")
		return nil, ErrTokenInvalid
	}

	subject, err := r.verifier.Verify(ctx, token)
	if err != nil {
		r.metrics.RecordResolution(string(MethodBearer), "invalid")
		r.logger.WithError(err).Debug("bearer token verification failed")
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if subject == "" {
		r.metrics.RecordResolution(string(MethodBearer), "invalid")
		return nil, fmt.Errorf("%w: token has no subject", ErrTokenInvalid)
	}

	r.metrics.RecordResolution(string(MethodBearer), "success")
	return &Identity{UserID: subject, Method: MethodBearer}, nil
}
