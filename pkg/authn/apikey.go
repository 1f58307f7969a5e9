package authn

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	// KeyPrefix identifies Warden API keys and discriminates them from
	// bearer tokens
	KeyPrefix = "wdn_"
	// KeyLength is the number of random bytes in a key (256 bits)
	KeyLength = 32
	// displayPrefixLen is how much of the encoded key is kept for display
	displayPrefixLen = 8
)

// KeyGenerator mints and validates API keys
type KeyGenerator struct {
	cost int
}

// NewKeyGenerator creates a generator using the default bcrypt cost
func NewKeyGenerator() *KeyGenerator {
	return &KeyGenerator{cost: bcrypt.DefaultCost}
}

// NewKeyGeneratorWithCost creates a generator with an explicit bcrypt cost,
// mainly for tests
func NewKeyGeneratorWithCost(cost int) *KeyGenerator {
	return &KeyGenerator{cost: cost}
}

// GenerateKey creates a new API key.
// Format: wdn_<base64url(32 random bytes)>
// The plaintext key is returned once; only the bcrypt hash is stored.
func (g *KeyGenerator) GenerateKey() (key string, keyHash string, displayPrefix string, err error) {
	randomBytes := make([]byte, KeyLength)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	encoded := base64.RawURLEncoding.EncodeToString(randomBytes)
	fullKey := KeyPrefix + encoded

	hash, err := bcrypt.GenerateFromPassword([]byte(fullKey), g.cost)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to hash key: %w", err)
	}

	return fullKey, string(hash), DisplayPrefix(fullKey), nil
}

// ValidateKeyFormat checks that a string is a well-formed API key
func (g *KeyGenerator) ValidateKeyFormat(key string) error {
	if !strings.HasPrefix(key, KeyPrefix) {
		return fmt.Errorf("key must start with %q", KeyPrefix)
	}

	encoded := strings.TrimPrefix(key, KeyPrefix)
	if len(encoded) == 0 {
		return fmt.Errorf("key is too short")
	}
	if _, err := base64.RawURLEncoding.DecodeString(encoded); err != nil {
		return fmt.Errorf("invalid key encoding: %w", err)
	}
	return nil
}

// IsAPIKey reports whether a credential looks like an API key rather than
// a bearer token
func IsAPIKey(credential string) bool {
	return strings.HasPrefix(credential, KeyPrefix)
}

// DisplayPrefix returns the short identifying prefix of a key, safe to show
// in listings and logs
func DisplayPrefix(key string) string {
	if !strings.HasPrefix(key, KeyPrefix) {
		return ""
	}
	encoded := strings.TrimPrefix(key, KeyPrefix)
	if len(encoded) >= displayPrefixLen {
		return KeyPrefix + encoded[:displayPrefixLen]
	}
	return key
}
