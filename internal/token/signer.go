package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultExpiry is how long a signed editor token stays valid.
const DefaultExpiry = 600 * time.Second

// ErrCryptoUnavailable indicates that the signing primitive failed.
// Callers must not fall back to sending an unsigned payload when a
// secret is configured.
var ErrCryptoUnavailable = errors.New("signing primitive unavailable")

// Signer produces compact HS256 tokens (header.payload.signature) over
// arbitrary JSON payloads. The zero value is not usable; use NewSigner.
type Signer struct {
	secret string
	expiry time.Duration

	// now is injectable for deterministic tests.
	now func() time.Time
}

// Option configures a Signer.
type Option func(*Signer)

// WithExpiry overrides the default token lifetime.
func WithExpiry(d time.Duration) Option {
	return func(s *Signer) {
		s.expiry = d
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Signer) {
		s.now = now
	}
}

// NewSigner creates a Signer for the given shared secret. An empty
// secret is valid and means signing is disabled: Sign returns an empty
// token and no error.
func NewSigner(secret string, opts ...Option) *Signer {
	s := &Signer{
		secret: secret,
		expiry: DefaultExpiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enabled reports whether a secret is configured.
func (s *Signer) Enabled() bool {
	return s.secret != ""
}

// Sign returns a signed compact token over payload with iat/exp claims
// added, or ("", nil) when no secret is configured. The payload map is
// not mutated.
func (s *Signer) Sign(payload map[string]any) (string, error) {
	if s.secret == "" {
		return "", nil
	}

	claims := jwt.MapClaims{}
	for k, v := range payload {
		claims[k] = v
	}

	now := s.now().Unix()
	claims["iat"] = now
	claims["exp"] = now + int64(s.expiry.Seconds())

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString([]byte(s.secret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCryptoUnavailable, err)
	}

	return signed, nil
}
