package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestSignWithoutSecret(t *testing.T) {
	s := NewSigner("")

	tok, err := s.Sign(map[string]any{"documentType": "word"})
	require.NoError(t, err)
	assert.Empty(t, tok)
	assert.False(t, s.Enabled())
}

func TestSignCompactForm(t *testing.T) {
	s := NewSigner("s3cret")

	tok, err := s.Sign(map[string]any{"documentType": "word"})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3, "expected header.payload.signature")
	for _, part := range parts {
		assert.NotEmpty(t, part)
		assert.NotContains(t, part, "=", "base64url segments must be unpadded")
		assert.NotContains(t, part, "+")
		assert.NotContains(t, part, "/")
	}
}

func TestSignDeterministicWithinSecond(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner("s3cret", WithClock(fixedClock(now)))

	payload := map[string]any{"documentType": "cell", "mode": "edit"}

	first, err := s.Sign(payload)
	require.NoError(t, err)
	second, err := s.Sign(payload)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSignPayloadChangesSignature(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner("s3cret", WithClock(fixedClock(now)))

	first, err := s.Sign(map[string]any{"documentType": "word"})
	require.NoError(t, err)
	second, err := s.Sign(map[string]any{"documentType": "cell"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSignClaimsAndVerification(t *testing.T) {
	now := time.Unix(1700000000, 0)
	s := NewSigner("s3cret", WithClock(fixedClock(now)), WithExpiry(120*time.Second))

	tok, err := s.Sign(map[string]any{"documentType": "slide"})
	require.NoError(t, err)

	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (any, error) {
		return []byte("s3cret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithTimeFunc(fixedClock(now)))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	claims, ok := parsed.Claims.(jwt.MapClaims)
	require.True(t, ok)
	assert.Equal(t, "slide", claims["documentType"])
	assert.EqualValues(t, now.Unix(), claims["iat"])
	assert.EqualValues(t, now.Unix()+120, claims["exp"])
}

func TestSignDoesNotMutatePayload(t *testing.T) {
	s := NewSigner("s3cret")
	payload := map[string]any{"documentType": "word"}

	_, err := s.Sign(payload)
	require.NoError(t, err)

	assert.Len(t, payload, 1)
	assert.NotContains(t, payload, "iat")
	assert.NotContains(t, payload, "exp")
}
