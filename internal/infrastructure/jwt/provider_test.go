package jwtinfra

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-with-enough-entropy"

func newTestProvider(t *testing.T) *Provider {
	t.Helper()
	p, err := NewProvider(testSecret, 72*time.Hour)
	require.NoError(t, err)
	return p
}

func sampleIdentity() Identity {
	return Identity{
		UserID:    "6f1c0c5e-8d7a-4c33-9f2b-1b9e5d3e7a10",
		Email:     "a@x.com",
		ProfileID: "0b8d2f1e-3c4a-4b5d-8e6f-7a8b9c0d1e2f",
		Verified:  true,
	}
}

func TestNewProvider_MissingSecret(t *testing.T) {
	_, err := NewProvider("", time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestSignVerify_RoundTrip(t *testing.T) {
	p := newTestProvider(t)
	id := sampleIdentity()

	token, err := p.Sign(id)
	require.NoError(t, err)

	claims, err := p.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, id.UserID, claims.UserID)
	assert.Equal(t, id.UserID, claims.Subject)
	assert.Equal(t, id.Email, claims.Email)
	assert.Equal(t, id.ProfileID, claims.ProfileID)
	assert.True(t, claims.Verified)
	assert.WithinDuration(t, time.Now().Add(72*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestVerify_TamperedSignature(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Sign(sampleIdentity())
	require.NoError(t, err)

	last := token[len(token)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	tampered := token[:len(token)-1] + string(replacement)

	_, err = p.Verify(tampered)
	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestVerify_TamperedPayload(t *testing.T) {
	p := newTestProvider(t)
	token, err := p.Sign(Identity{UserID: "u1", Verified: false})
	require.NoError(t, err)

	forged, err := (&Provider{secret: []byte("other-secret"), expiry: time.Hour, now: time.Now}).Sign(Identity{UserID: "u1", Verified: true})
	require.NoError(t, err)
	parts := strings.Split(token, ".")
	forgedParts := strings.Split(forged, ".")
	spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

	_, err = p.Verify(spliced)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	p := newTestProvider(t)
	p.now = func() time.Time { return time.Now().Add(-73 * time.Hour) }
	token, err := p.Sign(sampleIdentity())
	require.NoError(t, err)

	p.now = time.Now
	_, err = p.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_WrongSecret(t *testing.T) {
	p := newTestProvider(t)
	other, err := NewProvider("a-different-secret", time.Hour)
	require.NoError(t, err)
	token, err := other.Sign(sampleIdentity())
	require.NoError(t, err)

	_, err = p.Verify(token)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_RejectsAlgorithmSubstitution(t *testing.T) {
	p := newTestProvider(t)

	// alg=none
	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	noneStr, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = p.Verify(noneStr)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)

	// HS512 with the right secret is still the wrong algorithm.
	hs512 := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		UserID:           "u1",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	hs512Str, err := hs512.SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = p.Verify(hs512Str)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_MissingExpiry(t *testing.T) {
	p := newTestProvider(t)
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = p.Verify(s)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerify_Malformed(t *testing.T) {
	p := newTestProvider(t)
	for _, s := range []string{"", "abc", "a.b.c", "not-a-real-token"} {
		_, err := p.Verify(s)
		assert.ErrorIs(t, err, domain.ErrInvalidToken, s)
	}
}
