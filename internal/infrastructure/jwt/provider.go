package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// ErrMissingSecret is a configuration error: tokens cannot be signed or
// checked without a secret, so startup must abort.
var ErrMissingSecret = errors.New("jwt signing secret is not configured")

// Identity is the caller snapshot embedded in a token at login.
type Identity struct {
	UserID    string
	Email     string
	ProfileID string
	Verified  bool
}

// Claims holds the JWT payload fields.
type Claims struct {
	UserID    string `json:"Id"`
	Email     string `json:"Email"`
	ProfileID string `json:"ProfileId"`
	Verified  bool   `json:"Verified"`
	jwt.RegisteredClaims
}

// Provider signs and verifies HS256 JWTs with a shared secret.
type Provider struct {
	secret []byte
	expiry time.Duration
	parser *jwt.Parser
	now    func() time.Time
}

func NewProvider(secret string, expiry time.Duration) (*Provider, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("jwt expiry must be positive, got %s", expiry)
	}
	return &Provider{
		secret: []byte(secret),
		expiry: expiry,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithExpirationRequired(),
		),
		now: time.Now,
	}, nil
}

// Expiry is how long issued tokens stay valid.
func (p *Provider) Expiry() time.Duration { return p.expiry }

func (p *Provider) Sign(id Identity) (string, error) {
	now := p.now()
	claims := Claims{
		UserID:    id.UserID,
		Email:     id.Email,
		ProfileID: id.ProfileID,
		Verified:  id.Verified,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			ExpiresAt: jwt.NewNumericDate(now.Add(p.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(p.secret)
}

// Verify checks signature, algorithm and expiry. Every failure wraps
// domain.ErrInvalidToken.
func (p *Provider) Verify(tokenStr string) (*Claims, error) {
	token, err := p.parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}
	return claims, nil
}
