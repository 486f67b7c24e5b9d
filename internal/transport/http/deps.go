package http

import (
	"context"
	"io"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	jwtinfra "github.com/go-blog-nosql/internal/infrastructure/jwt"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateWithProfile(ctx context.Context, u *domain.User, p *domain.Profile) error
}

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
	Update(ctx context.Context, profileID string, updates map[string]interface{}) (*domain.Profile, error)
}

// OTPRepository is the minimal interface the router requires from an OTP store.
type OTPRepository interface {
	Put(ctx context.Context, o *domain.OTP) error
	Get(ctx context.Context, email string) (*domain.OTP, error)
	ConsumeAndVerify(ctx context.Context, userID, email, code string) error
}

// BlogRepository is the minimal interface the router requires from a blog store.
type BlogRepository interface {
	Put(ctx context.Context, b *domain.Blog) error
	Get(ctx context.Context, blogID string) (*domain.Blog, error)
	ListByProfile(ctx context.Context, profileID string) ([]domain.Blog, error)
	ListPublished(ctx context.Context, limit int32, cursor string) ([]domain.Blog, string, error)
	UpdateOwned(ctx context.Context, profileID, blogID string, updates map[string]interface{}) (*domain.Blog, error)
	DeleteOwned(ctx context.Context, profileID, blogID string) error
}

// ImageStore is the minimal interface the router requires from an object storage backend.
type ImageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// EmailIndex is the probabilistic set of registered emails.
type EmailIndex interface {
	Add(email string)
	MightContain(email string) bool
}

// MailQueue accepts outgoing mail for background delivery.
type MailQueue interface {
	Enqueue(mail domain.Mail) bool
}

// AttemptLimiter counts OTP verification attempts per email.
type AttemptLimiter interface {
	Allow(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

// TokenProvider signs and verifies identity tokens.
type TokenProvider interface {
	Sign(id jwtinfra.Identity) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
	Expiry() time.Duration
}
