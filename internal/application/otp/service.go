package otp

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/go-blog-nosql/internal/pkg/id"
	"github.com/go-blog-nosql/internal/pkg/otpcode"
)

// Service issues and checks the email OTP that activates an account.
type Service interface {
	Issue(ctx context.Context, email string) error
	Resend(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type otpStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	Get(ctx context.Context, email string) (*domain.OTP, error)
	ConsumeAndVerify(ctx context.Context, userID, email, code string) error
}

type mailQueue interface {
	Enqueue(mail domain.Mail) bool
}

type attemptLimiter interface {
	Allow(ctx context.Context, subject string) error
	Reset(ctx context.Context, subject string) error
}

type ServiceDeps struct {
	UserRepo userStore
	OTPRepo  otpStore
	Mailer   mailQueue
	// Limiter is optional; nil disables attempt throttling.
	Limiter attemptLimiter
	// TTL is how long a code stays valid; 0 means codes never expire.
	TTL time.Duration
}

type service struct {
	users    userStore
	otps     otpStore
	mailer   mailQueue
	limiter  attemptLimiter
	ttl      time.Duration
	now      func() time.Time
	generate func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserRepo,
		otps:     deps.OTPRepo,
		mailer:   deps.Mailer,
		limiter:  deps.Limiter,
		ttl:      deps.TTL,
		now:      time.Now,
		generate: otpcode.Generate,
	}
}

func (s *service) Issue(ctx context.Context, email string) error {
	code, err := s.generate()
	if err != nil {
		return err
	}
	now := s.now().UTC()
	rec := &domain.OTP{
		OTPID:     id.New(),
		Email:     email,
		Code:      code,
		CreatedAt: now,
	}
	if s.ttl > 0 {
		rec.ExpiresAt = now.Add(s.ttl).Unix()
	}
	if err := s.otps.Put(ctx, rec); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	mail, err := buildMail(email, code, s.ttl)
	if err != nil {
		slog.Error("otp mail not sent", "email", email, "err", err)
		return nil
	}
	s.mailer.Enqueue(mail)
	return nil
}

func (s *service) Resend(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("resend otp: %w", domain.ErrVerifiedOrUnregistered)
		}
		return err
	}
	if u.Verified {
		return fmt.Errorf("resend otp: %w", domain.ErrVerifiedOrUnregistered)
	}
	return s.Issue(ctx, email)
}

// Verify checks, in order: attempt budget, user existence, verified flag,
// then the stored code. A match flips the user to verified and deletes the
// code in one transaction.
func (s *service) Verify(ctx context.Context, email, code string) error {
	if err := s.allow(ctx, email); err != nil {
		return err
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("verify %s: %w", email, domain.ErrUserNotFound)
		}
		return err
	}
	if u.Verified {
		return fmt.Errorf("verify %s: %w", email, domain.ErrAlreadyVerified)
	}

	rec, err := s.otps.Get(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("no otp on record: %w", domain.ErrInvalidOTP)
		}
		return err
	}
	if rec.Expired(s.now()) {
		return fmt.Errorf("otp expired: %w", domain.ErrInvalidOTP)
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		return fmt.Errorf("otp mismatch: %w", domain.ErrInvalidOTP)
	}

	if err := s.otps.ConsumeAndVerify(ctx, u.UserID, email, code); err != nil {
		return err
	}
	s.reset(ctx, email)
	return nil
}

// allow consults the limiter. Limiter outages fail open.
func (s *service) allow(ctx context.Context, email string) error {
	if s.limiter == nil {
		return nil
	}
	err := s.limiter.Allow(ctx, email)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrTooManyAttempts) {
		return err
	}
	slog.Warn("otp attempt limiter unavailable", "email", email, "err", err)
	return nil
}

func (s *service) reset(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		slog.Warn("otp attempt counter not reset", "email", email, "err", err)
	}
}
