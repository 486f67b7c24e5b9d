package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	jwtinfra "github.com/go-blog-nosql/internal/infrastructure/jwt"
	"github.com/go-blog-nosql/internal/pkg/id"
	"github.com/go-blog-nosql/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const avatarBaseURL = "https://api.dicebear.com/5.x/initials/svg"

// LoginResult is what a successful login hands back to the transport.
type LoginResult struct {
	UserID    string
	ProfileID string
	Token     string
	ExpiresAt time.Time
}

type Service interface {
	Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
}

type userStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	CreateWithProfile(ctx context.Context, u *domain.User, p *domain.Profile) error
}

type profileStore interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Profile, error)
}

// emailIndex is the probabilistic set of registered emails.
type emailIndex interface {
	Add(email string)
	MightContain(email string) bool
}

type otpIssuer interface {
	Issue(ctx context.Context, email string) error
}

type tokenSigner interface {
	Sign(id jwtinfra.Identity) (string, error)
	Expiry() time.Duration
}

type ServiceDeps struct {
	UserRepo    userStore
	ProfileRepo profileStore
	EmailIndex  emailIndex
	OTP         otpIssuer
	Tokens      tokenSigner
}

type service struct {
	users    userStore
	profiles profileStore
	index    emailIndex
	otp      otpIssuer
	tokens   tokenSigner
	now      func() time.Time
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:    deps.UserRepo,
		profiles: deps.ProfileRepo,
		index:    deps.EmailIndex,
		otp:      deps.OTP,
		tokens:   deps.Tokens,
		now:      time.Now,
	}
}

func (s *service) Signup(ctx context.Context, req domain.SignupRequest) (*domain.User, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, req.Email); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC().Truncate(time.Second)
	u := &domain.User{
		UserID:       id.NewUUID(),
		Email:        req.Email,
		PasswordHash: string(hash),
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	p := &domain.Profile{
		ProfileID: id.NewUUID(),
		UserID:    u.UserID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Image:     initialsAvatar(req.FirstName, req.LastName),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.users.CreateWithProfile(ctx, u, p); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.index.Add(u.Email)

	if err := s.otp.Issue(ctx, u.Email); err != nil {
		return nil, fmt.Errorf("issue otp: %w", err)
	}
	return u, nil
}

// ensureEmailFree rejects at once when the index has seen the email;
// otherwise the user table decides.
func (s *service) ensureEmailFree(ctx context.Context, email string) error {
	if s.index.MightContain(email) {
		return fmt.Errorf("signup %s: %w", email, domain.ErrDuplicateEmail)
	}
	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.index.Add(email)
		return fmt.Errorf("signup %s: %w", email, domain.ErrDuplicateEmail)
	case errors.Is(err, domain.ErrNotFound):
		return nil
	default:
		return fmt.Errorf("lookup email: %w", err)
	}
}

func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("login %s: %w", req.Email, domain.ErrUserNotFound)
		}
		return nil, err
	}
	p, err := s.profiles.GetByUserID(ctx, u.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("user has no profile", "user_id", u.UserID)
			return nil, fmt.Errorf("login %s: %w", req.Email, domain.ErrUserNotFound)
		}
		return nil, err
	}
	if !u.Verified {
		return nil, fmt.Errorf("login %s: %w", req.Email, domain.ErrNotVerified)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("login %s: %w", req.Email, domain.ErrWrongPassword)
	}

	token, err := s.tokens.Sign(jwtinfra.Identity{
		UserID:    u.UserID,
		Email:     u.Email,
		ProfileID: p.ProfileID,
		Verified:  u.Verified,
	})
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{
		UserID:    u.UserID,
		ProfileID: p.ProfileID,
		Token:     token,
		ExpiresAt: s.now().Add(s.tokens.Expiry()),
	}, nil
}

func initialsAvatar(first, last string) string {
	seed := strings.TrimSpace(first + " " + last)
	return avatarBaseURL + "?seed=" + url.QueryEscape(seed)
}
