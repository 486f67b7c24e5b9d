package otp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/go-blog-nosql/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, o *domain.OTP) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOTPStore) Get(ctx context.Context, email string) (*domain.OTP, error) {
	args := m.Called(ctx, email)
	if o, _ := args.Get(0).(*domain.OTP); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) ConsumeAndVerify(ctx context.Context, userID, email, code string) error {
	return m.Called(ctx, userID, email, code).Error(0)
}

type mockMailQueue struct{ mock.Mock }

func (m *mockMailQueue) Enqueue(mail domain.Mail) bool {
	return m.Called(mail).Bool(0)
}

type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, subject string) error {
	return m.Called(ctx, subject).Error(0)
}
func (m *mockLimiter) Reset(ctx context.Context, subject string) error {
	return m.Called(ctx, subject).Error(0)
}

// --- builder ---

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newService(us *mockUserStore, ot *mockOTPStore, mq *mockMailQueue, lim attemptLimiter, ttl time.Duration) *service {
	svc := NewService(ServiceDeps{
		UserRepo: us,
		OTPRepo:  ot,
		Mailer:   mq,
		Limiter:  lim,
		TTL:      ttl,
	}).(*service)
	svc.now = func() time.Time { return fixedNow }
	svc.generate = func() (string, error) { return "123456", nil }
	return svc
}

func unverified() *domain.User {
	return &domain.User{UserID: "u1", Email: "a@x.com"}
}

// --- Issue ---

func TestIssue_StoresCodeAndQueuesMail(t *testing.T) {
	ot := &mockOTPStore{}
	mq := &mockMailQueue{}
	ot.On("Put", mock.Anything, mock.MatchedBy(func(o *domain.OTP) bool {
		return o.Email == "a@x.com" && o.Code == "123456" && o.OTPID != "" &&
			o.ExpiresAt == fixedNow.Add(5*time.Minute).Unix()
	})).Return(nil)
	mq.On("Enqueue", mock.MatchedBy(func(m domain.Mail) bool {
		return m.To == "a@x.com" && m.Subject == mailSubject &&
			strings.Contains(m.Body, "123456") && strings.Contains(m.Body, "5 minutes")
	})).Return(true)

	svc := newService(nil, ot, mq, nil, 5*time.Minute)
	require.NoError(t, svc.Issue(context.Background(), "a@x.com"))
	ot.AssertExpectations(t)
	mq.AssertExpectations(t)
}

func TestIssue_NoTTLLeavesExpiryUnset(t *testing.T) {
	ot := &mockOTPStore{}
	mq := &mockMailQueue{}
	ot.On("Put", mock.Anything, mock.MatchedBy(func(o *domain.OTP) bool { return o.ExpiresAt == 0 })).Return(nil)
	mq.On("Enqueue", mock.Anything).Return(true)

	svc := newService(nil, ot, mq, nil, 0)
	require.NoError(t, svc.Issue(context.Background(), "a@x.com"))
	ot.AssertExpectations(t)
}

func TestIssue_MailQueueFullIsNotAnError(t *testing.T) {
	ot := &mockOTPStore{}
	mq := &mockMailQueue{}
	ot.On("Put", mock.Anything, mock.Anything).Return(nil)
	mq.On("Enqueue", mock.Anything).Return(false)

	svc := newService(nil, ot, mq, nil, time.Minute)
	assert.NoError(t, svc.Issue(context.Background(), "a@x.com"))
}

func TestIssue_StoreFailureSkipsMail(t *testing.T) {
	ot := &mockOTPStore{}
	mq := &mockMailQueue{}
	ot.On("Put", mock.Anything, mock.Anything).Return(errors.New("throttled"))

	svc := newService(nil, ot, mq, nil, time.Minute)
	assert.Error(t, svc.Issue(context.Background(), "a@x.com"))
	mq.AssertNotCalled(t, "Enqueue", mock.Anything)
}

// --- Resend ---

func TestResend_UnregisteredAndVerifiedFailIdentically(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, fmt.Errorf("user: %w", domain.ErrNotFound))
	us.On("GetByEmail", mock.Anything, "done@x.com").Return(&domain.User{UserID: "u2", Verified: true}, nil)

	svc := newService(us, &mockOTPStore{}, &mockMailQueue{}, nil, time.Minute)
	errGhost := svc.Resend(context.Background(), "ghost@x.com")
	errDone := svc.Resend(context.Background(), "done@x.com")

	assert.ErrorIs(t, errGhost, domain.ErrVerifiedOrUnregistered)
	assert.ErrorIs(t, errDone, domain.ErrVerifiedOrUnregistered)
	assert.Equal(t, errGhost.Error(), errDone.Error())
}

func TestResend_ReplacesCode(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	mq := &mockMailQueue{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Put", mock.Anything, mock.Anything).Return(nil)
	mq.On("Enqueue", mock.Anything).Return(true)

	svc := newService(us, ot, mq, nil, time.Minute)
	svc.generate = func() (string, error) { return "654321", nil }
	require.NoError(t, svc.Resend(context.Background(), "a@x.com"))

	stored := ot.Calls[0].Arguments.Get(1).(*domain.OTP)
	assert.Equal(t, "654321", stored.Code)
}

func TestResend_StoreFaultPassesThrough(t *testing.T) {
	us := &mockUserStore{}
	boom := errors.New("dynamo down")
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(nil, boom)

	svc := newService(us, &mockOTPStore{}, &mockMailQueue{}, nil, time.Minute)
	err := svc.Resend(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrVerifiedOrUnregistered)
}

// --- Verify ---

func TestVerify_Success(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Email: "a@x.com", Code: "123456"}, nil)
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(nil)

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456"))
	ot.AssertExpectations(t)
}

func TestVerify_UserNotFound(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "ghost@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, &mockOTPStore{}, &mockMailQueue{}, nil, 0)
	assert.ErrorIs(t, svc.Verify(context.Background(), "ghost@x.com", "123456"), domain.ErrUserNotFound)
}

func TestVerify_AlreadyVerifiedCheckedBeforeCode(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1", Verified: true}, nil)

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "000000"), domain.ErrAlreadyVerified)
	ot.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestVerify_NoRecord(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(nil, fmt.Errorf("otp: %w", domain.ErrNotFound))

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "123456"), domain.ErrInvalidOTP)
}

func TestVerify_MismatchIsStringEquality(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456"}, nil)

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	for _, submitted := range []string{"654321", "0123456", "123456 ", "12345"} {
		assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", submitted), domain.ErrInvalidOTP, submitted)
	}
	ot.AssertNotCalled(t, "ConsumeAndVerify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerify_Expired(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456", ExpiresAt: fixedNow.Add(-time.Second).Unix()}, nil)

	svc := newService(us, ot, &mockMailQueue{}, nil, 5*time.Minute)
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "123456"), domain.ErrInvalidOTP)
}

func TestVerify_NotYetExpired(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456", ExpiresAt: fixedNow.Add(time.Minute).Unix()}, nil)
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(nil)

	svc := newService(us, ot, &mockMailQueue{}, nil, 5*time.Minute)
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456"))
}

func TestVerify_TransactionOutcomePassesThrough(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456"}, nil)
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(fmt.Errorf("tx: %w", domain.ErrInvalidOTP))

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "123456"), domain.ErrInvalidOTP)
}

// signup -> verify succeeds -> repeat verify reports AlreadyVerified.
func TestVerify_RepeatAfterSuccess(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil).Once()
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(&domain.User{UserID: "u1", Email: "a@x.com", Verified: true}, nil).Once()
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456"}, nil).Once()
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(nil).Once()

	svc := newService(us, ot, &mockMailQueue{}, nil, 0)
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456"))
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "123456"), domain.ErrAlreadyVerified)
}

func TestVerify_LimiterBlocksBeforeLookup(t *testing.T) {
	us := &mockUserStore{}
	lim := &mockLimiter{}
	lim.On("Allow", mock.Anything, "a@x.com").Return(fmt.Errorf("6 attempts: %w", domain.ErrTooManyAttempts))

	svc := newService(us, &mockOTPStore{}, &mockMailQueue{}, lim, 0)
	assert.ErrorIs(t, svc.Verify(context.Background(), "a@x.com", "123456"), domain.ErrTooManyAttempts)
	us.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestVerify_LimiterOutageFailsOpen(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	lim := &mockLimiter{}
	lim.On("Allow", mock.Anything, "a@x.com").Return(errors.New("redis: connection refused"))
	lim.On("Reset", mock.Anything, "a@x.com").Return(errors.New("redis: connection refused"))
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456"}, nil)
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(nil)

	svc := newService(us, ot, &mockMailQueue{}, lim, 0)
	assert.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456"))
}

func TestVerify_SuccessResetsLimiter(t *testing.T) {
	us := &mockUserStore{}
	ot := &mockOTPStore{}
	lim := &mockLimiter{}
	lim.On("Allow", mock.Anything, "a@x.com").Return(nil)
	lim.On("Reset", mock.Anything, "a@x.com").Return(nil)
	us.On("GetByEmail", mock.Anything, "a@x.com").Return(unverified(), nil)
	ot.On("Get", mock.Anything, "a@x.com").Return(&domain.OTP{Code: "123456"}, nil)
	ot.On("ConsumeAndVerify", mock.Anything, "u1", "a@x.com", "123456").Return(nil)

	svc := newService(us, ot, &mockMailQueue{}, lim, 0)
	require.NoError(t, svc.Verify(context.Background(), "a@x.com", "123456"))
	lim.AssertExpectations(t)
}

// --- mail copy ---

func TestHumanize(t *testing.T) {
	assert.Equal(t, "", humanize(0))
	assert.Equal(t, "5 minutes", humanize(5*time.Minute))
	assert.Equal(t, "1 minute", humanize(time.Minute))
	assert.Equal(t, "2 hours", humanize(2*time.Hour))
	assert.Equal(t, "90 seconds", humanize(90*time.Second))
}

func TestBuildMail_OmitsValidityWithoutTTL(t *testing.T) {
	m, err := buildMail("a@x.com", "123456", 0)
	require.NoError(t, err)
	assert.Contains(t, m.Body, "123456")
	assert.NotContains(t, m.Body, "valid for")
}
