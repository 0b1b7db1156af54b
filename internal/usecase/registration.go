package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/logger"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
	"github.com/engsiam/phone-email-auth/internal/repository"
)

const (
	defaultOTPTTL        = 5 * time.Minute
	defaultEmailTokenTTL = 24 * time.Hour
)

var (
	// ErrMissingFields indicates one or more required registration fields are empty.
	ErrMissingFields = errors.New("missing fields")
	// ErrWeakPassword indicates the password does not satisfy the strength policy.
	ErrWeakPassword = errors.New("weak password")
	// ErrPhoneTaken indicates the phone is already held by a phone-verified account.
	ErrPhoneTaken = errors.New("phone already verified by another account")
	// ErrEmailTaken indicates the email is already held by an email-verified account.
	ErrEmailTaken = errors.New("email already verified by another account")
	// ErrOTPInvalid indicates the supplied one-time code is wrong or expired.
	ErrOTPInvalid = errors.New("invalid or expired otp")
	// ErrEmailTokenInvalid indicates the verification token failed signature or
	// structure validation, or its embedded expiry has passed.
	ErrEmailTokenInvalid = errors.New("invalid verification token")
	// ErrLinkExpired indicates the record-level verification window has elapsed.
	ErrLinkExpired = errors.New("verification link expired")
)

// RegistrationService handles account onboarding and contact verification.
type RegistrationService struct {
	accounts          port.AccountRepository
	notifier          port.Notifier
	tokens            *security.TokenIssuer
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	otpTTL            time.Duration
	emailTokenTTL     time.Duration
	baseURL           string
}

// NewRegistrationService constructs a registration service.
func NewRegistrationService(cfg *config.AppConfig, accounts port.AccountRepository, notifier port.Notifier, tokens *security.TokenIssuer, validator *security.PasswordValidator, log *zap.Logger) *RegistrationService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	otpTTL := defaultOTPTTL
	emailTokenTTL := defaultEmailTokenTTL
	baseURL := "http://localhost:8080"
	if cfg != nil {
		if cfg.OTP.TTL > 0 {
			otpTTL = cfg.OTP.TTL
		}
		if cfg.JWT.EmailTokenTTL > 0 {
			emailTokenTTL = cfg.JWT.EmailTokenTTL
		}
		if cfg.Links.BaseURL != "" {
			baseURL = strings.TrimRight(cfg.Links.BaseURL, "/")
		}
	}

	return &RegistrationService{
		accounts:          accounts,
		notifier:          notifier,
		tokens:            tokens,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		otpTTL:            otpTTL,
		emailTokenTTL:     emailTokenTTL,
		baseURL:           baseURL,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *RegistrationService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Register creates a pending account and dispatches both verification
// challenges. Phone and email uniqueness is checked only against accounts that
// already verified the respective contact; unverified duplicates may coexist.
func (s *RegistrationService) Register(ctx context.Context, fullName, phone, email, password string) (domain.Account, error) {
	fullName = strings.TrimSpace(fullName)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	if fullName == "" || phone == "" || email == "" || password == "" {
		return domain.Account{}, ErrMissingFields
	}
	if s.tokens == nil {
		return domain.Account{}, fmt.Errorf("token issuer not configured")
	}

	if err := s.passwordValidator.Validate(password); err != nil {
		return domain.Account{}, fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	if _, err := s.accounts.GetVerifiedByPhone(ctx, phone); err == nil {
		return domain.Account{}, ErrPhoneTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup verified phone: %w", err)
	}

	if _, err := s.accounts.GetVerifiedByEmail(ctx, email); err == nil {
		return domain.Account{}, ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Account{}, fmt.Errorf("lookup verified email: %w", err)
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	otp, err := security.GenerateOTP(s.otpTTL)
	if err != nil {
		return domain.Account{}, fmt.Errorf("generate otp: %w", err)
	}

	emailToken, err := s.tokens.IssueEmailToken(email, s.emailTokenTTL)
	if err != nil {
		return domain.Account{}, fmt.Errorf("issue email token: %w", err)
	}

	now := s.now().UTC()
	account := domain.Account{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Phone:        phone,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	account.SetPhoneChallenge(otp.Code, otp.ExpiresAt)
	account.SetEmailChallenge(emailToken, now.Add(s.emailTokenTTL))

	if err := s.accounts.Create(ctx, account); err != nil {
		return domain.Account{}, err
	}

	s.dispatchSMS(ctx, phone, fmt.Sprintf("Your OTP code is %s", otp.Code))
	s.dispatchEmail(ctx, email, fmt.Sprintf("Verify your email: %s/api/v1/auth/verify-email/%s", s.baseURL, emailToken))

	return account.Sanitized(), nil
}

// VerifyPhone validates a pending OTP challenge and marks the phone verified.
func (s *RegistrationService) VerifyPhone(ctx context.Context, phone, otp string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if !account.PhoneChallengeMatches(strings.TrimSpace(otp), s.now().UTC()) {
		return ErrOTPInvalid
	}

	account.MarkPhoneVerified()
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

// RegeneratePhoneOTP overwrites the pending challenge with a fresh code and
// re-sends it. Verification state is unchanged.
func (s *RegistrationService) RegeneratePhoneOTP(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	otp, err := security.GenerateOTP(s.otpTTL)
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	account.SetPhoneChallenge(otp.Code, otp.ExpiresAt)
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	s.dispatchSMS(ctx, phone, fmt.Sprintf("Your new OTP is %s. It expires in %d minutes.", otp.Code, int(s.otpTTL.Minutes())))

	return nil
}

// VerifyEmail validates the signed token, then the record-level expiry, and
// marks the email verified. Both expiry checks are deliberate: the token embeds
// its own lifetime and the account row carries a second window that a reissue
// flow may move independently.
func (s *RegistrationService) VerifyEmail(ctx context.Context, token string) error {
	if s.tokens == nil {
		return fmt.Errorf("token issuer not configured")
	}

	claims, err := s.tokens.ParseEmailToken(token)
	if err != nil {
		return ErrEmailTokenInvalid
	}

	account, err := s.accounts.GetByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if account.EmailChallengeExpired(s.now().UTC()) {
		return ErrLinkExpired
	}

	account.MarkEmailVerified()
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

func (s *RegistrationService) dispatchSMS(ctx context.Context, phone, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendSMS(ctx, phone, body); err != nil {
		s.logger.Warn("sms dispatch failed",
			zap.String("phone", logger.MaskPhone(phone)),
			zap.Error(err),
		)
	}
}

func (s *RegistrationService) dispatchEmail(ctx context.Context, address, body string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendEmail(ctx, address, body); err != nil {
		s.logger.Warn("email dispatch failed",
			zap.String("email", logger.MaskEmail(address)),
			zap.Error(err),
		)
	}
}
