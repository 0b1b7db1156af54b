package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/logger"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
	"github.com/engsiam/phone-email-auth/internal/repository"
)

// PasswordService coordinates the forgot/reset/change password flows.
type PasswordService struct {
	accounts          port.AccountRepository
	notifier          port.Notifier
	passwordValidator *security.PasswordValidator
	logger            *zap.Logger
	now               func() time.Time
	otpTTL            time.Duration
}

// NewPasswordService constructs a PasswordService.
func NewPasswordService(cfg *config.AppConfig, accounts port.AccountRepository, notifier port.Notifier, validator *security.PasswordValidator, log *zap.Logger) *PasswordService {
	if validator == nil {
		validator = security.DefaultPasswordValidator()
	}
	if log == nil {
		log = zap.NewNop()
	}

	otpTTL := defaultOTPTTL
	if cfg != nil && cfg.OTP.TTL > 0 {
		otpTTL = cfg.OTP.TTL
	}

	return &PasswordService{
		accounts:          accounts,
		notifier:          notifier,
		passwordValidator: validator,
		logger:            log,
		now:               time.Now,
		otpTTL:            otpTTL,
	}
}

// WithClock overrides the internal clock, used in tests.
func (s *PasswordService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// ForgotPassword issues a fresh reset OTP for a phone-verified account.
// Accounts that never verified their phone cannot start a reset.
func (s *PasswordService) ForgotPassword(ctx context.Context, phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ErrAccountNotFound
	}

	account, err := s.accounts.GetVerifiedByPhone(ctx, phone)
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

	if s.notifier != nil {
		if err := s.notifier.SendSMS(ctx, phone, fmt.Sprintf("Reset password OTP: %s", otp.Code)); err != nil {
			s.logger.Warn("sms dispatch failed",
				zap.String("phone", logger.MaskPhone(phone)),
				zap.Error(err),
			)
		}
	}

	return nil
}

// ResetPassword validates the reset OTP and replaces the stored hash. A missing
// account, a code mismatch, and an elapsed window are indistinguishable to the
// caller.
func (s *PasswordService) ResetPassword(ctx context.Context, phone, otp, newPassword string) error {
	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	account, err := s.accounts.GetByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrOTPInvalid
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	if !account.PhoneChallengeMatches(strings.TrimSpace(otp), s.now().UTC()) {
		return ErrOTPInvalid
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	account.ClearPhoneChallenge()
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}

// ChangePassword replaces the hash for an authenticated account after
// re-verifying the current password.
func (s *PasswordService) ChangePassword(ctx context.Context, accountID, oldPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, strings.TrimSpace(accountID))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccountNotFound
		}
		return fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(oldPassword, account.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return ErrWrongPassword
	}

	if err := s.passwordValidator.Validate(newPassword); err != nil {
		return fmt.Errorf("%w: %v", ErrWeakPassword, err)
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	account.PasswordHash = passwordHash
	account.UpdatedAt = s.now().UTC()

	if err := s.accounts.Update(ctx, *account); err != nil {
		return fmt.Errorf("save account: %w", err)
	}

	return nil
}
