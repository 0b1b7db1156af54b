package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/core/port"
	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
	"github.com/engsiam/phone-email-auth/internal/repository"
)

const defaultSessionTokenTTL = 7 * 24 * time.Hour

var (
	// ErrWrongPassword indicates the supplied password does not match the stored hash.
	ErrWrongPassword = errors.New("wrong password")
	// ErrPhoneNotVerified indicates login was attempted before phone verification.
	ErrPhoneNotVerified = errors.New("phone not verified")
	// ErrInvalidAccessToken indicates the bearer token is malformed or the
	// signature failed validation.
	ErrInvalidAccessToken = errors.New("invalid access token")
	// ErrExpiredAccessToken indicates the bearer token has expired.
	ErrExpiredAccessToken = errors.New("access token expired")
)

// AuthService coordinates login and bearer-token validation.
type AuthService struct {
	accounts        port.AccountRepository
	tokens          *security.TokenIssuer
	sessionTokenTTL time.Duration
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(cfg *config.AppConfig, accounts port.AccountRepository, tokens *security.TokenIssuer) *AuthService {
	ttl := defaultSessionTokenTTL
	if cfg != nil && cfg.JWT.SessionTokenTTL > 0 {
		ttl = cfg.JWT.SessionTokenTTL
	}

	return &AuthService{
		accounts:        accounts,
		tokens:          tokens,
		sessionTokenTTL: ttl,
	}
}

// Login validates phone credentials and issues a bearer token. Email
// verification is not required to log in; phone verification is.
func (s *AuthService) Login(ctx context.Context, phone, password string) (string, domain.Account, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", domain.Account{}, ErrAccountNotFound
	}

	account, err := s.accounts.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", domain.Account{}, ErrAccountNotFound
		}
		return "", domain.Account{}, fmt.Errorf("lookup account: %w", err)
	}

	ok, err := security.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return "", domain.Account{}, ErrWrongPassword
	}

	if !account.PhoneVerified {
		return "", domain.Account{}, ErrPhoneNotVerified
	}

	token, err := s.tokens.IssueSessionToken(account.ID, s.sessionTokenTTL)
	if err != nil {
		return "", domain.Account{}, fmt.Errorf("issue session token: %w", err)
	}

	return token, account.Sanitized(), nil
}

// ParseAccessToken validates a bearer token and returns its claims.
func (s *AuthService) ParseAccessToken(_ context.Context, raw string) (*security.SessionClaims, error) {
	claims, err := s.tokens.ParseSessionToken(raw)
	if err != nil {
		if errors.Is(err, security.ErrTokenExpired) {
			return nil, ErrExpiredAccessToken
		}
		return nil, ErrInvalidAccessToken
	}
	return claims, nil
}

// SessionTokenTTL reports the configured bearer token lifetime.
func (s *AuthService) SessionTokenTTL() time.Duration {
	return s.sessionTokenTTL
}
