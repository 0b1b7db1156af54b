package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
	"github.com/engsiam/phone-email-auth/internal/infra/security"
)

func verifiedTestAccount(t *testing.T, password string) *domain.Account {
	t.Helper()

	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}

	return &domain.Account{
		ID:            "acc-1",
		FullName:      "Jane Roe",
		Phone:         "+15550100",
		PhoneVerified: true,
		Email:         "jane@example.com",
		PasswordHash:  hash,
	}
}

func TestLoginSuccess(t *testing.T) {
	repo := &mockAccountRepository{byPhone: verifiedTestAccount(t, strongTestPassword)}
	issuer := testTokenIssuer(t)
	svc := NewAuthService(nil, repo, issuer)

	token, account, err := svc.Login(context.Background(), "+15550100", strongTestPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	if account.PasswordHash != "" {
		t.Fatal("login response leaks password hash")
	}

	claims, err := issuer.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.AccountID != "acc-1" {
		t.Fatalf("token carries wrong account id: %s", claims.AccountID)
	}
}

func TestLoginUnknownPhone(t *testing.T) {
	svc := NewAuthService(nil, &mockAccountRepository{}, testTokenIssuer(t))

	if _, _, err := svc.Login(context.Background(), "+15550100", strongTestPassword); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &mockAccountRepository{byPhone: verifiedTestAccount(t, strongTestPassword)}
	svc := NewAuthService(nil, repo, testTokenIssuer(t))

	if _, _, err := svc.Login(context.Background(), "+15550100", "Wrong!Password#123"); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestLoginEmptyPassword(t *testing.T) {
	repo := &mockAccountRepository{byPhone: verifiedTestAccount(t, strongTestPassword)}
	svc := NewAuthService(nil, repo, testTokenIssuer(t))

	if _, _, err := svc.Login(context.Background(), "+15550100", ""); !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected ErrWrongPassword, got %v", err)
	}
}

func TestLoginPhoneNotVerified(t *testing.T) {
	account := verifiedTestAccount(t, strongTestPassword)
	account.PhoneVerified = false

	repo := &mockAccountRepository{byPhone: account}
	svc := NewAuthService(nil, repo, testTokenIssuer(t))

	if _, _, err := svc.Login(context.Background(), "+15550100", strongTestPassword); !errors.Is(err, ErrPhoneNotVerified) {
		t.Fatalf("expected ErrPhoneNotVerified, got %v", err)
	}
}

func TestLoginEmailVerificationNotRequired(t *testing.T) {
	account := verifiedTestAccount(t, strongTestPassword)
	account.EmailVerified = false

	repo := &mockAccountRepository{byPhone: account}
	svc := NewAuthService(nil, repo, testTokenIssuer(t))

	if _, _, err := svc.Login(context.Background(), "+15550100", strongTestPassword); err != nil {
		t.Fatalf("login must not require email verification, got %v", err)
	}
}

func TestParseAccessToken(t *testing.T) {
	issuer := testTokenIssuer(t)
	svc := NewAuthService(nil, &mockAccountRepository{}, issuer)

	token, err := issuer.IssueSessionToken("acc-1", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	claims, err := svc.ParseAccessToken(context.Background(), token)
	if err != nil {
		t.Fatalf("ParseAccessToken returned error: %v", err)
	}
	if claims.AccountID != "acc-1" {
		t.Fatalf("unexpected account id: %s", claims.AccountID)
	}

	if _, err := svc.ParseAccessToken(context.Background(), "garbage"); !errors.Is(err, ErrInvalidAccessToken) {
		t.Fatalf("expected ErrInvalidAccessToken, got %v", err)
	}

	expired, err := issuer.IssueSessionToken("acc-1", -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}
	if _, err := svc.ParseAccessToken(context.Background(), expired); !errors.Is(err, ErrExpiredAccessToken) {
		t.Fatalf("expected ErrExpiredAccessToken, got %v", err)
	}
}
