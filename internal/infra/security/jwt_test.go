package security

import (
	"errors"
	"testing"
	"time"
)

func newTestIssuer(t *testing.T) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer("test-signing-secret", "auth-test")
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}
	return issuer
}

func TestNewTokenIssuerRequiresSecret(t *testing.T) {
	if _, err := NewTokenIssuer("   ", "auth-test"); !errors.Is(err, ErrSecretMissing) {
		t.Fatalf("expected ErrSecretMissing, got %v", err)
	}
}

func TestEmailTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueEmailToken("user@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueEmailToken returned error: %v", err)
	}

	claims, err := issuer.ParseEmailToken(token)
	if err != nil {
		t.Fatalf("ParseEmailToken returned error: %v", err)
	}

	if claims.Email != "user@example.com" {
		t.Fatalf("unexpected email claim: %s", claims.Email)
	}
}

func TestSessionTokenRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueSessionToken("account-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	claims, err := issuer.ParseSessionToken(token)
	if err != nil {
		t.Fatalf("ParseSessionToken returned error: %v", err)
	}

	if claims.AccountID != "account-123" {
		t.Fatalf("unexpected account id claim: %s", claims.AccountID)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueSessionToken("account-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := issuer.ParseSessionToken(tampered); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for tampered token, got %v", err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	issuer := newTestIssuer(t)

	other, err := NewTokenIssuer("different-secret", "auth-test")
	if err != nil {
		t.Fatalf("NewTokenIssuer returned error: %v", err)
	}

	token, err := other.IssueSessionToken("account-123", time.Hour)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	if _, err := issuer.ParseSessionToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestParseReportsExpiry(t *testing.T) {
	issuer := newTestIssuer(t)

	token, err := issuer.IssueSessionToken("account-123", -time.Minute)
	if err != nil {
		t.Fatalf("IssueSessionToken returned error: %v", err)
	}

	if _, err := issuer.ParseSessionToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestParseRejectsEmptyToken(t *testing.T) {
	issuer := newTestIssuer(t)

	if _, err := issuer.ParseEmailToken(""); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for empty token, got %v", err)
	}
}
