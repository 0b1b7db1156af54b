package domain

import (
	"testing"
	"time"
)

func TestPhoneChallengeMatches(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var account Account
	account.SetPhoneChallenge("123456", now.Add(5*time.Minute))

	if !account.PhoneChallengeMatches("123456", now) {
		t.Fatal("expected matching code inside the window to pass")
	}

	if account.PhoneChallengeMatches("654321", now) {
		t.Fatal("expected wrong code to fail")
	}

	if account.PhoneChallengeMatches("123456", now.Add(5*time.Minute)) {
		t.Fatal("expected code at the expiry instant to fail")
	}

	if account.PhoneChallengeMatches("123456", now.Add(10*time.Minute)) {
		t.Fatal("expected expired code to fail")
	}
}

func TestPhoneChallengeMatchesWithoutChallenge(t *testing.T) {
	var account Account

	if account.PhoneChallengeMatches("123456", time.Now().UTC()) {
		t.Fatal("expected account without challenge to fail")
	}
}

func TestChallengePairsSetAndClearTogether(t *testing.T) {
	now := time.Now().UTC()

	var account Account
	account.SetPhoneChallenge("123456", now.Add(5*time.Minute))
	if account.PhoneOTP == nil || account.PhoneOTPExpiresAt == nil {
		t.Fatal("phone challenge pair not fully set")
	}

	account.ClearPhoneChallenge()
	if account.PhoneOTP != nil || account.PhoneOTPExpiresAt != nil {
		t.Fatal("phone challenge pair not fully cleared")
	}

	account.SetEmailChallenge("token", now.Add(24*time.Hour))
	if account.EmailVerificationToken == nil || account.EmailVerificationExpiresAt == nil {
		t.Fatal("email challenge pair not fully set")
	}

	account.ClearEmailChallenge()
	if account.EmailVerificationToken != nil || account.EmailVerificationExpiresAt != nil {
		t.Fatal("email challenge pair not fully cleared")
	}
}

func TestEmailChallengeExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var account Account
	if !account.EmailChallengeExpired(now) {
		t.Fatal("expected missing expiry to count as expired")
	}

	account.SetEmailChallenge("token", now.Add(24*time.Hour))
	if account.EmailChallengeExpired(now) {
		t.Fatal("expected window still open")
	}
	if !account.EmailChallengeExpired(now.Add(24 * time.Hour)) {
		t.Fatal("expected window closed at the expiry instant")
	}
}

func TestMarkVerifiedClearsChallenges(t *testing.T) {
	now := time.Now().UTC()

	var account Account
	account.SetPhoneChallenge("123456", now.Add(5*time.Minute))
	account.SetEmailChallenge("token", now.Add(24*time.Hour))

	account.MarkPhoneVerified()
	if !account.PhoneVerified {
		t.Fatal("phone not marked verified")
	}
	if account.PhoneOTP != nil || account.PhoneOTPExpiresAt != nil {
		t.Fatal("phone challenge survived verification")
	}

	account.MarkEmailVerified()
	if !account.EmailVerified {
		t.Fatal("email not marked verified")
	}
	if account.EmailVerificationToken != nil || account.EmailVerificationExpiresAt != nil {
		t.Fatal("email challenge survived verification")
	}
}

func TestSanitizedBlanksPasswordHash(t *testing.T) {
	account := Account{ID: "id", PasswordHash: "secret-hash"}

	clean := account.Sanitized()
	if clean.PasswordHash != "" {
		t.Fatal("sanitized account still carries password hash")
	}
	if account.PasswordHash != "secret-hash" {
		t.Fatal("sanitizing mutated the original account")
	}
}
