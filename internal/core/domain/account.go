package domain

import "time"

// Account mirrors the persisted representation in the accounts table.
type Account struct {
	ID                         string
	FullName                   string
	Phone                      string
	PhoneOTP                   *string
	PhoneOTPExpiresAt          *time.Time
	PhoneVerified              bool
	Email                      string
	EmailVerificationToken     *string
	EmailVerificationExpiresAt *time.Time
	EmailVerified              bool
	PasswordHash               string
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// SetPhoneChallenge stores a pending OTP challenge. Code and expiry are always
// written as a pair.
func (a *Account) SetPhoneChallenge(code string, expiresAt time.Time) {
	codeCopy := code
	expiryCopy := expiresAt
	a.PhoneOTP = &codeCopy
	a.PhoneOTPExpiresAt = &expiryCopy
}

// ClearPhoneChallenge removes the pending OTP challenge.
func (a *Account) ClearPhoneChallenge() {
	a.PhoneOTP = nil
	a.PhoneOTPExpiresAt = nil
}

// PhoneChallengeMatches reports whether the supplied code equals the stored OTP
// and the challenge has not expired at the given instant.
func (a Account) PhoneChallengeMatches(code string, at time.Time) bool {
	if a.PhoneOTP == nil || a.PhoneOTPExpiresAt == nil {
		return false
	}
	if *a.PhoneOTP != code {
		return false
	}
	return at.Before(*a.PhoneOTPExpiresAt)
}

// SetEmailChallenge stores a pending email verification token. Token and expiry
// are always written as a pair.
func (a *Account) SetEmailChallenge(token string, expiresAt time.Time) {
	tokenCopy := token
	expiryCopy := expiresAt
	a.EmailVerificationToken = &tokenCopy
	a.EmailVerificationExpiresAt = &expiryCopy
}

// ClearEmailChallenge removes the pending email verification token.
func (a *Account) ClearEmailChallenge() {
	a.EmailVerificationToken = nil
	a.EmailVerificationExpiresAt = nil
}

// EmailChallengeExpired reports whether the record-level verification window has
// elapsed. A missing expiry counts as expired.
func (a Account) EmailChallengeExpired(at time.Time) bool {
	if a.EmailVerificationExpiresAt == nil {
		return true
	}
	return !at.Before(*a.EmailVerificationExpiresAt)
}

// MarkPhoneVerified flips the phone verification flag and clears the OTP pair.
// The flag is monotonic: no operation resets it to false.
func (a *Account) MarkPhoneVerified() {
	a.PhoneVerified = true
	a.ClearPhoneChallenge()
}

// MarkEmailVerified flips the email verification flag and clears the token pair.
func (a *Account) MarkEmailVerified() {
	a.EmailVerified = true
	a.ClearEmailChallenge()
}

// Sanitized returns a copy of the account safe to expose to callers.
func (a Account) Sanitized() Account {
	clone := a
	clone.PasswordHash = ""
	return clone
}
