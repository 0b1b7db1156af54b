package security

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	otpMin = 100000
	otpMax = 999999
)

// OTPChallenge pairs a one-time code with its absolute expiry.
type OTPChallenge struct {
	Code      string
	ExpiresAt time.Time
}

// GenerateOTP produces a uniformly distributed 6-digit code expiring ttl from
// now. The generator is stateless: reuse prevention relies on overwrite and
// clear-on-success at the account record.
func GenerateOTP(ttl time.Duration) (OTPChallenge, error) {
	if ttl <= 0 {
		return OTPChallenge{}, fmt.Errorf("otp: ttl must be positive")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(otpMax-otpMin+1))
	if err != nil {
		return OTPChallenge{}, fmt.Errorf("otp: generate code: %w", err)
	}

	return OTPChallenge{
		Code:      fmt.Sprintf("%06d", n.Int64()+otpMin),
		ExpiresAt: time.Now().UTC().Add(ttl),
	}, nil
}
