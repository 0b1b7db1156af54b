package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	uuid "github.com/google/uuid"
)

var (
	// ErrTokenInvalid indicates the token signature or structure failed validation.
	ErrTokenInvalid = errors.New("jwt: token invalid")
	// ErrTokenExpired indicates the token carried a valid signature but has elapsed.
	ErrTokenExpired = errors.New("jwt: token expired")
	// ErrSecretMissing indicates the issuer was constructed without a signing secret.
	ErrSecretMissing = errors.New("jwt: signing secret is required")
)

// TokenIssuer signs and validates HS256 bearer tokens. The signing secret is
// process-wide configuration, loaded once at startup; no rotation is modeled.
type TokenIssuer struct {
	secret []byte
	issuer string
}

// NewTokenIssuer constructs a TokenIssuer for the supplied secret.
func NewTokenIssuer(secret, issuer string) (*TokenIssuer, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrSecretMissing
	}
	return &TokenIssuer{secret: []byte(secret), issuer: issuer}, nil
}

// EmailVerificationClaims carries the email address being proven.
type EmailVerificationClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// SessionClaims identifies an authenticated account.
type SessionClaims struct {
	AccountID string `json:"uid"`
	jwt.RegisteredClaims
}

// IssueEmailToken signs a verification token embedding the email claim.
func (t *TokenIssuer) IssueEmailToken(email string, ttl time.Duration) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("jwt: email is required")
	}

	claims := EmailVerificationClaims{
		Email:            email,
		RegisteredClaims: t.registeredClaims(ttl),
	}

	return t.sign(claims)
}

// ParseEmailToken validates the token and returns the embedded claims.
func (t *TokenIssuer) ParseEmailToken(raw string) (*EmailVerificationClaims, error) {
	claims := &EmailVerificationClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// IssueSessionToken signs a bearer token identifying the account.
func (t *TokenIssuer) IssueSessionToken(accountID string, ttl time.Duration) (string, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return "", fmt.Errorf("jwt: account id is required")
	}

	claims := SessionClaims{
		AccountID:        accountID,
		RegisteredClaims: t.registeredClaims(ttl),
	}

	return t.sign(claims)
}

// ParseSessionToken validates the bearer token and returns the embedded claims.
func (t *TokenIssuer) ParseSessionToken(raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	if err := t.parse(raw, claims); err != nil {
		return nil, err
	}
	if claims.AccountID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (t *TokenIssuer) registeredClaims(ttl time.Duration) jwt.RegisteredClaims {
	now := time.Now().UTC()
	return jwt.RegisteredClaims{
		Issuer:    t.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
}

func (t *TokenIssuer) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("jwt: sign token: %w", err)
	}
	return signed, nil
}

func (t *TokenIssuer) parse(raw string, claims jwt.Claims) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("jwt: unexpected signing method %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrTokenInvalid
	}
	if !token.Valid {
		return ErrTokenInvalid
	}

	return nil
}
