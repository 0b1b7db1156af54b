package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/engsiam/phone-email-auth/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// AccountSummary describes the account view returned by the API. Challenge
// material and the password hash never appear here.
type AccountSummary struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Phone         string    `json:"phone"`
	PhoneVerified bool      `json:"phone_verified"`
	Email         string    `json:"email"`
	EmailVerified bool      `json:"email_verified"`
	CreatedAt     time.Time `json:"created_at"`
}

// RegisterRequest defines the account registration payload.
type RegisterRequest struct {
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse contains the created account and next steps.
type RegisterResponse struct {
	Message string         `json:"message"`
	Account AccountSummary `json:"account"`
}

// VerifyPhoneRequest holds the phone verification payload. Regenerate requests
// a fresh code instead of checking one.
type VerifyPhoneRequest struct {
	Phone      string `json:"phone" binding:"required"`
	OTP        string `json:"otp"`
	Regenerate bool   `json:"regenerate"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresIn   int            `json:"expires_in"`
	Account     AccountSummary `json:"account"`
}

// ForgotPasswordRequest starts a password reset for a phone-verified account.
type ForgotPasswordRequest struct {
	Phone string `json:"phone" binding:"required"`
}

// ResetPasswordRequest completes a password reset with the delivered OTP.
type ResetPasswordRequest struct {
	Phone       string `json:"phone" binding:"required"`
	OTP         string `json:"otp" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangePasswordRequest captures a password change for an authenticated account.
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newAccountSummary converts a domain account to its API view.
func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		ID:            account.ID,
		FullName:      account.FullName,
		Phone:         account.Phone,
		PhoneVerified: account.PhoneVerified,
		Email:         account.Email,
		EmailVerified: account.EmailVerified,
		CreatedAt:     account.CreatedAt,
	}
}
