package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engsiam/phone-email-auth/internal/infra/telemetry"
	"github.com/engsiam/phone-email-auth/internal/transport/http/middleware"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

// PasswordHandler exposes the forgot, reset, and change password endpoints.
type PasswordHandler struct {
	passwords *usecase.PasswordService
	metrics   *telemetry.Metrics
}

// NewPasswordHandler constructs a PasswordHandler. Metrics may be nil.
func NewPasswordHandler(passwords *usecase.PasswordService, metrics *telemetry.Metrics) *PasswordHandler {
	return &PasswordHandler{passwords: passwords, metrics: metrics}
}

// RegisterRoutes binds password endpoints. authMiddleware guards the change
// endpoint, which acts on the authenticated account.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	r.POST("/forgot", h.Forgot)
	r.POST("/reset", h.Reset)
	r.POST("/change", authMiddleware, h.Change)
}

// Forgot issues a reset OTP for a phone-verified account.
func (h *PasswordHandler) Forgot(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.passwords.ForgotPassword(c.Request.Context(), req.Phone); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "reset otp sent"})
}

// Reset validates the reset OTP and replaces the password.
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.passwords.ResetPassword(c.Request.Context(), req.Phone, req.OTP, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Message: "invalid or expired otp"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	if h.metrics != nil {
		h.metrics.PasswordResetsTotal.Inc()
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password reset"})
}

// Change replaces the password for the authenticated account.
func (h *PasswordHandler) Change(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid payload"))
		return
	}

	if err := h.passwords.ChangePassword(c.Request.Context(), accountID, req.OldPassword, req.NewPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrWrongPassword, Status: http.StatusUnauthorized, Message: "wrong password"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password changed"})
}
