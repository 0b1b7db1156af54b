package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/engsiam/phone-email-auth/internal/infra/telemetry"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

// RegistrationHandler exposes endpoints for account registration and contact
// verification.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	metrics      *telemetry.Metrics
}

// NewRegistrationHandler constructs a RegistrationHandler. Metrics may be nil.
func NewRegistrationHandler(registration *usecase.RegistrationService, metrics *telemetry.Metrics) *RegistrationHandler {
	return &RegistrationHandler{
		registration: registration,
		metrics:      metrics,
	}
}

// RegisterRoutes binds registration endpoints.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/register", h.Register)
	r.POST("/verify-phone", h.VerifyPhone)
	r.GET("/verify-email/:token", h.VerifyEmail)
}

// Register creates a pending account and dispatches both verification
// challenges.
func (h *RegistrationHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	account, err := h.registration.Register(c.Request.Context(), req.FullName, req.Phone, req.Email, req.Password)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "accounts_phone_verified_key":
				c.JSON(http.StatusConflict, NewErrorResponse(c, "phone already verified by another account"))
			case "accounts_email_verified_key":
				c.JSON(http.StatusConflict, NewErrorResponse(c, "email already verified by another account"))
			default:
				c.JSON(http.StatusConflict, NewErrorResponse(c, "contact already registered"))
			}
			return
		}

		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMissingFields, Status: http.StatusBadRequest, Message: "all fields are required"},
			{Err: usecase.ErrWeakPassword, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrPhoneTaken, Status: http.StatusConflict, Message: "phone already verified by another account"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already verified by another account"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	if h.metrics != nil {
		h.metrics.RegistrationsTotal.Inc()
	}

	c.JSON(http.StatusCreated, RegisterResponse{
		Message: "account created, verify phone and email",
		Account: newAccountSummary(account),
	})
}

// VerifyPhone checks a pending OTP challenge, or issues a fresh code when
// regenerate is set.
func (h *RegistrationHandler) VerifyPhone(c *gin.Context) {
	var req VerifyPhoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid verification payload"))
		return
	}

	if req.Regenerate {
		if err := h.registration.RegeneratePhoneOTP(c.Request.Context(), req.Phone); err != nil {
			RespondWithMappedError(c, err, []ErrorCase{
				{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			}, http.StatusServiceUnavailable, "storage unavailable")
			return
		}

		c.JSON(http.StatusOK, MessageResponse{Message: "new otp sent"})
		return
	}

	if strings.TrimSpace(req.OTP) == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "otp is required"))
		return
	}

	if err := h.registration.VerifyPhone(c.Request.Context(), req.Phone, req.OTP); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrOTPInvalid, Status: http.StatusBadRequest, Message: "invalid or expired otp"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	if h.metrics != nil {
		h.metrics.VerificationsTotal.WithLabelValues("phone").Inc()
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "phone verified"})
}

// VerifyEmail validates a verification link token and marks the email verified.
func (h *RegistrationHandler) VerifyEmail(c *gin.Context) {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "verification token is required"))
		return
	}

	if err := h.registration.VerifyEmail(c.Request.Context(), token); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrEmailTokenInvalid, Status: http.StatusBadRequest, Message: "invalid verification token"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrLinkExpired, Status: http.StatusBadRequest, Message: "verification link expired"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	if h.metrics != nil {
		h.metrics.VerificationsTotal.WithLabelValues("email").Inc()
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "email verified"})
}
