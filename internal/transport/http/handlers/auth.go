package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engsiam/phone-email-auth/internal/infra/telemetry"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth    *usecase.AuthService
	metrics *telemetry.Metrics
}

// NewAuthHandler constructs an AuthHandler. Metrics may be nil.
func NewAuthHandler(auth *usecase.AuthService, metrics *telemetry.Metrics) *AuthHandler {
	return &AuthHandler{auth: auth, metrics: metrics}
}

// RegisterRoutes binds authentication routes.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/login", h.Login)
}

// Login validates phone credentials and returns a bearer token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid login payload"))
		return
	}

	token, account, err := h.auth.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		h.countLogin("failure")
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
			{Err: usecase.ErrWrongPassword, Status: http.StatusUnauthorized, Message: "wrong password"},
			{Err: usecase.ErrPhoneNotVerified, Status: http.StatusForbidden, Message: "phone not verified"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	h.countLogin("success")

	c.JSON(http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.auth.SessionTokenTTL().Seconds()),
		Account:     newAccountSummary(account),
	})
}

func (h *AuthHandler) countLogin(outcome string) {
	if h.metrics == nil {
		return
	}
	h.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
}
