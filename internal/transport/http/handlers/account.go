package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/engsiam/phone-email-auth/internal/transport/http/middleware"
	"github.com/engsiam/phone-email-auth/internal/usecase"
)

// AccountHandler exposes profile endpoints for authenticated accounts.
type AccountHandler struct {
	accounts *usecase.AccountService
}

// NewAccountHandler constructs an AccountHandler.
func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// RegisterRoutes binds account endpoints behind the auth middleware.
func (h *AccountHandler) RegisterRoutes(r *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	r.GET("/me", authMiddleware, h.Me)
}

// Me returns the profile of the authenticated account.
func (h *AccountHandler) Me(c *gin.Context) {
	accountID, ok := middleware.GetAuthenticatedAccountID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	account, err := h.accounts.GetProfile(c.Request.Context(), accountID)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "account not found"},
		}, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	c.JSON(http.StatusOK, newAccountSummary(account))
}
