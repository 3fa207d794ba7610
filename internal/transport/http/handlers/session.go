package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/letsconnect/auth-gateway/internal/transport/http/middleware"
	"github.com/letsconnect/auth-gateway/internal/usecase"
)

// SessionHandler exposes the current-session endpoint used by the landing
// screen to decide whether a stored session is still valid.
type SessionHandler struct {
	sessions *usecase.SessionService
}

// NewSessionHandler constructs SessionHandler.
func NewSessionHandler(sessions *usecase.SessionService) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// RegisterRoutes binds the session route behind the session middleware.
func (h *SessionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/session", middleware.RequireSession(h.sessions), h.current)
}

func (h *SessionHandler) current(c *gin.Context) {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "session invalid or expired"))
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Account: newAccountSummary(account)})
}
