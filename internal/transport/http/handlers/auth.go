package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/infra/logger"
	"github.com/letsconnect/auth-gateway/internal/transport/http/middleware"
	"github.com/letsconnect/auth-gateway/internal/usecase"
)

// AuthHandler exposes the sign-in and sign-out endpoints.
type AuthHandler struct {
	auth     *usecase.AuthService
	sessions *usecase.SessionService
	logger   *zap.Logger
}

// NewAuthHandler constructs AuthHandler.
func NewAuthHandler(auth *usecase.AuthService, sessions *usecase.SessionService, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{auth: auth, sessions: sessions, logger: log}
}

// RegisterRoutes binds authentication routes, applying optional middleware ahead of login.
func (h *AuthHandler) RegisterRoutes(r *gin.RouterGroup, loginMiddlewares ...gin.HandlerFunc) {
	if len(loginMiddlewares) > 0 {
		chain := append([]gin.HandlerFunc{}, loginMiddlewares...)
		chain = append(chain, h.login)
		r.POST("/login", chain...)
	} else {
		r.POST("/login", h.login)
	}

	r.POST("/logout", h.logout)
}

func (h *AuthHandler) login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "identifier and password are required"))
		return
	}

	account, err := h.auth.SignIn(c.Request.Context(), req.Identifier, req.Password)
	if err != nil {
		h.logger.Info("login rejected",
			zap.String("identifier", logger.MaskIdentifier(req.Identifier)),
			zap.Error(err),
		)
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "identifier and password are required"},
			// An unknown identifier answers exactly like a wrong password.
			{Err: usecase.ErrAccountNotFound, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrInvalidCredentials, Status: http.StatusUnauthorized, Message: "invalid credentials"},
			{Err: usecase.ErrRequestInFlight, Status: http.StatusConflict, Message: "a sign-in request is already being processed"},
		}, http.StatusBadGateway, "login failed")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		SessionToken: account.SessionToken,
		Account:      newAccountSummary(account),
		Next:         "home",
	})
}

// logout revokes the caller's session. It succeeds even when no live session
// is attached, so a client can always reach the signed-out state.
func (h *AuthHandler) logout(c *gin.Context) {
	token := middleware.SessionToken(c)

	if err := h.sessions.Logout(c.Request.Context(), token); err != nil {
		h.logger.Warn("logout failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, NewErrorResponse(c, "logout failed"))
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "signed out"})
}
