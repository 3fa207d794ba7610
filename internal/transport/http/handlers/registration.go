package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/usecase"
)

// RegistrationHandler exposes the sign-up endpoint.
type RegistrationHandler struct {
	registration *usecase.RegistrationService
	logger       *zap.Logger
}

// NewRegistrationHandler constructs RegistrationHandler.
func NewRegistrationHandler(registration *usecase.RegistrationService, log *zap.Logger) *RegistrationHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &RegistrationHandler{registration: registration, logger: log}
}

// RegisterRoutes binds the registration route, applying optional middleware ahead of the handler.
func (h *RegistrationHandler) RegisterRoutes(r *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, middlewares...)
	chain = append(chain, h.register)
	r.POST("/register", chain...)
}

func (h *RegistrationHandler) register(c *gin.Context) {
	var req RegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid registration payload"))
		return
	}

	result, err := h.registration.SignUp(c.Request.Context(), usecase.SignUpInput{
		Username:        req.Username,
		Identifier:      req.Identifier,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "username, identifier, and password are required"},
			{Err: usecase.ErrPasswordMismatch, Status: http.StatusBadRequest, Message: "passwords do not match"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "username already taken"},
			{Err: usecase.ErrEmailTaken, Status: http.StatusConflict, Message: "email already registered"},
			{Err: usecase.ErrRequestInFlight, Status: http.StatusConflict, Message: "a sign-up request is already being processed"},
		}, http.StatusBadGateway, "registration failed")
		return
	}

	c.JSON(http.StatusCreated, RegistrationResponse{
		Account:          newAccountSummary(result.Account),
		PasswordStrength: result.PasswordStrength,
		Message:          "account created, you can sign in now",
	})
}
