package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/letsconnect/auth-gateway/internal/usecase"
)

// PasswordHandler exposes the three-step password-recovery wizard.
type PasswordHandler struct {
	recovery *usecase.PasswordResetService
	logger   *zap.Logger
	isDev    bool
}

// NewPasswordHandler constructs PasswordHandler.
func NewPasswordHandler(recovery *usecase.PasswordResetService, log *zap.Logger, isDev bool) *PasswordHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PasswordHandler{recovery: recovery, logger: log, isDev: isDev}
}

// RegisterRoutes binds the recovery routes, applying optional middleware ahead
// of the start step.
func (h *PasswordHandler) RegisterRoutes(r *gin.RouterGroup, startMiddlewares ...gin.HandlerFunc) {
	chain := append([]gin.HandlerFunc{}, startMiddlewares...)
	chain = append(chain, h.start)
	r.POST("/start", chain...)

	r.POST("/verify", h.verify)
	r.POST("/complete", h.complete)
}

func (h *PasswordHandler) start(c *gin.Context) {
	var req RecoveryStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "email is required"))
		return
	}

	result, err := h.recovery.Start(c.Request.Context(), req.Email)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "recovery requires a registered email address"},
			{Err: usecase.ErrEmailNotFound, Status: http.StatusNotFound, Message: "email not found"},
			{Err: usecase.ErrRequestInFlight, Status: http.StatusConflict, Message: "a recovery request is already being processed"},
		}, http.StatusBadGateway, "could not start recovery")
		return
	}

	response := RecoveryStartResponse{
		RecoveryID:  result.RecoveryID,
		MaskedEmail: result.MaskedEmail,
		ExpiresAt:   result.ExpiresAt,
	}

	// SECURITY: Only expose the raw code in development mode; in production it
	// travels exclusively through the delivery consumers.
	if h.isDev && result.Code != "" {
		code := result.Code
		response.DevCode = &code
	}

	c.JSON(http.StatusCreated, response)
}

func (h *PasswordHandler) verify(c *gin.Context) {
	var req RecoveryVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "recovery_id and code are required"))
		return
	}

	if err := h.recovery.Verify(c.Request.Context(), req.RecoveryID, req.Code); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "recovery_id and code are required"},
			{Err: usecase.ErrRecoverySessionNotFound, Status: http.StatusGone, Message: "recovery session not found or expired"},
			{Err: usecase.ErrRecoveryStepOrder, Status: http.StatusConflict, Message: "recovery step out of order"},
			{Err: usecase.ErrRecoveryCodeInvalid, Status: http.StatusUnprocessableEntity, Message: "verification code invalid"},
			{Err: usecase.ErrRecoveryTooManyAttempts, Status: http.StatusTooManyRequests, Message: "too many attempts, start over"},
			{Err: usecase.ErrRequestInFlight, Status: http.StatusConflict, Message: "a recovery request is already being processed"},
		}, http.StatusBadGateway, "could not verify code")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "code verified, set a new password"})
}

func (h *PasswordHandler) complete(c *gin.Context) {
	var req RecoveryCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "recovery_id and passwords are required"))
		return
	}

	if err := h.recovery.Complete(c.Request.Context(), req.RecoveryID, req.Password, req.ConfirmPassword); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "recovery_id and passwords are required"},
			{Err: usecase.ErrPasswordMismatch, Status: http.StatusBadRequest, Message: "passwords do not match"},
			{Err: usecase.ErrPasswordPolicyViolation, Status: http.StatusBadRequest, Message: "password does not meet requirements"},
			{Err: usecase.ErrRecoverySessionNotFound, Status: http.StatusGone, Message: "recovery session not found or expired"},
			{Err: usecase.ErrRecoveryStepOrder, Status: http.StatusConflict, Message: "recovery step out of order"},
			{Err: usecase.ErrRequestInFlight, Status: http.StatusConflict, Message: "a recovery request is already being processed"},
		}, http.StatusBadGateway, "could not reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password updated, sign in with your new password"})
}
