package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
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

// AccountSummary describes the minimal account view returned by the API.
type AccountSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobile_number,omitempty"`
}

func newAccountSummary(account *domain.Account) AccountSummary {
	return AccountSummary{
		ID:           account.ID,
		Username:     account.Username,
		Email:        account.Email,
		MobileNumber: account.MobileNumber,
	}
}

// LoginRequest defines the payload for the login endpoint. Identifier is a
// single field holding either an email address or a mobile number.
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login. Next
// names the post-login route so clients replace history instead of stacking
// the login screen.
type LoginResponse struct {
	SessionToken string         `json:"session_token"`
	Account      AccountSummary `json:"account"`
	Next         string         `json:"next"`
}

// RegistrationRequest defines the account sign-up payload.
type RegistrationRequest struct {
	Username        string `json:"username" binding:"required"`
	Identifier      string `json:"identifier" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// RegistrationResponse contains the created account and the advisory password
// strength score (0-4). The score never gated acceptance.
type RegistrationResponse struct {
	Account          AccountSummary `json:"account"`
	PasswordStrength int            `json:"password_strength"`
	Message          string         `json:"message"`
}

// RecoveryStartRequest opens a password-recovery wizard session.
type RecoveryStartRequest struct {
	Email string `json:"email" binding:"required"`
}

// RecoveryStartResponse returns the wizard handle. The verification code is
// delivered out of band; DevCode is populated in development mode only.
type RecoveryStartResponse struct {
	RecoveryID  string    `json:"recovery_id"`
	MaskedEmail string    `json:"masked_email"`
	ExpiresAt   time.Time `json:"expires_at"`
	DevCode     *string   `json:"dev_code,omitempty"`
}

// RecoveryVerifyRequest submits the emailed verification code.
type RecoveryVerifyRequest struct {
	RecoveryID string `json:"recovery_id" binding:"required"`
	Code       string `json:"code" binding:"required"`
}

// RecoveryCompleteRequest submits the new password for the final wizard step.
type RecoveryCompleteRequest struct {
	RecoveryID      string `json:"recovery_id" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

// SessionResponse describes the account behind a live session.
type SessionResponse struct {
	Account AccountSummary `json:"account"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
