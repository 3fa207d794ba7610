package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/letsconnect/auth-gateway/internal/core/domain"
	"github.com/letsconnect/auth-gateway/internal/usecase"
)

const (
	// SessionTokenHeader carries the backend-issued session token. A Bearer
	// Authorization header is accepted as an alternative.
	SessionTokenHeader = "X-Session-Token"
	// AccountKey is the gin context key holding the resolved account.
	AccountKey = "account"
)

// ErrorResponse matches the handlers.ErrorResponse structure
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// newErrorResponse creates an error response with trace ID
func newErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:   errorMsg,
		TraceID: GetTraceID(c),
	}
}

// SessionToken extracts the session token from the request, preferring the
// dedicated header over Authorization. Missing tokens yield an empty string.
func SessionToken(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(SessionTokenHeader)); token != "" {
		return token
	}

	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}

	return ""
}

// RequireSession resolves the request's session token against the backend and
// aborts with 401 when it is missing or no longer honored. The resolved
// account is stored on the context for handlers downstream.
func RequireSession(sessions *usecase.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := SessionToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				newErrorResponse(c, "session token required"))
			return
		}

		account, err := sessions.Current(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, usecase.ErrSessionInvalid) {
				c.AbortWithStatusJSON(http.StatusUnauthorized,
					newErrorResponse(c, "session invalid or expired"))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadGateway,
				newErrorResponse(c, "session check failed"))
			return
		}

		c.Set(AccountKey, account)
		c.Next()
	}
}

// AccountFromContext returns the account stored by RequireSession.
func AccountFromContext(c *gin.Context) (*domain.Account, bool) {
	value, exists := c.Get(AccountKey)
	if !exists {
		return nil, false
	}
	account, ok := value.(*domain.Account)
	return account, ok
}
