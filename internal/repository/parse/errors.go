package parse

import (
	"fmt"

	"github.com/letsconnect/auth-gateway/internal/repository"
)

// Backend error codes with dedicated handling. Everything else is opaque.
const (
	codeObjectNotFound      = 101 // also returned for bad login credentials
	codeUsernameTaken       = 202
	codeEmailTaken          = 203
	codeInvalidSessionToken = 209
)

// APIError is the backend's error envelope.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
	Status  int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error %d: %s", e.Code, e.Message)
}

// Unwrap maps distinguished backend codes onto repository sentinels so callers
// can use errors.Is without knowing the backend's numeric scheme.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case codeInvalidSessionToken:
		return repository.ErrSessionInvalid
	case codeUsernameTaken:
		return repository.ErrUsernameTaken
	case codeEmailTaken:
		return repository.ErrEmailTaken
	case codeObjectNotFound:
		return repository.ErrInvalidCredentials
	default:
		return nil
	}
}
