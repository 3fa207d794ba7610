package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist on the backend.
	ErrNotFound = errors.New("repository: not found")
	// ErrInvalidCredentials indicates the backend rejected the username/password pair.
	ErrInvalidCredentials = errors.New("repository: invalid credentials")
	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = errors.New("repository: username already taken")
	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = errors.New("repository: email already taken")
	// ErrSessionInvalid indicates the backend no longer honors the session token.
	ErrSessionInvalid = errors.New("repository: invalid session token")
)
