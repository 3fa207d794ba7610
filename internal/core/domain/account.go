package domain

import "time"

// Account is a read-only view of a record owned entirely by the external
// backend. The gateway never mutates it locally; every change is requested of
// the backend through a port.
type Account struct {
	ID           string
	Username     string
	Email        string
	MobileNumber string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// SessionToken is populated only on responses from authenticate and
	// current-session calls. It is an opaque handle minted by the backend.
	SessionToken string
}

// NewAccount carries the fields for an account-creation request. Exactly one
// of Email or MobileNumber is set, depending on identifier classification.
type NewAccount struct {
	Username     string
	Password     string
	Email        string
	MobileNumber string
}
