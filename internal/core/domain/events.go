package domain

import "time"

// UserSignedUpEvent is published after the backend confirms account creation.
type UserSignedUpEvent struct {
	EventID      string
	AccountID    string
	Username     string
	Email        string
	MobileNumber string
	SignedUpAt   time.Time
	Metadata     map[string]any
}

// PasswordResetRequestedEvent is published when recovery step 1 succeeds and a
// verification code has been generated. Downstream consumers own delivery.
type PasswordResetRequestedEvent struct {
	EventID           string
	AccountID         string
	RecoveryID        string
	RequestedAt       time.Time
	Destination       string
	MaskedDestination string
	Code              string
	ExpiresAt         time.Time
	Metadata          map[string]any
}

// PasswordChangedEvent is published after recovery step 3 persists the new
// password through the backend.
type PasswordChangedEvent struct {
	EventID    string
	AccountID  string
	RecoveryID string
	ChangedAt  time.Time
	Metadata   map[string]any
}

// SessionRevokedEvent is published after an explicit logout is confirmed.
type SessionRevokedEvent struct {
	EventID   string
	AccountID string
	RevokedAt time.Time
	Reason    string
	Metadata  map[string]any
}
