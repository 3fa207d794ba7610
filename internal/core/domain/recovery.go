package domain

import "time"

// RecoveryStep enumerates the wizard positions. Steps only ever advance by
// exactly one on a successful sub-step and never move backwards.
type RecoveryStep int

const (
	RecoveryStepIdentify RecoveryStep = 1
	RecoveryStepVerify   RecoveryStep = 2
	RecoveryStepReset    RecoveryStep = 3
)

// RecoverySession is the server-held state of one password-recovery wizard
// run. It lives in the recovery store under a TTL and is deleted when the
// wizard completes or expires; nothing about it is durable.
type RecoverySession struct {
	ID        string
	AccountID string
	Email     string
	Step      RecoveryStep
	CodeHash  string
	Attempts  int
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Advance moves the wizard forward one step. It is the only legal transition.
func (s *RecoverySession) Advance() {
	if s.Step < RecoveryStepReset {
		s.Step++
	}
}
