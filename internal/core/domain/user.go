package domain

import (
	"errors"
	"time"
)

var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")
var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrInsufficientCredits = errors.New("insufficient credits")

// User models an authenticated account with a metered credit balance.
// Credits is a cached projection of the ledger; it is mutated only by the
// credit service and never goes negative.
type User struct {
	ID             string     `json:"id"`
	Email          string     `json:"email"`
	Name           string     `json:"name"`
	PasswordHash   string     `json:"-"`
	Credits        int        `json:"credits"`
	TrialUsed      bool       `json:"trial_used"`
	TrialExpiresAt *time.Time `json:"trial_expires_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// TrialExpired reports whether the trial window has elapsed at the given time.
func (u *User) TrialExpired(now time.Time) bool {
	return u.TrialExpiresAt != nil && now.After(*u.TrialExpiresAt)
}
