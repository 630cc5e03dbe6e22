package models

import "time"

// User is the identity record the authentication flow reads and updates.
// ResetHash holds the digest of the outstanding reset secret, if any.
type User struct {
	ID                 string     `json:"id"`
	Email              string     `json:"email"`
	PasswordHash       string     `json:"-"`
	ResetHash          *string    `json:"-"`
	ResetHashExpiresAt *time.Time `json:"-"`
	CreatedAt          time.Time  `json:"createdAt"`
}

// HasPendingReset reports whether a reset secret is outstanding.
func (u *User) HasPendingReset() bool {
	return u.ResetHash != nil && *u.ResetHash != ""
}

// ClearReset drops the reset secret and its expiry.
func (u *User) ClearReset() {
	u.ResetHash = nil
	u.ResetHashExpiresAt = nil
}
