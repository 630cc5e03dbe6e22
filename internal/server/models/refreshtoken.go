package models

import "time"

// RefreshToken is the single current refresh token of a user, stored as a digest.
type RefreshToken struct {
	UserID    string
	TokenHash string
	Expires   time.Time
	CreatedAt time.Time
}
