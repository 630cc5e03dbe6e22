// Package users declares the credential store used by the authentication
// flow and its PostgreSQL implementation.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/azura/internal/server/models"
)

// Repository stores user identities. Emails reach it already normalised.
type Repository interface {
	// Create inserts user and fills in its ID and CreatedAt. A duplicate
	// email returns common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// FindByEmail, FindByID and FindByResetHash return common.ErrorNotFound
	// when no user matches.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByResetHash(ctx context.Context, resetHash string) (*models.User, error)

	// Save overwrites the mutable fields of an existing user.
	Save(ctx context.Context, user *models.User) error

	// SetResetHash replaces the reset fields of userID and leaves every
	// other column alone. A missing user returns common.ErrorNotFound.
	SetResetHash(ctx context.Context, userID, resetHash string, expiresAt time.Time) error

	// ClearResetHash clears the reset fields only while resetHash is still
	// the user's current one. Otherwise it returns common.ErrVersionConflict.
	ClearResetHash(ctx context.Context, userID, resetHash string) error

	// ConsumeResetHash sets a new password hash and clears the reset fields,
	// but only while resetHash is still the user's current one. Otherwise it
	// returns common.ErrVersionConflict.
	ConsumeResetHash(ctx context.Context, userID, resetHash, passwordHash string) error
}
