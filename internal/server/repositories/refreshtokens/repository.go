// Package refreshtokens declares the refresh-token store and its PostgreSQL
// and Redis implementations. Each user has at most one current token, kept
// as a digest.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/azura/internal/server/models"
)

// Repository holds the current refresh-token digest of every user.
type Repository interface {
	// Upsert makes tokenHash the user's current refresh token, replacing any
	// earlier one.
	Upsert(ctx context.Context, userID, tokenHash string, expires time.Time) error

	// Find returns the user's current token, or common.ErrorNotFound.
	Find(ctx context.Context, userID string) (*models.RefreshToken, error)

	// Swap replaces oldHash with newHash only if oldHash is still current.
	// A miss returns common.ErrVersionConflict; of several concurrent swaps
	// from the same oldHash at most one succeeds.
	Swap(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error

	// Delete removes the user's token. Deleting a missing token is not an error.
	Delete(ctx context.Context, userID string) error
}
