package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/server/models"
)

// RefreshTokenRepository keeps one token per user. Swap compares and
// replaces under the same lock.
type RefreshTokenRepository struct {
	mu     sync.Mutex
	tokens map[string]models.RefreshToken
	now    func() time.Time
}

func NewRefreshTokenRepository() *RefreshTokenRepository {
	return &RefreshTokenRepository{
		tokens: make(map[string]models.RefreshToken),
		now:    time.Now,
	}
}

func (r *RefreshTokenRepository) Upsert(_ context.Context, userID, tokenHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[userID] = models.RefreshToken{UserID: userID, TokenHash: tokenHash, Expires: expires, CreatedAt: r.now()}
	return nil
}

func (r *RefreshTokenRepository) Find(_ context.Context, userID string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &t, nil
}

func (r *RefreshTokenRepository) Swap(_ context.Context, userID, oldHash, newHash string, expires time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[userID]
	if !ok || t.TokenHash != oldHash {
		return common.ErrVersionConflict
	}

	r.tokens[userID] = models.RefreshToken{UserID: userID, TokenHash: newHash, Expires: expires, CreatedAt: r.now()}
	return nil
}

func (r *RefreshTokenRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.tokens, userID)
	return nil
}
