// Package memory provides in-process implementations of the user and
// refresh-token stores, used by tests and by the memory storage mode.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/google/uuid"
)

// UserRepository keeps users in maps guarded by one mutex. Returned users
// are copies.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*models.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]*models.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.ResetHash != nil {
		h := *u.ResetHash
		c.ResetHash = &h
	}
	if u.ResetHashExpiresAt != nil {
		e := *u.ResetHashExpiresAt
		c.ResetHashExpiresAt = &e
	}
	return &c
}

func (r *UserRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[user.Email]; ok {
		return nil, common.ErrEmailTaken
	}

	user.ID = uuid.NewString()
	user.CreatedAt = r.now()
	r.byID[user.ID] = clone(user)
	r.byEmail[user.Email] = user.ID

	return user, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(r.byID[id]), nil
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) FindByResetHash(_ context.Context, resetHash string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.byID {
		if u.ResetHash != nil && *u.ResetHash == resetHash {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *UserRepository) Save(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.byID[user.ID]
	if !ok {
		return common.ErrorNotFound
	}
	if old.Email != user.Email {
		if _, taken := r.byEmail[user.Email]; taken {
			return common.ErrEmailTaken
		}
		delete(r.byEmail, old.Email)
		r.byEmail[user.Email] = user.ID
	}

	r.byID[user.ID] = clone(user)
	return nil
}

func (r *UserRepository) ConsumeResetHash(_ context.Context, userID, resetHash, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || u.ResetHash == nil || *u.ResetHash != resetHash {
		return common.ErrVersionConflict
	}

	u.PasswordHash = passwordHash
	u.ClearReset()
	return nil
}

func (r *UserRepository) SetResetHash(_ context.Context, userID, resetHash string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok {
		return common.ErrorNotFound
	}

	u.ResetHash = &resetHash
	u.ResetHashExpiresAt = &expiresAt
	return nil
}

func (r *UserRepository) ClearResetHash(_ context.Context, userID, resetHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.byID[userID]
	if !ok || u.ResetHash == nil || *u.ResetHash != resetHash {
		return common.ErrVersionConflict
	}

	u.ClearReset()
	return nil
}
