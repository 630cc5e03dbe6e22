package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/mailer"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/dmitrijs2005/azura/internal/server/repositories/users"
)

// resetSecretSize is the number of random bytes in a reset secret.
const resetSecretSize = 32

// SessionRevoker drops a user's refresh token.
type SessionRevoker interface {
	Revoke(ctx context.Context, userID string) error
}

// PasswordResetService issues single-use reset secrets and consumes them.
// The secret is mailed in plaintext; only its digest is stored.
type PasswordResetService struct {
	users    users.Repository
	hasher   password.Hasher
	mailer   mailer.Mailer
	sessions SessionRevoker
	validity time.Duration
	revoke   bool
	now      func() time.Time
	log      logging.Logger
}

func NewPasswordResetService(
	users users.Repository,
	hasher password.Hasher,
	m mailer.Mailer,
	sessions SessionRevoker,
	cfg *config.Config,
	log logging.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		users:    users,
		hasher:   hasher,
		mailer:   m,
		sessions: sessions,
		validity: cfg.ResetHashValidityDuration,
		revoke:   cfg.RevokeSessionsOnReset,
		now:      time.Now,
		log:      log.With("module", "passwordreset"),
	}
}

// RequestReset mails a fresh reset secret to the owner of email, replacing
// any outstanding one. An unknown email is not an error, so callers cannot
// probe which addresses exist. Delivery failures are logged only.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Debug(ctx, "password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	secret, err := common.MakeRandHexString(resetSecretSize)
	if err != nil {
		return fmt.Errorf("generate reset secret: %w", err)
	}

	digest := common.Digest(secret)
	expires := s.now().Add(s.validity)

	if err := s.users.SetResetHash(ctx, user.ID, digest, expires); err != nil {
		return fmt.Errorf("save reset hash: %w", err)
	}
	user.ResetHash = &digest
	user.ResetHashExpiresAt = &expires

	if err := s.mailer.SendPasswordReset(ctx, user, secret); err != nil {
		s.log.Error(ctx, "password reset delivery failed", "user_id", user.ID, "error", err)
	}

	s.log.Info(ctx, "password reset requested", "user_id", user.ID)
	return nil
}

// ResetPassword sets newPassword for the owner of resetHash and invalidates
// the secret. A secret works once: a consumed, unknown or superseded secret
// is common.ErrInvalidResetHash, an outdated one common.ErrExpiredResetHash.
func (s *PasswordResetService) ResetPassword(ctx context.Context, resetHash, newPassword string) (*models.User, error) {
	if resetHash == "" {
		return nil, common.ErrInvalidResetHash
	}
	if newPassword == "" {
		return nil, fmt.Errorf("%w: password is required", common.ErrorValidation)
	}

	digest := common.Digest(resetHash)

	user, err := s.users.FindByResetHash(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidResetHash
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if user.ResetHashExpiresAt == nil || !s.now().Before(*user.ResetHashExpiresAt) {
		// A newer request may have replaced the hash since it was read.
		err := s.users.ClearResetHash(ctx, user.ID, digest)
		if err != nil && !errors.Is(err, common.ErrVersionConflict) {
			s.log.Warn(ctx, "clearing expired reset hash failed", "user_id", user.ID, "error", err)
		}
		return nil, common.ErrExpiredResetHash
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	if err := s.users.ConsumeResetHash(ctx, user.ID, digest, hash); err != nil {
		if errors.Is(err, common.ErrVersionConflict) {
			return nil, common.ErrInvalidResetHash
		}
		return nil, fmt.Errorf("consume reset hash: %w", err)
	}

	user.PasswordHash = hash
	user.ClearReset()

	if s.revoke {
		if err := s.sessions.Revoke(ctx, user.ID); err != nil {
			s.log.Error(ctx, "revoking sessions after reset failed", "user_id", user.ID, "error", err)
		}
	}

	s.log.Info(ctx, "password reset completed", "user_id", user.ID)
	return user, nil
}
