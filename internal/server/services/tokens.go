// Package services contains server-side business logic: token issuance and
// rotation, the password reset flow and the account operations exposed by
// the transports.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/auth"
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/repositories/refreshtokens"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken      string    `json:"token"`
	RefreshToken     string    `json:"refreshToken"`
	UserID           string    `json:"-"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenService mints token pairs and rotates refresh tokens. Only the digest
// of the current refresh token is stored, one per user.
type TokenService struct {
	store      refreshtokens.Repository
	issuer     *auth.Issuer
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        logging.Logger
}

func NewTokenService(store refreshtokens.Repository, cfg *config.Config, log logging.Logger) *TokenService {
	return &TokenService{
		store:      store,
		issuer:     auth.NewIssuer([]byte(cfg.SecretKey)),
		accessTTL:  cfg.AccessTokenValidityDuration,
		refreshTTL: cfg.RefreshTokenValidityDuration,
		now:        time.Now,
		log:        log.With("module", "tokens"),
	}
}

func (s *TokenService) setClock(now func() time.Time) {
	s.now = now
	s.issuer = s.issuer.WithClock(now)
}

func (s *TokenService) mint(userID string) (*TokenPair, error) {
	access, accessClaims, err := s.issuer.Generate(userID, auth.KindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := s.issuer.Generate(userID, auth.KindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		UserID:           userID,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

// Issue mints a pair for userID and makes its refresh token the current one,
// superseding any earlier refresh token of that user.
func (s *TokenService) Issue(ctx context.Context, userID string) (*TokenPair, error) {
	pair, err := s.mint(userID)
	if err != nil {
		return nil, fmt.Errorf("mint tokens: %w", err)
	}

	if err := s.store.Upsert(ctx, userID, common.Digest(pair.RefreshToken), pair.RefreshExpiresAt); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return pair, nil
}

// ValidateAccess checks an access token without touching the store and
// returns its user id.
func (s *TokenService) ValidateAccess(token string) (string, error) {
	claims, err := s.issuer.Parse(token, auth.KindAccess)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}

// Rotate exchanges a current refresh token for a new pair. The presented
// token stops working; presenting it again, or racing another rotation of
// it, yields common.ErrInvalidToken.
func (s *TokenService) Rotate(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.issuer.Parse(refreshToken, auth.KindRefresh)
	if err != nil {
		return nil, err
	}
	userID := claims.UserID()

	pair, err := s.mint(userID)
	if err != nil {
		return nil, fmt.Errorf("mint tokens: %w", err)
	}

	err = s.store.Swap(ctx, userID, common.Digest(refreshToken), common.Digest(pair.RefreshToken), pair.RefreshExpiresAt)
	if err != nil {
		if errors.Is(err, common.ErrVersionConflict) || errors.Is(err, common.ErrorNotFound) {
			s.log.Warn(ctx, "stale refresh token rejected", "user_id", userID)
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	s.log.Debug(ctx, "refresh token rotated", "user_id", userID)
	return pair, nil
}

// Revoke drops the user's current refresh token. It is idempotent.
func (s *TokenService) Revoke(ctx context.Context, userID string) error {
	if err := s.store.Delete(ctx, userID); err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}
