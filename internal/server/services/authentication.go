package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/dmitrijs2005/azura/internal/server/repositories/users"
)

// AuthResult is what signup, login and refresh hand back to a client.
type AuthResult struct {
	User   *models.User
	Tokens *TokenPair
}

// AuthService is the account surface shared by the HTTP and socket
// controllers.
type AuthService struct {
	users  users.Repository
	tokens *TokenService
	resets *PasswordResetService
	hasher password.Hasher
	log    logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	users users.Repository,
	tokens *TokenService,
	resets *PasswordResetService,
	hasher password.Hasher,
	log logging.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		resets: resets,
		hasher: hasher,
		log:    log.With("module", "authentication"),
	}
}

// Tokens exposes the token service for middleware that validates access tokens.
func (s *AuthService) Tokens() *TokenService { return s.tokens }

func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", common.ErrorValidation)
	}
	if password == "" {
		return fmt.Errorf("%w: password is required", common.ErrorValidation)
	}
	return nil
}

// CheckAvailability reports whether no account uses email.
func (s *AuthService) CheckAvailability(ctx context.Context, email string) (bool, error) {
	email = common.NormalizeEmail(email)
	if email == "" {
		return false, fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	_, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, common.ErrorNotFound):
		return true, nil
	default:
		return false, fmt.Errorf("find user: %w", err)
	}
}

// Signup creates an account and logs it in.
func (s *AuthService) Signup(ctx context.Context, email, pw string) (*AuthResult, error) {
	email = common.NormalizeEmail(email)
	if err := validateCredentials(email, pw); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(pw)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// Login checks the credentials and issues a new pair, replacing the user's
// previous refresh token.
func (s *AuthService) Login(ctx context.Context, email, pw string) (*AuthResult, error) {
	user, err := s.checkCredentials(ctx, email, pw)
	if err != nil {
		return nil, err
	}

	pair, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &AuthResult{User: user, Tokens: pair}, nil
}

// checkCredentials is the only place that decides a login attempt. Unknown
// emails and wrong passwords both return common.ErrInvalidCredentials, and
// both pay for one hash comparison.
func (s *AuthService) checkCredentials(ctx context.Context, email, pw string) (*models.User, error) {
	email = common.NormalizeEmail(email)
	if email == "" || pw == "" {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = s.hasher.Compare(s.dummy(), pw)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if err := s.hasher.Compare(user.PasswordHash, pw); err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	return user, nil
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("not-a-real-password")
	})
	return s.dummyHash
}

// Logout revokes the user's refresh token. Access tokens already handed out
// stay valid until they expire.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		return err
	}
	s.log.Info(ctx, "user logged out", "user_id", userID)
	return nil
}

// RefreshToken rotates refreshToken and returns the new pair with its user.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResult, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: token is required", common.ErrorValidation)
	}

	pair, err := s.tokens.Rotate(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, pair.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			if err := s.tokens.Revoke(ctx, pair.UserID); err != nil {
				s.log.Warn(ctx, "revoking refresh token of missing user failed", "user_id", pair.UserID, "error", err)
			}
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	return &AuthResult{User: user, Tokens: pair}, nil
}

func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	return s.resets.RequestReset(ctx, email)
}

func (s *AuthService) ResetPassword(ctx context.Context, resetHash, pw string) error {
	_, err := s.resets.ResetPassword(ctx, resetHash, pw)
	return err
}

// CurrentUser loads the user an access token was issued to.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	return s.users.FindByID(ctx, userID)
}

// Authenticate resolves an access token to its user, for transports that
// keep the identity on a connection.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.ValidateAccess(token)
	if err != nil {
		return nil, err
	}
	return s.users.FindByID(ctx, userID)
}
