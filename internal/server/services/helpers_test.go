package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/dmitrijs2005/azura/internal/server/repositories/memory"
	"golang.org/x/crypto/bcrypt"
)

type sentReset struct {
	userID string
	email  string
	secret string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, user *models.User, resetHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentReset{userID: user.ID, email: user.Email, secret: resetHash})
	return f.err
}

func (f *fakeMailer) last(t *testing.T) sentReset {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		t.Fatal("no reset message sent")
	}
	return f.sent[len(f.sent)-1]
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	cfg     *config.Config
	users   *memory.UserRepository
	refresh *memory.RefreshTokenRepository
	mailer  *fakeMailer
	clock   *clock
	tokens  *TokenService
	resets  *PasswordResetService
	auth    *AuthService
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost
	return cfg
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cfg:     testConfig(),
		users:   memory.NewUserRepository(),
		refresh: memory.NewRefreshTokenRepository(),
		mailer:  &fakeMailer{},
		clock:   &clock{now: time.Now().Truncate(time.Second)},
	}
	log := logging.Nop()
	hasher := password.NewBcryptHasher(f.cfg.BcryptCost)

	f.tokens = NewTokenService(f.refresh, f.cfg, log)
	f.tokens.setClock(f.clock.Now)

	f.resets = NewPasswordResetService(f.users, hasher, f.mailer, f.tokens, f.cfg, log)
	f.resets.now = f.clock.Now

	f.auth = NewAuthService(f.users, f.tokens, f.resets, hasher, log)
	return f
}

func (f *fixture) signup(t *testing.T, email, pw string) *AuthResult {
	t.Helper()
	res, err := f.auth.Signup(context.Background(), email, pw)
	if err != nil {
		t.Fatalf("signup: %v", err)
	}
	return res
}

var errBoom = errors.New("boom")
