package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/server/config"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/dmitrijs2005/azura/internal/server/password"
	"github.com/dmitrijs2005/azura/internal/server/repositories/memory"
	"github.com/dmitrijs2005/azura/internal/server/services"
	"golang.org/x/crypto/bcrypt"
)

type captureMailer struct {
	mu      sync.Mutex
	secrets map[string]string
}

func (m *captureMailer) SendPasswordReset(_ context.Context, user *models.User, resetHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.secrets == nil {
		m.secrets = map[string]string{}
	}
	m.secrets[user.Email] = resetHash
	return nil
}

func (m *captureMailer) secretFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.secrets[email]
}

type server struct {
	router *Router
	auth   *services.AuthService
	mailer *captureMailer
}

func newServer(t *testing.T) *server {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.BcryptCost = bcrypt.MinCost

	log := logging.Nop()
	users := memory.NewUserRepository()
	hasher := password.NewBcryptHasher(cfg.BcryptCost)
	mailer := &captureMailer{}

	tokens := services.NewTokenService(memory.NewRefreshTokenRepository(), cfg, log)
	resets := services.NewPasswordResetService(users, hasher, mailer, tokens, cfg, log)
	auth := services.NewAuthService(users, tokens, resets, hasher, log)

	r := NewRouter(log)
	r.Use(Logging(log), QueryToJSON(), BodyJSON())
	NewAuthenticationController(auth, log).Routes(r)

	return &server{router: r, auth: auth, mailer: mailer}
}

func (s *server) do(t *testing.T, method, target string, body any, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec, out
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

var _ http.Handler = (*Router)(nil)
