package httpapi

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signup(t *testing.T, s *server, email, pw string) map[string]any {
	t.Helper()
	rec, body := s.do(t, http.MethodPost, "/authentication/signup", map[string]string{"email": email, "password": pw}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return body
}

func TestCheckAvailability(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/authentication/check-availability", "/authentication/availability"} {
		rec, body := s.do(t, http.MethodGet, path+"?email=available@example.com", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["isAvailable"])
	}

	signup(t, s, "taken@example.com", "password")

	rec, body := s.do(t, http.MethodGet, "/authentication/check-availability?email=taken@example.com", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["isAvailable"])

	rec, body = s.do(t, http.MethodGet, "/authentication/check-availability", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", body["code"])
}

func TestSignup(t *testing.T) {
	s := newServer(t)

	body := signup(t, s, "test@example.com", "password")
	assert.NotEmpty(t, body["token"])
	assert.NotEmpty(t, body["refreshToken"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, user, "password_hash")

	rec, body := s.do(t, http.MethodPost, "/authentication/signup", map[string]string{"email": "TEST@example.com", "password": "other"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "EmailTaken", body["code"])

	rec, body = s.do(t, http.MethodPost, "/authentication/signup", map[string]string{"email": "nope"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", body["code"])
}

func TestLogin(t *testing.T) {
	s := newServer(t)
	signup(t, s, "user@example.com", "password")

	rec, body := s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "user@example.com", "password": "password"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, body["token"])
	assert.NotNil(t, body["user"])

	wrong, wrongBody := s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "user@example.com", "password": "wrong"}, nil)
	unknown, unknownBody := s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "ghost@example.com", "password": "password"}, nil)

	assert.Equal(t, http.StatusBadRequest, wrong.Code)
	assert.Equal(t, http.StatusBadRequest, unknown.Code)
	assert.Equal(t, wrongBody, unknownBody)
	assert.Equal(t, "InvalidCredentials", wrongBody["code"])
}

func TestLogout(t *testing.T) {
	s := newServer(t)
	body := signup(t, s, "user@example.com", "password")
	token := body["token"].(string)
	refresh := body["refreshToken"].(string)

	rec, out := s.do(t, http.MethodDelete, "/authentication/logout", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "MissingToken", out["code"])

	rec, out = s.do(t, http.MethodDelete, "/authentication/logout", nil, bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", out["code"])

	rec, out = s.do(t, http.MethodDelete, "/authentication/logout", nil, map[string]string{"access_token": token})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["message"])

	rec, out = s.do(t, http.MethodPost, "/authentication/refresh-token", map[string]string{"token": refresh}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", out["code"])
}

func TestRefreshToken(t *testing.T) {
	s := newServer(t)
	body := signup(t, s, "user@example.com", "password")
	refresh := body["refreshToken"].(string)

	rec, rotated := s.do(t, http.MethodPost, "/authentication/refresh-token", map[string]string{"token": refresh}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEqual(t, refresh, rotated["refreshToken"])
	assert.NotNil(t, rotated["user"])

	rec, out := s.do(t, http.MethodPost, "/authentication/refresh-token", map[string]string{"token": refresh}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", out["code"])

	rec, _ = s.do(t, http.MethodPost, "/authentication/refresh-token", map[string]string{"token": rotated["refreshToken"].(string)}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, out = s.do(t, http.MethodPost, "/authentication/refresh-token", map[string]string{"token": body["token"].(string)}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", out["code"])

	rec, out = s.do(t, http.MethodPost, "/authentication/refresh-token", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", out["code"])
}

func TestPasswordReset(t *testing.T) {
	s := newServer(t)
	signup(t, s, "user@example.com", "password")

	known, knownBody := s.do(t, http.MethodPost, "/authentication/request-password-reset", map[string]string{"email": "user@example.com"}, nil)
	unknown, unknownBody := s.do(t, http.MethodPost, "/authentication/request-password-reset", map[string]string{"email": "ghost@example.com"}, nil)
	require.Equal(t, http.StatusOK, known.Code)
	require.Equal(t, http.StatusOK, unknown.Code)
	assert.Equal(t, knownBody, unknownBody)

	secret := s.mailer.secretFor("user@example.com")
	require.NotEmpty(t, secret)

	rec, out := s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"resetHash": "bogus", "password": "newpassword"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidResetHash", out["code"])

	rec, out = s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"password": "newpassword"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", out["code"])

	rec, _ = s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"resetHash": secret, "password": "newpassword"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, out = s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"resetHash": secret, "password": "again"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidResetHash", out["code"])

	rec, _ = s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "user@example.com", "password": "password"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "user@example.com", "password": "newpassword"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMe(t *testing.T) {
	s := newServer(t)
	body := signup(t, s, "user@example.com", "password")

	rec, out := s.do(t, http.MethodGet, "/users/me", nil, bearer(body["token"].(string)))
	require.Equal(t, http.StatusOK, rec.Code)
	user := out["user"].(map[string]any)
	assert.Equal(t, "user@example.com", user["email"])

	rec, out = s.do(t, http.MethodGet, "/users/me", nil, bearer(body["refreshToken"].(string)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "InvalidToken", out["code"])
}

func TestPasswordTooLong(t *testing.T) {
	s := newServer(t)
	long := strings.Repeat("a", 73)

	rec, out := s.do(t, http.MethodPost, "/authentication/signup", map[string]string{"email": "user@example.com", "password": long}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", out["code"])

	signup(t, s, "user@example.com", "password")

	rec, out = s.do(t, http.MethodPost, "/authentication/login", map[string]string{"email": "user@example.com", "password": long}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidCredentials", out["code"])

	rec, _ = s.do(t, http.MethodPost, "/authentication/request-password-reset", map[string]string{"email": "user@example.com"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	secret := s.mailer.secretFor("user@example.com")

	rec, out = s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"resetHash": secret, "password": long}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Validation", out["code"])

	rec, _ = s.do(t, http.MethodPost, "/authentication/reset-password", map[string]string{"resetHash": secret, "password": "newpassword"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
