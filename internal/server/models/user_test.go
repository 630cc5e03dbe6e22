package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSON_ExposesOnlyPublicFields(t *testing.T) {
	hash := "digest"
	exp := time.Now()
	u := User{
		ID:                 "u1",
		Email:              "a@example.com",
		PasswordHash:       "bcrypt-hash",
		ResetHash:          &hash,
		ResetHashExpiresAt: &exp,
		CreatedAt:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]any{
		"id":        "u1",
		"email":     "a@example.com",
		"createdAt": "2026-01-01T00:00:00Z",
	}, got)
}

func TestUser_ResetHelpers(t *testing.T) {
	var u User
	assert.False(t, u.HasPendingReset())

	empty := ""
	u.ResetHash = &empty
	assert.False(t, u.HasPendingReset())

	h := "digest"
	exp := time.Now()
	u.ResetHash = &h
	u.ResetHashExpiresAt = &exp
	assert.True(t, u.HasPendingReset())

	u.ClearReset()
	assert.Nil(t, u.ResetHash)
	assert.Nil(t, u.ResetHashExpiresAt)
}
