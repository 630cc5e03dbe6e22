package socket

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthenticator struct {
	users map[string]*models.User
	err   error
}

func (f *fakeAuthenticator) Authenticate(_ context.Context, token string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[token]
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return u, nil
}

func newEventContext(data map[string]any) *Context {
	return &Context{Ctx: context.Background(), Data: data, Socket: NewSocket("s1")}
}

func TestAuthenticate(t *testing.T) {
	alice := &models.User{ID: "u1", Email: "alice@example.com"}
	c := NewAuthenticationController(&fakeAuthenticator{users: map[string]*models.User{"valid": alice}}, logging.Nop())

	ctx := newEventContext(map[string]any{})
	_, err := c.Authenticate(ctx)
	require.ErrorIs(t, err, common.ErrMissingToken)

	ctx.Data["token"] = ""
	_, err = c.Authenticate(ctx)
	require.ErrorIs(t, err, common.ErrMissingToken)

	ctx.Data["token"] = 42
	_, err = c.Authenticate(ctx)
	require.ErrorIs(t, err, common.ErrMissingToken)

	ctx.Data["token"] = "garbage"
	_, err = c.Authenticate(ctx)
	require.ErrorIs(t, err, common.ErrInvalidToken)
	assert.False(t, ctx.Socket.IsAuthenticated())

	ctx.Data["token"] = "valid"
	user, err := c.Authenticate(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "u1", ctx.Socket.User().ID)

	c.Unauthenticate(ctx)
	assert.Nil(t, ctx.Socket.User())
	c.Unauthenticate(ctx)
	assert.Nil(t, ctx.Socket.User())
}

func TestAuthenticate_CollapsesRejections(t *testing.T) {
	for _, cause := range []error{common.ErrTokenExpired, common.ErrorNotFound, common.ErrInvalidToken} {
		c := NewAuthenticationController(&fakeAuthenticator{err: cause}, logging.Nop())
		_, err := c.Authenticate(newEventContext(map[string]any{"token": "t"}))
		assert.ErrorIs(t, err, common.ErrInvalidToken, cause.Error())
	}

	boom := errors.New("db down")
	c := NewAuthenticationController(&fakeAuthenticator{err: boom}, logging.Nop())
	_, err := c.Authenticate(newEventContext(map[string]any{"token": "t"}))
	require.ErrorIs(t, err, boom)
	assert.Equal(t, "Internal", common.Kind(err))
}

func TestLayers(t *testing.T) {
	alice := &models.User{ID: "u1"}
	c := NewAuthenticationController(&fakeAuthenticator{users: map[string]*models.User{"valid": alice}}, logging.Nop())
	ctx := newEventContext(map[string]any{"token": "valid"})

	whoami := middleware.New(RequireUser(), WhoAmI())
	require.ErrorIs(t, whoami.Run(ctx, &Frame{}), common.ErrMissingToken)

	require.NoError(t, middleware.New(c.AuthenticateLayer()).Run(ctx, &Frame{}))
	assert.Equal(t, userResult{User: alice}, ctx.Result)

	ctx.Result = nil
	require.NoError(t, whoami.Run(ctx, &Frame{}))
	assert.Equal(t, userResult{User: alice}, ctx.Result)

	require.NoError(t, middleware.New(c.UnauthenticateLayer()).Run(ctx, &Frame{}))
	assert.False(t, ctx.Socket.IsAuthenticated())
	require.ErrorIs(t, whoami.Run(ctx, &Frame{}), common.ErrMissingToken)
}

func TestSocket_ConcurrentAccess(t *testing.T) {
	s := NewSocket("s1")
	users := []*models.User{{ID: "a"}, {ID: "b"}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%5 == 0 {
				s.Detach()
				return
			}
			s.Attach(users[i%2])
		}(i)
		go func() {
			defer wg.Done()
			if u := s.User(); u != nil {
				assert.Contains(t, []string{"a", "b"}, u.ID)
			}
		}()
	}
	wg.Wait()
}
