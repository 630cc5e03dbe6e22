package socket

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/dmitrijs2005/azura/internal/server/models"
)

// Layer is the layer type of socket event chains.
type Layer = middleware.Layer[*Context, *Frame]

// Authenticator resolves an access token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type userResult struct {
	User *models.User `json:"user"`
}

type AuthenticationController struct {
	auth Authenticator
	log  logging.Logger
}

func NewAuthenticationController(auth Authenticator, log logging.Logger) *AuthenticationController {
	return &AuthenticationController{
		auth: auth,
		log:  log.With("module", "socket_authentication"),
	}
}

// Authenticate attaches the owner of Data["token"] to the socket. A rejected
// token and a token for a deleted user are both common.ErrInvalidToken.
func (c *AuthenticationController) Authenticate(ctx *Context) (*models.User, error) {
	token := ctx.String("token")
	if token == "" {
		return nil, common.ErrMissingToken
	}

	user, err := c.auth.Authenticate(ctx.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidToken),
			errors.Is(err, common.ErrTokenExpired),
			errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrInvalidToken
		default:
			return nil, fmt.Errorf("authenticate socket: %w", err)
		}
	}

	ctx.Socket.Attach(user)
	c.log.Info(ctx.Context(), "socket authenticated", "socket_id", ctx.Socket.ID(), "user_id", user.ID)
	return user, nil
}

// Unauthenticate detaches the user, if any.
func (c *AuthenticationController) Unauthenticate(ctx *Context) {
	if user := ctx.Socket.User(); user != nil {
		c.log.Info(ctx.Context(), "socket unauthenticated", "socket_id", ctx.Socket.ID(), "user_id", user.ID)
	}
	ctx.Socket.Detach()
}

func (c *AuthenticationController) AuthenticateLayer() Layer {
	return middleware.LayerFunc[*Context, *Frame](func(ctx *Context, f *Frame, next middleware.Next) error {
		user, err := c.Authenticate(ctx)
		if err != nil {
			return err
		}
		ctx.Result = userResult{User: user}
		return next()
	})
}

func (c *AuthenticationController) UnauthenticateLayer() Layer {
	return middleware.LayerFunc[*Context, *Frame](func(ctx *Context, f *Frame, next middleware.Next) error {
		c.Unauthenticate(ctx)
		ctx.Result = map[string]bool{"authenticated": false}
		return next()
	})
}

// RequireUser stops events from sockets without an attached user.
func RequireUser() Layer {
	return middleware.LayerFunc[*Context, *Frame](func(ctx *Context, f *Frame, next middleware.Next) error {
		if !ctx.Socket.IsAuthenticated() {
			return common.ErrMissingToken
		}
		return next()
	})
}

// WhoAmI reports the attached user.
func WhoAmI() Layer {
	return middleware.Terminal(func(ctx *Context, f *Frame) error {
		ctx.Result = userResult{User: ctx.Socket.User()}
		return nil
	})
}

// Events registers authenticate, unauthenticate and whoami on s.
func (c *AuthenticationController) Events(s *Server) {
	s.On("authenticate", c.AuthenticateLayer())
	s.On("unauthenticate", c.UnauthenticateLayer())
	s.On("whoami", RequireUser(), WhoAmI())
}
