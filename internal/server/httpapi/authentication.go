package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/azura/internal/common"
	"github.com/dmitrijs2005/azura/internal/logging"
	"github.com/dmitrijs2005/azura/internal/middleware"
	"github.com/dmitrijs2005/azura/internal/server/models"
	"github.com/dmitrijs2005/azura/internal/server/services"
)

// TokenValidator resolves an access token to a user id.
type TokenValidator interface {
	ValidateAccess(token string) (string, error)
}

// AuthenticationMiddleware requires a valid access token, taken from the
// Authorization bearer header or the access_token header, and stores the
// user id on the context.
func AuthenticationMiddleware(tokens TokenValidator) Layer {
	return middleware.LayerFunc[*Context, *Request](func(ctx *Context, req *Request, next middleware.Next) error {
		token := accessToken(req.Request)
		if token == "" {
			return common.ErrMissingToken
		}

		userID, err := tokens.ValidateAccess(token)
		if err != nil {
			return err
		}

		ctx.UserID = userID
		return next()
	})
}

func accessToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, common.BearerPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(h, common.BearerPrefix))
	}
	return strings.TrimSpace(r.Header.Get(common.AccessTokenHeaderName))
}

type messageResponse struct {
	Message string `json:"message"`
}

type availabilityResponse struct {
	IsAvailable bool `json:"isAvailable"`
}

type authResponse struct {
	User         *models.User `json:"user"`
	Token        string       `json:"token"`
	RefreshToken string       `json:"refreshToken"`
}

type userResponse struct {
	User *models.User `json:"user"`
}

func newAuthResponse(res *services.AuthResult) authResponse {
	return authResponse{
		User:         res.User,
		Token:        res.Tokens.AccessToken,
		RefreshToken: res.Tokens.RefreshToken,
	}
}

const resetRequestedMessage = "If an account exists for that email, a password reset link has been sent."

// AuthenticationController adapts AuthService to chain layers.
type AuthenticationController struct {
	auth *services.AuthService
	log  logging.Logger
}

func NewAuthenticationController(auth *services.AuthService, log logging.Logger) *AuthenticationController {
	return &AuthenticationController{
		auth: auth,
		log:  log.With("module", "authentication_controller"),
	}
}

// Routes registers the authentication routes on r.
func (c *AuthenticationController) Routes(r *Router) {
	authenticated := AuthenticationMiddleware(c.auth.Tokens())

	r.Get("/authentication/check-availability", c.CheckAvailability())
	r.Get("/authentication/availability", c.CheckAvailability())
	r.Post("/authentication/signup", c.Signup())
	r.Post("/authentication/login", c.Login())
	r.Delete("/authentication/logout", authenticated, c.Logout())
	r.Post("/authentication/refresh-token", c.RefreshToken())
	r.Post("/authentication/request-password-reset", c.RequestPasswordReset())
	r.Post("/authentication/reset-password", c.ResetPassword())
	r.Get("/users/me", authenticated, c.Me())
}

func (c *AuthenticationController) CheckAvailability() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		available, err := c.auth.CheckAvailability(ctx.Context(), req.String("email"))
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, availabilityResponse{IsAvailable: available})
		return nil
	})
}

func (c *AuthenticationController) Signup() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		res, err := c.auth.Signup(ctx.Context(), req.String("email"), req.String("password"))
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, newAuthResponse(res))
		return nil
	})
}

func (c *AuthenticationController) Login() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		res, err := c.auth.Login(ctx.Context(), req.String("email"), req.String("password"))
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, newAuthResponse(res))
		return nil
	})
}

// Logout must run after AuthenticationMiddleware.
func (c *AuthenticationController) Logout() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		if ctx.UserID == "" {
			return common.ErrMissingToken
		}
		if err := c.auth.Logout(ctx.Context(), ctx.UserID); err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, messageResponse{Message: "Logged out successfully."})
		return nil
	})
}

func (c *AuthenticationController) RefreshToken() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		res, err := c.auth.RefreshToken(ctx.Context(), req.String("token"))
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, newAuthResponse(res))
		return nil
	})
}

// RequestPasswordReset answers the same way whether or not the email is
// known, and whether or not the mail went out.
func (c *AuthenticationController) RequestPasswordReset() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		if err := c.auth.RequestPasswordReset(ctx.Context(), req.String("email")); err != nil {
			c.log.Warn(ctx.Context(), "password reset request failed", "code", common.Kind(err), "error", err)
		}
		ctx.JSON(http.StatusOK, messageResponse{Message: resetRequestedMessage})
		return nil
	})
}

func (c *AuthenticationController) ResetPassword() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		resetHash := req.String("resetHash")
		if resetHash == "" {
			return fmt.Errorf("%w: resetHash is required", common.ErrorValidation)
		}
		if err := c.auth.ResetPassword(ctx.Context(), resetHash, req.String("password")); err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, messageResponse{Message: "Password reset successfully."})
		return nil
	})
}

// Me must run after AuthenticationMiddleware.
func (c *AuthenticationController) Me() Layer {
	return middleware.Terminal(func(ctx *Context, req *Request) error {
		if ctx.UserID == "" {
			return common.ErrMissingToken
		}
		user, err := c.auth.CurrentUser(ctx.Context(), ctx.UserID)
		if err != nil {
			return err
		}
		ctx.JSON(http.StatusOK, userResponse{User: user})
		return nil
	})
}
