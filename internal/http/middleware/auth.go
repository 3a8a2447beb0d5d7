package middleware

import (
	"context"

	"taskmanager/internal/domain"

	"github.com/gin-gonic/gin"
)

// Authenticator resolves a session token into an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (domain.Identity, error)
}

// Auth holds the authorization chain. Compose as IsAuthenticated followed by
// IsManager or IsOwner.
type Auth struct {
	authenticator Authenticator
	cookieName    string
}

func NewAuth(authenticator Authenticator, cookieName string) *Auth {
	return &Auth{authenticator: authenticator, cookieName: cookieName}
}

// IsAuthenticated reads the session cookie and attaches the identity to the
// request context.
func (a *Auth) IsAuthenticated() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(a.cookieName)
		if err != nil || token == "" {
			_ = c.Error(domain.Forbidden(domain.MsgNoCredential))
			c.Abort()
			return
		}

		id, err := a.authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(domain.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// IsOwner requires the identity to match the path parameter param.
func (a *Auth) IsOwner(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := domain.IdentityFrom(c.Request.Context())
		if !ok {
			_ = c.Error(domain.InvalidInput(domain.MsgInvalidSession))
			c.Abort()
			return
		}
		if id.UserID != c.Param(param) {
			_ = c.Error(domain.Forbidden(domain.MsgForbidden))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (a *Auth) IsManager() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := domain.IdentityFrom(c.Request.Context())
		if !ok || id.Role == "" {
			_ = c.Error(domain.InvalidInput(domain.MsgInvalidSession))
			c.Abort()
			return
		}
		if !id.IsManager() {
			_ = c.Error(domain.Forbidden(domain.MsgForbidden))
			c.Abort()
			return
		}
		c.Next()
	}
}
