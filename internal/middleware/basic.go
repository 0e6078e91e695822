package middleware

import (
	"context"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/gin-gonic/gin"
)

// UserHeader carries Basic credentials on routes where Authorization holds
// the consumer secret
const UserHeader = "X-User-Authorization"

// UserAuthenticator checks an email and password pair. It returns
// auth.ErrInvalidCredentials when they do not match a user.
type UserAuthenticator interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// BasicAuth resolves the end user from HTTP Basic credentials read from header
func BasicAuth(users UserAuthenticator, header string) gin.HandlerFunc {
	if header == "" {
		header = auth.AuthorizationHeader
	}

	return func(c *gin.Context) {
		value := c.GetHeader(header)
		if value == "" {
			abortWithError(c, auth.ErrNoCredentials)
			return
		}

		// BasicAuth only reads Authorization, so parse a copy carrying value there
		req := c.Request.Clone(c.Request.Context())
		req.Header.Set(auth.AuthorizationHeader, value)
		email, password, ok := req.BasicAuth()
		if !ok {
			abortWithError(c, auth.ErrNoCredentials)
			return
		}

		user, err := users.Authenticate(c.Request.Context(), email, password)
		if err != nil {
			abortWithError(c, err)
			return
		}

		mergeIdentity(c, auth.Identity{UserID: user.ID})
		c.Next()
	}
}
