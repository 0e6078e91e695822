package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// CurrentIdentity returns the identity resolved by the auth middlewares so far
func CurrentIdentity(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

// mergeIdentity keeps fields resolved by earlier stages unless id sets them
func mergeIdentity(c *gin.Context, id auth.Identity) {
	current, _ := CurrentIdentity(c)
	if id.UserID != "" {
		current.UserID = id.UserID
	}
	if id.ConsumerID != "" {
		current.ConsumerID = id.ConsumerID
	}
	c.Set(identityKey, current)
}

// Identified adapts a handler that takes the resolved identity as a parameter.
// Requests that reach it without an identity are rejected.
func Identified(handler func(c *gin.Context, id auth.Identity)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, auth.ErrNotAuthorized.Message)
			return
		}
		handler(c, id)
	}
}
