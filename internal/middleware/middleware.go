package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogger replaces the package logger, e.g. with the one configured in main
func SetLogger(l *logrus.Logger) {
	if l != nil {
		log = l
	}
}

// CredentialResolver is implemented by auth.Resolver
type CredentialResolver interface {
	Resolve(ctx context.Context, header http.Header, policy auth.Policy) (auth.Identity, error)
}

// Authenticate returns a middleware enforcing policy on every request.
// The policy is validated here so a misconfigured route fails at startup.
func Authenticate(resolver CredentialResolver, policy auth.Policy) (gin.HandlerFunc, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid auth policy: %w", err)
	}

	return func(c *gin.Context) {
		id, err := resolver.Resolve(c.Request.Context(), c.Request.Header, policy)
		if err != nil {
			abortWithError(c, err)
			return
		}
		mergeIdentity(c, id)
		c.Next()
	}, nil
}

// MustAuthenticate is like Authenticate but panics on an invalid policy
func MustAuthenticate(resolver CredentialResolver, policy auth.Policy) gin.HandlerFunc {
	h, err := Authenticate(resolver, policy)
	if err != nil {
		panic(err)
	}
	return h
}

// abortWithError answers credential failures with 401 and everything else with 500
func abortWithError(c *gin.Context, err error) {
	var credErr *auth.CredentialError
	if errors.As(err, &credErr) {
		respondWithError(c, http.StatusUnauthorized, credErr.Message)
		return
	}

	log.WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"method": c.Request.Method,
	}).WithError(err).Error("Credential lookup failed")
	respondWithError(c, http.StatusInternalServerError, "Internal server error")
}

func respondWithError(c *gin.Context, status int, message string) {
	c.JSON(status, models.NewAPIError(message))
	c.Abort()
}
