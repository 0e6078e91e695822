package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RefreshTokenHeader carries the refresh token on PUT and DELETE /auth
const RefreshTokenHeader = "Refresh-Token"

// GrantStore is implemented by auth.GormTokenStore
type GrantStore interface {
	GetOrCreate(ctx context.Context, userID, consumerID string) (*models.Auth, error)
	Refresh(ctx context.Context, refresh string) (*models.Auth, error)
	RemoveByRefresh(ctx context.Context, refresh string) error
	Now() time.Time
}

type AuthController struct {
	store GrantStore
}

func NewAuthController(store GrantStore) *AuthController {
	return &AuthController{store: store}
}

// IssueToken godoc
// @Summary Issue a token pair
// @Description Returns the grant of the authenticated user for the calling consumer, creating it on first use
// @Tags auth
// @Produce json
// @Param X-User-Authorization header string true "Basic credentials of the user"
// @Success 200 {object} models.AuthResponse
// @Failure 401 {object} models.APIError
// @Security SecretAuth
// @Router /auth [get]
func (ac *AuthController) IssueToken(c *gin.Context, id auth.Identity) {
	grant, err := ac.store.GetOrCreate(c.Request.Context(), id.UserID, id.ConsumerID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.AuthResponse{
		AccessToken:  grant.AccessToken,
		RefreshToken: grant.RefreshToken,
		ExpiresIn:    grant.ExpiresIn(ac.store.Now()),
	})
}

// RefreshToken godoc
// @Summary Refresh an access token
// @Description Mints a new access token once the current one has expired
// @Tags auth
// @Produce json
// @Param Refresh-Token header string true "Refresh token"
// @Success 200 {object} models.RefreshResponse
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Router /auth [put]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	refresh := c.GetHeader(RefreshTokenHeader)
	if refresh == "" {
		respondError(c, auth.ErrNoRefreshToken)
		return
	}

	grant, err := ac.store.Refresh(c.Request.Context(), refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.RefreshResponse{
		AccessToken: grant.AccessToken,
		ExpiresIn:   grant.ExpiresIn(ac.store.Now()),
	})
}

// RevokeToken godoc
// @Summary Revoke a grant
// @Tags auth
// @Produce json
// @Param Refresh-Token header string true "Refresh token"
// @Success 200 {string} string "OK"
// @Failure 401 {object} models.APIError
// @Router /auth [delete]
func (ac *AuthController) RevokeToken(c *gin.Context) {
	refresh := c.GetHeader(RefreshTokenHeader)
	if refresh == "" {
		respondError(c, auth.ErrNoRefreshToken)
		return
	}

	if err := ac.store.RemoveByRefresh(c.Request.Context(), refresh); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}
