package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/models"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondError translates service and credential errors into API errors.
// Anything else is logged and hidden behind a 500.
func respondError(ctx *gin.Context, err error) {
	var svcErr *services.ServiceError
	var credErr *auth.CredentialError
	switch {
	case errors.As(err, &svcErr):
		ctx.JSON(svcErr.Status, models.NewAPIError(svcErr.Message, svcErr.Code))
	case errors.As(err, &credErr):
		ctx.JSON(http.StatusUnauthorized, models.NewAPIError(credErr.Message))
	case errors.Is(err, auth.ErrTokenStillValid):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(err.Error()))
	default:
		log.WithFields(log.Fields{
			"method": ctx.Request.Method,
			"path":   ctx.FullPath(),
		}).WithError(err).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError("Internal server error"))
	}
}

// bindOptionalJSON decodes the body into v. It reports false when the body
// is missing or is not valid JSON.
func bindOptionalJSON(ctx *gin.Context, v interface{}) bool {
	if ctx.Request.Body == nil || ctx.Request.ContentLength == 0 {
		return false
	}
	return ctx.ShouldBindJSON(v) == nil
}

// ok is the body of successful mutations without a payload
const ok = "OK"
