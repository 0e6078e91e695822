package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type LangController struct {
	service services.LangService
}

func NewLangController(service services.LangService) *LangController {
	return &LangController{service: service}
}

// GetLangs godoc
// @Summary List known languages
// @Tags langs
// @Produce json
// @Success 200 {array} models.Lang
// @Router /langs [get]
func (lc *LangController) GetLangs(c *gin.Context) {
	langs, err := lc.service.GetAllLangs(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, langs)
}
