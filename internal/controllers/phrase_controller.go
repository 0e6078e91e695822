package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type PhraseController struct {
	service services.PhraseService
}

func NewPhraseController(service services.PhraseService) *PhraseController {
	return &PhraseController{service: service}
}

// GetPhrase godoc
// @Summary Get phrase by ID
// @Tags phrases
// @Produce json
// @Param id path string true "Phrase ID"
// @Success 200 {object} models.Phrase
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /phrases/{id} [get]
func (pc *PhraseController) GetPhrase(c *gin.Context) {
	phrase, err := pc.service.GetPhraseByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, phrase)
}

// CreatePhrase godoc
// @Summary Add a phrase to a phrasebook
// @Description lang1 and lang2 accept a language key or any of its codes
// @Tags phrases
// @Accept json
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Param phrase body services.PhraseInput true "Texts and languages"
// @Success 201 {object} models.Phrase
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrases/{id} [post]
func (pc *PhraseController) CreatePhrase(c *gin.Context, id auth.Identity) {
	phrase, err := pc.service.CreatePhrase(c.Request.Context(), id.UserID, c.Param("id"), phraseInput(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, phrase)
}

// CopyPhrase godoc
// @Summary Link an existing phrase into a phrasebook
// @Tags phrases
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Param phrase_id path string true "Phrase ID"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrases/{id}/{phrase_id} [post]
func (pc *PhraseController) CopyPhrase(c *gin.Context, id auth.Identity) {
	if err := pc.service.CopyPhrase(c.Request.Context(), id.UserID, c.Param("id"), c.Param("phrase_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

// UpdatePhrase godoc
// @Summary Update the texts of a phrase
// @Description A phrase shared with other phrasebooks is copied first; the returned id is the copy's
// @Tags phrases
// @Accept json
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Param phrase_id path string true "Phrase ID"
// @Param phrase body services.PhraseInput true "text1 and/or text2"
// @Success 200 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrases/{id}/{phrase_id} [put]
func (pc *PhraseController) UpdatePhrase(c *gin.Context, id auth.Identity) {
	phraseID, err := pc.service.UpdatePhrase(c.Request.Context(), id.UserID, c.Param("id"), c.Param("phrase_id"), phraseInput(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": phraseID})
}

// DeletePhrase godoc
// @Summary Remove a phrase from a phrasebook
// @Tags phrases
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Param phrase_id path string true "Phrase ID"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrases/{id}/{phrase_id} [delete]
func (pc *PhraseController) DeletePhrase(c *gin.Context, id auth.Identity) {
	if err := pc.service.DeletePhrase(c.Request.Context(), id.UserID, c.Param("id"), c.Param("phrase_id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func phraseInput(c *gin.Context) *services.PhraseInput {
	var input services.PhraseInput
	if !bindOptionalJSON(c, &input) {
		return nil
	}
	return &input
}
