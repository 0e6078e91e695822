package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
)

// PhrasebookController handles HTTP requests related to phrasebooks
type PhrasebookController interface {
	// GetAllPhrasebooks lists the phrasebooks of the user
	GetAllPhrasebooks(c *gin.Context, id auth.Identity)
	// GetPhrasebookByID retrieves a phrasebook by its ID
	GetPhrasebookByID(c *gin.Context, id auth.Identity)
	// GetPhrasebookPhrases lists the phrases of a phrasebook
	GetPhrasebookPhrases(c *gin.Context, id auth.Identity)
	// CreatePhrasebook creates a new phrasebook
	CreatePhrasebook(c *gin.Context, id auth.Identity)
	// UpdatePhrasebook renames a phrasebook
	UpdatePhrasebook(c *gin.Context, id auth.Identity)
	// DeletePhrasebook deletes a phrasebook by its ID
	DeletePhrasebook(c *gin.Context, id auth.Identity)
}

type phrasebookController struct {
	service services.PhrasebookService
}

// NewPhrasebookController creates a new instance of PhrasebookController
func NewPhrasebookController(service services.PhrasebookService) PhrasebookController {
	return &phrasebookController{service: service}
}

// GetAllPhrasebooks godoc
// @Summary List phrasebooks
// @Tags phrasebooks
// @Produce json
// @Success 200 {array} models.Phrasebook
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks [get]
func (pc *phrasebookController) GetAllPhrasebooks(c *gin.Context, id auth.Identity) {
	phrasebooks, err := pc.service.GetAllPhrasebooks(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, phrasebooks)
}

// GetPhrasebookByID godoc
// @Summary Get phrasebook by ID
// @Tags phrasebooks
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Success 200 {object} models.Phrasebook
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks/{id} [get]
func (pc *phrasebookController) GetPhrasebookByID(c *gin.Context, id auth.Identity) {
	pb, err := pc.service.GetPhrasebookByID(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pb)
}

// GetPhrasebookPhrases godoc
// @Summary List the phrases of a phrasebook
// @Tags phrasebooks
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Success 200 {array} models.Phrase
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks/{id}/phrases [get]
func (pc *phrasebookController) GetPhrasebookPhrases(c *gin.Context, id auth.Identity) {
	phrases, err := pc.service.GetPhrases(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, phrases)
}

// CreatePhrasebook godoc
// @Summary Create a new phrasebook
// @Tags phrasebooks
// @Accept json
// @Produce json
// @Param phrasebook body services.PhrasebookInput true "Phrasebook name"
// @Success 201 {object} models.Phrasebook
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks [post]
func (pc *phrasebookController) CreatePhrasebook(c *gin.Context, id auth.Identity) {
	pb, err := pc.service.CreatePhrasebook(c.Request.Context(), id.UserID, phrasebookInput(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pb)
}

// UpdatePhrasebook godoc
// @Summary Rename a phrasebook
// @Tags phrasebooks
// @Accept json
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Param phrasebook body services.PhrasebookInput true "Phrasebook name"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks/{id} [put]
func (pc *phrasebookController) UpdatePhrasebook(c *gin.Context, id auth.Identity) {
	if err := pc.service.UpdatePhrasebook(c.Request.Context(), id.UserID, c.Param("id"), phrasebookInput(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

// DeletePhrasebook godoc
// @Summary Delete a phrasebook
// @Description Phrases not linked from any other phrasebook are deleted too
// @Tags phrasebooks
// @Produce json
// @Param id path string true "Phrasebook ID"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /phrasebooks/{id} [delete]
func (pc *phrasebookController) DeletePhrasebook(c *gin.Context, id auth.Identity) {
	if err := pc.service.DeletePhrasebook(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

func phrasebookInput(c *gin.Context) *services.PhrasebookInput {
	var input services.PhrasebookInput
	if !bindOptionalJSON(c, &input) {
		return nil
	}
	return &input
}
