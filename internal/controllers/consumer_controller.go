package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type ConsumerController struct {
	consumerService services.ConsumerService
}

func NewConsumerController(consumerService services.ConsumerService) *ConsumerController {
	return &ConsumerController{consumerService: consumerService}
}

// GetConsumers godoc
// @Summary List the consumers of the user
// @Tags consumers
// @Produce json
// @Success 200 {array} models.Consumer
// @Failure 401 {object} models.APIError
// @Security BasicAuth
// @Router /consumers [get]
func (cc *ConsumerController) GetConsumers(c *gin.Context, id auth.Identity) {
	consumers, err := cc.consumerService.GetConsumersByUserID(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, consumers)
}

// GetConsumer godoc
// @Summary Get a consumer with its secret
// @Tags consumers
// @Produce json
// @Param id path string true "Consumer ID"
// @Success 200 {object} models.Consumer
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BasicAuth
// @Router /consumers/{id} [get]
func (cc *ConsumerController) GetConsumer(c *gin.Context, id auth.Identity) {
	consumer, err := cc.consumerService.GetConsumerByID(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, consumer)
}

// CreateConsumer godoc
// @Summary Register a consumer
// @Description The generated secret authenticates the consumer on GET /auth
// @Tags consumers
// @Accept json
// @Produce json
// @Param consumer body services.ConsumerInput true "Consumer name"
// @Success 201 {object} models.Consumer
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BasicAuth
// @Router /consumers [post]
func (cc *ConsumerController) CreateConsumer(c *gin.Context, id auth.Identity) {
	var input services.ConsumerInput
	bindOptionalJSON(c, &input)

	consumer, err := cc.consumerService.CreateConsumer(c.Request.Context(), id.UserID, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, consumer)
}

// DeleteConsumer godoc
// @Summary Delete a consumer and its grants
// @Tags consumers
// @Produce json
// @Param id path string true "Consumer ID"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BasicAuth
// @Router /consumers/{id} [delete]
func (cc *ConsumerController) DeleteConsumer(c *gin.Context, id auth.Identity) {
	if err := cc.consumerService.DeleteConsumer(c.Request.Context(), id.UserID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}
