package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-phrasebook-api/internal/auth"
	"github.com/franciscosanchezn/gin-phrasebook-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	userService services.UserService
}

func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// CreateUser godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.UserInput true "Email, password and name"
// @Success 201 {object} map[string]string
// @Failure 400 {object} models.APIError
// @Router /users [post]
func (uc *UserController) CreateUser(c *gin.Context) {
	var input services.UserInput
	bindOptionalJSON(c, &input)

	user, err := uc.userService.CreateUser(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

// GetUser godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /users [get]
func (uc *UserController) GetUser(c *gin.Context, id auth.Identity) {
	user, err := uc.userService.GetUserByID(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser godoc
// @Summary Update the current user
// @Description Changing the password requires old_password and revokes every grant of the user
// @Tags users
// @Accept json
// @Produce json
// @Param user body services.UserInput true "Fields to change"
// @Success 200 {string} string "OK"
// @Failure 400 {object} models.APIError
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /users [put]
func (uc *UserController) UpdateUser(c *gin.Context, id auth.Identity) {
	var input services.UserInput
	bindOptionalJSON(c, &input)

	if err := uc.userService.UpdateUser(c.Request.Context(), id.UserID, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}

// DeleteUser godoc
// @Summary Delete the current user
// @Tags users
// @Produce json
// @Success 200 {string} string "OK"
// @Failure 401 {object} models.APIError
// @Security BearerAuth
// @Router /users [delete]
func (uc *UserController) DeleteUser(c *gin.Context, id auth.Identity) {
	if err := uc.userService.DeleteUser(c.Request.Context(), id.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ok)
}
