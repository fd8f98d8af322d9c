package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mroshb/film_catalog/internal/handlers/response"
	"github.com/mroshb/film_catalog/internal/models"
	"github.com/mroshb/film_catalog/pkg/errors"
)

type createUserRequest struct {
	Email    string `json:"email" binding:"required"`
	Login    string `json:"login" binding:"required"`
	Name     string `json:"name"`
	Birthday string `json:"birthday"` // YYYY-MM-DD
}

// HandleCreateUser registers a user in the catalog
func (h *HandlerManager) HandleCreateUser(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	user := &models.User{Email: req.Email, Login: req.Login, Name: req.Name}
	if req.Birthday != "" {
		birthday, err := time.Parse("2006-01-02", req.Birthday)
		if err != nil {
			response.Error(c, errors.New(errors.ErrCodeValidation, "birthday must be YYYY-MM-DD"))
			return
		}
		user.Birthday = birthday
	}

	if err := h.Catalog.CreateUser(c.Request.Context(), user); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *HandlerManager) HandleGetUser(c *gin.Context) {
	user, err := h.resolveUser(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, user)
}
