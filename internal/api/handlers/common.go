package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turnuplagos/turnup-backend/internal/models"
	"github.com/turnuplagos/turnup-backend/internal/utils"
)

type APIError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

func writeError(c *gin.Context, err error) {
	status := utils.HTTPStatus(err)

	var ae *utils.AppError
	if errors.As(err, &ae) {
		c.JSON(status, APIError{
			Code:    ae.Code,
			Message: ae.Message,
		})
		return
	}

	c.JSON(status, APIError{
		Code:    utils.CodeInternal,
		Message: http.StatusText(status),
	})
}

// requireUser reads the identity the JWT middleware stored on the context.
func requireUser(c *gin.Context) (*models.AuthenticatedUser, bool) {
	v, ok := c.Get("user_id")
	if !ok {
		writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
		return nil, false
	}
	id, ok := v.(int64)
	if !ok || id <= 0 {
		writeError(c, utils.E(utils.CodeUnauthorized, "Auth", "unauthorized", nil))
		return nil, false
	}

	role := models.RoleRegular
	if r, ok := c.Get("role"); ok {
		if s, ok := r.(string); ok && s == string(models.RoleAdmin) {
			role = models.RoleAdmin
		}
	}

	return &models.AuthenticatedUser{ID: id, Role: role}, true
}
