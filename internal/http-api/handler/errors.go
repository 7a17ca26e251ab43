package handler

import (
	"errors"
	"net/http"

	"comichub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// renderError maps service error kinds onto HTTP statuses and renders the
// usual {"error": ...} body.
func renderError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, service.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrDuplicateEntity):
		status = http.StatusConflict
	case errors.Is(err, service.ErrStorageFailure):
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
