package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"cartsync/internal/domain"
)

// Responses use the same {success, data, error} envelope the storefront
// already speaks against its legacy backend.

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"success": false, "error": msg})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrRequiresAccount):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnlinkedAccount):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}
