package api

import (
	"alcyxob/coach-app/internal/service"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// respondWithServiceError maps a service error kind to its status code.
// Unexpected errors are logged and reported generically.
func respondWithServiceError(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrForbidden):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrValidation):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		abortWithError(c, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: Failed to %s: %v (req=%s)", action, err, c.GetString(ContextRequestIDKey))
		abortWithError(c, http.StatusInternalServerError, "Failed to "+action+".")
	}
}

func bindError(c *gin.Context, err error) {
	abortWithError(c, http.StatusBadRequest, "Validation error: "+strings.TrimSpace(err.Error()))
}
