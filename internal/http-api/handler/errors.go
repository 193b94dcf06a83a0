package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"libraryhub/internal/authz"
	"libraryhub/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

// respondError maps service errors onto status codes. Denials never say
// whether the target exists.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, authz.ErrAccessDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": verr.Fields})
	case errors.Is(err, service.ErrBookNotFound), errors.Is(err, service.ErrLibraryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.Error("request_failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// paramID parses a positive integer path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
