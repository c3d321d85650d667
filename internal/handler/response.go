package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aapkitaxi/service-booking/internal/domain"
)

// fail writes the shared failure envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondError maps a service error onto the failure envelope. Validation
// and not-found messages are returned verbatim; anything unanticipated is
// logged server-side and returned as a generic message so internal error
// text never reaches the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case domain.IsValidation(err):
		fail(c, http.StatusBadRequest, err.Error())
	case domain.IsNotFound(err):
		fail(c, http.StatusNotFound, "Booking not found")
	case domain.IsUnavailable(err):
		logger.Error("storage unavailable", zap.Error(err))
		fail(c, http.StatusInternalServerError, "Database connection unavailable")
	default:
		logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		fail(c, http.StatusInternalServerError, "Internal server error")
	}
}
