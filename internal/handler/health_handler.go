package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aapkitaxi/service-booking/internal/application"
)

// HealthHandler reports storage and notification channel status.
type HealthHandler struct {
	service *application.BookingService
	logger  *zap.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(service *application.BookingService, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{service: service, logger: logger}
}

// RegisterRoutes registers the health route on the given router group.
func (h *HealthHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/health", h.Health)
}

// Health handles GET /api/health. A failed storage probe makes the whole
// check fail; a disabled SMS channel only degrades it.
func (h *HealthHandler) Health(c *gin.Context) {
	notificationState := "disabled"
	if h.service.NotificationEnabled() {
		notificationState = "connected"
	}

	if err := h.service.PingStorage(c.Request.Context()); err != nil {
		h.logger.Error("storage health probe failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":       "unhealthy",
			"storage":      "disconnected",
			"notification": notificationState,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"storage":      "connected",
		"notification": notificationState,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	})
}
