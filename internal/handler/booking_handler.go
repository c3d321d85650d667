package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aapkitaxi/service-booking/internal/application"
)

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.BookingService
	logger  *zap.Logger
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{service: service, logger: logger}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	api := r.Group("/api")
	{
		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings", h.ListBookings)
		api.POST("/bookings/:id/update", h.UpdateStatus)
		api.GET("/bookings/:id/status", h.CheckStatus)
	}
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"booking_id": result.BookingID,
		"message":    result.Message,
		"sms_sent":   result.SMSSent,
		"booking":    result.Booking,
	})
}

// ListBookings handles GET /api/bookings.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	bookings, err := h.service.ListBookings(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"bookings": bookings,
	})
}

// UpdateStatus handles POST /api/bookings/:id/update.
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid booking id")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.UpdateStatus(c.Request.Context(), id, body.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  result.Message,
		"sms_sent": result.SMSSent,
	})
}

// CheckStatus handles GET /api/bookings/:id/status. The customer must supply
// the phone number the booking was made with.
func (h *BookingHandler) CheckStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid booking id")
		return
	}

	phone := c.Query("phone")
	if phone == "" {
		fail(c, http.StatusBadRequest, "Phone number is required")
		return
	}

	booking, err := h.service.CheckStatus(c.Request.Context(), id, phone)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"booking": booking,
	})
}
