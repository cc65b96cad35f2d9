package handler

import (
	"net/http"
	"time"

	"parksmart/internal/model"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
)

// BookingHandler handles quote and booking HTTP requests
type BookingHandler struct {
	bookingService *service.BookingService
	now            func() time.Time
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
		now:            time.Now,
	}
}

// Quote handles POST /api/v1/quote
func (h *BookingHandler) Quote(c *gin.Context) {
	var req model.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	quote, err := h.bookingService.Quote(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Quote", err)
		return
	}
	c.JSON(http.StatusOK, quote)
}

// Create handles POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req model.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	record, err := h.bookingService.Book(c.Request.Context(), req)
	if err != nil {
		respondError(c, "Booking", err)
		return
	}
	c.JSON(http.StatusCreated, h.response(record))
}

// List handles GET /api/v1/bookings?vehicle=
func (h *BookingHandler) List(c *gin.Context) {
	records, err := h.bookingService.ListBookings(c.Request.Context(), c.Query("vehicle"))
	if err != nil {
		respondError(c, "List bookings", err)
		return
	}

	bookings := make([]model.BookingResponse, 0, len(records))
	active := 0
	for i := range records {
		resp := h.response(&records[i])
		if resp.Status == model.BookingActive {
			active++
		}
		bookings = append(bookings, resp)
	}

	c.JSON(http.StatusOK, gin.H{
		"bookings": bookings,
		"total":    len(bookings),
		"active":   active,
	})
}

// Get handles GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	record, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Get booking", err)
		return
	}
	c.JSON(http.StatusOK, h.response(record))
}

func (h *BookingHandler) response(record *model.BookingRecord) model.BookingResponse {
	return model.BookingResponse{
		Booking: record,
		Status:  record.Status(h.now()),
		Ticket:  record.Ticket(),
	}
}
