package handler

import (
	"errors"
	"log"
	"net/http"

	"parksmart/internal/repository"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
)

// spotNotFound is the terminal "not found" view with its single recovery action
func spotNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error": "Parking spot not found",
		"recovery": gin.H{
			"action": "back_to_catalog",
			"label":  "Back to Home",
			"path":   "/api/v1/spots",
		},
	})
}

// respondError maps service and repository errors onto HTTP responses
func respondError(c *gin.Context, action string, err error) {
	if verr, ok := service.IsValidationError(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":          "Please complete the booking form",
			"missing_fields": verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, repository.ErrSpotNotFound):
		spotNotFound(c)
	case errors.Is(err, repository.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, service.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, service.ErrSessionClosed):
		c.JSON(http.StatusGone, gin.H{"error": "Session closed"})
	case errors.Is(err, service.ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is empty"})
	case errors.Is(err, service.ErrEmptyTranscript):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "No speech recognized, please try again"})
	case errors.Is(err, service.ErrImportUnsupported):
		c.JSON(http.StatusNotImplemented, gin.H{"error": "The configured catalog is read-only"})
	default:
		log.Printf("❌ %s failed: %v", action, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": action + " failed: " + err.Error()})
	}
}
