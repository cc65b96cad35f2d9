package handler

import (
	"fmt"
	"net/http"

	"parksmart/internal/model"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler handles catalog import HTTP requests
type ImportHandler struct {
	searchService *service.SearchService
}

// NewImportHandler creates a new import handler
func NewImportHandler(searchService *service.SearchService) *ImportHandler {
	return &ImportHandler{
		searchService: searchService,
	}
}

// Import handles POST /api/v1/spots/import
func (h *ImportHandler) Import(c *gin.Context) {
	var req model.SpotImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Spots) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No spots provided"})
		return
	}

	// Reject records breaking the capacity and availability invariants
	for i, spot := range req.Spots {
		if defects := spot.Validate(); len(defects) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   fmt.Sprintf("Invalid spot at index %d", i),
				"defects": defects,
			})
			return
		}
	}

	success, errs, err := h.searchService.ImportSpots(c.Request.Context(), req.Spots)
	if err != nil {
		respondError(c, "Import", err)
		return
	}

	response := model.SpotImportResponse{
		Success: success,
		Failed:  len(req.Spots) - success,
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}
