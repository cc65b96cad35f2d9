package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"parksmart/internal/model"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
)

// SearchHandler handles spot browsing and search HTTP requests
type SearchHandler struct {
	searchService *service.SearchService
	sessions      *service.SessionManager
	nearestLimit  int
}

// NewSearchHandler creates a new search handler. sessions backs the session-scoped map.
func NewSearchHandler(searchService *service.SearchService, sessions *service.SessionManager, nearestLimit int) *SearchHandler {
	return &SearchHandler{
		searchService: searchService,
		sessions:      sessions,
		nearestLimit:  nearestLimit,
	}
}

// Search handles POST /api/v1/search
func (h *SearchHandler) Search(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !validSort(req.Options) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort. Must be one of: recommended, price, distance, rating"})
		return
	}

	response, err := h.searchService.Search(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "Search", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// SearchStream handles POST /api/v1/search/stream - SSE streaming search
func (h *SearchHandler) SearchStream(c *gin.Context) {
	var req model.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if !validSort(req.Options) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid sort. Must be one of: recommended, price, distance, rating"})
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}
	setSSEHeaders(c)

	sendSSE(c, "start", req.Filters.Config())
	flusher.Flush()

	response, err := h.searchService.SearchStream(c.Request.Context(), &req, func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "results", response)
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// ListSpots handles GET /api/v1/spots
func (h *SearchHandler) ListSpots(c *gin.Context) {
	spots, err := h.searchService.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, "List spots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"spots": spots, "total": len(spots)})
}

// GetSpot handles GET /api/v1/spots/:id
func (h *SearchHandler) GetSpot(c *gin.Context) {
	spot, err := h.searchService.GetSpot(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "Get spot", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spot":               spot,
		"availability_level": service.ClassifyAvailability(spot.PredictedAvailability),
	})
}

// Nearest handles GET /api/v1/spots/nearest?lat=&lng=&limit=
func (h *SearchHandler) Nearest(c *gin.Context) {
	ref, ok, err := parseReference(c)
	if err != nil || !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	limit := h.nearestLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	spots, err := h.searchService.Nearest(c.Request.Context(), ref, limit)
	if err != nil {
		respondError(c, "Nearest", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reference": ref, "spots": spots})
}

// Map handles GET /api/v1/map?lat=&lng=&selected=
// With session=<id> the session's filters and favorites apply; otherwise filters come from the query.
func (h *SearchHandler) Map(c *gin.Context) {
	ref, ok, err := parseReference(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid reference: " + err.Error()})
		return
	}
	var refPtr *model.GeoPoint
	if ok {
		refPtr = &ref
	}
	selected := c.Query("selected")

	var view *model.MapView
	if id := c.Query("session"); id != "" && h.sessions != nil {
		s, err := h.sessions.Get(id)
		if err != nil {
			respondError(c, "Map", err)
			return
		}
		view, err = h.searchService.SessionMapView(c.Request.Context(), s, refPtr, selected)
		if err != nil {
			respondError(c, "Map", err)
			return
		}
		c.JSON(http.StatusOK, view)
		return
	}

	var query model.FilterQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters: " + err.Error()})
		return
	}
	view, err = h.searchService.MapView(c.Request.Context(), query.Config(), refPtr, selected)
	if err != nil {
		respondError(c, "Map", err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// parseReference reads optional lat/lng query parameters. ok is false when both are absent.
func parseReference(c *gin.Context) (model.GeoPoint, bool, error) {
	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr == "" && lngStr == "" {
		return model.GeoPoint{}, false, nil
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return model.GeoPoint{}, false, fmt.Errorf("lat: %w", err)
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return model.GeoPoint{}, false, fmt.Errorf("lng: %w", err)
	}
	return model.GeoPoint{Lat: lat, Lng: lng}, true, nil
}

func validSort(opts *model.SearchOptions) bool {
	if opts == nil {
		return true
	}
	switch opts.Sort {
	case model.SortCatalog, model.SortRecommended, model.SortPrice, model.SortDistance, model.SortRating:
		return true
	}
	return false
}

func setSSEHeaders(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}
