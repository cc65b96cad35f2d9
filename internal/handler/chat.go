package handler

import (
	"net/http"

	"parksmart/internal/model"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler answers single assistant questions without a session
type ChatHandler struct {
	resolver      *service.IntentResolver
	searchService *service.SearchService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(resolver *service.IntentResolver, searchService *service.SearchService) *ChatHandler {
	return &ChatHandler{
		resolver:      resolver,
		searchService: searchService,
	}
}

// Resolve handles POST /api/v1/chat/resolve
func (h *ChatHandler) Resolve(c *gin.Context) {
	var req model.ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	lang, err := model.ParseLanguage(req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	spots, err := h.searchService.Catalog(c.Request.Context())
	if err != nil {
		respondError(c, "Resolve", err)
		return
	}

	c.JSON(http.StatusOK, h.resolver.Resolve(req.Text, lang, spots))
}
