package handler

import (
	"net/http"

	"parksmart/internal/model"

	"github.com/gin-gonic/gin"
)

// ToggleFavorite handles POST /api/v1/sessions/:id/favorites/:spotId
func (h *SessionHandler) ToggleFavorite(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	spotID := c.Param("spotId")
	isFavorite, err := s.ToggleFavorite(c.Request.Context(), spotID)
	if err != nil {
		respondError(c, "Toggle favorite", err)
		return
	}

	c.JSON(http.StatusOK, model.FavoriteResponse{
		SpotID:     spotID,
		IsFavorite: isFavorite,
	})
}
