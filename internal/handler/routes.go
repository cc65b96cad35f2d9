package handler

import "github.com/gin-gonic/gin"

// Handlers bundles every API handler for RegisterRoutes
type Handlers struct {
	Search  *SearchHandler
	Booking *BookingHandler
	Session *SessionHandler
	Chat    *ChatHandler
	Import  *ImportHandler
}

// RegisterRoutes mounts the API under api
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	// Spot endpoints
	api.POST("/search", h.Search.Search)
	api.POST("/search/stream", h.Search.SearchStream) // Streaming search
	api.GET("/spots", h.Search.ListSpots)
	api.GET("/spots/nearest", h.Search.Nearest)
	api.GET("/spots/:id", h.Search.GetSpot)
	api.POST("/spots/import", h.Import.Import)
	api.GET("/map", h.Search.Map)

	// Booking endpoints
	api.POST("/quote", h.Booking.Quote)
	api.POST("/bookings", h.Booking.Create)
	api.GET("/bookings", h.Booking.List)
	api.GET("/bookings/:id", h.Booking.Get)

	// Assistant endpoints
	api.POST("/chat/resolve", h.Chat.Resolve)

	sessions := api.Group("/sessions")
	{
		sessions.POST("", h.Session.Create)
		sessions.GET("/:id", h.Session.Get)
		sessions.DELETE("/:id", h.Session.Dispose)
		sessions.PUT("/:id/filters", h.Session.SetFilters)
		sessions.GET("/:id/spots", h.Session.Spots)
		sessions.POST("/:id/favorites/:spotId", h.Session.ToggleFavorite)
		sessions.POST("/:id/messages", h.Session.SendMessage)
		sessions.GET("/:id/messages", h.Session.Messages)
		sessions.POST("/:id/actions", h.Session.SendAction)
		sessions.PUT("/:id/language", h.Session.SetLanguage)
		sessions.POST("/:id/voice", h.Session.Voice)
		sessions.GET("/:id/events", h.Session.Events)
		sessions.GET("/:id/ws", h.Session.WebSocket)
	}
}
