package handler

import (
	"errors"
	"log"
	"net/http"

	"parksmart/internal/model"
	"parksmart/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS is enforced by the router middleware
	},
}

// voiceNotices is shown once per session when speech input is unavailable
var voiceNotices = map[model.Language]string{
	model.LangEnglish: "Speech recognition is not supported here. You can keep typing your questions.",
	model.LangFrench:  "La reconnaissance vocale n'est pas prise en charge ici. Vous pouvez continuer à taper vos questions.",
	model.LangArabic:  "التعرف على الصوت غير مدعوم هنا. يمكنك متابعة كتابة أسئلتك.",
}

// wsInbound is a client frame on the session websocket
type wsInbound struct {
	Text   string `json:"text"`
	Action string `json:"action"`
}

// SessionHandler handles assistant session HTTP requests
type SessionHandler struct {
	sessions *service.SessionManager
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *service.SessionManager) *SessionHandler {
	return &SessionHandler{
		sessions: sessions,
	}
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(c *gin.Context) {
	var req model.SessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
			return
		}
	}

	lang := h.sessions.DefaultLanguage()
	if req.Language != "" {
		parsed, err := model.ParseLanguage(req.Language)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		lang = parsed
	}

	s := h.sessions.Create(lang)
	h.respondSnapshot(c, http.StatusCreated, s)
}

// Get handles GET /api/v1/sessions/:id
func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	h.respondSnapshot(c, http.StatusOK, s)
}

// Dispose handles DELETE /api/v1/sessions/:id
func (h *SessionHandler) Dispose(c *gin.Context) {
	if err := h.sessions.Dispose(c.Param("id")); err != nil {
		respondError(c, "Dispose session", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetFilters handles PUT /api/v1/sessions/:id/filters
func (h *SessionHandler) SetFilters(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req model.FilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	if err := s.SetFilters(req.Config()); err != nil {
		respondError(c, "Set filters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": s.Filters()})
}

// Spots handles GET /api/v1/sessions/:id/spots
func (h *SessionHandler) Spots(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	spots, err := s.FilteredSpots(c.Request.Context())
	if err != nil {
		respondError(c, "Filter spots", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"spots":   spots,
		"total":   len(spots),
		"filters": s.Filters(),
	})
}

// SendMessage handles POST /api/v1/sessions/:id/messages
func (h *SessionHandler) SendMessage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, err := s.Send(c.Request.Context(), req.Text)
	if err != nil {
		respondError(c, "Send message", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": msg})
}

// SendAction handles POST /api/v1/sessions/:id/actions
func (h *SessionHandler) SendAction(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req model.ActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, err := s.Action(c.Request.Context(), req.Action)
	if err != nil {
		respondError(c, "Quick action", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": msg})
}

// Messages handles GET /api/v1/sessions/:id/messages
func (h *SessionHandler) Messages(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	messages := s.Messages()
	c.JSON(http.StatusOK, gin.H{"messages": messages, "total": len(messages)})
}

// SetLanguage handles PUT /api/v1/sessions/:id/language
func (h *SessionHandler) SetLanguage(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req model.LanguageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}
	lang, err := model.ParseLanguage(req.Language)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.SetLanguage(lang); err != nil {
		respondError(c, "Set language", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"language": lang})
}

// Voice handles POST /api/v1/sessions/:id/voice with raw audio as the body
func (h *SessionHandler) Voice(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	audio, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	msg, err := s.Voice(c.Request.Context(), audio)
	if errors.Is(err, service.ErrVoiceUnsupported) {
		body := gin.H{"error": "Voice input is not supported"}
		if s.TakeVoiceNotice() {
			body["notice"] = voiceNotices[s.Language()]
		}
		c.JSON(http.StatusNotImplemented, body)
		return
	}
	if err != nil {
		respondError(c, "Voice", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": msg})
}

// Events handles GET /api/v1/sessions/:id/events - SSE message stream
func (h *SessionHandler) Events(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	setSSEHeaders(c)
	sendSSE(c, "history", s.Messages())
	flusher.Flush()

	for {
		select {
		case <-c.Request.Context().Done():
			return
		case msg, open := <-ch:
			if !open {
				sendSSE(c, "closed", nil)
				flusher.Flush()
				return
			}
			sendSSE(c, "message", msg)
			flusher.Flush()
		}
	}
}

// WebSocket handles GET /api/v1/sessions/:id/ws. Clients may send {"text": ...} or {"action": ...}.
func (h *SessionHandler) WebSocket(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	// Reader: feeds client frames into the session until the socket drops
	ctx := c.Request.Context()
	go func() {
		defer unsubscribe()
		for {
			var in wsInbound
			if err := conn.ReadJSON(&in); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Printf("WebSocket error: %v", err)
				}
				return
			}

			var sendErr error
			switch {
			case in.Action != "":
				_, sendErr = s.Action(ctx, in.Action)
			case in.Text != "":
				_, sendErr = s.Send(ctx, in.Text)
			}
			if sendErr != nil {
				log.Printf("⚠️  Session %s: %v", s.ID(), sendErr)
			}
		}
	}()

	for msg := range ch {
		if err := conn.WriteJSON(msg); err != nil {
			log.Printf("Error writing to WebSocket client: %v", err)
			return
		}
	}
	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, "Get session", err)
		return nil, false
	}
	return s, true
}

func (h *SessionHandler) respondSnapshot(c *gin.Context, status int, s *service.Session) {
	favorites, err := s.Favorites(c.Request.Context())
	if err != nil {
		respondError(c, "Get session", err)
		return
	}
	c.JSON(status, model.SessionResponse{
		SessionID: s.ID(),
		Language:  s.Language(),
		Filters:   s.Filters(),
		Favorites: favorites,
		Messages:  s.Messages(),
	})
}
