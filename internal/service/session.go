package service

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"parksmart/internal/model"
	"parksmart/internal/repository"
)

var (
	// ErrSessionNotFound is returned for unknown or disposed session ids
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when a disposed session is used
	ErrSessionClosed = errors.New("session closed")
	// ErrVoiceUnsupported is returned when no speech transcriber is configured
	ErrVoiceUnsupported = errors.New("voice input is not supported")
	// ErrEmptyMessage is returned for blank chat input
	ErrEmptyMessage = errors.New("message is empty")
)

// subscriberBuffer is the per-subscriber queue; slow subscribers drop messages
const subscriberBuffer = 32

// Transcriber turns recorded speech into text
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, lang model.Language) (string, error)
}

// SessionConfig holds assistant timing and defaults
type SessionConfig struct {
	DelayMin        time.Duration
	DelayMax        time.Duration
	DefaultLanguage model.Language
	Debug           bool
}

// SessionManager owns every live session
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	catalog     repository.SpotCatalog
	resolver    *IntentResolver
	ids         IDGenerator
	cfg         SessionConfig
	delay       func() time.Duration
	transcriber Transcriber
	now         func() time.Time
}

// NewSessionManager creates a session manager. Replies are delayed uniformly within [DelayMin, DelayMax].
func NewSessionManager(
	catalog repository.SpotCatalog,
	resolver *IntentResolver,
	ids IDGenerator,
	cfg SessionConfig,
) *SessionManager {
	if cfg.DelayMax < cfg.DelayMin {
		cfg.DelayMax = cfg.DelayMin
	}
	if _, err := model.ParseLanguage(string(cfg.DefaultLanguage)); err != nil {
		cfg.DefaultLanguage = model.LangEnglish
	}

	m := &SessionManager{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		resolver: resolver,
		ids:      ids,
		cfg:      cfg,
		now:      time.Now,
	}
	m.delay = func() time.Duration {
		spread := int64(m.cfg.DelayMax - m.cfg.DelayMin)
		if spread <= 0 {
			return m.cfg.DelayMin
		}
		return m.cfg.DelayMin + time.Duration(rand.Int63n(spread+1))
	}
	return m
}

// SetDelay replaces the typing delay source
func (m *SessionManager) SetDelay(delay func() time.Duration) {
	m.delay = delay
}

// SetTranscriber enables voice input
func (m *SessionManager) SetTranscriber(t Transcriber) {
	m.transcriber = t
}

// DefaultLanguage returns the language used when a session is opened without one
func (m *SessionManager) DefaultLanguage() model.Language {
	return m.cfg.DefaultLanguage
}

// Create opens a session in lang and posts the welcome message
func (m *SessionManager) Create(lang model.Language) *Session {
	if _, err := model.ParseLanguage(string(lang)); err != nil {
		lang = m.cfg.DefaultLanguage
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:          m.ids.NewID(),
		mgr:         m,
		ctx:         ctx,
		cancel:      cancel,
		language:    lang,
		favorites:   make(map[string]bool),
		subscribers: make(map[int]chan model.ChatMessage),
	}
	s.appendMessage(m.newAssistantMessage(m.resolver.Welcome(lang), lang))

	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	log.Printf("💬 Session %s opened (%s)", s.id, lang)
	return s
}

// Get returns a live session
func (m *SessionManager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Dispose closes a session and cancels its pending replies
func (m *SessionManager) Dispose(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	s.dispose()
	log.Printf("👋 Session %s disposed", id)
	return nil
}

// Close disposes every session
func (m *SessionManager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.dispose()
	}
}

// Len returns the number of live sessions
func (m *SessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *SessionManager) newAssistantMessage(reply model.Reply, lang model.Language) model.ChatMessage {
	return model.ChatMessage{
		ID:           m.ids.NewID(),
		Role:         model.RoleAssistant,
		Content:      reply.Text,
		Timestamp:    m.now(),
		Language:     lang,
		Intent:       reply.Intent,
		QuickActions: reply.QuickActions,
	}
}

// Session is one user's assistant conversation plus filter and favorite state.
// All state is guarded by mu; nothing changes once the session is closed.
type Session struct {
	id  string
	mgr *SessionManager

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu               sync.Mutex
	closed           bool
	language         model.Language
	filters          model.FilterConfiguration
	favorites        map[string]bool // overlay on the catalog's is_favorite
	messages         []model.ChatMessage
	subscribers      map[int]chan model.ChatMessage
	nextSubscriber   int
	voiceNoticeShown bool
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Language returns the current reply language
func (s *Session) Language() model.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// SetLanguage switches the reply language for subsequent messages
func (s *Session) SetLanguage(lang model.Language) error {
	if _, err := model.ParseLanguage(string(lang)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.language = lang
	return nil
}

// Filters returns the session's filter configuration
func (s *Session) Filters() model.FilterConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// SetFilters replaces the session's filter configuration
func (s *Session) SetFilters(cfg model.FilterConfiguration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	s.filters = cfg
	return nil
}

// Spots returns the catalog with this session's favorites applied
func (s *Session) Spots(ctx context.Context) ([]model.ParkingSpot, error) {
	spots, err := s.mgr.catalog.All(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range spots {
		if fav, ok := s.favorites[spots[i].ID]; ok {
			spots[i].IsFavorite = fav
		}
	}
	return spots, nil
}

// FilteredSpots runs the session's filters over its spots
func (s *Session) FilteredSpots(ctx context.Context) ([]model.ParkingSpot, error) {
	spots, err := s.Spots(ctx)
	if err != nil {
		return nil, err
	}
	return FilterSpots(spots, s.Filters()), nil
}

// Favorites returns the ids of spots marked favorite in this session, sorted
func (s *Session) Favorites(ctx context.Context) ([]string, error) {
	spots, err := s.Spots(ctx)
	if err != nil {
		return nil, err
	}
	ids := []string{}
	for _, spot := range spots {
		if spot.IsFavorite {
			ids = append(ids, spot.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// ToggleFavorite flips the favorite flag of spotID and returns the new value
func (s *Session) ToggleFavorite(ctx context.Context, spotID string) (bool, error) {
	spot, err := s.mgr.catalog.Get(ctx, spotID)
	if err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrSessionClosed
	}
	current, ok := s.favorites[spotID]
	if !ok {
		current = spot.IsFavorite
	}
	s.favorites[spotID] = !current
	return !current, nil
}

// Send appends the user's text and schedules the assistant reply
func (s *Session) Send(ctx context.Context, text string) (model.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ChatMessage{}, ErrEmptyMessage
	}

	spots, err := s.Spots(ctx)
	if err != nil {
		return model.ChatMessage{}, err
	}
	lang := s.Language()

	msg := model.ChatMessage{
		ID:        s.mgr.ids.NewID(),
		Role:      model.RoleUser,
		Content:   text,
		Timestamp: s.mgr.now(),
		Language:  lang,
	}
	if !s.appendMessage(msg) {
		return model.ChatMessage{}, ErrSessionClosed
	}

	reply := s.mgr.resolver.Resolve(text, lang, spots)
	s.scheduleReply(s.mgr.newAssistantMessage(reply, lang))
	return msg, nil
}

// Action runs a quick action as if its canonical text had been typed
func (s *Session) Action(ctx context.Context, action string) (model.ChatMessage, error) {
	return s.Send(ctx, CanonicalText(action, s.Language()))
}

// Voice transcribes audio and sends the transcript
func (s *Session) Voice(ctx context.Context, audio []byte) (model.ChatMessage, error) {
	if s.mgr.transcriber == nil {
		return model.ChatMessage{}, ErrVoiceUnsupported
	}
	text, err := s.mgr.transcriber.Transcribe(ctx, audio, s.Language())
	if err != nil {
		return model.ChatMessage{}, err
	}
	return s.Send(ctx, text)
}

// TakeVoiceNotice reports true the first time it is called for a session
func (s *Session) TakeVoiceNotice() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.voiceNoticeShown {
		return false
	}
	s.voiceNoticeShown = true
	return true
}

// Messages returns a copy of the chat history
func (s *Session) Messages() []model.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// Subscribe returns a channel receiving every message appended from now on and a
// function to stop. The channel is closed on unsubscribe or when the session is disposed.
func (s *Session) Subscribe() (<-chan model.ChatMessage, func()) {
	ch := make(chan model.ChatMessage, subscriberBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Done is closed when the session is disposed
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Wait blocks until every scheduled reply has been delivered or cancelled
func (s *Session) Wait() {
	s.wg.Wait()
}

// Closed reports whether the session has been disposed
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) scheduleReply(msg model.ChatMessage) {
	delay := s.mgr.delay()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		msg.Timestamp = s.mgr.now()
		if !s.appendMessage(msg) && s.mgr.cfg.Debug {
			log.Printf("[DEBUG] Dropped reply %s for closed session %s", msg.ID, s.id)
		}
	}()
}

// appendMessage adds msg to the history and fans it out. It reports false once closed.
func (s *Session) appendMessage(msg model.ChatMessage) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.messages = append(s.messages, msg)
	for _, ch := range s.subscribers {
		select {
		case ch <- msg:
		default:
		}
	}
	return true
}

func (s *Session) dispose() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()
}
