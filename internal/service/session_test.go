package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"parksmart/internal/model"
	"parksmart/internal/repository"
)

type stubTranscriber struct {
	text string
	err  error
}

func (s stubTranscriber) Transcribe(ctx context.Context, audio []byte, lang model.Language) (string, error) {
	return s.text, s.err
}

func newTestSessions(delay time.Duration) *SessionManager {
	m := NewSessionManager(
		repository.NewStaticCatalog(repository.CasablancaSpots()),
		NewIntentResolver(false),
		&sequenceIDs{},
		SessionConfig{DelayMin: time.Second, DelayMax: 2 * time.Second, DefaultLanguage: model.LangEnglish},
	)
	m.SetDelay(func() time.Duration { return delay })
	return m
}

func TestSessionManager_Create(t *testing.T) {
	m := newTestSessions(0)
	defer m.Close()

	s := m.Create(model.LangArabic)
	msgs := s.Messages()
	if len(msgs) != 1 {
		t.Fatalf("got %d messages, want the welcome only", len(msgs))
	}
	if msgs[0].Role != model.RoleAssistant || msgs[0].Intent != model.IntentWelcome || msgs[0].Language != model.LangArabic {
		t.Errorf("unexpected welcome %+v", msgs[0])
	}

	fallback := m.Create(model.Language("xx"))
	if fallback.Language() != model.LangEnglish {
		t.Errorf("Language() = %s, want the default", fallback.Language())
	}

	if got, err := m.Get(s.ID()); err != nil || got != s {
		t.Errorf("Get() = %v, %v", got, err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestSession_SendAndReply(t *testing.T) {
	m := newTestSessions(10 * time.Millisecond)
	defer m.Close()
	s := m.Create(model.LangEnglish)

	msg, err := s.Send(context.Background(), "  Parking in Maarif? ")
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if msg.Content != "Parking in Maarif?" || msg.Role != model.RoleUser {
		t.Errorf("user message = %+v", msg)
	}
	if n := len(s.Messages()); n != 2 {
		t.Errorf("got %d messages before the reply, want 2", n)
	}

	s.Wait()

	msgs := s.Messages()
	if len(msgs) != 3 {
		t.Fatalf("got %d messages, want 3", len(msgs))
	}
	reply := msgs[2]
	if reply.Role != model.RoleAssistant || reply.Intent != model.IntentMaarif {
		t.Errorf("reply = %+v", reply)
	}
	if !strings.Contains(reply.Content, "I found 2 parking spots") {
		t.Errorf("reply content = %q", reply.Content)
	}
	if len(reply.QuickActions) != 2 {
		t.Errorf("reply has %d quick actions, want 2", len(reply.QuickActions))
	}
}

func TestSession_EmptyMessage(t *testing.T) {
	m := newTestSessions(0)
	defer m.Close()
	s := m.Create(model.LangEnglish)

	if _, err := s.Send(context.Background(), "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("Send() error = %v, want ErrEmptyMessage", err)
	}
	if n := len(s.Messages()); n != 1 {
		t.Errorf("got %d messages, want 1", n)
	}
}

func TestSession_DisposeCancelsPendingReply(t *testing.T) {
	m := newTestSessions(time.Hour)
	s := m.Create(model.LangEnglish)

	if _, err := s.Send(context.Background(), "price"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := m.Dispose(s.ID()); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pending reply was not cancelled")
	}

	if n := len(s.Messages()); n != 2 {
		t.Errorf("got %d messages after dispose, want 2", n)
	}
	if !s.Closed() {
		t.Error("Closed() = false after dispose")
	}
	if _, err := s.Send(context.Background(), "hello"); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("Send() after dispose error = %v, want ErrSessionClosed", err)
	}
	if _, err := m.Get(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Get() after dispose error = %v, want ErrSessionNotFound", err)
	}
	if err := m.Dispose(s.ID()); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("second Dispose() error = %v, want ErrSessionNotFound", err)
	}
	select {
	case <-s.Done():
	default:
		t.Error("Done() is not closed after dispose")
	}
}

func TestSession_LanguageIsFixedAtSendTime(t *testing.T) {
	m := newTestSessions(20 * time.Millisecond)
	defer m.Close()
	s := m.Create(model.LangEnglish)

	if _, err := s.Send(context.Background(), "price"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if err := s.SetLanguage(model.LangFrench); err != nil {
		t.Fatalf("SetLanguage() error = %v", err)
	}
	s.Wait()

	msgs := s.Messages()
	if msgs[2].Language != model.LangEnglish || !strings.HasPrefix(msgs[2].Content, "💳 Parking prices") {
		t.Errorf("reply = %+v, want the English price reply", msgs[2])
	}

	if _, err := s.Send(context.Background(), "prix"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	s.Wait()
	msgs = s.Messages()
	if last := msgs[len(msgs)-1]; last.Language != model.LangFrench || !strings.HasPrefix(last.Content, "💳 Les prix") {
		t.Errorf("reply = %+v, want the French price reply", last)
	}

	if err := s.SetLanguage(model.Language("de")); err == nil {
		t.Error("SetLanguage(de) should fail")
	}
}

func TestSession_Subscribe(t *testing.T) {
	m := newTestSessions(5 * time.Millisecond)
	s := m.Create(model.LangEnglish)

	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if _, err := s.Send(context.Background(), "book"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var roles []model.Role
	for len(roles) < 2 {
		select {
		case msg := <-ch:
			roles = append(roles, msg.Role)
		case <-time.After(2 * time.Second):
			t.Fatalf("received %v, want user and assistant messages", roles)
		}
	}
	if !reflect.DeepEqual(roles, []model.Role{model.RoleUser, model.RoleAssistant}) {
		t.Errorf("roles = %v", roles)
	}

	if err := m.Dispose(s.ID()); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed after dispose")
	}

	late, _ := s.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing to a closed session should return a closed channel")
	}
}

func TestSession_Action(t *testing.T) {
	m := newTestSessions(0)
	defer m.Close()
	s := m.Create(model.LangFrench)

	msg, err := s.Action(context.Background(), ActionFindParking)
	if err != nil {
		t.Fatalf("Action() error = %v", err)
	}
	if msg.Content != "Montrez-moi les places de parking disponibles" {
		t.Errorf("user message = %q", msg.Content)
	}
	s.Wait()

	msgs := s.Messages()
	if last := msgs[len(msgs)-1]; last.Intent != model.IntentAvailability {
		t.Errorf("reply intent = %s, want availability", last.Intent)
	}
}

func TestSession_Favorites(t *testing.T) {
	ctx := context.Background()
	m := newTestSessions(0)
	defer m.Close()
	a := m.Create(model.LangEnglish)
	b := m.Create(model.LangEnglish)

	favs, err := a.Favorites(ctx)
	if err != nil {
		t.Fatalf("Favorites() error = %v", err)
	}
	if !reflect.DeepEqual(favs, []string{"4"}) {
		t.Errorf("initial favorites = %v, want [4]", favs)
	}

	if on, err := a.ToggleFavorite(ctx, "4"); err != nil || on {
		t.Errorf("ToggleFavorite(4) = %v, %v, want false", on, err)
	}
	if on, err := a.ToggleFavorite(ctx, "1"); err != nil || !on {
		t.Errorf("ToggleFavorite(1) = %v, %v, want true", on, err)
	}
	if _, err := a.ToggleFavorite(ctx, "99"); !errors.Is(err, repository.ErrSpotNotFound) {
		t.Errorf("ToggleFavorite(99) error = %v, want ErrSpotNotFound", err)
	}

	favs, _ = a.Favorites(ctx)
	if !reflect.DeepEqual(favs, []string{"1"}) {
		t.Errorf("favorites = %v, want [1]", favs)
	}
	other, _ := b.Favorites(ctx)
	if !reflect.DeepEqual(other, []string{"4"}) {
		t.Errorf("other session favorites = %v, want [4]", other)
	}
}

func TestSession_FilteredSpots(t *testing.T) {
	m := newTestSessions(0)
	defer m.Close()
	s := m.Create(model.LangEnglish)

	if err := s.SetFilters(model.FilterConfiguration{EVChargingOnly: true, AvailableOnly: true}); err != nil {
		t.Fatalf("SetFilters() error = %v", err)
	}
	spots, err := s.FilteredSpots(context.Background())
	if err != nil {
		t.Fatalf("FilteredSpots() error = %v", err)
	}
	if got := ids(spots); !reflect.DeepEqual(got, []string{"1", "4"}) {
		t.Errorf("FilteredSpots() = %v, want [1 4]", got)
	}
}

func TestSession_Voice(t *testing.T) {
	ctx := context.Background()
	m := newTestSessions(0)
	defer m.Close()
	s := m.Create(model.LangEnglish)

	if _, err := s.Voice(ctx, []byte("audio")); !errors.Is(err, ErrVoiceUnsupported) {
		t.Errorf("Voice() error = %v, want ErrVoiceUnsupported", err)
	}
	if !s.TakeVoiceNotice() {
		t.Error("first TakeVoiceNotice() should be true")
	}
	if s.TakeVoiceNotice() {
		t.Error("second TakeVoiceNotice() should be false")
	}

	m.SetTranscriber(stubTranscriber{text: "cheap parking"})
	msg, err := s.Voice(ctx, []byte("audio"))
	if err != nil {
		t.Fatalf("Voice() error = %v", err)
	}
	if msg.Content != "cheap parking" {
		t.Errorf("transcript message = %q", msg.Content)
	}
}

func TestSessionManager_DelayBounds(t *testing.T) {
	m := NewSessionManager(
		repository.NewStaticCatalog(nil),
		NewIntentResolver(false),
		&sequenceIDs{},
		SessionConfig{DelayMin: time.Second, DelayMax: 2 * time.Second},
	)

	for i := 0; i < 200; i++ {
		d := m.delay()
		if d < time.Second || d > 2*time.Second {
			t.Fatalf("delay %v outside [1s, 2s]", d)
		}
	}
	if m.DefaultLanguage() != model.LangEnglish {
		t.Errorf("DefaultLanguage() = %s, want en", m.DefaultLanguage())
	}
}
