package model

import (
	"fmt"
	"time"
)

// Language is one of the assistant's supported reply languages
type Language string

const (
	LangEnglish Language = "en"
	LangFrench  Language = "fr"
	LangArabic  Language = "ar"
)

// Languages lists every supported language
var Languages = []Language{LangEnglish, LangFrench, LangArabic}

// ParseLanguage accepts exactly "en", "fr" or "ar"
func ParseLanguage(code string) (Language, error) {
	switch Language(code) {
	case LangEnglish, LangFrench, LangArabic:
		return Language(code), nil
	}
	return "", fmt.Errorf("unsupported language %q (expected en, fr or ar)", code)
}

// Role identifies who authored a chat message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IntentKey names the branch the resolver picked for a message
type IntentKey string

const (
	IntentWelcome      IntentKey = "welcome"
	IntentMaarif       IntentKey = "area_maarif"
	IntentAinDiab      IntentKey = "area_ain_diab"
	IntentBudget       IntentKey = "budget"
	IntentPrice        IntentKey = "price"
	IntentBooking      IntentKey = "booking"
	IntentAvailability IntentKey = "availability"
	IntentDefault      IntentKey = "default"
)

// QuickAction is a labelled shortcut that re-enters the resolver as synthesized text
type QuickAction struct {
	Label  string `json:"label"`
	Action string `json:"action"`
	Icon   string `json:"icon,omitempty"`
}

// Reply is the resolver's answer to one message
type Reply struct {
	Intent       IntentKey     `json:"intent"`
	Text         string        `json:"text"`
	QuickActions []QuickAction `json:"quick_actions"`
	SpotIDs      []string      `json:"spot_ids,omitempty"` // catalog spots the reply was computed from
}

// ChatMessage is one entry of a session's append-only chat history
type ChatMessage struct {
	ID           string        `json:"id"`
	Role         Role          `json:"role"`
	Content      string        `json:"content"`
	Timestamp    time.Time     `json:"timestamp"`
	Language     Language      `json:"language"`
	Intent       IntentKey     `json:"intent,omitempty"`
	QuickActions []QuickAction `json:"quick_actions,omitempty"`
}
