package service

import (
	"log"
	"sort"
	"strconv"
	"strings"

	"parksmart/internal/model"
)

// budgetPriceCeiling is the hourly price at or below which a spot counts as cheap
const budgetPriceCeiling = 15

// intentRule is one rung of the keyword ladder. Latin keywords are matched against
// lower-cased text, Arabic keywords against the text as typed.
type intentRule struct {
	intent model.IntentKey
	latin  []string
	arabic []string
}

// intentRules is evaluated top to bottom; the first rule with a hit wins
var intentRules = []intentRule{
	{intent: model.IntentMaarif, latin: []string{"maarif"}, arabic: []string{"معاريف"}},
	{intent: model.IntentAinDiab, latin: []string{"ain diab"}, arabic: []string{"عين الذياب"}},
	{intent: model.IntentBudget, latin: []string{"cheap", "budget", "pas cher"}, arabic: []string{"رخيص"}},
	{intent: model.IntentPrice, latin: []string{"price", "cost", "prix"}, arabic: []string{"سعر", "أسعار"}},
	{intent: model.IntentBooking, latin: []string{"book", "reserve", "réserver"}, arabic: []string{"حجز"}},
	{intent: model.IntentAvailability, latin: []string{"available", "availability", "disponible"}, arabic: []string{"متاح"}},
}

// IntentResolver maps chat text to a canned, localized reply
type IntentResolver struct {
	debug bool
}

// NewIntentResolver creates a new intent resolver
func NewIntentResolver(debug bool) *IntentResolver {
	return &IntentResolver{debug: debug}
}

// Resolve picks the first matching intent for text and renders its reply in lang.
// It never fails: text matching no rule gets the default help reply.
func (r *IntentResolver) Resolve(text string, lang model.Language, spots []model.ParkingSpot) model.Reply {
	lang = replyLanguage(lang)
	intent := matchIntent(text)

	tmpl := responseTable[intent]
	reply := model.Reply{
		Intent:       intent,
		Text:         tmpl.Text[lang],
		QuickActions: tmpl.quickActions(lang),
	}

	switch intent {
	case model.IntentMaarif:
		reply.SpotIDs = spotIDs(spotsInArea(spots, "maarif"))
	case model.IntentBudget:
		reply.SpotIDs = spotIDs(cheapestSpots(spots, budgetPriceCeiling))
	case model.IntentAvailability:
		reply.SpotIDs = spotIDs(availableSpots(spots))
	}
	if strings.Contains(reply.Text, countPlaceholder) {
		reply.Text = strings.ReplaceAll(reply.Text, countPlaceholder, strconv.Itoa(len(reply.SpotIDs)))
	}

	if r.debug {
		log.Printf("[DEBUG] 🎯 Resolved %q (%s) -> %s", text, lang, intent)
	}
	return reply
}

// ResolveAction runs a quick action through the same path as typed text
func (r *IntentResolver) ResolveAction(action string, lang model.Language, spots []model.ParkingSpot) model.Reply {
	return r.Resolve(CanonicalText(action, lang), lang, spots)
}

// Welcome returns the greeting that opens every session
func (r *IntentResolver) Welcome(lang model.Language) model.Reply {
	lang = replyLanguage(lang)
	tmpl := responseTable[model.IntentWelcome]
	return model.Reply{
		Intent:       model.IntentWelcome,
		Text:         tmpl.Text[lang],
		QuickActions: tmpl.quickActions(lang),
	}
}

// CanonicalText returns the text a quick action stands for. Keys without a
// canonical phrasing are returned unchanged.
func CanonicalText(action string, lang model.Language) string {
	if texts, ok := canonicalTexts[action]; ok {
		return texts[replyLanguage(lang)]
	}
	return action
}

func matchIntent(text string) model.IntentKey {
	lower := strings.ToLower(text)
	for _, rule := range intentRules {
		if containsAny(lower, rule.latin) || containsAny(text, rule.arabic) {
			return rule.intent
		}
	}
	return model.IntentDefault
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// replyLanguage keeps Resolve total for codes that slipped past ParseLanguage
func replyLanguage(lang model.Language) model.Language {
	if _, err := model.ParseLanguage(string(lang)); err != nil {
		return model.LangEnglish
	}
	return lang
}

func spotsInArea(spots []model.ParkingSpot, area string) []model.ParkingSpot {
	var out []model.ParkingSpot
	for _, s := range spots {
		if strings.Contains(strings.ToLower(s.Address), area) {
			out = append(out, s)
		}
	}
	return out
}

func cheapestSpots(spots []model.ParkingSpot, ceiling float64) []model.ParkingSpot {
	var out []model.ParkingSpot
	for _, s := range spots {
		if s.Price <= ceiling {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Price < out[j].Price
	})
	return out
}

func availableSpots(spots []model.ParkingSpot) []model.ParkingSpot {
	var out []model.ParkingSpot
	for _, s := range spots {
		if s.Available {
			out = append(out, s)
		}
	}
	return out
}

func spotIDs(spots []model.ParkingSpot) []string {
	ids := make([]string, 0, len(spots))
	for _, s := range spots {
		ids = append(ids, s.ID)
	}
	return ids
}
