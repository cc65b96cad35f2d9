package service

import (
	"testing"

	"parksmart/internal/model"
)

func TestResponseTable_Complete(t *testing.T) {
	if err := validateResponseTable(); err != nil {
		t.Fatalf("validateResponseTable() = %v", err)
	}
	if len(responseTable) != len(allIntents) {
		t.Errorf("response table has %d entries, want %d", len(responseTable), len(allIntents))
	}
}

func TestResponseTable_QuickActions(t *testing.T) {
	for _, intent := range allIntents {
		tmpl := responseTable[intent]
		for _, lang := range model.Languages {
			actions := tmpl.quickActions(lang)
			if len(actions) < 2 {
				t.Errorf("%s/%s: %d quick actions, want at least 2", intent, lang, len(actions))
			}
			seen := make(map[string]bool)
			for _, qa := range actions {
				if qa.Label == "" || qa.Action == "" {
					t.Errorf("%s/%s: incomplete quick action %+v", intent, lang, qa)
				}
				if seen[qa.Action] {
					t.Errorf("%s/%s: duplicate action %q", intent, lang, qa.Action)
				}
				seen[qa.Action] = true
			}
		}
	}
}

func TestCheckLocalized(t *testing.T) {
	if err := checkLocalized(localized{model.LangEnglish: "a", model.LangFrench: "b"}); err == nil {
		t.Error("Expected an error for a missing Arabic text")
	}
	if err := checkLocalized(localized{model.LangEnglish: "a", model.LangFrench: "b", model.LangArabic: "c"}); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}
