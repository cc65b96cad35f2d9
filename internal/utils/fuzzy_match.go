package utils

import (
	"strings"
	"unicode"
)

// featureAliases maps a short search key to the tag spellings it should match
var featureAliases = map[string][]string{
	"ev":         {"ev charging", "electric", "charger"},
	"electric":   {"ev charging", "electric", "charger"},
	"charg":      {"ev charging", "charger"},
	"handicap":   {"handicap access", "accessible", "wheelchair"},
	"accessib":   {"handicap access", "accessible", "wheelchair"},
	"wheelchair": {"handicap access", "accessible", "wheelchair"},
	"24":         {"24/7 access", "24h", "24/7"},
	"night":      {"24/7 access", "24/7"},
	"covered":    {"covered", "underground", "indoor"},
	"indoor":     {"covered", "underground", "indoor"},
	"secur":      {"security", "guarded", "cctv"},
	"guard":      {"security", "guarded"},
	"valet":      {"valet"},
	"beach":      {"beach access", "corniche"},
	"shop":       {"shopping center", "shopping", "mall"},
	"mall":       {"shopping center", "mall"},
	"train":      {"train station", "public transport"},
	"transport":  {"public transport", "train station", "tram"},
	"cheap":      {"budget"},
	"budget":     {"budget"},
	"business":   {"business district", "business center"},
	"premium":    {"premium", "valet"},
	"tourist":    {"tourist area"},
	"restaurant": {"restaurants"},
}

// FuzzyMatchFeature performs fuzzy matching of a requested feature against one spot feature tag
func FuzzyMatchFeature(searchTerm, feature string) bool {
	searchLower := strings.ToLower(strings.TrimSpace(searchTerm))
	featureLower := strings.ToLower(strings.TrimSpace(feature))

	if searchLower == "" {
		return true
	}
	if featureLower == "" {
		return false
	}

	// Exact or contains match
	if searchLower == featureLower || strings.Contains(featureLower, searchLower) {
		return true
	}

	// Check aliases, keyed on word prefixes so "level" does not hit "ev"
	for _, word := range strings.Fields(searchLower) {
		for key, values := range featureAliases {
			if !strings.HasPrefix(word, key) {
				continue
			}
			for _, alias := range values {
				if strings.Contains(featureLower, alias) {
					return true
				}
			}
		}
	}

	return false
}

// MatchesAnyFeature reports whether searchTerm fuzzy matches at least one of features
func MatchesAnyFeature(searchTerm string, features []string) bool {
	for _, f := range features {
		if FuzzyMatchFeature(searchTerm, f) {
			return true
		}
	}
	return false
}

// NormalizeFeature normalizes feature names to their catalog spelling
func NormalizeFeature(feature string) string {
	featureLower := strings.ToLower(strings.TrimSpace(feature))

	normalizations := map[string]string{
		"ev":              "EV Charging",
		"ev charging":     "EV Charging",
		"charger":         "EV Charging",
		"accessible":      "Handicap Access",
		"handicap":        "Handicap Access",
		"handicap access": "Handicap Access",
		"wheelchair":      "Handicap Access",
		"24/7":            "24/7 Access",
		"24h":             "24/7 Access",
		"24/7 access":     "24/7 Access",
		"covered":         "Covered",
		"indoor":          "Covered",
		"security":        "Security",
		"guarded":         "Security",
		"valet":           "Valet",
		"beach":           "Beach Access",
		"beach access":    "Beach Access",
		"mall":            "Shopping Center",
		"shopping center": "Shopping Center",
		"train station":   "Train Station",
		"budget":          "Budget",
	}

	if normalized, ok := normalizations[featureLower]; ok {
		return normalized
	}

	return titleCase(featureLower)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
