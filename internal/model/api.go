package model

import (
	"gopkg.in/guregu/null.v4"
)

// FilterRequest is the wire form of FilterConfiguration; null fields mean "no constraint"
type FilterRequest struct {
	PriceMin           null.Float `json:"price_min"`
	PriceMax           null.Float `json:"price_max"`
	MaxDistance        null.Float `json:"max_distance"`
	MinRating          null.Float `json:"min_rating"`
	AvailableOnly      bool       `json:"available_only"`
	EVChargingOnly     bool       `json:"ev_charging_only"`
	HandicapAccessOnly bool       `json:"handicap_access_only"`
	Search             string     `json:"search"`
	Features           []string   `json:"features,omitempty"`
}

// Config converts the request into a FilterConfiguration
func (r *FilterRequest) Config() FilterConfiguration {
	if r == nil {
		return FilterConfiguration{}
	}
	return FilterConfiguration{
		PriceMin:           r.PriceMin.Ptr(),
		PriceMax:           r.PriceMax.Ptr(),
		MaxDistance:        r.MaxDistance.Ptr(),
		MinRating:          r.MinRating.Ptr(),
		AvailableOnly:      r.AvailableOnly,
		EVChargingOnly:     r.EVChargingOnly,
		HandicapAccessOnly: r.HandicapAccessOnly,
		Search:             r.Search,
		Features:           r.Features,
	}
}

// FilterQuery is FilterConfiguration read from URL query parameters
type FilterQuery struct {
	PriceMin           *float64 `form:"price_min"`
	PriceMax           *float64 `form:"price_max"`
	MaxDistance        *float64 `form:"max_distance"`
	MinRating          *float64 `form:"min_rating"`
	AvailableOnly      bool     `form:"available_only"`
	EVChargingOnly     bool     `form:"ev_charging_only"`
	HandicapAccessOnly bool     `form:"handicap_access_only"`
	Search             string   `form:"search"`
	Features           []string `form:"feature"`
}

// Config converts the query into a FilterConfiguration
func (q FilterQuery) Config() FilterConfiguration {
	return FilterConfiguration{
		PriceMin:           q.PriceMin,
		PriceMax:           q.PriceMax,
		MaxDistance:        q.MaxDistance,
		MinRating:          q.MinRating,
		AvailableOnly:      q.AvailableOnly,
		EVChargingOnly:     q.EVChargingOnly,
		HandicapAccessOnly: q.HandicapAccessOnly,
		Search:             q.Search,
		Features:           q.Features,
	}
}

// Sort orders accepted by SearchOptions.Sort
const (
	SortCatalog     = ""
	SortRecommended = "recommended"
	SortPrice       = "price"
	SortDistance    = "distance"
	SortRating      = "rating"
)

// SearchRequest represents a spot search
type SearchRequest struct {
	Filters *FilterRequest `json:"filters,omitempty"`
	Options *SearchOptions `json:"options,omitempty"`
}

// SearchOptions controls ordering and the reference point of a search
type SearchOptions struct {
	Sort      string    `json:"sort"`
	Reference *GeoPoint `json:"reference,omitempty"` // user location; distances are recomputed when set
}

// SpotResult is a filtered spot with its ranking metadata
type SpotResult struct {
	ParkingSpot
	Score          float64           `json:"score"`
	Availability   AvailabilityLevel `json:"availability_level"`
	MatchedReasons []string          `json:"matched_reasons"`
}

// SearchResponse represents a search result response
type SearchResponse struct {
	Results []SpotResult `json:"results"`
	Total   int          `json:"total"`
	Catalog int          `json:"catalog_size"`
	Took    int64        `json:"took_ms"`
}

// MapMarker is one spot as handed to the map renderer
type MapMarker struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Lat          float64           `json:"lat"`
	Lng          float64           `json:"lng"`
	Price        float64           `json:"price"`
	Available    bool              `json:"available"`
	Availability AvailabilityLevel `json:"availability_level"`
	Color        string            `json:"color"`
	Selected     bool              `json:"selected"`
}

// MapView is the input of the map adapter
type MapView struct {
	Reference      GeoPoint    `json:"reference"`
	SelectedSpotID string      `json:"selected_spot_id,omitempty"`
	Markers        []MapMarker `json:"markers"`
}

// QuoteRequest asks for the cost of a time window at a spot
type QuoteRequest struct {
	SpotID    string `json:"spot_id" binding:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// QuoteResponse represents a computed quote
type QuoteResponse struct {
	Quote
	SpotID     string  `json:"spot_id"`
	HourlyRate float64 `json:"hourly_rate"`
	Bookable   bool    `json:"bookable"`
}

// BookingResponse wraps a booking record for the API
type BookingResponse struct {
	Booking *BookingRecord `json:"booking"`
	Status  BookingStatus  `json:"status"`
	Ticket  string         `json:"ticket"`
}

// SessionRequest opens a chat/filter session
type SessionRequest struct {
	Language string `json:"language"`
}

// SessionResponse describes a session and its history
type SessionResponse struct {
	SessionID string              `json:"session_id"`
	Language  Language            `json:"language"`
	Filters   FilterConfiguration `json:"filters"`
	Favorites []string            `json:"favorites"`
	Messages  []ChatMessage       `json:"messages"`
}

// ChatRequest carries typed user text
type ChatRequest struct {
	Text string `json:"text" binding:"required"`
}

// ActionRequest carries a quick-action key
type ActionRequest struct {
	Action string `json:"action" binding:"required"`
}

// LanguageRequest switches the session language
type LanguageRequest struct {
	Language string `json:"language" binding:"required"`
}

// ResolveRequest is a stateless, single-shot resolution
type ResolveRequest struct {
	Text     string `json:"text"`
	Language string `json:"language" binding:"required"`
}

// SpotImportRequest represents a batch catalog import
type SpotImportRequest struct {
	Spots []ParkingSpot `json:"spots" binding:"required"`
}

// SpotImportResponse represents the response for a batch catalog import
type SpotImportResponse struct {
	Success int      `json:"success"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}

// FavoriteResponse reports the favorite flag after a toggle
type FavoriteResponse struct {
	SpotID     string `json:"spot_id"`
	IsFavorite bool   `json:"is_favorite"`
}
