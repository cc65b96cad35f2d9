package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ParkingSpot represents a single parking location in the catalog
type ParkingSpot struct {
	ID                    string    `json:"id" db:"id"`
	Name                  string    `json:"name" db:"name"`
	Address               string    `json:"address" db:"address"`
	Lat                   float64   `json:"lat" db:"lat"`
	Lng                   float64   `json:"lng" db:"lng"`
	Price                 float64   `json:"price" db:"price"` // MAD per hour
	Rating                float64   `json:"rating" db:"rating"`
	Distance              float64   `json:"distance" db:"distance"` // km from the reference point
	Available             bool      `json:"available" db:"available"`
	TotalSpots            int       `json:"total_spots" db:"total_spots"`
	AvailableSpots        int       `json:"available_spots" db:"available_spots"`
	PredictedAvailability float64   `json:"predicted_availability" db:"predicted_availability"`
	Features              JSONArray `json:"features" db:"features"`
	HasEVCharging         bool      `json:"has_ev_charging" db:"has_ev_charging"`
	HasHandicapAccess     bool      `json:"has_handicap_access" db:"has_handicap_access"`
	IsFavorite            bool      `json:"is_favorite" db:"is_favorite"`
}

// Validate reports data defects in a spot record. An empty result means the record is consistent.
func (s ParkingSpot) Validate() []string {
	var defects []string
	if s.ID == "" {
		defects = append(defects, "missing id")
	}
	if s.AvailableSpots > s.TotalSpots {
		defects = append(defects, fmt.Sprintf("available_spots %d exceeds total_spots %d", s.AvailableSpots, s.TotalSpots))
	}
	if s.AvailableSpots < 0 || s.TotalSpots < 0 {
		defects = append(defects, "negative capacity")
	}
	if s.Available != (s.AvailableSpots > 0) {
		defects = append(defects, fmt.Sprintf("available=%t disagrees with available_spots=%d", s.Available, s.AvailableSpots))
	}
	if s.Rating < 0 || s.Rating > 5 {
		defects = append(defects, fmt.Sprintf("rating %.1f out of range", s.Rating))
	}
	if s.PredictedAvailability < 0 || s.PredictedAvailability > 100 {
		defects = append(defects, fmt.Sprintf("predicted_availability %.1f out of range", s.PredictedAvailability))
	}
	if s.Price < 0 {
		defects = append(defects, "negative price")
	}
	if s.Distance < 0 {
		defects = append(defects, "negative distance")
	}
	return defects
}

// GeoPoint is a latitude/longitude pair in degrees
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// AvailabilityLevel is the three-tier display category for predicted availability
type AvailabilityLevel string

const (
	AvailabilityHigh   AvailabilityLevel = "high"
	AvailabilityMedium AvailabilityLevel = "medium"
	AvailabilityLow    AvailabilityLevel = "low"
)

// Color returns the badge color used for the level on the map and in lists
func (l AvailabilityLevel) Color() string {
	switch l {
	case AvailabilityHigh:
		return "#10b981"
	case AvailabilityMedium:
		return "#f59e0b"
	default:
		return "#ef4444"
	}
}

// FilterConfiguration holds the user's filter settings. Nil or zero fields mean "no constraint".
type FilterConfiguration struct {
	PriceMin           *float64 `json:"price_min,omitempty"`
	PriceMax           *float64 `json:"price_max,omitempty"`
	MaxDistance        *float64 `json:"max_distance,omitempty"`
	MinRating          *float64 `json:"min_rating,omitempty"`
	AvailableOnly      bool     `json:"available_only"`
	EVChargingOnly     bool     `json:"ev_charging_only"`
	HandicapAccessOnly bool     `json:"handicap_access_only"`
	Search             string   `json:"search,omitempty"`
	Features           []string `json:"features,omitempty"` // every entry must match a spot feature
}

// JSONArray represents a JSON array field
type JSONArray []string

// Value implements driver.Valuer interface
func (j JSONArray) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner interface
func (j *JSONArray) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("cannot scan %T into JSONArray", value)
	}
}
