package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"parksmart/internal/model"
)

// ErrSpotNotFound is returned when a spot id is not in the catalog
var ErrSpotNotFound = errors.New("parking spot not found")

// SpotCatalog is a read-only source of parking spots
type SpotCatalog interface {
	All(ctx context.Context) ([]model.ParkingSpot, error)
	Get(ctx context.Context, id string) (*model.ParkingSpot, error)
}

// StaticCatalog serves a fixed, in-memory list of spots
type StaticCatalog struct {
	spots []model.ParkingSpot
	index map[string]int
}

// NewStaticCatalog creates a catalog over spots. Defective records are logged and kept.
func NewStaticCatalog(spots []model.ParkingSpot) *StaticCatalog {
	c := &StaticCatalog{
		spots: make([]model.ParkingSpot, len(spots)),
		index: make(map[string]int, len(spots)),
	}
	copy(c.spots, spots)
	for i, s := range c.spots {
		for _, defect := range s.Validate() {
			log.Printf("⚠️  Catalog spot %q: %s", s.ID, defect)
		}
		if _, dup := c.index[s.ID]; dup {
			log.Printf("⚠️  Catalog spot %q: duplicate id, keeping the first", s.ID)
			continue
		}
		c.index[s.ID] = i
	}
	return c
}

// LoadCatalogFile reads a JSON array of spots from path
func LoadCatalogFile(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var spots []model.ParkingSpot
	if err := json.Unmarshal(data, &spots); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return NewStaticCatalog(spots), nil
}

// All returns a copy of every spot in catalog order
func (c *StaticCatalog) All(ctx context.Context) ([]model.ParkingSpot, error) {
	out := make([]model.ParkingSpot, len(c.spots))
	copy(out, c.spots)
	return out, nil
}

// Get returns a copy of the spot with the given id
func (c *StaticCatalog) Get(ctx context.Context, id string) (*model.ParkingSpot, error) {
	i, ok := c.index[id]
	if !ok {
		return nil, ErrSpotNotFound
	}
	spot := c.spots[i]
	return &spot, nil
}

// Len returns the number of spots
func (c *StaticCatalog) Len() int {
	return len(c.spots)
}

// CasablancaSpots returns the built-in demo catalog
func CasablancaSpots() []model.ParkingSpot {
	return []model.ParkingSpot{
		{
			ID:                    "1",
			Name:                  "Morocco Mall Parking",
			Address:               "Boulevard de l'Océan Atlantique, Ain Diab",
			Lat:                   33.5731,
			Lng:                   -7.6298,
			Price:                 25,
			Rating:                4.6,
			Distance:              0.3,
			Available:             true,
			TotalSpots:            1200,
			AvailableSpots:        340,
			PredictedAvailability: 85,
			Features:              model.JSONArray{"Covered", "Security", "Shopping Center"},
			HasEVCharging:         true,
			HasHandicapAccess:     true,
		},
		{
			ID:                    "2",
			Name:                  "Hassan II Mosque Parking",
			Address:               "Boulevard Sidi Mohammed Ben Abdallah",
			Lat:                   33.6084,
			Lng:                   -7.6325,
			Price:                 15,
			Rating:                4.3,
			Distance:              0.8,
			Available:             true,
			TotalSpots:            800,
			AvailableSpots:        120,
			PredictedAvailability: 65,
			Features:              model.JSONArray{"Tourist Area", "Security", "24/7 Access"},
			HasHandicapAccess:     true,
		},
		{
			ID:                    "3",
			Name:                  "Maarif District Parking",
			Address:               "Boulevard Zerktouni, Maarif",
			Lat:                   33.5892,
			Lng:                   -7.6164,
			Price:                 20,
			Rating:                4.1,
			Distance:              0.5,
			Available:             false,
			TotalSpots:            600,
			AvailableSpots:        0,
			PredictedAvailability: 15,
			Features:              model.JSONArray{"City Center", "Business District"},
			HasEVCharging:         true,
		},
		{
			ID:                    "4",
			Name:                  "Twin Center Parking",
			Address:               "Boulevard Zerktouni, Maarif",
			Lat:                   33.5908,
			Lng:                   -7.6147,
			Price:                 30,
			Rating:                4.7,
			Distance:              0.6,
			Available:             true,
			TotalSpots:            400,
			AvailableSpots:        89,
			PredictedAvailability: 75,
			Features:              model.JSONArray{"Premium", "Valet", "Business Center"},
			HasEVCharging:         true,
			HasHandicapAccess:     true,
			IsFavorite:            true,
		},
		{
			ID:                    "5",
			Name:                  "Corniche Parking",
			Address:               "Boulevard de la Corniche, Ain Diab",
			Lat:                   33.5698,
			Lng:                   -7.6389,
			Price:                 18,
			Rating:                4.2,
			Distance:              1.1,
			Available:             true,
			TotalSpots:            300,
			AvailableSpots:        45,
			PredictedAvailability: 55,
			Features:              model.JSONArray{"Beach Access", "Restaurants", "Entertainment"},
			HasHandicapAccess:     true,
		},
		{
			ID:                    "6",
			Name:                  "Casa Port Station Parking",
			Address:               "Boulevard Mohammed V, Centre Ville",
			Lat:                   33.5969,
			Lng:                   -7.6192,
			Price:                 12,
			Rating:                3.9,
			Distance:              0.4,
			Available:             true,
			TotalSpots:            500,
			AvailableSpots:        180,
			PredictedAvailability: 70,
			Features:              model.JSONArray{"Train Station", "Public Transport", "Budget"},
			HasHandicapAccess:     true,
		},
	}
}
