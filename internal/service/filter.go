package service

import (
	"strings"

	"parksmart/internal/model"
	"parksmart/internal/utils"
)

// Synthetic tags so amenity flags can be requested like any other feature
const (
	featureEVCharging     = "EV Charging"
	featureHandicapAccess = "Handicap Access"
)

// FilterSpots returns the spots that pass every active predicate of cfg, in input order.
// The input slice is never modified. The search term is lower-cased but not trimmed.
func FilterSpots(spots []model.ParkingSpot, cfg model.FilterConfiguration) []model.ParkingSpot {
	search := strings.ToLower(cfg.Search)

	filtered := make([]model.ParkingSpot, 0, len(spots))
	for _, spot := range spots {
		if matchesAll(spot, cfg, search) {
			filtered = append(filtered, spot)
		}
	}
	return filtered
}

// matchesAll evaluates every predicate before combining them
func matchesAll(spot model.ParkingSpot, cfg model.FilterConfiguration, search string) bool {
	priceMatch := matchPrice(spot, cfg)
	distanceMatch := cfg.MaxDistance == nil || spot.Distance <= *cfg.MaxDistance
	ratingMatch := cfg.MinRating == nil || spot.Rating >= *cfg.MinRating
	availabilityMatch := !cfg.AvailableOnly || spot.Available
	evChargingMatch := !cfg.EVChargingOnly || spot.HasEVCharging
	handicapAccessMatch := !cfg.HandicapAccessOnly || spot.HasHandicapAccess
	searchMatch := search == "" ||
		strings.Contains(strings.ToLower(spot.Name), search) ||
		strings.Contains(strings.ToLower(spot.Address), search)
	featuresMatch := matchFeatures(spot, cfg.Features)

	return priceMatch &&
		distanceMatch &&
		ratingMatch &&
		availabilityMatch &&
		evChargingMatch &&
		handicapAccessMatch &&
		searchMatch &&
		featuresMatch
}

func matchPrice(spot model.ParkingSpot, cfg model.FilterConfiguration) bool {
	minOK := cfg.PriceMin == nil || spot.Price >= *cfg.PriceMin
	maxOK := cfg.PriceMax == nil || spot.Price <= *cfg.PriceMax
	return minOK && maxOK
}

func matchFeatures(spot model.ParkingSpot, wanted []string) bool {
	if len(wanted) == 0 {
		return true
	}
	tags := spotTags(spot)
	for _, w := range wanted {
		if !utils.MatchesAnyFeature(w, tags) {
			return false
		}
	}
	return true
}

// spotTags returns the spot's feature tags plus tags for its amenity flags
func spotTags(spot model.ParkingSpot) []string {
	tags := make([]string, 0, len(spot.Features)+2)
	tags = append(tags, spot.Features...)
	if spot.HasEVCharging {
		tags = append(tags, featureEVCharging)
	}
	if spot.HasHandicapAccess {
		tags = append(tags, featureHandicapAccess)
	}
	return tags
}
