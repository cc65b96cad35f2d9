package service

import (
	"math"
	"sort"

	"parksmart/internal/model"
)

// Match reason constants
const (
	ReasonNearby           = "Close by"
	ReasonHighAvailability = "High availability"
	ReasonPriceMatch       = "Price within budget"
	ReasonHighlyRated      = "Highly rated"
	ReasonEVCharging       = "EV charging"
	ReasonHandicapAccess   = "Handicap access"
	ReasonFavorite         = "Favorite"
	ReasonGeneralMatch     = "General match"
)

// Ranker handles ranking and scoring of filtered spots
type Ranker struct {
	weightDistance     float64
	weightAvailability float64
	weightPrice        float64
	weightRating       float64
}

// NewRanker creates a new ranker with specified weights
func NewRanker(weightDistance, weightAvailability, weightPrice, weightRating float64) *Ranker {
	return &Ranker{
		weightDistance:     weightDistance,
		weightAvailability: weightAvailability,
		weightPrice:        weightPrice,
		weightRating:       weightRating,
	}
}

// ScoreSpots scores spots in input order without reordering them
func (r *Ranker) ScoreSpots(spots []model.ParkingSpot, filters model.FilterConfiguration) []model.SpotResult {
	results := make([]model.SpotResult, 0, len(spots))

	for _, spot := range spots {
		distanceScore := 1 / (1 + math.Max(spot.Distance, 0))
		availabilityScore := r.calculateAvailabilityScore(spot)
		priceScore := r.calculatePriceScore(spot.Price, filters, spots)
		ratingScore := clamp01(spot.Rating / 5)

		score := (r.weightDistance * distanceScore) +
			(r.weightAvailability * availabilityScore) +
			(r.weightPrice * priceScore) +
			(r.weightRating * ratingScore)

		results = append(results, model.SpotResult{
			ParkingSpot:    spot,
			Score:          math.Round(score*1000) / 1000,
			Availability:   ClassifyAvailability(spot.PredictedAvailability),
			MatchedReasons: r.generateMatchedReasons(spot, filters, distanceScore, priceScore),
		})
	}

	return results
}

// SortResults orders results in place by the given sort key. Unknown keys keep the input order.
func (r *Ranker) SortResults(results []model.SpotResult, by string) {
	var less func(a, b model.SpotResult) bool
	switch by {
	case model.SortRecommended:
		less = func(a, b model.SpotResult) bool { return a.Score > b.Score }
	case model.SortPrice:
		less = func(a, b model.SpotResult) bool { return a.Price < b.Price }
	case model.SortDistance:
		less = func(a, b model.SpotResult) bool { return a.Distance < b.Distance }
	case model.SortRating:
		less = func(a, b model.SpotResult) bool { return a.Rating > b.Rating }
	default:
		return
	}
	sort.SliceStable(results, func(i, j int) bool {
		return less(results[i], results[j])
	})
}

func (r *Ranker) calculateAvailabilityScore(spot model.ParkingSpot) float64 {
	if !spot.Available {
		return 0
	}
	return clamp01(spot.PredictedAvailability / 100)
}

// calculatePriceScore calculates how well the price matches the user's budget
func (r *Ranker) calculatePriceScore(price float64, filters model.FilterConfiguration, spots []model.ParkingSpot) float64 {
	minPrice, maxPrice := filters.PriceMin, filters.PriceMax

	// Within an explicit range, the low end of the range scores best
	if minPrice != nil && maxPrice != nil {
		if price < *minPrice || price > *maxPrice {
			return 0.0
		}
		priceRange := *maxPrice - *minPrice
		if priceRange <= 0 {
			return 1.0
		}
		return clamp01(1.0 - (price-*minPrice)/priceRange)
	}

	if maxPrice != nil {
		if price > *maxPrice {
			return 0.0
		}
		if *maxPrice <= 0 {
			return 1.0
		}
		return clamp01(1.0 - price/(*maxPrice)*0.5)
	}

	if minPrice != nil && price < *minPrice {
		return 0.0
	}

	// No budget: cheaper than the rest of the result set is better
	lo, hi := priceBounds(spots)
	if hi <= lo {
		return 1.0
	}
	return clamp01(1.0 - (price-lo)/(hi-lo))
}

// generateMatchedReasons generates human-readable reasons for why this spot ranked
func (r *Ranker) generateMatchedReasons(
	spot model.ParkingSpot,
	filters model.FilterConfiguration,
	distanceScore float64,
	priceScore float64,
) []string {
	reasons := []string{}

	if distanceScore >= 0.6 {
		reasons = append(reasons, ReasonNearby)
	}

	if spot.Available && ClassifyAvailability(spot.PredictedAvailability) == model.AvailabilityHigh {
		reasons = append(reasons, ReasonHighAvailability)
	}

	if (filters.PriceMin != nil || filters.PriceMax != nil) && priceScore > 0.5 {
		reasons = append(reasons, ReasonPriceMatch)
	}

	if spot.Rating >= 4.5 {
		reasons = append(reasons, ReasonHighlyRated)
	}

	if filters.EVChargingOnly && spot.HasEVCharging {
		reasons = append(reasons, ReasonEVCharging)
	}

	if filters.HandicapAccessOnly && spot.HasHandicapAccess {
		reasons = append(reasons, ReasonHandicapAccess)
	}

	if spot.IsFavorite {
		reasons = append(reasons, ReasonFavorite)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}

	return reasons
}

func priceBounds(spots []model.ParkingSpot) (lo, hi float64) {
	for i, s := range spots {
		if i == 0 || s.Price < lo {
			lo = s.Price
		}
		if i == 0 || s.Price > hi {
			hi = s.Price
		}
	}
	return lo, hi
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
