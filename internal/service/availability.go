package service

import "parksmart/internal/model"

// Availability thresholds, in percent
const (
	highAvailabilityPct   = 70
	mediumAvailabilityPct = 40
)

// ClassifyAvailability buckets a predicted availability percentage
func ClassifyAvailability(pct float64) model.AvailabilityLevel {
	switch {
	case pct >= highAvailabilityPct:
		return model.AvailabilityHigh
	case pct >= mediumAvailabilityPct:
		return model.AvailabilityMedium
	default:
		return model.AvailabilityLow
	}
}
