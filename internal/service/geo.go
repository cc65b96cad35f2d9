package service

import (
	"math"

	"parksmart/internal/model"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in kilometres
func HaversineKm(a, b model.GeoPoint) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}

// WithReference returns copies of spots whose Distance is measured from ref, rounded to 0.1 km
func WithReference(spots []model.ParkingSpot, ref model.GeoPoint) []model.ParkingSpot {
	out := make([]model.ParkingSpot, len(spots))
	for i, s := range spots {
		s.Distance = math.Round(HaversineKm(ref, model.GeoPoint{Lat: s.Lat, Lng: s.Lng})*10) / 10
		out[i] = s
	}
	return out
}

// BuildMapView turns spots into colored markers around ref
func BuildMapView(spots []model.ParkingSpot, ref model.GeoPoint, selectedID string) model.MapView {
	markers := make([]model.MapMarker, 0, len(spots))
	for _, s := range spots {
		level := ClassifyAvailability(s.PredictedAvailability)
		markers = append(markers, model.MapMarker{
			ID:           s.ID,
			Name:         s.Name,
			Lat:          s.Lat,
			Lng:          s.Lng,
			Price:        s.Price,
			Available:    s.Available,
			Availability: level,
			Color:        level.Color(),
			Selected:     s.ID == selectedID,
		})
	}
	return model.MapView{
		Reference:      ref,
		SelectedSpotID: selectedID,
		Markers:        markers,
	}
}
