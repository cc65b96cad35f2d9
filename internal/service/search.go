package service

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"parksmart/internal/model"
	"parksmart/internal/repository"
	"parksmart/internal/utils"
)

// ErrImportUnsupported is returned when the configured catalog is read-only
var ErrImportUnsupported = errors.New("catalog does not support import")

// nearestFinder is implemented by catalogs that can order spots by position themselves
type nearestFinder interface {
	Nearest(ctx context.Context, lat, lng float64, limit int) ([]model.ParkingSpot, error)
}

// spotImporter is implemented by writable catalogs
type spotImporter interface {
	Import(ctx context.Context, spots []model.ParkingSpot) (int, []string)
}

// SearchService handles spot search business logic
type SearchService struct {
	catalog    repository.SpotCatalog
	ranker     *Ranker
	defaultRef model.GeoPoint
}

// NewSearchService creates a new search service
func NewSearchService(
	catalog repository.SpotCatalog,
	ranker *Ranker,
	defaultRef model.GeoPoint,
) *SearchService {
	return &SearchService{
		catalog:    catalog,
		ranker:     ranker,
		defaultRef: defaultRef,
	}
}

// SearchEventCallback is called for streaming search events
type SearchEventCallback func(event string, data any) error

// Search filters the whole catalog and scores what is left
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	return s.SearchStream(ctx, req, func(string, any) error { return nil })
}

// SearchStream performs a search, reporting each stage through callback
func (s *SearchService) SearchStream(ctx context.Context, req *model.SearchRequest, callback SearchEventCallback) (*model.SearchResponse, error) {
	startTime := time.Now()

	filters := req.Filters.Config()
	options := req.Options
	if options == nil {
		options = &model.SearchOptions{Sort: model.SortCatalog}
	}

	spots, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}

	if options.Reference != nil {
		spots = WithReference(spots, *options.Reference)
	}

	if err := callback("filtering", map[string]any{
		"status":  "Filtering spots...",
		"catalog": len(spots),
	}); err != nil {
		return nil, err
	}

	filtered := FilterSpots(spots, filters)

	if err := callback("ranking", map[string]any{
		"status":  "Ranking spots...",
		"matched": len(filtered),
	}); err != nil {
		return nil, err
	}

	results := s.ranker.ScoreSpots(filtered, filters)
	s.ranker.SortResults(results, options.Sort)

	return &model.SearchResponse{
		Results: results,
		Total:   len(results),
		Catalog: len(spots),
		Took:    time.Since(startTime).Milliseconds(),
	}, nil
}

// Catalog returns every spot in catalog order
func (s *SearchService) Catalog(ctx context.Context) ([]model.ParkingSpot, error) {
	return s.catalog.All(ctx)
}

// GetSpot retrieves a single spot by ID
func (s *SearchService) GetSpot(ctx context.Context, id string) (*model.ParkingSpot, error) {
	return s.catalog.Get(ctx, id)
}

// MapView builds the marker set for the spots passing filters. A nil ref uses the default location.
func (s *SearchService) MapView(ctx context.Context, filters model.FilterConfiguration, ref *model.GeoPoint, selectedID string) (*model.MapView, error) {
	spots, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapView(spots, filters, ref, selectedID), nil
}

// SessionMapView builds the marker set for the spots a session's filters let through,
// with the session's favorites applied
func (s *SearchService) SessionMapView(ctx context.Context, sess *Session, ref *model.GeoPoint, selectedID string) (*model.MapView, error) {
	spots, err := sess.Spots(ctx)
	if err != nil {
		return nil, err
	}
	return s.mapView(spots, sess.Filters(), ref, selectedID), nil
}

func (s *SearchService) mapView(spots []model.ParkingSpot, filters model.FilterConfiguration, ref *model.GeoPoint, selectedID string) *model.MapView {
	center := s.defaultRef
	if ref != nil {
		center = *ref
		spots = WithReference(spots, center)
	}

	view := BuildMapView(FilterSpots(spots, filters), center, selectedID)
	return &view
}

// Nearest returns up to limit spots closest to ref, with distances measured from ref
func (s *SearchService) Nearest(ctx context.Context, ref model.GeoPoint, limit int) ([]model.ParkingSpot, error) {
	if finder, ok := s.catalog.(nearestFinder); ok {
		spots, err := finder.Nearest(ctx, ref.Lat, ref.Lng, limit)
		if err != nil {
			return nil, err
		}
		return WithReference(spots, ref), nil
	}

	spots, err := s.catalog.All(ctx)
	if err != nil {
		return nil, err
	}
	spots = WithReference(spots, ref)
	sort.SliceStable(spots, func(i, j int) bool {
		return spots[i].Distance < spots[j].Distance
	})
	if limit > 0 && len(spots) > limit {
		spots = spots[:limit]
	}
	return spots, nil
}

// ImportSpots upserts spots into a writable catalog
func (s *SearchService) ImportSpots(ctx context.Context, spots []model.ParkingSpot) (int, []string, error) {
	importer, ok := s.catalog.(spotImporter)
	if !ok {
		return 0, nil, ErrImportUnsupported
	}
	success, errs := importer.Import(ctx, canonicalFeatures(spots))
	log.Printf("📥 Imported %d/%d spots", success, len(spots))
	return success, errs, nil
}

// canonicalFeatures returns copies of spots with feature tags in catalog spelling, duplicates dropped
func canonicalFeatures(spots []model.ParkingSpot) []model.ParkingSpot {
	out := make([]model.ParkingSpot, len(spots))
	for i, spot := range spots {
		seen := make(map[string]bool, len(spot.Features))
		features := make(model.JSONArray, 0, len(spot.Features))
		for _, f := range spot.Features {
			name := utils.NormalizeFeature(f)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			features = append(features, name)
		}
		spot.Features = features
		out[i] = spot
	}
	return out
}
