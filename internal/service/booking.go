package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"parksmart/internal/model"
	"parksmart/internal/repository"
)

// Booking form fields reported by ValidationError
const (
	FieldSpot          = "spot"
	FieldDate          = "date"
	FieldStartTime     = "start_time"
	FieldEndTime       = "end_time"
	FieldVehicleNumber = "vehicle_number"
	FieldTimeRange     = "time_range"
)

// ValidationError lists the booking form fields that keep a booking from being confirmed
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "incomplete booking: " + strings.Join(e.Fields, ", ")
}

// BookingBuilder assembles booking records from a spot and the booking form
type BookingBuilder struct {
	ids IDGenerator
	now func() time.Time
}

// NewBookingBuilder creates a builder using ids for booking identifiers
func NewBookingBuilder(ids IDGenerator) *BookingBuilder {
	return &BookingBuilder{ids: ids, now: time.Now}
}

// Build validates req against spot and returns the confirmed record.
// A nil spot, blank or malformed fields, dates before today, and windows with end <= start are rejected.
func (b *BookingBuilder) Build(spot *model.ParkingSpot, req model.BookingRequest) (*model.BookingRecord, error) {
	var missing []string
	now := b.now()

	if spot == nil {
		missing = append(missing, FieldSpot)
	}

	date := strings.TrimSpace(req.Date)
	day, err := time.ParseInLocation(model.DateLayout, date, now.Location())
	if err != nil || day.Before(startOfDay(now)) {
		missing = append(missing, FieldDate)
	}

	start, startErr := model.ParseClockTime(strings.TrimSpace(req.StartTime))
	if startErr != nil {
		missing = append(missing, FieldStartTime)
	}
	end, endErr := model.ParseClockTime(strings.TrimSpace(req.EndTime))
	if endErr != nil {
		missing = append(missing, FieldEndTime)
	}

	vehicle := strings.TrimSpace(req.VehicleNumber)
	if vehicle == "" {
		missing = append(missing, FieldVehicleNumber)
	}

	if len(missing) > 0 {
		return nil, &ValidationError{Fields: missing}
	}

	quote := ComputeCost(start, end, spot.Price)
	if !quote.Bookable() {
		return nil, &ValidationError{Fields: []string{FieldTimeRange}}
	}

	return &model.BookingRecord{
		BookingID:     b.ids.NewID(),
		SpotID:        spot.ID,
		SpotName:      spot.Name,
		Address:       spot.Address,
		Date:          date,
		StartTime:     start.String(),
		EndTime:       end.String(),
		VehicleNumber: vehicle,
		DurationHours: quote.DurationHours,
		TotalCost:     quote.TotalCost,
		CreatedAt:     now,
	}, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// BookingPublisher broadcasts confirmed bookings
type BookingPublisher interface {
	PublishBooking(ctx context.Context, record *model.BookingRecord) error
}

// BookingService handles quoting, confirming and listing bookings
type BookingService struct {
	catalog   repository.SpotCatalog
	store     repository.BookingStore
	builder   *BookingBuilder
	publisher BookingPublisher
}

// NewBookingService creates a new booking service. publisher may be nil.
func NewBookingService(
	catalog repository.SpotCatalog,
	store repository.BookingStore,
	builder *BookingBuilder,
	publisher BookingPublisher,
) *BookingService {
	return &BookingService{
		catalog:   catalog,
		store:     store,
		builder:   builder,
		publisher: publisher,
	}
}

// Quote prices a time window at a spot. A degenerate window is not an error.
func (s *BookingService) Quote(ctx context.Context, req *model.QuoteRequest) (*model.QuoteResponse, error) {
	spot, err := s.catalog.Get(ctx, req.SpotID)
	if err != nil {
		return nil, err
	}

	quote := QuoteWindow(req.StartTime, req.EndTime, spot.Price)
	return &model.QuoteResponse{
		Quote:      quote,
		SpotID:     spot.ID,
		HourlyRate: spot.Price,
		Bookable:   quote.Bookable(),
	}, nil
}

// Book confirms a booking, saves it and announces it
func (s *BookingService) Book(ctx context.Context, req model.BookingRequest) (*model.BookingRecord, error) {
	var spot *model.ParkingSpot
	if strings.TrimSpace(req.SpotID) != "" {
		found, err := s.catalog.Get(ctx, req.SpotID)
		if err != nil {
			return nil, err
		}
		spot = found
	}

	record, err := s.builder.Build(spot, req)
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}
	log.Printf("✅ Booking %s confirmed at %s for %s (%.2f MAD)", record.BookingID, record.SpotName, record.VehicleNumber, record.TotalCost)

	// Announce (non-blocking)
	if s.publisher != nil {
		go func(rec model.BookingRecord) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.publisher.PublishBooking(pubCtx, &rec); err != nil {
				log.Printf("⚠️  Failed to publish booking %s: %v", rec.BookingID, err)
			}
		}(*record)
	}

	return record, nil
}

// GetBooking retrieves a single booking by ID
func (s *BookingService) GetBooking(ctx context.Context, id string) (*model.BookingRecord, error) {
	return s.store.Get(ctx, id)
}

// ListBookings returns bookings newest first, optionally for one vehicle
func (s *BookingService) ListBookings(ctx context.Context, vehicle string) ([]model.BookingRecord, error) {
	return s.store.List(ctx, strings.TrimSpace(vehicle))
}

// IsValidationError reports whether err is a *ValidationError and returns it
func IsValidationError(err error) (*ValidationError, bool) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}
