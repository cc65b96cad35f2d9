package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"parksmart/internal/model"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrBookingNotFound is returned when a booking id is unknown
var ErrBookingNotFound = errors.New("booking not found")

// BookingStore persists confirmed bookings
type BookingStore interface {
	Save(ctx context.Context, record *model.BookingRecord) error
	Get(ctx context.Context, id string) (*model.BookingRecord, error)
	// List returns bookings newest first. An empty vehicle lists every booking.
	List(ctx context.Context, vehicle string) ([]model.BookingRecord, error)
}

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// MemoryBookingStore keeps bookings for the life of the process
type MemoryBookingStore struct {
	mu       sync.RWMutex
	bookings map[string]model.BookingRecord
}

// NewMemoryBookingStore creates an empty in-memory store
func NewMemoryBookingStore() *MemoryBookingStore {
	return &MemoryBookingStore{bookings: make(map[string]model.BookingRecord)}
}

func (s *MemoryBookingStore) Save(ctx context.Context, record *model.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bookings[record.BookingID]; exists {
		return fmt.Errorf("booking %s already exists", record.BookingID)
	}
	s.bookings[record.BookingID] = *record
	return nil
}

func (s *MemoryBookingStore) Get(ctx context.Context, id string) (*model.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.bookings[id]
	if !ok {
		return nil, ErrBookingNotFound
	}
	return &record, nil
}

func (s *MemoryBookingStore) List(ctx context.Context, vehicle string) ([]model.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.BookingRecord, 0, len(s.bookings))
	for _, r := range s.bookings {
		if vehicle != "" && !strings.EqualFold(r.VehicleNumber, vehicle) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].BookingID > out[j].BookingID
	})
	return out, nil
}

const bookingSchema = `
CREATE TABLE IF NOT EXISTS bookings (
	booking_id     TEXT PRIMARY KEY,
	spot_id        TEXT NOT NULL,
	spot_name      TEXT NOT NULL,
	address        TEXT NOT NULL,
	date           TEXT NOT NULL,
	start_time     TEXT NOT NULL,
	end_time       TEXT NOT NULL,
	vehicle_number TEXT NOT NULL,
	duration_hours DOUBLE PRECISION NOT NULL,
	total_cost     DOUBLE PRECISION NOT NULL,
	created_at     TIMESTAMP NOT NULL
)`

const bookingColumns = `
	booking_id, spot_id, spot_name, address, date, start_time, end_time,
	vehicle_number, duration_hours, total_cost, created_at`

// SQLBookingStore persists bookings through sqlx on PostgreSQL (lib/pq or pgx) or SQLite
type SQLBookingStore struct {
	db *sqlx.DB
}

// NewSQLBookingStore creates the bookings table if needed and returns the store
func NewSQLBookingStore(ctx context.Context, db *sqlx.DB) (*SQLBookingStore, error) {
	if _, err := db.ExecContext(ctx, bookingSchema); err != nil {
		return nil, fmt.Errorf("failed to create booking schema: %w", err)
	}
	return &SQLBookingStore{db: db}, nil
}

func (s *SQLBookingStore) Save(ctx context.Context, record *model.BookingRecord) error {
	query := s.db.Rebind(`
		INSERT INTO bookings (` + bookingColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		record.BookingID, record.SpotID, record.SpotName, record.Address, record.Date,
		record.StartTime, record.EndTime, record.VehicleNumber, record.DurationHours,
		record.TotalCost, record.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (s *SQLBookingStore) Get(ctx context.Context, id string) (*model.BookingRecord, error) {
	query := s.db.Rebind(`SELECT ` + bookingColumns + ` FROM bookings WHERE booking_id = ?`)

	var record model.BookingRecord
	if err := s.db.GetContext(ctx, &record, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &record, nil
}

func (s *SQLBookingStore) List(ctx context.Context, vehicle string) ([]model.BookingRecord, error) {
	whereClause := "1=1"
	args := []interface{}{}
	if vehicle != "" {
		whereClause = "UPPER(vehicle_number) = UPPER(?)"
		args = append(args, vehicle)
	}

	query := s.db.Rebind(fmt.Sprintf(`
		SELECT %s FROM bookings
		WHERE %s
		ORDER BY created_at DESC, booking_id DESC
	`, bookingColumns, whereClause))

	records := []model.BookingRecord{}
	if err := s.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return records, nil
}
