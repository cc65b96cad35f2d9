package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"parksmart/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

const spotColumns = `
	id, name, address, lat, lng, price, rating, distance, available,
	total_spots, available_spots, predicted_availability, features,
	has_ev_charging, has_handicap_access, is_favorite`

const spotSchema = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS parking_spots (
	seq                    BIGSERIAL,
	id                     TEXT PRIMARY KEY,
	name                   TEXT NOT NULL,
	address                TEXT NOT NULL DEFAULT '',
	lat                    DOUBLE PRECISION NOT NULL,
	lng                    DOUBLE PRECISION NOT NULL,
	price                  DOUBLE PRECISION NOT NULL,
	rating                 DOUBLE PRECISION NOT NULL DEFAULT 0,
	distance               DOUBLE PRECISION NOT NULL DEFAULT 0,
	available              BOOLEAN NOT NULL DEFAULT FALSE,
	total_spots            INTEGER NOT NULL DEFAULT 0,
	available_spots        INTEGER NOT NULL DEFAULT 0,
	predicted_availability DOUBLE PRECISION NOT NULL DEFAULT 0,
	features               JSONB NOT NULL DEFAULT '[]',
	has_ev_charging        BOOLEAN NOT NULL DEFAULT FALSE,
	has_handicap_access    BOOLEAN NOT NULL DEFAULT FALSE,
	is_favorite            BOOLEAN NOT NULL DEFAULT FALSE,
	position               vector(2),
	updated_at             TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS parking_spots_position_idx ON parking_spots USING hnsw (position vector_l2_ops);
`

// Connect opens a sqlx database for driver ("postgres", "pgx" or "sqlite") and checks it
func Connect(driver, dsn string, maxConn, maxIdleConn int) (*sqlx.DB, error) {
	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute) // Shorter lifetime to avoid stale connections
	db.SetConnMaxIdleTime(2 * time.Minute) // Close idle connections sooner

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// SQLCatalog reads parking spots from PostgreSQL, with positions in a pgvector column
type SQLCatalog struct {
	db *sqlx.DB
}

// NewSQLCatalog creates a catalog over an open PostgreSQL connection
func NewSQLCatalog(db *sqlx.DB) *SQLCatalog {
	return &SQLCatalog{db: db}
}

// InitSchema creates the spot table and its position index
func (r *SQLCatalog) InitSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, spotSchema); err != nil {
		return fmt.Errorf("failed to create spot schema: %w", err)
	}
	return nil
}

// All returns every spot in insertion order
func (r *SQLCatalog) All(ctx context.Context) ([]model.ParkingSpot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_spots ORDER BY seq`, spotColumns)

	var spots []model.ParkingSpot
	if err := r.db.SelectContext(ctx, &spots, query); err != nil {
		return nil, fmt.Errorf("failed to fetch spots: %w", err)
	}
	return spots, nil
}

// Get retrieves a single spot by its ID
func (r *SQLCatalog) Get(ctx context.Context, id string) (*model.ParkingSpot, error) {
	query := fmt.Sprintf(`SELECT %s FROM parking_spots WHERE id = $1`, spotColumns)

	var spot model.ParkingSpot
	err := r.db.GetContext(ctx, &spot, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, fmt.Errorf("failed to get spot: %w", err)
	}
	return &spot, nil
}

// Nearest returns up to limit spots ordered by position distance from (lat, lng)
func (r *SQLCatalog) Nearest(ctx context.Context, lat, lng float64, limit int) ([]model.ParkingSpot, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM parking_spots
		WHERE position IS NOT NULL
		ORDER BY position <-> $1
		LIMIT $2
	`, spotColumns)

	origin := pgvector.NewVector([]float32{float32(lat), float32(lng)})

	var spots []model.ParkingSpot
	if err := r.db.SelectContext(ctx, &spots, query, origin, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch nearest spots: %w", err)
	}
	return spots, nil
}

// Import upserts spots in a single transaction and reports per-spot failures
func (r *SQLCatalog) Import(ctx context.Context, spots []model.ParkingSpot) (int, []string) {
	success := 0
	var errs []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errs
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO parking_spots (
			id, name, address, lat, lng, price, rating, distance, available,
			total_spots, available_spots, predicted_availability, features,
			has_ev_charging, has_handicap_access, is_favorite, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			price = EXCLUDED.price,
			rating = EXCLUDED.rating,
			distance = EXCLUDED.distance,
			available = EXCLUDED.available,
			total_spots = EXCLUDED.total_spots,
			available_spots = EXCLUDED.available_spots,
			predicted_availability = EXCLUDED.predicted_availability,
			features = EXCLUDED.features,
			has_ev_charging = EXCLUDED.has_ev_charging,
			has_handicap_access = EXCLUDED.has_handicap_access,
			is_favorite = EXCLUDED.is_favorite,
			position = EXCLUDED.position,
			updated_at = NOW()
	`)
	if err != nil {
		errs = append(errs, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errs
	}
	defer stmt.Close()

	for _, s := range spots {
		features := s.Features
		if features == nil {
			features = model.JSONArray{}
		}
		position := pgvector.NewVector([]float32{float32(s.Lat), float32(s.Lng)})

		// A failed statement aborts the whole transaction unless it is fenced by a savepoint
		if _, err := tx.ExecContext(ctx, "SAVEPOINT spot_import"); err != nil {
			errs = append(errs, fmt.Sprintf("spot %s: %v", s.ID, err))
			continue
		}
		_, err := stmt.ExecContext(ctx,
			s.ID, s.Name, s.Address, s.Lat, s.Lng, s.Price, s.Rating, s.Distance, s.Available,
			s.TotalSpots, s.AvailableSpots, s.PredictedAvailability, features,
			s.HasEVCharging, s.HasHandicapAccess, s.IsFavorite, position,
		)
		if err != nil {
			errs = append(errs, fmt.Sprintf("spot %s: %v", s.ID, err))
			_, _ = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT spot_import")
			continue
		}
		_, _ = tx.ExecContext(ctx, "RELEASE SAVEPOINT spot_import")
		success++
	}

	if err := tx.Commit(); err != nil {
		errs = append(errs, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errs
	}

	return success, errs
}
