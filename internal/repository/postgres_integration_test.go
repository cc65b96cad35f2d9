//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"parksmart/internal/model"
)

// Run with: PARKSMART_TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository
func openTestCatalog(t *testing.T) *SQLCatalog {
	t.Helper()
	dsn := os.Getenv("PARKSMART_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("PARKSMART_TEST_DATABASE_URL is not set")
	}

	db, err := Connect("postgres", dsn, 2, 1)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.Exec(`DELETE FROM parking_spots WHERE id LIKE 'it-%'`)
		db.Close()
	})

	catalog := NewSQLCatalog(db)
	if err := catalog.InitSchema(context.Background()); err != nil {
		t.Fatalf("InitSchema() error = %v", err)
	}
	return catalog
}

func TestSQLCatalog_ImportSkipsBadSpots(t *testing.T) {
	ctx := context.Background()
	catalog := openTestCatalog(t)

	spots := []model.ParkingSpot{
		{ID: "it-1", Name: "Pole Parking", Lat: 80, Lng: 170, Price: 10, Available: true, TotalSpots: 4, AvailableSpots: 2, Features: model.JSONArray{"Covered"}},
		{ID: "it-2", Name: "bad\x00name", Lat: 80.1, Lng: 170, Price: 10},
		{ID: "it-3", Name: "Pole Annex", Lat: 80.5, Lng: 170, Price: 8},
	}

	success, errs := catalog.Import(ctx, spots)
	if success != 2 {
		t.Errorf("Import() success = %d, want 2", success)
	}
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "spot it-2:") {
		t.Errorf("Import() errors = %v, want one for it-2", errs)
	}

	// Rows after the failure were still committed
	got, err := catalog.Get(ctx, "it-3")
	if err != nil {
		t.Fatalf("Get(it-3) error = %v", err)
	}
	if got.Name != "Pole Annex" || got.Price != 8 {
		t.Errorf("Get(it-3) = %+v", got)
	}
	if _, err := catalog.Get(ctx, "it-2"); !errors.Is(err, ErrSpotNotFound) {
		t.Errorf("Get(it-2) error = %v, want ErrSpotNotFound", err)
	}

	// Upsert updates in place
	spots[0].Price = 12
	if success, errs := catalog.Import(ctx, spots[:1]); success != 1 || len(errs) != 0 {
		t.Fatalf("re-Import() = %d, %v", success, errs)
	}
	first, err := catalog.Get(ctx, "it-1")
	if err != nil {
		t.Fatalf("Get(it-1) error = %v", err)
	}
	if first.Price != 12 || len(first.Features) != 1 || first.Features[0] != "Covered" {
		t.Errorf("Get(it-1) = %+v", first)
	}
}

func TestSQLCatalog_Nearest(t *testing.T) {
	ctx := context.Background()
	catalog := openTestCatalog(t)

	spots := []model.ParkingSpot{
		{ID: "it-far", Name: "Far", Lat: 81, Lng: 170, Price: 5},
		{ID: "it-near", Name: "Near", Lat: 80.01, Lng: 170, Price: 5},
	}
	if success, errs := catalog.Import(ctx, spots); success != 2 {
		t.Fatalf("Import() = %d, %v", success, errs)
	}

	got, err := catalog.Nearest(ctx, 80, 170, 2)
	if err != nil {
		t.Fatalf("Nearest() error = %v", err)
	}
	if len(got) != 2 || got[0].ID != "it-near" || got[1].ID != "it-far" {
		ids := make([]string, 0, len(got))
		for _, s := range got {
			ids = append(ids, s.ID)
		}
		t.Errorf("Nearest() = %v, want [it-near it-far]", ids)
	}
}
