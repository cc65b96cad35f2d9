package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"parksmart/internal/model"
)

func TestCasablancaSpots_Consistent(t *testing.T) {
	spots := CasablancaSpots()
	if len(spots) != 6 {
		t.Fatalf("got %d seed spots, want 6", len(spots))
	}
	for _, s := range spots {
		if defects := s.Validate(); len(defects) > 0 {
			t.Errorf("seed spot %s has defects: %v", s.ID, defects)
		}
	}
}

func TestStaticCatalog(t *testing.T) {
	ctx := context.Background()
	catalog := NewStaticCatalog(CasablancaSpots())

	if catalog.Len() != 6 {
		t.Errorf("Len() = %d, want 6", catalog.Len())
	}

	spot, err := catalog.Get(ctx, "4")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if spot.Name != "Twin Center Parking" {
		t.Errorf("Get(4) = %s", spot.Name)
	}

	// Callers get copies
	spot.Name = "changed"
	all, _ := catalog.All(ctx)
	all[0].Price = 999
	again, _ := catalog.Get(ctx, "4")
	first, _ := catalog.Get(ctx, "1")
	if again.Name != "Twin Center Parking" || first.Price != 25 {
		t.Error("catalog was mutated through a returned value")
	}

	if _, err := catalog.Get(ctx, "missing"); !errors.Is(err, ErrSpotNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrSpotNotFound", err)
	}
}

func TestStaticCatalog_DuplicateKeepsFirst(t *testing.T) {
	catalog := NewStaticCatalog([]model.ParkingSpot{
		{ID: "a", Name: "first"},
		{ID: "a", Name: "second"},
	})

	spot, err := catalog.Get(context.Background(), "a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if spot.Name != "first" {
		t.Errorf("Get(a) = %s, want first", spot.Name)
	}
}

func TestLoadCatalogFile(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "spots.json")
	data := `[{"id":"x","name":"Gare Parking","price":10,"available":true,"total_spots":5,"available_spots":2,"features":["Covered"]}]`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("LoadCatalogFile() error = %v", err)
	}
	spot, err := catalog.Get(context.Background(), "x")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if spot.Name != "Gare Parking" || len(spot.Features) != 1 || spot.Features[0] != "Covered" {
		t.Errorf("loaded spot = %+v", spot)
	}

	if _, err := LoadCatalogFile(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("Expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalogFile(bad); err == nil {
		t.Error("Expected an error for malformed JSON")
	}
}
