package service

import (
	"math/rand"
	"reflect"
	"testing"

	"parksmart/internal/model"
	"parksmart/internal/repository"
)

func TestFilterSpots_Scenario(t *testing.T) {
	spot := model.ParkingSpot{ID: "x", Price: 15, Distance: 0.8, Rating: 4.3, Available: true}
	cfg := model.FilterConfiguration{
		PriceMin:      float64Ptr(0),
		PriceMax:      float64Ptr(20),
		MaxDistance:   float64Ptr(5),
		MinRating:     float64Ptr(4),
		AvailableOnly: true,
	}

	got := FilterSpots([]model.ParkingSpot{spot}, cfg)
	if len(got) != 1 || got[0].ID != "x" {
		t.Fatalf("Expected spot to be included, got %v", got)
	}
}

func TestFilterSpots_Catalog(t *testing.T) {
	catalog := repository.CasablancaSpots()

	tests := []struct {
		name string
		cfg  model.FilterConfiguration
		want []string
	}{
		{
			name: "No constraints",
			cfg:  model.FilterConfiguration{},
			want: []string{"1", "2", "3", "4", "5", "6"},
		},
		{
			name: "Budget with rating and availability",
			cfg: model.FilterConfiguration{
				PriceMin:      float64Ptr(0),
				PriceMax:      float64Ptr(20),
				MaxDistance:   float64Ptr(5),
				MinRating:     float64Ptr(4),
				AvailableOnly: true,
			},
			want: []string{"2", "5"},
		},
		{
			name: "EV charging",
			cfg:  model.FilterConfiguration{EVChargingOnly: true},
			want: []string{"1", "3", "4"},
		},
		{
			name: "Handicap access",
			cfg:  model.FilterConfiguration{HandicapAccessOnly: true},
			want: []string{"1", "2", "4", "5", "6"},
		},
		{
			name: "Max distance",
			cfg:  model.FilterConfiguration{MaxDistance: float64Ptr(0.5)},
			want: []string{"1", "3", "6"},
		},
		{
			name: "Search by address is case insensitive",
			cfg:  model.FilterConfiguration{Search: "MAARIF"},
			want: []string{"3", "4"},
		},
		{
			name: "Search by name",
			cfg:  model.FilterConfiguration{Search: "corniche"},
			want: []string{"5"},
		},
		{
			name: "Search keeps a leading space",
			cfg:  model.FilterConfiguration{Search: " maarif"},
			want: []string{"3", "4"},
		},
		{
			name: "Search keeps a trailing space",
			cfg:  model.FilterConfiguration{Search: "maarif "},
			want: []string{},
		},
		{
			name: "Inverted price range matches nothing",
			cfg:  model.FilterConfiguration{PriceMin: float64Ptr(30), PriceMax: float64Ptr(10)},
			want: []string{},
		},
		{
			name: "Feature tag",
			cfg:  model.FilterConfiguration{Features: []string{"security"}},
			want: []string{"1", "2"},
		},
		{
			name: "Feature alias on amenity flag",
			cfg:  model.FilterConfiguration{Features: []string{"ev", "valet"}},
			want: []string{"4"},
		},
		{
			name: "Every predicate combined",
			cfg: model.FilterConfiguration{
				PriceMax:           float64Ptr(25),
				MinRating:          float64Ptr(4.5),
				AvailableOnly:      true,
				EVChargingOnly:     true,
				HandicapAccessOnly: true,
				Search:             "ain diab",
			},
			want: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(FilterSpots(catalog, tt.cfg))
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterSpots() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterSpots_DoesNotModifyInput(t *testing.T) {
	catalog := repository.CasablancaSpots()
	before := repository.CasablancaSpots()

	FilterSpots(catalog, model.FilterConfiguration{AvailableOnly: true, Search: "x"})

	if !reflect.DeepEqual(catalog, before) {
		t.Error("Expected input catalog to be unchanged")
	}
}

// Property checks over random catalogs and configurations
func TestFilterSpots_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		catalog := randomCatalog(rng, rng.Intn(12))
		cfg := randomConfig(rng)

		out := FilterSpots(catalog, cfg)

		// Order preservation: out is a subsequence of catalog
		if !isSubsequence(ids(out), ids(catalog)) {
			t.Fatalf("iteration %d: %v is not a subsequence of %v", i, ids(out), ids(catalog))
		}

		// Idempotence
		again := FilterSpots(out, cfg)
		if !reflect.DeepEqual(ids(again), ids(out)) {
			t.Fatalf("iteration %d: filtering twice changed the result", i)
		}

		// Every returned spot passes the filter on its own
		for _, s := range out {
			if len(FilterSpots([]model.ParkingSpot{s}, cfg)) != 1 {
				t.Fatalf("iteration %d: spot %s returned but does not match", i, s.ID)
			}
		}
	}
}

// Tightening any single constraint never adds spots
func TestFilterSpots_Monotonic(t *testing.T) {
	tests := []struct {
		name    string
		tighten func(rng *rand.Rand, cfg *model.FilterConfiguration)
	}{
		{
			name: "Lower max price",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				if cfg.PriceMax == nil {
					cfg.PriceMax = float64Ptr(float64(rng.Intn(40)))
					return
				}
				cfg.PriceMax = float64Ptr(*cfg.PriceMax - float64(rng.Intn(10)+1))
			},
		},
		{
			name: "Raise min price",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				if cfg.PriceMin == nil {
					cfg.PriceMin = float64Ptr(float64(rng.Intn(40)))
					return
				}
				cfg.PriceMin = float64Ptr(*cfg.PriceMin + float64(rng.Intn(10)+1))
			},
		},
		{
			name: "Shrink max distance",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				if cfg.MaxDistance == nil {
					cfg.MaxDistance = float64Ptr(float64(rng.Intn(30)) / 10)
					return
				}
				cfg.MaxDistance = float64Ptr(*cfg.MaxDistance / 2)
			},
		},
		{
			name: "Raise min rating",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				if cfg.MinRating == nil {
					cfg.MinRating = float64Ptr(rng.Float64() * 5)
					return
				}
				cfg.MinRating = float64Ptr(*cfg.MinRating + 0.5)
			},
		},
		{
			name:    "Available only",
			tighten: func(_ *rand.Rand, cfg *model.FilterConfiguration) { cfg.AvailableOnly = true },
		},
		{
			name:    "EV charging only",
			tighten: func(_ *rand.Rand, cfg *model.FilterConfiguration) { cfg.EVChargingOnly = true },
		},
		{
			name:    "Handicap access only",
			tighten: func(_ *rand.Rand, cfg *model.FilterConfiguration) { cfg.HandicapAccessOnly = true },
		},
		{
			name: "Longer search term",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				cfg.Search += []string{"a", "r", "spot ", "x"}[rng.Intn(4)]
			},
		},
		{
			name: "Extra feature",
			tighten: func(rng *rand.Rand, cfg *model.FilterConfiguration) {
				extra := []string{"covered", "valet", "24h"}[rng.Intn(3)]
				cfg.Features = append(append([]string(nil), cfg.Features...), extra)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := rand.New(rand.NewSource(7))
			for i := 0; i < 300; i++ {
				catalog := randomCatalog(rng, rng.Intn(12))
				cfg := randomConfig(rng)
				out := FilterSpots(catalog, cfg)

				tighter := cfg
				tt.tighten(rng, &tighter)
				narrowed := FilterSpots(catalog, tighter)

				if len(narrowed) > len(out) || !isSubsequence(ids(narrowed), ids(out)) {
					t.Fatalf("iteration %d: tighter config returned %v, not within %v", i, ids(narrowed), ids(out))
				}
			}
		})
	}
}

func randomCatalog(rng *rand.Rand, n int) []model.ParkingSpot {
	features := []string{"Covered", "Security", "Valet", "Budget", "24/7 Access"}
	spots := make([]model.ParkingSpot, n)
	for i := range spots {
		total := rng.Intn(500)
		available := 0
		if total > 0 {
			available = rng.Intn(total + 1)
		}
		spots[i] = model.ParkingSpot{
			ID:                    string(rune('a' + i)),
			Name:                  "Spot " + string(rune('A'+i)),
			Address:               []string{"Maarif", "Ain Diab", "Centre Ville"}[rng.Intn(3)],
			Price:                 float64(rng.Intn(40)),
			Rating:                float64(rng.Intn(51)) / 10,
			Distance:              float64(rng.Intn(30)) / 10,
			Available:             available > 0,
			TotalSpots:            total,
			AvailableSpots:        available,
			PredictedAvailability: float64(rng.Intn(101)),
			Features:              model.JSONArray{features[rng.Intn(len(features))]},
			HasEVCharging:         rng.Intn(2) == 0,
			HasHandicapAccess:     rng.Intn(2) == 0,
		}
	}
	return spots
}

func randomConfig(rng *rand.Rand) model.FilterConfiguration {
	var cfg model.FilterConfiguration
	if rng.Intn(2) == 0 {
		cfg.PriceMin = float64Ptr(float64(rng.Intn(20)))
	}
	if rng.Intn(2) == 0 {
		cfg.PriceMax = float64Ptr(float64(rng.Intn(40)))
	}
	if rng.Intn(2) == 0 {
		cfg.MaxDistance = float64Ptr(float64(rng.Intn(30)) / 10)
	}
	if rng.Intn(2) == 0 {
		cfg.MinRating = float64Ptr(float64(rng.Intn(51)) / 10)
	}
	cfg.AvailableOnly = rng.Intn(3) == 0
	cfg.EVChargingOnly = rng.Intn(3) == 0
	cfg.HandicapAccessOnly = rng.Intn(3) == 0
	if rng.Intn(3) == 0 {
		cfg.Search = []string{"maarif", "spot", "diab", "zzz"}[rng.Intn(4)]
	}
	if rng.Intn(4) == 0 {
		cfg.Features = []string{[]string{"covered", "secur", "24h"}[rng.Intn(3)]}
	}
	return cfg
}

func isSubsequence(sub, seq []string) bool {
	j := 0
	for _, s := range seq {
		if j < len(sub) && sub[j] == s {
			j++
		}
	}
	return j == len(sub)
}

func ids(spots []model.ParkingSpot) []string {
	out := make([]string, 0, len(spots))
	for _, s := range spots {
		out = append(out, s.ID)
	}
	return out
}

// Helper functions
func float64Ptr(v float64) *float64 {
	return &v
}
