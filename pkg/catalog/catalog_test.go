package catalog

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clearskies/obsplan/pkg/ephemeris"
)

func TestStaticResolver(t *testing.T) {
	r := BrightStars()
	ctx := context.Background()

	tests := []struct {
		name    string
		lookup  string
		wantRA  float64
		wantErr bool
	}{
		{"exact name", "vega", 279.2347, false},
		{"case insensitive", "Vega", 279.2347, false},
		{"upper case", "SIRIUS", 101.2872, false},
		{"unknown name", "Kessel", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord, err := r.Resolve(ctx, tt.lookup)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				var notFound *NameNotFoundError
				if !errors.As(err, &notFound) {
					t.Errorf("expected *NameNotFoundError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			if coord.RADeg != tt.wantRA {
				t.Errorf("RA = %v, expected %v", coord.RADeg, tt.wantRA)
			}
		})
	}
}

func TestResolveTarget(t *testing.T) {
	r := NewStaticResolver(map[string]ephemeris.Equatorial{
		"hd 189733": {RADeg: 300.1821, DecDeg: 22.7108, DistanceKm: 6.1e14},
	})

	target, err := ResolveTarget(context.Background(), r, "HD 189733")
	if err != nil {
		t.Fatalf("ResolveTarget returned error: %v", err)
	}
	if target.Name != "HD 189733" {
		t.Errorf("Name = %q, expected original display name", target.Name)
	}
	if target.Coord.DecDeg != 22.7108 {
		t.Errorf("Dec = %v, expected 22.7108", target.Coord.DecDeg)
	}

	if _, err := ResolveTarget(context.Background(), r, "nonexistent"); err == nil {
		t.Error("expected error for unknown name")
	}
}

func TestSQLiteResolver(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "catalog.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test catalog: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE targets (
		name        TEXT PRIMARY KEY COLLATE NOCASE,
		ra_deg      REAL NOT NULL,
		dec_deg     REAL NOT NULL,
		distance_km REAL
	)`)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
	_, err = db.Exec(`INSERT INTO targets (name, ra_deg, dec_deg, distance_km) VALUES
		('Vega', 279.2347, 38.7837, NULL),
		('M42', 83.8221, -5.3911, 1.27e16)`)
	if err != nil {
		t.Fatalf("failed to seed catalog: %v", err)
	}
	db.Close()

	r, err := NewSQLiteResolver(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteResolver returned error: %v", err)
	}
	defer r.Close()

	ctx := context.Background()

	coord, err := r.Resolve(ctx, "vega")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if coord.DecDeg != 38.7837 {
		t.Errorf("Dec = %v, expected 38.7837", coord.DecDeg)
	}
	if coord.DistanceKm != 0 {
		t.Errorf("DistanceKm = %v, expected 0 for NULL distance", coord.DistanceKm)
	}

	coord, err = r.Resolve(ctx, "M42")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if coord.DistanceKm != 1.27e16 {
		t.Errorf("DistanceKm = %v, expected 1.27e16", coord.DistanceKm)
	}

	_, err = r.Resolve(ctx, "NGC 9999")
	var notFound *NameNotFoundError
	if !errors.As(err, &notFound) {
		t.Errorf("expected *NameNotFoundError, got %v", err)
	}
}
