package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/clearskies/obsplan/pkg/ephemeris"
	_ "modernc.org/sqlite"
)

// SQLiteResolver resolves target names against a local SQLite star catalog.
//
// Expected schema:
//
//	CREATE TABLE targets (
//	    name        TEXT PRIMARY KEY COLLATE NOCASE,
//	    ra_deg      REAL NOT NULL,
//	    dec_deg     REAL NOT NULL,
//	    distance_km REAL
//	);
type SQLiteResolver struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteResolver opens the catalog database and verifies the connection.
func NewSQLiteResolver(dbPath string) (*SQLiteResolver, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping catalog database: %w", err)
	}

	return &SQLiteResolver{db: db, dbPath: dbPath}, nil
}

// Resolve looks the name up in the targets table.
func (s *SQLiteResolver) Resolve(ctx context.Context, name string) (ephemeris.Equatorial, error) {
	query := `SELECT ra_deg, dec_deg, COALESCE(distance_km, 0) FROM targets WHERE name = ? LIMIT 1`

	var coord ephemeris.Equatorial
	row := s.db.QueryRowContext(ctx, query, strings.TrimSpace(name))
	if err := row.Scan(&coord.RADeg, &coord.DecDeg, &coord.DistanceKm); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ephemeris.Equatorial{}, &NameNotFoundError{Name: name}
		}
		return ephemeris.Equatorial{}, fmt.Errorf("catalog query failed for %q: %w", name, err)
	}
	return coord, nil
}

// Close releases the underlying database handle.
func (s *SQLiteResolver) Close() error {
	return s.db.Close()
}
