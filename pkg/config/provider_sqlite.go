package config

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider creates a new SQLite configuration provider
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	sites, err := s.GetSites()
	if err != nil {
		return nil, fmt.Errorf("failed to load sites: %w", err)
	}
	config.Sites = sites

	if err := s.loadCatalog(config); err != nil {
		return nil, fmt.Errorf("failed to load catalog config: %w", err)
	}

	if err := s.loadEvaluator(config); err != nil {
		return nil, fmt.Errorf("failed to load evaluator config: %w", err)
	}

	storage, err := s.GetStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	controllers, err := s.GetControllers()
	if err != nil {
		return nil, fmt.Errorf("failed to load controllers: %w", err)
	}
	config.Controllers = controllers

	return config, nil
}

// GetSites returns the observing sites from the database
func (s *SQLiteProvider) GetSites() ([]SiteData, error) {
	query := `
		SELECT name, latitude, longitude,
		       COALESCE(elevation, 0), COALESCE(pressure_mb, 0), COALESCE(temperature_c, 0)
		FROM sites
		ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query sites: %w", err)
	}
	defer rows.Close()

	var sites []SiteData
	for rows.Next() {
		var site SiteData
		if err := rows.Scan(&site.Name, &site.Latitude, &site.Longitude,
			&site.Elevation, &site.PressureMb, &site.TemperatureC); err != nil {
			return nil, fmt.Errorf("failed to scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func (s *SQLiteProvider) loadCatalog(config *ConfigData) error {
	row := s.db.QueryRow(`SELECT COALESCE(sqlite_path, '') FROM catalog LIMIT 1`)
	if err := row.Scan(&config.Catalog.SQLitePath); err != nil && err != sql.ErrNoRows {
		return err
	}
	return nil
}

func (s *SQLiteProvider) loadEvaluator(config *ConfigData) error {
	row := s.db.QueryRow(`SELECT COALESCE(workers, 0), COALESCE(strict, 0), COALESCE(sample_timeout_seconds, 0) FROM evaluator LIMIT 1`)
	if err := row.Scan(&config.Evaluator.Workers, &config.Evaluator.Strict,
		&config.Evaluator.SampleTimeoutSeconds); err != nil && err != sql.ErrNoRows {
		return err
	}
	return nil
}

// GetStorageConfig returns the storage configuration from the database
func (s *SQLiteProvider) GetStorageConfig() (*StorageData, error) {
	storage := &StorageData{}

	row := s.db.QueryRow(`SELECT connection_string FROM storage_timescaledb LIMIT 1`)
	var connString string
	err := row.Scan(&connString)
	if err == sql.ErrNoRows {
		return storage, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	}
	storage.TimescaleDB = &TimescaleDBData{ConnectionString: connString}
	return storage, nil
}

// GetControllers returns the controller configurations from the database
func (s *SQLiteProvider) GetControllers() ([]ControllerData, error) {
	query := `SELECT type, COALESCE(listen_addr, ''), COALESCE(port, 0) FROM controllers ORDER BY type`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query controllers: %w", err)
	}
	defer rows.Close()

	var controllers []ControllerData
	for rows.Next() {
		var c ControllerData
		var listenAddr string
		var port int
		if err := rows.Scan(&c.Type, &listenAddr, &port); err != nil {
			return nil, fmt.Errorf("failed to scan controller: %w", err)
		}
		if c.Type == "rest" {
			c.RESTServer = &RESTServerData{ListenAddr: listenAddr, Port: port}
		}
		controllers = append(controllers, c)
	}
	return controllers, rows.Err()
}

// IsReadOnly returns false; SQLite configuration can be managed in place
func (s *SQLiteProvider) IsReadOnly() bool { return false }

// Close releases the underlying database handle
func (s *SQLiteProvider) Close() error {
	return s.db.Close()
}
