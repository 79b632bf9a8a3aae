package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/clearskies/obsplan/pkg/config"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE sites (
	name          TEXT PRIMARY KEY,
	latitude      REAL NOT NULL,
	longitude     REAL NOT NULL,
	elevation     REAL,
	pressure_mb   REAL,
	temperature_c REAL
);

CREATE TABLE catalog (
	sqlite_path TEXT
);

CREATE TABLE evaluator (
	workers                INTEGER,
	strict                 INTEGER,
	sample_timeout_seconds INTEGER
);

CREATE TABLE storage_timescaledb (
	connection_string TEXT NOT NULL
);

CREATE TABLE controllers (
	type        TEXT NOT NULL,
	listen_addr TEXT,
	port        INTEGER
);
`

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file (required)")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite database file (required)")
		force      = flag.Bool("force", false, "Overwrite existing SQLite database")
		dryRun     = flag.Bool("dry-run", false, "Show what would be done without executing")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	if _, err := os.Stat(*yamlFile); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: YAML file does not exist: %s\n", *yamlFile)
		os.Exit(1)
	}

	if _, err := os.Stat(*sqliteFile); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: SQLite file already exists: %s\n", *sqliteFile)
		fmt.Fprintf(os.Stderr, "Use -force to overwrite or choose a different filename\n")
		os.Exit(1)
	}

	fmt.Printf("Converting YAML configuration to SQLite...\n")
	fmt.Printf("  Source: %s\n", *yamlFile)
	fmt.Printf("  Target: %s\n", *sqliteFile)

	fmt.Printf("Loading YAML configuration...\n")
	yamlProvider := config.NewYAMLProvider(*yamlFile)
	configData, err := yamlProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML configuration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  Loaded %d sites, %d controllers\n", len(configData.Sites), len(configData.Controllers))

	if *dryRun {
		printConfigSummary(configData)
		fmt.Println("DRY RUN complete - no database created")
		return
	}

	if *force {
		if err := os.Remove(*sqliteFile); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error removing existing SQLite file: %v\n", err)
			os.Exit(1)
		}
	}

	fmt.Printf("Creating SQLite database...\n")
	if err := writeSQLiteConfig(*sqliteFile, configData); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing SQLite database: %v\n", err)
		os.Exit(1)
	}

	// Read the database back through the provider to prove the round trip.
	fmt.Printf("Verifying converted configuration...\n")
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening converted database: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	converted, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error verifying converted configuration: %v\n", err)
		os.Exit(1)
	}
	if len(converted.Sites) != len(configData.Sites) {
		fmt.Fprintf(os.Stderr, "Error: converted database has %d sites, expected %d\n",
			len(converted.Sites), len(configData.Sites))
		os.Exit(1)
	}

	fmt.Printf("Conversion complete: %s\n", *sqliteFile)
}

func writeSQLiteConfig(path string, cfg *config.ConfigData) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, site := range cfg.Sites {
		if _, err := tx.Exec(
			`INSERT INTO sites (name, latitude, longitude, elevation, pressure_mb, temperature_c) VALUES (?, ?, ?, ?, ?, ?)`,
			site.Name, site.Latitude, site.Longitude, site.Elevation, site.PressureMb, site.TemperatureC); err != nil {
			return fmt.Errorf("failed to insert site %q: %w", site.Name, err)
		}
	}

	if cfg.Catalog.SQLitePath != "" {
		if _, err := tx.Exec(`INSERT INTO catalog (sqlite_path) VALUES (?)`, cfg.Catalog.SQLitePath); err != nil {
			return fmt.Errorf("failed to insert catalog config: %w", err)
		}
	}

	if _, err := tx.Exec(
		`INSERT INTO evaluator (workers, strict, sample_timeout_seconds) VALUES (?, ?, ?)`,
		cfg.Evaluator.Workers, cfg.Evaluator.Strict, cfg.Evaluator.SampleTimeoutSeconds); err != nil {
		return fmt.Errorf("failed to insert evaluator config: %w", err)
	}

	if cfg.Storage.TimescaleDB != nil {
		if _, err := tx.Exec(
			`INSERT INTO storage_timescaledb (connection_string) VALUES (?)`,
			cfg.Storage.TimescaleDB.ConnectionString); err != nil {
			return fmt.Errorf("failed to insert storage config: %w", err)
		}
	}

	for _, c := range cfg.Controllers {
		var listenAddr string
		var port int
		if c.RESTServer != nil {
			listenAddr = c.RESTServer.ListenAddr
			port = c.RESTServer.Port
		}
		if _, err := tx.Exec(
			`INSERT INTO controllers (type, listen_addr, port) VALUES (?, ?, ?)`,
			c.Type, listenAddr, port); err != nil {
			return fmt.Errorf("failed to insert controller %q: %w", c.Type, err)
		}
	}

	return tx.Commit()
}

func printConfigSummary(cfg *config.ConfigData) {
	fmt.Println("Configuration summary:")
	for _, site := range cfg.Sites {
		fmt.Printf("  Site: %s (%.4f, %.4f)\n", site.Name, site.Latitude, site.Longitude)
	}
	if cfg.Catalog.SQLitePath != "" {
		fmt.Printf("  Catalog: %s\n", cfg.Catalog.SQLitePath)
	}
	fmt.Printf("  Evaluator: workers=%d strict=%v timeout=%ds\n",
		cfg.Evaluator.Workers, cfg.Evaluator.Strict, cfg.Evaluator.SampleTimeoutSeconds)
	if cfg.Storage.TimescaleDB != nil {
		fmt.Println("  Storage: TimescaleDB archive configured")
	}
	for _, c := range cfg.Controllers {
		if c.RESTServer != nil {
			fmt.Printf("  Controller: %s (%s:%d)\n", c.Type, c.RESTServer.ListenAddr, c.RESTServer.Port)
		} else {
			fmt.Printf("  Controller: %s\n", c.Type)
		}
	}
}
