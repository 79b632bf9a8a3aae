// Package config loads observatory configuration from pluggable backends.
// YAML files cover the simple deployment; SQLite covers installations that
// manage configuration through tooling.
package config

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSites() ([]SiteData, error)
	GetStorageConfig() (*StorageData, error)
	GetControllers() ([]ControllerData, error)

	// Configuration management
	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Sites       []SiteData       `json:"sites" yaml:"sites"`
	Catalog     CatalogData      `json:"catalog,omitempty" yaml:"catalog,omitempty"`
	Evaluator   EvaluatorData    `json:"evaluator,omitempty" yaml:"evaluator,omitempty"`
	Storage     StorageData      `json:"storage,omitempty" yaml:"storage,omitempty"`
	Controllers []ControllerData `json:"controllers,omitempty" yaml:"controllers,omitempty"`
}

// SiteData holds one observing site: geodetic position plus the atmosphere
// parameters used for refraction correction.
type SiteData struct {
	Name         string  `json:"name" yaml:"name"`
	Latitude     float64 `json:"latitude" yaml:"latitude"`
	Longitude    float64 `json:"longitude" yaml:"longitude"`
	Elevation    float64 `json:"elevation,omitempty" yaml:"elevation,omitempty"`
	PressureMb   float64 `json:"pressure_mb,omitempty" yaml:"pressure-mb,omitempty"`
	TemperatureC float64 `json:"temperature_c,omitempty" yaml:"temperature-c,omitempty"`
}

// CatalogData points at the target name-resolution catalog.
type CatalogData struct {
	SQLitePath string `json:"sqlite_path,omitempty" yaml:"sqlite-path,omitempty"`
}

// EvaluatorData holds grid-evaluation defaults.
type EvaluatorData struct {
	Workers              int  `json:"workers,omitempty" yaml:"workers,omitempty"`
	Strict               bool `json:"strict,omitempty" yaml:"strict,omitempty"`
	SampleTimeoutSeconds int  `json:"sample_timeout_seconds,omitempty" yaml:"sample-timeout-seconds,omitempty"`
}

// StorageData holds the configuration for evaluation-archive backends
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
}

// TimescaleDBData holds TimescaleDB connection information
type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection-string"`
}

// ControllerData holds the configuration for service controllers
type ControllerData struct {
	Type       string          `json:"type,omitempty" yaml:"type,omitempty"`
	RESTServer *RESTServerData `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// RESTServerData holds the REST server configuration
type RESTServerData struct {
	ListenAddr string `json:"listen_addr,omitempty" yaml:"listen-addr,omitempty"`
	Port       int    `json:"port" yaml:"port"`
}
