// Package config defines service configuration structures and loading hooks.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// StoreBackend selects the pick store: "memory" or "sqlite".
	StoreBackend string `koanf:"store_backend"`

	// SQLitePath is the database file used when StoreBackend is "sqlite".
	SQLitePath string `koanf:"sqlite_path"`

	// AdminToken guards mutating admin routes via the X-Admin-Token header.
	// Empty disables the check.
	AdminToken string `koanf:"admin_token"`

	// MarketSlug identifies the prediction-market event to pull odds from.
	MarketSlug string `koanf:"market_slug"`

	// GammaBaseURL is the market data API endpoint.
	GammaBaseURL string `koanf:"gamma_base_url"`

	// SyncIntervalHours sets the background odds refresh cadence.
	// Zero disables background sync; manual sync stays available.
	SyncIntervalHours int `koanf:"sync_interval_hours"`
}

// Backend names accepted by StoreBackend.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		Addr:              ":8080",
		StoreBackend:      BackendMemory,
		SQLitePath:        "envelope.db",
		MarketSlug:        "oscars-2026-best-picture-winner",
		GammaBaseURL:      "https://gamma-api.polymarket.com",
		SyncIntervalHours: 2,
	}
}
