package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ENVELOPE_CONFIG is set
//  3. env (prefix ENVELOPE_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ENVELOPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ENVELOPE_ADDR, ENVELOPE_MARKET_SLUG, ...
	// Map env keys like ENVELOPE_MARKET_SLUG -> market_slug (flat keys),
	// preserving underscores to match koanf tags on the struct.
	envProvider := env.Provider("ENVELOPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "envelope_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch cfg.StoreBackend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("%w: unknown store backend %q", ErrInvalidConfig, cfg.StoreBackend)
	}
	if cfg.StoreBackend == BackendSQLite && cfg.SQLitePath == "" {
		return fmt.Errorf("%w: sqlite_path must not be empty", ErrInvalidConfig)
	}
	if cfg.MarketSlug == "" {
		return fmt.Errorf("%w: market_slug must not be empty", ErrInvalidConfig)
	}
	if cfg.SyncIntervalHours < 0 {
		return fmt.Errorf("%w: sync_interval_hours must not be negative", ErrInvalidConfig)
	}
	return nil
}
