package config_test

import (
	"context"
	"os"
	"testing"

	"github.com/austinw/envelope/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendMemory)
				convey.So(cfg.MarketSlug, convey.ShouldEqual, "oscars-2026-best-picture-winner")
				convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 2)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ENVELOPE_ADDR", ":9090")
			_ = os.Setenv("ENVELOPE_STORE_BACKEND", "sqlite")
			_ = os.Setenv("ENVELOPE_SQLITE_PATH", "/tmp/contest.db")
			_ = os.Setenv("ENVELOPE_MARKET_SLUG", "oscars-2027-best-picture-winner")
			_ = os.Setenv("ENVELOPE_SYNC_INTERVAL_HOURS", "6")
			_ = os.Setenv("ENVELOPE_ADMIN_TOKEN", "hunter2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars should override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "/tmp/contest.db")
				convey.So(cfg.MarketSlug, convey.ShouldEqual, "oscars-2027-best-picture-winner")
				convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 6)
				convey.So(cfg.AdminToken, convey.ShouldEqual, "hunter2")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			yamlContent := `
addr: ":7070"
store_backend: "sqlite"
sqlite_path: "pool.db"
sync_interval_hours: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENVELOPE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values apply and missing fields keep defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendSQLite)
				convey.So(cfg.SQLitePath, convey.ShouldEqual, "pool.db")
				convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 12)
				convey.So(cfg.MarketSlug, convey.ShouldEqual, "oscars-2026-best-picture-winner")
			})
		})

		convey.Convey("When both file and env vars are set", func() {
			yamlContent := `
addr: ":7070"
sync_interval_hours: 12
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENVELOPE_CONFIG", tmpFile)
			_ = os.Setenv("ENVELOPE_ADDR", ":9090")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env vars win over file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 12)
			})
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("ENVELOPE_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails with the load kind", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the config file is malformed", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("ENVELOPE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When addr is empty", func() {
			_ = os.Setenv("ENVELOPE_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the store backend is unknown", func() {
			_ = os.Setenv("ENVELOPE_STORE_BACKEND", "postgres")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sync interval is negative", func() {
			_ = os.Setenv("ENVELOPE_SYNC_INTERVAL_HOURS", "-1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects the config", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the sync interval is zero", func() {
			_ = os.Setenv("ENVELOPE_SYNC_INTERVAL_HOURS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then background sync is simply disabled", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 0)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"ENVELOPE_CONFIG",
		"ENVELOPE_ADDR",
		"ENVELOPE_LOG_LEVEL",
		"ENVELOPE_STORE_BACKEND",
		"ENVELOPE_SQLITE_PATH",
		"ENVELOPE_ADMIN_TOKEN",
		"ENVELOPE_MARKET_SLUG",
		"ENVELOPE_SYNC_INTERVAL_HOURS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "envelope-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}
	if err := tmpFile.Close(); err != nil {
		panic(err)
	}
	return tmpFile.Name()
}
