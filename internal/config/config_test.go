package config_test

import (
	"testing"

	"github.com/austinw/envelope/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.StoreBackend, convey.ShouldEqual, config.BackendMemory)
			convey.So(cfg.SQLitePath, convey.ShouldEqual, "envelope.db")
			convey.So(cfg.MarketSlug, convey.ShouldEqual, "oscars-2026-best-picture-winner")
			convey.So(cfg.GammaBaseURL, convey.ShouldEqual, "https://gamma-api.polymarket.com")
			convey.So(cfg.SyncIntervalHours, convey.ShouldEqual, 2)
			convey.So(cfg.AdminToken, convey.ShouldBeEmpty)
		})
	})
}
