package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/austinw/envelope/internal/adapters/gamma"
	"github.com/austinw/envelope/internal/adapters/http/api"
	"github.com/austinw/envelope/internal/adapters/pubsub"
	"github.com/austinw/envelope/internal/adapters/repository"
	app "github.com/austinw/envelope/internal/app"
	"github.com/austinw/envelope/internal/config"
	"github.com/austinw/envelope/internal/ingest"
	"github.com/austinw/envelope/pkg/logger"
	"github.com/austinw/envelope/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// A local .env is optional; real deployments set env vars directly.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Change notifications flow store -> bus -> websocket hub.
	bus := pubsub.NewInMemoryBus()
	defer bus.Close()

	store, closeStore, err := openStore(ctx, cfg, bus, log)
	if err != nil {
		log.Error(ctx, "failed to open store", logger.Error(err))
		return
	}
	defer closeStore()

	feed := gamma.NewClient(gamma.WithBaseURL(cfg.GammaBaseURL))
	syncer := ingest.NewSyncer(feed, store, cfg.MarketSlug,
		ingest.WithSyncLogger(logger.Named("sync")))

	svc := app.New(
		app.WithLogger(log),
		app.WithStore(store),
		app.WithSyncer(syncer),
		app.WithSyncInterval(time.Duration(cfg.SyncIntervalHours)*time.Hour),
	)
	if err := svc.Start(ctx); err != nil {
		log.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	hub := api.NewHub(logger.Named("live"))
	go hub.Run(ctx)
	go bridgeChanges(ctx, bus, hub)

	go startSystemMetricsUpdater(ctx)

	mux := http.NewServeMux()
	apiServer := api.NewServer(svc, svc, hub, cfg.AdminToken)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// openStore builds the configured store backend wired to the bus.
func openStore(ctx context.Context, cfg *config.Config, bus pubsub.Bus, log logger.Logger) (repository.Store, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendSQLite:
		store, err := repository.OpenSQLite(ctx, cfg.SQLitePath, repository.WithSQLiteBus(bus))
		if err != nil {
			return nil, nil, err
		}
		log.Info(ctx, "using sqlite store", logger.String("path", cfg.SQLitePath))
		return store, func() { _ = store.Close() }, nil
	default:
		log.Info(ctx, "using in-memory store")
		return repository.NewMemoryStore(repository.WithBus(bus)), func() {}, nil
	}
}

// bridgeChanges forwards store change signals to connected live clients.
// The bus coalesces bursts, so the hub sees at most one pending signal
// per topic.
func bridgeChanges(ctx context.Context, bus pubsub.Bus, hub *api.Hub) {
	ch, cancel := bus.Subscribe(ctx)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			hub.NotifyChange(change.Topic, change.At)
		}
	}
}

// startSystemMetricsUpdater periodically refreshes process-level gauges.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}
