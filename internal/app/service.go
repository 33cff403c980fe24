// Package service provides the core contest service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/austinw/envelope/internal/adapters/repository"
	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/internal/domain/scoring"
	"github.com/austinw/envelope/internal/ingest"
	"github.com/austinw/envelope/pkg/logger"
	"github.com/austinw/envelope/pkg/metrics"
)

// MarketSyncer refreshes odds from the upstream prediction market.
type MarketSyncer interface {
	Run(ctx context.Context) (ingest.Report, error)
}

// Service implements the API dependencies for the contest system.
type Service struct {
	mu sync.RWMutex

	store  repository.Store
	syncer MarketSyncer

	syncInterval time.Duration

	started    bool
	stopCh     chan struct{}
	wg         sync.WaitGroup
	lastSync   time.Time
	lastReport ingest.Report

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore sets the backing contest store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithSyncer sets the market syncer used for odds refreshes.
func WithSyncer(syncer MarketSyncer) Option {
	return func(s *Service) {
		if syncer != nil {
			s.syncer = syncer
		}
	}
}

// WithSyncInterval sets the background odds refresh cadence.
// Zero or negative disables background refreshes.
func WithSyncInterval(d time.Duration) Option {
	return func(s *Service) {
		s.syncInterval = d
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		syncInterval: 2 * time.Hour,
		stopCh:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start brings the service up and launches the background sync loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore()
		s.logger.Info(ctx, "using in-memory store")
	}

	s.logger.Info(ctx, "starting contest service")

	if s.syncer != nil && s.syncInterval > 0 {
		s.wg.Add(1)
		go s.syncLoop()
	}

	s.started = true
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	s.logger.Info(context.Background(), "contest service stopped")
}

// syncLoop refreshes odds on a fixed cadence. An immediate refresh runs
// at startup so the catalog does not serve stale seed odds until the
// first tick. Failures are logged and retried on the next tick.
func (s *Service) syncLoop() {
	defer s.wg.Done()

	ctx := context.Background()
	if _, err := s.Sync(ctx); err != nil {
		s.logger.Warn(ctx, "initial odds sync failed", logger.Error(err))
	}

	ticker := time.NewTicker(s.syncInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			if _, err := s.Sync(ctx); err != nil {
				s.logger.Warn(ctx, "scheduled odds sync failed", logger.Error(err))
			}
		}
	}
}

// Sync triggers one odds refresh and records the outcome.
func (s *Service) Sync(ctx context.Context) (ingest.Report, error) {
	if s.syncer == nil {
		return ingest.Report{}, ingest.ErrMarketNotFound
	}
	report, err := s.syncer.Run(ctx)
	if err != nil {
		return ingest.Report{}, err
	}

	s.mu.Lock()
	s.lastSync = report.At
	s.lastReport = report
	s.mu.Unlock()

	return report, nil
}

// Nominees returns the catalog with current odds.
func (s *Service) Nominees(ctx context.Context) ([]model.Nominee, error) {
	return s.store.Nominees(ctx)
}

// SetOdds upserts one nominee's win probability.
func (s *Service) SetOdds(ctx context.Context, nomineeID int, value float64) error {
	return s.store.SetOdds(ctx, nomineeID, value)
}

// Picks returns the ledger in submission order.
func (s *Service) Picks(ctx context.Context) ([]model.Pick, error) {
	return s.store.Picks(ctx)
}

// SubmitPick appends a pick to the ledger.
func (s *Service) SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error) {
	return s.store.SubmitPick(ctx, name, nomineeID)
}

// RemovePick deletes a pick by id.
func (s *Service) RemovePick(ctx context.Context, id string) error {
	return s.store.RemovePick(ctx, id)
}

// ClearPicks wipes the ledger.
func (s *Service) ClearPicks(ctx context.Context) error {
	return s.store.ClearPicks(ctx)
}

// Settings returns the contest settings record.
func (s *Service) Settings(ctx context.Context) (model.Settings, error) {
	return s.store.Settings(ctx)
}

// AnnounceWinner resolves the contest.
func (s *Service) AnnounceWinner(ctx context.Context, nomineeID int) error {
	return s.store.AnnounceWinner(ctx, nomineeID)
}

// ResetWinner reopens the contest.
func (s *Service) ResetWinner(ctx context.Context) error {
	return s.store.ResetWinner(ctx)
}

// Leaderboard projects the current store state into ranked rows.
func (s *Service) Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error) {
	nominees, picks, settings, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.Leaderboard(nominees, picks, settings), nil
}

// Distribution reports how picks spread across the catalog.
func (s *Service) Distribution(ctx context.Context) ([]scoring.Share, error) {
	nominees, picks, _, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return scoring.Distribution(nominees, picks), nil
}

func (s *Service) snapshot(ctx context.Context) ([]model.Nominee, []model.Pick, model.Settings, error) {
	nominees, err := s.store.Nominees(ctx)
	if err != nil {
		return nil, nil, model.Settings{}, err
	}
	picks, err := s.store.Picks(ctx)
	if err != nil {
		return nil, nil, model.Settings{}, err
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return nil, nil, model.Settings{}, err
	}
	return nominees, picks, settings, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	ctx := context.Background()

	s.mu.RLock()
	lastSync := s.lastSync
	lastReport := s.lastReport
	started := s.started
	s.mu.RUnlock()

	stats := map[string]any{
		"started": started,
	}

	if lastSync.IsZero() {
		stats["last_sync"] = "never"
	} else {
		stats["last_sync"] = humanize.Time(lastSync)
		stats["last_sync_at"] = lastSync.UTC().Format(time.RFC3339)
		stats["last_sync_applied"] = lastReport.Applied
		stats["last_sync_skipped"] = lastReport.Skipped
	}

	// Start lazily creates the store; before that there is nothing to count.
	if s.store == nil {
		return stats
	}

	if picks, err := s.store.Picks(ctx); err == nil {
		stats["picks"] = len(picks)
		metrics.UpdatePickCount(len(picks))
	}
	if settings, err := s.store.Settings(ctx); err == nil {
		stats["resolved"] = settings.Resolved()
	}

	return stats
}
