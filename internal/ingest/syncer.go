package ingest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/austinw/envelope/internal/adapters/gamma"
	"github.com/austinw/envelope/pkg/logger"
	"github.com/austinw/envelope/pkg/metrics"
)

// Feed abstracts the market-data source.
type Feed interface {
	EventsBySlug(ctx context.Context, slug string, active bool) ([]gamma.Event, error)
}

// OddsWriter abstracts the odds store side of the sync.
type OddsWriter interface {
	SetOdds(ctx context.Context, nomineeID int, value float64) error
}

// AppliedOdds is one successfully applied market match.
type AppliedOdds struct {
	Film      string  `json:"film"`
	NomineeID int     `json:"nominee_id"`
	Odds      float64 `json:"odds"`
	Percent   string  `json:"percent"`
}

// Report summarizes one sync run.
type Report struct {
	Applied int           `json:"applied"`
	Skipped int           `json:"skipped"`
	Odds    []AppliedOdds `json:"odds"`
	At      time.Time     `json:"at"`
}

// Syncer fetches the configured award event and writes matched odds
// into the store. Re-running against unchanged upstream data produces
// the same store state and a full-count report.
type Syncer struct {
	feed    Feed
	store   OddsWriter
	matcher *Matcher
	slug    string
	log     logger.Logger
}

// SyncerOption applies a configuration option to the Syncer.
type SyncerOption func(*Syncer)

// WithMatcher replaces the default alias matcher.
func WithMatcher(m *Matcher) SyncerOption {
	return func(s *Syncer) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithSyncLogger sets a custom logger.
func WithSyncLogger(log logger.Logger) SyncerOption {
	return func(s *Syncer) {
		if log != nil {
			s.log = log
		}
	}
}

// NewSyncer creates a syncer for the event identified by slug.
func NewSyncer(feed Feed, store OddsWriter, slug string, opts ...SyncerOption) *Syncer {
	s := &Syncer{
		feed:    feed,
		store:   store,
		matcher: NewMatcher(DefaultAliases()),
		slug:    slug,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run performs one full sync. Individual malformed or unmatched
// markets are skipped and counted; only an upstream failure or an
// empty feed fails the run as a whole.
func (s *Syncer) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{At: start}

	events, err := s.feed.EventsBySlug(ctx, s.slug, true)
	if err != nil {
		metrics.RecordSyncFailure()
		return report, fmt.Errorf("fetch events: %w", err)
	}
	if len(events) == 0 {
		metrics.RecordSyncFailure()
		return report, fmt.Errorf("%w: slug %q", ErrMarketNotFound, s.slug)
	}

	for _, market := range events[0].Markets {
		odds, ok := yesPrice(&market)
		if !ok {
			report.Skipped++
			s.logDebug(ctx, "skipping market without a usable yes price", market.Question)
			continue
		}

		nomineeID, alias, ok := s.matcher.Match(market.Question)
		if !ok {
			report.Skipped++
			continue
		}

		if err := s.store.SetOdds(ctx, nomineeID, odds); err != nil {
			// Partial failure of one upsert never aborts the batch.
			report.Skipped++
			if s.log != nil {
				s.log.Warn(ctx, "odds upsert failed",
					logger.Int("nominee_id", nomineeID),
					logger.Error(err),
				)
			}
			continue
		}

		report.Applied++
		report.Odds = append(report.Odds, AppliedOdds{
			Film:      alias,
			NomineeID: nomineeID,
			Odds:      odds,
			Percent:   fmt.Sprintf("%.1f%%", odds*100),
		})
	}

	metrics.RecordSyncRun(report.Applied, time.Since(start))
	if s.log != nil {
		s.log.Info(ctx, "odds sync finished",
			logger.Int("applied", report.Applied),
			logger.Int("skipped", report.Skipped),
		)
	}
	return report, nil
}

func (s *Syncer) logDebug(ctx context.Context, msg, question string) {
	if s.log != nil {
		s.log.Debug(ctx, msg, logger.String("question", question))
	}
}

// yesPrice extracts the probability behind the case-insensitive "yes"
// outcome. Prices arrive as decimal strings; anything unparsable
// disqualifies the market rather than the batch.
func yesPrice(m *gamma.Market) (float64, bool) {
	outcomes := m.Outcomes()
	prices := m.OutcomePrices()

	yes := -1
	for i, o := range outcomes {
		if strings.EqualFold(o, "yes") {
			yes = i
			break
		}
	}
	if yes < 0 || yes >= len(prices) {
		return 0, false
	}

	d, err := decimal.NewFromString(prices[yes])
	if err != nil {
		return 0, false
	}
	return d.InexactFloat64(), true
}
