// Package seeder fills a running contest service with demo picks over
// its public API. It exists for local demos and smoke checks, not for
// load testing.
package seeder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/austinw/envelope/pkg/logger"
)

// Config controls a seeding run.
type Config struct {
	BaseURL string
	Count   int
	Timeout time.Duration
	Seed    int64
}

// Summary reports what a run accomplished.
type Summary struct {
	Submitted int
	Skipped   int
}

// Pool of plausible player names; the run suffixes them to stay unique.
var firstNames = []string{
	"Sam", "Lee", "Kim", "Pat", "Alex", "Morgan", "Casey", "Riley",
	"Jordan", "Taylor", "Drew", "Quinn", "Avery", "Reese", "Jamie",
}

type nominee struct {
	ID   int     `json:"id"`
	Odds float64 `json:"odds"`
}

// Run submits cfg.Count picks against the service at cfg.BaseURL.
// Conflicts (duplicate names, resolved contest) count as skips; any
// transport failure aborts the run.
func Run(ctx context.Context, cfg Config, log logger.Logger) (Summary, error) {
	client := &http.Client{Timeout: cfg.Timeout}
	rng := rand.New(rand.NewSource(cfg.Seed))

	nominees, err := fetchNominees(ctx, client, cfg.BaseURL)
	if err != nil {
		return Summary{}, err
	}
	if len(nominees) == 0 {
		return Summary{}, fmt.Errorf("service returned no nominees")
	}

	var sum Summary
	for i := 0; i < cfg.Count; i++ {
		name := fmt.Sprintf("%s %d", firstNames[rng.Intn(len(firstNames))], i+1)
		pick := weightedPick(rng, nominees)

		status, err := submitPick(ctx, client, cfg.BaseURL, name, pick)
		if err != nil {
			return sum, err
		}
		switch {
		case status == http.StatusCreated:
			sum.Submitted++
		case status == http.StatusConflict:
			sum.Skipped++
			log.Debug(ctx, "pick skipped", logger.String("name", name), logger.Int("status", status))
		default:
			return sum, fmt.Errorf("unexpected status %d submitting pick for %q", status, name)
		}
	}

	log.Info(ctx, "seeding complete",
		logger.Int("submitted", sum.Submitted),
		logger.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

// weightedPick biases choices toward the favorites, matching how a real
// pool skews. A small floor keeps long shots in play.
func weightedPick(rng *rand.Rand, nominees []nominee) int {
	total := 0.0
	for _, n := range nominees {
		total += n.Odds + 0.01
	}
	r := rng.Float64() * total
	for _, n := range nominees {
		r -= n.Odds + 0.01
		if r <= 0 {
			return n.ID
		}
	}
	return nominees[len(nominees)-1].ID
}

func fetchNominees(ctx context.Context, client *http.Client, baseURL string) ([]nominee, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/nominees", nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch nominees: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch nominees: unexpected status %d", resp.StatusCode)
	}
	var out []nominee
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode nominees: %w", err)
	}
	return out, nil
}

func submitPick(ctx context.Context, client *http.Client, baseURL, name string, nomineeID int) (int, error) {
	body, err := json.Marshal(map[string]any{"name": name, "nominee_id": nomineeID})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/api/picks", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("submit pick: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	return resp.StatusCode, nil
}
