// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/internal/domain/scoring"
)

// LeaderboardDependencies defines the interface for leaderboard reads.
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error)
	Distribution(ctx context.Context) ([]scoring.Share, error)
	Settings(ctx context.Context) (model.Settings, error)
}

// LeaderboardHandler handles leaderboard and distribution reads.
type LeaderboardHandler struct {
	deps LeaderboardDependencies
}

// NewLeaderboardHandler creates a new leaderboard handler.
func NewLeaderboardHandler(deps LeaderboardDependencies) *LeaderboardHandler {
	return &LeaderboardHandler{deps: deps}
}

// leaderboardResponse carries the ranked rows plus contest resolution state.
type leaderboardResponse struct {
	Resolved bool                   `json:"resolved"`
	WinnerID *int                   `json:"winner_id"`
	Rows     []model.LeaderboardRow `json:"rows"`
}

// HandleLeaderboard handles GET /api/leaderboard?limit=N requests.
// The limit is optional; when present it caps the returned rows.
func (h *LeaderboardHandler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}
	rows, err := h.deps.Leaderboard(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	settings, err := h.deps.Settings(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		Resolved: settings.Resolved(),
		WinnerID: settings.WinnerID,
		Rows:     rows,
	})
}

// HandleDistribution handles GET /api/distribution requests.
func (h *LeaderboardHandler) HandleDistribution(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}
	shares, err := h.deps.Distribution(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shares)
}
