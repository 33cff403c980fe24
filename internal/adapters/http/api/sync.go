// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/austinw/envelope/internal/adapters/gamma"
	"github.com/austinw/envelope/internal/ingest"
)

// SyncDependencies defines the interface for triggering an odds refresh.
type SyncDependencies interface {
	Sync(ctx context.Context) (ingest.Report, error)
}

// SyncHandler handles on-demand market sync requests.
type SyncHandler struct {
	deps SyncDependencies
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(deps SyncDependencies) *SyncHandler {
	return &SyncHandler{deps: deps}
}

// syncResponse mirrors the GET/POST /api/sync response body.
type syncResponse struct {
	Success   bool                 `json:"success"`
	Message   string               `json:"message"`
	Timestamp string               `json:"timestamp"`
	Odds      []ingest.AppliedOdds `json:"odds"`
}

// HandleSync handles GET /api/sync and POST /api/sync requests.
// Both methods trigger the same refresh so a browser reload and an
// automation hook behave identically.
func (h *SyncHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}

	report, err := h.deps.Sync(r.Context())
	if err != nil {
		switch {
		case errors.Is(err, ingest.ErrMarketNotFound):
			writeError(w, http.StatusNotFound, "market_not_found", err)
		case errors.Is(err, gamma.ErrUpstream):
			writeError(w, http.StatusBadGateway, "upstream_error", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}

	writeJSON(w, http.StatusOK, syncResponse{
		Success:   true,
		Message:   fmt.Sprintf("updated odds for %d nominees", report.Applied),
		Timestamp: report.At.UTC().Format(time.RFC3339),
		Odds:      report.Odds,
	})
}
