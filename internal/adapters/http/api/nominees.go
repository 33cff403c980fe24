// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/internal/domain/scoring"
)

// NomineeDependencies defines the interface for nominee operations.
type NomineeDependencies interface {
	Nominees(ctx context.Context) ([]model.Nominee, error)
	SetOdds(ctx context.Context, nomineeID int, value float64) error
}

// NomineesHandler handles nominee listing and odds upserts.
type NomineesHandler struct {
	deps NomineeDependencies
}

// NewNomineesHandler creates a new nominees handler.
func NewNomineesHandler(deps NomineeDependencies) *NomineesHandler {
	return &NomineesHandler{deps: deps}
}

// nomineeResponse is a nominee with the points a correct pick would earn.
type nomineeResponse struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Director string  `json:"director"`
	Odds     float64 `json:"odds"`
	Points   int     `json:"points"`
}

// HandleNominees handles GET /api/nominees requests.
func (h *NomineesHandler) HandleNominees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}
	nominees, err := h.deps.Nominees(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	out := make([]nomineeResponse, len(nominees))
	for i, n := range nominees {
		out[i] = nomineeResponse{
			ID:       n.ID,
			Title:    n.Title,
			Director: n.Director,
			Odds:     n.Odds,
			Points:   scoring.Points(n.Odds),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// oddsRequest mirrors the PUT /api/odds payload.
type oddsRequest struct {
	NomineeID int     `json:"nominee_id"`
	Odds      float64 `json:"odds"`
}

// HandlePutOdds handles PUT /api/odds requests.
func (h *NomineesHandler) HandlePutOdds(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}
	var req oddsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	if err := h.deps.SetOdds(r.Context(), req.NomineeID, req.Odds); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"nominee_id": req.NomineeID, "odds": req.Odds})
}
