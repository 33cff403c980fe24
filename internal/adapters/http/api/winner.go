// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

// WinnerDependencies defines the interface for winner resolution.
type WinnerDependencies interface {
	AnnounceWinner(ctx context.Context, nomineeID int) error
	ResetWinner(ctx context.Context) error
}

// WinnerHandler handles winner announcement and reset.
type WinnerHandler struct {
	deps WinnerDependencies
}

// NewWinnerHandler creates a new winner handler.
func NewWinnerHandler(deps WinnerDependencies) *WinnerHandler {
	return &WinnerHandler{deps: deps}
}

// winnerRequest mirrors the POST /api/winner payload.
type winnerRequest struct {
	NomineeID int `json:"nominee_id"`
}

// HandleWinner handles POST /api/winner and DELETE /api/winner requests.
func (h *WinnerHandler) HandleWinner(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req winnerRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
			return
		}
		if err := h.deps.AnnounceWinner(r.Context(), req.NomineeID); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"winner_id": req.NomineeID})
	case http.MethodDelete:
		if err := h.deps.ResetWinner(r.Context()); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
	}
}
