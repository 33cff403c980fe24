// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/austinw/envelope/internal/domain/model"
)

// PickDependencies defines the interface for pick ledger operations.
type PickDependencies interface {
	Picks(ctx context.Context) ([]model.Pick, error)
	SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error)
	RemovePick(ctx context.Context, id string) error
	ClearPicks(ctx context.Context) error
}

// PicksHandler handles pick submission and removal.
type PicksHandler struct {
	deps PickDependencies
}

// NewPicksHandler creates a new picks handler.
func NewPicksHandler(deps PickDependencies) *PicksHandler {
	return &PicksHandler{deps: deps}
}

// pickRequest mirrors the POST /api/picks payload.
type pickRequest struct {
	Name      string `json:"name"`
	NomineeID int    `json:"nominee_id"`
}

// HandlePicks handles GET, POST and DELETE /api/picks requests.
func (h *PicksHandler) HandlePicks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	case http.MethodDelete:
		h.handleClear(w, r)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
	}
}

func (h *PicksHandler) handleList(w http.ResponseWriter, r *http.Request) {
	picks, err := h.deps.Picks(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if picks == nil {
		picks = []model.Pick{}
	}
	writeJSON(w, http.StatusOK, picks)
}

func (h *PicksHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req pickRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", errors.Join(ErrBadRequest, err))
		return
	}
	pick, err := h.deps.SubmitPick(r.Context(), req.Name, req.NomineeID)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, pick)
}

func (h *PicksHandler) handleClear(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.ClearPicks(r.Context()); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandlePickByID handles DELETE /api/picks/{id} requests.
func (h *PicksHandler) HandlePickByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", ErrBadRequest)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/picks/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	if err := h.deps.RemovePick(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
