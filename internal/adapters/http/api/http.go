// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/austinw/envelope/internal/adapters/repository"
	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/internal/domain/scoring"
	"github.com/austinw/envelope/internal/ingest"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the application service.
type Dependencies interface {
	Nominees(ctx context.Context) ([]model.Nominee, error)
	SetOdds(ctx context.Context, nomineeID int, value float64) error

	Picks(ctx context.Context) ([]model.Pick, error)
	SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error)
	RemovePick(ctx context.Context, id string) error
	ClearPicks(ctx context.Context) error

	Leaderboard(ctx context.Context) ([]model.LeaderboardRow, error)
	Distribution(ctx context.Context) ([]scoring.Share, error)
	Settings(ctx context.Context) (model.Settings, error)

	AnnounceWinner(ctx context.Context, nomineeID int) error
	ResetWinner(ctx context.Context) error

	Sync(ctx context.Context) (ingest.Report, error)
}

// Server wires HTTP routes for the contest API.
type Server struct {
	nomineesHandler    *NomineesHandler
	picksHandler       *PicksHandler
	leaderboardHandler *LeaderboardHandler
	winnerHandler      *WinnerHandler
	syncHandler        *SyncHandler
	liveHandler        *LiveHandler
	statsHandler       *StatsHandler
	healthHandler      *HealthHandler
	adminToken         string
}

// NewServer creates a new API server with all handlers. An empty adminToken
// disables the admin-route check.
func NewServer(deps Dependencies, statsProvider StatsProvider, hub *Hub, adminToken string) *Server {
	return &Server{
		nomineesHandler:    NewNomineesHandler(deps),
		picksHandler:       NewPicksHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps),
		winnerHandler:      NewWinnerHandler(deps),
		syncHandler:        NewSyncHandler(deps),
		liveHandler:        NewLiveHandler(hub),
		statsHandler:       NewStatsHandler(statsProvider),
		healthHandler:      NewHealthHandler(),
		adminToken:         adminToken,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return AdminMiddleware(next, s.adminToken)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/nominees", MetricsMiddleware(s.nomineesHandler.HandleNominees, "nominees"))
	mux.HandleFunc("/api/odds", MetricsMiddleware(admin(s.nomineesHandler.HandlePutOdds), "odds"))
	// Submitting a pick is public; wiping the ledger is not.
	picks := func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			admin(s.picksHandler.HandlePicks)(w, r)
			return
		}
		s.picksHandler.HandlePicks(w, r)
	}
	mux.HandleFunc("/api/picks", MetricsMiddleware(picks, "picks"))
	mux.HandleFunc("/api/picks/", MetricsMiddleware(admin(s.picksHandler.HandlePickByID), "pick"))
	mux.HandleFunc("/api/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleLeaderboard, "leaderboard"))
	mux.HandleFunc("/api/distribution", MetricsMiddleware(s.leaderboardHandler.HandleDistribution, "distribution"))
	mux.HandleFunc("/api/winner", MetricsMiddleware(admin(s.winnerHandler.HandleWinner), "winner"))
	mux.HandleFunc("/api/sync", MetricsMiddleware(s.syncHandler.HandleSync, "sync"))
	mux.HandleFunc("/api/live", s.liveHandler.HandleLive)
}

type errorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeStoreError maps store error kinds onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		writeError(w, http.StatusConflict, "duplicate_name", err)
	case errors.Is(err, repository.ErrContestClosed):
		writeError(w, http.StatusConflict, "contest_closed", err)
	case errors.Is(err, repository.ErrUnknownNominee):
		writeError(w, http.StatusBadRequest, "unknown_nominee", err)
	case errors.Is(err, repository.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "empty_name", err)
	case errors.Is(err, repository.ErrInvalidOdds):
		writeError(w, http.StatusBadRequest, "invalid_odds", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
