// Package repository defines the contest store interface and its
// implementations. All mutation goes through this narrow operation set;
// every successful mutation publishes exactly one change notification
// scoped to the collection it touched.
package repository

import (
	"context"
	"math"

	"github.com/austinw/envelope/internal/domain/model"
)

// Store provides read/write access to the three mutable collections:
// odds, picks and settings.
type Store interface {
	// Nominees returns the static catalog merged with current odds.
	Nominees(ctx context.Context) ([]model.Nominee, error)

	// SetOdds upserts a nominee's win probability. Values outside
	// [0, 1] or non-finite values are rejected with ErrInvalidOdds,
	// never clamped.
	SetOdds(ctx context.Context, nomineeID int, value float64) error

	// Picks returns all live picks ordered by submission time.
	Picks(ctx context.Context) ([]model.Pick, error)

	// SubmitPick appends a new pick. Fails with ErrDuplicateName when
	// another live pick holds the same name case-insensitively, with
	// ErrContestClosed once a winner is announced, and with
	// ErrUnknownNominee when the nominee does not exist.
	SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error)

	// RemovePick deletes a pick by id. Removing an unknown id is a
	// no-op, so the operation is idempotent.
	RemovePick(ctx context.Context, id string) error

	// ClearPicks removes every pick and emits a single notification.
	ClearPicks(ctx context.Context) error

	// Settings returns the singleton contest settings record.
	Settings(ctx context.Context) (model.Settings, error)

	// AnnounceWinner resolves the contest. Announcing a different
	// winner later simply overwrites; correction is intentional.
	AnnounceWinner(ctx context.Context, nomineeID int) error

	// ResetWinner clears the winner and reopens submissions.
	ResetWinner(ctx context.Context) error
}

// validOdds reports whether v is a probability the store accepts.
func validOdds(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 && v <= 1
}
