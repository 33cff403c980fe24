package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/austinw/envelope/internal/adapters/pubsub"
	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/pkg/metrics"
)

// schema holds everything the contest needs. Safe to run repeatedly.
// The unique index on lower(name) is the authoritative duplicate-name
// guard; the application-level pre-check only improves the error.
const schema = `
CREATE TABLE IF NOT EXISTS odds (
    nominee_id INTEGER PRIMARY KEY,
    odds REAL NOT NULL CHECK (odds >= 0 AND odds <= 1)
);

CREATE TABLE IF NOT EXISTS picks (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    name TEXT NOT NULL,
    nominee_id INTEGER NOT NULL,
    submitted_at TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_picks_name_ci ON picks (lower(name));

CREATE TABLE IF NOT EXISTS settings (
    id INTEGER PRIMARY KEY CHECK (id = 1),
    winner_id INTEGER
);

INSERT OR IGNORE INTO settings (id, winner_id) VALUES (1, NULL);
`

// SQLiteStore implements Store on a local SQLite database. The catalog
// itself stays in memory; the odds table overlays market probabilities
// onto it so a restart keeps synced odds, picks and the winner.
type SQLiteStore struct {
	db       *sql.DB
	nominees []model.Nominee
	byID     map[int]struct{}
	bus      pubsub.Bus
}

// OpenSQLite opens (creating if needed) the database at path.
func OpenSQLite(ctx context.Context, path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &SQLiteStore{
		db:       db,
		nominees: model.DefaultNominees(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.byID = make(map[int]struct{}, len(s.nominees))
	for _, n := range s.nominees {
		s.byID[n.ID] = struct{}{}
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) publish(ctx context.Context, topic pubsub.Topic) {
	if s.bus != nil {
		s.bus.Publish(ctx, topic)
	}
}

// Nominees merges stored odds over the static catalog.
func (s *SQLiteStore) Nominees(ctx context.Context) ([]model.Nominee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT nominee_id, odds FROM odds`)
	if err != nil {
		return nil, fmt.Errorf("query odds: %w", err)
	}
	defer rows.Close()

	stored := make(map[int]float64)
	for rows.Next() {
		var id int
		var o float64
		if err := rows.Scan(&id, &o); err != nil {
			return nil, fmt.Errorf("scan odds: %w", err)
		}
		stored[id] = o
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate odds: %w", err)
	}

	out := make([]model.Nominee, len(s.nominees))
	copy(out, s.nominees)
	for i := range out {
		if o, ok := stored[out[i].ID]; ok {
			out[i].Odds = o
		}
	}
	return out, nil
}

// SetOdds validates then upserts into the odds table.
func (s *SQLiteStore) SetOdds(ctx context.Context, nomineeID int, value float64) error {
	if !validOdds(value) {
		return ErrInvalidOdds
	}
	if _, ok := s.byID[nomineeID]; !ok {
		return ErrUnknownNominee
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO odds (nominee_id, odds) VALUES (?, ?)
		 ON CONFLICT (nominee_id) DO UPDATE SET odds = excluded.odds`,
		nomineeID, value)
	if err != nil {
		return fmt.Errorf("upsert odds: %w", err)
	}
	metrics.RecordOddsUpdate()
	s.publish(ctx, pubsub.TopicOdds)
	return nil
}

// Picks returns every pick in submission order.
func (s *SQLiteStore) Picks(ctx context.Context) ([]model.Pick, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, id, name, nominee_id, submitted_at FROM picks ORDER BY submitted_at, seq`)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var out []model.Pick
	for rows.Next() {
		var p model.Pick
		var ts string
		if err := rows.Scan(&p.Seq, &p.ID, &p.Name, &p.NomineeID, &ts); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		if p.SubmittedAt, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse submitted_at: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate picks: %w", err)
	}
	return out, nil
}

// SubmitPick runs the whole check-and-insert inside one transaction so
// a concurrent duplicate either loses on the pre-check or on the
// unique index, never both succeeding.
func (s *SQLiteStore) SubmitPick(ctx context.Context, name string, nomineeID int) (model.Pick, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Pick{}, ErrEmptyName
	}
	if _, ok := s.byID[nomineeID]; !ok {
		return model.Pick{}, ErrUnknownNominee
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Pick{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var winner sql.NullInt64
	if err := tx.QueryRowContext(ctx, `SELECT winner_id FROM settings WHERE id = 1`).Scan(&winner); err != nil {
		return model.Pick{}, fmt.Errorf("read settings: %w", err)
	}
	if winner.Valid {
		return model.Pick{}, ErrContestClosed
	}

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM picks WHERE lower(name) = lower(?)`, name).Scan(&exists)
	switch {
	case err == nil:
		return model.Pick{}, ErrDuplicateName
	case err != sql.ErrNoRows:
		return model.Pick{}, fmt.Errorf("check name: %w", err)
	}

	p := model.Pick{
		ID:          uuid.NewString(),
		Name:        name,
		NomineeID:   nomineeID,
		SubmittedAt: time.Now().UTC(),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO picks (id, name, nominee_id, submitted_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.Name, p.NomineeID, p.SubmittedAt.Format(time.RFC3339Nano))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return model.Pick{}, ErrDuplicateName
		}
		return model.Pick{}, fmt.Errorf("insert pick: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return model.Pick{}, fmt.Errorf("pick seq: %w", err)
	}
	p.Seq = uint64(seq)

	if err := tx.Commit(); err != nil {
		return model.Pick{}, fmt.Errorf("commit: %w", err)
	}

	metrics.RecordPickSubmitted()
	s.publish(ctx, pubsub.TopicPicks)
	return p, nil
}

// RemovePick deletes by id; deleting nothing is still success.
func (s *SQLiteStore) RemovePick(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM picks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(ctx, pubsub.TopicPicks)
	}
	return nil
}

// ClearPicks removes all picks with a single notification.
func (s *SQLiteStore) ClearPicks(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM picks`)
	if err != nil {
		return fmt.Errorf("clear picks: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		s.publish(ctx, pubsub.TopicPicks)
	}
	return nil
}

// Settings reads the singleton row.
func (s *SQLiteStore) Settings(ctx context.Context) (model.Settings, error) {
	var winner sql.NullInt64
	if err := s.db.QueryRowContext(ctx, `SELECT winner_id FROM settings WHERE id = 1`).Scan(&winner); err != nil {
		return model.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	if !winner.Valid {
		return model.Settings{}, nil
	}
	id := int(winner.Int64)
	return model.Settings{WinnerID: &id}, nil
}

// AnnounceWinner sets or overwrites the winner.
func (s *SQLiteStore) AnnounceWinner(ctx context.Context, nomineeID int) error {
	if _, ok := s.byID[nomineeID]; !ok {
		return ErrUnknownNominee
	}
	if _, err := s.db.ExecContext(ctx, `UPDATE settings SET winner_id = ? WHERE id = 1`, nomineeID); err != nil {
		return fmt.Errorf("set winner: %w", err)
	}
	s.publish(ctx, pubsub.TopicSettings)
	return nil
}

// ResetWinner reopens submissions.
func (s *SQLiteStore) ResetWinner(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE settings SET winner_id = NULL WHERE id = 1`); err != nil {
		return fmt.Errorf("reset winner: %w", err)
	}
	s.publish(ctx, pubsub.TopicSettings)
	return nil
}
