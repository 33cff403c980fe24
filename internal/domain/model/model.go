// Package model contains domain models passed between layers.
package model

import "time"

// Nominee is one contest entry merged with its current market odds.
// ID and Title are fixed for the duration of the contest; Odds moves
// with the market and stays inside [0, 1].
type Nominee struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Director string  `json:"director,omitempty"`
	Odds     float64 `json:"odds"`
}

// Pick is a participant's single selection of one nominee.
type Pick struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	NomineeID   int       `json:"nominee_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	// Seq is the store-assigned insertion counter. It is the final
	// tie-break key so repeated leaderboard renders never jitter.
	Seq uint64 `json:"-"`
}

// Settings is the single piece of contest-wide mutable state.
// A nil WinnerID means the contest is open and picks are accepted.
type Settings struct {
	WinnerID *int `json:"winner_id"`
}

// Resolved reports whether a winner has been announced.
func (s Settings) Resolved() bool { return s.WinnerID != nil }

// LeaderboardRow is a derived view over one pick. It is recomputed on
// every read and never stored.
type LeaderboardRow struct {
	Pick         Pick   `json:"pick"`
	NomineeTitle string `json:"nominee_title"`
	Points       int    `json:"points"`
	Correct      bool   `json:"correct"`
}

// DefaultNominees returns the Best Picture catalog the contest ships
// with. Odds are the late-January market snapshot and are overwritten
// by the first sync.
func DefaultNominees() []Nominee {
	return []Nominee{
		{ID: 1, Title: "One Battle After Another", Director: "Paul Thomas Anderson", Odds: 0.81},
		{ID: 2, Title: "Hamnet", Director: "Chloé Zhao", Odds: 0.08},
		{ID: 3, Title: "Sinners", Director: "Ryan Coogler", Odds: 0.04},
		{ID: 4, Title: "Marty Supreme", Director: "Josh Safdie", Odds: 0.03},
		{ID: 5, Title: "Sentimental Value", Director: "Joachim Trier", Odds: 0.015},
		{ID: 6, Title: "The Secret Agent", Director: "Kleber Mendonça Filho", Odds: 0.01},
		{ID: 7, Title: "Frankenstein", Director: "Guillermo del Toro", Odds: 0.005},
		{ID: 8, Title: "Bugonia", Director: "Yorgos Lanthimos", Odds: 0.005},
		{ID: 9, Title: "F1", Director: "Joseph Kosinski", Odds: 0.003},
		{ID: 10, Title: "Train Dreams", Director: "Clint Bentley", Odds: 0.002},
	}
}
