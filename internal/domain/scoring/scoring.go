// Package scoring turns picks, odds and the announced winner into a
// ranked leaderboard. Everything here is a pure projection: no state,
// no I/O, safe to recompute on every change notification.
package scoring

import (
	"math"
	"sort"

	"github.com/austinw/envelope/internal/domain/model"
)

const maxPoints = 100

// unknownTitle is rendered when a pick references a nominee that is no
// longer in the catalog. The row still renders with zero points rather
// than failing the whole projection.
const unknownTitle = "Unknown"

// Points converts a win probability into the score a correct pick is
// worth: round(100 * (1 - odds)). Lower odds mean a riskier pick and a
// bigger payout. Odds are validated at the store boundary, so the
// result is always in [0, 100].
func Points(odds float64) int {
	return int(math.Round(maxPoints * (1 - odds)))
}

// Leaderboard computes the ranked rows for the current contest state.
// A pick scores only when a winner is announced and it matches the
// pick's nominee; every other pick shows zero, resolved or not.
//
// Ordering is total and stable: points descending, then submission
// time ascending (earlier picks rank higher), then insertion sequence.
func Leaderboard(nominees []model.Nominee, picks []model.Pick, s model.Settings) []model.LeaderboardRow {
	byID := make(map[int]model.Nominee, len(nominees))
	for _, n := range nominees {
		byID[n.ID] = n
	}

	rows := make([]model.LeaderboardRow, 0, len(picks))
	for _, p := range picks {
		row := model.LeaderboardRow{Pick: p, NomineeTitle: unknownTitle}
		if n, ok := byID[p.NomineeID]; ok {
			row.NomineeTitle = n.Title
			if s.Resolved() && *s.WinnerID == p.NomineeID {
				row.Correct = true
				row.Points = Points(n.Odds)
			}
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if !a.Pick.SubmittedAt.Equal(b.Pick.SubmittedAt) {
			return a.Pick.SubmittedAt.Before(b.Pick.SubmittedAt)
		}
		return a.Pick.Seq < b.Pick.Seq
	})
	return rows
}

// Share is one nominee's slice of the submitted picks.
type Share struct {
	NomineeID int     `json:"nominee_id"`
	Title     string  `json:"title"`
	Count     int     `json:"count"`
	Fraction  float64 `json:"fraction"`
}

// Distribution reports how the field split across nominees. Nominees
// nobody picked are omitted. Order follows the catalog.
func Distribution(nominees []model.Nominee, picks []model.Pick) []Share {
	counts := make(map[int]int, len(nominees))
	for _, p := range picks {
		counts[p.NomineeID]++
	}

	shares := make([]Share, 0, len(counts))
	for _, n := range nominees {
		c := counts[n.ID]
		if c == 0 {
			continue
		}
		shares = append(shares, Share{
			NomineeID: n.ID,
			Title:     n.Title,
			Count:     c,
			Fraction:  float64(c) / float64(len(picks)),
		})
	}
	return shares
}
