package scoring_test

import (
	"testing"
	"time"

	"github.com/austinw/envelope/internal/domain/model"
	scoring "github.com/austinw/envelope/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func winner(id int) model.Settings { return model.Settings{WinnerID: &id} }

func TestPoints(t *testing.T) {
	Convey("Given the points formula", t, func() {
		Convey("Then it maps odds onto [0, 100] with rounding", func() {
			So(scoring.Points(0), ShouldEqual, 100)
			So(scoring.Points(1), ShouldEqual, 0)
			So(scoring.Points(0.80), ShouldEqual, 20)
			So(scoring.Points(0.05), ShouldEqual, 95)
			So(scoring.Points(0.015), ShouldEqual, 99) // 98.5 rounds away from zero
			So(scoring.Points(0.004), ShouldEqual, 100)
		})

		Convey("Then every odds value in range yields points in range", func() {
			for o := 0.0; o <= 1.0; o += 0.01 {
				p := scoring.Points(o)
				So(p, ShouldBeGreaterThanOrEqualTo, 0)
				So(p, ShouldBeLessThanOrEqualTo, 100)
			}
		})
	})
}

func TestLeaderboard(t *testing.T) {
	base := time.Date(2026, 3, 15, 19, 0, 0, 0, time.UTC)
	nominees := []model.Nominee{
		{ID: 1, Title: "One Battle After Another", Odds: 0.80},
		{ID: 2, Title: "Sinners", Odds: 0.05},
	}
	picks := []model.Pick{
		{ID: "p1", Name: "Sam", NomineeID: 1, SubmittedAt: base, Seq: 1},
		{ID: "p2", Name: "Lee", NomineeID: 2, SubmittedAt: base.Add(time.Minute), Seq: 2},
	}

	Convey("Given picks submitted before any winner is announced", t, func() {
		rows := scoring.Leaderboard(nominees, picks, model.Settings{})

		Convey("Then everyone shows zero points ordered by submission time", func() {
			So(rows, ShouldHaveLength, 2)
			So(rows[0].Pick.Name, ShouldEqual, "Sam")
			So(rows[0].Points, ShouldEqual, 0)
			So(rows[1].Pick.Name, ShouldEqual, "Lee")
			So(rows[1].Points, ShouldEqual, 0)
			So(rows[0].Correct, ShouldBeFalse)
		})
	})

	Convey("Given the winner is announced", t, func() {
		rows := scoring.Leaderboard(nominees, picks, winner(2))

		Convey("Then the correct pick scores its nominee's points and ranks first", func() {
			So(rows[0].Pick.Name, ShouldEqual, "Lee")
			So(rows[0].Points, ShouldEqual, 95)
			So(rows[0].Correct, ShouldBeTrue)
			So(rows[1].Pick.Name, ShouldEqual, "Sam")
			So(rows[1].Points, ShouldEqual, 0)
			So(rows[1].Correct, ShouldBeFalse)
		})

		Convey("And sorting twice on identical input yields identical output", func() {
			again := scoring.Leaderboard(nominees, picks, winner(2))
			So(again, ShouldResemble, rows)
		})
	})

	Convey("Given two picks tied on points and timestamp", t, func() {
		tied := []model.Pick{
			{ID: "a", Name: "Ana", NomineeID: 1, SubmittedAt: base, Seq: 7},
			{ID: "b", Name: "Bo", NomineeID: 2, SubmittedAt: base, Seq: 3},
		}
		rows := scoring.Leaderboard(nominees, tied, model.Settings{})

		Convey("Then insertion sequence breaks the tie deterministically", func() {
			So(rows[0].Pick.Name, ShouldEqual, "Bo")
			So(rows[1].Pick.Name, ShouldEqual, "Ana")
		})
	})

	Convey("Given a pick whose nominee is not in the catalog", t, func() {
		orphan := []model.Pick{{ID: "x", Name: "Kim", NomineeID: 42, SubmittedAt: base}}
		rows := scoring.Leaderboard(nominees, orphan, winner(42))

		Convey("Then the row renders with zero points and an unknown title", func() {
			So(rows, ShouldHaveLength, 1)
			So(rows[0].NomineeTitle, ShouldEqual, "Unknown")
			So(rows[0].Points, ShouldEqual, 0)
		})
	})
}

func TestDistribution(t *testing.T) {
	Convey("Given a field of picks", t, func() {
		nominees := []model.Nominee{
			{ID: 1, Title: "One Battle After Another"},
			{ID: 2, Title: "Sinners"},
			{ID: 3, Title: "Hamnet"},
		}
		picks := []model.Pick{
			{Name: "a", NomineeID: 1},
			{Name: "b", NomineeID: 1},
			{Name: "c", NomineeID: 2},
			{Name: "d", NomineeID: 1},
		}

		Convey("Then shares follow catalog order and skip unpicked nominees", func() {
			shares := scoring.Distribution(nominees, picks)
			So(shares, ShouldHaveLength, 2)
			So(shares[0].NomineeID, ShouldEqual, 1)
			So(shares[0].Count, ShouldEqual, 3)
			So(shares[0].Fraction, ShouldAlmostEqual, 0.75)
			So(shares[1].NomineeID, ShouldEqual, 2)
			So(shares[1].Count, ShouldEqual, 1)
		})
	})

	Convey("Given no picks", t, func() {
		Convey("Then the distribution is empty", func() {
			So(scoring.Distribution([]model.Nominee{{ID: 1}}, nil), ShouldBeEmpty)
		})
	})
}
