package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/austinw/envelope/internal/adapters/repository"
	service "github.com/austinw/envelope/internal/app"
	"github.com/austinw/envelope/internal/domain/model"
	"github.com/austinw/envelope/internal/ingest"
	"github.com/austinw/envelope/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	m.Run()
}

// fakeSyncer counts runs and returns a canned report.
type fakeSyncer struct {
	calls  atomic.Int64
	report ingest.Report
	err    error
}

func (f *fakeSyncer) Run(ctx context.Context) (ingest.Report, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ingest.Report{}, f.err
	}
	r := f.report
	if r.At.IsZero() {
		r.At = time.Now()
	}
	return r, nil
}

func testNominees() []model.Nominee {
	return []model.Nominee{
		{ID: 1, Title: "One Battle After Another", Odds: 0.80},
		{ID: 2, Title: "Hamnet", Odds: 0.08},
		{ID: 3, Title: "Sinners", Odds: 0.05},
	}
}

func TestServiceLifecycle(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a manual-only syncer", t, func() {
		syncer := &fakeSyncer{report: ingest.Report{Applied: 2}}
		svc := service.New(
			service.WithStore(repository.NewMemoryStore()),
			service.WithSyncer(syncer),
			service.WithSyncInterval(0),
			service.WithLogger(logger.Named("test")),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then starting twice is harmless", func() {
			So(svc.Start(ctx), ShouldBeNil)
		})

		Convey("When no sync has run yet", func() {
			stats := svc.GetStats()
			So(stats["last_sync"], ShouldEqual, "never")
		})

		Convey("When a manual sync runs", func() {
			report, err := svc.Sync(ctx)
			So(err, ShouldBeNil)
			So(report.Applied, ShouldEqual, 2)

			Convey("Then stats expose the humanized sync time", func() {
				stats := svc.GetStats()
				So(stats["last_sync"], ShouldNotEqual, "never")
				So(stats["last_sync_applied"], ShouldEqual, 2)
			})
		})

		Convey("And a disabled interval never triggers background runs", func() {
			time.Sleep(30 * time.Millisecond)
			So(syncer.calls.Load(), ShouldEqual, 0)
		})
	})

	Convey("Given a service with a short sync interval", t, func() {
		syncer := &fakeSyncer{}
		svc := service.New(
			service.WithStore(repository.NewMemoryStore()),
			service.WithSyncer(syncer),
			service.WithSyncInterval(10*time.Millisecond),
			service.WithLogger(logger.Named("test")),
		)
		So(svc.Start(ctx), ShouldBeNil)

		Convey("Then the loop syncs at startup and keeps ticking", func() {
			deadline := time.Now().Add(2 * time.Second)
			for syncer.calls.Load() < 3 && time.Now().Before(deadline) {
				time.Sleep(5 * time.Millisecond)
			}
			svc.Stop()
			So(syncer.calls.Load(), ShouldBeGreaterThanOrEqualTo, 3)
		})
	})

	Convey("Given a service that has not been started", t, func() {
		svc := service.New()

		Convey("Then stats are readable before any store exists", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats, ShouldNotContainKey, "picks")
			So(stats["last_sync"], ShouldEqual, "never")
		})
	})

	Convey("Given a service without a syncer", t, func() {
		svc := service.New(
			service.WithStore(repository.NewMemoryStore()),
			service.WithLogger(logger.Named("test")),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("Then a manual sync reports the market as missing", func() {
			_, err := svc.Sync(ctx)
			So(err, ShouldWrap, ingest.ErrMarketNotFound)
		})
	})
}

func TestServiceProjections(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service over a seeded store", t, func() {
		store := repository.NewMemoryStore(repository.WithNominees(testNominees()))
		svc := service.New(
			service.WithStore(store),
			service.WithSyncInterval(0),
			service.WithLogger(logger.Named("test")),
		)
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		_, err := svc.SubmitPick(ctx, "Sam", 1)
		So(err, ShouldBeNil)
		_, err = svc.SubmitPick(ctx, "Lee", 2)
		So(err, ShouldBeNil)
		_, err = svc.SubmitPick(ctx, "Kim", 2)
		So(err, ShouldBeNil)

		Convey("When the contest is unresolved", func() {
			rows, err := svc.Leaderboard(ctx)

			Convey("Then rows are in submission order with zero points", func() {
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0].Pick.Name, ShouldEqual, "Sam")
				So(rows[0].Points, ShouldEqual, 0)
				So(rows[0].Correct, ShouldBeFalse)
			})
		})

		Convey("When the winner is announced", func() {
			So(svc.AnnounceWinner(ctx, 2), ShouldBeNil)

			rows, err := svc.Leaderboard(ctx)

			Convey("Then correct picks score and rank first", func() {
				So(err, ShouldBeNil)
				So(rows[0].Pick.Name, ShouldEqual, "Lee")
				So(rows[0].Points, ShouldEqual, 92)
				So(rows[0].Correct, ShouldBeTrue)
				So(rows[1].Pick.Name, ShouldEqual, "Kim")
				So(rows[2].Pick.Name, ShouldEqual, "Sam")
				So(rows[2].Points, ShouldEqual, 0)
			})

			Convey("And further submissions are rejected", func() {
				_, err := svc.SubmitPick(ctx, "Pat", 3)
				So(err, ShouldWrap, repository.ErrContestClosed)
			})

			Convey("And resetting the winner reopens the contest", func() {
				So(svc.ResetWinner(ctx), ShouldBeNil)
				_, err := svc.SubmitPick(ctx, "Pat", 3)
				So(err, ShouldBeNil)
			})
		})

		Convey("When asking for the pick distribution", func() {
			shares, err := svc.Distribution(ctx)

			Convey("Then counts follow catalog order", func() {
				So(err, ShouldBeNil)
				So(shares, ShouldHaveLength, 2)
				So(shares[0].NomineeID, ShouldEqual, 1)
				So(shares[0].Count, ShouldEqual, 1)
				So(shares[1].NomineeID, ShouldEqual, 2)
				So(shares[1].Count, ShouldEqual, 2)
				So(shares[1].Fraction, ShouldAlmostEqual, 2.0/3.0)
			})
		})

		Convey("When reading stats", func() {
			stats := svc.GetStats()
			So(stats["picks"], ShouldEqual, 3)
			So(stats["resolved"], ShouldBeFalse)
		})
	})
}
