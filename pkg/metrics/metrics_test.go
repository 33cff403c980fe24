package metrics_test

import (
	"testing"
	"time"

	"github.com/austinw/envelope/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManager(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		reg := prometheus.NewRegistry()
		m := metrics.NewManager(
			metrics.WithPrometheusRegistry(reg),
			metrics.WithNamespace("test"),
			metrics.WithSubsystem("contest"),
		)
		So(m, ShouldNotBeNil)

		Convey("Then all metric families register without collision", func() {
			families, err := reg.Gather()
			So(err, ShouldBeNil)
			// Counters without observations are absent until first use;
			// gathering must still succeed.
			So(families, ShouldNotBeNil)
		})
	})

	Convey("Given the global helpers", t, func() {
		Convey("Then recording through them does not panic", func() {
			So(func() {
				metrics.RecordPickSubmitted()
				metrics.UpdatePickCount(3)
				metrics.RecordOddsUpdate()
				metrics.RecordSyncRun(5, 120*time.Millisecond)
				metrics.RecordSyncFailure()
				metrics.RecordNotificationDelivered("picks")
				metrics.RecordNotificationCoalesced("odds")
				metrics.UpdateSubscriberCount(2)
				metrics.UpdateWebsocketClients(1)
				metrics.RecordHTTPRequest("leaderboard", "GET", "200")
				metrics.RecordHTTPRequestDuration("leaderboard", "GET", "200", 4.2)
				metrics.UpdateSystemMemoryUsage(1 << 20)
				metrics.UpdateSystemGoroutineCount(12)
			}, ShouldNotPanic)
		})

		Convey("Then the shared registry gathers the recorded families", func() {
			families, err := metrics.GetRegistry().Gather()
			So(err, ShouldBeNil)
			names := make(map[string]bool, len(families))
			for _, f := range families {
				names[f.GetName()] = true
			}
			So(names["envelope_contest_picks_submitted_total"], ShouldBeTrue)
			So(names["envelope_contest_sync_runs_total"], ShouldBeTrue)
			So(names["envelope_contest_http_requests_total"], ShouldBeTrue)
		})
	})
}
