package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options on a fresh registry", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then metrics are registered under the default namespace", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "silentsignal")
				manager.scansStarted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["silentsignal_vitals_scans_started_total"], ShouldBeTrue)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("sub"),
				WithMetricPrefix("x_"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options are applied", func() {
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(time.Duration(manager.refreshInterval.Load()), ShouldEqual, 5*time.Second)
				manager.scanFallbacks.Inc()
				So(testutil.CollectAndCount(registry, "test_sub_x_scan_fallbacks_total"), ShouldEqual, 1)
			})
		})

		Convey("When invalid option values are given", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(-time.Second),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			Convey("Then defaults are kept", func() {
				So(manager.namespace, ShouldEqual, "silentsignal")
				So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
				So(time.Duration(manager.refreshInterval.Load()), ShouldEqual, defaultRefreshInterval)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global metrics", t, func() {
		Convey("When recording scan outcomes", func() {
			before := testutil.ToFloat64(globalManager.scansCompleted.WithLabelValues("synthetic"))
			RecordScanStarted()
			RecordScanFallback()
			RecordScanCompleted(true, 4000)

			Convey("Then the synthetic source is counted", func() {
				after := testutil.ToFloat64(globalManager.scansCompleted.WithLabelValues("synthetic"))
				So(after-before, ShouldEqual, 1)
			})
		})

		Convey("When recording a committed reading", func() {
			RecordAnxietyScore(46)
			RecordReadingStatus("Elevated")

			Convey("Then the current score gauge reflects it", func() {
				So(testutil.ToFloat64(globalManager.currentAnxiety), ShouldEqual, 46)
				So(testutil.ToFloat64(globalManager.readingsByState.WithLabelValues("Elevated")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When recording pipeline and transport metrics", func() {
			Convey("Then nothing panics", func() {
				So(func() {
					RecordScanCancelled()
					UpdateHistorySize(7)
					RecordAgentRequest("reply", 12)
					RecordLogWrite("http", "ok")
					UpdateQueueSize(3)
					UpdateQueueCapacity(100)
					UpdateQueueUtilization(0.03)
					RecordQueueEnqueue()
					RecordQueueDequeue()
					RecordQueueEnqueueError()
					RecordQueueProcessingLatency(1.5)
					UpdateWorkerCount(2)
					UpdateWorkerActiveCount(1)
					RecordWorkerProcessingLatency(2)
					RecordWorkerError()
					UpdateRepositoryRecordsTotal(10)
					RecordRepositoryUpdateLatency(0.4)
					RecordRepositoryQueryLatency(0.2)
					RecordHTTPRequest("/api/vitals", "GET", "200")
					RecordHTTPRequestDuration("/api/vitals", "GET", "200", 1.2)
					RecordErrorByComponent("agent", "timeout")
					RecordErrorByEndpoint("/api/chat", "POST", "validation")
					UpdateSystemMemoryUsage(1 << 20)
					UpdateSystemGoroutineCount(12)
				}, ShouldNotPanic)
			})
		})

		Convey("When recording is switched off", func() {
			SetEnabled(false)
			defer SetEnabled(true)
			before := testutil.ToFloat64(globalManager.scansStarted)
			RecordScanStarted()
			UpdateHistorySize(99)

			Convey("Then the helpers leave the collectors untouched", func() {
				So(Enabled(), ShouldBeFalse)
				So(testutil.ToFloat64(globalManager.scansStarted), ShouldEqual, before)
				So(testutil.ToFloat64(globalManager.historySize), ShouldNotEqual, 99)
			})
		})

		Convey("When the refresh interval is changed", func() {
			prev := RefreshInterval()
			defer SetRefreshInterval(prev)
			SetRefreshInterval(2 * time.Second)
			SetRefreshInterval(0)

			Convey("Then only positive values are applied", func() {
				So(RefreshInterval(), ShouldEqual, 2*time.Second)
			})
		})

		Convey("When a manager starts disabled", func() {
			manager := NewManager(WithMetricsEnabled(false), WithPrometheusRegistry(prometheus.NewRegistry()))

			Convey("Then its state says so", func() {
				So(manager.enabled.Load(), ShouldBeFalse)
			})
		})

		Convey("When reading the registry", func() {
			Convey("Then it is the custom registry", func() {
				So(GetRegistry(), ShouldEqual, customRegistry)
			})
		})
	})
}
