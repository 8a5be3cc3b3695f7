package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

// gathered returns the summed counter/gauge value, or histogram sample count,
// of every series in family name.
func gathered(reg *prometheus.Registry, name string) float64 {
	families, err := reg.Gather()
	if err != nil {
		return -1
	}
	var total float64
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				total += m.GetGauge().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return total
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with a custom namespace and labels", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("calc"),
				WithHistogramBuckets([]float64{1, 10, 100}),
				WithConstLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)
			manager.calculations.WithLabelValues(OutcomeOK).Inc()

			Convey("Then metrics are registered under that prefix", func() {
				So(gathered(registry, "test_calc_calculations_total"), ShouldEqual, 1)
			})

			Convey("And const labels are attached", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(families, ShouldNotBeEmpty)
				labels := families[0].GetMetric()[0].GetLabel()
				found := false
				for _, l := range labels {
					if l.GetName() == "env" && l.GetValue() == "test" {
						found = true
					}
				}
				So(found, ShouldBeTrue)
			})
		})

		Convey("When two managers share a registry", func() {
			registry := prometheus.NewRegistry()
			_ = NewManager(WithPrometheusRegistry(registry))

			Convey("Then the second registration panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	reg := GetRegistry()

	Convey("Given the global metrics", t, func() {
		Convey("When calculations are recorded", func() {
			before := gathered(reg, "compensa_engine_calculations_total")
			RecordCalculation(OutcomeOK)
			RecordCalculation(OutcomeMissingField)
			RecordCalculationLatency(0.4)

			Convey("Then the counters move", func() {
				So(gathered(reg, "compensa_engine_calculations_total"), ShouldEqual, before+2)
				So(gathered(reg, "compensa_engine_calculation_latency_milliseconds"), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When flags and lookup failures are recorded", func() {
			before := gathered(reg, "compensa_engine_flags_raised_total")
			RecordFlag("CAPPED")
			RecordFlag("BAND_LOOKUP_ERROR")
			RecordBandLookupFailure()

			So(gathered(reg, "compensa_engine_flags_raised_total"), ShouldEqual, before+2)
			So(gathered(reg, "compensa_engine_band_lookup_failures_total"), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When a batch is recorded", func() {
			before := gathered(reg, "compensa_engine_batch_size_employees")
			RecordBatch("batch", 25, 3.5)
			RecordBatchItemError()

			So(gathered(reg, "compensa_engine_batch_size_employees"), ShouldEqual, before+1)
			So(gathered(reg, "compensa_engine_batch_item_errors_total"), ShouldBeGreaterThanOrEqualTo, 1)
		})

		Convey("When workers start and finish", func() {
			UpdateWorkerLimit(8)
			WorkerStarted()
			WorkerStarted()
			WorkerFinished()
			busy := gathered(reg, "compensa_engine_worker_busy")
			WorkerFinished()

			So(gathered(reg, "compensa_engine_worker_limit"), ShouldEqual, 8)
			So(gathered(reg, "compensa_engine_worker_busy"), ShouldEqual, busy-1)
		})

		Convey("When HTTP requests are recorded", func() {
			So(func() {
				RecordHTTPRequest("calculate", "POST", "200")
				RecordHTTPRequestDuration("calculate", "POST", "200", 12.5)
				RecordErrorByEndpoint("calculate", "POST", "client_error")
				RecordErrorByComponent("http", "bad_request")
			}, ShouldNotPanic)
			So(gathered(reg, "compensa_engine_http_requests_total"), ShouldBeGreaterThanOrEqualTo, 1)
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given the system collector", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			RunSystemCollector(ctx, time.Millisecond)
			close(done)
		}()

		time.Sleep(5 * time.Millisecond)
		cancel()

		Convey("Then it samples and stops with the context", func() {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("collector did not stop")
			}
			So(gathered(GetRegistry(), "compensa_engine_system_goroutine_count"), ShouldBeGreaterThan, 0)
			So(gathered(GetRegistry(), "compensa_engine_system_memory_usage_bytes"), ShouldBeGreaterThan, 0)
		})
	})
}
