// Package telemetry exports prometheus counters and histograms for the
// exploration and execution engines. It has no slot in the teacher's
// repo (falcon prints operator-facing text instead); the counters here
// are named after the exploration/execution events spec §4.9–§4.12
// define, not after any teacher concept.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles every counter and histogram one sentinel process
// exports. New registers it with the registry the caller supplies.
type Metrics struct {
	PagesVisited     prometheus.Counter
	CyclesDetected   *prometheus.CounterVec
	TestsCompleted   *prometheus.CounterVec
	WorkerCrashes    prometheus.Counter
	ExplorationTime  prometheus.Histogram
	TestDuration     *prometheus.HistogramVec
}

// New builds a Metrics bundle registered against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PagesVisited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel", Subsystem: "exploration", Name: "pages_visited_total",
			Help: "Pages appended to the application graph during exploration.",
		}),
		CyclesDetected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel", Subsystem: "exploration", Name: "cycles_detected_total",
			Help: "Cycle entries recorded during exploration, by reason.",
		}, []string{"reason"}),
		TestsCompleted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sentinel", Subsystem: "execution", Name: "tests_completed_total",
			Help: "Test cases completed by the scheduler, by terminal status.",
		}, []string{"status"}),
		WorkerCrashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sentinel", Subsystem: "execution", Name: "worker_crashes_total",
			Help: "Worker process exits observed by the scheduler, whether or not a test case was in flight.",
		}),
		ExplorationTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "sentinel", Subsystem: "exploration", Name: "run_duration_seconds",
			Help: "Wall-clock duration of a completed exploration run.",
			Buckets: prometheus.DefBuckets,
		}),
		TestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "sentinel", Subsystem: "execution", Name: "test_duration_seconds",
			Help: "Wall-clock duration of one test case, by terminal status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"status"}),
	}

	reg.MustRegister(m.PagesVisited, m.CyclesDetected, m.TestsCompleted, m.WorkerCrashes, m.ExplorationTime, m.TestDuration)
	return m
}
