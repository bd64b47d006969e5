// Package metrics exposes Prometheus instrumentation for the job pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the pipeline counters. Register once per process; tests use
// a private registry.
type Metrics struct {
	JobsSubmitted prometheus.Counter
	JobsFinished  *prometheus.CounterVec
	RowsDropped   prometheus.Counter
	JobDuration   prometheus.Histogram
}

// New registers the pipeline metrics on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobsSubmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "counter_jobs_submitted_total",
			Help: "Number of counting jobs submitted.",
		}),
		JobsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "counter_jobs_finished_total",
			Help: "Number of counting jobs that reached a terminal state.",
		}, []string{"status"}),
		RowsDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "counter_rows_dropped_total",
			Help: "Number of attendee rows dropped as unparsable.",
		}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "counter_job_duration_seconds",
			Help:    "Wall-clock duration of counting jobs.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
