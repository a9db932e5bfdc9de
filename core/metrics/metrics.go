package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels shared by the collectors below.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
)

var (
	jobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "job_runs_total",
			Help:      "Total number of job invocations",
		},
		[]string{"job", "status"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "aggregator",
			Name:      "job_duration_seconds",
			Help:      "Job invocation duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60, 300},
		},
		[]string{"job"},
	)

	storageOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "storage_operations_total",
			Help:      "Object store operations by outcome",
		},
		[]string{"op", "outcome"},
	)

	resolverProbesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "resolver_probes_total",
			Help:      "Fallback resolver probes by outcome",
		},
		[]string{"resolver", "outcome"},
	)

	siblingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "aggregator",
			Name:      "fanin_siblings_total",
			Help:      "Sibling results consumed by reducers",
		},
		[]string{"group"},
	)
)

func init() {
	prometheus.MustRegister(jobRunsTotal)
	prometheus.MustRegister(jobDuration)
	prometheus.MustRegister(storageOperationsTotal)
	prometheus.MustRegister(resolverProbesTotal)
	prometheus.MustRegister(siblingsTotal)
}

// ObserveJob records one job invocation.
func ObserveJob(job string, started time.Time, err error) {
	status := OutcomeOK
	if err != nil {
		status = OutcomeError
	}
	jobRunsTotal.WithLabelValues(job, status).Inc()
	jobDuration.WithLabelValues(job).Observe(time.Since(started).Seconds())
}

// ObserveStorage records one object store operation.
func ObserveStorage(op, outcome string) {
	storageOperationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveProbe records one resolver probe.
func ObserveProbe(resolver, outcome string) {
	resolverProbesTotal.WithLabelValues(resolver, outcome).Inc()
}

// ObserveSibling records one sibling result consumed from group.
func ObserveSibling(group string) {
	siblingsTotal.WithLabelValues(group).Inc()
}
