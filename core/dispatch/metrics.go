package dispatch

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	schedulingRequests *prometheus.CounterVec
	candidatesRanked   prometheus.Histogram
	assignmentScore    prometheus.Histogram
	emergencyOverrides prometheus.Counter
)

// newCollectors creates new metric collectors.
func newCollectors() (*prometheus.CounterVec, prometheus.Histogram, prometheus.Histogram, prometheus.Counter) {
	req := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_requests_total",
			Help: "Number of scheduling requests by outcome",
		},
		[]string{"outcome"},
	)
	ranked := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduling_candidates_ranked",
			Help:    "Candidates surviving the score threshold per request",
			Buckets: prometheus.LinearBuckets(0, 2, 10),
		},
	)
	score := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduling_assignment_score",
			Help:    "Score of the technician chosen for an assignment",
			Buckets: prometheus.LinearBuckets(30, 10, 8),
		},
	)
	emerg := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduling_emergency_overrides_total",
			Help: "Number of emergency scheduling overrides",
		},
	)
	return req, ranked, score, emerg
}

func init() {
	schedulingRequests, candidatesRanked, assignmentScore, emergencyOverrides = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers dispatch metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(schedulingRequests, candidatesRanked, assignmentScore, emergencyOverrides)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	schedulingRequests, candidatesRanked, assignmentScore, emergencyOverrides = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
