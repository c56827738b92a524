package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
)

// PromSink records scheduling outcomes in Prometheus metrics.
type PromSink struct {
	assignments *prometheus.CounterVec
	travel      prometheus.Histogram
	efficiency  prometheus.Histogram
	fuelSavings prometheus.Counter
	failures    *prometheus.CounterVec
}

// NewPromSink registers scheduling metrics on the default Prometheus
// registerer. The metrics HTTP server is started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	assignments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assignments_total",
		Help: "Total number of technician assignments",
	}, []string{"technician_id", "emergency"})
	travel := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "assignment_travel_minutes",
		Help:    "Estimated travel time to reach assigned jobs",
		Buckets: prometheus.LinearBuckets(0, 15, 8),
	})
	efficiency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_efficiency_percent",
		Help:    "Per-technician route efficiency after daily optimization",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
	fuel := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "route_fuel_savings_pln_total",
		Help: "Accumulated estimated fuel savings from route optimization",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduling_failures_total",
		Help: "Scheduling attempts without an assignment, by reason",
	}, []string{"reason"})

	collectors := []prometheus.Collector{assignments, travel, efficiency, fuel, failures}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
				collectors[i] = are.ExistingCollector
			} else {
				return nil, err
			}
		}
	}
	return &PromSink{
		assignments: collectors[0].(*prometheus.CounterVec),
		travel:      collectors[1].(prometheus.Histogram),
		efficiency:  collectors[2].(prometheus.Histogram),
		fuelSavings: collectors[3].(prometheus.Counter),
		failures:    collectors[4].(*prometheus.CounterVec),
	}, nil
}

// RecordAssignments increments the assignment counters.
func (s *PromSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	for _, r := range records {
		s.assignments.WithLabelValues(r.TechnicianID, strconv.FormatBool(r.Emergency)).Inc()
		s.travel.Observe(float64(r.TravelMinutes))
	}
	return nil
}

// RecordRouteOptimizations observes per-technician route metrics.
func (s *PromSink) RecordRouteOptimizations(records []coremetrics.RouteRecord) error {
	for _, r := range records {
		s.efficiency.Observe(r.Efficiency)
		s.fuelSavings.Add(r.FuelSavingsPLN)
	}
	return nil
}

// RecordFailure counts a scheduling failure by reason.
func (s *PromSink) RecordFailure(record coremetrics.FailureRecord) error {
	s.failures.WithLabelValues(record.Reason).Inc()
	return nil
}
