package metrics

import "time"

// AssignmentRecord captures one technician assignment for observability
// purposes.
type AssignmentRecord struct {
	TicketID      string
	TechnicianID  string
	Score         int
	Confidence    int
	Emergency     bool
	TravelMinutes int
	ScheduledTime time.Time
	Time          time.Time
}

// MetricsSink records scheduling outcomes.
type MetricsSink interface {
	RecordAssignments(records []AssignmentRecord) error
}

// RouteRecord captures the outcome of one technician's route optimization.
type RouteRecord struct {
	TechnicianID   string
	Jobs           int
	TravelMinutes  int
	WorkMinutes    int
	Efficiency     float64
	FuelSavingsPLN float64
	Time           time.Time
}

// RouteRecorder is implemented by sinks able to record route optimizations.
type RouteRecorder interface {
	RecordRouteOptimizations(records []RouteRecord) error
}

// FailureRecord captures a scheduling attempt that produced no assignment.
type FailureRecord struct {
	TicketID string
	Reason   string
	Time     time.Time
}

// FailureRecorder is implemented by sinks able to record scheduling failures.
type FailureRecorder interface {
	RecordFailure(record FailureRecord) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordAssignments([]AssignmentRecord) error   { return nil }
func (NopSink) RecordRouteOptimizations([]RouteRecord) error { return nil }
func (NopSink) RecordFailure(FailureRecord) error            { return nil }
