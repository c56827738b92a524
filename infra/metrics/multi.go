package metrics

import coremetrics "github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"

// MultiSink fans scheduling records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordAssignments forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordAssignments(records []coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignments(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordRouteOptimizations forwards route records to sinks that accept them.
func (m *MultiSink) RecordRouteOptimizations(records []coremetrics.RouteRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.RouteRecorder); ok {
			if err := rec.RecordRouteOptimizations(records); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordFailure forwards failure records to sinks that accept them.
func (m *MultiSink) RecordFailure(record coremetrics.FailureRecord) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.FailureRecorder); ok {
			if err := rec.RecordFailure(record); err != nil {
				return err
			}
		}
	}
	return nil
}
