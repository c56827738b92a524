// Package events defines the domain events published on the internal bus.
// Subscribers observe scheduling decisions without participating in them.
package events

import (
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// RequestEvent is published when a scheduling request enters the engine.
type RequestEvent struct {
	Request   model.SchedulingRequest
	Emergency bool
}

// AssignmentEvent is published after a successful assignment write-back.
type AssignmentEvent struct {
	TicketID      string
	TechnicianID  string
	ScheduledTime time.Time
	Confidence    int
	Emergency     bool
}

// ScheduleFailedEvent is published when a request yields no assignment.
type ScheduleFailedEvent struct {
	TicketID     string
	Reason       string
	Alternatives int
}

// RouteOptimizedEvent is published per technician by the daily optimization
// batch.
type RouteOptimizedEvent struct {
	TechnicianID   string
	Jobs           int
	Efficiency     float64
	FuelSavingsPLN float64
}
