package model

import "time"

// SchedulingResult is returned to the caller for every scheduling attempt.
// Availability failures are reported here with Success=false; only
// collaborator failures surface as errors.
type SchedulingResult struct {
	Success          bool                  `json:"success"`
	TechnicianID     string                `json:"technician_id,omitempty"`
	ScheduledTime    time.Time             `json:"scheduled_time,omitempty"`
	EstimatedArrival time.Time             `json:"estimated_arrival,omitempty"`
	Alternatives     []AlternativeSchedule `json:"alternatives,omitempty"`
	Reason           string                `json:"reason,omitempty"`

	// Confidence reflects how well the chosen technician matches the
	// request, 0-100. It is not a probability.
	Confidence int `json:"confidence"`
}

// AlternativeSchedule proposes a different technician and time when the top
// candidate has no feasible slot. Always derived, never stored.
type AlternativeSchedule struct {
	TechnicianID     string    `json:"technician_id"`
	TechnicianName   string    `json:"technician_name"`
	ProposedTime     time.Time `json:"proposed_time"`
	EstimatedArrival time.Time `json:"estimated_arrival"`
	Confidence       int       `json:"confidence"`
	Reason           string    `json:"reason"`
}

// RouteOptimization is the outcome of re-sequencing one technician's day.
type RouteOptimization struct {
	TechnicianID string `json:"technician_id"`

	// Jobs holds the input jobs in optimized visiting order.
	Jobs []ScheduledJob `json:"jobs"`

	TotalTravelMinutes int `json:"total_travel_minutes"`
	TotalWorkMinutes   int `json:"total_work_minutes"`

	// Efficiency is work time over total time, 0-100.
	Efficiency float64 `json:"efficiency"`

	// FuelSavingsPLN estimates the fuel cost avoided by the optimized
	// ordering.
	FuelSavingsPLN float64 `json:"fuel_savings_pln"`
}
