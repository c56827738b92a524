package model

import "time"

// SchedulingRequest is the immutable input to the dispatch engine. It carries
// everything needed to pick a technician and a slot for one service ticket.
type SchedulingRequest struct {
	TicketID    string `json:"ticket_id"`
	Priority    string `json:"priority"`
	ServiceType string `json:"service_type"`

	// EstimatedDuration is the expected on-site time in minutes.
	EstimatedDuration int `json:"estimated_duration"`

	RequiredSkills []string `json:"required_skills"`

	// PreferredDate, when set, pins the scheduling day. Otherwise the
	// engine schedules for the current date.
	PreferredDate *time.Time `json:"preferred_date,omitempty"`

	Location Coordinates `json:"location"`
	Address  string      `json:"address"`

	// EmergencyLevel is non-empty for emergency tickets.
	EmergencyLevel string `json:"emergency_level,omitempty"`
}

// Date resolves the scheduling day, falling back to now.
func (r SchedulingRequest) Date(now time.Time) time.Time {
	if r.PreferredDate != nil {
		return *r.PreferredDate
	}
	return now
}
