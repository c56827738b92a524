package model

import "time"

// JobStatus describes the lifecycle state of a scheduled job.
type JobStatus int

const (
	JobScheduled JobStatus = iota
	JobInProgress
	JobCompleted
	JobCancelled
)

// String returns the CRM wire name of the status.
func (s JobStatus) String() string {
	switch s {
	case JobScheduled:
		return "SCHEDULED"
	case JobInProgress:
		return "IN_PROGRESS"
	case JobCompleted:
		return "COMPLETED"
	case JobCancelled:
		return "CANCELLED"
	default:
		return "unknown"
	}
}

// ParseJobStatus converts a CRM status name into a JobStatus. Unknown names
// map to JobCancelled so that malformed data never blocks a calendar.
func ParseJobStatus(s string) JobStatus {
	switch s {
	case "SCHEDULED":
		return JobScheduled
	case "IN_PROGRESS":
		return JobInProgress
	case "COMPLETED":
		return JobCompleted
	default:
		return JobCancelled
	}
}

// Blocking reports whether the job occupies the technician's calendar.
// Completed and cancelled jobs free their window.
func (s JobStatus) Blocking() bool {
	return s == JobScheduled || s == JobInProgress
}

// ScheduledJob is a single booking on a technician's day.
type ScheduledJob struct {
	ID       string      `json:"id"`
	TicketID string      `json:"ticket_id"`
	Start    time.Time   `json:"start"`
	End      time.Time   `json:"end"`
	Location Coordinates `json:"location"`
	Status   JobStatus   `json:"status"`

	// TravelTimeMinutes is the estimated time to reach the job from the
	// previous position, filled in by the coordinator or route optimizer.
	TravelTimeMinutes int `json:"travel_time_minutes,omitempty"`
}

// Duration returns the planned on-site time.
func (j ScheduledJob) Duration() time.Duration {
	return j.End.Sub(j.Start)
}
