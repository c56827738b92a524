package model

import "time"

// SkillLevel classifies a technician's seniority.
type SkillLevel int

const (
	LevelApprentice SkillLevel = iota
	LevelJunior
	LevelSenior
	LevelLead
	LevelSupervisor
)

// String returns a human-readable representation of the skill level.
func (l SkillLevel) String() string {
	switch l {
	case LevelApprentice:
		return "apprentice"
	case LevelJunior:
		return "junior"
	case LevelSenior:
		return "senior"
	case LevelLead:
		return "lead"
	case LevelSupervisor:
		return "supervisor"
	default:
		return "unknown"
	}
}

// ParseSkillLevel converts a level name into a SkillLevel. Unknown names map
// to LevelApprentice so that a misconfigured technician is never overrated.
func ParseSkillLevel(s string) SkillLevel {
	switch s {
	case "junior":
		return LevelJunior
	case "senior":
		return LevelSenior
	case "lead":
		return LevelLead
	case "supervisor":
		return LevelSupervisor
	default:
		return LevelApprentice
	}
}

// ExperienceScore returns the fixed experience component used when scoring
// candidates.
func (l SkillLevel) ExperienceScore() float64 {
	switch l {
	case LevelJunior:
		return 70
	case LevelSenior:
		return 90
	case LevelLead:
		return 95
	case LevelSupervisor:
		return 100
	default:
		return 60
	}
}

// MaxJobsPerDay returns the daily job capacity for the level. Supervisors
// mostly supervise, so their capacity is capped despite seniority.
func (l SkillLevel) MaxJobsPerDay() int {
	switch l {
	case LevelJunior:
		return 4
	case LevelSenior:
		return 6
	case LevelLead:
		return 5
	case LevelSupervisor:
		return 3
	default:
		return 3
	}
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// TechnicianAvailability is the scheduling view of a technician for a single
// day. It is assembled fresh from the technician directory on every
// scheduling attempt and never persisted by the engine.
type TechnicianAvailability struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Status   string      `json:"status"`
	Level    SkillLevel  `json:"level"`
	Skills   []string    `json:"skills"`
	Location Coordinates `json:"location"`

	// WorkDayStart and WorkDayEnd bound the working window as "HH:mm".
	WorkDayStart string `json:"work_day_start"`
	WorkDayEnd   string `json:"work_day_end"`

	// Jobs holds the technician's bookings for the day in question.
	Jobs []ScheduledJob `json:"jobs"`

	// TravelBufferMinutes pads every booking on both sides when checking
	// slot conflicts.
	TravelBufferMinutes int `json:"travel_buffer_minutes"`
}

// ScheduledJobCount returns the number of bookings still in the SCHEDULED
// state. Jobs in progress occupy the calendar but no longer count against
// the daily intake.
func (t TechnicianAvailability) ScheduledJobCount() int {
	n := 0
	for _, j := range t.Jobs {
		if j.Status == JobScheduled {
			n++
		}
	}
	return n
}

// WorkWindow resolves the working-hour bounds for the given date.
func (t TechnicianAvailability) WorkWindow(date time.Time) (time.Time, time.Time, error) {
	start, err := atClock(date, t.WorkDayStart)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := atClock(date, t.WorkDayEnd)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func atClock(date time.Time, hhmm string) (time.Time, error) {
	c, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, date.Location()), nil
}
