package dispatch

import (
	"fmt"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// SlotFinder searches a technician's working window for a feasible start
// time at a fixed granularity.
type SlotFinder struct {
	// SlotMinutes is the candidate-slot step.
	SlotMinutes int
}

// NewSlotFinder returns a finder with the default 30-minute granularity.
func NewSlotFinder() *SlotFinder {
	return &SlotFinder{SlotMinutes: 30}
}

// FindSlot returns the first chronologically feasible start time for a job
// of the given duration on the technician's date, or false when the day is
// fully booked. Candidate slots on the current date that already passed are
// skipped. A slot is feasible when the candidate window does not overlap any
// blocking job expanded by the technician's travel buffer on both sides.
func (f *SlotFinder) FindSlot(tech model.TechnicianAvailability, date time.Time, durationMinutes int, now time.Time) (time.Time, bool, error) {
	step := time.Duration(f.SlotMinutes) * time.Minute
	if step <= 0 {
		return time.Time{}, false, fmt.Errorf("dispatch: slot granularity must be positive, got %d", f.SlotMinutes)
	}
	dayStart, dayEnd, err := tech.WorkWindow(date)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("dispatch: work window for %s: %w", tech.ID, err)
	}
	duration := time.Duration(durationMinutes) * time.Minute
	buffer := time.Duration(tech.TravelBufferMinutes) * time.Minute
	sameDay := now.Year() == date.Year() && now.YearDay() == date.YearDay()

	for start := dayStart; !start.Add(duration).After(dayEnd); start = start.Add(step) {
		if sameDay && start.Before(now) {
			continue
		}
		if f.feasible(tech.Jobs, start, start.Add(duration), buffer) {
			return start, true, nil
		}
	}
	return time.Time{}, false, nil
}

// feasible checks the candidate window against every blocking job expanded
// by the travel buffer.
func (f *SlotFinder) feasible(jobs []model.ScheduledJob, start, end time.Time, buffer time.Duration) bool {
	for _, j := range jobs {
		if !j.Status.Blocking() {
			continue
		}
		blockedFrom := j.Start.Add(-buffer)
		blockedTo := j.End.Add(buffer)
		if start.Before(blockedTo) && end.After(blockedFrom) {
			return false
		}
	}
	return true
}
