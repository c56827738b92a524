package dispatch

import (
	"context"
	"errors"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// ErrSlotTaken is returned by TicketStore implementations when the
// conditional write-back detects that the technician slot was claimed by a
// concurrent request. The coordinator reports it as an availability failure
// rather than a fatal error.
var ErrSlotTaken = errors.New("dispatch: slot already taken")

// TechnicianDirectory provides the technician pool. Implementations live in
// the surrounding CRM; they are expected to load each technician's existing
// bookings for the requested date, since workload scoring and slot conflict
// checks depend on them.
type TechnicianDirectory interface {
	// ListAvailable returns technicians available for work on the date.
	ListAvailable(ctx context.Context, date time.Time) ([]model.TechnicianAvailability, error)
	// ListAll returns every technician regardless of availability. The
	// emergency path draws from this wider pool.
	ListAll(ctx context.Context, date time.Time) ([]model.TechnicianAvailability, error)
	// LocationOf returns the current position of a technician.
	LocationOf(ctx context.Context, id string) (model.Coordinates, error)
}

// TicketStore receives the single write-back performed per successful
// assignment. Implementations must reject conflicting writes with
// ErrSlotTaken; the engine itself does not serialize access to a shared
// calendar.
type TicketStore interface {
	MarkScheduled(ctx context.Context, ticketID, technicianID string, start time.Time) error
}

// Clock abstracts time.Now for testability.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Notifier pushes an assignment to the chosen technician. Delivery is best
// effort; failures are logged but never fail the scheduling request.
type Notifier interface {
	NotifyAssignment(technicianID string, job model.ScheduledJob) (string, error)
}
