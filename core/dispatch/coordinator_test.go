package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/events"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
)

type fakeDirectory struct {
	available []model.TechnicianAvailability
	all       []model.TechnicianAvailability
	err       error
}

func (d fakeDirectory) ListAvailable(context.Context, time.Time) ([]model.TechnicianAvailability, error) {
	return d.available, d.err
}

func (d fakeDirectory) ListAll(context.Context, time.Time) ([]model.TechnicianAvailability, error) {
	if d.all != nil {
		return d.all, d.err
	}
	return d.available, d.err
}

func (d fakeDirectory) LocationOf(_ context.Context, id string) (model.Coordinates, error) {
	for _, t := range d.available {
		if t.ID == id {
			return t.Location, nil
		}
	}
	return model.Coordinates{}, errors.New("unknown technician")
}

type fakeClock struct{ t time.Time }

func (c fakeClock) Now() time.Time { return c.t }

func senior(id string, km float64) model.TechnicianAvailability {
	return model.TechnicianAvailability{
		ID:                  id,
		Name:                "Tech " + id,
		Status:              "available",
		Level:               model.LevelSenior,
		Skills:              []string{"REFRIGERATION", "HVAC"},
		Location:            nearby(km),
		WorkDayStart:        "08:00",
		WorkDayEnd:          "16:00",
		TravelBufferMinutes: 15,
	}
}

func newTestCoordinator(t *testing.T, dir TechnicianDirectory, store TicketStore) *DispatchCoordinator {
	t.Helper()
	c, err := NewDispatchCoordinator(dir, store, Config{}, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	c.SetClock(fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)})
	return c
}

func request() model.SchedulingRequest {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	return model.SchedulingRequest{
		TicketID:          "T-100",
		Priority:          "HIGH",
		ServiceType:       "repair",
		EstimatedDuration: 60,
		RequiredSkills:    []string{"REFRIGERATION"},
		PreferredDate:     &date,
		Location:          warsaw,
	}
}

func TestScheduleSuccess(t *testing.T) {
	tech := senior("t1", 3)
	tech.Jobs = []model.ScheduledJob{{Status: model.JobScheduled}}
	store := NewMemoryTicketStore()
	c := newTestCoordinator(t, fakeDirectory{available: []model.TechnicianAvailability{tech}}, store)

	res, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected success, got reason %q", res.Reason)
	}
	if res.TechnicianID != "t1" {
		t.Fatalf("expected t1, got %s", res.TechnicianID)
	}
	if res.Confidence < 95 || res.Confidence > 97 {
		t.Fatalf("expected confidence around 95-97, got %d", res.Confidence)
	}
	want := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if !res.ScheduledTime.Equal(want) {
		t.Fatalf("expected slot %v, got %v", want, res.ScheduledTime)
	}
	if !res.EstimatedArrival.After(res.ScheduledTime) {
		t.Fatalf("arrival must account for travel time")
	}
	asn := store.Assignments()
	if len(asn) != 1 || asn[0].TicketID != "T-100" || asn[0].TechnicianID != "t1" {
		t.Fatalf("write-back missing or wrong: %+v", asn)
	}
}

func TestScheduleNoTechnicians(t *testing.T) {
	c := newTestCoordinator(t, fakeDirectory{}, NewMemoryTicketStore())
	res, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure")
	}
	if res.Reason != ReasonNoTechnicians {
		t.Fatalf("expected %q, got %q", ReasonNoTechnicians, res.Reason)
	}
	if res.Confidence != 0 {
		t.Fatalf("expected confidence 0, got %d", res.Confidence)
	}
}

func TestScheduleNoSuitableCandidates(t *testing.T) {
	tech := model.TechnicianAvailability{
		ID: "t1", Status: "available", Level: model.LevelApprentice,
		Skills: []string{"PLUMBING"}, Location: nearby(90),
		WorkDayStart: "08:00", WorkDayEnd: "16:00",
		Jobs: []model.ScheduledJob{
			{Status: model.JobScheduled}, {Status: model.JobScheduled}, {Status: model.JobScheduled},
		},
	}
	c := newTestCoordinator(t, fakeDirectory{available: []model.TechnicianAvailability{tech}}, NewMemoryTicketStore())
	res, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Reason != ReasonNoCandidates {
		t.Fatalf("expected %q, got %+v", ReasonNoCandidates, res)
	}
}

func TestScheduleAlternativesWhenTopBooked(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	busy := senior("busy", 1)
	busy.Jobs = []model.ScheduledJob{{
		Start:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
		Status: model.JobScheduled,
	}}
	free1 := senior("free1", 12)
	free2 := senior("free2", 25)
	c := newTestCoordinator(t, fakeDirectory{available: []model.TechnicianAvailability{busy, free1, free2}}, NewMemoryTicketStore())

	req := request()
	req.PreferredDate = &date
	res, err := c.ScheduleServiceRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success {
		t.Fatalf("expected failure with alternatives")
	}
	if res.Reason != ReasonNoSlot {
		t.Fatalf("expected %q, got %q", ReasonNoSlot, res.Reason)
	}
	if len(res.Alternatives) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(res.Alternatives))
	}
	if res.Alternatives[0].TechnicianID != "free1" {
		t.Fatalf("expected free1 first, got %s", res.Alternatives[0].TechnicianID)
	}
	for _, a := range res.Alternatives {
		if a.Confidence <= 0 || a.ProposedTime.IsZero() {
			t.Fatalf("malformed alternative %+v", a)
		}
	}
}

func TestScheduleAlternativesCapped(t *testing.T) {
	date := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	busy := senior("busy", 1)
	busy.Jobs = []model.ScheduledJob{{
		Start:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
		Status: model.JobScheduled,
	}}
	pool := []model.TechnicianAvailability{busy}
	for _, spec := range []struct {
		id string
		km float64
	}{{"a", 8}, {"b", 10}, {"c", 12}, {"d", 14}} {
		pool = append(pool, senior(spec.id, spec.km))
	}
	c := newTestCoordinator(t, fakeDirectory{available: pool}, NewMemoryTicketStore())

	req := request()
	req.PreferredDate = &date
	res, err := c.ScheduleServiceRequest(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Alternatives) != 3 {
		t.Fatalf("expected alternatives capped at 3, got %d", len(res.Alternatives))
	}
}

func TestScheduleIdempotentOnUnchangedPool(t *testing.T) {
	tech := senior("t1", 3)
	dir := fakeDirectory{available: []model.TechnicianAvailability{tech}}
	c := newTestCoordinator(t, dir, NewMemoryTicketStore())

	first, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first.TechnicianID != second.TechnicianID || !first.ScheduledTime.Equal(second.ScheduledTime) {
		t.Fatalf("scheduling not idempotent: %+v vs %+v", first, second)
	}
}

func TestScheduleSlotConflictReported(t *testing.T) {
	tech := senior("t1", 3)
	store := NewMemoryTicketStore()
	c := newTestCoordinator(t, fakeDirectory{available: []model.TechnicianAvailability{tech}}, store)

	// Another ticket already claimed the first slot of the day.
	slot := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	if err := store.MarkScheduled(context.Background(), "T-OTHER", "t1", slot); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	res, err := c.ScheduleServiceRequest(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Reason != ReasonSlotConflict {
		t.Fatalf("expected conflict failure, got %+v", res)
	}
}

func TestScheduleDirectoryErrorPropagates(t *testing.T) {
	c := newTestCoordinator(t, fakeDirectory{err: errors.New("directory down")}, NewMemoryTicketStore())
	if _, err := c.ScheduleServiceRequest(context.Background(), request()); err == nil {
		t.Fatalf("expected collaborator error to propagate")
	}
}

func TestEmergencyPicksClosestTechnician(t *testing.T) {
	near := senior("near", 2)
	far := senior("far", 20)
	// Emergency draws from the full pool, including off-duty technicians.
	far.Status = "off_duty"
	store := NewMemoryTicketStore()
	c := newTestCoordinator(t, fakeDirectory{all: []model.TechnicianAvailability{far, near}}, store)

	res, err := c.HandleEmergencyScheduling(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success || res.TechnicianID != "near" {
		t.Fatalf("expected near technician, got %+v", res)
	}
	if res.Confidence != 95 {
		t.Fatalf("emergency confidence must be 95, got %d", res.Confidence)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if !res.ScheduledTime.After(now) {
		t.Fatalf("emergency must schedule after now")
	}
	if len(store.Assignments()) != 1 {
		t.Fatalf("expected emergency write-back")
	}
}

func TestEmergencyEmptyPool(t *testing.T) {
	c := newTestCoordinator(t, fakeDirectory{}, NewMemoryTicketStore())
	res, err := c.HandleEmergencyScheduling(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Success || res.Reason != ReasonNoTechnicians {
		t.Fatalf("expected empty-pool failure, got %+v", res)
	}
}

func TestEmergencyIgnoresBookings(t *testing.T) {
	tech := senior("t1", 2)
	// Fully booked day: the normal path would fail, the override must not.
	tech.Jobs = []model.ScheduledJob{{
		Start:  time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		End:    time.Date(2026, 3, 2, 16, 0, 0, 0, time.UTC),
		Status: model.JobScheduled,
	}}
	c := newTestCoordinator(t, fakeDirectory{all: []model.TechnicianAvailability{tech}}, NewMemoryTicketStore())
	res, err := c.HandleEmergencyScheduling(context.Background(), request())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Success {
		t.Fatalf("emergency must ignore existing bookings, got %+v", res)
	}
}

func TestSchedulePublishesEvents(t *testing.T) {
	tech := senior("t1", 3)
	bus := eventbus.New()
	ch := bus.Subscribe()
	c, err := NewDispatchCoordinator(fakeDirectory{available: []model.TechnicianAvailability{tech}}, NewMemoryTicketStore(), Config{}, nil, bus, nil, nil)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	c.SetClock(fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)})

	if _, err := c.ScheduleServiceRequest(context.Background(), request()); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	var sawAssignment bool
	for len(ch) > 0 {
		if ev, ok := (<-ch).(events.AssignmentEvent); ok {
			sawAssignment = true
			if ev.TicketID != "T-100" || ev.TechnicianID != "t1" {
				t.Fatalf("unexpected assignment event %+v", ev)
			}
		}
	}
	if !sawAssignment {
		t.Fatalf("expected an assignment event on the bus")
	}
}

func TestNewDispatchCoordinatorValidation(t *testing.T) {
	if _, err := NewDispatchCoordinator(nil, NewMemoryTicketStore(), Config{}, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil directory")
	}
	if _, err := NewDispatchCoordinator(fakeDirectory{}, nil, Config{}, nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil ticket store")
	}
}
