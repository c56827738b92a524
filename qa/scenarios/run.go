package scenarios

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/dispatch"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/infra/mqtt"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
)

type staticDirectory struct {
	technicians []model.TechnicianAvailability
}

func (d staticDirectory) ListAvailable(_ context.Context, date time.Time) ([]model.TechnicianAvailability, error) {
	var out []model.TechnicianAvailability
	for _, t := range d.technicians {
		if t.Status == "available" {
			out = append(out, withJobsOn(t, date))
		}
	}
	return out, nil
}

func (d staticDirectory) ListAll(_ context.Context, date time.Time) ([]model.TechnicianAvailability, error) {
	out := make([]model.TechnicianAvailability, 0, len(d.technicians))
	for _, t := range d.technicians {
		out = append(out, withJobsOn(t, date))
	}
	return out, nil
}

func (d staticDirectory) LocationOf(_ context.Context, id string) (model.Coordinates, error) {
	for _, t := range d.technicians {
		if t.ID == id {
			return t.Location, nil
		}
	}
	return model.Coordinates{}, fmt.Errorf("scenarios: unknown technician %s", id)
}

func withJobsOn(t model.TechnicianAvailability, date time.Time) model.TechnicianAvailability {
	var jobs []model.ScheduledJob
	for _, j := range t.Jobs {
		if j.Start.Year() == date.Year() && j.Start.YearDay() == date.YearDay() {
			jobs = append(jobs, j)
		}
	}
	t.Jobs = jobs
	return t
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// RunScenario drives every request of the scenario through a freshly wired
// coordinator and checks the expected outcomes.
func RunScenario(t *testing.T, sc *Scenario) {
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	if err != nil {
		t.Fatalf("prom sink: %v", err)
	}

	notifier := mqtt.NewMockNotifier()
	for _, id := range sc.FailNotify {
		notifier.FailIDs[id] = true
	}

	technicians := make([]model.TechnicianAvailability, len(sc.Technicians))
	for i, d := range sc.Technicians {
		technicians[i] = d.ToModel()
	}

	store := dispatch.NewMemoryTicketStore()
	coord, err := dispatch.NewDispatchCoordinator(
		staticDirectory{technicians: technicians},
		store,
		dispatch.Config{},
		sink,
		eventbus.New(),
		notifier,
		nil,
	)
	if err != nil {
		t.Fatalf("coordinator: %v", err)
	}
	now := sc.Now
	if now.IsZero() {
		now = time.Now()
	}
	coord.SetClock(fixedClock{t: now})

	scheduled := 0
	for _, reqDef := range sc.Requests {
		req := reqDef.ToModel()
		var res model.SchedulingResult
		if reqDef.Emergency {
			res, err = coord.HandleEmergencyScheduling(context.Background(), req)
		} else {
			res, err = coord.ScheduleServiceRequest(context.Background(), req)
		}
		if err != nil {
			t.Fatalf("scenario %s, ticket %s: %v", sc.Name, req.TicketID, err)
		}
		if res.Success {
			scheduled++
		}
		if want, ok := sc.Expected.Assignments[req.TicketID]; ok && res.TechnicianID != want {
			t.Errorf("scenario %s: ticket %s assigned to %s, want %s", sc.Name, req.TicketID, res.TechnicianID, want)
		}
	}

	if scheduled != sc.Expected.Scheduled {
		t.Errorf("scenario %s: expected %d scheduled, got %d", sc.Name, sc.Expected.Scheduled, scheduled)
	}
}
