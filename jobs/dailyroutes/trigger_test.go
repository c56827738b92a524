package dailyroutes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/events"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
)

type stubDirectory struct {
	techs []model.TechnicianAvailability
	err   error
}

func (d stubDirectory) ListAvailable(context.Context, time.Time) ([]model.TechnicianAvailability, error) {
	return d.techs, d.err
}

func (d stubDirectory) ListAll(ctx context.Context, date time.Time) ([]model.TechnicianAvailability, error) {
	return d.ListAvailable(ctx, date)
}

func (d stubDirectory) LocationOf(context.Context, string) (model.Coordinates, error) {
	return model.Coordinates{}, errors.New("not implemented")
}

type recordingSink struct {
	metrics.NopSink
	routes []metrics.RouteRecord
}

func (s *recordingSink) RecordRouteOptimizations(rs []metrics.RouteRecord) error {
	s.routes = append(s.routes, rs...)
	return nil
}

var depot = model.Coordinates{Lat: 52.2297, Lon: 21.0122}

func jobAt(km float64, hour, minutes int) model.ScheduledJob {
	start := time.Date(2026, 3, 2, hour, 0, 0, 0, time.UTC)
	return model.ScheduledJob{
		ID:       start.Format("15:04"),
		Start:    start,
		End:      start.Add(time.Duration(minutes) * time.Minute),
		Location: model.Coordinates{Lat: depot.Lat + km/111.19, Lon: depot.Lon},
		Status:   model.JobScheduled,
	}
}

func fleetTech(id string, jobs ...model.ScheduledJob) model.TechnicianAvailability {
	return model.TechnicianAvailability{ID: id, Status: "available", Location: depot, Jobs: jobs}
}

func TestRunOptimizesEligibleTechnicians(t *testing.T) {
	dir := stubDirectory{techs: []model.TechnicianAvailability{
		fleetTech("multi", jobAt(3, 8, 60), jobAt(10, 10, 90)),
		fleetTech("single", jobAt(5, 9, 60)),
		fleetTech("idle"),
	}}
	sink := &recordingSink{}
	trig, err := NewTrigger(dir, sink, nil, nil)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}

	routes, err := trig.Run(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(routes) != 1 || routes[0].TechnicianID != "multi" {
		t.Fatalf("expected only the multi-job technician optimized, got %+v", routes)
	}
	if len(sink.routes) != 1 || sink.routes[0].TechnicianID != "multi" {
		t.Fatalf("expected one route record, got %+v", sink.routes)
	}
	if sink.routes[0].Jobs != 2 || sink.routes[0].WorkMinutes != 150 {
		t.Fatalf("route record totals wrong: %+v", sink.routes[0])
	}
}

func TestRunEmptyPool(t *testing.T) {
	trig, err := NewTrigger(stubDirectory{}, nil, nil, nil)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	routes, err := trig.Run(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if routes != nil {
		t.Fatalf("expected no routes, got %+v", routes)
	}
}

func TestRunIgnoresCompletedJobs(t *testing.T) {
	done := jobAt(3, 8, 60)
	done.Status = model.JobCompleted
	dir := stubDirectory{techs: []model.TechnicianAvailability{
		fleetTech("t1", done, jobAt(5, 10, 60)),
	}}
	trig, err := NewTrigger(dir, nil, nil, nil)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	routes, err := trig.Run(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	// One blocking job left, below the two-job bar for optimization.
	if len(routes) != 0 {
		t.Fatalf("expected no eligible technicians, got %+v", routes)
	}
}

func TestRunDirectoryError(t *testing.T) {
	trig, err := NewTrigger(stubDirectory{err: errors.New("down")}, nil, nil, nil)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, err := trig.Run(context.Background(), time.Now()); err == nil {
		t.Fatalf("expected directory error to propagate")
	}
}

func TestRunPublishesRouteEvents(t *testing.T) {
	bus := eventbus.New()
	ch := bus.Subscribe()
	dir := stubDirectory{techs: []model.TechnicianAvailability{
		fleetTech("t1", jobAt(2, 8, 60), jobAt(6, 10, 60)),
		fleetTech("t2", jobAt(4, 9, 60), jobAt(8, 11, 60)),
	}}
	trig, err := NewTrigger(dir, nil, bus, nil)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if _, err := trig.Run(context.Background(), time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("run: %v", err)
	}

	seen := make(map[string]bool)
	for len(ch) > 0 {
		if ev, ok := (<-ch).(events.RouteOptimizedEvent); ok {
			seen[ev.TechnicianID] = true
		}
	}
	if !seen["t1"] || !seen["t2"] {
		t.Fatalf("expected route events for both technicians, got %v", seen)
	}
}

func TestNewTriggerRequiresDirectory(t *testing.T) {
	if _, err := NewTrigger(nil, nil, nil, nil); err == nil {
		t.Fatalf("expected error for nil directory")
	}
}
