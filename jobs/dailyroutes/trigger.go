// Package dailyroutes implements the daily route-optimization batch. The
// trigger is invoked by an external scheduler (OS cron, job queue); the
// engine keeps no internal timer.
package dailyroutes

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/dispatch"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/events"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/logger"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/routing"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
)

// Trigger runs route optimization across the technician pool for one day.
type Trigger struct {
	directory dispatch.TechnicianDirectory
	optimizer *routing.RouteOptimizer
	log       logger.Logger
	metrics   metrics.MetricsSink
	bus       eventbus.EventBus
}

// NewTrigger creates a trigger. The directory is mandatory; sink and bus may
// be nil.
func NewTrigger(directory dispatch.TechnicianDirectory, sink metrics.MetricsSink, bus eventbus.EventBus, log logger.Logger) (*Trigger, error) {
	if directory == nil {
		return nil, fmt.Errorf("dailyroutes: nil directory provided to NewTrigger")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Trigger{
		directory: directory,
		optimizer: routing.NewRouteOptimizer(),
		log:       log,
		metrics:   sink,
		bus:       bus,
	}, nil
}

// Run optimizes every technician with more than one job on the date. The
// optimizations fan out across goroutines and join before reporting; one
// technician's failure never aborts the batch.
func (t *Trigger) Run(ctx context.Context, date time.Time) ([]model.RouteOptimization, error) {
	techs, err := t.directory.ListAvailable(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("dailyroutes: list technicians: %w", err)
	}

	var eligible []model.TechnicianAvailability
	for _, tech := range techs {
		jobs := 0
		for _, j := range tech.Jobs {
			if j.Status.Blocking() {
				jobs++
			}
		}
		if jobs > 1 {
			eligible = append(eligible, tech)
		}
	}
	if len(eligible) == 0 {
		t.log.Infof("daily optimization for %s: nothing to do", date.Format("2006-01-02"))
		return nil, nil
	}

	results := make([]model.RouteOptimization, len(eligible))
	errs := make([]error, len(eligible))
	var wg sync.WaitGroup
	for i, tech := range eligible {
		wg.Add(1)
		go func(i int, tech model.TechnicianAvailability) {
			defer wg.Done()
			results[i], errs[i] = t.optimizer.Optimize(tech)
		}(i, tech)
	}
	wg.Wait()

	var optimized []model.RouteOptimization
	for i := range eligible {
		if errs[i] != nil {
			t.log.Errorf("route optimization for %s failed: %v", eligible[i].ID, errs[i])
			continue
		}
		optimized = append(optimized, results[i])
	}

	t.report(date, optimized)
	return optimized, nil
}

// report surfaces per-technician results and the batch aggregate.
func (t *Trigger) report(date time.Time, optimized []model.RouteOptimization) {
	if len(optimized) == 0 {
		return
	}
	now := time.Now()
	records := make([]metrics.RouteRecord, 0, len(optimized))
	efficiencies := make([]float64, 0, len(optimized))
	savings := make([]float64, 0, len(optimized))

	for _, r := range optimized {
		records = append(records, metrics.RouteRecord{
			TechnicianID:   r.TechnicianID,
			Jobs:           len(r.Jobs),
			TravelMinutes:  r.TotalTravelMinutes,
			WorkMinutes:    r.TotalWorkMinutes,
			Efficiency:     r.Efficiency,
			FuelSavingsPLN: r.FuelSavingsPLN,
			Time:           now,
		})
		efficiencies = append(efficiencies, r.Efficiency)
		savings = append(savings, r.FuelSavingsPLN)
		if t.bus != nil {
			t.bus.Publish(events.RouteOptimizedEvent{
				TechnicianID:   r.TechnicianID,
				Jobs:           len(r.Jobs),
				Efficiency:     r.Efficiency,
				FuelSavingsPLN: r.FuelSavingsPLN,
			})
		}
	}

	if rr, ok := t.metrics.(metrics.RouteRecorder); ok {
		if err := rr.RecordRouteOptimizations(records); err != nil {
			t.log.Errorf("route metrics error: %v", err)
		}
	}

	t.log.Debugw("daily optimization report", map[string]any{
		"date":        date.Format("2006-01-02"),
		"technicians": len(optimized),
	})
	t.log.Infof("optimized %d technicians for %s: mean efficiency %.1f%%, fuel savings %.2f PLN",
		len(optimized), date.Format("2006-01-02"), stat.Mean(efficiencies, nil), floats.Sum(savings))
}
