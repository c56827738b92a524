// Package routing re-sequences a technician's daily jobs to cut travel
// time. The optimizer is a greedy nearest-neighbor heuristic: it trades
// optimality for determinism and a predictable runtime, which is enough for
// the handful of jobs a technician carries per day.
package routing

import (
	"fmt"
	"sort"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/geo"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

const (
	averageSpeedKmh = 40.0
	fuelCostPerKm   = 0.6 // PLN

	// optimizationSavings is the flat share of travel cost attributed to
	// the optimized ordering versus an unoptimized route. A heuristic,
	// not a measured baseline.
	optimizationSavings = 0.10
)

// RouteOptimizer orders a technician's jobs and computes efficiency and fuel
// metrics.
type RouteOptimizer struct{}

// NewRouteOptimizer returns a ready optimizer.
func NewRouteOptimizer() *RouteOptimizer {
	return &RouteOptimizer{}
}

// Optimize re-sequences the technician's blocking jobs starting from the
// technician's current location. It requires at least two jobs; single-job
// days have nothing to optimize. The returned job list is a permutation of
// the input.
func (o *RouteOptimizer) Optimize(tech model.TechnicianAvailability) (model.RouteOptimization, error) {
	jobs := blockingJobs(tech.Jobs)
	if len(jobs) < 2 {
		return model.RouteOptimization{}, fmt.Errorf("routing: technician %s has %d jobs, need at least two", tech.ID, len(jobs))
	}

	sort.SliceStable(jobs, func(i, j int) bool { return jobs[i].Start.Before(jobs[j].Start) })

	ordered := make([]model.ScheduledJob, 0, len(jobs))
	visited := make([]bool, len(jobs))
	pos := tech.Location
	totalTravel := 0

	for len(ordered) < len(jobs) {
		best := -1
		bestDist := 0.0
		for i, j := range jobs {
			if visited[i] {
				continue
			}
			d := geo.Distance(pos, j.Location)
			if best == -1 || d < bestDist {
				best, bestDist = i, d
			}
		}
		leg := geo.TravelTime(pos, jobs[best].Location)
		totalTravel += leg
		job := jobs[best]
		job.TravelTimeMinutes = leg
		ordered = append(ordered, job)
		visited[best] = true
		pos = jobs[best].Location
	}

	totalWork := 0
	for _, j := range ordered {
		totalWork += int(j.Duration().Minutes())
	}

	efficiency := 0.0
	if totalWork+totalTravel > 0 {
		efficiency = float64(totalWork) / float64(totalWork+totalTravel) * 100
	}

	travelKm := float64(totalTravel) / 60 * averageSpeedKmh
	fuelSavings := travelKm * fuelCostPerKm * optimizationSavings

	return model.RouteOptimization{
		TechnicianID:       tech.ID,
		Jobs:               ordered,
		TotalTravelMinutes: totalTravel,
		TotalWorkMinutes:   totalWork,
		Efficiency:         efficiency,
		FuelSavingsPLN:     fuelSavings,
	}, nil
}

func blockingJobs(jobs []model.ScheduledJob) []model.ScheduledJob {
	out := make([]model.ScheduledJob, 0, len(jobs))
	for _, j := range jobs {
		if j.Status.Blocking() {
			out = append(out, j)
		}
	}
	return out
}
