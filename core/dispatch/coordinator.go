package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/events"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/geo"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/logger"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/metrics"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
	"github.com/Cooliber/Fulmark20CRM-sub003/internal/eventbus"
)

// Failure reasons reported in SchedulingResult when no assignment is made.
const (
	ReasonNoTechnicians = "no technicians available"
	ReasonNoCandidates  = "no suitable technicians"
	ReasonNoSlot        = "no feasible slot for best candidate"
	ReasonSlotConflict  = "slot claimed by a concurrent request"
)

// emergencyConfidence is reported for every successful emergency override.
// The override ignores normal constraints, so the candidate score does not
// apply.
const emergencyConfidence = 95

// DispatchCoordinator orchestrates scheduling: it queries the technician
// directory, ranks candidates, searches for a slot and writes the assignment
// back through the ticket store. Each request is independent; the
// coordinator holds no state across requests.
type DispatchCoordinator struct {
	directory TechnicianDirectory
	tickets   TicketStore
	scorer    *CandidateScorer
	slots     *SlotFinder
	clock     Clock
	log       logger.Logger
	metrics   metrics.MetricsSink
	bus       eventbus.EventBus
	notifier  Notifier

	maxAlternatives int
}

// NewDispatchCoordinator creates a coordinator. Directory and ticket store
// are mandatory; sink, bus and notifier may be nil.
func NewDispatchCoordinator(directory TechnicianDirectory, tickets TicketStore, cfg Config, sink metrics.MetricsSink, bus eventbus.EventBus, notifier Notifier, log logger.Logger) (*DispatchCoordinator, error) {
	if directory == nil || tickets == nil {
		return nil, fmt.Errorf("dispatch: nil collaborator provided to NewDispatchCoordinator")
	}
	cfg.SetDefaults()
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &DispatchCoordinator{
		directory:       directory,
		tickets:         tickets,
		scorer:          NewCandidateScorer(),
		slots:           &SlotFinder{SlotMinutes: cfg.SlotMinutes},
		clock:           systemClock{},
		log:             log,
		metrics:         sink,
		bus:             bus,
		notifier:        notifier,
		maxAlternatives: cfg.MaxAlternatives,
	}, nil
}

// SetClock overrides the time source, mainly for tests.
func (c *DispatchCoordinator) SetClock(clk Clock) {
	if clk != nil {
		c.clock = clk
	}
}

// ScheduleServiceRequest runs the normal scheduling path. Availability
// failures come back inside the result; only collaborator failures are
// returned as errors.
func (c *DispatchCoordinator) ScheduleServiceRequest(ctx context.Context, req model.SchedulingRequest) (model.SchedulingResult, error) {
	now := c.clock.Now()
	date := req.Date(now)
	c.publish(events.RequestEvent{Request: req})

	techs, err := c.directory.ListAvailable(ctx, date)
	if err != nil {
		return model.SchedulingResult{}, fmt.Errorf("dispatch: list available technicians: %w", err)
	}
	if len(techs) == 0 {
		return c.fail(req, ReasonNoTechnicians, nil), nil
	}

	ranked := c.scorer.Rank(req, techs)
	candidatesRanked.Observe(float64(len(ranked)))
	if len(ranked) == 0 {
		return c.fail(req, ReasonNoCandidates, nil), nil
	}
	c.log.Debugw("candidates ranked", map[string]any{
		"ticket_id":  req.TicketID,
		"candidates": len(ranked),
		"top":        ranked[0].Technician.ID,
		"top_score":  ranked[0].Score,
	})

	top := ranked[0]
	slot, found, err := c.slots.FindSlot(top.Technician, date, req.EstimatedDuration, now)
	if err != nil {
		return model.SchedulingResult{}, err
	}
	if !found {
		alts := c.alternatives(ranked[1:], req, date, now)
		return c.fail(req, ReasonNoSlot, alts), nil
	}

	travel := geo.TravelTime(top.Technician.Location, req.Location)
	job := model.ScheduledJob{
		ID:                uuid.NewString(),
		TicketID:          req.TicketID,
		Start:             slot,
		End:               slot.Add(time.Duration(req.EstimatedDuration) * time.Minute),
		Location:          req.Location,
		Status:            model.JobScheduled,
		TravelTimeMinutes: travel,
	}
	if err := c.tickets.MarkScheduled(ctx, req.TicketID, top.Technician.ID, slot); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			c.log.Warnf("ticket %s: slot %s taken concurrently", req.TicketID, slot)
			return c.fail(req, ReasonSlotConflict, nil), nil
		}
		return model.SchedulingResult{}, fmt.Errorf("dispatch: mark ticket %s scheduled: %w", req.TicketID, err)
	}

	c.recordAssignment(req, top.Technician.ID, top.Score, top.Score, false, travel, slot)
	c.notify(top.Technician.ID, job)
	assignmentScore.Observe(float64(top.Score))
	schedulingRequests.WithLabelValues("scheduled").Inc()
	c.log.Infof("ticket %s assigned to %s at %s (score %d)", req.TicketID, top.Technician.ID, slot.Format(time.RFC3339), top.Score)

	return model.SchedulingResult{
		Success:          true,
		TechnicianID:     top.Technician.ID,
		ScheduledTime:    slot,
		EstimatedArrival: slot.Add(time.Duration(travel) * time.Minute),
		Confidence:       top.Score,
	}, nil
}

// HandleEmergencyScheduling ignores bookings and working hours entirely: it
// picks the technician with the lowest travel time to the customer from the
// full pool and schedules immediately. It fails only when the pool is empty.
func (c *DispatchCoordinator) HandleEmergencyScheduling(ctx context.Context, req model.SchedulingRequest) (model.SchedulingResult, error) {
	now := c.clock.Now()
	c.publish(events.RequestEvent{Request: req, Emergency: true})

	techs, err := c.directory.ListAll(ctx, req.Date(now))
	if err != nil {
		return model.SchedulingResult{}, fmt.Errorf("dispatch: list technicians: %w", err)
	}
	if len(techs) == 0 {
		return c.fail(req, ReasonNoTechnicians, nil), nil
	}

	best := techs[0]
	bestTravel := geo.TravelTime(best.Location, req.Location)
	for _, t := range techs[1:] {
		if travel := geo.TravelTime(t.Location, req.Location); travel < bestTravel {
			best, bestTravel = t, travel
		}
	}

	scheduled := now.Add(time.Duration(bestTravel) * time.Minute)
	job := model.ScheduledJob{
		ID:                uuid.NewString(),
		TicketID:          req.TicketID,
		Start:             scheduled,
		End:               scheduled.Add(time.Duration(req.EstimatedDuration) * time.Minute),
		Location:          req.Location,
		Status:            model.JobScheduled,
		TravelTimeMinutes: bestTravel,
	}
	if err := c.tickets.MarkScheduled(ctx, req.TicketID, best.ID, scheduled); err != nil {
		return model.SchedulingResult{}, fmt.Errorf("dispatch: mark emergency ticket %s scheduled: %w", req.TicketID, err)
	}

	c.recordAssignment(req, best.ID, 0, emergencyConfidence, true, bestTravel, scheduled)
	c.notify(best.ID, job)
	emergencyOverrides.Inc()
	schedulingRequests.WithLabelValues("emergency").Inc()
	c.log.Infof("emergency ticket %s assigned to %s, arrival in %d min", req.TicketID, best.ID, bestTravel)

	return model.SchedulingResult{
		Success:          true,
		TechnicianID:     best.ID,
		ScheduledTime:    scheduled,
		EstimatedArrival: scheduled,
		Confidence:       emergencyConfidence,
	}, nil
}

// alternatives slot-searches the next-ranked candidates independently and
// proposes up to maxAlternatives of them.
func (c *DispatchCoordinator) alternatives(rest []RankedCandidate, req model.SchedulingRequest, date, now time.Time) []model.AlternativeSchedule {
	var alts []model.AlternativeSchedule
	for _, cand := range rest {
		if len(alts) >= c.maxAlternatives {
			break
		}
		slot, found, err := c.slots.FindSlot(cand.Technician, date, req.EstimatedDuration, now)
		if err != nil {
			c.log.Warnf("alternative slot search for %s: %v", cand.Technician.ID, err)
			continue
		}
		if !found {
			continue
		}
		travel := geo.TravelTime(cand.Technician.Location, req.Location)
		alts = append(alts, model.AlternativeSchedule{
			TechnicianID:     cand.Technician.ID,
			TechnicianName:   cand.Technician.Name,
			ProposedTime:     slot,
			EstimatedArrival: slot.Add(time.Duration(travel) * time.Minute),
			Confidence:       cand.Score,
			Reason:           "next available technician",
		})
	}
	return alts
}

// fail builds the failure result, records it and publishes the event.
func (c *DispatchCoordinator) fail(req model.SchedulingRequest, reason string, alts []model.AlternativeSchedule) model.SchedulingResult {
	schedulingRequests.WithLabelValues(outcomeLabel(reason)).Inc()
	c.publish(events.ScheduleFailedEvent{TicketID: req.TicketID, Reason: reason, Alternatives: len(alts)})
	if fr, ok := c.metrics.(metrics.FailureRecorder); ok {
		if err := fr.RecordFailure(metrics.FailureRecord{TicketID: req.TicketID, Reason: reason, Time: c.clock.Now()}); err != nil {
			c.log.Errorf("failure metrics error: %v", err)
		}
	}
	c.log.Warnf("ticket %s not scheduled: %s (%d alternatives)", req.TicketID, reason, len(alts))
	return model.SchedulingResult{
		Success:      false,
		Reason:       reason,
		Alternatives: alts,
		Confidence:   0,
	}
}

func (c *DispatchCoordinator) recordAssignment(req model.SchedulingRequest, techID string, score, confidence int, emergency bool, travel int, scheduled time.Time) {
	rec := metrics.AssignmentRecord{
		TicketID:      req.TicketID,
		TechnicianID:  techID,
		Score:         score,
		Confidence:    confidence,
		Emergency:     emergency,
		TravelMinutes: travel,
		ScheduledTime: scheduled,
		Time:          c.clock.Now(),
	}
	if err := c.metrics.RecordAssignments([]metrics.AssignmentRecord{rec}); err != nil {
		c.log.Errorf("assignment metrics error: %v", err)
	}
	c.publish(events.AssignmentEvent{
		TicketID:      req.TicketID,
		TechnicianID:  techID,
		ScheduledTime: scheduled,
		Confidence:    confidence,
		Emergency:     emergency,
	})
}

func (c *DispatchCoordinator) notify(techID string, job model.ScheduledJob) {
	if c.notifier == nil {
		return
	}
	if _, err := c.notifier.NotifyAssignment(techID, job); err != nil {
		c.log.Errorf("notify technician %s: %v", techID, err)
	}
}

func (c *DispatchCoordinator) publish(e eventbus.Event) {
	if c.bus != nil {
		c.bus.Publish(e)
	}
}

func outcomeLabel(reason string) string {
	switch reason {
	case ReasonNoTechnicians:
		return "no_technicians"
	case ReasonNoCandidates:
		return "no_candidates"
	case ReasonNoSlot:
		return "no_slot"
	case ReasonSlotConflict:
		return "conflict"
	default:
		return "failed"
	}
}
