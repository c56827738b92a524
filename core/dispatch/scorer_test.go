package dispatch

import (
	"testing"
	"time"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

var warsaw = model.Coordinates{Lat: 52.2297, Lon: 21.0122}

// nearby returns a point roughly km kilometres north of warsaw.
func nearby(km float64) model.Coordinates {
	return model.Coordinates{Lat: warsaw.Lat + km/111.19, Lon: warsaw.Lon}
}

func TestScoreWithinBounds(t *testing.T) {
	s := NewCandidateScorer()
	techs := []model.TechnicianAvailability{
		{ID: "t1", Level: model.LevelSupervisor, Skills: []string{"HVAC"}, Location: warsaw},
		{ID: "t2", Level: model.LevelApprentice, Skills: nil, Location: nearby(80)},
		{ID: "t3", Level: model.LevelSenior, Skills: []string{"REFRIGERATION", "HVAC"}, Location: nearby(10)},
	}
	req := model.SchedulingRequest{TicketID: "T-1", RequiredSkills: []string{"REFRIGERATION"}, Location: warsaw}
	for _, tech := range techs {
		got := s.Score(req, tech)
		if got < 0 || got > 100 {
			t.Fatalf("score for %s out of bounds: %d", tech.ID, got)
		}
	}
}

func TestScoreNoSkillOverlapExcluded(t *testing.T) {
	s := NewCandidateScorer()
	// Zero skill match, apprentice far away with no capacity left: falls
	// below the threshold and is dropped.
	tech := model.TechnicianAvailability{
		ID:       "t1",
		Level:    model.LevelApprentice,
		Skills:   []string{"PLUMBING"},
		Location: nearby(80),
		Jobs: []model.ScheduledJob{
			{Status: model.JobScheduled}, {Status: model.JobScheduled}, {Status: model.JobScheduled},
		},
	}
	req := model.SchedulingRequest{RequiredSkills: []string{"REFRIGERATION"}, Location: warsaw}
	if got := s.Score(req, tech); got >= ScoreThreshold {
		t.Fatalf("expected score below threshold, got %d", got)
	}
	ranked := s.Rank(req, []model.TechnicianAvailability{tech})
	if len(ranked) != 0 {
		t.Fatalf("expected technician to be dropped, got %d candidates", len(ranked))
	}
}

func TestScoreRefrigerationScenario(t *testing.T) {
	// Senior technician 3 km away with the required skill and 1 of 6 max
	// jobs booked: proximity 100, experience 90, skill 100, workload ~83.3.
	s := NewCandidateScorer()
	tech := model.TechnicianAvailability{
		ID:       "t1",
		Level:    model.LevelSenior,
		Skills:   []string{"REFRIGERATION"},
		Location: nearby(3),
		Jobs:     []model.ScheduledJob{{Status: model.JobScheduled}},
	}
	req := model.SchedulingRequest{RequiredSkills: []string{"REFRIGERATION"}, EstimatedDuration: 60, Location: warsaw}
	got := s.Score(req, tech)
	if got < 95 || got > 97 {
		t.Fatalf("expected score around 95-97, got %d", got)
	}
}

func TestSkillMatchCaseInsensitiveSubstring(t *testing.T) {
	if got := skillMatchScore([]string{"refrigeration"}, []string{"Industrial Refrigeration Systems"}); got != 100 {
		t.Fatalf("expected substring match, got %v", got)
	}
	if got := skillMatchScore([]string{"HVAC", "GAS"}, []string{"hvac maintenance"}); got != 50 {
		t.Fatalf("expected half match, got %v", got)
	}
	if got := skillMatchScore(nil, nil); got != 100 {
		t.Fatalf("no required skills should be a full match, got %v", got)
	}
}

func TestProximityBands(t *testing.T) {
	cases := []struct {
		km   float64
		want float64
	}{
		{3, 100}, {5, 100}, {10, 80}, {25, 60}, {45, 40}, {90, 20},
	}
	for _, c := range cases {
		if got := proximityScore(c.km); got != c.want {
			t.Fatalf("proximity for %v km: expected %v got %v", c.km, c.want, got)
		}
	}
}

func TestWorkloadCountsOnlyScheduledJobs(t *testing.T) {
	tech := model.TechnicianAvailability{
		Level: model.LevelJunior, // max 4
		Jobs: []model.ScheduledJob{
			{Status: model.JobScheduled},
			{Status: model.JobCompleted},
			{Status: model.JobCancelled},
			{Status: model.JobInProgress},
		},
	}
	if got := workloadScore(tech); got != 75 {
		t.Fatalf("expected workload 75, got %v", got)
	}
}

func TestRankStableOnTies(t *testing.T) {
	s := NewCandidateScorer()
	// Identical technicians: directory order must be preserved.
	mk := func(id string) model.TechnicianAvailability {
		return model.TechnicianAvailability{ID: id, Level: model.LevelSenior, Skills: []string{"HVAC"}, Location: warsaw}
	}
	req := model.SchedulingRequest{RequiredSkills: []string{"HVAC"}, Location: warsaw}
	ranked := s.Rank(req, []model.TechnicianAvailability{mk("a"), mk("b"), mk("c")})
	if len(ranked) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(ranked))
	}
	for i, want := range []string{"a", "b", "c"} {
		if ranked[i].Technician.ID != want {
			t.Fatalf("tie order broken at %d: got %s", i, ranked[i].Technician.ID)
		}
	}
}

func TestRankDescending(t *testing.T) {
	s := NewCandidateScorer()
	techs := []model.TechnicianAvailability{
		{ID: "far", Level: model.LevelJunior, Skills: []string{"HVAC"}, Location: nearby(40)},
		{ID: "near", Level: model.LevelSenior, Skills: []string{"HVAC"}, Location: warsaw},
	}
	req := model.SchedulingRequest{RequiredSkills: []string{"HVAC"}, Location: warsaw}
	ranked := s.Rank(req, techs)
	if len(ranked) != 2 || ranked[0].Technician.ID != "near" {
		t.Fatalf("expected near technician first, got %+v", ranked)
	}
	if ranked[0].Score < ranked[1].Score {
		t.Fatalf("ranking not descending: %d < %d", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankIdempotent(t *testing.T) {
	s := NewCandidateScorer()
	techs := []model.TechnicianAvailability{
		{ID: "a", Level: model.LevelSenior, Skills: []string{"HVAC"}, Location: nearby(4)},
		{ID: "b", Level: model.LevelLead, Skills: []string{"HVAC"}, Location: nearby(12)},
	}
	req := model.SchedulingRequest{RequiredSkills: []string{"HVAC"}, Location: warsaw, PreferredDate: timePtr(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC))}
	first := s.Rank(req, techs)
	second := s.Rank(req, techs)
	if len(first) != len(second) {
		t.Fatalf("rank size changed between runs")
	}
	for i := range first {
		if first[i].Technician.ID != second[i].Technician.ID || first[i].Score != second[i].Score {
			t.Fatalf("rank not deterministic at %d", i)
		}
	}
}

func timePtr(t time.Time) *time.Time { return &t }
