package dispatch

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/Cooliber/Fulmark20CRM-sub003/core/geo"
	"github.com/Cooliber/Fulmark20CRM-sub003/core/model"
)

// ScoreThreshold drops technicians whose weighted score falls below it.
const ScoreThreshold = 30

// CandidateScorer ranks technicians against a request using a weighted sum
// of skill match, experience, proximity and workload. The weights can be
// tuned but default to the production mix.
type CandidateScorer struct {
	SkillWeight      float64
	ExperienceWeight float64
	ProximityWeight  float64
	WorkloadWeight   float64
}

// NewCandidateScorer returns a scorer with the default weights.
func NewCandidateScorer() *CandidateScorer {
	return &CandidateScorer{
		SkillWeight:      0.40,
		ExperienceWeight: 0.20,
		ProximityWeight:  0.25,
		WorkloadWeight:   0.15,
	}
}

// RankedCandidate pairs a technician with its computed score.
type RankedCandidate struct {
	Technician model.TechnicianAvailability
	Score      int
}

// Score computes the weighted score for one technician, rounded to the
// nearest integer in [0,100].
func (s *CandidateScorer) Score(req model.SchedulingRequest, tech model.TechnicianAvailability) int {
	skill := skillMatchScore(req.RequiredSkills, tech.Skills)
	exp := tech.Level.ExperienceScore()
	prox := proximityScore(geo.Distance(tech.Location, req.Location))
	load := workloadScore(tech)

	total := skill*s.SkillWeight + exp*s.ExperienceWeight + prox*s.ProximityWeight + load*s.WorkloadWeight
	return int(math.Round(total))
}

// Rank scores every technician concurrently, drops those below the
// threshold and returns the survivors ordered by descending score. Ties keep
// the directory order.
func (s *CandidateScorer) Rank(req model.SchedulingRequest, techs []model.TechnicianAvailability) []RankedCandidate {
	scores := make([]int, len(techs))
	var wg sync.WaitGroup
	for i := range techs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scores[i] = s.Score(req, techs[i])
		}(i)
	}
	wg.Wait()

	ranked := make([]RankedCandidate, 0, len(techs))
	for i, t := range techs {
		if scores[i] < ScoreThreshold {
			continue
		}
		ranked = append(ranked, RankedCandidate{Technician: t, Score: scores[i]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// skillMatchScore returns the fraction of required skills matched by the
// technician, as a percentage. A required skill matches when it appears as a
// case-insensitive substring of any technician skill. No requirements means
// a full match.
func skillMatchScore(required, offered []string) float64 {
	if len(required) == 0 {
		return 100
	}
	matched := 0
	for _, want := range required {
		w := strings.ToLower(want)
		for _, have := range offered {
			if strings.Contains(strings.ToLower(have), w) {
				matched++
				break
			}
		}
	}
	return float64(matched) / float64(len(required)) * 100
}

// proximityScore bands the distance to the customer.
func proximityScore(km float64) float64 {
	switch {
	case km <= 5:
		return 100
	case km <= 15:
		return 80
	case km <= 30:
		return 60
	case km <= 50:
		return 40
	default:
		return 20
	}
}

// workloadScore rewards technicians with remaining daily capacity. Only jobs
// still in the SCHEDULED state count against the cap.
func workloadScore(tech model.TechnicianAvailability) float64 {
	max := tech.Level.MaxJobsPerDay()
	if max <= 0 {
		return 0
	}
	score := (1 - float64(tech.ScheduledJobCount())/float64(max)) * 100
	if score < 0 {
		return 0
	}
	return score
}
