package matching

import (
	"fmt"
	"math"
	"strings"

	"resume-matcher/internal/facts"
	"resume-matcher/internal/profile"
)

// Weights splits a score of 1.0 across the four criteria.
type Weights struct {
	Skills     float64
	Experience float64
	Level      float64
	Keywords   float64
}

var (
	// QueryWeights scores records against a free-form query.
	QueryWeights = Weights{Skills: 0.4, Experience: 0.3, Level: 0.2, Keywords: 0.1}
	// ProfileWeights scores extracted facts without a keyword term.
	ProfileWeights = Weights{Skills: 0.5, Experience: 0.3, Level: 0.2}
)

const weightTolerance = 1e-9

// Validate requires non-negative weights summing to 1.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Skills, w.Experience, w.Level, w.Keywords} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: weights cannot be negative", facts.ErrValidation)
		}
	}
	sum := w.Skills + w.Experience + w.Level + w.Keywords
	if math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: weights must sum to 1 (got %.4f)", facts.ErrValidation, sum)
	}
	return nil
}

// Candidate is the scorer's view of one profile.
type Candidate struct {
	Skills  []string
	Years   int
	Level   facts.Level
	Summary string
}

// CandidateFromRecord reads a persisted record.
func CandidateFromRecord(r profile.Record) Candidate {
	return Candidate{Skills: r.Skills, Years: r.Years(), Level: r.Level(), Summary: r.Summary}
}

// CandidateFromProfile reads freshly extracted facts.
func CandidateFromProfile(p profile.Profile) Candidate {
	return Candidate{Skills: p.Skills.Names(), Years: p.Experience.Years(), Level: p.Level, Summary: p.Summary}
}

// Breakdown is the contribution of each criterion to a score.
type Breakdown struct {
	Skills        float64  `json:"skills"`
	Experience    float64  `json:"experience"`
	Level         float64  `json:"level"`
	Keywords      float64  `json:"keywords"`
	MatchedSkills []string `json:"matchedSkills"`
}

func (b Breakdown) Total() float64 {
	return b.Skills + b.Experience + b.Level + b.Keywords
}

// Scorer applies one weight profile.
type Scorer struct {
	weights Weights
}

func NewScorer(w Weights) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{weights: w}, nil
}

func (s *Scorer) Weights() Weights { return s.weights }

// Score sums the weighted criteria and caps the total at 1.
func (s *Scorer) Score(c Candidate, req Requirements) (facts.MatchScore, Breakdown, error) {
	b := s.breakdown(c, req)
	total := math.Min(b.Total(), 1.0)
	score, err := facts.NewMatchScore(total)
	if err != nil {
		return facts.MatchScore{}, b, err
	}
	return score, b, nil
}

func (s *Scorer) breakdown(c Candidate, req Requirements) Breakdown {
	w := s.weights
	var b Breakdown

	if len(req.Skills) > 0 {
		have := make(map[string]struct{}, len(c.Skills))
		for _, name := range c.Skills {
			have[strings.ToLower(name)] = struct{}{}
		}
		for _, name := range req.Skills {
			if _, ok := have[strings.ToLower(name)]; ok {
				b.MatchedSkills = append(b.MatchedSkills, name)
			}
		}
		b.Skills = float64(len(b.MatchedSkills)) / float64(len(req.Skills)) * w.Skills
	}

	if req.ExperienceYears > 0 {
		if c.Years >= req.ExperienceYears {
			b.Experience = w.Experience
		} else {
			b.Experience = w.Experience * float64(c.Years) / float64(req.ExperienceYears)
		}
	}

	if req.Level.Known() {
		diff := c.Level.Rank() - req.Level.Rank()
		switch {
		case diff >= 0:
			b.Level = w.Level
		case diff == -1:
			b.Level = w.Level / 2
		}
	}

	if w.Keywords > 0 && len(req.Keywords) > 0 && c.Summary != "" {
		summary := strings.ToLower(c.Summary)
		hits := 0
		for _, kw := range req.Keywords {
			if strings.Contains(summary, strings.ToLower(kw)) {
				hits++
			}
		}
		b.Keywords = float64(hits) / float64(len(req.Keywords)) * w.Keywords
	}
	return b
}

// Reasons lists why a record matched, in a fixed order.
func Reasons(r profile.Record, matched []string) []string {
	var out []string
	if len(matched) > 0 {
		out = append(out, "Matched skills: "+strings.Join(matched, ", "))
	}
	if r.ExperienceYears != "" {
		out = append(out, "Experience: "+r.ExperienceYears)
	}
	if r.PositionLevel != "" {
		out = append(out, "Level: "+r.PositionLevel)
	}
	if r.Education != "" {
		out = append(out, "Education: "+r.Education)
	}
	return out
}
