package matching

import (
	"fmt"
	"sort"
	"strings"

	"resume-matcher/internal/facts"
	"resume-matcher/internal/profile"
	"resume-matcher/internal/taxonomy"
)

const noProfilesNarrative = "No profiles processed for analysis."

// Result is one scored record.
type Result struct {
	DocumentID string    `json:"documentId"`
	Score      float64   `json:"score"`
	Reasons    []string  `json:"reasons"`
	Summary    string    `json:"summary"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Ranking is the answer to a query: results best first plus a narrative.
type Ranking struct {
	Query        string       `json:"query"`
	Requirements Requirements `json:"requirements"`
	Matches      []Result     `json:"bestMatches"`
	Reasoning    string       `json:"analysisReasoning"`
}

// Engine interprets a query and ranks records against it.
type Engine struct {
	Interpreter *Interpreter
	Scorer      *Scorer
}

// NewEngine uses QueryWeights over tbl (the embedded taxonomy when nil).
func NewEngine(tbl *taxonomy.Table) *Engine {
	scorer, err := NewScorer(QueryWeights)
	if err != nil {
		panic(err)
	}
	return &Engine{Interpreter: NewInterpreter(tbl), Scorer: scorer}
}

// Rank scores every record and orders them by score, best first. Equal
// scores keep the order of records.
func (e *Engine) Rank(query string, records []profile.Record) (Ranking, error) {
	req := e.Interpreter.Parse(query)
	out := Ranking{Query: query, Requirements: req, Matches: make([]Result, 0, len(records))}

	for _, rec := range records {
		score, b, err := e.Scorer.Score(CandidateFromRecord(rec), req)
		if err != nil {
			return Ranking{}, fmt.Errorf("score document %s: %w", rec.DocumentID, err)
		}
		out.Matches = append(out.Matches, Result{
			DocumentID: rec.DocumentID,
			Score:      score.Value(),
			Reasons:    Reasons(rec, b.MatchedSkills),
			Summary:    rec.Summary,
			Breakdown:  b,
		})
	}

	sort.SliceStable(out.Matches, func(i, j int) bool {
		return out.Matches[i].Score > out.Matches[j].Score
	})
	out.Reasoning = Narrate(query, out.Matches)
	return out, nil
}

// Narrate explains the top of a ranked list in prose.
func Narrate(query string, ranked []Result) string {
	if len(ranked) == 0 {
		return noProfilesNarrative
	}
	top := ranked[0]
	topScore, err := facts.NewMatchScore(top.Score)
	if err != nil {
		topScore = facts.MatchScore{}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the analysis of query '%s', the best-fitting candidate scores %s", query, topScore)
	if len(top.Reasons) > 0 {
		fmt.Fprintf(&b, " due to: %s. ", strings.Join(top.Reasons, "; "))
	} else {
		b.WriteString(". ")
	}
	if len(ranked) > 1 {
		fmt.Fprintf(&b, "The runner-up scores %.2f. ", ranked[1].Score)
	}
	b.WriteString(recommendation(topScore.Band()))
	return b.String()
}

func recommendation(band facts.Band) string {
	switch band {
	case facts.BandExcellent:
		return "Recommendation: excellent candidate for the position."
	case facts.BandGood:
		return "Recommendation: good candidate, an interview is recommended."
	case facts.BandAdequate:
		return "Recommendation: adequate candidate, evaluate other factors."
	default:
		return "Recommendation: partial match, consider alternative requirements."
	}
}
