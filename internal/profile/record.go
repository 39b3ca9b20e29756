package profile

import (
	"time"

	"resume-matcher/internal/facts"
)

// Record is the persisted outcome of analysing one document. It is written
// once and never modified.
type Record struct {
	DocumentID      string    `json:"documentId"`
	Summary         string    `json:"summary"`
	Skills          []string  `json:"skills"`
	ExperienceYears string    `json:"experienceYears,omitempty"`
	PositionLevel   string    `json:"positionLevel,omitempty"`
	Education       string    `json:"education,omitempty"`
	AnalyzedAt      time.Time `json:"analyzedAt"`
}

// Years reads the experience display string back into a number.
func (r Record) Years() int {
	return facts.YearsFromDisplay(r.ExperienceYears)
}

// Level parses the stored level, LevelUnknown when absent.
func (r Record) Level() facts.Level {
	return facts.ParseLevel(r.PositionLevel)
}
