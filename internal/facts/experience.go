package facts

import (
	"fmt"
	"regexp"
	"strconv"
)

// ExperienceYears is a non-negative count of years of experience.
type ExperienceYears struct {
	years int
}

var displayYears = regexp.MustCompile(`\d+`)

// NewExperienceYears rejects negative counts.
func NewExperienceYears(years int) (ExperienceYears, error) {
	if years < 0 {
		return ExperienceYears{}, fmt.Errorf("%w: experience years cannot be negative (got %d)", ErrValidation, years)
	}
	return ExperienceYears{years: years}, nil
}

func (e ExperienceYears) Years() int { return e.years }

func (e ExperienceYears) IsZero() bool { return e.years == 0 }

// LevelSuggestion maps years to a level: 5+ Senior, 2+ Mid, 1+ Junior.
func (e ExperienceYears) LevelSuggestion() Level {
	switch {
	case e.years >= 5:
		return LevelSenior
	case e.years >= 2:
		return LevelMid
	case e.years > 0:
		return LevelJunior
	default:
		return LevelUnknown
	}
}

func (e ExperienceYears) String() string {
	if e.years == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", e.years)
}

// YearsFromDisplay reads the first integer of a persisted display string
// such as "5 years". Missing or unparsable input is 0.
func YearsFromDisplay(s string) int {
	m := displayYears.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
