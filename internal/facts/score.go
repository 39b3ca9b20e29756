package facts

import (
	"fmt"
	"math"
)

// Band is a coarse reading of a MatchScore.
type Band string

const (
	BandExcellent Band = "excellent"
	BandGood      Band = "good"
	BandAdequate  Band = "adequate"
	BandPoor      Band = "poor"
)

// MatchScore is a relevance score in [0, 1].
type MatchScore struct {
	value float64
}

// NewMatchScore rejects values outside [0, 1] and NaN.
func NewMatchScore(v float64) (MatchScore, error) {
	if math.IsNaN(v) || v < 0 || v > 1 {
		return MatchScore{}, fmt.Errorf("%w: match score must be between 0 and 1 (got %v)", ErrValidation, v)
	}
	return MatchScore{value: v}, nil
}

func (s MatchScore) Value() float64 { return s.value }

func (s MatchScore) IsExcellent() bool { return s.value >= 0.8 }

func (s MatchScore) IsGood() bool { return s.value >= 0.6 }

func (s MatchScore) IsPoor() bool { return s.value < 0.4 }

func (s MatchScore) Band() Band {
	switch {
	case s.IsExcellent():
		return BandExcellent
	case s.IsGood():
		return BandGood
	case !s.IsPoor():
		return BandAdequate
	default:
		return BandPoor
	}
}

func (s MatchScore) String() string {
	return fmt.Sprintf("%.2f", s.value)
}
