package facts

import "strings"

// Level is a professional seniority. The numeric values are the ranks used
// for scoring; Specialist ranks above Senior.
type Level int

const (
	LevelUnknown    Level = 0
	LevelJunior     Level = 1
	LevelMid        Level = 2
	LevelSenior     Level = 3
	LevelSpecialist Level = 4
)

var levelNames = map[Level]string{
	LevelUnknown:    "Unknown",
	LevelJunior:     "Junior",
	LevelMid:        "Mid",
	LevelSenior:     "Senior",
	LevelSpecialist: "Specialist",
}

var levelAliases = map[string]Level{
	"junior":       LevelJunior,
	"júnior":       LevelJunior,
	"mid":          LevelMid,
	"pleno":        LevelMid,
	"senior":       LevelSenior,
	"sênior":       LevelSenior,
	"specialist":   LevelSpecialist,
	"especialista": LevelSpecialist,
	"unknown":      LevelUnknown,
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return levelNames[LevelUnknown]
}

// Rank is the ordinal used to compare levels.
func (l Level) Rank() int {
	if _, ok := levelNames[l]; !ok {
		return 0
	}
	return int(l)
}

// Known reports whether the level carries information.
func (l Level) Known() bool {
	return l.Rank() > 0
}

// ParseLevel accepts display names and their Portuguese forms, case-insensitively.
// Anything else is LevelUnknown.
func ParseLevel(s string) Level {
	if l, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return l
	}
	return LevelUnknown
}

// LevelFromSkillCount is the last-resort level guess from breadth of skills.
func LevelFromSkillCount(n int) Level {
	switch {
	case n >= 10:
		return LevelSenior
	case n >= 5:
		return LevelMid
	case n > 0:
		return LevelJunior
	default:
		return LevelUnknown
	}
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	*l = ParseLevel(string(b))
	return nil
}
