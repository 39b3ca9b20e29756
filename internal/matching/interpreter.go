package matching

import (
	"strconv"
	"strings"

	"resume-matcher/internal/facts"
	"resume-matcher/internal/taxonomy"
)

// Requirements is what a free-form query asks for. Zero values mean
// "not specified".
type Requirements struct {
	Skills          []string    `json:"skills"`
	ExperienceYears int         `json:"experienceYears"`
	Level           facts.Level `json:"level"`
	Keywords        []string    `json:"keywords"`
}

// Interpreter reads Requirements out of a query string.
type Interpreter struct {
	tbl *taxonomy.Table
}

func NewInterpreter(tbl *taxonomy.Table) *Interpreter {
	if tbl == nil {
		tbl = taxonomy.Default()
	}
	return &Interpreter{tbl: tbl}
}

// Parse never fails; an unrecognisable query yields only keywords.
func (in *Interpreter) Parse(query string) Requirements {
	lower := strings.ToLower(query)
	req := Requirements{Keywords: strings.Fields(query)}

	for _, s := range in.tbl.Skills {
		if in.tbl.HasWord(lower, s.Token) {
			req.Skills = append(req.Skills, facts.Title(s.Token))
		}
	}

	if re := in.tbl.QueryExperiencePattern; re != nil {
		if m := re.FindStringSubmatch(lower); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				req.ExperienceYears = n
			}
		}
	}

	for _, f := range in.tbl.QueryLevels {
		if containsAny(lower, f.Keywords) {
			req.Level = facts.ParseLevel(f.Name)
			break
		}
	}
	return req
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
