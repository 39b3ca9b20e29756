// Package extraction pulls résumé facts out of free text with keyword and
// pattern rules. Every extractor is best effort: a missing fact is reported
// as absent, never as an error.
package extraction

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"resume-matcher/internal/facts"
	"resume-matcher/internal/taxonomy"
)

const maxEducationHits = 3

// Extractor runs the rule tables of one taxonomy. It is safe for concurrent use.
type Extractor struct {
	tbl *taxonomy.Table
}

// New returns an Extractor over tbl, or over the embedded taxonomy when tbl is nil.
func New(tbl *taxonomy.Table) *Extractor {
	if tbl == nil {
		tbl = taxonomy.Default()
	}
	return &Extractor{tbl: tbl}
}

func (e *Extractor) Table() *taxonomy.Table { return e.tbl }

// Skills returns every taxonomy token found as a whole word, in taxonomy order.
func (e *Extractor) Skills(text string) facts.SkillSet {
	lower := strings.ToLower(text)
	var hits []string
	for _, s := range e.tbl.Skills {
		if e.tbl.HasWord(lower, s.Token) {
			hits = append(hits, s.Token)
		}
	}
	return facts.NewSkillSet(e.tbl, hits...)
}

// Experience returns the number captured by the first matching pattern.
// Later mentions and other patterns are ignored, even when that number does
// not fit: an out-of-range match reports zero years.
func (e *Extractor) Experience(text string) facts.ExperienceYears {
	lower := strings.ToLower(text)
	for _, re := range e.tbl.ExperiencePatterns {
		m := re.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return facts.ExperienceYears{}
		}
		exp, err := facts.NewExperienceYears(n)
		if err != nil {
			return facts.ExperienceYears{}
		}
		return exp
	}
	return facts.ExperienceYears{}
}

// Level returns the level of the first keyword family present in the text.
func (e *Extractor) Level(text string) facts.Level {
	f, ok := e.tbl.FirstFamily(strings.ToLower(text), e.tbl.Levels)
	if !ok {
		return facts.LevelUnknown
	}
	return facts.ParseLevel(f.Name)
}

// Education lists up to three education keywords found in the text, in table
// order. A keyword inside one already listed ("bacharel" in "bacharelado") is
// not counted again.
func (e *Extractor) Education(text string) (string, bool) {
	lower := strings.ToLower(text)
	var seen, hits []string
	for _, kw := range e.tbl.Education {
		if !strings.Contains(lower, kw) || containedIn(kw, seen) {
			continue
		}
		seen = append(seen, kw)
		hits = append(hits, facts.Title(kw))
		if len(hits) == maxEducationHits {
			break
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	return strings.Join(hits, ", "), true
}

// CandidateName looks for a short name-like line at the top of the text.
func (e *Extractor) CandidateName(text string) (string, bool) {
	rules := e.tbl.Name
	lines := strings.Split(text, "\n")
	if len(lines) > rules.MaxLines {
		lines = lines[:rules.MaxLines]
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		words := len(strings.Fields(line))
		if words < rules.MinWords || words > rules.MaxWords {
			continue
		}
		if utf8.RuneCountInString(line) > rules.MaxChars {
			continue
		}
		if strings.IndexFunc(line, unicode.IsDigit) >= 0 {
			continue
		}
		if containsAny(strings.ToLower(line), rules.Stopwords) {
			continue
		}
		return line, true
	}
	return "", false
}

// WorkArea returns the first area family with a keyword in the text.
func (e *Extractor) WorkArea(text string) (string, bool) {
	f, ok := e.tbl.FirstFamily(strings.ToLower(text), e.tbl.Areas)
	if !ok {
		return "", false
	}
	return f.Name, true
}

func containedIn(kw string, found []string) bool {
	for _, f := range found {
		if strings.Contains(f, kw) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
