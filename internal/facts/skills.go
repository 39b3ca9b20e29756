package facts

import (
	"fmt"
	"strings"
	"unicode"

	"resume-matcher/internal/taxonomy"
)

// Categorizer assigns a category to a skill name.
type Categorizer interface {
	Category(name string) taxonomy.Category
}

// SkillToken is a single named skill in its display form.
type SkillToken struct {
	Name     string
	Category taxonomy.Category
}

// NewSkillToken title-cases name and categorizes it. Blank names are rejected.
// A nil categorizer uses the embedded taxonomy.
func NewSkillToken(name string, cat Categorizer) (SkillToken, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SkillToken{}, fmt.Errorf("%w: skill name cannot be blank", ErrValidation)
	}
	if cat == nil {
		cat = taxonomy.Default()
	}
	return SkillToken{Name: Title(name), Category: cat.Category(name)}, nil
}

// Matches compares names case-insensitively.
func (t SkillToken) Matches(other SkillToken) bool {
	return strings.EqualFold(t.Name, other.Name)
}

func (t SkillToken) String() string { return t.Name }

// SkillSet is an immutable, case-insensitively deduplicated set of skills
// that keeps first-occurrence order.
type SkillSet struct {
	tokens []SkillToken
	index  map[string]int
}

// NewSkillSet builds a set from raw names. Blank names are dropped.
func NewSkillSet(cat Categorizer, names ...string) SkillSet {
	set := SkillSet{index: make(map[string]int, len(names))}
	for _, n := range names {
		tok, err := NewSkillToken(n, cat)
		if err != nil {
			continue
		}
		key := strings.ToLower(tok.Name)
		if _, dup := set.index[key]; dup {
			continue
		}
		set.index[key] = len(set.tokens)
		set.tokens = append(set.tokens, tok)
	}
	return set
}

func (s SkillSet) Len() int { return len(s.tokens) }

// Has reports membership by case-insensitive name.
func (s SkillSet) Has(name string) bool {
	_, ok := s.index[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// Tokens returns a copy of the members in order.
func (s SkillSet) Tokens() []SkillToken {
	out := make([]SkillToken, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// Names returns the display names in order.
func (s SkillSet) Names() []string {
	out := make([]string, 0, len(s.tokens))
	for _, t := range s.tokens {
		out = append(out, t.Name)
	}
	return out
}

// InCategory returns the members of one category in order.
func (s SkillSet) InCategory(c taxonomy.Category) []SkillToken {
	var out []SkillToken
	for _, t := range s.tokens {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out
}

// Title upper-cases every letter that follows a non-letter and lower-cases
// the rest, so "next.js" becomes "Next.Js" and "sql server" "Sql Server".
func Title(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
			continue
		}
		b.WriteRune(r)
		prevLetter = false
	}
	return b.String()
}
