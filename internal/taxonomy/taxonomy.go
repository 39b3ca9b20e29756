package taxonomy

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Category groups skill tokens for display and scoring.
type Category string

const (
	CategoryLanguage  Category = "Language"
	CategoryFramework Category = "Framework"
	CategoryDatabase  Category = "Database"
	CategoryDevOps    Category = "DevOps"
	CategoryGeneral   Category = "General"
)

var ErrInvalidTable = errors.New("invalid taxonomy table")

//go:embed taxonomy.yaml
var embedded []byte

// Skill is one recognisable technology token. Token is lower-case.
type Skill struct {
	Token    string
	Category Category
}

// Family is a named keyword group. Families are evaluated in order.
type Family struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// NameRules bounds the candidate-name heuristic.
type NameRules struct {
	MaxLines  int      `yaml:"max_lines"`
	MinWords  int      `yaml:"min_words"`
	MaxWords  int      `yaml:"max_words"`
	MaxChars  int      `yaml:"max_chars"`
	Stopwords []string `yaml:"stopwords"`
}

// Table is the read-only set of keyword tables the extractors run on.
type Table struct {
	Skills                 []Skill
	Education              []string
	Levels                 []Family
	QueryLevels            []Family
	Areas                  []Family
	ExperiencePatterns     []*regexp.Regexp
	QueryExperiencePattern *regexp.Regexp
	Name                   NameRules

	byToken map[string]Skill
	words   map[string]*regexp.Regexp
}

type rawTable struct {
	Skills []struct {
		Category Category `yaml:"category"`
		Tokens   []string `yaml:"tokens"`
	} `yaml:"skills"`
	Education              []string  `yaml:"education"`
	Levels                 []Family  `yaml:"levels"`
	QueryLevels            []Family  `yaml:"query_levels"`
	Areas                  []Family  `yaml:"areas"`
	ExperiencePatterns     []string  `yaml:"experience_patterns"`
	QueryExperiencePattern string    `yaml:"query_experience_pattern"`
	Name                   NameRules `yaml:"name"`
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table. It is parsed once per process.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(embedded)
		if err != nil {
			panic(fmt.Sprintf("taxonomy: embedded table: %v", err))
		}
		defaultTable = t
	})
	return defaultTable
}

// LoadFile parses a table from a YAML file on disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read taxonomy file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML table.
func Parse(data []byte) (*Table, error) {
	var raw rawTable
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTable, err)
	}

	t := &Table{
		Education:   lowerAll(raw.Education),
		Levels:      lowerFamilies(raw.Levels),
		QueryLevels: lowerFamilies(raw.QueryLevels),
		Areas:       lowerFamilies(raw.Areas),
		Name:        raw.Name,
		byToken:     make(map[string]Skill),
		words:       make(map[string]*regexp.Regexp),
	}
	t.Name.Stopwords = lowerAll(raw.Name.Stopwords)

	for _, group := range raw.Skills {
		if !knownCategory(group.Category) {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidTable, group.Category)
		}
		for _, tok := range group.Tokens {
			tok = strings.ToLower(strings.TrimSpace(tok))
			if tok == "" {
				continue
			}
			if _, dup := t.byToken[tok]; dup {
				return nil, fmt.Errorf("%w: duplicate skill token %q", ErrInvalidTable, tok)
			}
			s := Skill{Token: tok, Category: group.Category}
			t.Skills = append(t.Skills, s)
			t.byToken[tok] = s
		}
	}
	if len(t.Skills) == 0 {
		return nil, fmt.Errorf("%w: no skill tokens", ErrInvalidTable)
	}

	for _, expr := range raw.ExperiencePatterns {
		re, err := compileCapture(expr)
		if err != nil {
			return nil, err
		}
		t.ExperiencePatterns = append(t.ExperiencePatterns, re)
	}
	if raw.QueryExperiencePattern != "" {
		re, err := compileCapture(raw.QueryExperiencePattern)
		if err != nil {
			return nil, err
		}
		t.QueryExperiencePattern = re
	}

	t.compileWords()

	if t.Name.MaxLines <= 0 {
		t.Name.MaxLines = 5
	}
	if t.Name.MinWords <= 0 {
		t.Name.MinWords = 2
	}
	if t.Name.MaxWords <= 0 {
		t.Name.MaxWords = 4
	}
	if t.Name.MaxWords < t.Name.MinWords {
		return nil, fmt.Errorf("%w: name max_words below min_words", ErrInvalidTable)
	}
	if t.Name.MaxChars <= 0 {
		t.Name.MaxChars = 49
	}
	return t, nil
}

// Category returns the category of a skill name, matched case-insensitively.
// Names outside the table are General.
func (t *Table) Category(name string) Category {
	if s, ok := t.Lookup(name); ok {
		return s.Category
	}
	return CategoryGeneral
}

// Lookup finds a skill by name, ignoring case and surrounding space.
func (t *Table) Lookup(name string) (Skill, bool) {
	s, ok := t.byToken[strings.ToLower(strings.TrimSpace(name))]
	return s, ok
}

func compileCapture(expr string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrInvalidTable, expr, err)
	}
	if re.NumSubexp() != 1 {
		return nil, fmt.Errorf("%w: pattern %q must have exactly one capture group", ErrInvalidTable, expr)
	}
	return re, nil
}

func knownCategory(c Category) bool {
	switch c {
	case CategoryLanguage, CategoryFramework, CategoryDatabase, CategoryDevOps, CategoryGeneral:
		return true
	}
	return false
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerFamilies(in []Family) []Family {
	out := make([]Family, 0, len(in))
	for _, f := range in {
		out = append(out, Family{Name: strings.TrimSpace(f.Name), Keywords: lowerAll(f.Keywords)})
	}
	return out
}
