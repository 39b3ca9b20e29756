package profile

import (
	"fmt"
	"strings"
	"time"

	"resume-matcher/internal/extraction"
	"resume-matcher/internal/facts"
)

const summarySkillLimit = 5

// Profile holds the typed facts extracted from one document.
type Profile struct {
	Name       string
	Skills     facts.SkillSet
	Experience facts.ExperienceYears
	Level      facts.Level
	Education  string
	Area       string
	Summary    string
}

// Builder turns raw document text into profiles and records.
type Builder struct {
	Extractor *extraction.Extractor
	Now       func() time.Time
}

func NewBuilder(ex *extraction.Extractor) *Builder {
	if ex == nil {
		ex = extraction.New(nil)
	}
	return &Builder{Extractor: ex, Now: time.Now}
}

// Extract runs every extractor over text. Blank text yields an empty
// profile whose summary says nothing could be read from fileName.
func (b *Builder) Extract(fileName, text string) Profile {
	if strings.TrimSpace(text) == "" {
		return Profile{
			Skills:  facts.NewSkillSet(b.Extractor.Table()),
			Summary: emptySummary(fileName),
		}
	}

	ex := b.Extractor
	p := Profile{
		Skills:     ex.Skills(text),
		Experience: ex.Experience(text),
	}
	p.Level = b.DetermineLevel(text, p.Skills, p.Experience)
	p.Name, _ = ex.CandidateName(text)
	p.Area, _ = ex.WorkArea(text)
	p.Education, _ = ex.Education(text)
	p.Summary = Summarize(p)
	return p
}

// Build extracts a profile and freezes it into a Record for documentID.
func (b *Builder) Build(documentID, fileName, text string) Record {
	p := b.Extract(fileName, text)
	rec := Record{
		DocumentID: documentID,
		Summary:    p.Summary,
		Skills:     p.Skills.Names(),
		Education:  p.Education,
		AnalyzedAt: b.now(),
	}
	if !p.Experience.IsZero() {
		rec.ExperienceYears = p.Experience.String()
	}
	if p.Level.Known() {
		rec.PositionLevel = p.Level.String()
	}
	return rec
}

// DetermineLevel prefers explicit seniority words, then years of experience,
// then the number of skills.
func (b *Builder) DetermineLevel(text string, skills facts.SkillSet, exp facts.ExperienceYears) facts.Level {
	if l := b.Extractor.Level(text); l.Known() {
		return l
	}
	if l := exp.LevelSuggestion(); l.Known() {
		return l
	}
	return facts.LevelFromSkillCount(skills.Len())
}

// Summarize renders the fixed-order summary sentence for p.
func Summarize(p Profile) string {
	var clauses []string
	if p.Name != "" {
		clauses = append(clauses, "Profile of "+p.Name)
	} else {
		clauses = append(clauses, "Candidate profile")
	}
	if p.Level.Known() {
		clauses = append(clauses, p.Level.String()+" level professional")
	}
	if n := p.Skills.Len(); n > 0 {
		names := p.Skills.Names()
		top := names
		if n > summarySkillLimit {
			top = names[:summarySkillLimit]
		}
		clauses = append(clauses, "Experienced in "+strings.Join(top, ", "))
		if n > summarySkillLimit {
			clauses = append(clauses, fmt.Sprintf("Plus %d other technologies", n-summarySkillLimit))
		}
	}
	if !p.Experience.IsZero() {
		clauses = append(clauses, p.Experience.String()+" of experience")
	}
	if p.Education != "" {
		clauses = append(clauses, "Education: "+p.Education)
	}
	if p.Area != "" {
		clauses = append(clauses, "Area: "+p.Area)
	}
	return strings.Join(clauses, ". ") + "."
}

func emptySummary(fileName string) string {
	return "Could not extract text from " + fileName
}

func (b *Builder) now() time.Time {
	if b.Now == nil {
		return time.Now().UTC()
	}
	return b.Now().UTC()
}
