package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/facts"
	"resume-matcher/internal/profile"
)

func profileA() profile.Record {
	return profile.Record{
		DocumentID:      "doc-a",
		Summary:         "Candidate profile. Senior level professional. Experienced in Python. 4 years of experience.",
		Skills:          []string{"Python"},
		ExperienceYears: "4 years",
		PositionLevel:   "Senior",
	}
}

func profileB() profile.Record {
	return profile.Record{
		DocumentID:      "doc-b",
		Summary:         "Candidate profile. Junior level professional. Experienced in Java. 1 year of experience.",
		Skills:          []string{"Java"},
		ExperienceYears: "1 year",
		PositionLevel:   "Junior",
	}
}

func TestInterpreterParsesQuery(t *testing.T) {
	req := NewInterpreter(nil).Parse("Python senior 3 anos")
	assert.Equal(t, []string{"Python"}, req.Skills)
	assert.Equal(t, 3, req.ExperienceYears)
	assert.Equal(t, facts.LevelSenior, req.Level)
	assert.Equal(t, []string{"Python", "senior", "3", "anos"}, req.Keywords)
}

func TestInterpreterVariants(t *testing.T) {
	in := NewInterpreter(nil)

	req := in.Parse("Dev pleno com Docker e Kubernetes, 5+ years")
	assert.Equal(t, []string{"Docker", "Kubernetes"}, req.Skills)
	assert.Equal(t, 5, req.ExperienceYears)
	assert.Equal(t, facts.LevelMid, req.Level)

	req = in.Parse("especialista em dados")
	assert.Equal(t, facts.LevelUnknown, req.Level)
	assert.Empty(t, req.Skills)
	assert.Zero(t, req.ExperienceYears)

	req = in.Parse("")
	assert.Empty(t, req.Keywords)
}

func TestWeightProfilesAreValid(t *testing.T) {
	require.NoError(t, QueryWeights.Validate())
	require.NoError(t, ProfileWeights.Validate())

	_, err := NewScorer(Weights{Skills: 0.5, Experience: 0.5, Level: 0.5})
	assert.ErrorIs(t, err, facts.ErrValidation)
	_, err = NewScorer(Weights{Skills: 1.2, Experience: -0.2})
	assert.ErrorIs(t, err, facts.ErrValidation)
}

func TestScoreQueryExample(t *testing.T) {
	e := NewEngine(nil)
	req := e.Interpreter.Parse("Python senior 3 anos")

	_, b, err := e.Scorer.Score(CandidateFromRecord(profileA()), req)
	require.NoError(t, err)
	assert.InDelta(t, 0.4, b.Skills, 1e-9)
	assert.InDelta(t, 0.3, b.Experience, 1e-9)
	assert.InDelta(t, 0.2, b.Level, 1e-9)
	assert.InDelta(t, 0.05, b.Keywords, 1e-9)
	assert.Equal(t, []string{"Python"}, b.MatchedSkills)

	_, b, err = e.Scorer.Score(CandidateFromRecord(profileB()), req)
	require.NoError(t, err)
	assert.Zero(t, b.Skills)
	assert.InDelta(t, 0.1, b.Experience, 1e-9)
	assert.Zero(t, b.Level)
	assert.Zero(t, b.Keywords)
}

func TestScoreFreshProfileWithProfileWeights(t *testing.T) {
	p := profile.NewBuilder(nil).Extract("ana.pdf", "Ana Souza\nDesenvolvedora com 5 anos de experiência em Python, Docker.")
	c := CandidateFromProfile(p)
	assert.Equal(t, []string{"Python", "Docker"}, c.Skills)
	assert.Equal(t, 5, c.Years)
	assert.Equal(t, facts.LevelSenior, c.Level)
	assert.Equal(t, p.Summary, c.Summary)

	s, err := NewScorer(ProfileWeights)
	require.NoError(t, err)
	req := Requirements{
		Skills:          []string{"python", "Go"},
		ExperienceYears: 10,
		Level:           facts.LevelSenior,
		Keywords:        []string{"python"},
	}
	score, b, err := s.Score(c, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"python"}, b.MatchedSkills)
	assert.InDelta(t, 0.25, b.Skills, 1e-9)
	assert.InDelta(t, 0.15, b.Experience, 1e-9)
	assert.InDelta(t, 0.2, b.Level, 1e-9)
	assert.Zero(t, b.Keywords)
	assert.InDelta(t, 0.6, score.Value(), 1e-9)
}

func TestScoreLevelPartialCredit(t *testing.T) {
	s, err := NewScorer(ProfileWeights)
	require.NoError(t, err)
	req := Requirements{Level: facts.LevelSenior}

	_, b, _ := s.Score(Candidate{Level: facts.LevelSpecialist}, req)
	assert.InDelta(t, 0.2, b.Level, 1e-9)
	_, b, _ = s.Score(Candidate{Level: facts.LevelMid}, req)
	assert.InDelta(t, 0.1, b.Level, 1e-9)
	_, b, _ = s.Score(Candidate{Level: facts.LevelJunior}, req)
	assert.Zero(t, b.Level)
}

func TestScoreTrivialRequirementsContributeNothing(t *testing.T) {
	s, err := NewScorer(ProfileWeights)
	require.NoError(t, err)
	score, b, err := s.Score(Candidate{Skills: []string{"Go"}, Years: 9, Level: facts.LevelSenior}, Requirements{})
	require.NoError(t, err)
	assert.Zero(t, score.Value())
	assert.Zero(t, b.Total())
}

func TestScoreMonotonicInMatchedSkills(t *testing.T) {
	s, err := NewScorer(QueryWeights)
	require.NoError(t, err)
	req := Requirements{Skills: []string{"Python", "Docker", "Go"}}

	prev := -1.0
	skills := []string{}
	for _, add := range []string{"Python", "docker", "GO"} {
		skills = append(skills, add)
		score, _, err := s.Score(Candidate{Skills: skills}, req)
		require.NoError(t, err)
		assert.Greater(t, score.Value(), prev)
		prev = score.Value()
	}
	assert.InDelta(t, 0.4, prev, 1e-9)
}

func TestScoreCappedAtOne(t *testing.T) {
	s := &Scorer{weights: Weights{Skills: 0.6, Experience: 0.6}}
	score, _, err := s.Score(Candidate{Skills: []string{"Go"}, Years: 5}, Requirements{Skills: []string{"Go"}, ExperienceYears: 2})
	require.NoError(t, err)
	assert.Equal(t, 1.0, score.Value())
}

func TestReasonsOrder(t *testing.T) {
	rec := profileA()
	rec.Education = "Mestrado"
	assert.Equal(t, []string{
		"Matched skills: Python",
		"Experience: 4 years",
		"Level: Senior",
		"Education: Mestrado",
	}, Reasons(rec, []string{"Python"}))

	assert.Equal(t, []string{"Experience: 4 years", "Level: Senior"}, Reasons(profileA(), nil))
	assert.Empty(t, Reasons(profile.Record{}, nil))
}

func TestRankQueryExample(t *testing.T) {
	ranking, err := NewEngine(nil).Rank("Python senior 3 anos", []profile.Record{profileB(), profileA()})
	require.NoError(t, err)
	require.Len(t, ranking.Matches, 2)

	assert.Equal(t, "doc-a", ranking.Matches[0].DocumentID)
	assert.InDelta(t, 0.95, ranking.Matches[0].Score, 1e-9)
	assert.Equal(t, "doc-b", ranking.Matches[1].DocumentID)
	assert.InDelta(t, 0.1, ranking.Matches[1].Score, 1e-9)

	assert.Equal(t,
		"Based on the analysis of query 'Python senior 3 anos', the best-fitting candidate scores 0.95 due to: "+
			"Matched skills: Python; Experience: 4 years; Level: Senior. The runner-up scores 0.10. "+
			"Recommendation: excellent candidate for the position.",
		ranking.Reasoning)
}

func TestRankTiesKeepInputOrder(t *testing.T) {
	first := profileA()
	second := profileA()
	second.DocumentID = "doc-a2"
	third := profileA()
	third.DocumentID = "doc-a3"

	ranking, err := NewEngine(nil).Rank("Python", []profile.Record{first, second, third})
	require.NoError(t, err)
	ids := []string{ranking.Matches[0].DocumentID, ranking.Matches[1].DocumentID, ranking.Matches[2].DocumentID}
	assert.Equal(t, []string{"doc-a", "doc-a2", "doc-a3"}, ids)
}

func TestRankEmpty(t *testing.T) {
	ranking, err := NewEngine(nil).Rank("Python", nil)
	require.NoError(t, err)
	assert.Empty(t, ranking.Matches)
	assert.Equal(t, "No profiles processed for analysis.", ranking.Reasoning)
}

func TestNarrateBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0.65, "Recommendation: good candidate, an interview is recommended."},
		{0.45, "Recommendation: adequate candidate, evaluate other factors."},
		{0.2, "Recommendation: partial match, consider alternative requirements."},
	}
	for _, tc := range cases {
		got := Narrate("q", []Result{{DocumentID: "d", Score: tc.score}})
		assert.Contains(t, got, tc.want)
		assert.NotContains(t, got, "runner-up")
		assert.Contains(t, got, "scores ")
	}

	got := Narrate("go", []Result{{DocumentID: "d", Score: 0.3}})
	assert.Equal(t, "Based on the analysis of query 'go', the best-fitting candidate scores 0.30. "+
		"Recommendation: partial match, consider alternative requirements.", got)
}
