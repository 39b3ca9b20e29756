package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/taxonomy"
)

func TestExperienceYearsRejectsNegative(t *testing.T) {
	_, err := NewExperienceYears(-1)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "-1")
}

func TestExperienceYearsLevelSuggestion(t *testing.T) {
	cases := map[int]Level{
		0:  LevelUnknown,
		1:  LevelJunior,
		2:  LevelMid,
		4:  LevelMid,
		5:  LevelSenior,
		12: LevelSenior,
	}
	for years, want := range cases {
		exp, err := NewExperienceYears(years)
		require.NoError(t, err)
		assert.Equal(t, want, exp.LevelSuggestion(), "years=%d", years)
	}
}

func TestExperienceYearsDisplay(t *testing.T) {
	exp, err := NewExperienceYears(7)
	require.NoError(t, err)
	assert.Equal(t, "7 years", exp.String())
	assert.Equal(t, 7, YearsFromDisplay(exp.String()))
	assert.Equal(t, 3, YearsFromDisplay("3 anos"))
	assert.Equal(t, 0, YearsFromDisplay(""))
}

func TestMatchScoreRange(t *testing.T) {
	for _, v := range []float64{-0.01, 1.01} {
		_, err := NewMatchScore(v)
		assert.ErrorIs(t, err, ErrValidation, "value=%v", v)
	}
	for _, v := range []float64{0, 0.5, 1} {
		_, err := NewMatchScore(v)
		assert.NoError(t, err, "value=%v", v)
	}
}

func TestMatchScoreBands(t *testing.T) {
	cases := []struct {
		value float64
		band  Band
	}{
		{0.95, BandExcellent},
		{0.8, BandExcellent},
		{0.7, BandGood},
		{0.6, BandGood},
		{0.5, BandAdequate},
		{0.4, BandAdequate},
		{0.39, BandPoor},
		{0, BandPoor},
	}
	for _, tc := range cases {
		s, err := NewMatchScore(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.band, s.Band(), "value=%v", tc.value)
	}
	s, _ := NewMatchScore(0.456)
	assert.Equal(t, "0.46", s.String())
}

func TestLevelOrderingAndParsing(t *testing.T) {
	assert.Less(t, LevelJunior.Rank(), LevelMid.Rank())
	assert.Less(t, LevelMid.Rank(), LevelSenior.Rank())
	assert.Less(t, LevelSenior.Rank(), LevelSpecialist.Rank())
	assert.Equal(t, 0, LevelUnknown.Rank())

	assert.Equal(t, LevelMid, ParseLevel("Pleno"))
	assert.Equal(t, LevelSenior, ParseLevel("Sênior"))
	assert.Equal(t, LevelSpecialist, ParseLevel("specialist"))
	assert.Equal(t, LevelUnknown, ParseLevel("chief"))
	assert.Equal(t, "Mid", LevelMid.String())
}

func TestLevelFromSkillCount(t *testing.T) {
	assert.Equal(t, LevelUnknown, LevelFromSkillCount(0))
	assert.Equal(t, LevelJunior, LevelFromSkillCount(4))
	assert.Equal(t, LevelMid, LevelFromSkillCount(5))
	assert.Equal(t, LevelSenior, LevelFromSkillCount(10))
}

func TestSkillTokenRejectsBlank(t *testing.T) {
	_, err := NewSkillToken("   ", nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSkillTokenCategorizes(t *testing.T) {
	tok, err := NewSkillToken("docker", nil)
	require.NoError(t, err)
	assert.Equal(t, "Docker", tok.Name)
	assert.Equal(t, taxonomy.CategoryDevOps, tok.Category)

	tok, err = NewSkillToken("MongoDB", nil)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryDatabase, tok.Category)

	tok, err = NewSkillToken("cobol", nil)
	require.NoError(t, err)
	assert.Equal(t, taxonomy.CategoryGeneral, tok.Category)
}

func TestSkillTokenMatchesIgnoringCase(t *testing.T) {
	a, err := NewSkillToken("postgresql", nil)
	require.NoError(t, err)
	b, err := NewSkillToken("PostgreSQL", nil)
	require.NoError(t, err)
	c, err := NewSkillToken("mysql", nil)
	require.NoError(t, err)

	assert.True(t, a.Matches(b))
	assert.True(t, b.Matches(a))
	assert.False(t, a.Matches(c))
}

func TestSkillSetDeduplicatesCaseInsensitively(t *testing.T) {
	set := NewSkillSet(nil, "Python", "python", "PYTHON", "", "  ", "Docker")
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"Python", "Docker"}, set.Names())
	assert.True(t, set.Has("docker"))

	again := NewSkillSet(nil, set.Names()...)
	assert.Equal(t, set.Names(), again.Names())
}

func TestSkillSetInCategory(t *testing.T) {
	set := NewSkillSet(nil, "python", "react", "docker", "go")
	langs := set.InCategory(taxonomy.CategoryLanguage)
	require.Len(t, langs, 2)
	assert.Equal(t, "Python", langs[0].Name)
	assert.Equal(t, "Go", langs[1].Name)
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Next.Js", Title("next.js"))
	assert.Equal(t, "C++", Title("c++"))
	assert.Equal(t, "Sql Server", Title("SQL SERVER"))
	assert.Equal(t, "Ciência Da Computação", Title("ciência da computação"))
}

func TestExperienceYearsSingular(t *testing.T) {
	exp, err := NewExperienceYears(1)
	require.NoError(t, err)
	assert.Equal(t, "1 year", exp.String())
	assert.Equal(t, 1, YearsFromDisplay(exp.String()))
}
