package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/matching"
	"resume-matcher/internal/profile"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		queryText = ""
		taxonomyFile = ""
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAnalyzePrintsRecords(t *testing.T) {
	dir := t.TempDir()
	ana := writeFile(t, dir, "ana.txt", "Ana Silva\nSenior Python developer with 6 years of experience using Docker.")
	scan := writeFile(t, dir, "scan.png", "not really a png")

	out, err := execute(t, "analyze", ana, scan)
	require.NoError(t, err)

	var records []profile.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, ana, records[0].DocumentID)
	assert.Equal(t, "Senior", records[0].PositionLevel)
	assert.Contains(t, records[0].Skills, "Python")
}

func TestAnalyzeFailsWhenNothingReadable(t *testing.T) {
	dir := t.TempDir()
	scan := writeFile(t, dir, "scan.jpg", "binary")

	_, err := execute(t, "analyze", scan)
	assert.Error(t, err)
}

func TestAnalyzeSniffsExtensionlessFiles(t *testing.T) {
	dir := t.TempDir()
	resume := writeFile(t, dir, "resume", "Ana Silva\nSenior Python developer with 6 years of experience.")

	out, err := execute(t, "analyze", resume)
	require.NoError(t, err)

	var records []profile.Record
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, resume, records[0].DocumentID)
	assert.Contains(t, records[0].Skills, "Python")
}

func TestQueryRanksFiles(t *testing.T) {
	dir := t.TempDir()
	java := writeFile(t, dir, "bruno.txt", "Bruno Costa\nJunior Java developer.")
	python := writeFile(t, dir, "ana.txt", "Ana Silva\nSenior Python developer with 6 years of experience.")

	out, err := execute(t, "query", "--query", "senior python developer", java, python)
	require.NoError(t, err)

	var ranking matching.Ranking
	require.NoError(t, json.Unmarshal([]byte(out), &ranking))
	require.Len(t, ranking.Matches, 2)
	assert.Equal(t, python, ranking.Matches[0].DocumentID)
	assert.Greater(t, ranking.Matches[0].Score, ranking.Matches[1].Score)
	assert.NotEmpty(t, ranking.Reasoning)
}

func TestQueryRequiresQueryFlag(t *testing.T) {
	dir := t.TempDir()
	ana := writeFile(t, dir, "ana.txt", "Ana Silva")

	_, err := execute(t, "query", ana)
	assert.Error(t, err)
}
