package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("READINESS_WEIGHTS_FILE", "")
	root := newRootCmd()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

const studentDoc = `{"id": "s1", "name": "Asha", "skills": ["go"], "readinessScore": 50}`

func TestScoreText(t *testing.T) {
	out, err := execute(t, "score", "--student", writeFile(t, "student.json", studentDoc))
	require.NoError(t, err)
	assert.Contains(t, out, "Asha: 31/100 (raw 30.50)")
	assert.Contains(t, out, "Base readiness")
	assert.Contains(t, out, "GitHub activity")
}

func TestScoreJSON(t *testing.T) {
	out, err := execute(t, "score", "-s", writeFile(t, "student.json", studentDoc), "-o", "json")
	require.NoError(t, err)

	var result struct {
		Total     int                `json:"total"`
		Breakdown map[string]float64 `json:"breakdown"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 31, result.Total)
	assert.Equal(t, 25.0, result.Breakdown["base"])
}

func TestScoreRejectsInvalidDocument(t *testing.T) {
	_, err := execute(t, "score", "--student", writeFile(t, "student.json", `{"id": "s1", "cgpa": 14}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cgpa")
}

func TestMatch(t *testing.T) {
	job := writeFile(t, "job.json", `{"title": "Backend intern", "requiredSkills": ["go", "sql"], "minReadinessScore": 40}`)
	out, err := execute(t, "match", "--student", writeFile(t, "student.json", studentDoc), "--job", job)
	require.NoError(t, err)
	assert.Contains(t, out, "Backend intern: 30.50/100")
	assert.Contains(t, out, "eligible: yes")
	assert.Contains(t, out, "missing: sql")
}

func TestWeights(t *testing.T) {
	out, err := execute(t, "weights")
	require.NoError(t, err)
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "100.00")

	out, err = execute(t, "weights", "--yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "github_bonus_cap: 5")
}

func TestWeightsRejectsOverAllocatedTable(t *testing.T) {
	path := writeFile(t, "weights.yaml", "base:\n  cap: 90\n  weight: 1\n")
	_, err := execute(t, "weights", "--weights", path)
	assert.Error(t, err)
}
