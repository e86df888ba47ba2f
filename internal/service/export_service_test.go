package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/models"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

func newTestExportService(jobs ...models.Job) *ExportService {
	leaderboard := NewLeaderboardService(&stubLeaderboardRepo{entries: leaderboardEntries()}, nil, nil, LeaderboardConfig{})
	svc := NewExportService(NewJobService(newFakeJobRepo(jobs...), nil, nil), leaderboard, nil, nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func TestExportMatchesCSV(t *testing.T) {
	job := cachedJob()
	job.MatchedStudents = []models.MatchedStudent{{
		StudentID:      "s1",
		StudentName:    "Asha",
		MatchScore:     71.5,
		ScoreBreakdown: map[string]float64{"requiredSkills": 30, "growth": 2.5},
		SkillsMatched:  []string{"Go", "SQL"},
	}}
	svc := newTestExportService(job)

	file, err := svc.ExportMatches(context.Background(), "j1", recruiterClaims, "")
	require.NoError(t, err)
	assert.Equal(t, "matches-j1-20240301.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	records := readCSV(t, file.Body)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Rank", "Student", "Match"}, records[0][:3])
	assert.Equal(t, "Required skills", records[0][3])
	assert.Equal(t, []string{"1", "Asha", "71.50", "30.00"}, records[1][:4])
	assert.Equal(t, "Go, SQL", records[1][len(records[1])-2])
}

func TestExportMatchesRejectsOtherRecruiters(t *testing.T) {
	svc := newTestExportService(cachedJob())

	_, err := svc.ExportMatches(context.Background(), "j1", otherRecruiter, "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	_, err = svc.ExportMatches(context.Background(), "j1", recruiterClaims, "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestExportLeaderboard(t *testing.T) {
	svc := newTestExportService()

	file, err := svc.ExportLeaderboard(context.Background(), 10, "csv")
	require.NoError(t, err)
	assert.Equal(t, "leaderboard-20240301.csv", file.Filename)

	records := readCSV(t, file.Body)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"Rank", "Student", "College", "Branch", "Readiness", "Streak"}, records[0])
	assert.Equal(t, []string{"1", "Asha", "IIT", "CSE", "82", "12"}, records[1])
	assert.Equal(t, []string{"", "Average", "", "", "78.50", "7.50"}, records[3])

	pdf, err := svc.ExportLeaderboard(context.Background(), 10, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Body, []byte("%PDF")))
}
