package scoring

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func maxedStudent() *models.Student {
	projects := make([]models.Project, 0, 5)
	for i := 0; i < 5; i++ {
		projects = append(projects, models.Project{
			ID:     string(rune('a' + i)),
			Tags:   []string{"go", "sql"},
			Status: models.ItemStatusVerified,
		})
	}
	events := make([]models.Event, 0, 5)
	for i := 0; i < 5; i++ {
		events = append(events, models.Event{ID: string(rune('a' + i)), Status: models.ItemStatusVerified, PointsAwarded: 50})
	}
	return &models.Student{
		ID:       "s-max",
		CGPA:     floatPtr(10),
		Skills:   []string{"go", "sql", "docker", "react", "aws"},
		Projects: projects,
		Certifications: []models.Certification{
			{ID: "c1", Status: models.ItemStatusVerified},
			{ID: "c2", Status: models.ItemStatusVerified},
			{ID: "c3", Status: models.ItemStatusVerified},
		},
		Events:     events,
		CodingLogs: []models.CodingLog{{ID: "l1", ProblemsSolved: 500}},
		LeetCode:   &models.LeetCodeStats{Hard: 200, Streak: 90},
		GitHub:     &models.GitHubStats{ActivityScore: 1000},
		Interview: models.InterviewStats{
			TotalSessions:     3,
			CompletedSessions: 3,
			AvgScore:          100,
			BestScore:         100,
			Communication:     models.CommunicationStats{AvgClarity: 10, AvgStructure: 10, AvgConciseness: 10},
		},
		StreakDays: 365,
	}
}

func TestCalculateZeroActivityBaseline(t *testing.T) {
	res, err := CalculateReadinessScore(&models.Student{ID: "s1"})
	require.NoError(t, err)

	assert.Equal(t, 27.5, res.Raw)
	assert.Equal(t, 28, res.Total)
	assert.Equal(t, 25.0, res.Breakdown[CategoryBase])
	assert.Equal(t, 2.5, res.Breakdown[CategoryCGPA])
	assert.Equal(t, 0.0, res.Breakdown[CategoryProjects])
	assert.Equal(t, 0.0, res.Breakdown[CategoryGitHub])
}

func TestCalculateMaxedStudentHitsCeiling(t *testing.T) {
	res, err := CalculateReadinessScore(maxedStudent())
	require.NoError(t, err)

	assert.Equal(t, 100, res.Total)
	assert.Equal(t, 100.0, res.Raw)
	w := DefaultWeights()
	for _, cat := range ReadinessCategories {
		cw, _ := w.Category(cat)
		assert.Equal(t, cw.Cap, res.Breakdown[cat], "category %s", cat)
	}
	assert.Equal(t, 5.0, res.Breakdown[CategoryGitHub])
}

func TestCalculateBoundedForExtremeInputs(t *testing.T) {
	cases := map[string]*models.Student{
		"negative counters": {
			CGPA:       floatPtr(-4),
			LeetCode:   &models.LeetCodeStats{Easy: -10, Medium: -3, TotalSolved: -50, Streak: -2},
			GitHub:     &models.GitHubStats{ActivityScore: -80},
			CodingLogs: []models.CodingLog{{ProblemsSolved: -100}},
			Events:     []models.Event{{Status: models.ItemStatusVerified, PointsAwarded: -20}},
			StreakDays: -7,
			Interview:  models.InterviewStats{CompletedSessions: 1, AvgScore: -40},
		},
		"huge counters": {
			CGPA:       floatPtr(42),
			LeetCode:   &models.LeetCodeStats{Easy: math.MaxInt32, TotalSolved: math.MaxInt32, Streak: math.MaxInt32},
			GitHub:     &models.GitHubStats{ActivityScore: 1e12},
			StreakDays: math.MaxInt32,
			Interview:  models.InterviewStats{CompletedSessions: 9, AvgScore: 1e6},
		},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := CalculateReadinessScore(s)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, res.Total, 0)
			assert.LessOrEqual(t, res.Total, 100)
			assert.False(t, math.IsNaN(res.Raw))
			for cat, v := range res.Breakdown {
				assert.GreaterOrEqual(t, v, 0.0, "category %s", cat)
			}
		})
	}
}

func TestCalculateIgnoresUnverifiedItems(t *testing.T) {
	base := &models.Student{
		Skills:   []string{"go"},
		Projects: []models.Project{{ID: "p1", Tags: []string{"go"}, Status: models.ItemStatusVerified}},
	}
	before, err := CalculateReadinessScore(base)
	require.NoError(t, err)

	withPending := *base
	withPending.Projects = append(append([]models.Project{}, base.Projects...),
		models.Project{ID: "p2", Tags: []string{"go"}, Status: models.ItemStatusPending},
		models.Project{ID: "p3", Tags: []string{"go"}, Status: models.ItemStatusRejected},
	)
	withPending.Certifications = []models.Certification{{ID: "c1", Status: models.ItemStatusPending}}
	withPending.Events = []models.Event{{ID: "e1", Status: models.ItemStatusRejected, PointsAwarded: 10}}

	after, err := CalculateReadinessScore(&withPending)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestProjectsCountVerifiedFlag(t *testing.T) {
	s := &models.Student{Projects: []models.Project{{ID: "p1", Status: models.ItemStatusPending, Verified: true}}}
	res, err := CalculateReadinessScore(s)
	require.NoError(t, err)
	assert.Equal(t, 6.0, res.Breakdown[CategoryProjects])
}

func TestProjectFloorForSkilledStudentWithoutProjects(t *testing.T) {
	res, err := CalculateReadinessScore(&models.Student{Skills: []string{"Go", " go ", "SQL"}})
	require.NoError(t, err)
	assert.Equal(t, 2.0, res.Breakdown[CategorySkills])
	assert.Equal(t, 2.0, res.Breakdown[CategoryProjects])
}

func TestConsistencyMonotonicAndCapped(t *testing.T) {
	prev := -1.0
	for days := 0; days <= 120; days++ {
		res, err := CalculateReadinessScore(&models.Student{StreakDays: days})
		require.NoError(t, err)
		got := res.Breakdown[CategoryConsistency]
		assert.GreaterOrEqual(t, got, prev, "streak %d", days)
		assert.LessOrEqual(t, got, 10.0)
		prev = got
	}
	assert.Equal(t, 10.0, prev)
}

func TestConsistencyUsesLongerStreak(t *testing.T) {
	res, err := CalculateReadinessScore(&models.Student{StreakDays: 3, LeetCode: &models.LeetCodeStats{Streak: 12}})
	require.NoError(t, err)
	assert.Equal(t, 4.0, res.Breakdown[CategoryConsistency])
}

func TestMissingCGPAMatchesNeutralDefault(t *testing.T) {
	absent, err := CalculateReadinessScore(&models.Student{Skills: []string{"go"}})
	require.NoError(t, err)
	neutral, err := CalculateReadinessScore(&models.Student{Skills: []string{"go"}, CGPA: floatPtr(DefaultWeights().Rules.NeutralCGPA)})
	require.NoError(t, err)
	assert.Equal(t, absent, neutral)
}

func TestCodingFallsBackToTotalSolved(t *testing.T) {
	res, err := CalculateReadinessScore(&models.Student{
		LeetCode:   &models.LeetCodeStats{TotalSolved: 40},
		CodingLogs: []models.CodingLog{{ProblemsSolved: 25}},
	})
	require.NoError(t, err)
	assert.Equal(t, 5.0, res.Breakdown[CategoryCoding])
}

func TestInterviewBlendsCommunication(t *testing.T) {
	res, err := CalculateReadinessScore(&models.Student{Interview: models.InterviewStats{
		CompletedSessions: 1,
		AvgScore:          60,
		Communication:     models.CommunicationStats{AvgClarity: 8, AvgStructure: 8, AvgConciseness: 8},
	}})
	require.NoError(t, err)
	// 0.7*60 + 0.3*80 = 66 → 3.3 points
	assert.Equal(t, 3.3, res.Breakdown[CategoryInterview])
}

func TestInterviewSessionRaisesScoreByFormula(t *testing.T) {
	s := &models.Student{ID: "s1"}
	before, err := CalculateReadinessScore(s)
	require.NoError(t, err)

	s.Interview = FoldSession(s.Interview, InterviewSession{
		Completed: true,
		Questions: []QuestionFeedback{{Score: 80}, {Score: 80}, {Score: 80}},
	})
	require.Equal(t, 80.0, s.Interview.AvgScore)

	after, err := CalculateReadinessScore(s)
	require.NoError(t, err)
	assert.Equal(t, 4.0, after.Raw-before.Raw)
	assert.Equal(t, 4.0, after.Breakdown[CategoryInterview])
	assert.Greater(t, after.Total, before.Total)
}

func TestCalculateRejectsMalformedStudent(t *testing.T) {
	cases := map[string]*models.Student{
		"nil":            nil,
		"nan cgpa":       {CGPA: floatPtr(math.NaN())},
		"inf activity":   {GitHub: &models.GitHubStats{ActivityScore: math.Inf(1)}},
		"unknown status": {Certifications: []models.Certification{{ID: "c1", Status: "approved"}}},
		"nan avg score":  {Interview: models.InterviewStats{AvgScore: math.NaN()}},
	}
	for name, s := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CalculateReadinessScore(s)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidShape))
			var shape *ShapeError
			assert.True(t, errors.As(err, &shape))
		})
	}
}

func TestCalculateRejectsNonFiniteTotal(t *testing.T) {
	w := DefaultWeights()
	w.CGPA.Weight = math.NaN()
	c := &Calculator{weights: w}

	_, err := c.Calculate(&models.Student{ID: "s1"})
	assert.ErrorIs(t, err, ErrInvalidShape)
}

func TestCalculateDoesNotMutateStudent(t *testing.T) {
	s := maxedStudent()
	snapshot := *s
	_, err := CalculateReadinessScore(s)
	require.NoError(t, err)
	assert.Equal(t, snapshot, *s)
}

func TestNewCalculatorValidatesWeights(t *testing.T) {
	w := DefaultWeights()
	w.Skills.Weight = -1
	_, err := NewCalculator(w)
	assert.ErrorIs(t, err, ErrInvalidWeights)

	calc, err := NewCalculator(DefaultWeights())
	require.NoError(t, err)
	assert.Equal(t, DefaultWeights(), calc.Weights())
}

func TestCustomWeightsScaleCategories(t *testing.T) {
	w := DefaultWeights()
	w.Base = CategoryWeight{Cap: 25, Weight: 0.5}
	calc, err := NewCalculator(w)
	require.NoError(t, err)

	res, err := calc.Calculate(&models.Student{})
	require.NoError(t, err)
	assert.Equal(t, 12.5, res.Breakdown[CategoryBase])
	assert.Equal(t, 15.0, res.Raw)
	assert.Equal(t, 15, res.Total)
}
