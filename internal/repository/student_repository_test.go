package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

var studentRowColumns = []string{"id", "name", "email", "college", "branch", "cgpa", "skills", "projects", "certifications", "events", "coding_logs",
	"leetcode_stats", "github_stats", "interview_stats", "streak_days", "readiness_score", "readiness_breakdown", "active", "version", "created_at", "updated_at"}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(1, 1))

	student := &models.Student{Name: "Asha", Email: "asha@example.com", Active: true}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.Equal(t, 1, student.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDDecodesCollections(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).AddRow(
		"s1", "Asha", "asha@example.com", "IIT", "CSE", 8.4,
		[]byte(`["go","sql"]`),
		[]byte(`[{"id":"p1","title":"API","tags":["go"],"status":"verified","verified":false,"createdAt":"2024-01-01T00:00:00Z"}]`),
		[]byte(`[]`), []byte(`[]`), []byte(`[]`),
		[]byte(`{"easy":10,"medium":2,"hard":0,"totalSolved":12,"streak":4,"syncedAt":"2024-01-01T00:00:00Z"}`),
		nil,
		[]byte(`{"totalSessions":1,"completedSessions":1,"avgScore":80,"bestScore":80,"communication":{}}`),
		5, 42, []byte(`{"base":25}`), true, 3, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE id = $1")).WithArgs("s1").WillReturnRows(rows)

	student, err := repo.FindByID(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, student.CGPA)
	assert.Equal(t, 8.4, *student.CGPA)
	assert.Equal(t, []string{"go", "sql"}, student.Skills)
	require.Len(t, student.Projects, 1)
	assert.True(t, student.Projects[0].IsVerified())
	require.NotNil(t, student.LeetCode)
	assert.Equal(t, 4, student.LeetCode.Streak)
	assert.Nil(t, student.GitHub)
	assert.Equal(t, 80.0, student.Interview.AvgScore)
	assert.Equal(t, 25.0, student.ReadinessBreakdown["base"])
	assert.Equal(t, 3, student.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("FROM students WHERE id").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestStudentRepositoryUpdateVersioned(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET .* WHERE id = \\? AND version = \\?").WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{ID: "s1", Version: 4, ReadinessScore: 30}
	require.NoError(t, repo.UpdateVersioned(context.Background(), student))
	assert.Equal(t, 5, student.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryUpdateVersionedStale(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("UPDATE students SET").WillReturnResult(sqlmock.NewResult(0, 0))

	student := &models.Student{ID: "s1", Version: 4}
	err := repo.UpdateVersioned(context.Background(), student)
	assert.ErrorIs(t, err, ErrStaleVersion)
	assert.Equal(t, 4, student.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryLeaderboardAssignsRanks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "college", "branch", "readiness_score", "streak_days"}).
		AddRow("s2", "Bo", "NIT", "ECE", 80, 3).
		AddRow("s1", "Asha", "IIT", "CSE", 75, 9)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY readiness_score DESC, streak_days DESC, id ASC LIMIT $1")).
		WithArgs(10).
		WillReturnRows(rows)

	entries, err := repo.Leaderboard(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "s2", entries[0].StudentID)
	assert.Equal(t, 2, entries[1].Rank)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(studentRowColumns).AddRow(
		"s1", "Asha", "asha@example.com", "IIT", "CSE", nil,
		[]byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`), []byte(`[]`),
		nil, nil, []byte(`{}`), 0, 28, []byte(`{}`), true, 1, now, now,
	)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE 1=1 AND branch = $1 ORDER BY created_at DESC LIMIT 20 OFFSET 0")).
		WithArgs("CSE").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE 1=1 AND branch = $1")).
		WithArgs("CSE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	students, total, err := repo.List(context.Background(), models.StudentFilter{Branch: "CSE"})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Nil(t, students[0].CGPA)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
