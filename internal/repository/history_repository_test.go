package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

func TestHistoryAppend(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	now := time.Now().UTC()
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO readiness_history")).
		WithArgs("s1", 42, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO growth_timeline")).
		WithArgs("s1", now, 42, "projects verified").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.Append(context.Background(), "s1",
		[]models.ScoreEntry{{Score: 42, CalculatedAt: now}},
		[]models.TimelineEntry{{Date: now, ReadinessScore: 42, Reason: "projects verified"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryAppendNothing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	require.NoError(t, repo.Append(context.Background(), "s1", nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryAppendRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO readiness_history").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := repo.Append(context.Background(), "s1", []models.ScoreEntry{{Score: 1, CalculatedAt: time.Now()}}, nil)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListScores(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT score, calculated_at FROM readiness_history WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"score", "calculated_at"}).AddRow(28, now).AddRow(35, now))

	entries, err := repo.ListScores(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 35, entries[1].Score)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryListTimeline(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM growth_timeline WHERE student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"date", "readiness_score", "reason"}).AddRow(now, 28, "account created"))

	entries, err := repo.ListTimeline(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "account created", entries[0].Reason)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRecentScoresGroupsByStudent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"student_id", "score", "calculated_at"}).
		AddRow("s1", 30, now).
		AddRow("s1", 40, now.Add(time.Hour)).
		AddRow("s2", 50, now)
	mock.ExpectQuery("ROW_NUMBER\\(\\) OVER").
		WithArgs(sqlmock.AnyArg(), 10).
		WillReturnRows(rows)

	recent, err := repo.RecentScores(context.Background(), []string{"s1", "s2"}, 10)
	require.NoError(t, err)
	assert.Len(t, recent["s1"], 2)
	assert.Equal(t, 40, recent["s1"][1].Score)
	assert.Len(t, recent["s2"], 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHistoryRecentScoresEmptyInput(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewHistoryRepository(db)

	recent, err := repo.RecentScores(context.Background(), nil, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)
	assert.NoError(t, mock.ExpectationsWereMet())
}
