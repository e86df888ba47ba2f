package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// HistoryRepository stores the append-only readiness history and growth timeline.
type HistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository constructs a HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts new history and timeline entries for a student in one transaction.
// Existing rows are never updated.
func (r *HistoryRepository) Append(ctx context.Context, studentID string, scores []models.ScoreEntry, timeline []models.TimelineEntry) error {
	if len(scores) == 0 && len(timeline) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin history tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, entry := range scores {
		if _, err := tx.ExecContext(ctx, `INSERT INTO readiness_history (student_id, score, calculated_at) VALUES ($1, $2, $3)`,
			studentID, entry.Score, entry.CalculatedAt); err != nil {
			return fmt.Errorf("append readiness history: %w", err)
		}
	}
	for _, entry := range timeline {
		if _, err := tx.ExecContext(ctx, `INSERT INTO growth_timeline (student_id, date, readiness_score, reason) VALUES ($1, $2, $3, $4)`,
			studentID, entry.Date, entry.ReadinessScore, entry.Reason); err != nil {
			return fmt.Errorf("append growth timeline: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit history tx: %w", err)
	}
	return nil
}

// ListScores returns a student's readiness history oldest first.
func (r *HistoryRepository) ListScores(ctx context.Context, studentID string) ([]models.ScoreEntry, error) {
	const query = `SELECT score, calculated_at FROM readiness_history WHERE student_id = $1 ORDER BY calculated_at ASC, id ASC`
	var entries []models.ScoreEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list readiness history: %w", err)
	}
	return entries, nil
}

// ListTimeline returns a student's growth timeline oldest first.
func (r *HistoryRepository) ListTimeline(ctx context.Context, studentID string) ([]models.TimelineEntry, error) {
	const query = `SELECT date, readiness_score, reason FROM growth_timeline WHERE student_id = $1 ORDER BY date ASC, id ASC`
	var entries []models.TimelineEntry
	if err := r.db.SelectContext(ctx, &entries, query, studentID); err != nil {
		return nil, fmt.Errorf("list growth timeline: %w", err)
	}
	return entries, nil
}

type recentScoreRow struct {
	StudentID string `db:"student_id"`
	models.ScoreEntry
}

// RecentScores returns up to limit trailing history entries per student, oldest first.
func (r *HistoryRepository) RecentScores(ctx context.Context, studentIDs []string, limit int) (map[string][]models.ScoreEntry, error) {
	result := make(map[string][]models.ScoreEntry, len(studentIDs))
	if len(studentIDs) == 0 || limit <= 0 {
		return result, nil
	}
	const query = `SELECT student_id, score, calculated_at FROM (
            SELECT id, student_id, score, calculated_at,
                   ROW_NUMBER() OVER (PARTITION BY student_id ORDER BY calculated_at DESC, id DESC) AS rn
            FROM readiness_history WHERE student_id = ANY($1)
        ) recent WHERE rn <= $2 ORDER BY student_id, calculated_at ASC, id ASC`
	var rows []recentScoreRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(studentIDs), limit); err != nil {
		return nil, fmt.Errorf("recent readiness history: %w", err)
	}
	for _, row := range rows {
		result[row.StudentID] = append(result[row.StudentID], row.ScoreEntry)
	}
	return result, nil
}
