package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

const jobColumns = `id, recruiter_id, title, company, description, status, required_skills, preferred_skills,
       min_readiness_score, min_cgpa, min_projects, expires_at, matched_students, matches_computed_at, version, created_at, updated_at`

type jobRow struct {
	ID                string             `db:"id"`
	RecruiterID       string             `db:"recruiter_id"`
	Title             string             `db:"title"`
	Company           string             `db:"company"`
	Description       string             `db:"description"`
	Status            models.JobStatus   `db:"status"`
	RequiredSkills    types.JSONText     `db:"required_skills"`
	PreferredSkills   types.JSONText     `db:"preferred_skills"`
	MinReadinessScore int                `db:"min_readiness_score"`
	MinCGPA           float64            `db:"min_cgpa"`
	MinProjects       int                `db:"min_projects"`
	ExpiresAt         *time.Time         `db:"expires_at"`
	MatchedStudents   types.NullJSONText `db:"matched_students"`
	MatchesComputedAt *time.Time         `db:"matches_computed_at"`
	Version           int                `db:"version"`
	CreatedAt         time.Time          `db:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at"`
	ExpectedVersion   int                `db:"expected_version"`
}

func toJobRow(job *models.Job) (*jobRow, error) {
	required, err := marshalList(job.RequiredSkills)
	if err != nil {
		return nil, fmt.Errorf("encode required skills: %w", err)
	}
	preferred, err := marshalList(job.PreferredSkills)
	if err != nil {
		return nil, fmt.Errorf("encode preferred skills: %w", err)
	}
	row := &jobRow{
		ID:                job.ID,
		RecruiterID:       job.RecruiterID,
		Title:             job.Title,
		Company:           job.Company,
		Description:       job.Description,
		Status:            job.Status,
		RequiredSkills:    required,
		PreferredSkills:   preferred,
		MinReadinessScore: job.MinReadinessScore,
		MinCGPA:           job.MinCGPA,
		MinProjects:       job.MinProjects,
		ExpiresAt:         job.ExpiresAt,
		MatchesComputedAt: job.MatchesComputedAt,
		Version:           job.Version,
		CreatedAt:         job.CreatedAt,
		UpdatedAt:         job.UpdatedAt,
	}
	if job.MatchedStudents != nil {
		raw, err := json.Marshal(job.MatchedStudents)
		if err != nil {
			return nil, fmt.Errorf("encode matched students: %w", err)
		}
		row.MatchedStudents = types.NullJSONText{JSONText: raw, Valid: true}
	}
	return row, nil
}

func (row *jobRow) toModel() (*models.Job, error) {
	job := &models.Job{
		ID:                row.ID,
		RecruiterID:       row.RecruiterID,
		Title:             row.Title,
		Company:           row.Company,
		Description:       row.Description,
		Status:            row.Status,
		MinReadinessScore: row.MinReadinessScore,
		MinCGPA:           row.MinCGPA,
		MinProjects:       row.MinProjects,
		ExpiresAt:         row.ExpiresAt,
		MatchesComputedAt: row.MatchesComputedAt,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if err := row.RequiredSkills.Unmarshal(&job.RequiredSkills); err != nil {
		return nil, fmt.Errorf("decode required skills of job %s: %w", row.ID, err)
	}
	if err := row.PreferredSkills.Unmarshal(&job.PreferredSkills); err != nil {
		return nil, fmt.Errorf("decode preferred skills of job %s: %w", row.ID, err)
	}
	if row.MatchedStudents.Valid {
		if err := row.MatchedStudents.Unmarshal(&job.MatchedStudents); err != nil {
			return nil, fmt.Errorf("decode matched students of job %s: %w", row.ID, err)
		}
	}
	return job, nil
}

func marshalList(values []string) (types.JSONText, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	return types.JSONText(raw), err
}

// JobRepository persists recruiter job postings and their cached rankings.
type JobRepository struct {
	db *sqlx.DB
}

// NewJobRepository constructs a JobRepository.
func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a new job at version 1.
func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusDraft
	}
	now := time.Now().UTC()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Version = 1

	row, err := toJobRow(job)
	if err != nil {
		return err
	}
	const query = `INSERT INTO jobs (id, recruiter_id, title, company, description, status, required_skills, preferred_skills,
        min_readiness_score, min_cgpa, min_projects, expires_at, matched_students, matches_computed_at, version, created_at, updated_at)
        VALUES (:id, :recruiter_id, :title, :company, :description, :status, :required_skills, :preferred_skills,
        :min_readiness_score, :min_cgpa, :min_projects, :expires_at, :matched_students, :matches_computed_at, :version, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// FindByID fetches a job. A missing row returns sql.ErrNoRows.
func (r *JobRepository) FindByID(ctx context.Context, id string) (*models.Job, error) {
	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE id = $1`, jobColumns)
	var row jobRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find job: %w", err)
	}
	return row.toModel()
}

// List returns jobs matching the filter, newest first.
func (r *JobRepository) List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error) {
	where := "1=1"
	var args []interface{}
	if filter.RecruiterID != "" {
		args = append(args, filter.RecruiterID)
		where += fmt.Sprintf(" AND recruiter_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}

	query := fmt.Sprintf(`SELECT %s FROM jobs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, jobColumns, where, size, (page-1)*size)
	var rows []jobRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	jobs := make([]models.Job, 0, len(rows))
	for i := range rows {
		job, err := rows[i].toModel()
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, *job)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM jobs WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}
	return jobs, total, nil
}

// UpdateVersioned writes the posting, including its cached matches, when the stored
// version still equals job.Version. A lost race returns ErrStaleVersion.
func (r *JobRepository) UpdateVersioned(ctx context.Context, job *models.Job) error {
	row, err := toJobRow(job)
	if err != nil {
		return err
	}
	row.ExpectedVersion = job.Version
	row.Version = job.Version + 1
	row.UpdatedAt = time.Now().UTC()

	const query = `UPDATE jobs SET title = :title, company = :company, description = :description, status = :status,
        required_skills = :required_skills, preferred_skills = :preferred_skills, min_readiness_score = :min_readiness_score,
        min_cgpa = :min_cgpa, min_projects = :min_projects, expires_at = :expires_at, matched_students = :matched_students,
        matches_computed_at = :matches_computed_at, version = :version, updated_at = :updated_at
        WHERE id = :id AND version = :expected_version`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update job rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	job.Version = row.Version
	job.UpdatedAt = row.UpdatedAt
	return nil
}

// ReplaceMatches swaps the whole cached ranking in one statement and bumps the
// version, but only while the job is still at version. A job edited since the run
// loaded it yields ErrStaleVersion; a deleted one yields sql.ErrNoRows.
func (r *JobRepository) ReplaceMatches(ctx context.Context, jobID string, version int, matches []models.MatchedStudent, computedAt time.Time) error {
	if matches == nil {
		matches = []models.MatchedStudent{}
	}
	raw, err := json.Marshal(matches)
	if err != nil {
		return fmt.Errorf("encode matched students: %w", err)
	}
	const query = `UPDATE jobs SET matched_students = $2, matches_computed_at = $3, updated_at = $3, version = version + 1
        WHERE id = $1 AND version = $4`
	res, err := r.db.ExecContext(ctx, query, jobID, types.JSONText(raw), computedAt, version)
	if err != nil {
		return fmt.Errorf("replace job matches: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("replace job matches rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM jobs WHERE id = $1)`, jobID); err != nil {
		return fmt.Errorf("check job: %w", err)
	}
	if !exists {
		return sql.ErrNoRows
	}
	return ErrStaleVersion
}
