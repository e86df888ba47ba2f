package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/noah-isme/career-readiness-api/internal/models"
)

// ErrStaleVersion is returned when an optimistic update loses a race.
var ErrStaleVersion = errors.New("stale version")

const studentColumns = `id, name, email, college, branch, cgpa, skills, projects, certifications, events, coding_logs,
       leetcode_stats, github_stats, interview_stats, streak_days, readiness_score, readiness_breakdown, active, version, created_at, updated_at`

// studentRow is the flattened storage shape of a student; embedded collections live in JSONB columns.
type studentRow struct {
	ID                 string             `db:"id"`
	Name               string             `db:"name"`
	Email              string             `db:"email"`
	College            string             `db:"college"`
	Branch             string             `db:"branch"`
	CGPA               sql.NullFloat64    `db:"cgpa"`
	Skills             types.JSONText     `db:"skills"`
	Projects           types.JSONText     `db:"projects"`
	Certifications     types.JSONText     `db:"certifications"`
	Events             types.JSONText     `db:"events"`
	CodingLogs         types.JSONText     `db:"coding_logs"`
	LeetCode           types.NullJSONText `db:"leetcode_stats"`
	GitHub             types.NullJSONText `db:"github_stats"`
	Interview          types.JSONText     `db:"interview_stats"`
	StreakDays         int                `db:"streak_days"`
	ReadinessScore     int                `db:"readiness_score"`
	ReadinessBreakdown types.JSONText     `db:"readiness_breakdown"`
	Active             bool               `db:"active"`
	Version            int                `db:"version"`
	CreatedAt          time.Time          `db:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at"`
	ExpectedVersion    int                `db:"expected_version"`
}

func toStudentRow(s *models.Student) (*studentRow, error) {
	row := &studentRow{
		ID:             s.ID,
		Name:           s.Name,
		Email:          s.Email,
		College:        s.College,
		Branch:         s.Branch,
		StreakDays:     s.StreakDays,
		ReadinessScore: s.ReadinessScore,
		Active:         s.Active,
		Version:        s.Version,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.CGPA != nil {
		row.CGPA = sql.NullFloat64{Float64: *s.CGPA, Valid: true}
	}

	var err error
	encode := func(v interface{}, emptyJSON string) types.JSONText {
		if err != nil {
			return nil
		}
		var raw []byte
		raw, err = json.Marshal(v)
		if string(raw) == "null" {
			raw = []byte(emptyJSON)
		}
		return types.JSONText(raw)
	}
	row.Skills = encode(s.Skills, "[]")
	row.Projects = encode(s.Projects, "[]")
	row.Certifications = encode(s.Certifications, "[]")
	row.Events = encode(s.Events, "[]")
	row.CodingLogs = encode(s.CodingLogs, "[]")
	row.Interview = encode(s.Interview, "{}")
	row.ReadinessBreakdown = encode(s.ReadinessBreakdown, "{}")
	if s.LeetCode != nil {
		row.LeetCode = types.NullJSONText{JSONText: encode(s.LeetCode, "{}"), Valid: true}
	}
	if s.GitHub != nil {
		row.GitHub = types.NullJSONText{JSONText: encode(s.GitHub, "{}"), Valid: true}
	}
	if err != nil {
		return nil, fmt.Errorf("encode student %s: %w", s.ID, err)
	}
	return row, nil
}

func (row *studentRow) toModel() (*models.Student, error) {
	s := &models.Student{
		ID:             row.ID,
		Name:           row.Name,
		Email:          row.Email,
		College:        row.College,
		Branch:         row.Branch,
		StreakDays:     row.StreakDays,
		ReadinessScore: row.ReadinessScore,
		Active:         row.Active,
		Version:        row.Version,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
	if row.CGPA.Valid {
		cgpa := row.CGPA.Float64
		s.CGPA = &cgpa
	}

	decode := func(raw types.JSONText, dest interface{}, column string) error {
		if len(raw) == 0 {
			return nil
		}
		if err := raw.Unmarshal(dest); err != nil {
			return fmt.Errorf("decode %s of student %s: %w", column, row.ID, err)
		}
		return nil
	}
	for _, d := range []struct {
		raw    types.JSONText
		dest   interface{}
		column string
	}{
		{row.Skills, &s.Skills, "skills"},
		{row.Projects, &s.Projects, "projects"},
		{row.Certifications, &s.Certifications, "certifications"},
		{row.Events, &s.Events, "events"},
		{row.CodingLogs, &s.CodingLogs, "coding_logs"},
		{row.Interview, &s.Interview, "interview_stats"},
		{row.ReadinessBreakdown, &s.ReadinessBreakdown, "readiness_breakdown"},
	} {
		if err := decode(d.raw, d.dest, d.column); err != nil {
			return nil, err
		}
	}
	if row.LeetCode.Valid {
		s.LeetCode = &models.LeetCodeStats{}
		if err := decode(row.LeetCode.JSONText, s.LeetCode, "leetcode_stats"); err != nil {
			return nil, err
		}
	}
	if row.GitHub.Valid {
		s.GitHub = &models.GitHubStats{}
		if err := decode(row.GitHub.JSONText, s.GitHub, "github_stats"); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student record at version 1.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.insert(ctx, r.db, student)
}

// CreateTx inserts a new student inside an existing transaction.
func (r *StudentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	return r.insert(ctx, tx, student)
}

func (r *StudentRepository) insert(ctx context.Context, exec sqlx.ExtContext, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now
	student.Version = 1

	row, err := toStudentRow(student)
	if err != nil {
		return err
	}
	const query = `INSERT INTO students (id, name, email, college, branch, cgpa, skills, projects, certifications, events, coding_logs,
        leetcode_stats, github_stats, interview_stats, streak_days, readiness_score, readiness_breakdown, active, version, created_at, updated_at)
        VALUES (:id, :name, :email, :college, :branch, :cgpa, :skills, :projects, :certifications, :events, :coding_logs,
        :leetcode_stats, :github_stats, :interview_stats, :streak_days, :readiness_score, :readiness_breakdown, :active, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, exec, query, row); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID fetches a student by ID. A missing row returns sql.ErrNoRows.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var row studentRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return row.toModel()
}

// UpdateVersioned writes the whole student if its stored version still equals
// student.Version, then bumps the version. A lost race returns ErrStaleVersion.
func (r *StudentRepository) UpdateVersioned(ctx context.Context, student *models.Student) error {
	row, err := toStudentRow(student)
	if err != nil {
		return err
	}
	row.ExpectedVersion = student.Version
	row.Version = student.Version + 1
	row.UpdatedAt = time.Now().UTC()

	const query = `UPDATE students SET name = :name, email = :email, college = :college, branch = :branch, cgpa = :cgpa,
        skills = :skills, projects = :projects, certifications = :certifications, events = :events, coding_logs = :coding_logs,
        leetcode_stats = :leetcode_stats, github_stats = :github_stats, interview_stats = :interview_stats,
        streak_days = :streak_days, readiness_score = :readiness_score, readiness_breakdown = :readiness_breakdown,
        active = :active, version = :version, updated_at = :updated_at
        WHERE id = :id AND version = :expected_version`
	res, err := r.db.NamedExecContext(ctx, query, row)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update student rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	student.Version = row.Version
	student.UpdatedAt = row.UpdatedAt
	return nil
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if filter.Branch != "" {
		args = append(args, filter.Branch)
		conditions = append(conditions, fmt.Sprintf("branch = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM students WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, studentColumns, where, size, offset)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}
	students, err := rowsToStudents(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.db.GetContext(ctx, &total, fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", where), args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListActive returns every active student for batch matching.
func (r *StudentRepository) ListActive(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE active = TRUE ORDER BY id`, studentColumns)
	var rows []studentRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	return rowsToStudents(rows)
}

// Leaderboard returns the top active students ordered by readiness, streak and id.
func (r *StudentRepository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	const query = `SELECT id, name, college, branch, readiness_score, streak_days FROM students
        WHERE active = TRUE ORDER BY readiness_score DESC, streak_days DESC, id ASC LIMIT $1`
	var entries []models.LeaderboardEntry
	if err := r.db.SelectContext(ctx, &entries, query, limit); err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func rowsToStudents(rows []studentRow) ([]models.Student, error) {
	students := make([]models.Student, 0, len(rows))
	for i := range rows {
		s, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, nil
}
