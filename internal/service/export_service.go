package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
	"github.com/noah-isme/career-readiness-api/pkg/export"
)

type leaderboardReader interface {
	Top(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type datasetRenderer interface {
	Render(format export.Format, data export.Dataset) ([]byte, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders rankings as CSV or PDF downloads.
type ExportService struct {
	jobs        *JobService
	leaderboard leaderboardReader
	renderer    datasetRenderer
	logger      *zap.Logger
	now         func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(jobs *JobService, leaderboard leaderboardReader, renderer datasetRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewRenderer()
	}
	return &ExportService{jobs: jobs, leaderboard: leaderboard, renderer: renderer, logger: logger, now: time.Now}
}

// ExportMatches renders the cached ranking of a job.
func (s *ExportService) ExportMatches(ctx context.Context, jobID string, claims *models.JWTClaims, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	job, err := s.jobs.Get(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if err := ensureJobOwner(job, claims); err != nil {
		return nil, err
	}
	return s.render(f, "matches-"+job.ID, matchesDataset(job))
}

// ExportLeaderboard renders the top of the leaderboard.
func (s *ExportService) ExportLeaderboard(ctx context.Context, limit int, format string) (*ExportFile, error) {
	f, err := export.ParseFormat(format)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unsupported export format")
	}
	entries, err := s.leaderboard.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	data := export.Dataset{
		Title:   "Readiness Leaderboard",
		Headers: []string{"Rank", "Student", "College", "Branch", "Readiness", "Streak"},
	}
	var readinessSum, streakSum int
	for _, e := range entries {
		readinessSum += e.ReadinessScore
		streakSum += e.StreakDays
		data.Rows = append(data.Rows, map[string]string{
			"Rank":      strconv.Itoa(e.Rank),
			"Student":   e.Name,
			"College":   e.College,
			"Branch":    e.Branch,
			"Readiness": strconv.Itoa(e.ReadinessScore),
			"Streak":    strconv.Itoa(e.StreakDays),
		})
	}
	if n := float64(len(entries)); n > 0 {
		data.Footer = map[string]string{
			"Student":   "Average",
			"Readiness": formatPoints(float64(readinessSum) / n),
			"Streak":    formatPoints(float64(streakSum) / n),
		}
	}
	return s.render(f, "leaderboard", data)
}

func (s *ExportService) render(f export.Format, base string, data export.Dataset) (*ExportFile, error) {
	body, err := s.renderer.Render(f, data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	filename := fmt.Sprintf("%s-%s.%s", base, s.now().UTC().Format("20060102"), f)
	s.logger.Debug("export rendered", zap.String("file", filename), zap.Int("rows", len(data.Rows)))
	return &ExportFile{Filename: filename, ContentType: f.ContentType(), Body: body}, nil
}

func matchesDataset(job *models.Job) export.Dataset {
	headers := []string{"Rank", "Student", "Match"}
	for _, cat := range scoring.MatchCategories {
		headers = append(headers, cat.DisplayName())
	}
	headers = append(headers, "Matched Skills", "Missing Skills")

	data := export.Dataset{Title: fmt.Sprintf("%s - %s", job.Title, job.Company), Headers: headers}
	for i, m := range job.MatchedStudents {
		name := m.StudentName
		if name == "" {
			name = m.StudentID
		}
		row := map[string]string{
			"Rank":           strconv.Itoa(i + 1),
			"Student":        name,
			"Match":          formatPoints(m.MatchScore),
			"Matched Skills": strings.Join(m.SkillsMatched, ", "),
			"Missing Skills": strings.Join(m.SkillsMissing, ", "),
		}
		for _, cat := range scoring.MatchCategories {
			row[cat.DisplayName()] = formatPoints(m.ScoreBreakdown[string(cat)])
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func formatPoints(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
