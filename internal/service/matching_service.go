package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/repository"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
	"github.com/noah-isme/career-readiness-api/pkg/jobs"
)

// MatchingJobType tags matching runs on the background queue.
const MatchingJobType = "job_matching"

type matchingJobRepository interface {
	FindByID(ctx context.Context, id string) (*models.Job, error)
	ReplaceMatches(ctx context.Context, jobID string, version int, matches []models.MatchedStudent, computedAt time.Time) error
}

type matchingStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ListActive(ctx context.Context) ([]models.Student, error)
}

type matchingHistoryRepository interface {
	RecentScores(ctx context.Context, studentIDs []string, limit int) (map[string][]models.ScoreEntry, error)
}

type matchQueue interface {
	Enqueue(job jobs.Job) error
	Pending() int
}

// MatchingConfig bounds batch scoring concurrency.
type MatchingConfig struct {
	Workers int
}

// MatchingService ranks active students against job postings.
type MatchingService struct {
	jobs     matchingJobRepository
	students matchingStudentRepository
	history  matchingHistoryRepository
	matcher  *scoring.Matcher
	metrics  *MetricsService
	logger   *zap.Logger
	cfg      MatchingConfig
	now      func() time.Time

	mu    sync.RWMutex
	queue matchQueue
}

// NewMatchingService constructs a MatchingService.
func NewMatchingService(jobRepo matchingJobRepository, students matchingStudentRepository, history matchingHistoryRepository, matcher *scoring.Matcher, metrics *MetricsService, logger *zap.Logger, cfg MatchingConfig) *MatchingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if matcher == nil {
		matcher, _ = scoring.NewMatcher(scoring.DefaultMatchWeights())
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	return &MatchingService{
		jobs:     jobRepo,
		students: students,
		history:  history,
		matcher:  matcher,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
}

// AttachQueue wires the background queue used by Enqueue.
func (s *MatchingService) AttachQueue(queue matchQueue) {
	s.mu.Lock()
	s.queue = queue
	s.mu.Unlock()
}

// Run scores every active student against the job and replaces the cached ranking
// with the eligible students in rank order. It returns the number of ranked students.
func (s *MatchingService) Run(ctx context.Context, jobID string) (n int, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveMatchingRun(err, n, time.Since(start)) }()

	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return 0, err
	}
	if job.Status == models.JobStatusClosed {
		return 0, appErrors.Clone(appErrors.ErrJobClosed, "matching is not available for closed jobs")
	}

	students, err := s.students.ListActive(ctx)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	if err := s.attachHistory(ctx, students); err != nil {
		return 0, err
	}

	results := make([]*scoring.Candidate, len(students))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range students {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			student := &students[i]
			result, err := s.matcher.Match(student, job)
			if err != nil {
				s.logger.Warn("skipping student that cannot be matched",
					zap.String("job_id", jobID), zap.String("student_id", student.ID), zap.Error(err))
				return nil
			}
			if !result.Eligible {
				return nil
			}
			candidate := scoring.NewCandidate(student, result)
			results[i] = &candidate
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "matching run interrupted")
	}

	candidates := make([]scoring.Candidate, 0, len(results))
	for _, c := range results {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	matches := scoring.ToMatchedStudents(scoring.Rank(candidates))

	if err := s.jobs.ReplaceMatches(ctx, jobID, job.Version, matches, s.now().UTC()); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			s.logger.Info("matching run superseded by a job edit, discarding results",
				zap.String("job_id", jobID), zap.Int("version", job.Version))
			return 0, nil
		}
		if errors.Is(err, sql.ErrNoRows) {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store matches")
	}
	s.logger.Info("matching run finished",
		zap.String("job_id", jobID),
		zap.Int("students", len(students)),
		zap.Int("eligible", len(matches)),
		zap.Duration("elapsed", time.Since(start)))
	return len(matches), nil
}

// Enqueue schedules a background run. It reports false when a run for the job is
// already pending. Without a queue the run happens inline.
func (s *MatchingService) Enqueue(ctx context.Context, jobID string, claims *models.JWTClaims) (bool, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return false, err
	}
	if err := ensureJobOwner(job, claims); err != nil {
		return false, err
	}
	if job.Status == models.JobStatusClosed {
		return false, appErrors.Clone(appErrors.ErrJobClosed, "matching is not available for closed jobs")
	}

	s.mu.RLock()
	queue := s.queue
	s.mu.RUnlock()
	if queue == nil {
		if _, err := s.Run(ctx, jobID); err != nil {
			return false, err
		}
		return true, nil
	}

	err = queue.Enqueue(jobs.Job{ID: "match:" + jobID, Type: MatchingJobType, Payload: jobID})
	s.metrics.SetQueueDepth(queue.Pending())
	if errors.Is(err, jobs.ErrAlreadyQueued) {
		return false, nil
	}
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue matching run")
	}
	return true, nil
}

// HandleJob is the queue handler for matching runs.
func (s *MatchingService) HandleJob(ctx context.Context, job jobs.Job) error {
	jobID, ok := job.Payload.(string)
	if !ok || jobID == "" {
		return fmt.Errorf("matching job %s: unexpected payload %T", job.ID, job.Payload)
	}
	_, err := s.Run(ctx, jobID)
	if appErrors.Is(err, appErrors.ErrNotFound) || appErrors.Is(err, appErrors.ErrJobClosed) {
		s.logger.Info("dropping matching run", zap.String("job_id", jobID), zap.Error(err))
		return nil
	}
	return err
}

// MatchOne scores a single student against a job without touching the cached ranking.
func (s *MatchingService) MatchOne(ctx context.Context, jobID, studentID string) (*scoring.MatchResult, error) {
	job, err := s.loadJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	batch := []models.Student{*student}
	if err := s.attachHistory(ctx, batch); err != nil {
		return nil, err
	}
	result, err := s.matcher.Match(&batch[0], job)
	if err != nil {
		if errors.Is(err, scoring.ErrInvalidShape) {
			return nil, appErrors.Wrap(err, appErrors.ErrInvalidShape.Code, appErrors.ErrInvalidShape.Status, "student record cannot be matched")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to match student")
	}
	return &result, nil
}

func (s *MatchingService) loadJob(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.jobs.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

// attachHistory fills each student's trailing readiness history for the growth category.
func (s *MatchingService) attachHistory(ctx context.Context, students []models.Student) error {
	if s.history == nil || len(students) == 0 {
		return nil
	}
	ids := make([]string, len(students))
	for i := range students {
		ids[i] = students[i].ID
	}
	recent, err := s.history.RecentScores(ctx, ids, s.matcher.Weights().GrowthWindow)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load readiness history")
	}
	for i := range students {
		students[i].ReadinessHistory = recent[students[i].ID]
	}
	return nil
}
