package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/repository"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type readinessStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	UpdateVersioned(ctx context.Context, student *models.Student) error
}

type readinessHistoryRepository interface {
	Append(ctx context.Context, studentID string, scores []models.ScoreEntry, timeline []models.TimelineEntry) error
	ListScores(ctx context.Context, studentID string) ([]models.ScoreEntry, error)
	ListTimeline(ctx context.Context, studentID string) ([]models.TimelineEntry, error)
}

// Mutator applies an activity change to a freshly loaded student.
type Mutator func(*models.Student) error

// ReadinessConfig tunes the recompute unit.
type ReadinessConfig struct {
	MaxRetries int
	CacheTTL   time.Duration
}

// ReadinessService owns the load, mutate, score and save cycle of a student. Every
// activity change goes through Apply so the stored score always reflects the stored
// activity.
type ReadinessService struct {
	students   readinessStudentRepository
	history    readinessHistoryRepository
	calculator *scoring.Calculator
	recorder   *scoring.Recorder
	cache      *CacheService
	metrics    *MetricsService
	logger     *zap.Logger
	cfg        ReadinessConfig
}

// NewReadinessService constructs a ReadinessService.
func NewReadinessService(students readinessStudentRepository, history readinessHistoryRepository, calculator *scoring.Calculator, cache *CacheService, metrics *MetricsService, logger *zap.Logger, cfg ReadinessConfig) *ReadinessService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if calculator == nil {
		calculator, _ = scoring.NewCalculator(scoring.DefaultWeights())
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &ReadinessService{
		students:   students,
		history:    history,
		calculator: calculator,
		recorder:   scoring.NewRecorder(),
		cache:      cache,
		metrics:    metrics,
		logger:     logger,
		cfg:        cfg,
	}
}

// WithRecorder swaps the history recorder, mainly to pin the clock.
func (s *ReadinessService) WithRecorder(recorder *scoring.Recorder) *ReadinessService {
	s.recorder = recorder
	return s
}

// Apply loads the student, runs mutate, recomputes the score and saves activity and
// score in one version-checked write. A lost race reloads and replays mutate; after
// MaxRetries lost races it returns a VERSION_CONFLICT error. An empty reason records
// history only when the score moved.
func (s *ReadinessService) Apply(ctx context.Context, studentID, reason string, mutate Mutator) (*models.Student, error) {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		start := time.Now()
		student, err := s.students.FindByID(ctx, studentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if mutate != nil {
			if err := mutate(student); err != nil {
				return nil, err
			}
		}

		historyFrom, timelineFrom := len(student.ReadinessHistory), len(student.GrowthTimeline)
		outcome := s.rescore(student, reason)

		if err := s.students.UpdateVersioned(ctx, student); err != nil {
			if errors.Is(err, repository.ErrStaleVersion) {
				lastErr = err
				s.metrics.ObserveReadiness(OutcomeConflict, 0, time.Since(start))
				s.logger.Debug("readiness save lost a race, retrying", zap.String("student_id", studentID), zap.Int("attempt", attempt))
				continue
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save student")
		}
		s.metrics.ObserveReadiness(outcome, student.ReadinessScore, time.Since(start))

		s.afterCommit(ctx, student, student.ReadinessHistory[historyFrom:], student.GrowthTimeline[timelineFrom:])
		return student, nil
	}
	s.logger.Warn("readiness save gave up after retries", zap.String("student_id", studentID), zap.Int("attempts", s.cfg.MaxRetries))
	return nil, appErrors.Wrap(lastErr, appErrors.ErrVersionConflict.Code, appErrors.ErrVersionConflict.Status, "student was modified concurrently, retry the request")
}

// rescore recomputes the readiness score in place. A calculation error keeps the
// previous score and breakdown.
func (s *ReadinessService) rescore(student *models.Student, reason string) string {
	result, err := s.calculator.Calculate(student)
	if err != nil {
		s.logger.Error("readiness calculation failed, keeping last score",
			zap.String("student_id", student.ID),
			zap.Int("score", student.ReadinessScore),
			zap.Error(err))
		return OutcomeFailed
	}
	breakdown := make(map[string]float64, len(result.Breakdown))
	for category, points := range result.Breakdown {
		breakdown[string(category)] = points
	}
	student.ReadinessBreakdown = breakdown
	s.recorder.Record(student, result.Total, reason)
	return OutcomeScored
}

func (s *ReadinessService) afterCommit(ctx context.Context, student *models.Student, scores []models.ScoreEntry, timeline []models.TimelineEntry) {
	if s.history != nil && (len(scores) > 0 || len(timeline) > 0) {
		if err := s.history.Append(ctx, student.ID, scores, timeline); err != nil {
			s.logger.Warn("failed to append readiness history", zap.String("student_id", student.ID), zap.Error(err))
		}
	}
	_ = s.cache.Delete(ctx, readinessCacheKey(student.ID))
	_ = s.cache.Invalidate(ctx, leaderboardPattern)
}

// Readiness returns the stored score and breakdown of a student.
func (s *ReadinessService) Readiness(ctx context.Context, studentID string) (*dto.ReadinessView, error) {
	key := readinessCacheKey(studentID)
	var cached dto.ReadinessView
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	view := &dto.ReadinessView{
		StudentID: student.ID,
		Score:     student.ReadinessScore,
		Breakdown: student.ReadinessBreakdown,
		UpdatedAt: student.UpdatedAt,
	}
	if view.Breakdown == nil {
		view.Breakdown = map[string]float64{}
	}
	_ = s.cache.Set(ctx, key, view, s.cfg.CacheTTL)
	return view, nil
}

// History returns the readiness history and growth timeline of a student, oldest first.
func (s *ReadinessService) History(ctx context.Context, studentID string) (*dto.HistoryView, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	scores, err := s.history.ListScores(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load readiness history")
	}
	timeline, err := s.history.ListTimeline(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load growth timeline")
	}
	if scores == nil {
		scores = []models.ScoreEntry{}
	}
	if timeline == nil {
		timeline = []models.TimelineEntry{}
	}
	return &dto.HistoryView{StudentID: studentID, ReadinessHistory: scores, GrowthTimeline: timeline}, nil
}
