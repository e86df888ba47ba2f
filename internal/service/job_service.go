package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/repository"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type jobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter) ([]models.Job, int, error)
	UpdateVersioned(ctx context.Context, job *models.Job) error
}

// JobService manages recruiter postings.
type JobService struct {
	repo      jobRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewJobService constructs a JobService.
func NewJobService(repo jobRepository, validate *validator.Validate, logger *zap.Logger) *JobService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &JobService{repo: repo, validator: validate, logger: logger}
}

// Create stores a posting owned by the caller.
func (s *JobService) Create(ctx context.Context, req dto.CreateJobRequest, claims *models.JWTClaims) (*models.Job, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	job := &models.Job{RecruiterID: claims.UserID}
	applyJobRequest(job, req)
	if job.Status == "" {
		job.Status = models.JobStatusDraft
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create job")
	}
	s.logger.Info("job created", zap.String("job_id", job.ID), zap.String("recruiter_id", job.RecruiterID))
	return job, nil
}

// Get returns a posting.
func (s *JobService) Get(ctx context.Context, id string) (*models.Job, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load job")
	}
	return job, nil
}

// List returns postings. Recruiters only see their own.
func (s *JobService) List(ctx context.Context, filter models.JobFilter, claims *models.JWTClaims) ([]models.Job, *models.Pagination, error) {
	if claims != nil && claims.Role == models.RoleRecruiter {
		filter.RecruiterID = claims.UserID
	}
	jobs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list jobs")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return jobs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Update replaces the editable fields. Any change to a matching criterion drops the
// cached ranking; it is not recomputed here.
func (s *JobService) Update(ctx context.Context, id string, req dto.UpdateJobRequest, claims *models.JWTClaims) (*models.Job, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid job payload")
	}
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureJobOwner(job, claims); err != nil {
		return nil, err
	}

	before := *job
	applyJobRequest(job, dto.CreateJobRequest(req))
	if job.Status == "" {
		job.Status = before.Status
	}
	criteriaChanged := !job.MatchingCriteriaEqual(&before)
	if criteriaChanged {
		job.ClearMatches()
	}

	if err := s.repo.UpdateVersioned(ctx, job); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			return nil, appErrors.Clone(appErrors.ErrVersionConflict, "job was modified concurrently, reload and retry")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update job")
	}
	if criteriaChanged {
		s.logger.Info("job criteria changed, cached matches cleared", zap.String("job_id", job.ID))
	}
	return job, nil
}

// Matches returns the cached ranking of a posting.
func (s *JobService) Matches(ctx context.Context, id string, claims *models.JWTClaims) (*dto.JobMatchesView, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ensureJobOwner(job, claims); err != nil {
		return nil, err
	}
	matches := job.MatchedStudents
	if matches == nil {
		matches = []models.MatchedStudent{}
	}
	return &dto.JobMatchesView{JobID: job.ID, ComputedAt: job.MatchesComputedAt, Matches: matches}, nil
}

func applyJobRequest(job *models.Job, req dto.CreateJobRequest) {
	job.Title = strings.TrimSpace(req.Title)
	job.Company = strings.TrimSpace(req.Company)
	job.Description = req.Description
	if req.Status != "" {
		job.Status = req.Status
	}
	job.RequiredSkills = cleanList(req.RequiredSkills)
	job.PreferredSkills = cleanList(req.PreferredSkills)
	job.MinReadinessScore = req.MinReadinessScore
	job.MinCGPA = req.MinCGPA
	job.MinProjects = req.MinProjects
	job.ExpiresAt = req.ExpiresAt
}

// ensureJobOwner allows admins and the recruiter who owns the posting.
func ensureJobOwner(job *models.Job, claims *models.JWTClaims) error {
	if claims == nil {
		return appErrors.ErrUnauthorized
	}
	if claims.Role == models.RoleAdmin || claims.UserID == job.RecruiterID {
		return nil
	}
	return appErrors.Clone(appErrors.ErrForbidden, "job belongs to another recruiter")
}
