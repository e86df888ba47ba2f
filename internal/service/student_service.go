package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type studentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
}

type signupRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	CreateWithStudent(ctx context.Context, user *models.User, insertStudent func(context.Context, *sqlx.Tx) error) error
}

type readinessApplier interface {
	Apply(ctx context.Context, studentID, reason string, mutate Mutator) (*models.Student, error)
}

// Timeline reasons recorded by student use-cases.
const (
	ReasonAccountCreated     = "account created"
	ReasonProfileUpdated     = "profile updated"
	ReasonGitHubSync         = "github sync"
	ReasonLeetCodeSync       = "leetcode sync"
	ReasonInterviewCompleted = "interview completed"
)

// StudentService handles student activity use-cases. Every change is routed through
// the readiness unit so the score is recomputed on each mutation.
type StudentService struct {
	repo      studentRepository
	users     signupRepository
	readiness readinessApplier
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs the student service.
func NewStudentService(repo studentRepository, users signupRepository, readiness readinessApplier, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, users: users, readiness: readiness, validator: validate, logger: logger, now: time.Now}
}

// Register creates the login and the student record, then computes the first score.
func (s *StudentService) Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	id := uuid.NewString()
	user := &models.User{
		ID:           id,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     strings.TrimSpace(req.Name),
		Role:         models.RoleStudent,
		Active:       true,
	}
	student := &models.Student{
		ID:             id,
		Name:           strings.TrimSpace(req.Name),
		Email:          email,
		College:        strings.TrimSpace(req.College),
		Branch:         strings.TrimSpace(req.Branch),
		CGPA:           req.CGPA,
		Skills:         cleanList(req.Skills),
		Projects:       []models.Project{},
		Certifications: []models.Certification{},
		Events:         []models.Event{},
		CodingLogs:     []models.CodingLog{},
		Active:         true,
	}
	if err := s.users.CreateWithStudent(ctx, user, func(ctx context.Context, tx *sqlx.Tx) error {
		return s.repo.CreateTx(ctx, tx, student)
	}); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student registered", zap.String("student_id", id))

	return s.readiness.Apply(ctx, id, ReasonAccountCreated, nil)
}

// Get returns a student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// List returns students and pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return students, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateProfile replaces name, college, branch, CGPA and declared skills.
func (s *StudentService) UpdateProfile(ctx context.Context, id string, req dto.UpdateProfileRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}
	return s.readiness.Apply(ctx, id, ReasonProfileUpdated, func(st *models.Student) error {
		st.Name = strings.TrimSpace(req.Name)
		st.College = strings.TrimSpace(req.College)
		st.Branch = strings.TrimSpace(req.Branch)
		st.CGPA = req.CGPA
		st.Skills = cleanList(req.Skills)
		return nil
	})
}

// AddProject submits a pending project.
func (s *StudentService) AddProject(ctx context.Context, id string, req dto.AddProjectRequest) (*models.Project, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid project payload")
	}
	project := models.Project{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Tags:        cleanList(req.Tags),
		Status:      models.ItemStatusPending,
		CreatedAt:   s.now().UTC(),
	}
	if _, err := s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		st.Projects = append(st.Projects, project)
		return nil
	}); err != nil {
		return nil, err
	}
	return &project, nil
}

// AddCertification submits a pending certification.
func (s *StudentService) AddCertification(ctx context.Context, id string, req dto.AddCertificationRequest) (*models.Certification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid certification payload")
	}
	cert := models.Certification{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Provider:  strings.TrimSpace(req.Provider),
		Status:    models.ItemStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if _, err := s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		st.Certifications = append(st.Certifications, cert)
		return nil
	}); err != nil {
		return nil, err
	}
	return &cert, nil
}

// AddEvent submits a pending event participation.
func (s *StudentService) AddEvent(ctx context.Context, id string, req dto.AddEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid event payload")
	}
	event := models.Event{
		ID:            uuid.NewString(),
		Name:          strings.TrimSpace(req.Name),
		Status:        models.ItemStatusPending,
		PointsAwarded: req.PointsAwarded,
		CreatedAt:     s.now().UTC(),
	}
	if _, err := s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		st.Events = append(st.Events, event)
		return nil
	}); err != nil {
		return nil, err
	}
	return &event, nil
}

// LogCoding appends a self-reported practice session.
func (s *StudentService) LogCoding(ctx context.Context, id string, req dto.LogCodingRequest) (*models.CodingLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid coding log payload")
	}
	date := s.now().UTC()
	if req.Date != nil {
		date = req.Date.UTC()
	}
	entry := models.CodingLog{
		ID:             uuid.NewString(),
		Platform:       strings.TrimSpace(req.Platform),
		ProblemsSolved: req.ProblemsSolved,
		MinutesSpent:   req.MinutesSpent,
		Date:           date,
	}
	if _, err := s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		st.CodingLogs = append(st.CodingLogs, entry)
		return nil
	}); err != nil {
		return nil, err
	}
	return &entry, nil
}

// RemoveItem deletes an activity item from one of the student's collections.
func (s *StudentService) RemoveItem(ctx context.Context, id string, collection models.Collection, itemID string) (*models.Student, error) {
	return s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		var found bool
		switch collection {
		case models.CollectionProjects:
			st.Projects, found = models.RemoveItem(st.Projects, itemID)
		case models.CollectionCertifications:
			st.Certifications, found = models.RemoveItem(st.Certifications, itemID)
		case models.CollectionEvents:
			st.Events, found = models.RemoveItem(st.Events, itemID)
		case models.CollectionCodingLogs:
			st.CodingLogs, found = models.RemoveItem(st.CodingLogs, itemID)
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown collection %q", collection))
		}
		if !found {
			return appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil
	})
}

// VerifyItem records an admin decision on a project, certification or event.
func (s *StudentService) VerifyItem(ctx context.Context, id string, collection models.Collection, itemID string, req dto.VerifyItemRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid verification payload")
	}
	reason := fmt.Sprintf("%s %s", collection, req.Decision)
	return s.readiness.Apply(ctx, id, reason, func(st *models.Student) error {
		idx := -1
		switch collection {
		case models.CollectionProjects:
			if idx = models.FindItem(st.Projects, itemID); idx >= 0 {
				st.Projects[idx].Status = req.Decision
				st.Projects[idx].Verified = req.Decision == models.ItemStatusVerified
			}
		case models.CollectionCertifications:
			if idx = models.FindItem(st.Certifications, itemID); idx >= 0 {
				st.Certifications[idx].Status = req.Decision
			}
		case models.CollectionEvents:
			if idx = models.FindItem(st.Events, itemID); idx >= 0 {
				st.Events[idx].Status = req.Decision
			}
		default:
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("collection %q cannot be verified", collection))
		}
		if idx < 0 {
			return appErrors.Clone(appErrors.ErrNotFound, "item not found")
		}
		return nil
	})
}

// SyncGitHub stores the latest GitHub snapshot.
func (s *StudentService) SyncGitHub(ctx context.Context, id string, req dto.SyncGitHubRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid github payload")
	}
	synced := s.now().UTC()
	return s.readiness.Apply(ctx, id, ReasonGitHubSync, func(st *models.Student) error {
		st.GitHub = &models.GitHubStats{
			Username:      req.Username,
			TotalRepos:    req.TotalRepos,
			TotalCommits:  req.TotalCommits,
			ActivityScore: req.ActivityScore,
			TopLanguages:  cleanList(req.TopLanguages),
			SyncedAt:      synced,
		}
		return nil
	})
}

// SyncLeetCode stores the latest LeetCode snapshot.
func (s *StudentService) SyncLeetCode(ctx context.Context, id string, req dto.SyncLeetCodeRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid leetcode payload")
	}
	synced := s.now().UTC()
	return s.readiness.Apply(ctx, id, ReasonLeetCodeSync, func(st *models.Student) error {
		total := req.TotalSolved
		if total < req.Easy+req.Medium+req.Hard {
			total = req.Easy + req.Medium + req.Hard
		}
		st.LeetCode = &models.LeetCodeStats{
			Username:    req.Username,
			Easy:        req.Easy,
			Medium:      req.Medium,
			Hard:        req.Hard,
			TotalSolved: total,
			Streak:      req.Streak,
			SyncedAt:    synced,
		}
		return nil
	})
}

// CompleteInterview folds a mock interview into the running interview stats.
func (s *StudentService) CompleteInterview(ctx context.Context, id string, req dto.CompleteInterviewRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid interview payload")
	}
	reason := ""
	if req.Scored() {
		reason = ReasonInterviewCompleted
	}
	return s.readiness.Apply(ctx, id, reason, func(st *models.Student) error {
		st.Interview = scoring.FoldSession(st.Interview, req.InterviewSession)
		return nil
	})
}

// UpdateStreak sets the daily activity streak.
func (s *StudentService) UpdateStreak(ctx context.Context, id string, req dto.UpdateStreakRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid streak payload")
	}
	return s.readiness.Apply(ctx, id, "", func(st *models.Student) error {
		st.StreakDays = req.StreakDays
		return nil
	})
}

// cleanList trims entries and drops blanks while keeping order.
func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
