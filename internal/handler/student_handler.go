package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/middleware"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/pkg/response"
)

type studentService interface {
	Register(ctx context.Context, req dto.RegisterStudentRequest) (*models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error)
	UpdateProfile(ctx context.Context, id string, req dto.UpdateProfileRequest) (*models.Student, error)
	AddProject(ctx context.Context, id string, req dto.AddProjectRequest) (*models.Project, error)
	AddCertification(ctx context.Context, id string, req dto.AddCertificationRequest) (*models.Certification, error)
	AddEvent(ctx context.Context, id string, req dto.AddEventRequest) (*models.Event, error)
	LogCoding(ctx context.Context, id string, req dto.LogCodingRequest) (*models.CodingLog, error)
	RemoveItem(ctx context.Context, id string, collection models.Collection, itemID string) (*models.Student, error)
	VerifyItem(ctx context.Context, id string, collection models.Collection, itemID string, req dto.VerifyItemRequest) (*models.Student, error)
	SyncGitHub(ctx context.Context, id string, req dto.SyncGitHubRequest) (*models.Student, error)
	SyncLeetCode(ctx context.Context, id string, req dto.SyncLeetCodeRequest) (*models.Student, error)
	CompleteInterview(ctx context.Context, id string, req dto.CompleteInterviewRequest) (*models.Student, error)
	UpdateStreak(ctx context.Context, id string, req dto.UpdateStreakRequest) (*models.Student, error)
}

type readinessReader interface {
	Readiness(ctx context.Context, studentID string) (*dto.ReadinessView, error)
	History(ctx context.Context, studentID string) (*dto.HistoryView, error)
}

// StudentHandler exposes student profile, activity and readiness endpoints.
type StudentHandler struct {
	students  studentService
	readiness readinessReader
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students studentService, readiness readinessReader) *StudentHandler {
	return &StudentHandler{students: students, readiness: readiness}
}

// Register godoc
// @Summary Sign up as a student
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body dto.RegisterStudentRequest true "Signup payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Register(c *gin.Context) {
	var req dto.RegisterStudentRequest
	if err := bindJSON(c, &req, "invalid signup payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.Register(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search by name or email"
// @Param branch query string false "Filter by branch"
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.Branch = strings.TrimSpace(c.Query("branch"))
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filter.Active = &active
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get student detail
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateProfile godoc
// @Summary Update the student profile
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateProfileRequest true "Profile payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/profile [put]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := bindJSON(c, &req, "invalid profile payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.UpdateProfile(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Readiness godoc
// @Summary Current readiness score
// @Description Returns the stored score and its category breakdown
// @Tags Readiness
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/readiness [get]
func (h *StudentHandler) Readiness(c *gin.Context) {
	view, err := h.readiness.Readiness(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil, middleware.ExtractMeta(c))
}

// History godoc
// @Summary Readiness history and growth timeline
// @Tags Readiness
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/history [get]
func (h *StudentHandler) History(c *gin.Context) {
	view, err := h.readiness.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// AddProject godoc
// @Summary Submit a project
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.AddProjectRequest true "Project payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/projects [post]
func (h *StudentHandler) AddProject(c *gin.Context) {
	var req dto.AddProjectRequest
	if err := bindJSON(c, &req, "invalid project payload"); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.students.AddProject(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// AddCertification godoc
// @Summary Submit a certification
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.AddCertificationRequest true "Certification payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/certifications [post]
func (h *StudentHandler) AddCertification(c *gin.Context) {
	var req dto.AddCertificationRequest
	if err := bindJSON(c, &req, "invalid certification payload"); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.students.AddCertification(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// AddEvent godoc
// @Summary Submit an event participation
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.AddEventRequest true "Event payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/events [post]
func (h *StudentHandler) AddEvent(c *gin.Context) {
	var req dto.AddEventRequest
	if err := bindJSON(c, &req, "invalid event payload"); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.students.AddEvent(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// LogCoding godoc
// @Summary Log a coding practice session
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.LogCodingRequest true "Coding log payload"
// @Success 201 {object} response.Envelope
// @Router /students/{id}/coding-logs [post]
func (h *StudentHandler) LogCoding(c *gin.Context) {
	var req dto.LogCodingRequest
	if err := bindJSON(c, &req, "invalid coding log payload"); err != nil {
		response.Error(c, err)
		return
	}
	item, err := h.students.LogCoding(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, item)
}

// RemoveItem godoc
// @Summary Remove an activity item
// @Tags Activities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param collection path string true "projects, certifications, events or coding-logs"
// @Param itemId path string true "Item ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/{collection}/{itemId} [delete]
func (h *StudentHandler) RemoveItem(c *gin.Context) {
	collection, err := parseCollection(c.Param("collection"))
	if err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.RemoveItem(c.Request.Context(), c.Param("id"), collection, c.Param("itemId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// VerifyItem godoc
// @Summary Verify or reject a submitted item
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId path string true "Student ID"
// @Param collection path string true "projects, certifications or events"
// @Param itemId path string true "Item ID"
// @Param payload body dto.VerifyItemRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /admin/verifications/{studentId}/{collection}/{itemId} [post]
func (h *StudentHandler) VerifyItem(c *gin.Context) {
	collection, err := parseCollection(c.Param("collection"))
	if err != nil {
		response.Error(c, err)
		return
	}
	var req dto.VerifyItemRequest
	if err := bindJSON(c, &req, "invalid verification payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.VerifyItem(c.Request.Context(), c.Param("studentId"), collection, c.Param("itemId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// SyncGitHub godoc
// @Summary Store a GitHub activity snapshot
// @Tags Integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.SyncGitHubRequest true "GitHub stats"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/sync/github [post]
func (h *StudentHandler) SyncGitHub(c *gin.Context) {
	var req dto.SyncGitHubRequest
	if err := bindJSON(c, &req, "invalid github payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.SyncGitHub(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// SyncLeetCode godoc
// @Summary Store a LeetCode progress snapshot
// @Tags Integrations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.SyncLeetCodeRequest true "LeetCode stats"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/sync/leetcode [post]
func (h *StudentHandler) SyncLeetCode(c *gin.Context) {
	var req dto.SyncLeetCodeRequest
	if err := bindJSON(c, &req, "invalid leetcode payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.SyncLeetCode(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// CompleteInterview godoc
// @Summary Record a mock interview session
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.CompleteInterviewRequest true "Interview session"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/interviews [post]
func (h *StudentHandler) CompleteInterview(c *gin.Context) {
	var req dto.CompleteInterviewRequest
	if err := bindJSON(c, &req, "invalid interview payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.CompleteInterview(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// UpdateStreak godoc
// @Summary Set the daily activity streak
// @Tags Activities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Param payload body dto.UpdateStreakRequest true "Streak"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/streak [put]
func (h *StudentHandler) UpdateStreak(c *gin.Context) {
	var req dto.UpdateStreakRequest
	if err := bindJSON(c, &req, "invalid streak payload"); err != nil {
		response.Error(c, err)
		return
	}
	student, err := h.students.UpdateStreak(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
