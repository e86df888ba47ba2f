package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/middleware"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	"github.com/noah-isme/career-readiness-api/internal/service"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
	"github.com/noah-isme/career-readiness-api/pkg/response"
)

type jobService interface {
	Create(ctx context.Context, req dto.CreateJobRequest, claims *models.JWTClaims) (*models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	List(ctx context.Context, filter models.JobFilter, claims *models.JWTClaims) ([]models.Job, *models.Pagination, error)
	Update(ctx context.Context, id string, req dto.UpdateJobRequest, claims *models.JWTClaims) (*models.Job, error)
	Matches(ctx context.Context, id string, claims *models.JWTClaims) (*dto.JobMatchesView, error)
}

type matchingService interface {
	Enqueue(ctx context.Context, jobID string, claims *models.JWTClaims) (bool, error)
	MatchOne(ctx context.Context, jobID, studentID string) (*scoring.MatchResult, error)
}

type matchExporter interface {
	ExportMatches(ctx context.Context, jobID string, claims *models.JWTClaims, format string) (*service.ExportFile, error)
}

// JobHandler exposes recruiter job postings and matching.
type JobHandler struct {
	jobs     jobService
	matching matchingService
	exports  matchExporter
}

// NewJobHandler constructs JobHandler.
func NewJobHandler(jobs jobService, matching matchingService, exports matchExporter) *JobHandler {
	return &JobHandler{jobs: jobs, matching: matching, exports: exports}
}

// Create godoc
// @Summary Create a job posting
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateJobRequest true "Job payload"
// @Success 201 {object} response.Envelope
// @Router /jobs [post]
func (h *JobHandler) Create(c *gin.Context) {
	var req dto.CreateJobRequest
	if err := bindJSON(c, &req, "invalid job payload"); err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.jobs.Create(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, job)
}

// List godoc
// @Summary List job postings
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param status query string false "draft, open or closed"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /jobs [get]
func (h *JobHandler) List(c *gin.Context) {
	filter := models.JobFilter{Status: models.JobStatus(c.Query("status"))}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}
	jobs, pagination, err := h.jobs.List(c.Request.Context(), filter, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, jobs, pagination, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary Get a job posting
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /jobs/{id} [get]
func (h *JobHandler) Get(c *gin.Context) {
	job, err := h.jobs.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Update godoc
// @Summary Update a job posting
// @Description Changing any matching criterion clears the cached ranking
// @Tags Jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param payload body dto.UpdateJobRequest true "Job payload"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/{id} [put]
func (h *JobHandler) Update(c *gin.Context) {
	var req dto.UpdateJobRequest
	if err := bindJSON(c, &req, "invalid job payload"); err != nil {
		response.Error(c, err)
		return
	}
	job, err := h.jobs.Update(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// RunMatching godoc
// @Summary Queue a matching run
// @Tags Matching
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 202 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /jobs/{id}/match [post]
func (h *JobHandler) RunMatching(c *gin.Context) {
	jobID := c.Param("id")
	queued, err := h.matching.Enqueue(c.Request.Context(), jobID, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	message := "matching run queued"
	if !queued {
		message = "a matching run is already pending"
	}
	response.Accepted(c, dto.MatchRunAccepted{JobID: jobID, Queued: queued, Message: message})
}

// Matches godoc
// @Summary Cached ranking of a job
// @Tags Matching
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/matches [get]
func (h *JobHandler) Matches(c *gin.Context) {
	view, err := h.jobs.Matches(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// ExportMatches godoc
// @Summary Download the ranking of a job
// @Tags Matching
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /jobs/{id}/matches/export [get]
func (h *JobHandler) ExportMatches(c *gin.Context) {
	file, err := h.exports.ExportMatches(c.Request.Context(), c.Param("id"), claimsFromContext(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

// MatchOne godoc
// @Summary Score one student against a job
// @Tags Matching
// @Produce json
// @Security BearerAuth
// @Param id path string true "Job ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /jobs/{id}/match/{studentId} [get]
func (h *JobHandler) MatchOne(c *gin.Context) {
	claims := claimsFromContext(c)
	studentID := c.Param("studentId")
	if claims != nil && claims.Role == models.RoleStudent && !claims.Owns(studentID) {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "students can only view their own match"))
		return
	}
	result, err := h.matching.MatchOne(c.Request.Context(), c.Param("id"), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}
