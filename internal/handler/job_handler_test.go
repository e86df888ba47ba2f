package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/career-readiness-api/internal/dto"
	"github.com/noah-isme/career-readiness-api/internal/models"
	"github.com/noah-isme/career-readiness-api/internal/scoring"
	"github.com/noah-isme/career-readiness-api/internal/service"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type fakeJobSrv struct {
	jobService

	created *dto.CreateJobRequest
	claims  *models.JWTClaims
}

func (f *fakeJobSrv) Create(_ context.Context, req dto.CreateJobRequest, claims *models.JWTClaims) (*models.Job, error) {
	f.created = &req
	f.claims = claims
	return &models.Job{ID: "j1", RecruiterID: claims.UserID, Title: req.Title, Status: models.JobStatusDraft}, nil
}

type fakeMatchingSrv struct {
	queued  bool
	err     error
	matched []string
}

func (f *fakeMatchingSrv) Enqueue(context.Context, string, *models.JWTClaims) (bool, error) {
	return f.queued, f.err
}

func (f *fakeMatchingSrv) MatchOne(_ context.Context, jobID, studentID string) (*scoring.MatchResult, error) {
	f.matched = append(f.matched, jobID+"/"+studentID)
	return &scoring.MatchResult{TotalScore: 61.5, Eligible: true}, nil
}

type fakeMatchExporter struct{}

func (fakeMatchExporter) ExportMatches(_ context.Context, jobID string, _ *models.JWTClaims, format string) (*service.ExportFile, error) {
	if format == "xlsx" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
	return &service.ExportFile{Filename: "matches-" + jobID + "-20240301.csv", ContentType: "text/csv", Body: []byte("Rank\n")}, nil
}

var recruiter = &models.JWTClaims{UserID: "r1", Role: models.RoleRecruiter}

func TestJobHandlerCreate(t *testing.T) {
	srv := &fakeJobSrv{}
	h := NewJobHandler(srv, &fakeMatchingSrv{}, fakeMatchExporter{})

	c, rec := newTestContext(http.MethodPost, "/jobs", map[string]interface{}{
		"title": "Backend intern", "company": "Acme", "requiredSkills": []string{"go"},
	}, recruiter)
	h.Create(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.created)
	assert.Equal(t, []string{"go"}, srv.created.RequiredSkills)
	assert.Equal(t, "r1", srv.claims.UserID)
}

func TestJobHandlerRunMatching(t *testing.T) {
	h := NewJobHandler(&fakeJobSrv{}, &fakeMatchingSrv{queued: false}, fakeMatchExporter{})

	c, rec := newTestContext(http.MethodPost, "/jobs/j1/match", nil, recruiter, param("id", "j1"))
	h.RunMatching(c)

	require.Equal(t, http.StatusAccepted, rec.Code)
	var accepted dto.MatchRunAccepted
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &accepted))
	assert.Equal(t, "j1", accepted.JobID)
	assert.False(t, accepted.Queued)
	assert.Equal(t, "a matching run is already pending", accepted.Message)
}

func TestJobHandlerRunMatchingClosedJob(t *testing.T) {
	matching := &fakeMatchingSrv{err: appErrors.Clone(appErrors.ErrJobClosed, "matching is not available for closed jobs")}
	h := NewJobHandler(&fakeJobSrv{}, matching, fakeMatchExporter{})

	c, rec := newTestContext(http.MethodPost, "/jobs/j1/match", nil, recruiter, param("id", "j1"))
	h.RunMatching(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "JOB_CLOSED", decodeEnvelope(t, rec).Error.Code)
}

func TestJobHandlerMatchOneStudentScope(t *testing.T) {
	matching := &fakeMatchingSrv{}
	h := NewJobHandler(&fakeJobSrv{}, matching, fakeMatchExporter{})
	student := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent, StudentID: "s1"}

	c, rec := newTestContext(http.MethodGet, "/jobs/j1/match/s2", nil, student, param("id", "j1"), param("studentId", "s2"))
	h.MatchOne(c)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/jobs/j1/match/s1", nil, student, param("id", "j1"), param("studentId", "s1"))
	h.MatchOne(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"j1/s1"}, matching.matched)
}

func TestJobHandlerExportMatches(t *testing.T) {
	h := NewJobHandler(&fakeJobSrv{}, &fakeMatchingSrv{}, fakeMatchExporter{})

	c, rec := newTestContext(http.MethodGet, "/jobs/j1/matches/export?format=csv", nil, recruiter, param("id", "j1"))
	h.ExportMatches(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="matches-j1-20240301.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	c, rec = newTestContext(http.MethodGet, "/jobs/j1/matches/export?format=xlsx", nil, recruiter, param("id", "j1"))
	h.ExportMatches(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
