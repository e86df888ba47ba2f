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
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type fakeStudentSrv struct {
	studentService

	registered   *dto.RegisterStudentRequest
	removed      models.Collection
	verified     string
	verifiedWith dto.VerifyItemRequest
	err          error
}

func (f *fakeStudentSrv) Register(_ context.Context, req dto.RegisterStudentRequest) (*models.Student, error) {
	f.registered = &req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Student{ID: "s1", Name: req.Name, ReadinessScore: 28}, nil
}

func (f *fakeStudentSrv) RemoveItem(_ context.Context, id string, collection models.Collection, itemID string) (*models.Student, error) {
	f.removed = collection
	return &models.Student{ID: id}, f.err
}

func (f *fakeStudentSrv) VerifyItem(_ context.Context, id string, collection models.Collection, itemID string, req dto.VerifyItemRequest) (*models.Student, error) {
	f.verified = id + "/" + string(collection) + "/" + itemID
	f.verifiedWith = req
	return &models.Student{ID: id}, f.err
}

type fakeReadinessReader struct {
	view *dto.ReadinessView
	err  error
}

func (f *fakeReadinessReader) Readiness(context.Context, string) (*dto.ReadinessView, error) {
	return f.view, f.err
}

func (f *fakeReadinessReader) History(_ context.Context, id string) (*dto.HistoryView, error) {
	return &dto.HistoryView{StudentID: id}, f.err
}

func TestStudentHandlerRegister(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, &fakeReadinessReader{})

	c, rec := newTestContext(http.MethodPost, "/students", map[string]interface{}{
		"name": "Asha", "email": "asha@example.com", "password": "supersecret",
	}, nil)
	h.Register(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, srv.registered)
	assert.Equal(t, "asha@example.com", srv.registered.Email)

	var student models.Student
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &student))
	assert.Equal(t, 28, student.ReadinessScore)
}

func TestStudentHandlerRegisterMalformed(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{}, &fakeReadinessReader{})

	c, rec := newTestContext(http.MethodPost, "/students", `{"name":`, nil)
	h.Register(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decodeEnvelope(t, rec).Error.Code)
}

func TestStudentHandlerRegisterConflict(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{err: appErrors.Clone(appErrors.ErrConflict, "email already registered")}, &fakeReadinessReader{})

	c, rec := newTestContext(http.MethodPost, "/students", map[string]string{"name": "Asha"}, nil)
	h.Register(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestStudentHandlerRemoveItem(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, &fakeReadinessReader{})

	c, rec := newTestContext(http.MethodDelete, "/students/s1/coding-logs/l1", nil, nil,
		param("id", "s1"), param("collection", "coding-logs"), param("itemId", "l1"))
	h.RemoveItem(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.CollectionCodingLogs, srv.removed)

	c, rec = newTestContext(http.MethodDelete, "/students/s1/skills/x", nil, nil,
		param("id", "s1"), param("collection", "skills"), param("itemId", "x"))
	h.RemoveItem(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStudentHandlerVerifyItem(t *testing.T) {
	srv := &fakeStudentSrv{}
	h := NewStudentHandler(srv, &fakeReadinessReader{})

	c, rec := newTestContext(http.MethodPost, "/admin/verifications/s1/projects/p1",
		map[string]string{"decision": "verified"}, &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin},
		param("studentId", "s1"), param("collection", "projects"), param("itemId", "p1"))
	h.VerifyItem(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "s1/projects/p1", srv.verified)
	assert.Equal(t, models.ItemStatusVerified, srv.verifiedWith.Decision)
}

func TestStudentHandlerReadiness(t *testing.T) {
	reader := &fakeReadinessReader{view: &dto.ReadinessView{
		StudentID: "s1",
		Score:     64,
		Breakdown: map[string]float64{"base": 25, "projects": 12},
	}}
	h := NewStudentHandler(&fakeStudentSrv{}, reader)

	c, rec := newTestContext(http.MethodGet, "/students/s1/readiness", nil, nil, param("id", "s1"))
	h.Readiness(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var view dto.ReadinessView
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &view))
	assert.Equal(t, 64, view.Score)
	assert.Equal(t, 12.0, view.Breakdown["projects"])
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestStudentHandlerReadinessNotFound(t *testing.T) {
	h := NewStudentHandler(&fakeStudentSrv{}, &fakeReadinessReader{err: appErrors.Clone(appErrors.ErrNotFound, "student not found")})

	c, rec := newTestContext(http.MethodGet, "/students/ghost/readiness", nil, nil, param("id", "ghost"))
	h.Readiness(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
