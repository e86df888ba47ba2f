package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/career-readiness-api/internal/models"
	appErrors "github.com/noah-isme/career-readiness-api/pkg/errors"
)

type stubValidator struct {
	claims *models.JWTClaims
	err    error
}

func (s stubValidator) ValidateToken(string) (*models.JWTClaims, error) {
	return s.claims, s.err
}

type recordingObserver struct {
	path   string
	status int
}

func (r *recordingObserver) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.path = path
	r.status = status
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/students/:id", append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"caller": Claims(c).UserID, "meta": ExtractMeta(c)})
	})...)
	return r
}

func serve(r *gin.Engine, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWT(t *testing.T) {
	student := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent, StudentID: "s1"}
	r := newRouter(JWT(stubValidator{claims: student}))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/s1", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/s1", "Token abc").Code)

	rec := serve(r, "/students/s1", "Bearer abc")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"caller":"s1"`)
}

func TestJWTRejectsInvalidToken(t *testing.T) {
	r := newRouter(JWT(stubValidator{err: appErrors.Wrap(errors.New("expired"), appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")}))

	assert.Equal(t, http.StatusUnauthorized, serve(r, "/students/s1", "Bearer abc").Code)
}

func TestRBACSelf(t *testing.T) {
	student := &models.JWTClaims{UserID: "s1", Role: models.RoleStudent, StudentID: "s1"}
	r := newRouter(JWT(stubValidator{claims: student}), RBAC(Self, string(models.RoleAdmin)))

	assert.Equal(t, http.StatusOK, serve(r, "/students/s1", "Bearer abc").Code)
	assert.Equal(t, http.StatusForbidden, serve(r, "/students/s2", "Bearer abc").Code)

	recruiter := &models.JWTClaims{UserID: "s1", Role: models.RoleRecruiter}
	r = newRouter(JWT(stubValidator{claims: recruiter}), RBAC(Self))
	assert.Equal(t, http.StatusForbidden, serve(r, "/students/s1", "Bearer abc").Code)
}

func TestRequireRoles(t *testing.T) {
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	recruiter := &models.JWTClaims{UserID: "r1", Role: models.RoleRecruiter}

	r := newRouter(JWT(stubValidator{claims: admin}), RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusOK, serve(r, "/students/s9", "Bearer abc").Code)

	r = newRouter(JWT(stubValidator{claims: recruiter}), RequireRoles(models.RoleAdmin))
	assert.Equal(t, http.StatusForbidden, serve(r, "/students/s9", "Bearer abc").Code)
}

func TestMetricsUsesRoutePattern(t *testing.T) {
	observer := &recordingObserver{}
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	r := newRouter(Metrics(observer), JWT(stubValidator{claims: admin}))

	serve(r, "/students/s1", "Bearer abc")
	assert.Equal(t, "/students/:id", observer.path)
	assert.Equal(t, http.StatusOK, observer.status)
}

func TestResponseMetaStampsProcessingTime(t *testing.T) {
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	r := newRouter(WithResponseMeta(), JWT(stubValidator{claims: admin}))

	rec := serve(r, "/students/s1", "Bearer abc")
	assert.Contains(t, rec.Body.String(), "processing_time_ms")
}
