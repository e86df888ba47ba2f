package service

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()

	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/leaderboard", http.StatusOK, 20*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/leaderboard", http.StatusOK, 40*time.Millisecond)
	m.ObserveReadiness(OutcomeScored, 64, time.Millisecond)
	m.ObserveReadiness(OutcomeConflict, 0, time.Millisecond)
	m.ObserveReadiness(OutcomeFailed, 0, time.Millisecond)
	m.ObserveMatchingRun(nil, 3, time.Second)
	m.ObserveMatchingRun(errors.New("boom"), 0, time.Second)
	m.SetQueueDepth(2)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 30.0, snap.AverageRequestDurationMs, 0.001)
	assert.Equal(t, uint64(1), snap.ReadinessRecomputes)
	assert.Equal(t, uint64(1), snap.ReadinessConflicts)
	assert.Equal(t, uint64(2), snap.MatchingRuns)
	assert.Positive(t, snap.Goroutines)
}

func TestMetricsServiceHandlerExposesCollectors(t *testing.T) {
	m := NewMetricsService()
	m.ObserveReadiness(OutcomeScored, 50, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "readiness_recomputations_total")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
		m.ObserveReadiness(OutcomeScored, 10, time.Millisecond)
		m.ObserveMatchingRun(nil, 1, time.Millisecond)
		m.SetQueueDepth(1)
		m.RecordCacheOperation(true, time.Millisecond)
	})
	assert.Equal(t, uint64(0), m.Snapshot().RequestsTotal)
}
