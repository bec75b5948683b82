package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrapeMetrics(t *testing.T, m *MetricsService) string {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}

func TestMetricsServiceRecordCacheOperation(t *testing.T) {
	m := NewMetricsService()

	m.RecordCacheOperation(true)
	m.RecordCacheOperation(true)
	m.RecordCacheOperation(true)
	m.RecordCacheOperation(false)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "cache_hits_total 3")
	assert.Contains(t, body, "cache_misses_total 1")
	assert.Contains(t, body, "cache_hit_ratio 0.75")
}

func TestMetricsServiceObserveGeneration(t *testing.T) {
	m := NewMetricsService()

	m.ObserveGeneration(120*time.Millisecond, 12, 2)
	m.ObserveGeneration(80*time.Millisecond, 0, 0)

	body := scrapeMetrics(t, m)
	assert.Contains(t, body, "plan_generation_duration_seconds_count 2")
	assert.Contains(t, body, "plan_generation_failures_total 2")
}
