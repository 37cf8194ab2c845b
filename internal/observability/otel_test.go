package observability

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/semantic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func testConfig() config.ObservabilityConfig {
	return config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "keyplan-test",
		SampleRate:  1.0,
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumOf(t *testing.T, m metricdata.Metrics) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", m.Name)
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestDisabledManagerRecordsNothing(t *testing.T) {
	om, err := NewManager(config.ObservabilityConfig{}, "dev")
	require.NoError(t, err)
	assert.False(t, om.Enabled())
	assert.Nil(t, om.PrometheusHandler())

	om.Metrics().RecordPlan(context.Background(), 10, time.Millisecond)
	om.Metrics().RecordMatch(context.Background(), semantic.Result{Source: semantic.SourceFallback}, time.Millisecond)
	assert.NoError(t, om.Shutdown(context.Background()))

	var nilManager *Manager
	assert.NotNil(t, nilManager.Metrics())
}

func TestRecordPlanAndMatch(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	om, err := NewManager(testConfig(), "1.2.3", WithMetricReader(reader))
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	ctx := context.Background()
	m := om.Metrics()
	m.RecordPlan(ctx, 10, 5*time.Millisecond)
	m.RecordPlan(ctx, 4, 2*time.Millisecond)
	m.RecordMatch(ctx, semantic.Result{Source: semantic.SourceSemantic, MatchScore: 80,
		Usage: &semantic.Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}}, time.Second)
	m.RecordMatch(ctx, semantic.Result{Source: semantic.SourceFallback, MatchScore: 50,
		FallbackReason: "AI_TIMEOUT: Gemini request timed out"}, time.Second)
	m.RecordRateLimitHit(ctx, "ip")

	got := collect(t, reader)
	assert.EqualValues(t, 2, sumOf(t, got["keyplan_plans_total"]))
	assert.EqualValues(t, 14, sumOf(t, got["keyplan_candidates_total"]))
	assert.EqualValues(t, 2, sumOf(t, got["keyplan_semantic_matches_total"]))
	assert.EqualValues(t, 1, sumOf(t, got["keyplan_semantic_fallbacks_total"]))
	assert.EqualValues(t, 1, sumOf(t, got["keyplan_rate_limit_hits_total"]))

	matches := got["keyplan_semantic_matches_total"].Data.(metricdata.Sum[int64])
	sources := map[string]bool{}
	for _, dp := range matches.DataPoints {
		v, ok := dp.Attributes.Value("source")
		require.True(t, ok)
		sources[v.AsString()] = true
	}
	assert.Equal(t, map[string]bool{"semantic": true, "fallback": true}, sources)

	hist, ok := got["keyplan_match_score"].Data.(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.EqualValues(t, 2, count)
}

func TestPrometheusHandlerServesMetrics(t *testing.T) {
	cfg := testConfig()
	cfg.Prometheus.Enabled = true
	om, err := NewManager(cfg, "dev")
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	handler := om.PrometheusHandler()
	require.NotNil(t, handler)
	om.Metrics().RecordPlan(context.Background(), 3, time.Millisecond)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "keyplan_plans")
}

func TestHTTPMiddlewarePassesThrough(t *testing.T) {
	for _, enabled := range []bool{false, true} {
		cfg := testConfig()
		cfg.Enabled = enabled
		om, err := NewManager(cfg, "dev", WithMetricReader(sdkmetric.NewManualReader()))
		require.NoError(t, err)

		h := om.HTTPMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTeapot)
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusTeapot, rec.Code)
		_ = om.Shutdown(context.Background())
	}
}
