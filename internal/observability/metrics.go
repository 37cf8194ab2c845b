package observability

import (
	"context"
	"fmt"
	"time"

	"keyplan/internal/semantic"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the keyplan instruments. The zero value records nothing.
type Metrics struct {
	PlansTotal        metric.Int64Counter
	CandidatesTotal   metric.Int64Counter
	PlanDuration      metric.Float64Histogram
	SemanticMatches   metric.Int64Counter
	SemanticFallbacks metric.Int64Counter
	MatchDuration     metric.Float64Histogram
	MatchScore        metric.Int64Histogram
	AITokenUsage      metric.Int64Histogram

	CertReloadCount metric.Int64Counter
	RateLimitHits   metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.PlansTotal, err = meter.Int64Counter("keyplan_plans_total",
		metric.WithDescription("Total number of keyword plans built")); err != nil {
		return nil, fmt.Errorf("failed to create plans metric: %w", err)
	}
	if m.CandidatesTotal, err = meter.Int64Counter("keyplan_candidates_total",
		metric.WithDescription("Total number of keyword candidates surfaced in plans")); err != nil {
		return nil, fmt.Errorf("failed to create candidates metric: %w", err)
	}
	if m.PlanDuration, err = meter.Float64Histogram("keyplan_plan_duration_seconds",
		metric.WithDescription("Time spent building a keyword plan"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create plan duration metric: %w", err)
	}
	if m.SemanticMatches, err = meter.Int64Counter("keyplan_semantic_matches_total",
		metric.WithDescription("Total number of semantic match requests by result source")); err != nil {
		return nil, fmt.Errorf("failed to create semantic matches metric: %w", err)
	}
	if m.SemanticFallbacks, err = meter.Int64Counter("keyplan_semantic_fallbacks_total",
		metric.WithDescription("Semantic match requests where the model failed and substring matching was used")); err != nil {
		return nil, fmt.Errorf("failed to create semantic fallbacks metric: %w", err)
	}
	if m.MatchDuration, err = meter.Float64Histogram("keyplan_match_duration_seconds",
		metric.WithDescription("Time spent on a semantic match request"),
		metric.WithUnit("s")); err != nil {
		return nil, fmt.Errorf("failed to create match duration metric: %w", err)
	}
	if m.MatchScore, err = meter.Int64Histogram("keyplan_match_score",
		metric.WithDescription("Match score of semantic match results"),
		metric.WithExplicitBucketBoundaries(10, 20, 30, 40, 50, 60, 70, 80, 90, 100)); err != nil {
		return nil, fmt.Errorf("failed to create match score metric: %w", err)
	}
	if m.AITokenUsage, err = meter.Int64Histogram("keyplan_ai_token_usage",
		metric.WithDescription("Token usage for model requests (input, output, total)"),
		metric.WithUnit("tokens")); err != nil {
		return nil, fmt.Errorf("failed to create token usage metric: %w", err)
	}
	if m.CertReloadCount, err = meter.Int64Counter("keyplan_cert_reloads_total",
		metric.WithDescription("Total number of TLS certificate reloads")); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("keyplan_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limited requests")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}
	return m, nil
}

// RecordPlan records one built plan and the number of surfaced candidates
func (m *Metrics) RecordPlan(ctx context.Context, candidates int, elapsed time.Duration, attrs ...attribute.KeyValue) {
	if m.PlansTotal == nil {
		return
	}
	opt := metric.WithAttributes(attrs...)
	m.PlansTotal.Add(ctx, 1, opt)
	m.CandidatesTotal.Add(ctx, int64(candidates), opt)
	m.PlanDuration.Record(ctx, elapsed.Seconds(), opt)
}

// RecordMatch records a semantic match result
func (m *Metrics) RecordMatch(ctx context.Context, res semantic.Result, elapsed time.Duration) {
	if m.SemanticMatches == nil {
		return
	}
	source := metric.WithAttributes(attribute.String("source", string(res.Source)))
	m.SemanticMatches.Add(ctx, 1, source)
	m.MatchDuration.Record(ctx, elapsed.Seconds(), source)
	m.MatchScore.Record(ctx, int64(res.MatchScore), source)
	if res.FallbackReason != "" {
		m.SemanticFallbacks.Add(ctx, 1)
	}
	if res.Usage != nil {
		for _, tt := range []struct {
			kind  string
			value int64
		}{
			{"input", res.Usage.InputTokens},
			{"output", res.Usage.OutputTokens},
			{"total", res.Usage.TotalTokens},
		} {
			m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(attribute.String("token_type", tt.kind)))
		}
	}
}

// RecordRateLimitHit counts a rejected request
func (m *Metrics) RecordRateLimitHit(ctx context.Context, limiter string) {
	if m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limiter", limiter)))
	}
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m.CertReloadCount != nil {
		m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
	}
}
