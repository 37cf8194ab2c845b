package server

import (
	"context"
	"net/http"
	"time"

	"keyplan/internal/common"
	"keyplan/internal/errors"
	"keyplan/internal/keywords"
	"keyplan/internal/types"
	"keyplan/internal/validate"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "keyplan.api"

// planHandler builds a keyword plan for one job description
func (s *Server) planHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.plan")
	defer span.End()

	var req types.PlanRequest
	if err := parseJSONRequest(r, &req); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request", err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.job_length", len(req.JobDescription)),
		attribute.Int("request.resume_length", len(req.Resume)),
		attribute.String("operation", "plan"),
	)

	plan := s.buildPlan(ctx, req.PlanInput(), "single")

	span.SetAttributes(
		attribute.Int("plan.candidates", len(plan.Candidates)),
		attribute.Int("plan.top", len(plan.Top10)),
	)
	writeJSON(w, http.StatusOK, plan)
}

// batchPlanHandler plans one resume against several job descriptions
// concurrently. Results keep request order.
func (s *Server) batchPlanHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.plan_batch")
	defer span.End()

	var req types.BatchPlanRequest
	if err := parseJSONRequest(r, &req); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request body", err)
		return
	}
	if err := req.Validate(s.AppConfig.Engine.MaxBatchSize); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request", err)
		return
	}

	span.SetAttributes(
		attribute.Int("request.jobs", len(req.Jobs)),
		attribute.String("operation", "plan_batch"),
	)

	resp, err := common.PlanBatch(ctx, req, s.AppConfig.Engine.BatchConcurrency,
		func(ctx context.Context, in keywords.PlanInput) keywords.Plan {
			return s.buildPlan(ctx, in, "batch")
		})
	if err != nil {
		err = errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "batch cancelled before completion", err)
		recordSpanError(span, err)
		s.writeError(w, r, "Batch cancelled", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// matchHandler classifies keywords against a resume through the semantic
// adapter. A classifier failure is never surfaced: the fallback answers.
func (s *Server) matchHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer(tracerName).Start(r.Context(), "api.match")
	defer span.End()

	var req types.MatchRequest
	if err := parseJSONRequest(r, &req); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request", err)
		return
	}

	matcher := s.matcher
	if req.DisableAI {
		matcher = s.fallbackMatcher
	}

	start := time.Now()
	result := matcher.Match(ctx, req.SemanticRequest())
	s.om.Metrics().RecordMatch(ctx, result, time.Since(start))

	s.stats.matchesServed.Add(1)
	if result.FallbackReason != "" {
		s.stats.fallbackMatches.Add(1)
		s.Logger.Warn("Semantic match served by fallback",
			"reason", result.FallbackReason,
			"request_id", RequestIDFromContext(ctx))
	}

	span.SetAttributes(
		attribute.Int("request.keywords", len(req.Keywords)),
		attribute.String("match.source", string(result.Source)),
		attribute.Int("match.score", result.MatchScore),
		attribute.Bool("match.fallback", result.FallbackReason != ""),
	)
	writeJSON(w, http.StatusOK, result)
}

// validateHandler reports which keywords appear verbatim in a job description
func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	_, span := s.om.Tracer(tracerName).Start(r.Context(), "api.validate")
	defer span.End()

	var req types.ValidateRequest
	if err := parseJSONRequest(r, &req); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request body", err)
		return
	}
	if err := req.Validate(); err != nil {
		recordSpanError(span, err)
		s.writeError(w, r, "Invalid request", err)
		return
	}

	report := validate.BuildReport(req.Keywords, req.JobDescription)
	span.SetAttributes(
		attribute.Int("validate.valid", len(report.Valid)),
		attribute.Int("validate.invalid", len(report.Invalid)),
	)
	writeJSON(w, http.StatusOK, types.ValidateResponse(report))
}

// buildPlan runs the engine and records plan metrics
func (s *Server) buildPlan(ctx context.Context, in keywords.PlanInput, mode string) keywords.Plan {
	start := time.Now()
	plan := s.engine.BuildPlan(in)
	s.om.Metrics().RecordPlan(ctx, len(plan.Top10), time.Since(start), attribute.String("mode", mode))
	s.stats.plansBuilt.Add(1)
	return plan
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	if code := errors.CodeOf(err); code != "" {
		span.SetAttributes(attribute.String("error.code", code))
	}
}
