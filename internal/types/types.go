// Package types holds the request and response shapes shared by the CLI and
// HTTP surfaces.
package types

import (
	"keyplan/internal/keywords"
	"keyplan/internal/semantic"
	"keyplan/internal/validate"
)

// PlanRequest asks for a keyword plan for one job description
type PlanRequest struct {
	JobDescription string `json:"jobDescription" validate:"required,max=200000"`
	Resume         string `json:"resume" validate:"max=200000"`
	JobTitle       string `json:"jobTitle,omitempty" validate:"max=200"`
	RoleTitle      string `json:"roleTitle,omitempty" validate:"max=200"`
}

// PlanInput converts the request for the engine
func (r PlanRequest) PlanInput() keywords.PlanInput {
	return keywords.PlanInput{
		JobDescription: r.JobDescription,
		Resume:         r.Resume,
		JobTitle:       r.JobTitle,
		RoleTitle:      r.RoleTitle,
	}
}

// BatchJob is one job description in a batch plan request
type BatchJob struct {
	ID             string `json:"id,omitempty" validate:"max=100"`
	JobDescription string `json:"jobDescription" validate:"required,max=200000"`
	JobTitle       string `json:"jobTitle,omitempty" validate:"max=200"`
}

// BatchPlanRequest plans one resume against several job descriptions
type BatchPlanRequest struct {
	Resume    string     `json:"resume" validate:"max=200000"`
	RoleTitle string     `json:"roleTitle,omitempty" validate:"max=200"`
	Jobs      []BatchJob `json:"jobs" validate:"required,min=1,dive"`
}

// BatchPlanItem is the plan for one BatchJob, in request order
type BatchPlanItem struct {
	ID   string        `json:"id,omitempty"`
	Plan keywords.Plan `json:"plan"`
}

// BatchPlanResponse is the result of a batch plan request
type BatchPlanResponse struct {
	Results []BatchPlanItem `json:"results"`
}

// MatchRequest asks whether a resume demonstrates each keyword. Resume is a
// string or any JSON value.
type MatchRequest struct {
	Keywords  []string `json:"keywords" validate:"required,min=1,max=200,dive,max=200"`
	Resume    any      `json:"resume" validate:"required"`
	DisableAI bool     `json:"disableAI,omitempty"`
}

// SemanticRequest converts the request for the matcher
func (r MatchRequest) SemanticRequest() semantic.Request {
	return semantic.Request{Keywords: r.Keywords, Resume: r.Resume}
}

// ValidateRequest asks for a validation report over keywords
type ValidateRequest struct {
	Keywords       []string `json:"keywords" validate:"required,min=1,max=500,dive,max=200"`
	JobDescription string   `json:"jobDescription" validate:"required,max=200000"`
}

// ValidateResponse is the validation report
type ValidateResponse = validate.Report

// ErrorResponse is the body of every failed API call
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

// HealthResponse reports service readiness
type HealthResponse struct {
	Status       string         `json:"status"`
	Version      string         `json:"version"`
	SemanticAI   bool           `json:"semanticAI"`
	Model        map[string]any `json:"model,omitempty"`
	Certificates map[string]any `json:"certificates,omitempty"`
}

// StatsResponse reports runtime counters for the server
type StatsResponse struct {
	Uptime          string         `json:"uptime"`
	PlansBuilt      int64          `json:"plansBuilt"`
	MatchesServed   int64          `json:"matchesServed"`
	FallbackMatches int64          `json:"fallbackMatches"`
	RateLimited     int64          `json:"rateLimited"`
	CircuitBreakers map[string]any `json:"circuitBreakers,omitempty"`
	RateLimiting    map[string]any `json:"rateLimiting,omitempty"`
}
