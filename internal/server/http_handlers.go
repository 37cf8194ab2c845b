package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"keyplan/internal/errors"
	"keyplan/internal/types"
)

// healthCheckTimeout bounds the model availability probe
const healthCheckTimeout = 5 * time.Second

// healthHandler reports readiness including the semantic model and certificates
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response := types.HealthResponse{
		Status:     "healthy",
		Version:    s.Version,
		SemanticAI: s.provider != nil,
	}

	if s.provider != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		info := s.provider.GetModelInfo(ctx)
		cancel()
		response.Model = map[string]any{
			"name":      info.Name,
			"provider":  info.Provider,
			"available": info.Available,
		}
		if info.Error != "" {
			response.Model["error"] = info.Error
		}
		// The substring fallback still serves matches without the model.
		if !info.Available {
			response.Status = "degraded"
		}
	}

	status := http.StatusOK
	if s.CertificateManager != nil {
		certStatus := s.CertificateManager.HealthStatus()
		response.Certificates = certStatus
		if healthy, _ := certStatus["healthy"].(bool); !healthy {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, status, response)
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	response := types.StatsResponse{
		Uptime:          time.Since(s.started).Round(time.Second).String(),
		PlansBuilt:      s.stats.plansBuilt.Load(),
		MatchesServed:   s.stats.matchesServed.Load(),
		FallbackMatches: s.stats.fallbackMatches.Load(),
		RateLimited:     s.stats.rateLimited.Load(),
	}

	if s.provider != nil {
		response.CircuitBreakers = map[string]any{
			"semantic_match": s.provider.GetCircuitBreakerStats(),
		}
	}

	if s.RateLimiter != nil {
		response.RateLimiting = s.RateLimiter.GetStats()
		response.RateLimiting["by_ip"] = s.RateLimit.ByIP
		response.RateLimiting["by_api_key"] = s.RateLimit.ByAPIKey
	} else {
		response.RateLimiting = map[string]any{"enabled": false}
	}

	writeJSON(w, http.StatusOK, response)
}

// parseJSONRequest parses a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		return errors.NewValidationError(errors.ErrCodeInvalidRequest, "content-type must be application/json", err)
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if stderrors.As(err, &maxBytesErr) {
			return errors.NewValidationError(errors.ErrCodeRequestTooLarge,
				fmt.Sprintf("request body too large (limit is %d bytes)", maxBytesErr.Limit), err)
		}
		return errors.NewIOError(errors.ErrCodeInvalidInput, "failed to read request body", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat, "failed to parse JSON", err)
	}

	return nil
}

// writeError maps err to a status code and a standardized error body
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, title string, err error) {
	status := errors.HTTPStatus(err)
	code := errors.CodeOf(err)
	message := err.Error()
	if appErr, ok := errors.AsAppError(err); ok {
		message = appErr.Message
	}
	if status >= http.StatusInternalServerError {
		s.Logger.LogError(err, title, "request_id", RequestIDFromContext(r.Context()), "endpoint", r.URL.Path)
	}
	writeErrorResponse(w, r, title, message, code, status)
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, r *http.Request, title, message, code string, statusCode int) {
	writeJSON(w, statusCode, types.ErrorResponse{
		Error:     title,
		Message:   message,
		Code:      code,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Headers are sent; an encode failure can only be a broken connection.
	_ = json.NewEncoder(w).Encode(v)
}
