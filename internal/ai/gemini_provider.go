package ai

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/semantic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const modelCheckTimeout = 10 * time.Second

// generator is the subset of genai.Models the provider calls
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	Get(ctx context.Context, model string, config *genai.GetModelConfig) (*genai.Model, error)
}

// GeminiProvider classifies keyword matches with Google Gemini
type GeminiProvider struct {
	models         generator
	config         config.OperationAIConfig
	circuitBreaker *CircuitBreaker[*genai.GenerateContentResponse]
	modelBreaker   *CircuitBreaker[*genai.Model]
	logger         *errors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini client for the semantic match operation
func NewGeminiProvider(ctx context.Context, cfg config.OperationAIConfig, logger *errors.Logger) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			"Gemini API key is required (set KEYPLAN_AI_APIKEY or GEMINI_API_KEY)", nil)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return newGeminiProvider(client.Models, cfg, logger), nil
}

func newGeminiProvider(models generator, cfg config.OperationAIConfig, logger *errors.Logger) *GeminiProvider {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &GeminiProvider{
		models:         models,
		config:         cfg,
		circuitBreaker: NewCircuitBreaker[*genai.GenerateContentResponse]("SemanticMatch", cfg.CircuitBreaker, logger),
		modelBreaker: NewCircuitBreaker[*genai.Model]("Model-SemanticMatch", config.CircuitBreakerConfig{
			Enabled:          cfg.CircuitBreaker.Enabled,
			MaxRequests:      cfg.CircuitBreaker.MaxRequests,
			Interval:         cfg.CircuitBreaker.Interval,
			Timeout:          cfg.CircuitBreaker.Timeout,
			MinRequests:      5,
			FailureThreshold: 0.8,
		}, logger),
		logger: logger,
	}
}

// ClassifyKeywordMatches makes exactly one model call. The caller owns
// retries, timeouts and fallback.
func (g *GeminiProvider) ClassifyKeywordMatches(ctx context.Context, keywords []string, resume string) (semantic.Classification, error) {
	ctx, span := otel.Tracer("keyplan.ai.gemini").Start(ctx, "gemini.classify_keyword_matches")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.keywords", len(keywords)),
		attribute.Int("input.resume_length", len(resume)),
	)

	fail := func(err error) (semantic.Classification, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.Bool("success", false))
		return semantic.Classification{}, err
	}

	systemPrompt, userPrompt := buildPrompts(g.config.CustomPrompts.System, g.config.CustomPrompts.User, keywords, resume)
	genConfig := g.generateConfig()
	if g.config.UseSystemPrompts == nil || *g.config.UseSystemPrompts {
		genConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	} else {
		userPrompt = systemPrompt + "\n\n" + userPrompt
	}

	start := time.Now()
	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genConfig)
	})
	span.SetAttributes(attribute.Float64("ai.duration_seconds", time.Since(start).Seconds()))
	if err != nil {
		return fail(classifyError(ctx, err))
	}

	doc, err := parseClassification(result.Text())
	if err != nil {
		return fail(errors.NewAIError(errors.ErrCodeAIInvalidResponse, "Failed to parse semantic match response", err))
	}

	c := semantic.Classification{
		Matched:   doc.Matched,
		Missed:    doc.Missed,
		Reasoning: make(map[string]string, len(doc.Reasoning)),
		Usage:     extractTokenUsage(result),
	}
	for _, r := range doc.Reasoning {
		c.Reasoning[r.Keyword] = r.Reasoning
	}

	if c.Usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", c.Usage.InputTokens),
			attribute.Int64("ai.tokens.output", c.Usage.OutputTokens),
			attribute.Int64("ai.tokens.total", c.Usage.TotalTokens),
		)
	}
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.matched", len(c.Matched)),
	)
	return c, nil
}

func (g *GeminiProvider) generateConfig() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   classificationSchema,
	}
	if g.config.Temperature != nil && *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
	return cfg
}

// classifyError maps transport and API failures onto AppError codes
func classifyError(ctx context.Context, err error) error {
	if _, ok := errors.AsAppError(err); ok {
		return err
	}
	if stderrors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return errors.NewAIError(errors.ErrCodeAITimeout, "Gemini request timed out", err)
	}

	status := 0
	var apiErr *googleapi.Error
	var genaiErr genai.APIError
	switch {
	case stderrors.As(err, &apiErr):
		status = apiErr.Code
	case stderrors.As(err, &genaiErr):
		status = genaiErr.Code
	}
	switch status {
	case http.StatusTooManyRequests:
		return errors.NewAIError(errors.ErrCodeAIRateLimited, "Gemini rate limit exceeded", err)
	case http.StatusGatewayTimeout:
		return errors.NewAIError(errors.ErrCodeAITimeout, "Gemini request timed out", err)
	case 0:
	default:
		return errors.NewAIError(errors.ErrCodeAIServiceFailed, "Gemini request failed", err).WithContext("status", status)
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		if netErr.Timeout() {
			return errors.NewNetworkError(errors.ErrCodeNetworkTimeout, "Gemini request timed out", err)
		}
		return errors.NewNetworkError(errors.ErrCodeAIServiceFailed, "Gemini request failed", err)
	}
	return errors.NewAIError(errors.ErrCodeAIServiceFailed, "Gemini request failed", err)
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	info := &ModelInfo{Name: g.config.Model, Provider: "gemini"}

	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		info.Error = "Failed to get model info: " + err.Error()
		g.logger.Warn("Model availability check failed", "model", g.config.Model, "error", err.Error())
		return info
	}

	info.Available = true
	info.DisplayName = model.DisplayName
	info.Version = model.Version
	return info
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.circuitBreaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.circuitBreaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close releases nothing; the genai client holds no streaming state here
func (g *GeminiProvider) Close() error {
	return nil
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *semantic.Usage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}
	usage := result.UsageMetadata
	return &semantic.Usage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}
