package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/semantic"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

type fakeModels struct {
	text     string
	err      error
	calls    int
	lastCfg  *genai.GenerateContentConfig
	lastText string
	model    *genai.Model
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls++
	f.lastCfg = cfg
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.lastText = contents[0].Parts[0].Text
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     120,
			CandidatesTokenCount: 30,
			TotalTokenCount:      150,
		},
	}, nil
}

func (f *fakeModels) Get(context.Context, string, *genai.GetModelConfig) (*genai.Model, error) {
	if f.model == nil {
		return nil, fmt.Errorf("model not found")
	}
	return f.model, nil
}

func float32Ptr(f float32) *float32 { return &f }

func testOperationConfig() config.OperationAIConfig {
	return config.OperationAIConfig{
		Provider:       "gemini",
		Model:          "gemini-2.0-flash",
		APIKey:         "test-key",
		Temperature:    float32Ptr(0.1),
		CircuitBreaker: testBreakerConfig(),
	}
}

func TestClassifyKeywordMatches(t *testing.T) {
	fake := &fakeModels{text: `{
		"matched": ["SQL", "Python"],
		"missed": ["Tableau"],
		"reasoning": [{"keyword": "SQL", "reasoning": "wrote SQL reports"}]
	}`}
	p := newGeminiProvider(fake, testOperationConfig(), nil)

	c, err := p.ClassifyKeywordMatches(context.Background(), []string{"SQL", "Python", "Tableau"}, "SQL and Python analyst")
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, []string{"SQL", "Python"}, c.Matched)
	assert.Equal(t, []string{"Tableau"}, c.Missed)
	assert.Equal(t, "wrote SQL reports", c.Reasoning["SQL"])
	require.NotNil(t, c.Usage)
	assert.EqualValues(t, 150, c.Usage.TotalTokens)

	require.NotNil(t, fake.lastCfg)
	assert.Equal(t, "application/json", fake.lastCfg.ResponseMIMEType)
	assert.NotNil(t, fake.lastCfg.SystemInstruction)
	assert.Contains(t, fake.lastText, `["SQL","Python","Tableau"]`)
	assert.Contains(t, fake.lastText, "SQL and Python analyst")
}

func TestClassifyKeywordMatchesInvalidResponse(t *testing.T) {
	for name, text := range map[string]string{
		"not json":       "Sure! Here are the matches.",
		"missing missed": `{"matched": ["SQL"]}`,
		"wrong type":     `{"matched": "SQL", "missed": []}`,
	} {
		t.Run(name, func(t *testing.T) {
			p := newGeminiProvider(&fakeModels{text: text}, testOperationConfig(), nil)
			_, err := p.ClassifyKeywordMatches(context.Background(), []string{"SQL"}, "resume")
			require.Error(t, err)
			assert.Equal(t, errors.ErrCodeAIInvalidResponse, errors.CodeOf(err))
		})
	}
}

func TestClassifyError(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &googleapi.Error{Code: http.StatusTooManyRequests}, errors.ErrCodeAIRateLimited},
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, errors.ErrCodeAIServiceFailed},
		{"genai rate limited", genai.APIError{Code: http.StatusTooManyRequests}, errors.ErrCodeAIRateLimited},
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), errors.ErrCodeAITimeout},
		{"plain", fmt.Errorf("boom"), errors.ErrCodeAIServiceFailed},
		{"already classified", errors.NewAIError(errors.ErrCodeAICircuitOpen, "open", nil), errors.ErrCodeAICircuitOpen},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.CodeOf(classifyError(ctx, tt.err)))
		})
	}
}

func TestProviderFallsBackThroughMatcher(t *testing.T) {
	fake := &fakeModels{err: &googleapi.Error{Code: http.StatusServiceUnavailable}}
	p := newGeminiProvider(fake, testOperationConfig(), nil)
	m := semantic.NewMatcher(p, errors.NewNopLogger())

	got := m.Match(context.Background(), semantic.Request{Keywords: []string{"SQL", "Go"}, Resume: "Wrote SQL"})
	assert.Equal(t, semantic.SourceFallback, got.Source)
	assert.Equal(t, []string{"SQL"}, got.MatchedKeywords)
	assert.True(t, strings.Contains(got.FallbackReason, errors.ErrCodeAIServiceFailed))
}

func TestCircuitOpenSkipsModel(t *testing.T) {
	fake := &fakeModels{err: fmt.Errorf("unavailable")}
	p := newGeminiProvider(fake, testOperationConfig(), nil)
	for range 2 {
		_, _ = p.ClassifyKeywordMatches(context.Background(), []string{"SQL"}, "resume")
	}
	_, err := p.ClassifyKeywordMatches(context.Background(), []string{"SQL"}, "resume")
	assert.Equal(t, errors.ErrCodeAICircuitOpen, errors.CodeOf(err))
	assert.Equal(t, 2, fake.calls)
	assert.Equal(t, false, p.GetCircuitBreakerStats()["overall_healthy"])
}

func TestGetModelInfo(t *testing.T) {
	p := newGeminiProvider(&fakeModels{model: &genai.Model{DisplayName: "Gemini Flash", Version: "2.0"}}, testOperationConfig(), nil)
	info := p.GetModelInfo(context.Background())
	assert.True(t, info.Available)
	assert.Equal(t, "Gemini Flash", info.DisplayName)

	p = newGeminiProvider(&fakeModels{}, testOperationConfig(), nil)
	info = p.GetModelInfo(context.Background())
	assert.False(t, info.Available)
	assert.Contains(t, info.Error, "model not found")
}

func TestNewProvider(t *testing.T) {
	logger := errors.NewNopLogger()
	disabled := false

	p, err := NewProvider(context.Background(), config.OperationAIConfig{Enabled: &disabled}, logger)
	require.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewProvider(context.Background(), config.OperationAIConfig{Provider: "openai", APIKey: "k"}, logger)
	assert.Equal(t, errors.ErrCodeInvalidConfig, errors.CodeOf(err))

	_, err = NewProvider(context.Background(), config.OperationAIConfig{Provider: "gemini"}, logger)
	assert.Equal(t, errors.ErrCodeMissingAPIKey, errors.CodeOf(err))
}
