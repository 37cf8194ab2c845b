package ai

import (
	"context"
	"fmt"

	"keyplan/internal/config"
	"keyplan/internal/errors"
)

// NewProvider builds the configured provider. It returns (nil, nil) when the
// operation is disabled so callers fall back to deterministic matching.
func NewProvider(ctx context.Context, cfg config.OperationAIConfig, logger *errors.Logger) (Provider, error) {
	if !cfg.IsEnabled() {
		logger.Debug("Semantic match model disabled")
		return nil, nil
	}

	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"model", cfg.Model,
		"circuit_breaker", cfg.CircuitBreaker.Enabled)

	switch cfg.Provider {
	case "gemini":
		p, err := NewGeminiProvider(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
}
