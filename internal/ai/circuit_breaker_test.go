package ai

import (
	"fmt"
	"testing"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBreakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestCircuitBreakerDisabled(t *testing.T) {
	cfg := testBreakerConfig()
	cfg.Enabled = false
	b := NewCircuitBreaker[int]("Test", cfg, nil)
	assert.Nil(t, b)

	out, err := b.Execute(func() (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, out)
	assert.True(t, b.IsHealthy())
	assert.Equal(t, false, b.Stats()["enabled"])
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	b := NewCircuitBreaker[string]("Test", testBreakerConfig(), errors.NewNopLogger())
	boom := fmt.Errorf("upstream down")

	for range 2 {
		_, err := b.Execute(func() (string, error) { return "", boom })
		assert.ErrorIs(t, err, boom)
	}
	assert.False(t, b.IsHealthy())
	assert.Equal(t, "open", b.Stats()["state"])

	calls := 0
	_, err := b.Execute(func() (string, error) { calls++; return "ok", nil })
	require.Error(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, errors.ErrCodeAICircuitOpen, errors.CodeOf(err))
}

func TestCircuitBreakerStaysClosedBelowMinRequests(t *testing.T) {
	b := NewCircuitBreaker[string]("Test", testBreakerConfig(), nil)
	_, _ = b.Execute(func() (string, error) { return "", fmt.Errorf("once") })
	assert.True(t, b.IsHealthy())

	out, err := b.Execute(func() (string, error) { return "ok", nil })
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, "AI-Test", b.Stats()["name"])
}
