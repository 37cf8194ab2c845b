package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPrompts(t *testing.T) {
	system, user := buildPrompts("", "", []string{"c++", "A/B testing"}, "resume body")
	assert.Equal(t, DefaultSystemPrompt, system)
	assert.Contains(t, user, `["c++","A/B testing"]`)
	assert.Contains(t, user, "resume body")

	system, user = buildPrompts("custom system", "K=%s R=%s", []string{"go"}, "text")
	assert.Equal(t, "custom system", system)
	assert.Equal(t, `K=["go"] R=text`, user)

	_, user = buildPrompts("", "Be strict.", []string{"go"}, "text")
	assert.Contains(t, user, "Be strict.")
	assert.Contains(t, user, `["go"]`)
	assert.Contains(t, user, "text")
}

func TestDefaultSystemPromptJudgingStandard(t *testing.T) {
	assert.Contains(t, DefaultSystemPrompt, "did the candidate clearly do this work, regardless of exact wording")
}
