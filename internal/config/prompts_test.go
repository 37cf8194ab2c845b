package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptResolutionOrder(t *testing.T) {
	dir := t.TempDir()
	opSystem := filepath.Join(dir, "system.match.md")
	globalUser := filepath.Join(dir, "user.md")
	require.NoError(t, os.WriteFile(opSystem, []byte("  operation system from file \n"), 0600))
	require.NoError(t, os.WriteFile(globalUser, []byte("global user from file"), 0600))

	cfg := Default()
	cfg.AI.CustomPrompts = PromptConfig{System: "global system inline", UserFile: globalUser}
	cfg.AI.Operations.SemanticMatch.CustomPrompts = PromptConfig{System: "operation system inline", SystemFile: opSystem}
	require.NoError(t, cfg.loadPromptsFromFiles())

	op := cfg.SemanticMatchConfig()
	assert.Equal(t, "operation system from file", op.CustomPrompts.System)
	assert.Equal(t, "global user from file", op.CustomPrompts.User)

	cfg.prompts = LoadedPrompts{}
	op = cfg.SemanticMatchConfig()
	assert.Equal(t, "operation system inline", op.CustomPrompts.System)
	assert.Empty(t, op.CustomPrompts.User)
}

func TestLoadPromptFromFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadPromptFromFile(filepath.Join(dir, "missing.md"), "system", "global")
	assert.ErrorContains(t, err, "not found")

	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("   \n"), 0600))
	_, err = loadPromptFromFile(empty, "user", "semanticMatch")
	assert.ErrorContains(t, err, "is empty")
}

func TestLoadConfigRejectsMissingPromptFile(t *testing.T) {
	path := writeConfig(t, "ai:\n  operations:\n    semanticMatch:\n      customPrompts:\n        userFile: /nonexistent/prompt.md\n")
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "prompt file not found")
}
