package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// PromptConfig holds inline prompt overrides and files to read them from.
// A file wins over the inline value at the same level.
type PromptConfig struct {
	System     string `mapstructure:"system"`
	SystemFile string `mapstructure:"systemFile"`
	User       string `mapstructure:"user"`
	UserFile   string `mapstructure:"userFile"`
}

// PromptPair is prompt text read from files
type PromptPair struct {
	System string
	User   string
}

// LoadedPrompts holds file contents per level
type LoadedPrompts struct {
	Global        PromptPair
	SemanticMatch PromptPair
}

// loadPromptsFromFiles reads every configured prompt file
func (c *Config) loadPromptsFromFiles() error {
	var err error
	if c.prompts.Global, err = loadPromptPair(c.AI.CustomPrompts, "global"); err != nil {
		return err
	}
	if c.prompts.SemanticMatch, err = loadPromptPair(c.AI.Operations.SemanticMatch.CustomPrompts, "semanticMatch"); err != nil {
		return err
	}
	return nil
}

func loadPromptPair(p PromptConfig, level string) (PromptPair, error) {
	var pair PromptPair
	if p.SystemFile != "" {
		content, err := loadPromptFromFile(p.SystemFile, "system", level)
		if err != nil {
			return pair, err
		}
		pair.System = content
	}
	if p.UserFile != "" {
		content, err := loadPromptFromFile(p.UserFile, "user", level)
		if err != nil {
			return pair, err
		}
		pair.User = content
	}
	return pair, nil
}

// loadPromptFromFile reads a prompt file and rejects empty content
func loadPromptFromFile(filePath, promptType, level string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", level, promptType, filePath, err)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%s %s prompt file not found: %s", level, promptType, absPath)
		}
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", level, promptType, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", level, promptType, absPath)
	}

	log.Printf("[CONFIG] Loaded %s %s prompt from file: %s (%d characters)", level, promptType, absPath, len(trimmed))
	return trimmed, nil
}
