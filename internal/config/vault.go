package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"keyplan/internal/errors"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
	// KeyRefreshInterval polls the API key secret while serving; zero disables
	KeyRefreshInterval time.Duration `mapstructure:"keyRefreshInterval"`
}

// VaultSecrets names the KVv2 paths holding secrets
type VaultSecrets struct {
	// APIKeys holds a comma-separated "keys" value, e.g. "key1,key2"
	APIKeys string `mapstructure:"apiKeys"`
	// GeminiKey holds an "api_key" value
	GeminiKey string `mapstructure:"geminiKey"`
}

// VaultClient reads KVv2 secrets
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine.
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient connects to Vault and checks its health
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	vaultConfig := api.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeVaultUnavailable, "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewNetworkError(errors.ErrCodeVaultUnavailable, "failed to connect to vault", err).
			WithContext("address", vaultConfig.Address)
	}
	if health.Sealed {
		return nil, errors.NewNetworkError(errors.ErrCodeVaultUnavailable, "vault is sealed", nil).
			WithContext("address", vaultConfig.Address)
	}

	logger.Info("Connected to Vault",
		"address", vaultConfig.Address,
		"version", health.Version,
		"cluster_name", health.ClusterName)

	return &VaultClient{client: client, logger: logger}, nil
}

// resolveVaultToken prefers the inline token over the token file
func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to read vault token file", err).
				WithContext("file", cfg.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeInvalidConfig, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store.
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}
	return parseKVv2(secret, path)
}

func parseKVv2(secret *api.Secret, path string) (*VaultSecret, error) {
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}
	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the numeric shapes the Vault client decodes to
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case json.Number:
		return v.Int64()
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	case nil:
		return 0, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	vc.logger.Debug("Secret retrieved from Vault", "path", path, "key", key, "version", secret.Version)
	return s, nil
}

// ApplyVaultSecrets overlays Vault secrets on cfg. It is a no-op when Vault
// is disabled.
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	if !cfg.Vault.Enabled {
		return nil
	}

	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil {
		return err
	}
	return client.apply(cfg)
}

func (vc *VaultClient) apply(cfg *Config) error {
	paths := cfg.Vault.Secrets

	if paths.APIKeys != "" {
		raw, err := vc.GetStringSecret(paths.APIKeys, "keys")
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeVaultUnavailable, "failed to load API keys from vault", err)
		}
		if keys := splitList(raw); len(keys) > 0 {
			cfg.Server.APIKeys = keys
			vc.logger.Info("API keys loaded from Vault", "count", len(keys))
		} else {
			vc.logger.Warn("No API keys found in Vault", "path", paths.APIKeys)
		}
	}

	if paths.GeminiKey != "" {
		key, err := vc.GetStringSecret(paths.GeminiKey, "api_key")
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeVaultUnavailable, "failed to load Gemini API key from vault", err)
		}
		if key != "" {
			applyGeminiKey(cfg, key)
			vc.logger.Info("Gemini API key loaded from Vault")
		}
	}

	return nil
}

// ParseAPIKeys splits the comma-separated "keys" value of the API key secret
func ParseAPIKeys(raw string) []string {
	return splitList(raw)
}

// applyGeminiKey sets the global key; operation keys set explicitly are kept
func applyGeminiKey(cfg *Config, key string) {
	cfg.AI.APIKey = key
	if cfg.AI.Operations.SemanticMatch.APIKey == "" {
		cfg.AI.Operations.SemanticMatch.APIKey = key
	}
}
