package server

import (
	"fmt"
	"sync"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"
)

// VaultClientInterface is the Vault read the key watcher needs
type VaultClientInterface interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeyWatcher polls the Vault API key secret and swaps the server's key
// set whenever the secret version advances
type APIKeyWatcher struct {
	mu sync.RWMutex

	client       VaultClientInterface
	secretPath   string
	pollInterval time.Duration
	keys         *APIKeySet
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastError   string
}

// NewAPIKeyWatcher creates a watcher that updates keys from secretPath
func NewAPIKeyWatcher(client VaultClientInterface, secretPath string, pollInterval time.Duration, keys *APIKeySet, logger *errors.Logger) *APIKeyWatcher {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &APIKeyWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		keys:         keys,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start records the current secret version and begins polling
func (vw *APIKeyWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("API key watcher is already running")
	}
	if vw.pollInterval <= 0 {
		return fmt.Errorf("API key watcher poll interval must be positive")
	}
	if secret, err := vw.client.GetSecretV2(vw.secretPath); err == nil && secret != nil {
		vw.lastVersion = secret.Version
	}
	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault API key watcher started", "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops polling
func (vw *APIKeyWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault API key watcher stopped")
	return nil
}

func (vw *APIKeyWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := vw.refresh(); err != nil {
				vw.logger.LogError(err, "Failed to refresh API keys from Vault")
			}
		case <-vw.stopChan:
			return
		}
	}
}

// refresh reads the secret and applies it when its version is newer.
// An empty key list is never applied.
func (vw *APIKeyWatcher) refresh() (bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)
	if err == nil && secret == nil {
		err = fmt.Errorf("secret %s not found", vw.secretPath)
	}
	if err != nil {
		vw.setError(err)
		return false, errors.NewConfigError(errors.ErrCodeVaultUnavailable, "failed to read API key secret", err)
	}

	vw.mu.Lock()
	defer vw.mu.Unlock()
	if secret.Version <= vw.lastVersion {
		return false, nil
	}

	raw, _ := secret.Data["keys"].(string)
	keys := config.ParseAPIKeys(raw)
	if len(keys) == 0 {
		vw.lastError = "secret holds no API keys"
		return false, errors.NewConfigError(errors.ErrCodeVaultUnavailable,
			"API key secret holds no keys, keeping current set", nil).WithContext("version", secret.Version)
	}

	vw.keys.Replace(keys)
	vw.lastVersion = secret.Version
	vw.lastError = ""
	vw.logger.Info("API keys rotated from Vault", "count", len(keys), "version", secret.Version)
	return true, nil
}

func (vw *APIKeyWatcher) setError(err error) {
	vw.mu.Lock()
	vw.lastError = err.Error()
	vw.mu.Unlock()
}

// Status returns the current state of the watcher
func (vw *APIKeyWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	return map[string]any{
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
		"last_error":    vw.lastError,
	}
}
