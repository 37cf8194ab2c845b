package server

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockVaultClient serves secrets from memory
type MockVaultClient struct {
	mu      sync.Mutex
	secrets map[string]*config.VaultSecret
	err     error
}

func (m *MockVaultClient) GetSecretV2(path string) (*config.VaultSecret, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.secrets[path], nil
}

func (m *MockVaultClient) set(path, keys string, version int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.secrets[path] = &config.VaultSecret{Data: map[string]any{"keys": keys}, Version: version}
}

func TestAPIKeyWatcherRefresh(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	client.set("secret/data/api", "alpha,beta", 2)
	keys := NewAPIKeySet([]string{"old"})

	vw := NewAPIKeyWatcher(client, "secret/data/api", time.Minute, keys, nil)

	changed, err := vw.refresh()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, keys.Contains("alpha"))
	assert.True(t, keys.Contains("beta"))
	assert.False(t, keys.Contains("old"))

	changed, err = vw.refresh()
	require.NoError(t, err)
	assert.False(t, changed, "same version is not re-applied")

	client.set("secret/data/api", "gamma", 3)
	changed, err = vw.refresh()
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, keys.Len())
	assert.EqualValues(t, 3, vw.Status()["last_version"])
}

func TestAPIKeyWatcherKeepsKeysOnEmptySecret(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	client.set("secret/data/api", " , ", 5)
	keys := NewAPIKeySet([]string{"current"})

	vw := NewAPIKeyWatcher(client, "secret/data/api", time.Minute, keys, nil)
	changed, err := vw.refresh()
	require.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, errors.ErrCodeVaultUnavailable, errors.CodeOf(err))
	assert.True(t, keys.Contains("current"))
}

func TestAPIKeyWatcherVaultError(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}, err: fmt.Errorf("sealed")}
	vw := NewAPIKeyWatcher(client, "secret/data/api", time.Minute, NewAPIKeySet(nil), nil)

	_, err := vw.refresh()
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVaultUnavailable, errors.CodeOf(err))
	assert.Contains(t, vw.Status()["last_error"], "sealed")

	client.err = nil
	_, err = vw.refresh()
	require.Error(t, err, "a missing secret is an error")
}

func TestAPIKeyWatcherStartStop(t *testing.T) {
	client := &MockVaultClient{secrets: map[string]*config.VaultSecret{}}
	client.set("secret/data/api", "alpha", 1)
	keys := NewAPIKeySet([]string{"alpha"})

	vw := NewAPIKeyWatcher(client, "secret/data/api", 10*time.Millisecond, keys, nil)
	require.NoError(t, vw.Start())
	assert.Error(t, vw.Start(), "second start is rejected")
	assert.EqualValues(t, 1, vw.Status()["last_version"])

	client.set("secret/data/api", "rotated", 2)
	assert.Eventually(t, func() bool { return keys.Contains("rotated") }, time.Second, 10*time.Millisecond)

	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.Equal(t, false, vw.Status()["running"])
}

func TestAPIKeyWatcherRejectsZeroInterval(t *testing.T) {
	vw := NewAPIKeyWatcher(&MockVaultClient{secrets: map[string]*config.VaultSecret{}}, "p", 0, NewAPIKeySet(nil), nil)
	assert.Error(t, vw.Start())
}
