package config

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"keyplan/internal/errors"

	"github.com/hashicorp/vault/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeVault(t *testing.T, secrets map[string]map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/v1/sys/health" {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"initialized": true, "sealed": false, "standby": false,
				"version": "1.15.0", "cluster_name": "test",
			})
			return
		}
		if r.Header.Get("X-Vault-Token") != "root" {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"errors":["permission denied"]}`))
			return
		}
		data, ok := secrets[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"data": data, "metadata": map[string]any{"version": 3}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestApplyVaultSecrets(t *testing.T) {
	srv := fakeVault(t, map[string]map[string]any{
		"/v1/secret/data/keyplan/gemini": {"api_key": "vault-gemini"},
		"/v1/secret/data/keyplan/api":    {"keys": "k1, k2"},
	})

	cfg := Default()
	cfg.AI.Operations.SemanticMatch.APIKey = ""
	cfg.Vault = VaultConfig{
		Enabled: true,
		Address: srv.URL,
		Token:   "root",
		Secrets: VaultSecrets{GeminiKey: "secret/data/keyplan/gemini", APIKeys: "secret/data/keyplan/api"},
	}

	require.NoError(t, ApplyVaultSecrets(cfg, errors.NewNopLogger()))
	assert.Equal(t, "vault-gemini", cfg.AI.APIKey)
	assert.Equal(t, "vault-gemini", cfg.SemanticMatchConfig().APIKey)
	assert.Equal(t, []string{"k1", "k2"}, cfg.Server.APIKeys)
}

func TestApplyVaultSecretsMissingPath(t *testing.T) {
	srv := fakeVault(t, nil)
	cfg := Default()
	cfg.Vault = VaultConfig{Enabled: true, Address: srv.URL, Token: "root", Secrets: VaultSecrets{GeminiKey: "secret/data/none"}}

	err := ApplyVaultSecrets(cfg, nil)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeVaultUnavailable, errors.CodeOf(err))
}

func TestApplyVaultSecretsDisabled(t *testing.T) {
	cfg := Default()
	require.NoError(t, ApplyVaultSecrets(cfg, nil))
}

func TestApplyGeminiKeyKeepsOperationKey(t *testing.T) {
	cfg := Default()
	cfg.AI.Operations.SemanticMatch.APIKey = "explicit"
	applyGeminiKey(cfg, "vault")
	assert.Equal(t, "vault", cfg.AI.APIKey)
	assert.Equal(t, "explicit", cfg.SemanticMatchConfig().APIKey)
}

func TestResolveVaultToken(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token")
	require.NoError(t, os.WriteFile(tokenFile, []byte(" from-file \n"), 0600))

	token, err := resolveVaultToken(VaultConfig{Token: "inline", TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "inline", token)

	token, err = resolveVaultToken(VaultConfig{TokenFile: tokenFile})
	require.NoError(t, err)
	assert.Equal(t, "from-file", token)

	_, err = resolveVaultToken(VaultConfig{})
	assert.Error(t, err)
}

func TestParseKVv2(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]any
		version int64
		wantErr bool
	}{
		{"json number", map[string]any{"data": map[string]any{}, "metadata": map[string]any{"version": json.Number("4")}}, 4, false},
		{"float", map[string]any{"data": map[string]any{}, "metadata": map[string]any{"version": 2.0}}, 2, false},
		{"string", map[string]any{"data": map[string]any{}, "metadata": map[string]any{"version": "7"}}, 7, false},
		{"bad string", map[string]any{"data": map[string]any{}, "metadata": map[string]any{"version": "x"}}, 0, true},
		{"missing data", map[string]any{"metadata": map[string]any{"version": 1.0}}, 0, true},
		{"missing version", map[string]any{"data": map[string]any{}, "metadata": map[string]any{}}, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := parseKVv2(&api.Secret{Data: tt.data}, "secret/data/x")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.version, s.Version)
		})
	}
}
