package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/observability"
)

const (
	certCriticalThreshold = 24 * time.Hour
	certWarningThreshold  = 7 * 24 * time.Hour
)

// CertificateManager holds the serving certificate and client CA pool and
// swaps them when the files on disk change
type CertificateManager struct {
	mu sync.RWMutex

	cfg     config.TLSConfig
	metrics *observability.Metrics
	logger  *errors.Logger

	cert     *tls.Certificate
	caPool   *x509.CertPool
	notAfter time.Time

	watcher *CertWatcher

	reloadCount   int
	reloadFailed  int
	lastReload    time.Time
	lastReloadErr string
}

// NewCertificateManager loads the configured certificate pair, and the CA
// bundle in mutual mode. A load failure here is fatal to startup.
func NewCertificateManager(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) (*CertificateManager, error) {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	if metrics == nil {
		metrics = &observability.Metrics{}
	}
	cm :=&CertificateManager{cfg: cfg, metrics: metrics, logger: logger}
	if err := cm.load(); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "failed to load TLS certificates", err)
	}
	return cm, nil
}

// Start begins watching the certificate files when auto reload is enabled
func (cm *CertificateManager) Start() error {
	if !cm.cfg.AutoReload.Enabled {
		return nil
	}
	cm.watcher = NewCertWatcher(
		[]string{cm.cfg.CertFile, cm.cfg.KeyFile, cm.cfg.CAFile},
		cm.cfg.AutoReload.DebounceDelay,
		cm.Reload,
		cm.logger,
	)
	return cm.watcher.Start()
}

// Stop stops the file watcher
func (cm *CertificateManager) Stop() error {
	if cm.watcher == nil {
		return nil
	}
	return cm.watcher.Stop()
}

// Reload re-reads the files. On failure the previous certificate stays in use.
func (cm *CertificateManager) Reload() {
	err := cm.load()

	cm.mu.Lock()
	cm.reloadCount++
	cm.lastReload = time.Now()
	if err != nil {
		cm.reloadFailed++
		cm.lastReloadErr = err.Error()
	} else {
		cm.lastReloadErr = ""
	}
	cm.mu.Unlock()

	cm.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		cm.logger.LogError(err, "Certificate reload failed, keeping previous certificate")
		return
	}
	cm.logger.Info("Certificates reloaded", "not_after", cm.NotAfter())
}

// TLSConfig builds the server TLS configuration. Certificates and the CA
// pool are resolved per handshake so reloads take effect immediately.
func (cm *CertificateManager) TLSConfig() *tls.Config {
	base := &tls.Config{
		MinVersion:     tlsVersion(cm.cfg.MinVersion),
		GetCertificate: cm.GetCertificate,
	}
	if cm.cfg.Mode != "mutual" {
		return base
	}

	base.ClientAuth = clientAuthPolicy(cm.cfg.ClientAuthPolicy)
	base.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
		cfg := base.Clone()
		cfg.GetConfigForClient = nil
		cfg.ClientCAs = cm.CACertPool()
		return cfg, nil
	}
	return base
}

// GetCertificate returns the current serving certificate
func (cm *CertificateManager) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cm.cert, nil
}

// CACertPool returns the current client CA pool, nil outside mutual mode
func (cm *CertificateManager) CACertPool() *x509.CertPool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.caPool
}

// NotAfter returns the leaf certificate expiry
func (cm *CertificateManager) NotAfter() time.Time {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.notAfter
}

// CheckExpiry returns the time left before the leaf certificate expires
func (cm *CertificateManager) CheckExpiry() time.Duration {
	return time.Until(cm.NotAfter())
}

// HealthStatus summarizes expiry and reload state. Certificates expiring
// within a day are reported unhealthy.
func (cm *CertificateManager) HealthStatus() map[string]any {
	ttl := cm.CheckExpiry()
	status := map[string]any{
		"time_to_expiry": ttl.Round(time.Minute).String(),
		"not_after":      cm.NotAfter().UTC().Format(time.RFC3339),
	}

	switch {
	case ttl <= 0:
		status["healthy"], status["status"] = false, "expired"
	case ttl <= certCriticalThreshold:
		status["healthy"], status["status"] = false, "critical"
	case ttl <= certWarningThreshold:
		status["healthy"], status["status"] = true, "warning"
	default:
		status["healthy"], status["status"] = true, "ok"
	}

	cm.mu.RLock()
	reload := map[string]any{
		"enabled":        cm.cfg.AutoReload.Enabled,
		"reload_count":   cm.reloadCount,
		"reload_failed":  cm.reloadFailed,
		"last_error":     cm.lastReloadErr,
		"watcher_active": cm.watcher != nil && cm.watcher.IsRunning(),
	}
	if !cm.lastReload.IsZero() {
		reload["last_reload"] = cm.lastReload.UTC().Format(time.RFC3339)
	}
	cm.mu.RUnlock()
	status["auto_reload"] = reload

	return status
}

// load reads every configured file and swaps them in together
func (cm *CertificateManager) load() error {
	pair, err := tls.LoadX509KeyPair(cm.cfg.CertFile, cm.cfg.KeyFile)
	if err != nil {
		return fmt.Errorf("failed to load certificate pair: %w", err)
	}
	leaf := pair.Leaf
	if leaf == nil {
		if leaf, err = x509.ParseCertificate(pair.Certificate[0]); err != nil {
			return fmt.Errorf("failed to parse certificate: %w", err)
		}
	}

	var pool *x509.CertPool
	if cm.cfg.Mode == "mutual" {
		caPEM, err := os.ReadFile(cm.cfg.CAFile)
		if err != nil {
			return fmt.Errorf("failed to read CA file: %w", err)
		}
		pool = x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return fmt.Errorf("no certificates found in CA file %s", cm.cfg.CAFile)
		}
	}

	cm.mu.Lock()
	cm.cert = &pair
	cm.caPool = pool
	cm.notAfter = leaf.NotAfter
	cm.mu.Unlock()
	return nil
}

func tlsVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
