package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"keyplan/internal/observability"
)

const defaultShutdownTimeout = 30 * time.Second

// Start serves the API until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	httpServer := s.setupHTTPServer()

	if s.TLSConfig.Mode != "" && s.TLSConfig.Mode != "disabled" {
		cm, err := NewCertificateManager(s.TLSConfig, s.om.Metrics(), s.Logger)
		if err != nil {
			return err
		}
		if err := cm.Start(); err != nil {
			return fmt.Errorf("failed to start certificate watcher: %w", err)
		}
		s.CertificateManager = cm
		httpServer.TLSConfig = cm.TLSConfig()
	}

	keyWatcher, err := s.startAPIKeyWatcher()
	if err != nil {
		return err
	}

	if err := s.startMetricsServer(ctx); err != nil {
		return err
	}

	s.displayServerInfo()

	return s.startWithGracefulShutdown(ctx, httpServer, keyWatcher)
}

// setupHTTPServer creates and configures the HTTP server
func (s *Server) setupHTTPServer() *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort(s.Host, s.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.ReadTimeout,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
		IdleTimeout:       s.IdleTimeout,
	}
}

// startAPIKeyWatcher polls Vault for rotated API keys when configured
func (s *Server) startAPIKeyWatcher() (*APIKeyWatcher, error) {
	vaultCfg := s.AppConfig.Vault
	if s.vault == nil || !vaultCfg.Enabled || vaultCfg.Secrets.APIKeys == "" || vaultCfg.KeyRefreshInterval <= 0 {
		return nil, nil
	}
	watcher := NewAPIKeyWatcher(s.vault, vaultCfg.Secrets.APIKeys, vaultCfg.KeyRefreshInterval, s.APIKeys, s.Logger)
	if err := watcher.Start(); err != nil {
		return nil, fmt.Errorf("failed to start API key watcher: %w", err)
	}
	return watcher, nil
}

// startMetricsServer serves Prometheus on its own port unless it shares
// the API port, in which case setupRoutes mounted it
func (s *Server) startMetricsServer(ctx context.Context) error {
	handler := s.om.PrometheusHandler()
	if handler == nil || s.servesMetricsInline() {
		return nil
	}
	prom := s.AppConfig.Observability.Prometheus
	return observability.StartPrometheusServer(ctx, handler, s.metricsEndpoint(), prom.Port, s.Logger)
}

func (s *Server) servesMetricsInline() bool {
	port := s.AppConfig.Observability.Prometheus.Port
	return port == "" || port == s.Port
}

func (s *Server) metricsEndpoint() string {
	if endpoint := s.AppConfig.Observability.Prometheus.Endpoint; endpoint != "" {
		return endpoint
	}
	return "/metrics"
}

// startWithGracefulShutdown serves until ctx is done or the listener fails
func (s *Server) startWithGracefulShutdown(ctx context.Context, server *http.Server, keyWatcher *APIKeyWatcher) error {
	serverErrors := make(chan error, 1)

	go func() {
		s.Logger.Info("Starting HTTP server",
			"address", server.Addr,
			"tls_enabled", server.TLSConfig != nil)

		var err error
		if server.TLSConfig != nil {
			// Certificates come from TLSConfig.GetCertificate.
			err = server.ListenAndServeTLS("", "")
		} else {
			err = server.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		s.cleanup(keyWatcher)
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.Logger.Info("Shutdown requested, starting graceful shutdown")
		return s.performGracefulShutdown(server, keyWatcher)
	}
}

// performGracefulShutdown drains in-flight requests within ShutdownTimeout
func (s *Server) performGracefulShutdown(server *http.Server, keyWatcher *APIKeyWatcher) error {
	timeout := s.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.cleanup(keyWatcher)

	s.Logger.Info("Shutting down HTTP server", "timeout", timeout)
	if err := server.Shutdown(shutdownCtx); err != nil {
		s.Logger.LogError(err, "Failed to shutdown server gracefully, forcing close")
		return server.Close()
	}

	s.Logger.Info("Server shutdown completed successfully")
	return nil
}

// cleanup stops background watchers and the rate limiter
func (s *Server) cleanup(keyWatcher *APIKeyWatcher) {
	if s.CertificateManager != nil {
		if err := s.CertificateManager.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop certificate manager")
		}
	}
	if keyWatcher != nil {
		if err := keyWatcher.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop API key watcher")
		}
	}
	if s.RateLimiter != nil {
		s.RateLimiter.Close()
	}
}
