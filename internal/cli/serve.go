package cli

import (
	"context"
	"fmt"
	"time"

	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/observability"
	"keyplan/internal/server"

	"github.com/spf13/cobra"
)

// serveOverrides are the serve flags that take precedence over config
type serveOverrides struct {
	port     string
	host     string
	tlsMode  string
	certFile string
	keyFile  string
	caFile   string
}

func newServeCmd() *cobra.Command {
	o := &serveOverrides{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server for keyword planning and matching",
		Long: `Start an HTTP server that provides REST API endpoints for keyword
planning, semantic matching and validation.

Available endpoints:
- POST /plan: Build a keyword plan for a job description and resume
- POST /plan/batch: Plan one resume against several job descriptions
- POST /match: Classify keywords as matched or missed in a resume
- POST /validate: Check keywords against a job description
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := getConfigFromContext(cmd.Context())
			o.apply(cmd, cfg)
			return runServe(cmd.Context(), cfg, getLoggerFromContext(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&o.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&o.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&o.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	cmd.Flags().StringVar(&o.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&o.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	cmd.Flags().StringVar(&o.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	return cmd
}

// apply copies the flags that were set onto cfg
func (o *serveOverrides) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(flag string, dst *string, v string) {
		if cmd.Flags().Changed(flag) {
			*dst = v
		}
	}
	set("port", &cfg.Server.Port, o.port)
	set("host", &cfg.Server.Host, o.host)
	set("tls-mode", &cfg.Server.TLS.Mode, o.tlsMode)
	set("cert-file", &cfg.Server.TLS.CertFile, o.certFile)
	set("key-file", &cfg.Server.TLS.KeyFile, o.keyFile)
	set("ca-file", &cfg.Server.TLS.CAFile, o.caFile)

	if cfg.Server.TLS.Mode == "mutual" && cfg.Server.TLS.ClientAuthPolicy == "" {
		cfg.Server.TLS.ClientAuthPolicy = "require"
	}
	if cfg.Server.TLS.Mode != "disabled" && cfg.Server.TLS.MinVersion == "" {
		cfg.Server.TLS.MinVersion = "1.2"
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	// Validate TLS configuration after applying overrides
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	om, err := observability.NewManager(cfg.Observability, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.LogError(err, "Failed to shut down observability")
		}
	}()

	provider, err := newProvider(ctx, cfg.SemanticMatchConfig(), logger)
	if err != nil {
		return err
	}
	if provider != nil {
		defer func() { _ = provider.Close() }()
	}

	deps := server.Dependencies{
		Provider:      provider,
		Observability: om,
		Logger:        logger,
		Version:       Version,
	}
	if cfg.Vault.Enabled && cfg.Vault.KeyRefreshInterval > 0 {
		client, err := config.NewVaultClient(cfg.Vault, logger)
		if err != nil {
			return err
		}
		deps.Vault = client
	}

	logger.Info("Starting keyplan server",
		"version", Version,
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"ai", provider != nil)

	return server.NewServer(cfg, deps).Start(ctx)
}
