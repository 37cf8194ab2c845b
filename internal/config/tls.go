package config

import (
	"fmt"
	"time"
)

// TLSConfig holds TLS/mTLS configuration
type TLSConfig struct {
	Mode             string           `mapstructure:"mode"`             // "disabled", "server", "mutual"
	CertFile         string           `mapstructure:"certFile"`         // Server certificate (PEM)
	KeyFile          string           `mapstructure:"keyFile"`          // Server private key (PEM)
	CAFile           string           `mapstructure:"caFile"`           // Client CA bundle, mutual mode only
	MinVersion       string           `mapstructure:"minVersion"`       // "1.2" or "1.3"
	ClientAuthPolicy string           `mapstructure:"clientAuthPolicy"` // "require", "request", "verify"
	AutoReload       AutoReloadConfig `mapstructure:"autoReload"`
}

// AutoReloadConfig controls reloading the certificate pair when the files change
type AutoReloadConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	DebounceDelay time.Duration `mapstructure:"debounceDelay"`
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS

	switch tls.Mode {
	case "disabled":
		return nil
	case "server":
		if err := requireCertAndKey(tls, "server mode"); err != nil {
			return err
		}
	case "mutual":
		if err := requireCertAndKey(tls, "mutual mode"); err != nil {
			return err
		}
		if tls.CAFile == "" {
			return fmt.Errorf("caFile is required for mutual TLS mode")
		}
		if err := validateClientAuthPolicy(tls.ClientAuthPolicy); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	return validateTLSVersion(tls.MinVersion)
}

func requireCertAndKey(tls TLSConfig, mode string) error {
	if tls.CertFile == "" || tls.KeyFile == "" {
		return fmt.Errorf("certFile and keyFile are required for %s", mode)
	}
	return nil
}

func validateClientAuthPolicy(policy string) error {
	switch policy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", policy)
	}
}

func validateTLSVersion(version string) error {
	switch version {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", version)
	}
}
