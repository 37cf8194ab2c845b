package server

import (
	"sync"
	"sync/atomic"
	"time"

	"keyplan/internal/ai"
	"keyplan/internal/config"
	"keyplan/internal/errors"
	"keyplan/internal/keywords"
	"keyplan/internal/observability"
	"keyplan/internal/semantic"
)

// Server holds configuration and collaborators for the HTTP API
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// TLS Configuration
	TLSConfig config.TLSConfig

	// Certificate management, set by Start when TLS is enabled
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys *APIKeySet

	// Timeout configurations
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	engine          *keywords.Engine
	matcher         *semantic.Matcher
	fallbackMatcher *semantic.Matcher
	provider        ai.Provider
	om              *observability.Manager
	vault           VaultClientInterface

	started time.Time
	stats   serverStats

	Logger *errors.Logger
}

// Dependencies are the collaborators a Server is built around. Provider,
// Observability and Vault may be nil.
type Dependencies struct {
	Engine        *keywords.Engine
	Provider      ai.Provider
	Observability *observability.Manager
	Vault         VaultClientInterface
	Logger        *errors.Logger
	Version       string
}

type serverStats struct {
	plansBuilt      atomic.Int64
	matchesServed   atomic.Int64
	fallbackMatches atomic.Int64
	rateLimited     atomic.Int64
}

// NewServer creates a new Server from the application configuration
func NewServer(appCfg *config.Config, deps Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	engine := deps.Engine
	if engine == nil {
		engine = keywords.NewEngine(appCfg.Engine.EngineOptions()...)
	}

	var rateLimiter *RateLimiter
	rateLimit := appCfg.Server.RateLimit
	if rateLimit.Enabled {
		rateLimiter = NewRateLimiter(rateLimit.RequestsPerMin, rateLimit.BurstCapacity, logger)
	}

	var matcherOpts []semantic.MatcherOption
	if op := appCfg.SemanticMatchConfig(); op.Timeout != nil {
		matcherOpts = append(matcherOpts, semantic.WithTimeout(*op.Timeout))
	}
	var primary semantic.Classifier
	if deps.Provider != nil {
		primary = deps.Provider
	}

	return &Server{
		Host:            appCfg.Server.Host,
		Port:            appCfg.Server.Port,
		Version:         deps.Version,
		AppConfig:       appCfg,
		TLSConfig:       appCfg.Server.TLS,
		APIKeys:         NewAPIKeySet(appCfg.Server.APIKeys),
		ReadTimeout:     appCfg.Server.ReadTimeout,
		WriteTimeout:    appCfg.Server.WriteTimeout,
		IdleTimeout:     appCfg.Server.IdleTimeout,
		ShutdownTimeout: appCfg.Server.ShutdownTimeout,
		MaxRequestSize:  appCfg.Server.MaxRequestBytes,
		RateLimit:       &rateLimit,
		RateLimiter:     rateLimiter,
		engine:          engine,
		matcher:         semantic.NewMatcher(primary, logger, matcherOpts...),
		fallbackMatcher: semantic.NewMatcher(nil, logger),
		provider:        deps.Provider,
		om:              deps.Observability,
		vault:           deps.Vault,
		started:         time.Now(),
		Logger:          logger,
	}
}

// APIKeySet is the set of accepted API keys. It can be replaced while the
// server is running.
type APIKeySet struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewAPIKeySet builds a set from keys, ignoring empty entries
func NewAPIKeySet(keys []string) *APIKeySet {
	s := &APIKeySet{}
	s.Replace(keys)
	return s
}

// Replace swaps in a new key list
func (s *APIKeySet) Replace(keys []string) {
	m := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			m[key] = true
		}
	}
	s.mu.Lock()
	s.keys = m
	s.mu.Unlock()
}

// Contains reports whether key is accepted
func (s *APIKeySet) Contains(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key]
}

// Len returns the number of configured keys. Zero disables authentication.
func (s *APIKeySet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
