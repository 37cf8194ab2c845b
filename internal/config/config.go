package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strings"
	"time"

	"keyplan/internal/keywords"

	"github.com/spf13/viper"
)

// Config holds all application configuration
// API Key Precedence Order:
// 1. Vault (if configured) - Highest priority
// 2. Config File values
// 3. Environment Variables (KEYPLAN_AI_APIKEY, etc.)
// 4. Default values - Lowest priority
type Config struct {
	AI            AIConfig            `mapstructure:"ai"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Server        ServerConfig        `mapstructure:"server"`
	App           AppConfig           `mapstructure:"app"`
	Vault         VaultConfig         `mapstructure:"vault"`
	Observability ObservabilityConfig `mapstructure:"observability"`

	prompts LoadedPrompts
}

// AIConfig holds the global model settings and per-operation overrides
type AIConfig struct {
	Provider         string           `mapstructure:"provider"`
	Model            string           `mapstructure:"model"`
	Timeout          time.Duration    `mapstructure:"timeout"`
	APIKey           string           `mapstructure:"apiKey"`
	Temperature      float32          `mapstructure:"temperature"`
	UseSystemPrompts bool             `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig     `mapstructure:"customPrompts"`
	Operations       OperationsConfig `mapstructure:"operations"`
}

// OperationsConfig lists the model-backed operations
type OperationsConfig struct {
	SemanticMatch OperationAIConfig `mapstructure:"semanticMatch"`
}

// CircuitBreakerConfig represents circuit breaker configuration
type CircuitBreakerConfig struct {
	Enabled          bool          `mapstructure:"enabled"`          // Whether circuit breaker is enabled
	MaxRequests      uint32        `mapstructure:"maxRequests"`      // Max requests allowed when half-open
	Interval         time.Duration `mapstructure:"interval"`         // Interval to clear counts
	Timeout          time.Duration `mapstructure:"timeout"`          // Open state duration before half-open
	MinRequests      uint32        `mapstructure:"minRequests"`      // Minimum requests before tripping
	FailureThreshold float64       `mapstructure:"failureThreshold"` // Failure ratio threshold (0.0-1.0)
}

// OperationAIConfig holds AI configuration for one operation. Unset fields
// inherit from AIConfig.
type OperationAIConfig struct {
	Enabled          *bool                `mapstructure:"enabled"`
	Provider         string               `mapstructure:"provider"`
	Model            string               `mapstructure:"model"`
	Timeout          *time.Duration       `mapstructure:"timeout"`
	APIKey           string               `mapstructure:"apiKey"`
	Temperature      *float32             `mapstructure:"temperature"`
	UseSystemPrompts *bool                `mapstructure:"useSystemPrompts"`
	CustomPrompts    PromptConfig         `mapstructure:"customPrompts"`
	CircuitBreaker   CircuitBreakerConfig `mapstructure:"circuitBreaker"`
}

// IsEnabled reports whether the operation should call the model at all
func (o OperationAIConfig) IsEnabled() bool {
	return o.Enabled == nil || *o.Enabled
}

// EngineConfig holds the deterministic planner settings
type EngineConfig struct {
	Weights          keywords.Weights `mapstructure:"weights"`
	Lexicon          keywords.Lexicon `mapstructure:"lexicon"`
	MaxTerms         int              `mapstructure:"maxTerms"`
	TopN             int              `mapstructure:"topN"`
	EvidenceContext  int              `mapstructure:"evidenceContext"`
	SummaryLimit     int              `mapstructure:"summaryLimit"`
	BulletLimit      int              `mapstructure:"bulletLimit"`
	BatchConcurrency int              `mapstructure:"batchConcurrency"`
	MaxBatchSize     int              `mapstructure:"maxBatchSize"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string          `mapstructure:"host"`
	Port            string          `mapstructure:"port"`
	ReadTimeout     time.Duration   `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration   `mapstructure:"writeTimeout"`
	IdleTimeout     time.Duration   `mapstructure:"idleTimeout"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdownTimeout"`
	MaxRequestBytes int64           `mapstructure:"maxRequestBytes"`
	TLS             TLSConfig       `mapstructure:"tls"`
	APIKeys         []string        `mapstructure:"apiKeys"`
	RateLimit       RateLimitConfig `mapstructure:"rateLimit"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requestsPerMin"`
	BurstCapacity  int  `mapstructure:"burstCapacity"`
	ByIP           bool `mapstructure:"byIP"`
	ByAPIKey       bool `mapstructure:"byAPIKey"`
}

// AppConfig holds general application configuration
type AppConfig struct {
	LogLevel         string   `mapstructure:"logLevel"`
	DefaultFormat    string   `mapstructure:"defaultFormat"`
	SupportedFormats []string `mapstructure:"supportedFormats"`
	MaxFileSize      int64    `mapstructure:"maxFileSize"`
}

// ObservabilityConfig holds observability configuration
type ObservabilityConfig struct {
	Enabled         bool             `mapstructure:"enabled"`
	ServiceName     string           `mapstructure:"serviceName"`
	ServiceVersion  string           `mapstructure:"serviceVersion"`
	ServiceInstance string           `mapstructure:"serviceInstance"`
	ConsoleOutput   bool             `mapstructure:"consoleOutput"`
	SampleRate      float64          `mapstructure:"sampleRate"`
	Metrics         MetricsConfig    `mapstructure:"metrics"`
	Console         ConsoleConfig    `mapstructure:"console"`
	Prometheus      PrometheusConfig `mapstructure:"prometheus"`
	OTLP            OTLPConfig       `mapstructure:"otlp"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	CollectionInterval time.Duration `mapstructure:"collectionInterval"`
}

// ConsoleConfig holds console output configuration
type ConsoleConfig struct {
	PrettyPrint bool `mapstructure:"prettyPrint"`
}

// PrometheusConfig holds Prometheus configuration
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
	Port     string `mapstructure:"port"`
}

// OTLPConfig holds OTLP exporter configuration
type OTLPConfig struct {
	Enabled  bool              `mapstructure:"enabled"`
	Endpoint string            `mapstructure:"endpoint"`
	Insecure bool              `mapstructure:"insecure"`
	Headers  map[string]string `mapstructure:"headers"`
}

// LoadConfig reads configuration from the given file, or from config.yaml in
// the standard search paths when configFile is empty, then applies
// environment overrides.
func LoadConfig(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("KEYPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("/etc/keyplan/")
		v.AddConfigPath("$HOME/.keyplan")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Println("[CONFIG] No config file found, using defaults and environment variables")
	} else {
		log.Printf("[CONFIG] Loaded config file: %s", v.ConfigFileUsed())
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyFallbacks()

	if err := config.loadPromptsFromFiles(); err != nil {
		return nil, fmt.Errorf("failed to load custom prompts from files: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Default returns the configuration produced by defaults alone
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// Defaults always decode.
	_ = v.Unmarshal(&config)
	config.applyFallbacks()
	return &config
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.AI.Timeout <= 0 {
		return fmt.Errorf("AI timeout must be positive")
	}

	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if !slices.Contains(c.App.SupportedFormats, c.App.DefaultFormat) {
		return fmt.Errorf("invalid default format: %s", c.App.DefaultFormat)
	}

	if c.App.MaxFileSize <= 0 {
		return fmt.Errorf("app.maxFileSize must be positive")
	}

	if err := c.Engine.Validate(); err != nil {
		return fmt.Errorf("engine configuration error: %w", err)
	}

	cb := c.AI.Operations.SemanticMatch.CircuitBreaker
	if cb.Enabled && (cb.FailureThreshold <= 0 || cb.FailureThreshold > 1) {
		return fmt.Errorf("circuit breaker failureThreshold must be in (0, 1], got %v", cb.FailureThreshold)
	}

	if err := c.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("TLS configuration error: %w", err)
	}

	return nil
}

// SemanticMatchConfig returns the semantic match operation settings with
// global fallbacks and file-loaded prompts resolved.
func (c *Config) SemanticMatchConfig() OperationAIConfig {
	op := c.AI.Operations.SemanticMatch

	if op.Provider == "" {
		op.Provider = c.AI.Provider
	}
	if op.Model == "" {
		op.Model = c.AI.Model
	}
	if op.Timeout == nil {
		op.Timeout = &c.AI.Timeout
	}
	if op.APIKey == "" {
		op.APIKey = c.AI.APIKey
	}
	if op.Temperature == nil {
		op.Temperature = &c.AI.Temperature
	}
	if op.UseSystemPrompts == nil {
		op.UseSystemPrompts = &c.AI.UseSystemPrompts
	}

	op.CustomPrompts.System = resolvePrompt(c.prompts.SemanticMatch.System, op.CustomPrompts.System,
		c.prompts.Global.System, c.AI.CustomPrompts.System)
	op.CustomPrompts.User = resolvePrompt(c.prompts.SemanticMatch.User, op.CustomPrompts.User,
		c.prompts.Global.User, c.AI.CustomPrompts.User)

	return op
}

// resolvePrompt returns the first non-empty candidate
func resolvePrompt(candidates ...string) string {
	for _, p := range candidates {
		if p != "" {
			return p
		}
	}
	return ""
}

// applyFallbacks fills derived values that defaults cannot express
func (c *Config) applyFallbacks() {
	if len(c.Server.APIKeys) == 0 {
		if apiKeysEnv := os.Getenv("KEYPLAN_SERVER_APIKEYS"); apiKeysEnv != "" {
			c.Server.APIKeys = splitList(apiKeysEnv)
		}
	}

	if c.AI.APIKey == "" {
		c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
	}

	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}

	if c.Observability.ServiceInstance == "" {
		if hostname, err := os.Hostname(); err == nil {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-%s", c.Observability.ServiceName, hostname)
		} else {
			c.Observability.ServiceInstance = fmt.Sprintf("%s-1", c.Observability.ServiceName)
		}
	}

	if c.App.LogLevel == "debug" && !c.Observability.ConsoleOutput {
		c.Observability.ConsoleOutput = true
	}
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
