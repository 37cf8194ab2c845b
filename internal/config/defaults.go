package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers every key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.temperature", 0.2)
	v.SetDefault("ai.useSystemPrompts", true)
	v.SetDefault("ai.customPrompts.system", "")
	v.SetDefault("ai.customPrompts.systemFile", "")
	v.SetDefault("ai.customPrompts.user", "")
	v.SetDefault("ai.customPrompts.userFile", "")

	// Semantic match operation. A short timeout keeps the fallback responsive.
	v.SetDefault("ai.operations.semanticMatch.enabled", true)
	v.SetDefault("ai.operations.semanticMatch.provider", "")
	v.SetDefault("ai.operations.semanticMatch.model", "")
	v.SetDefault("ai.operations.semanticMatch.timeout", 30*time.Second)
	v.SetDefault("ai.operations.semanticMatch.apiKey", "")
	v.SetDefault("ai.operations.semanticMatch.temperature", 0.1)
	v.SetDefault("ai.operations.semanticMatch.customPrompts.system", "")
	v.SetDefault("ai.operations.semanticMatch.customPrompts.systemFile", "")
	v.SetDefault("ai.operations.semanticMatch.customPrompts.user", "")
	v.SetDefault("ai.operations.semanticMatch.customPrompts.userFile", "")
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.enabled", true)
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.operations.semanticMatch.circuitBreaker.failureThreshold", 0.6)

	// Engine
	v.SetDefault("engine.weights.section", 5.0)
	v.SetDefault("engine.weights.frequency", 3.0)
	v.SetDefault("engine.weights.type", 2.0)
	v.SetDefault("engine.weights.presence", 2.0)
	v.SetDefault("engine.weights.discount", 3.0)
	v.SetDefault("engine.weights.presenceDiscount", 0.3)
	v.SetDefault("engine.lexicon.tools", []string{})
	v.SetDefault("engine.lexicon.methods", []string{})
	v.SetDefault("engine.lexicon.domains", []string{})
	v.SetDefault("engine.lexicon.metrics", []string{})
	v.SetDefault("engine.maxTerms", 30)
	v.SetDefault("engine.topN", 10)
	v.SetDefault("engine.evidenceContext", 60)
	v.SetDefault("engine.summaryLimit", 140)
	v.SetDefault("engine.bulletLimit", 200)
	v.SetDefault("engine.batchConcurrency", 4)
	v.SetDefault("engine.maxBatchSize", 20)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 60*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownTimeout", 30*time.Second)
	v.SetDefault("server.maxRequestBytes", 2*1024*1024)
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify
	v.SetDefault("server.tls.autoReload.enabled", true)
	v.SetDefault("server.tls.autoReload.debounceDelay", time.Second)
	v.SetDefault("server.apiKeys", []string{})
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)

	// App Configuration
	v.SetDefault("app.logLevel", "info")
	v.SetDefault("app.defaultFormat", "json")
	v.SetDefault("app.supportedFormats", []string{"json", "text", "markdown"})
	v.SetDefault("app.maxFileSize", 1024*1024) // 1MB

	// Vault Configuration
	v.SetDefault("vault.enabled", false)
	v.SetDefault("vault.address", "")
	v.SetDefault("vault.token", "")
	v.SetDefault("vault.tokenFile", "")
	v.SetDefault("vault.namespace", "")
	v.SetDefault("vault.secrets.apiKeys", "")
	v.SetDefault("vault.secrets.geminiKey", "")
	v.SetDefault("vault.keyRefreshInterval", 0)

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "keyplan")
	v.SetDefault("observability.serviceVersion", "")
	v.SetDefault("observability.serviceInstance", "")
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)
	v.SetDefault("observability.console.prettyPrint", true)
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})
}
