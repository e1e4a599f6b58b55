package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// AI Configuration - Global defaults
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.embeddingModel", "gemini-embedding-001")
	v.SetDefault("ai.timeout", 60*time.Second)
	v.SetDefault("ai.apiKey", "")
	v.SetDefault("ai.maxRetries", 3)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.useSystemPrompts", true)

	// AI Configuration - Interviewer turn defaults
	v.SetDefault("ai.interview.provider", "gemini")
	v.SetDefault("ai.interview.model", "")
	v.SetDefault("ai.interview.timeout", 60*time.Second)
	v.SetDefault("ai.interview.apiKey", "")
	v.SetDefault("ai.interview.maxRetries", 2)
	v.SetDefault("ai.interview.temperature", 0.7) // Conversational variety for questions
	v.SetDefault("ai.interview.useSystemPrompts", true)

	// AI Configuration - Feedback synthesis defaults
	v.SetDefault("ai.feedback.provider", "gemini")
	v.SetDefault("ai.feedback.model", "")
	v.SetDefault("ai.feedback.timeout", 120*time.Second) // Longer timeout for full-transcript synthesis
	v.SetDefault("ai.feedback.apiKey", "")
	v.SetDefault("ai.feedback.maxRetries", 2)
	v.SetDefault("ai.feedback.temperature", 0.2) // Low temperature for consistent critique
	v.SetDefault("ai.feedback.useSystemPrompts", true)

	// AI Configuration - Embedding defaults
	v.SetDefault("ai.embedding.provider", "gemini")
	v.SetDefault("ai.embedding.model", "")
	v.SetDefault("ai.embedding.timeout", 30*time.Second)
	v.SetDefault("ai.embedding.apiKey", "")
	v.SetDefault("ai.embedding.maxRetries", 3)
	v.SetDefault("ai.embedding.temperature", 0.0)
	v.SetDefault("ai.embedding.useSystemPrompts", false)

	// Circuit Breaker Configuration defaults for all operations
	v.SetDefault("ai.interview.circuitBreaker.enabled", true)
	v.SetDefault("ai.interview.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.interview.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.interview.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.interview.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.interview.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.feedback.circuitBreaker.enabled", true)
	v.SetDefault("ai.feedback.circuitBreaker.maxRequests", 3)
	v.SetDefault("ai.feedback.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.feedback.circuitBreaker.timeout", 60*time.Second)
	v.SetDefault("ai.feedback.circuitBreaker.minRequests", 3)
	v.SetDefault("ai.feedback.circuitBreaker.failureThreshold", 0.6)

	v.SetDefault("ai.embedding.circuitBreaker.enabled", true)
	v.SetDefault("ai.embedding.circuitBreaker.maxRequests", 5)
	v.SetDefault("ai.embedding.circuitBreaker.interval", 60*time.Second)
	v.SetDefault("ai.embedding.circuitBreaker.timeout", 30*time.Second)
	v.SetDefault("ai.embedding.circuitBreaker.minRequests", 5)
	v.SetDefault("ai.embedding.circuitBreaker.failureThreshold", 0.6)

	// RAG Configuration
	v.SetDefault("rag.chunkSizeWords", 150)
	v.SetDefault("rag.overlapWords", 30)
	v.SetDefault("rag.topKStart", 3)
	v.SetDefault("rag.topKAnswer", 4)
	v.SetDefault("rag.indexTTL", 2*time.Hour)
	v.SetDefault("rag.cleanupInterval", 10*time.Minute)

	// Interview Configuration
	v.SetDefault("interview.sessionTTL", 2*time.Hour)
	v.SetDefault("interview.cleanupInterval", 10*time.Minute)
	v.SetDefault("interview.fallbackSeed", 0)

	// Server Configuration
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 30*time.Second)
	v.SetDefault("server.writeTimeout", 120*time.Second) // Feedback synthesis happens inline on the last turn
	v.SetDefault("server.idleTimeout", 120*time.Second)
	// TLS Configuration defaults
	v.SetDefault("server.tls.mode", "disabled") // disabled, server, mutual
	v.SetDefault("server.tls.certFile", "")
	v.SetDefault("server.tls.keyFile", "")
	v.SetDefault("server.tls.caFile", "")
	v.SetDefault("server.tls.minVersion", "1.2")
	v.SetDefault("server.tls.clientAuthPolicy", "require") // require, request, verify
	// API Authentication defaults
	v.SetDefault("server.apiKeys", []string{})
	// Rate limiting defaults
	v.SetDefault("server.rateLimit.enabled", false)
	v.SetDefault("server.rateLimit.requestsPerMin", 60)
	v.SetDefault("server.rateLimit.burstCapacity", 10)
	v.SetDefault("server.rateLimit.byIP", true)
	v.SetDefault("server.rateLimit.byAPIKey", false)
	v.SetDefault("server.rateLimit.window", time.Minute)

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
	v.SetDefault("vault.secrets.tlsCerts", "")

	// Observability Configuration
	v.SetDefault("observability.enabled", true)
	v.SetDefault("observability.serviceName", "intervu")
	v.SetDefault("observability.serviceVersion", "")  // Will use app version if empty
	v.SetDefault("observability.serviceInstance", "") // Will be auto-generated if empty
	v.SetDefault("observability.consoleOutput", false)
	v.SetDefault("observability.sampleRate", 1.0)

	// Tracing Configuration
	v.SetDefault("observability.tracing.enabled", true)
	v.SetDefault("observability.tracing.sampleRate", 1.0)

	// Metrics Configuration
	v.SetDefault("observability.metrics.enabled", true)
	v.SetDefault("observability.metrics.collectionInterval", 15*time.Second)

	// Custom Metrics Configuration
	v.SetDefault("observability.customMetrics.aiOperations.enabled", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackDuration", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackTokenUsage", true)
	v.SetDefault("observability.customMetrics.aiOperations.trackModelInfo", true)
	v.SetDefault("observability.customMetrics.businessMetrics.enabled", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackSuccessRates", true)
	v.SetDefault("observability.customMetrics.businessMetrics.trackConfidence", true)
	v.SetDefault("observability.customMetrics.infrastructure.enabled", true)
	v.SetDefault("observability.customMetrics.infrastructure.trackRateLimits", true)

	// Console Configuration
	v.SetDefault("observability.console.enabled", false)
	v.SetDefault("observability.console.prettyPrint", true)

	// Prometheus Configuration
	v.SetDefault("observability.prometheus.enabled", true)
	v.SetDefault("observability.prometheus.endpoint", "/metrics")
	v.SetDefault("observability.prometheus.port", "9090")

	// OTLP Configuration
	v.SetDefault("observability.otlp.enabled", false)
	v.SetDefault("observability.otlp.endpoint", "http://localhost:4318")
	v.SetDefault("observability.otlp.insecure", true)
	v.SetDefault("observability.otlp.headers", map[string]string{})

	// Health Check Configuration
	v.SetDefault("observability.healthCheck.timeout", 15*time.Second)
	v.SetDefault("observability.healthCheck.aiModelCheckTimeout", 10*time.Second)
}
