package ai

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"intervu/internal/config"
	intervuErrors "intervu/internal/errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider implements Generator and EmbeddingProvider for Google Gemini
type GeminiProvider struct {
	client           *genai.Client
	httpClient       *http.Client
	config           *config.OperationAIConfig
	operation        string
	circuitBreaker   *AICircuitBreaker
	embeddingBreaker *EmbeddingCircuitBreaker
	modelBreaker     *ModelCircuitBreaker
	logger           *intervuErrors.Logger
}

// Ensure GeminiProvider satisfies both provider roles
var (
	_ Generator         = (*GeminiProvider)(nil)
	_ EmbeddingProvider = (*GeminiProvider)(nil)
)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *intervuErrors.Logger) (*GeminiProvider, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, intervuErrors.NewAIError(intervuErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	// Initialize circuit breakers with operation-specific configuration
	circuitBreaker := NewAICircuitBreaker(operationType, cfg, logger)
	embeddingBreaker := NewEmbeddingCircuitBreaker(operationType, cfg, logger)
	modelBreaker := NewModelCircuitBreaker(operationType, cfg, logger)

	return &GeminiProvider{
		client: client,
		httpClient: &http.Client{
			Timeout: *cfg.Timeout,
		},
		config:           cfg,
		operation:        operationType,
		circuitBreaker:   circuitBreaker,
		embeddingBreaker: embeddingBreaker,
		modelBreaker:     modelBreaker,
		logger:           logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	modelInfo := &ModelInfo{
		Name:      g.config.Model,
		Available: false,
	}

	// Create a timeout context for the model check
	timeout := getAIModelCheckTimeout()
	checkCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Get model information from Gemini API with circuit breaker
	model, err := g.modelBreaker.ExecuteModel(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		modelInfo.Error = fmt.Sprintf("Failed to get model info: %v", err)

		// Log the error for debugging
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return modelInfo
	}

	// Model is available, populate info
	modelInfo.Available = true
	if model.DisplayName != "" {
		modelInfo.DisplayName = model.DisplayName
	}
	if model.Version != "" {
		modelInfo.Version = model.Version
	}

	// Log successful check
	g.logger.Debug("Model availability check successful",
		"model", g.config.Model,
		"provider", g.config.Provider,
		"display_name", modelInfo.DisplayName,
		"version", modelInfo.Version)

	return modelInfo
}

// executeWithRetry executes an AI call with retry logic and exponential backoff
func executeWithRetry[T any](g *GeminiProvider, ctx context.Context, operation string, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= *g.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Log retry attempt
			g.logger.Warn("Retrying AI operation",
				"operation", operation,
				"attempt", attempt,
				"max_retries", *g.config.MaxRetries,
				"error", lastErr.Error())

			// Exponential backoff with jitter to prevent thundering herd
			baseDelay := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			// Use crypto/rand for secure random jitter
			jitterMax := big.NewInt(int64(float64(baseDelay) * 0.1))
			jitterBig, _ := rand.Int(rand.Reader, jitterMax)
			jitter := time.Duration(jitterBig.Int64())
			// Cap maximum backoff at 30 seconds
			backoff := min(baseDelay+jitter, 30*time.Second)

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return zero, ctx.Err()
			}
		}

		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation,
					"successful_attempt", attempt+1,
					"total_attempts", attempt+1)
			}
			return result, nil
		}

		lastErr = err

		// Don't retry on certain errors (auth, invalid input, etc.)
		if !g.isRetryableError(err) {
			g.logger.Debug("Error is not retryable, stopping retry attempts",
				"operation", operation,
				"error", err.Error())
			break
		}
	}

	// Log final failure
	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation,
		"total_attempts", *g.config.MaxRetries+1)

	return zero, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, *g.config.MaxRetries, lastErr)
}

// isRetryableError determines if an error should trigger a retry
func (g *GeminiProvider) isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Check for network errors (timeouts, connection issues)
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true // Retry on timeouts
		}
		// Consider other network errors retryable (e.g., connection refused)
		return true
	}

	// Check for Google API errors (HTTP status codes)
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		}
	}

	return false
}

// GenerateText implements Generator. The system prompt carries the full
// interviewer context; the user prompt carries the instruction or the
// candidate's latest answer.
func (g *GeminiProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, *TokenUsage, error) {
	tracer := otel.Tracer("intervu.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+g.operation+".generate")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
		attribute.Int("input.system_length", len(systemPrompt)),
		attribute.Int("input.user_length", len(userPrompt)),
	)

	genaiConfig := &genai.GenerateContentConfig{}
	if *g.config.Temperature > 0 {
		genaiConfig.Temperature = g.config.Temperature
	}

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	} else if systemPrompt != "" {
		// Without system instruction support, fold the context into the user prompt
		userPrompt = systemPrompt + "\n\n" + userPrompt
	}

	result, err := g.circuitBreaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return executeWithRetry(g, ctx, g.operation, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, intervuErrors.NewAIError(intervuErrors.ErrCodeAIServiceFailed,
			"Failed to generate content for "+g.operation, err)
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, intervuErrors.NewAIError(intervuErrors.ErrCodeAIServiceFailed,
			"Empty response from model for "+g.operation, nil)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("output.length", len(text)),
	)
	return text, tokenUsage, nil
}

// EmbedTexts implements EmbeddingProvider using the Gemini embedding endpoint.
// The returned vectors are index-aligned with the input texts.
func (g *GeminiProvider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, *TokenUsage, error) {
	if len(texts) == 0 {
		return nil, nil, nil
	}

	tracer := otel.Tracer("intervu.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+g.operation+".embed")
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Int("input.text_count", len(texts)),
	)

	contents := make([]*genai.Content, len(texts))
	for i, text := range texts {
		contents[i] = genai.NewContentFromText(text, genai.RoleUser)
	}

	result, err := g.embeddingBreaker.ExecuteEmbedding(func() (*genai.EmbedContentResponse, error) {
		return executeWithRetry(g, ctx, g.operation, func() (*genai.EmbedContentResponse, error) {
			return g.client.Models.EmbedContent(ctx, g.config.Model, contents, &genai.EmbedContentConfig{})
		})
	})

	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, intervuErrors.NewAIError(intervuErrors.ErrCodeEmbeddingFailed,
			"Failed to embed texts", err)
	}

	if len(result.Embeddings) != len(texts) {
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, intervuErrors.NewAIError(intervuErrors.ErrCodeEmbeddingFailed,
			fmt.Sprintf("Embedding count mismatch: got %d for %d texts", len(result.Embeddings), len(texts)), nil)
	}

	vectors := make([][]float32, len(result.Embeddings))
	for i, embedding := range result.Embeddings {
		if embedding == nil || len(embedding.Values) == 0 {
			span.SetAttributes(attribute.Bool("success", false))
			return nil, nil, intervuErrors.NewAIError(intervuErrors.ErrCodeEmbeddingFailed,
				fmt.Sprintf("Empty embedding at index %d", i), nil)
		}
		vectors[i] = embedding.Values
	}

	span.SetAttributes(attribute.Bool("success", true))
	return vectors, nil, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	stats := map[string]any{
		"ai_operations":        g.circuitBreaker.GetStats(),
		"embedding_operations": g.embeddingBreaker.GetEmbeddingStats(),
		"model_operations":     g.modelBreaker.GetModelStats(),
	}

	// Overall health - all breakers must be healthy
	aiHealthy := g.circuitBreaker.IsHealthy()
	embeddingHealthy := g.embeddingBreaker.IsEmbeddingHealthy()
	modelHealthy := g.modelBreaker.IsModelHealthy()
	stats["overall_healthy"] = aiHealthy && embeddingHealthy && modelHealthy

	return stats
}

// Close implements Generator and EmbeddingProvider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	// Probably needed in streaming mode
	return nil
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// getAIModelCheckTimeout returns the configured AI model check timeout
func getAIModelCheckTimeout() time.Duration {
	// Use default timeout since we don't have access to config here
	// This function should be refactored to accept timeout as parameter
	// Fallback to default
	return 10 * time.Second
}
