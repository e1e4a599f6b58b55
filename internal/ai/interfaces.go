package ai

import "context"

// Generator produces a single text completion for one operation type.
// Implementations carry their own retry and circuit breaker state.
type Generator interface {
	GenerateText(ctx context.Context, systemPrompt, userPrompt string) (string, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	GetCircuitBreakerStats() map[string]any
	Close() error
}

// EmbeddingProvider turns texts into embedding vectors, preserving input order
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, *TokenUsage, error)
	GetCircuitBreakerStats() map[string]any
	Close() error
}
