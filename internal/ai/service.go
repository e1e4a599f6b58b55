package ai

import (
	"context"
	"fmt"
	"time"

	"intervu/internal/config"
	"intervu/internal/errors"
	"intervu/internal/interview"
)

// UsageRecorder receives per-call accounting from the AI layer.
// Implementations must tolerate a nil token usage.
type UsageRecorder interface {
	RecordAIOperation(ctx context.Context, operation string, duration time.Duration, usage *TokenUsage, err error)
}

// Service bundles the per-operation AI providers behind the engine-facing API.
// Each operation carries its own model, timeout, retry, and breaker settings.
type Service struct {
	interviewer Generator
	feedback    Generator
	embedder    EmbeddingProvider
	usage       UsageRecorder
	logger      *errors.Logger
}

// Ensure Service satisfies the engine contracts
var (
	_ interview.Provider = (*Service)(nil)
	_ interview.Embedder = (*Service)(nil)
)

// NewService creates an AI service with per-operation providers derived
// from the global configuration. The usage recorder may be nil.
func NewService(cfg *config.Config, usage UsageRecorder, logger *errors.Logger) (*Service, error) {
	interviewCfg := cfg.GetInterviewConfig()
	feedbackCfg := cfg.GetFeedbackConfig()
	embeddingCfg := cfg.GetEmbeddingConfig()

	interviewer, err := newProviderForOperation(&interviewCfg, "interview", logger)
	if err != nil {
		return nil, err
	}

	feedback, err := newProviderForOperation(&feedbackCfg, "feedback", logger)
	if err != nil {
		return nil, err
	}

	embedder, err := newProviderForOperation(&embeddingCfg, "embedding", logger)
	if err != nil {
		return nil, err
	}

	return &Service{
		interviewer: interviewer,
		feedback:    feedback,
		embedder:    embedder,
		usage:       usage,
		logger:      logger,
	}, nil
}

// newProviderForOperation creates a provider instance for a specific operation
func newProviderForOperation(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*GeminiProvider, error) {
	// Debug logging for provider initialization
	logger.Debug("Initializing AI provider",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries,
		"use_system_prompts", *cfg.UseSystemPrompts)

	var provider *GeminiProvider
	var err error

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return provider, nil
}

// InterviewerTurn generates the next interviewer response from the
// assembled context prompt and the candidate's latest message.
func (s *Service) InterviewerTurn(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	start := time.Now()
	text, usage, err := s.interviewer.GenerateText(ctx, systemPrompt, userMessage)
	s.record(ctx, "interviewer_turn", time.Since(start), usage, err)
	return text, err
}

// SynthesizeFeedback generates the end-of-interview feedback summary
func (s *Service) SynthesizeFeedback(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()
	text, usage, err := s.feedback.GenerateText(ctx, systemPrompt, userPrompt)
	s.record(ctx, "synthesize_feedback", time.Since(start), usage, err)
	return text, err
}

// EmbedTexts embeds the given texts, preserving input order
func (s *Service) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vectors, usage, err := s.embedder.EmbedTexts(ctx, texts)
	s.record(ctx, "embed_texts", time.Since(start), usage, err)
	return vectors, err
}

// GetModelInfo returns information about the interviewer model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	return s.interviewer.GetModelInfo(ctx)
}

// GetCircuitBreakerStats returns circuit breaker statistics for all operations
func (s *Service) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"interview": s.interviewer.GetCircuitBreakerStats(),
		"feedback":  s.feedback.GetCircuitBreakerStats(),
		"embedding": s.embedder.GetCircuitBreakerStats(),
	}
}

// Close releases all provider resources
func (s *Service) Close() error {
	if err := s.interviewer.Close(); err != nil {
		return err
	}
	if err := s.feedback.Close(); err != nil {
		return err
	}
	return s.embedder.Close()
}

func (s *Service) record(ctx context.Context, operation string, duration time.Duration, usage *TokenUsage, err error) {
	if s.usage == nil {
		return
	}
	s.usage.RecordAIOperation(ctx, operation, duration, usage, err)
}
