package ai

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"intervu/internal/config"
	"intervu/internal/errors"
)

var testLogger = errors.NewLogger(slog.LevelDebug)

func testServiceConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:         "gemini",
			Model:            "gemini-2.5-flash",
			EmbeddingModel:   "text-embedding-004",
			Timeout:          60 * time.Second,
			APIKey:           "test-api-key",
			MaxRetries:       2,
			Temperature:      0.7,
			UseSystemPrompts: true,
		},
	}
}

func TestNewServiceCreatesPerOperationProviders(t *testing.T) {
	cfg := testServiceConfig()
	cfg.AI.Interview.CircuitBreaker = config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      3,
		Interval:         60 * time.Second,
		Timeout:          60 * time.Second,
		MinRequests:      3,
		FailureThreshold: 0.6,
	}

	service, err := NewService(cfg, nil, testLogger)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	defer service.Close()

	stats := service.GetCircuitBreakerStats()
	for _, op := range []string{"interview", "feedback", "embedding"} {
		if _, ok := stats[op]; !ok {
			t.Errorf("expected circuit breaker stats for operation %q", op)
		}
	}

	// Interview breaker is enabled and scoped to its operation
	interviewStats, ok := stats["interview"].(map[string]any)
	if !ok {
		t.Fatal("interview stats should be a map")
	}
	aiOps, ok := interviewStats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("ai_operations stats should be a map")
	}
	if name, _ := aiOps["name"].(string); name != "AI-interview" {
		t.Errorf("expected circuit breaker name 'AI-interview', got %q", name)
	}
	if healthy, _ := interviewStats["overall_healthy"].(bool); !healthy {
		t.Error("interview provider should be healthy initially")
	}

	// Feedback breaker was not enabled, so it reports disabled
	feedbackStats, ok := stats["feedback"].(map[string]any)
	if !ok {
		t.Fatal("feedback stats should be a map")
	}
	fbOps, ok := feedbackStats["ai_operations"].(map[string]any)
	if !ok {
		t.Fatal("feedback ai_operations stats should be a map")
	}
	if enabled, _ := fbOps["enabled"].(bool); enabled {
		t.Error("feedback circuit breaker should be disabled by default")
	}
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	cfg := testServiceConfig()
	cfg.AI.Provider = "other"

	if _, err := NewService(cfg, nil, testLogger); err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

func TestEmbeddingProviderUsesEmbeddingModel(t *testing.T) {
	cfg := testServiceConfig()

	embeddingCfg := cfg.GetEmbeddingConfig()
	if embeddingCfg.Model != "text-embedding-004" {
		t.Errorf("embedding config model = %q, want the dedicated embedding model", embeddingCfg.Model)
	}
}

// fakeGenerator returns a canned response and records nothing upstream
type fakeGenerator struct {
	text  string
	usage *TokenUsage
	err   error
}

func (f *fakeGenerator) GenerateText(_ context.Context, _, _ string) (string, *TokenUsage, error) {
	return f.text, f.usage, f.err
}

func (f *fakeGenerator) GetModelInfo(_ context.Context) *ModelInfo {
	return &ModelInfo{Name: "fake", Available: true}
}

func (f *fakeGenerator) GetCircuitBreakerStats() map[string]any { return map[string]any{} }

func (f *fakeGenerator) Close() error { return nil }

// recordingUsage captures usage callbacks for assertions
type recordingUsage struct {
	operations []string
	usages     []*TokenUsage
	errs       []error
}

func (r *recordingUsage) RecordAIOperation(_ context.Context, operation string, _ time.Duration, usage *TokenUsage, err error) {
	r.operations = append(r.operations, operation)
	r.usages = append(r.usages, usage)
	r.errs = append(r.errs, err)
}

func TestServiceRecordsTokenUsage(t *testing.T) {
	recorder := &recordingUsage{}
	service := &Service{
		interviewer: &fakeGenerator{
			text:  "What would you improve?",
			usage: &TokenUsage{InputTokens: 120, OutputTokens: 18, TotalTokens: 138},
		},
		feedback: &fakeGenerator{text: "Overall Score: 7/10"},
		usage:    recorder,
		logger:   testLogger,
	}

	text, err := service.InterviewerTurn(context.Background(), "context", "answer")
	if err != nil {
		t.Fatalf("InterviewerTurn() error = %v", err)
	}
	if text != "What would you improve?" {
		t.Errorf("InterviewerTurn() = %q", text)
	}

	if _, err := service.SynthesizeFeedback(context.Background(), "system", "transcript"); err != nil {
		t.Fatalf("SynthesizeFeedback() error = %v", err)
	}

	if len(recorder.operations) != 2 {
		t.Fatalf("expected 2 recorded operations, got %d", len(recorder.operations))
	}
	if recorder.operations[0] != "interviewer_turn" || recorder.operations[1] != "synthesize_feedback" {
		t.Errorf("unexpected recorded operations: %v", recorder.operations)
	}
	if recorder.usages[0] == nil || recorder.usages[0].TotalTokens != 138 {
		t.Error("expected interviewer token usage to be recorded")
	}
	if recorder.usages[1] != nil {
		t.Error("expected nil usage when the provider reports none")
	}
}

func TestServiceRecordsErrors(t *testing.T) {
	recorder := &recordingUsage{}
	service := &Service{
		interviewer: &fakeGenerator{err: fmt.Errorf("model unavailable")},
		usage:       recorder,
		logger:      testLogger,
	}

	if _, err := service.InterviewerTurn(context.Background(), "context", "answer"); err == nil {
		t.Fatal("expected error from failing generator")
	}
	if len(recorder.errs) != 1 || recorder.errs[0] == nil {
		t.Error("expected the failure to be recorded")
	}
}
