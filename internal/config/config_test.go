package config

import (
	"strings"
	"testing"
	"time"
)

func validTestConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:       "gemini",
			Model:          "gemini-2.0-flash",
			EmbeddingModel: "gemini-embedding-001",
			Timeout:        60 * time.Second,
			APIKey:         "test-key",
			MaxRetries:     3,
			Temperature:    0.7,
		},
		RAG: RAGConfig{
			ChunkSizeWords:  150,
			OverlapWords:    30,
			TopKStart:       3,
			TopKAnswer:      4,
			IndexTTL:        2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Interview: InterviewConfig{
			SessionTTL:      2 * time.Hour,
			CleanupInterval: 10 * time.Minute,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: "8080",
			TLS:  TLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			LogLevel:         "info",
			DefaultFormat:    "json",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1024 * 1024,
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing API key",
			mutate:  func(c *Config) { c.AI.APIKey = "" },
			wantErr: "AI API key is required",
		},
		{
			name:    "non-positive AI timeout",
			mutate:  func(c *Config) { c.AI.Timeout = 0 },
			wantErr: "AI timeout must be positive",
		},
		{
			name:    "missing server port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "server port is required",
		},
		{
			name:    "non-positive session TTL",
			mutate:  func(c *Config) { c.Interview.SessionTTL = 0 },
			wantErr: "session TTL must be positive",
		},
		{
			name:    "unsupported default format",
			mutate:  func(c *Config) { c.App.DefaultFormat = "xml" },
			wantErr: "invalid default format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validTestConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateRAGConfig(t *testing.T) {
	tests := []struct {
		name    string
		rag     RAGConfig
		wantErr string
	}{
		{
			name: "valid",
			rag:  RAGConfig{ChunkSizeWords: 150, OverlapWords: 30, TopKStart: 3, TopKAnswer: 4, IndexTTL: time.Hour},
		},
		{
			name:    "zero chunk size",
			rag:     RAGConfig{ChunkSizeWords: 0, OverlapWords: 0, TopKStart: 3, TopKAnswer: 4, IndexTTL: time.Hour},
			wantErr: "chunkSizeWords must be positive",
		},
		{
			name:    "negative overlap",
			rag:     RAGConfig{ChunkSizeWords: 150, OverlapWords: -1, TopKStart: 3, TopKAnswer: 4, IndexTTL: time.Hour},
			wantErr: "overlapWords must not be negative",
		},
		{
			name:    "overlap equals chunk size",
			rag:     RAGConfig{ChunkSizeWords: 100, OverlapWords: 100, TopKStart: 3, TopKAnswer: 4, IndexTTL: time.Hour},
			wantErr: "must be smaller than chunkSizeWords",
		},
		{
			name:    "overlap larger than chunk size",
			rag:     RAGConfig{ChunkSizeWords: 50, OverlapWords: 80, TopKStart: 3, TopKAnswer: 4, IndexTTL: time.Hour},
			wantErr: "must be smaller than chunkSizeWords",
		},
		{
			name:    "zero topK",
			rag:     RAGConfig{ChunkSizeWords: 150, OverlapWords: 30, TopKStart: 0, TopKAnswer: 4, IndexTTL: time.Hour},
			wantErr: "topK values must be positive",
		},
		{
			name:    "zero index TTL",
			rag:     RAGConfig{ChunkSizeWords: 150, OverlapWords: 30, TopKStart: 3, TopKAnswer: 4},
			wantErr: "index TTL must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{RAG: tt.rag}
			err := cfg.ValidateRAGConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateRAGConfig() returned unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateRAGConfig() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetOperationConfigsApplyGlobalDefaults(t *testing.T) {
	cfg := validTestConfig()

	interview := cfg.GetInterviewConfig()
	if interview.Provider != "gemini" {
		t.Errorf("interview provider = %q, want %q", interview.Provider, "gemini")
	}
	if interview.Model != "gemini-2.0-flash" {
		t.Errorf("interview model = %q, want %q", interview.Model, "gemini-2.0-flash")
	}
	if interview.APIKey != "test-key" {
		t.Errorf("interview API key = %q, want %q", interview.APIKey, "test-key")
	}
	if interview.Timeout == nil || *interview.Timeout != 60*time.Second {
		t.Errorf("interview timeout = %v, want 60s", interview.Timeout)
	}
	if interview.MaxRetries == nil || *interview.MaxRetries != 3 {
		t.Errorf("interview max retries = %v, want 3", interview.MaxRetries)
	}
}

func TestGetOperationConfigsKeepOverrides(t *testing.T) {
	cfg := validTestConfig()
	override := 5
	cfg.AI.Feedback = OperationAIConfig{
		Model:      "gemini-2.5-pro",
		APIKey:     "feedback-key",
		MaxRetries: &override,
	}

	feedback := cfg.GetFeedbackConfig()
	if feedback.Model != "gemini-2.5-pro" {
		t.Errorf("feedback model = %q, want override to win", feedback.Model)
	}
	if feedback.APIKey != "feedback-key" {
		t.Errorf("feedback API key = %q, want override to win", feedback.APIKey)
	}
	if feedback.MaxRetries == nil || *feedback.MaxRetries != 5 {
		t.Errorf("feedback max retries = %v, want 5", feedback.MaxRetries)
	}
	if feedback.Provider != "gemini" {
		t.Errorf("feedback provider = %q, want global fallback", feedback.Provider)
	}
}

func TestGetEmbeddingConfigFallsBackToEmbeddingModel(t *testing.T) {
	cfg := validTestConfig()

	embedding := cfg.GetEmbeddingConfig()
	if embedding.Model != "gemini-embedding-001" {
		t.Errorf("embedding model = %q, want the dedicated embedding model", embedding.Model)
	}

	cfg.AI.Embedding.Model = "custom-embedder"
	embedding = cfg.GetEmbeddingConfig()
	if embedding.Model != "custom-embedder" {
		t.Errorf("embedding model = %q, want explicit override to win", embedding.Model)
	}
}
