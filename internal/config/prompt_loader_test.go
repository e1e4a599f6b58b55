package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPromptsFromFiles(t *testing.T) {
	tempDir := t.TempDir()

	interviewerContent := "Custom interviewer template with {jd_context} and {history}"
	feedbackContent := "Custom feedback template with {transcript}"

	interviewerFile := filepath.Join(tempDir, "interviewer.md")
	feedbackFile := filepath.Join(tempDir, "feedback.md")

	if err := os.WriteFile(interviewerFile, []byte(interviewerContent), 0600); err != nil {
		t.Fatalf("Failed to create interviewer prompt file: %v", err)
	}
	if err := os.WriteFile(feedbackFile, []byte(feedbackContent), 0600); err != nil {
		t.Fatalf("Failed to create feedback prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Prompts: PromptConfig{
				InterviewerFile: interviewerFile,
				FeedbackFile:    feedbackFile,
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	loaded := GetLoadedPrompts()
	if loaded.Interviewer != interviewerContent {
		t.Errorf("Expected loaded interviewer template %q, got %q", interviewerContent, loaded.Interviewer)
	}
	if loaded.Feedback != feedbackContent {
		t.Errorf("Expected loaded feedback template %q, got %q", feedbackContent, loaded.Feedback)
	}

	// File paths stay in the config so the watcher can re-read them
	if config.AI.Prompts.InterviewerFile != interviewerFile {
		t.Error("Expected interviewer prompt file path to be preserved")
	}
	if config.AI.Prompts.FeedbackFile != feedbackFile {
		t.Error("Expected feedback prompt file path to be preserved")
	}
}

func TestValidatePromptFiles(t *testing.T) {
	tempDir := t.TempDir()

	validFile := filepath.Join(tempDir, "valid.md")
	if err := os.WriteFile(validFile, []byte("Valid content"), 0600); err != nil {
		t.Fatalf("Failed to create valid test file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Prompts: PromptConfig{
				InterviewerFile: validFile,
			},
		},
	}

	if err := config.validatePromptFiles(); err != nil {
		t.Errorf("Expected validation to pass for valid file, got error: %v", err)
	}

	config.AI.Prompts.InterviewerFile = filepath.Join(tempDir, "nonexistent.md")

	if err := config.validatePromptFiles(); err == nil {
		t.Error("Expected validation to fail for non-existent file")
	}
}

func TestLoadPromptFromFile(t *testing.T) {
	tempDir := t.TempDir()

	content := "Test prompt content"
	testFile := filepath.Join(tempDir, "test.md")
	if err := os.WriteFile(testFile, []byte(content), 0600); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	config := &Config{}
	loadedContent, err := config.loadPromptFromFile(testFile, "interviewer")
	if err != nil {
		t.Fatalf("Failed to load prompt from file: %v", err)
	}
	if loadedContent != content {
		t.Errorf("Expected content %q, got %q", content, loadedContent)
	}

	emptyFile := filepath.Join(tempDir, "empty.md")
	if err := os.WriteFile(emptyFile, []byte("   \n"), 0600); err != nil {
		t.Fatalf("Failed to create empty test file: %v", err)
	}

	if _, err := config.loadPromptFromFile(emptyFile, "interviewer"); err == nil {
		t.Error("Expected error for empty file")
	}

	if _, err := config.loadPromptFromFile(filepath.Join(tempDir, "nonexistent.md"), "interviewer"); err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestReloadPromptFile(t *testing.T) {
	tempDir := t.TempDir()

	feedbackFile := filepath.Join(tempDir, "feedback.md")
	if err := os.WriteFile(feedbackFile, []byte("Original template {transcript}"), 0600); err != nil {
		t.Fatalf("Failed to create feedback prompt file: %v", err)
	}

	config := &Config{
		AI: AIConfig{
			Prompts: PromptConfig{
				FeedbackFile: feedbackFile,
			},
		},
	}

	if err := config.loadPromptsFromFiles(); err != nil {
		t.Fatalf("Failed to load prompts from files: %v", err)
	}

	updated := "Updated template {transcript}"
	if err := os.WriteFile(feedbackFile, []byte(updated), 0600); err != nil {
		t.Fatalf("Failed to update feedback prompt file: %v", err)
	}

	if err := config.ReloadPromptFile("feedback"); err != nil {
		t.Fatalf("Failed to reload feedback prompt: %v", err)
	}

	if got := GetLoadedPrompts().Feedback; got != updated {
		t.Errorf("Expected reloaded feedback template %q, got %q", updated, got)
	}

	if err := config.ReloadPromptFile("unknown"); err == nil {
		t.Error("Expected error for unknown prompt kind")
	}

	if err := config.ReloadPromptFile("interviewer"); err == nil {
		t.Error("Expected error when no file is configured for the kind")
	}

	// A failed reload keeps the previous template
	if err := os.Remove(feedbackFile); err != nil {
		t.Fatalf("Failed to remove feedback prompt file: %v", err)
	}
	if err := config.ReloadPromptFile("feedback"); err == nil {
		t.Error("Expected error when the prompt file was removed")
	}
	if got := GetLoadedPrompts().Feedback; got != updated {
		t.Errorf("Expected previous feedback template to remain, got %q", got)
	}
}

func TestResolvePrompt(t *testing.T) {
	tests := []struct {
		name       string
		fromFile   string
		fromConfig string
		def        string
		expected   string
	}{
		{"file wins", "file", "config", "default", "file"},
		{"config when no file", "", "config", "default", "config"},
		{"default when nothing set", "", "", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolvePrompt(tt.fromFile, tt.fromConfig, tt.def); got != tt.expected {
				t.Errorf("ResolvePrompt() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestPromptFiles(t *testing.T) {
	config := &Config{
		AI: AIConfig{
			Prompts: PromptConfig{
				InterviewerFile: "/etc/intervu/interviewer.md",
			},
		},
	}

	files := config.PromptFiles()
	if len(files) != 1 {
		t.Fatalf("Expected 1 watched file, got %d", len(files))
	}
	if files["interviewer"] != "/etc/intervu/interviewer.md" {
		t.Errorf("Unexpected interviewer file path: %q", files["interviewer"])
	}
}
