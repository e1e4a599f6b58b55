package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// LoadedPrompts holds the prompt template content currently in effect.
// Templates loaded from files can be swapped at runtime by the prompt
// watcher, so access goes through the accessors below.
type LoadedPrompts struct {
	Interviewer string
	Feedback    string
}

var (
	loadedPrompts   LoadedPrompts
	loadedPromptsMu sync.RWMutex
)

// GetLoadedPrompts returns a copy of the prompt templates currently in effect
func GetLoadedPrompts() LoadedPrompts {
	loadedPromptsMu.RLock()
	defer loadedPromptsMu.RUnlock()
	return loadedPrompts
}

// setLoadedPrompt stores a freshly loaded template under the lock
func setLoadedPrompt(kind, content string) {
	loadedPromptsMu.Lock()
	defer loadedPromptsMu.Unlock()
	switch kind {
	case "interviewer":
		loadedPrompts.Interviewer = content
	case "feedback":
		loadedPrompts.Feedback = content
	}
}

// ResolvePrompt selects the template to use in priority order: content
// loaded from a file, then inline config, then the built-in default.
func ResolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}

// loadPromptsFromFiles loads custom prompt templates from external files
// if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	count := 0

	if c.AI.Prompts.InterviewerFile != "" {
		content, err := c.loadPromptFromFile(c.AI.Prompts.InterviewerFile, "interviewer")
		if err != nil {
			return err
		}
		setLoadedPrompt("interviewer", content)
		count++
	}

	if c.AI.Prompts.FeedbackFile != "" {
		content, err := c.loadPromptFromFile(c.AI.Prompts.FeedbackFile, "feedback")
		if err != nil {
			return err
		}
		setLoadedPrompt("feedback", content)
		count++
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompt files configured - using config values or built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompt templates loaded: %d", count)
	}

	return nil
}

// ReloadPromptFile re-reads a single prompt template file and swaps it
// in. Used by the prompt watcher when a file changes on disk; a reload
// failure keeps the previous template in effect.
func (c *Config) ReloadPromptFile(kind string) error {
	var path string
	switch kind {
	case "interviewer":
		path = c.AI.Prompts.InterviewerFile
	case "feedback":
		path = c.AI.Prompts.FeedbackFile
	default:
		return fmt.Errorf("unknown prompt kind: %s", kind)
	}
	if path == "" {
		return fmt.Errorf("no file configured for %s prompt", kind)
	}

	content, err := c.loadPromptFromFile(path, kind)
	if err != nil {
		return err
	}
	setLoadedPrompt(kind, content)
	return nil
}

// PromptFiles returns the configured prompt template files keyed by kind
func (c *Config) PromptFiles() map[string]string {
	files := make(map[string]string)
	if c.AI.Prompts.InterviewerFile != "" {
		files["interviewer"] = c.AI.Prompts.InterviewerFile
	}
	if c.AI.Prompts.FeedbackFile != "" {
		files["feedback"] = c.AI.Prompts.FeedbackFile
	}
	return files
}

// loadPromptFromFile loads a prompt template from a file with proper
// error handling and logging
func (c *Config) loadPromptFromFile(filePath, kind string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", kind, filePath, err)
	}

	// Check if file exists
	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", kind, absPath)
	}

	// Read file content
	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", kind, absPath, err)
	}

	// Validate content is not empty
	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", kind, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s prompt from file: %s (%d characters)",
		kind, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist and are readable
// before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, kind string) {
		if filePath == "" {
			return // No file specified, skip validation
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s prompt: %s", kind, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s prompt file not found: %s", kind, absPath))
		}
	}

	validateFile(c.AI.Prompts.InterviewerFile, "interviewer")
	validateFile(c.AI.Prompts.FeedbackFile, "feedback")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}
