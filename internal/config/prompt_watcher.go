package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"intervu/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// PromptReloadRecorder receives a metric for every reload attempt
type PromptReloadRecorder interface {
	RecordPromptReload(ctx context.Context, kind string, success bool)
}

// PromptWatcher watches prompt template files for changes and reloads
// them at runtime, so operators can tune the interviewer or feedback
// templates without restarting the service.
type PromptWatcher struct {
	mu sync.RWMutex

	config *Config

	// kind -> file path being watched
	files map[string]string

	// File metadata
	lastModTime map[string]time.Time

	// Watcher components
	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	// Control channels
	stopChan   chan struct{}
	reloadChan chan struct{}

	logger   *errors.Logger
	recorder PromptReloadRecorder

	running bool
}

// SetReloadRecorder installs a metrics sink for reload attempts.
// Must be called before Start.
func (pw *PromptWatcher) SetReloadRecorder(r PromptReloadRecorder) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	pw.recorder = r
}

// NewPromptWatcher creates a watcher over the configured prompt template
// files. Returns nil when no prompt files are configured.
func NewPromptWatcher(cfg *Config, debounceDelay time.Duration, logger *errors.Logger) *PromptWatcher {
	files := cfg.PromptFiles()
	if len(files) == 0 {
		return nil
	}

	if debounceDelay == 0 {
		debounceDelay = time.Second // Default 1 second debounce
	}

	return &PromptWatcher{
		config:        cfg,
		files:         files,
		lastModTime:   make(map[string]time.Time),
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1), // Buffered to prevent blocking
		logger:        logger,
	}
}

// Start begins watching prompt template files for changes
func (pw *PromptWatcher) Start() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if pw.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	pw.fsWatcher = watcher

	pw.updateModTimes()

	for kind, file := range pw.files {
		if err := pw.addFileToWatcher(file); err != nil && pw.logger != nil {
			pw.logger.Warn("Failed to watch prompt file", "kind", kind, "file", file, "error", err)
		}
	}

	pw.running = true
	go pw.watchLoop()

	if pw.logger != nil {
		pw.logger.Info("Prompt template watcher started",
			"files", pw.WatchedFiles(),
			"debounce_delay", pw.debounceDelay)
	}
	return nil
}

// Stop stops the prompt template watcher
func (pw *PromptWatcher) Stop() error {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	if !pw.running {
		return nil
	}

	close(pw.stopChan)

	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	if pw.fsWatcher != nil {
		if err := pw.fsWatcher.Close(); err != nil {
			if pw.logger != nil {
				pw.logger.LogError(err, "Failed to close file system watcher")
			}
			return err
		}
	}

	pw.running = false

	if pw.logger != nil {
		pw.logger.Info("Prompt template watcher stopped")
	}

	return nil
}

// addFileToWatcher adds a file and its directory to the file system watcher
func (pw *PromptWatcher) addFileToWatcher(file string) error {
	// Watch the file itself
	if err := pw.fsWatcher.Add(file); err != nil {
		// If the file doesn't exist, watch its directory instead
		if os.IsNotExist(err) {
			dir := filepath.Dir(file)
			if err := pw.fsWatcher.Add(dir); err != nil {
				return fmt.Errorf("failed to watch directory %s: %w", dir, err)
			}
			if pw.logger != nil {
				pw.logger.Info("Watching directory for prompt file",
					"file", file, "directory", dir)
			}
		} else {
			return fmt.Errorf("failed to watch file %s: %w", file, err)
		}
	}

	// Also watch the directory to catch atomic writes (rename operations)
	dir := filepath.Dir(file)
	if err := pw.fsWatcher.Add(dir); err != nil {
		if pw.logger != nil {
			pw.logger.Warn("Failed to watch directory for atomic writes",
				"directory", dir, "error", err)
		}
	}

	return nil
}

// updateModTimes records the current modification times of all watched files
func (pw *PromptWatcher) updateModTimes() {
	for _, file := range pw.files {
		if stat, err := os.Stat(file); err == nil {
			pw.lastModTime[file] = stat.ModTime()
		}
	}
}

// hasFileChanged checks if a file has been modified since last check
func (pw *PromptWatcher) hasFileChanged(file string) bool {
	stat, err := os.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			// File was deleted
			if _, exists := pw.lastModTime[file]; exists {
				delete(pw.lastModTime, file)
				return true
			}
		}
		return false
	}

	lastMod, exists := pw.lastModTime[file]
	if !exists || stat.ModTime().After(lastMod) {
		pw.lastModTime[file] = stat.ModTime()
		return true
	}

	return false
}

// watchLoop is the main event loop for file watching
func (pw *PromptWatcher) watchLoop() {
	for {
		select {
		case event, ok := <-pw.fsWatcher.Events:
			if !ok {
				return
			}

			if pw.shouldProcessEvent(event) {
				pw.scheduleReload()
			}

		case err, ok := <-pw.fsWatcher.Errors:
			if !ok {
				return
			}
			if pw.logger != nil {
				pw.logger.LogError(err, "Prompt file watcher error")
			}

		case <-pw.reloadChan:
			// Debounced reload trigger
			pw.reloadChangedPrompts()

		case <-pw.stopChan:
			return
		}
	}
}

// reloadChangedPrompts reloads every watched template whose file changed.
// A failed reload keeps the previous template and logs the failure.
func (pw *PromptWatcher) reloadChangedPrompts() {
	for kind, file := range pw.files {
		if !pw.hasFileChanged(file) {
			continue
		}
		err := pw.config.ReloadPromptFile(kind)
		if pw.recorder != nil {
			pw.recorder.RecordPromptReload(context.Background(), kind, err == nil)
		}
		if err != nil {
			if pw.logger != nil {
				pw.logger.LogError(err, "Prompt template reload failed, keeping previous template",
					"kind", kind, "file", file)
			}
			continue
		}
		if pw.logger != nil {
			pw.logger.Info("Prompt template reloaded", "kind", kind, "file", file)
		}
	}
}

// shouldProcessEvent determines if a file system event should trigger a reload check
func (pw *PromptWatcher) shouldProcessEvent(event fsnotify.Event) bool {
	isWatchedFile := false
	for _, file := range pw.files {
		if event.Name == file || filepath.Base(event.Name) == filepath.Base(file) {
			isWatchedFile = true
			break
		}
	}

	if !isWatchedFile {
		return false
	}

	// Process write, create, and rename events
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload schedules a debounced reload
func (pw *PromptWatcher) scheduleReload() {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	// Reset the debounce timer
	if pw.debounceTimer != nil {
		pw.debounceTimer.Stop()
	}

	pw.debounceTimer = time.AfterFunc(pw.debounceDelay, func() {
		select {
		case pw.reloadChan <- struct{}{}:
			// Reload scheduled
		default:
			// Channel is full, reload already scheduled
		}
	})
}

// IsRunning returns whether the watcher is currently running
func (pw *PromptWatcher) IsRunning() bool {
	pw.mu.RLock()
	defer pw.mu.RUnlock()
	return pw.running
}

// WatchedFiles returns the list of files being watched
func (pw *PromptWatcher) WatchedFiles() []string {
	files := make([]string, 0, len(pw.files))
	for _, file := range pw.files {
		files = append(files, file)
	}
	return files
}
