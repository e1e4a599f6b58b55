package interview

import (
	"strconv"
	"strings"
)

// Named mode tiers and their question budgets. The UI sends modes as
// "Name|N" strings; a recognized tier name wins over the embedded
// number, an unrecognized name falls back to the number.
const (
	QuickModeQuestions    = 6
	DetailedModeQuestions = 12
	LongModeQuestions     = 20
	DefaultModeQuestions  = 12
)

// MaxQuestions resolves a mode string to its question budget
func MaxQuestions(mode string) int {
	if mode == "" {
		return DefaultModeQuestions
	}
	switch {
	case strings.Contains(mode, "Quick"):
		return QuickModeQuestions
	case strings.Contains(mode, "Detailed"):
		return DetailedModeQuestions
	case strings.Contains(mode, "Long"):
		return LongModeQuestions
	}
	if parts := strings.Split(mode, "|"); len(parts) > 1 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil {
			return n
		}
	}
	return DefaultModeQuestions
}
