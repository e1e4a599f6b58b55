package interview

import (
	"strings"

	"intervu/internal/types"
)

// BuildTranscript renders a session history as plain text, one
// "(Speaker): text" line per turn.
func BuildTranscript(history []types.Turn) string {
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, "("+string(turn.Speaker)+"): "+strings.TrimSpace(turn.Text))
	}
	return strings.Join(lines, "\n")
}
