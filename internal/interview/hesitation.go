package interview

import (
	"regexp"
	"strings"
)

// Filler and hedge tokens that suggest the speaker is unsure. These are
// tuned for speech-to-text output, where trailing "5..." style numerals
// mark trailing-off mid-sentence.
var hesitationPattern = regexp.MustCompile(`(?i)\bum\b|\buh\b|\bumm?\b|\bwell\b|\bmaybe\b|\bi think\b|\bnot sure\b|\bkind of\b|\bsort of\b|\bi guess\b|\bperhaps\b|\b\d+\.\.\.\b`)

// DetectHesitation reports whether transcribed text shows hesitation.
// Empty or whitespace-only text counts as hesitation: silence carries
// no confidence either.
func DetectHesitation(text string) bool {
	if strings.TrimSpace(text) == "" {
		return true
	}
	return hesitationPattern.MatchString(text)
}
