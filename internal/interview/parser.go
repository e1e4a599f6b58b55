package interview

import "strings"

// OffTopicMarker is the token the model prefixes to its evaluation when
// the candidate's answer is unrelated to the job description.
const OffTopicMarker = "[OFFTOPIC]"

// ParseTwoLine decodes the model's two-line interviewer output into an
// evaluation and a follow-up question. The parse is permissive: blank
// lines are dropped, a single line is treated as a follow-up with no
// evaluation, and with more than two lines the follow-up is the last
// line after the first that contains a question mark (the second line
// when none does). Empty input yields two empty strings.
func ParseTwoLine(text string) (evaluation, followUp string) {
	var lines []string
	for _, ln := range strings.Split(strings.TrimSpace(text), "\n") {
		if trimmed := strings.TrimSpace(ln); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	if len(lines) == 0 {
		return "", ""
	}
	if len(lines) == 1 {
		return "", lines[0]
	}

	evaluation = lines[0]
	for i := len(lines) - 1; i >= 1; i-- {
		if strings.Contains(lines[i], "?") {
			return evaluation, lines[i]
		}
	}
	return evaluation, lines[1]
}

// StripOffTopic detects the off-topic marker at the start of an
// evaluation, returning the cleaned text and whether the marker was
// present. All marker occurrences are removed from the cleaned text.
func StripOffTopic(evaluation string) (string, bool) {
	if !strings.HasPrefix(strings.TrimSpace(evaluation), OffTopicMarker) {
		return evaluation, false
	}
	return strings.TrimSpace(strings.ReplaceAll(evaluation, OffTopicMarker, "")), true
}
