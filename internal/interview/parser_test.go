package interview

import "testing"

func TestParseTwoLine(t *testing.T) {
	tests := []struct {
		name           string
		text           string
		wantEvaluation string
		wantFollowUp   string
	}{
		{
			name: "empty input",
			text: "",
		},
		{
			name: "blank lines only",
			text: "\n   \n\t\n",
		},
		{
			name:         "single line is a follow-up",
			text:         "What database did you use?",
			wantFollowUp: "What database did you use?",
		},
		{
			name:           "clean two lines",
			text:           "Solid answer with concrete detail.\nHow did you handle schema migrations?",
			wantEvaluation: "Solid answer with concrete detail.",
			wantFollowUp:   "How did you handle schema migrations?",
		},
		{
			name:           "blank line between",
			text:           "Good grounding in the JD.\n\nWhat was the peak load?",
			wantEvaluation: "Good grounding in the JD.",
			wantFollowUp:   "What was the peak load?",
		},
		{
			name:           "extra lines pick last question",
			text:           "Reasonable answer.\nSome aside here.\nAnother aside.\nCan you quantify the latency win?",
			wantEvaluation: "Reasonable answer.",
			wantFollowUp:   "Can you quantify the latency win?",
		},
		{
			name:           "question mark mid-line still counts",
			text:           "Decent.\nCould you elaborate? I want specifics.",
			wantEvaluation: "Decent.",
			wantFollowUp:   "Could you elaborate? I want specifics.",
		},
		{
			name:           "no question anywhere falls back to second line",
			text:           "Vague answer.\nPlease give a concrete example.\nClosing remark.",
			wantEvaluation: "Vague answer.",
			wantFollowUp:   "Please give a concrete example.",
		},
		{
			name:           "surrounding whitespace trimmed",
			text:           "  Good.  \n  What next?  ",
			wantEvaluation: "Good.",
			wantFollowUp:   "What next?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			evaluation, followUp := ParseTwoLine(tt.text)
			if evaluation != tt.wantEvaluation {
				t.Errorf("evaluation = %q, want %q", evaluation, tt.wantEvaluation)
			}
			if followUp != tt.wantFollowUp {
				t.Errorf("followUp = %q, want %q", followUp, tt.wantFollowUp)
			}
		})
	}
}

func TestStripOffTopic(t *testing.T) {
	tests := []struct {
		name        string
		evaluation  string
		wantCleaned string
		wantFlag    bool
	}{
		{
			name:        "no marker",
			evaluation:  "Good, specific answer.",
			wantCleaned: "Good, specific answer.",
		},
		{
			name:        "marker at start",
			evaluation:  "[OFFTOPIC] That story is unrelated to the role.",
			wantCleaned: "That story is unrelated to the role.",
			wantFlag:    true,
		},
		{
			name:        "marker with leading whitespace",
			evaluation:  "  [OFFTOPIC] Off the rails.",
			wantCleaned: "Off the rails.",
			wantFlag:    true,
		},
		{
			name:        "marker mid-text is not a flag",
			evaluation:  "The answer mentioned [OFFTOPIC] as a term.",
			wantCleaned: "The answer mentioned [OFFTOPIC] as a term.",
		},
		{
			name:        "empty evaluation",
			evaluation:  "",
			wantCleaned: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleaned, flag := StripOffTopic(tt.evaluation)
			if cleaned != tt.wantCleaned {
				t.Errorf("cleaned = %q, want %q", cleaned, tt.wantCleaned)
			}
			if flag != tt.wantFlag {
				t.Errorf("flag = %v, want %v", flag, tt.wantFlag)
			}
		})
	}
}
