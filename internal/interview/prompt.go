package interview

import (
	"fmt"
	"strings"
)

// DefaultInterviewerTemplate drives every interviewer turn. Custom
// templates loaded from disk must carry the same placeholders.
const DefaultInterviewerTemplate = `You are a natural, human-like interviewer. Use the provided Job Description context EXACTLY
to generate questions and brief evaluations tailored to the role.

Job Description (relevant excerpts):
{jd_context}

Interview instructions (MUST follow exactly):
- OUTPUT MUST BE EXACTLY 2 LINES:
  Line 1: Short evaluation (1-2 sentences). If the candidate's answer is unrelated to the JD context, prefix Line 1 with the token: [OFFTOPIC]
  Line 2: EXACTLY ONE follow-up question (one sentence) that is directly tied to the candidate's last answer and the JD context.

- If HESITATION_FLAG is true: The evaluation should briefly acknowledge hesitation (one short sentence),
  and the follow-up should encourage clarity and ask for a specific detail.

- If the candidate drifted into a long side-story, acknowledge it politely and then redirect (do not cut them off).
- NEVER provide sample answers.
- Keep all responses concise, natural, and interview-like.

Interview History:
{history}

Now produce only the two-line interviewer response.
`

// StartInstruction is the user message that requests the opening question
const StartInstruction = "START INTERVIEW. Provide ONLY a single, concise interview question (one sentence) tailored to the JD context above."

// Sentinels substituted when a prompt section has no content
const (
	noJDContext    = "(no JD context available)"
	noPriorContext = "(no prior context)"
)

// PromptParams carries everything the interviewer prompt needs for one turn
type PromptParams struct {
	Role         string
	Level        string
	Focus        string
	Mode         string
	JDChunks     []string
	History      string
	LastUserText string
}

// BuildInterviewerPrompt renders the interviewer system prompt from a
// template and returns it along with the hesitation flag computed from
// the candidate's last answer. Missing role and level fall back to a
// generic engineering profile so the model always has a persona.
func BuildInterviewerPrompt(template string, p PromptParams) (string, bool) {
	jdContext := noJDContext
	if len(p.JDChunks) > 0 {
		jdContext = strings.Join(p.JDChunks, "\n\n")
	}
	history := p.History
	if history == "" {
		history = noPriorContext
	}
	hesitation := DetectHesitation(p.LastUserText)

	role := p.Role
	if role == "" {
		role = "Software Engineer"
	}
	level := p.Level
	if level == "" {
		level = "Mid-level"
	}

	prompt := strings.NewReplacer(
		"{jd_context}", jdContext,
		"{history}", history,
	).Replace(template)

	prompt += fmt.Sprintf("\nHESITATION_FLAG: %t\nROLE: %s (%s)\nFOCUS: %s\nMODE: %s\n",
		hesitation, role, level, p.Focus, p.Mode)

	return prompt, hesitation
}
