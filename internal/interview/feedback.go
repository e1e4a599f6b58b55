package interview

import (
	"strings"

	"intervu/internal/types"
)

// DefaultFeedbackTemplate produces the final structured critique.
// Custom templates loaded from disk must carry the {transcript}
// placeholder.
const DefaultFeedbackTemplate = `You are a senior hiring manager who gives extremely direct, strict, no-sugarcoat feedback. Evaluate the transcript honestly and critically, based ONLY on evidence provided.

Your output MUST follow this exact structure with headings in HTML bold tags:

<b>Overall Score</b>
- Give one strict line with a realistic score. Be blunt.

<b>Strengths</b>
- List 2-4 strengths that the candidate genuinely demonstrated.

<b>Weaknesses</b>
- List 4-6 specific shortcomings. No soft language. No exaggeration.

<b>Actionable Recommendations</b>
- Give 3-5 practical improvement steps.

<b>Communication Skills</b>
- Provide a strict 1-2 line assessment.

<b>Technical Skills</b>
- Provide a strict 1-2 line assessment.

<b>Areas Needing Immediate Improvement (with improved sample answers)</b>
- Rewrite the weakest points with better sample responses.

<b>Final Recommendation</b>
- Choose: Hire / No Hire / Maybe, with a short justification.

STRICT RULES:
- No fluff.
- No praise unless strongly earned.
- No long paragraphs. Use short, sharp statements.
- Do NOT restate the transcript.
- Output strictly in the structured format above.

Transcript:
{transcript}

Now generate the evaluation using the exact HTML-bold structure above.
`

// FeedbackSystemPrompt frames the feedback generation call
const FeedbackSystemPrompt = "You summarize interview transcripts and produce concise feedback."

// FeedbackUnavailable is returned when feedback generation fails.
// The session still ends; the candidate can retry the fetch later.
const FeedbackUnavailable = "Feedback generation failed. Try again later."

// FeedbackPlaceholder is returned when feedback is fetched before it
// has been generated.
const FeedbackPlaceholder = "Generating... Please check back."

// BuildFeedbackPrompt renders the feedback prompt for a session's
// full transcript.
func BuildFeedbackPrompt(template string, history []types.Turn) string {
	return strings.Replace(template, "{transcript}", BuildTranscript(history), 1)
}
