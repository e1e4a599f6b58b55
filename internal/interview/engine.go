package interview

import (
	"context"
	"os"
	"strings"

	"intervu/internal/config"
	"intervu/internal/errors"
	"intervu/internal/rag"
	"intervu/internal/types"

	"github.com/google/uuid"
)

// Provider generates interviewer turns and feedback summaries
type Provider interface {
	InterviewerTurn(ctx context.Context, systemPrompt, userMessage string) (string, error)
	SynthesizeFeedback(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// startRetrievalQuery seeds retrieval for the opening question, before
// any candidate answer exists to query with.
const startRetrievalQuery = "initial question generation"

// degradedEvaluation stands in for the evaluation line when the model
// call fails mid-interview.
const degradedEvaluation = "Short evaluation not available due to model error."

// Engine orchestrates interview sessions: JD indexing, retrieval,
// interviewer turns, confidence scoring, and feedback synthesis.
type Engine struct {
	cfg      *config.Config
	provider Provider
	embedder Embedder
	scorer   *Scorer
	chunker  *rag.Chunker
	indexes  *rag.Store
	sessions *SessionStore
	picker   *FallbackPicker
	player   Player
	metrics  Metrics
	logger   *errors.Logger
}

// NewEngine creates an interview engine. A nil player or metrics sink
// falls back to the no-op implementation.
func NewEngine(cfg *config.Config, provider Provider, embedder Embedder, player Player, metrics Metrics, logger *errors.Logger) (*Engine, error) {
	chunker, err := rag.NewChunker(cfg.RAG.ChunkSizeWords, cfg.RAG.OverlapWords)
	if err != nil {
		return nil, err
	}
	if player == nil {
		player = NoopPlayer{}
	}
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	picker := NewFallbackPicker()
	if cfg.Interview.FallbackSeed != 0 {
		picker = NewSeededFallbackPicker(cfg.Interview.FallbackSeed)
	}

	return &Engine{
		cfg:      cfg,
		provider: provider,
		embedder: embedder,
		scorer:   NewScorer(embedder),
		chunker:  chunker,
		indexes:  rag.NewStore(cfg.RAG.IndexTTL, cfg.RAG.CleanupInterval),
		sessions: NewSessionStore(cfg.Interview.SessionTTL, cfg.Interview.CleanupInterval),
		picker:   picker,
		player:   player,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Start creates a session, indexes the job description, and asks the
// model for the opening question. A model failure here is a hard error;
// there is no interview without a first question.
func (e *Engine) Start(ctx context.Context, input types.StartInterviewInput) (*types.StartInterviewOutput, error) {
	sessionID := uuid.New().String()

	jdText := resolveJDText(input.JobDescription)
	idx := e.buildIndex(ctx, sessionID, jdText)
	e.indexes.Put(sessionID, idx)

	jdChunks := e.retrieve(ctx, idx, startRetrievalQuery, e.cfg.RAG.TopKStart)

	prompt, _ := BuildInterviewerPrompt(e.interviewerTemplate(), PromptParams{
		Role:     input.Role,
		Level:    input.Level,
		Focus:    input.Focus,
		Mode:     input.Mode,
		JDChunks: jdChunks,
	})

	raw, err := e.provider.InterviewerTurn(ctx, prompt, StartInstruction)
	if err != nil {
		e.indexes.Delete(sessionID)
		return nil, errors.NewAIError(
			errors.ErrCodeInterviewFailed,
			"failed to generate the opening question",
			err,
		).WithContext("session_id", sessionID)
	}
	firstQuestion := strings.TrimSpace(raw)

	sess := NewSession(sessionID, input)
	sess.appendTurn(types.SpeakerInterviewer, firstQuestion)
	sess.QuestionsAsked = 1
	sess.CurrentQuestion = firstQuestion
	e.sessions.Put(sess)

	e.metrics.InterviewStarted(ctx)
	e.metrics.SessionsChanged(ctx, 1)
	go e.player.Speak(firstQuestion)

	e.logger.Info("Interview started",
		"session_id", sessionID,
		"role", input.Role,
		"mode", input.Mode,
		"max_questions", sess.MaxQuestions,
		"jd_chunks", idx.Len())

	return &types.StartInterviewOutput{
		SessionID:     sessionID,
		FirstQuestion: firstQuestion,
		Status:        sess.Status,
		QuestionCount: sess.QuestionsAsked,
	}, nil
}

// SubmitAnswer processes one candidate answer: retrieve JD context,
// generate the two-line evaluation and follow-up, score confidence, and
// advance the session. An off-topic answer does not consume budget.
// When the budget is reached the session finishes and feedback is
// synthesized before returning.
func (e *Engine) SubmitAnswer(ctx context.Context, input types.SubmitAnswerInput) (*types.SubmitAnswerOutput, error) {
	sess, ok := e.sessions.Get(input.SessionID)
	if !ok {
		return nil, errors.NewNotFoundError(
			errors.ErrCodeSessionNotFound,
			"interview session not found",
			nil,
		).WithContext("session_id", input.SessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Finished sessions answer with the feedback payload
	if sess.finished() {
		fb := FeedbackPlaceholder
		if sess.Feedback != nil {
			fb = *sess.Feedback
		}
		return &types.SubmitAnswerOutput{
			QuestionCount: sess.QuestionsAsked,
			FeedbackReady: true,
			Feedback:      &fb,
		}, nil
	}

	userText := strings.TrimSpace(input.Text)
	if userText == "" {
		// Nothing heard: ask for a repeat without consuming budget or
		// touching the transcript
		current := sess.CurrentQuestion
		return &types.SubmitAnswerOutput{
			FollowUpQuestion: RepetitionRequest,
			NewQuestion:      &current,
			QuestionCount:    sess.QuestionsAsked,
			Hesitation:       true,
		}, nil
	}

	sess.appendTurn(types.SpeakerUser, userText)

	idx, _ := e.indexes.Get(sess.ID)
	jdChunks := e.retrieve(ctx, idx, userText, e.cfg.RAG.TopKAnswer)

	prompt, hesitation := BuildInterviewerPrompt(e.interviewerTemplate(), PromptParams{
		Role:         sess.Role,
		Level:        sess.Level,
		Focus:        sess.Focus,
		Mode:         sess.Mode,
		JDChunks:     jdChunks,
		History:      BuildTranscript(sess.History),
		LastUserText: userText,
	})

	fullResponse, err := e.provider.InterviewerTurn(ctx, prompt, userText)
	if err != nil {
		// Degrade to a stock follow-up; the interview keeps moving
		e.logger.LogError(err, "Interviewer turn failed, using fallback follow-up", "session_id", sess.ID)
		fullResponse = degradedEvaluation + "\n" + e.picker.Pick()
	}

	evaluation, followUp := ParseTwoLine(fullResponse)
	evaluation, offTopic := StripOffTopic(evaluation)
	confidence := e.scorer.Score(ctx, userText, jdChunks)

	sess.appendTurn(types.SpeakerInterviewer, fullResponse)
	if !offTopic {
		sess.QuestionsAsked++
	}
	sess.CurrentQuestion = followUp
	e.sessions.Put(sess)

	e.metrics.TurnProcessed(ctx, confidence, offTopic, hesitation)

	out := &types.SubmitAnswerOutput{
		UserText:         userText,
		Evaluation:       evaluation,
		FullResponse:     fullResponse,
		FollowUpQuestion: followUp,
		QuestionCount:    sess.QuestionsAsked,
		Confidence:       confidence,
		OffTopic:         offTopic,
		Hesitation:       hesitation,
	}

	if sess.QuestionsAsked >= sess.MaxQuestions {
		sess.Status = types.StatusFinished
		feedback := e.generateFeedback(ctx, sess)
		sess.Feedback = &feedback
		e.sessions.Put(sess)

		e.metrics.InterviewCompleted(ctx, sess.QuestionsAsked)
		e.metrics.SessionsChanged(ctx, -1)

		e.logger.Info("Interview finished at question budget",
			"session_id", sess.ID,
			"questions_asked", sess.QuestionsAsked)

		out.FeedbackReady = true
		out.Feedback = &feedback
		return out, nil
	}

	newQuestion := followUp
	out.NewQuestion = &newQuestion
	if followUp != "" {
		go e.player.Speak(followUp)
	}
	return out, nil
}

// End finishes a session and synthesizes feedback. Ending a session
// whose feedback already exists is idempotent.
func (e *Engine) End(ctx context.Context, sessionID string) (*types.EndInterviewOutput, error) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, errors.NewNotFoundError(
			errors.ErrCodeSessionNotFound,
			"interview session not found",
			nil,
		).WithContext("session_id", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.finished() && sess.Feedback != nil {
		return &types.EndInterviewOutput{Status: sess.Status, Feedback: *sess.Feedback}, nil
	}

	alreadyFinished := sess.finished()
	sess.Status = types.StatusFinished
	feedback := e.generateFeedback(ctx, sess)
	sess.Feedback = &feedback
	e.sessions.Put(sess)

	if !alreadyFinished {
		e.metrics.InterviewCompleted(ctx, sess.QuestionsAsked)
		e.metrics.SessionsChanged(ctx, -1)
	}

	e.logger.Info("Interview ended", "session_id", sessionID, "questions_asked", sess.QuestionsAsked)

	return &types.EndInterviewOutput{Status: sess.Status, Feedback: feedback}, nil
}

// Feedback fetches a session's feedback, or a placeholder when it has
// not been generated yet.
func (e *Engine) Feedback(sessionID string) (*types.FeedbackOutput, error) {
	sess, ok := e.sessions.Get(sessionID)
	if !ok {
		return nil, errors.NewNotFoundError(
			errors.ErrCodeSessionNotFound,
			"interview session not found",
			nil,
		).WithContext("session_id", sessionID)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.Feedback == nil {
		return &types.FeedbackOutput{Feedback: FeedbackPlaceholder, Ready: false}, nil
	}
	return &types.FeedbackOutput{Feedback: *sess.Feedback, Ready: true}, nil
}

// Stats reports live session and index counts
type Stats struct {
	Sessions int `json:"sessions"`
	Indexes  int `json:"indexes"`
}

// Stats returns current store sizes for the stats endpoint
func (e *Engine) Stats() Stats {
	return Stats{Sessions: e.sessions.Count(), Indexes: e.indexes.Count()}
}

// generateFeedback synthesizes the final critique from the transcript.
// Failures return a fixed message instead of erroring; the session
// still ends. Callers must hold the session lock.
func (e *Engine) generateFeedback(ctx context.Context, sess *Session) string {
	prompt := BuildFeedbackPrompt(e.feedbackTemplate(), sess.History)
	raw, err := e.provider.SynthesizeFeedback(ctx, FeedbackSystemPrompt, prompt)
	if err != nil {
		e.logger.LogError(err, "Feedback generation failed", "session_id", sess.ID)
		e.metrics.FeedbackGenerated(ctx, false)
		return FeedbackUnavailable
	}
	e.metrics.FeedbackGenerated(ctx, true)
	return strings.TrimSpace(raw)
}

// buildIndex chunks and embeds a job description. Any failure degrades
// to an empty index; the interview proceeds without JD grounding.
func (e *Engine) buildIndex(ctx context.Context, sessionID, jdText string) *rag.Index {
	empty, _ := rag.NewIndex(nil, nil)

	chunks := e.chunker.Split(jdText)
	if len(chunks) == 0 {
		return empty
	}

	vectors, err := e.embedder.EmbedTexts(ctx, chunks)
	if err != nil {
		e.logger.LogError(err, "JD embedding failed, continuing without retrieval", "session_id", sessionID)
		return empty
	}

	idx, err := rag.NewIndex(chunks, vectors)
	if err != nil {
		e.logger.LogError(err, "JD index build failed, continuing without retrieval", "session_id", sessionID)
		return empty
	}
	return idx
}

// retrieve embeds a query and returns the k nearest JD chunks. Returns
// nil when the index is empty or the query embedding fails.
func (e *Engine) retrieve(ctx context.Context, idx *rag.Index, query string, k int) []string {
	if idx == nil || idx.Len() == 0 {
		return nil
	}
	vectors, err := e.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		return nil
	}
	return idx.Search(vectors[0], k)
}

// interviewerTemplate resolves the interviewer template in effect,
// honoring hot-reloaded files over inline config over the default.
func (e *Engine) interviewerTemplate() string {
	return config.ResolvePrompt(config.GetLoadedPrompts().Interviewer, e.cfg.AI.Prompts.Interviewer, DefaultInterviewerTemplate)
}

func (e *Engine) feedbackTemplate() string {
	return config.ResolvePrompt(config.GetLoadedPrompts().Feedback, e.cfg.AI.Prompts.Feedback, DefaultFeedbackTemplate)
}

// resolveJDText treats an input that names a readable file as a file
// path and returns its content; anything else is taken as the JD text
// itself. Unreadable files degrade to no JD.
func resolveJDText(jd string) string {
	jd = strings.TrimSpace(jd)
	if jd == "" {
		return ""
	}
	if info, err := os.Stat(jd); err == nil && info.Mode().IsRegular() {
		content, err := os.ReadFile(jd)
		if err != nil {
			return ""
		}
		return string(content)
	}
	return jd
}
