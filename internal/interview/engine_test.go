package interview

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"intervu/internal/config"
	apperrors "intervu/internal/errors"
	"intervu/internal/types"
)

// fakeProvider replays queued interviewer turns and records prompts
type fakeProvider struct {
	mu            sync.Mutex
	turnQueue     []string
	turnErr       error
	feedback      string
	feedbackErr   error
	turnPrompts   []string
	turnMessages  []string
	feedbackCalls int
}

func (f *fakeProvider) InterviewerTurn(_ context.Context, systemPrompt, userMessage string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnPrompts = append(f.turnPrompts, systemPrompt)
	f.turnMessages = append(f.turnMessages, userMessage)
	if f.turnErr != nil {
		return "", f.turnErr
	}
	if len(f.turnQueue) == 0 {
		return "Fine.\nWhat else can you share?", nil
	}
	next := f.turnQueue[0]
	f.turnQueue = f.turnQueue[1:]
	return next, nil
}

func (f *fakeProvider) SynthesizeFeedback(_ context.Context, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.feedbackCalls++
	if f.feedbackErr != nil {
		return "", f.feedbackErr
	}
	return f.feedback, nil
}

func (f *fakeProvider) setTurnErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.turnErr = err
}

// flatEmbedder gives every text the same vector, so retrieval always
// hits and similarity is always perfect
type flatEmbedder struct{}

func (flatEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

type recordingPlayer struct {
	spoken chan string
}

func (p *recordingPlayer) Speak(text string) {
	p.spoken <- text
}

func newTestEngine(t *testing.T, provider Provider, player Player) *Engine {
	t.Helper()
	cfg := &config.Config{
		RAG: config.RAGConfig{
			ChunkSizeWords:  150,
			OverlapWords:    30,
			TopKStart:       3,
			TopKAnswer:      4,
			IndexTTL:        time.Hour,
			CleanupInterval: time.Hour,
		},
		Interview: config.InterviewConfig{
			SessionTTL:      time.Hour,
			CleanupInterval: time.Hour,
			FallbackSeed:    7,
		},
	}
	logger, err := apperrors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}
	engine, err := NewEngine(cfg, provider, flatEmbedder{}, player, nil, logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

func startInput(mode string) types.StartInterviewInput {
	return types.StartInterviewInput{
		Role:           "Backend Engineer",
		Level:          "Senior",
		Focus:          "Distributed systems",
		Mode:           mode,
		JobDescription: "Design and operate Go backend services with Postgres and Kubernetes at scale.",
	}
}

func TestStartInterview(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{"  What drew you to backend work?  \n"}}
	player := &recordingPlayer{spoken: make(chan string, 4)}
	engine := newTestEngine(t, provider, player)

	out, err := engine.Start(context.Background(), startInput("Detailed|12"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if out.SessionID == "" {
		t.Error("expected a session ID")
	}
	if out.FirstQuestion != "What drew you to backend work?" {
		t.Errorf("first question = %q, want trimmed model output", out.FirstQuestion)
	}
	if out.Status != types.StatusInProgress {
		t.Errorf("status = %q, want in_progress", out.Status)
	}
	if out.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", out.QuestionCount)
	}

	if got := provider.turnMessages[0]; got != StartInstruction {
		t.Errorf("start user message = %q, want the start instruction", got)
	}
	prompt := provider.turnPrompts[0]
	if !strings.Contains(prompt, "(no prior context)") {
		t.Error("expected empty history sentinel in the opening prompt")
	}
	if !strings.Contains(prompt, "Design and operate Go backend services") {
		t.Error("expected JD context in the opening prompt")
	}

	select {
	case spoken := <-player.spoken:
		if spoken != out.FirstQuestion {
			t.Errorf("spoke %q, want the first question", spoken)
		}
	case <-time.After(2 * time.Second):
		t.Error("expected the first question to be spoken")
	}
}

func TestStartInterviewProviderFailure(t *testing.T) {
	provider := &fakeProvider{turnErr: errors.New("model unavailable")}
	engine := newTestEngine(t, provider, nil)

	_, err := engine.Start(context.Background(), startInput(""))
	if err == nil {
		t.Fatal("expected Start() to fail when the model is down")
	}
	if apperrors.IsNotFound(err) {
		t.Error("a model failure must not read as not-found")
	}
}

func TestSubmitAnswerUnknownSession(t *testing.T) {
	engine := newTestEngine(t, &fakeProvider{}, nil)

	_, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{SessionID: "missing", Text: "hello"})
	if !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}

func TestSubmitAnswerNormalTurn(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{
		"What is your experience with Postgres?",
		"Good depth on replication.\nHow did you handle failover?",
	}}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput("Detailed|12"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	answer := "We used Postgres with logical replication for read scaling."
	out, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{SessionID: started.SessionID, Text: answer})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}

	if out.UserText != answer {
		t.Errorf("user text = %q, want the submitted answer", out.UserText)
	}
	if out.Evaluation != "Good depth on replication." {
		t.Errorf("evaluation = %q", out.Evaluation)
	}
	if out.FollowUpQuestion != "How did you handle failover?" {
		t.Errorf("follow-up = %q", out.FollowUpQuestion)
	}
	if out.NewQuestion == nil || *out.NewQuestion != out.FollowUpQuestion {
		t.Errorf("new question = %v, want the follow-up", out.NewQuestion)
	}
	if out.FullResponse != "Good depth on replication.\nHow did you handle failover?" {
		t.Errorf("full response = %q, want the raw model output", out.FullResponse)
	}
	if out.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", out.QuestionCount)
	}
	if out.OffTopic {
		t.Error("expected on-topic answer")
	}
	if out.Hesitation {
		t.Error("expected no hesitation for a direct answer")
	}
	if out.FeedbackReady {
		t.Error("feedback must not be ready mid-interview")
	}
	if out.Confidence != 1.0 {
		t.Errorf("confidence = %v, want 1.0 with the flat embedder", out.Confidence)
	}

	// The turn prompt carries the transcript including this answer
	turnPrompt := provider.turnPrompts[1]
	if !strings.Contains(turnPrompt, "(User): "+answer) {
		t.Error("expected the answer in the prompt history")
	}
}

func TestSubmitAnswerOffTopicKeepsBudget(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{
		"Opening question?",
		"[OFFTOPIC] That story is unrelated to the role.\nBack to the JD: how do you deploy services?",
	}}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput("Detailed|12"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	out, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "Let me tell you about my fishing trip last summer instead.",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}

	if !out.OffTopic {
		t.Error("expected the off-topic flag")
	}
	if out.Evaluation != "That story is unrelated to the role." {
		t.Errorf("evaluation = %q, want the marker stripped", out.Evaluation)
	}
	if out.QuestionCount != 1 {
		t.Errorf("question count = %d, want unchanged 1 for off-topic", out.QuestionCount)
	}
	if out.NewQuestion == nil || *out.NewQuestion != "Back to the JD: how do you deploy services?" {
		t.Errorf("new question = %v, want the redirect follow-up", out.NewQuestion)
	}
}

func TestSubmitAnswerEmptyTextAsksForRepeat(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{"Opening question?"}}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput(""))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	out, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{SessionID: started.SessionID, Text: "   "})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}

	if out.FollowUpQuestion != RepetitionRequest {
		t.Errorf("follow-up = %q, want the repetition request", out.FollowUpQuestion)
	}
	if out.NewQuestion == nil || *out.NewQuestion != started.FirstQuestion {
		t.Errorf("new question = %v, want the unanswered current question", out.NewQuestion)
	}
	if out.QuestionCount != 1 {
		t.Errorf("question count = %d, want unchanged 1", out.QuestionCount)
	}
	if !out.Hesitation {
		t.Error("silence must read as hesitation")
	}
	if out.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0", out.Confidence)
	}
	if len(provider.turnPrompts) != 1 {
		t.Error("an empty answer must not reach the model")
	}
}

func TestInterviewFinishesAtBudget(t *testing.T) {
	provider := &fakeProvider{
		turnQueue: []string{
			"Opening question?",
			"Strong answer.\nFinal follow-up?",
		},
		feedback: "<b>Overall Score</b>\n- 7/10, solid but narrow.\n",
	}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput("Custom|2"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	out, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "We cut deploy times in half by parallelizing the build pipeline.",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}

	if out.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", out.QuestionCount)
	}
	if !out.FeedbackReady {
		t.Error("expected feedback at the question budget")
	}
	if out.NewQuestion != nil {
		t.Errorf("new question = %q, want nil once finished", *out.NewQuestion)
	}
	if out.Feedback == nil || !strings.Contains(*out.Feedback, "Overall Score") {
		t.Errorf("feedback = %v, want the synthesized critique", out.Feedback)
	}

	fb, err := engine.Feedback(started.SessionID)
	if err != nil {
		t.Fatalf("Feedback() returned error: %v", err)
	}
	if !fb.Ready {
		t.Error("feedback must be ready after the budget is reached")
	}

	// Submitting to a finished session returns the feedback payload
	again, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "one more answer",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() after finish returned error: %v", err)
	}
	if !again.FeedbackReady || again.Feedback == nil {
		t.Error("expected a feedback payload for a finished session")
	}
	if again.QuestionCount != 2 {
		t.Errorf("question count = %d, want frozen at 2", again.QuestionCount)
	}

	// Ending a session with existing feedback does not regenerate it
	ended, err := engine.End(context.Background(), started.SessionID)
	if err != nil {
		t.Fatalf("End() returned error: %v", err)
	}
	if ended.Status != types.StatusFinished {
		t.Errorf("status = %q, want finished", ended.Status)
	}
	if provider.feedbackCalls != 1 {
		t.Errorf("feedback calls = %d, want 1", provider.feedbackCalls)
	}
}

func TestOffTopicDoesNotFinishInterview(t *testing.T) {
	provider := &fakeProvider{
		turnQueue: []string{
			"Opening question?",
			"[OFFTOPIC] Unrelated.\nCan you return to the JD topics?",
			"Good recovery.\nAnything else?",
		},
		feedback: "Feedback body.",
	}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput("Custom|2"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	offTopic, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "A long story about something else entirely happened to me once.",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}
	if offTopic.FeedbackReady {
		t.Error("an off-topic answer must not finish the interview")
	}

	onTopic, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "Returning to the role, I scaled the ingestion service to ten thousand events per second.",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() returned error: %v", err)
	}
	if !onTopic.FeedbackReady {
		t.Error("the on-topic answer should exhaust the budget")
	}
}

func TestSubmitAnswerModelFailureDegrades(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{"Opening question?"}}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput("Detailed|12"))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	provider.setTurnErr(errors.New("model unavailable"))

	out, err := engine.SubmitAnswer(context.Background(), types.SubmitAnswerInput{
		SessionID: started.SessionID,
		Text:      "We rebuilt the authorization layer around signed service tokens.",
	})
	if err != nil {
		t.Fatalf("SubmitAnswer() must degrade, not fail: %v", err)
	}

	if out.Evaluation != degradedEvaluation {
		t.Errorf("evaluation = %q, want the degraded message", out.Evaluation)
	}
	inPool := false
	for _, q := range fallbackFollowUps {
		if out.FollowUpQuestion == q {
			inPool = true
			break
		}
	}
	if !inPool {
		t.Errorf("follow-up %q is not from the fallback pool", out.FollowUpQuestion)
	}
	if out.FullResponse != degradedEvaluation+"\n"+out.FollowUpQuestion {
		t.Errorf("full response = %q, want evaluation and fallback joined", out.FullResponse)
	}
	if out.QuestionCount != 2 {
		t.Errorf("question count = %d, want the degraded turn to count", out.QuestionCount)
	}
}

func TestEndInterview(t *testing.T) {
	provider := &fakeProvider{
		turnQueue: []string{"Opening question?"},
		feedback:  "Direct, critical feedback.",
	}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput(""))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	ended, err := engine.End(context.Background(), started.SessionID)
	if err != nil {
		t.Fatalf("End() returned error: %v", err)
	}
	if ended.Status != types.StatusFinished {
		t.Errorf("status = %q, want finished", ended.Status)
	}
	if ended.Feedback != "Direct, critical feedback." {
		t.Errorf("feedback = %q", ended.Feedback)
	}

	// Idempotent: a second end returns the same feedback without a new call
	endedAgain, err := engine.End(context.Background(), started.SessionID)
	if err != nil {
		t.Fatalf("second End() returned error: %v", err)
	}
	if endedAgain.Feedback != ended.Feedback {
		t.Error("expected the same feedback on repeated end")
	}
	if provider.feedbackCalls != 1 {
		t.Errorf("feedback calls = %d, want 1", provider.feedbackCalls)
	}

	if _, err := engine.End(context.Background(), "missing"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found for unknown session, got %v", err)
	}
}

func TestFeedbackBeforeGeneration(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{"Opening question?"}}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput(""))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	fb, err := engine.Feedback(started.SessionID)
	if err != nil {
		t.Fatalf("Feedback() returned error: %v", err)
	}
	if fb.Ready {
		t.Error("feedback must not be ready before generation")
	}
	if fb.Feedback != FeedbackPlaceholder {
		t.Errorf("feedback = %q, want the placeholder", fb.Feedback)
	}

	if _, err := engine.Feedback("missing"); !apperrors.IsNotFound(err) {
		t.Errorf("expected not-found for unknown session, got %v", err)
	}
}

func TestFeedbackGenerationFailure(t *testing.T) {
	provider := &fakeProvider{
		turnQueue:   []string{"Opening question?"},
		feedbackErr: errors.New("model unavailable"),
	}
	engine := newTestEngine(t, provider, nil)

	started, err := engine.Start(context.Background(), startInput(""))
	if err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	ended, err := engine.End(context.Background(), started.SessionID)
	if err != nil {
		t.Fatalf("End() returned error: %v", err)
	}
	if ended.Feedback != FeedbackUnavailable {
		t.Errorf("feedback = %q, want the unavailable message", ended.Feedback)
	}
}

func TestEngineStats(t *testing.T) {
	provider := &fakeProvider{turnQueue: []string{"Opening question?", "Another opening?"}}
	engine := newTestEngine(t, provider, nil)

	if got := engine.Stats(); got.Sessions != 0 || got.Indexes != 0 {
		t.Errorf("fresh engine stats = %+v, want zeros", got)
	}

	if _, err := engine.Start(context.Background(), startInput("")); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}
	if _, err := engine.Start(context.Background(), startInput("")); err != nil {
		t.Fatalf("Start() returned error: %v", err)
	}

	got := engine.Stats()
	if got.Sessions != 2 || got.Indexes != 2 {
		t.Errorf("stats = %+v, want 2 sessions and 2 indexes", got)
	}
}
