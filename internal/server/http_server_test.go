package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"intervu/internal/config"
	"intervu/internal/errors"
	"intervu/internal/interview"
	"intervu/internal/observability"
	"intervu/internal/types"
)

// scriptedProvider replays queued interviewer turns
type scriptedProvider struct {
	turnQueue []string
	feedback  string
}

func (p *scriptedProvider) InterviewerTurn(_ context.Context, _, _ string) (string, error) {
	if len(p.turnQueue) == 0 {
		return "Noted.\nWhat else can you share?", nil
	}
	next := p.turnQueue[0]
	p.turnQueue = p.turnQueue[1:]
	return next, nil
}

func (p *scriptedProvider) SynthesizeFeedback(_ context.Context, _, _ string) (string, error) {
	return p.feedback, nil
}

type constantEmbedder struct{}

func (constantEmbedder) EmbedTexts(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0}
	}
	return out, nil
}

func testAppConfig() *config.Config {
	return &config.Config{
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
}

func newTestServer(t *testing.T, provider interview.Provider, apiKeys []string) (*Server, *http.ServeMux) {
	t.Helper()

	appCfg := testAppConfig()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	srv := NewServer(appCfg, ServerConfig{
		Host:           "localhost",
		Port:           "8080",
		Version:        "test",
		TLSConfig:      config.TLSConfig{Mode: "disabled"},
		APIKeys:        apiKeys,
		MaxRequestSize: 1 << 20,
	}, logger)

	engine, err := interview.NewEngine(appCfg, provider, constantEmbedder{}, nil, nil, logger)
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	srv.engine = engine

	om, err := observability.NewObservabilityManager(observability.ObservabilityConfig{
		ServiceName: "intervu-test",
		Enabled:     false,
	}, appCfg)
	if err != nil {
		t.Fatalf("failed to create observability manager: %v", err)
	}

	return srv, srv.setupRoutes(om)
}

func postJSON(t *testing.T, mux *http.ServeMux, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func startTestInterview(t *testing.T, mux *http.ServeMux) types.StartInterviewOutput {
	t.Helper()

	rec := postJSON(t, mux, "/interview/start", StartRequest{
		Role:           "Backend Engineer",
		Level:          "Senior",
		Mode:           "Detailed|12",
		JobDescription: "Build and operate Go services with Postgres and Kubernetes.",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out types.StartInterviewOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode start response: %v", err)
	}
	return out
}

func TestStartEndpoint(t *testing.T) {
	provider := &scriptedProvider{turnQueue: []string{"What drew you to backend work?"}}
	_, mux := newTestServer(t, provider, nil)

	out := startTestInterview(t, mux)
	if out.SessionID == "" {
		t.Error("expected a session ID")
	}
	if out.FirstQuestion != "What drew you to backend work?" {
		t.Errorf("first question = %q", out.FirstQuestion)
	}
	if out.QuestionCount != 1 {
		t.Errorf("question count = %d, want 1", out.QuestionCount)
	}
}

func TestStartEndpointRejectsBadJSON(t *testing.T) {
	_, mux := newTestServer(t, &scriptedProvider{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/interview/start", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestStartEndpointRequiresJSONContentType(t *testing.T) {
	_, mux := newTestServer(t, &scriptedProvider{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/interview/start", bytes.NewReader([]byte("{}")))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a JSON content type", rec.Code)
	}
}

func TestAnswerEndpoint(t *testing.T) {
	provider := &scriptedProvider{turnQueue: []string{
		"Opening question?",
		"Good depth.\nHow did you handle failover?",
	}}
	_, mux := newTestServer(t, provider, nil)

	started := startTestInterview(t, mux)

	rec := postJSON(t, mux, "/interview/answer", AnswerRequest{
		SessionID: started.SessionID,
		Text:      "We used Postgres logical replication for read scaling.",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("answer status = %d, body %s", rec.Code, rec.Body.String())
	}

	var out types.SubmitAnswerOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("failed to decode answer response: %v", err)
	}
	if out.Evaluation != "Good depth." {
		t.Errorf("evaluation = %q", out.Evaluation)
	}
	if out.FollowUpQuestion != "How did you handle failover?" {
		t.Errorf("follow-up = %q", out.FollowUpQuestion)
	}
	if out.QuestionCount != 2 {
		t.Errorf("question count = %d, want 2", out.QuestionCount)
	}
}

func TestAnswerEndpointUnknownSession(t *testing.T) {
	_, mux := newTestServer(t, &scriptedProvider{}, nil)

	rec := postJSON(t, mux, "/interview/answer", AnswerRequest{
		SessionID: "missing",
		Text:      "hello",
	}, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for unknown session", rec.Code)
	}
}

func TestAnswerEndpointRequiresSessionID(t *testing.T) {
	_, mux := newTestServer(t, &scriptedProvider{}, nil)

	rec := postJSON(t, mux, "/interview/answer", AnswerRequest{Text: "hello"}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a session id", rec.Code)
	}
}

func TestEndAndFeedbackEndpoints(t *testing.T) {
	provider := &scriptedProvider{
		turnQueue: []string{"Opening question?"},
		feedback:  "Direct, critical feedback.",
	}
	_, mux := newTestServer(t, provider, nil)

	started := startTestInterview(t, mux)

	rec := postJSON(t, mux, "/interview/end", EndRequest{SessionID: started.SessionID}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("end status = %d, body %s", rec.Code, rec.Body.String())
	}

	var ended types.EndInterviewOutput
	if err := json.Unmarshal(rec.Body.Bytes(), &ended); err != nil {
		t.Fatalf("failed to decode end response: %v", err)
	}
	if ended.Feedback != "Direct, critical feedback." {
		t.Errorf("feedback = %q", ended.Feedback)
	}

	req := httptest.NewRequest(http.MethodGet, "/interview/feedback?sessionId="+started.SessionID, nil)
	fbRec := httptest.NewRecorder()
	mux.ServeHTTP(fbRec, req)
	if fbRec.Code != http.StatusOK {
		t.Fatalf("feedback status = %d, body %s", fbRec.Code, fbRec.Body.String())
	}

	var fb types.FeedbackOutput
	if err := json.Unmarshal(fbRec.Body.Bytes(), &fb); err != nil {
		t.Fatalf("failed to decode feedback response: %v", err)
	}
	if !fb.Ready {
		t.Error("feedback must be ready after end")
	}
	if fb.Feedback != ended.Feedback {
		t.Errorf("feedback = %q, want the ended session's critique", fb.Feedback)
	}
}

func TestFeedbackEndpointRequiresSessionID(t *testing.T) {
	_, mux := newTestServer(t, &scriptedProvider{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/interview/feedback", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a sessionId parameter", rec.Code)
	}
}

func TestAuthMiddleware(t *testing.T) {
	provider := &scriptedProvider{turnQueue: []string{"Opening question?"}}
	_, mux := newTestServer(t, provider, []string{"secret-key"})

	body := StartRequest{JobDescription: "Go services."}

	// Missing key
	rec := postJSON(t, mux, "/interview/start", body, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without a key", rec.Code)
	}

	// Wrong key
	rec = postJSON(t, mux, "/interview/start", body, map[string]string{"X-API-Key": "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 with a bad key", rec.Code)
	}

	// X-API-Key header
	rec = postJSON(t, mux, "/interview/start", body, map[string]string{"X-API-Key": "secret-key"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with a valid key", rec.Code)
	}

	// Bearer token fallback
	provider.turnQueue = []string{"Another opening?"}
	rec = postJSON(t, mux, "/interview/start", body, map[string]string{"Authorization": "Bearer secret-key"})
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with a bearer token", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv, mux := newTestServer(t, &scriptedProvider{turnQueue: []string{"Opening question?"}}, nil)

	startTestInterview(t, mux)

	req := httptest.NewRequest(http.MethodGet, "/stats", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats status = %d", rec.Code)
	}

	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats response: %v", err)
	}
	if stats["service"] != "intervu" {
		t.Errorf("service = %v", stats["service"])
	}
	interviews, ok := stats["interviews"].(map[string]any)
	if !ok {
		t.Fatal("expected interview stats")
	}
	if sessions, _ := interviews["sessions"].(float64); sessions != 1 {
		t.Errorf("sessions = %v, want 1", interviews["sessions"])
	}

	if got := srv.engine.Stats(); got.Sessions != 1 {
		t.Errorf("engine sessions = %d, want 1", got.Sessions)
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := maskAPIKey("short"); got != "****" {
		t.Errorf("maskAPIKey(short) = %q", got)
	}
	if got := maskAPIKey("abcdefgh1234"); got != "abcdefgh****" {
		t.Errorf("maskAPIKey(long) = %q", got)
	}
}
