package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	intervuErrors "intervu/internal/errors"
	"intervu/internal/observability"
	"intervu/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createStartHandler wraps the interview start handler with observability
func (s *Server) createStartHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("intervu.api")
		ctx, span := tracer.Start(ctx, "api.interview.start")
		defer span.End()

		// Parse request
		var req StartRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Size validation; the JD is the only unbounded field
		if len(req.JobDescription) > int(s.MaxRequestSize) {
			err := fmt.Errorf("job description too large: %d chars", len(req.JobDescription))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Job description too large",
				fmt.Sprintf("jobDescription exceeds size limit of %d characters", s.MaxRequestSize), http.StatusBadRequest)
			return
		}

		// Add request attributes to span
		span.SetAttributes(
			attribute.String("request.role", req.Role),
			attribute.String("request.mode", req.Mode),
			attribute.Int("request.jd_length", len(req.JobDescription)),
			attribute.String("operation", "interview.start"),
		)

		input := types.StartInterviewInput{
			Role:           req.Role,
			Level:          req.Level,
			Focus:          req.Focus,
			Mode:           req.Mode,
			JobDescription: req.JobDescription,
		}

		result, err := s.engine.Start(ctx, input)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			writeErrorResponse(w, "Failed to start interview", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("session.id", result.SessionID),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createAnswerHandler wraps the answer handler with observability
func (s *Server) createAnswerHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("intervu.api")
		ctx, span := tracer.Start(ctx, "api.interview.answer")
		defer span.End()

		var req AnswerRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.SessionID) == "" {
			err := fmt.Errorf("missing session id")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing session id", "sessionId field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.Int("request.answer_length", len(req.Text)),
			attribute.String("operation", "interview.answer"),
		)

		input := types.SubmitAnswerInput{
			SessionID: req.SessionID,
			Text:      req.Text,
		}

		result, err := s.engine.SubmitAnswer(ctx, input)
		if err != nil {
			span.RecordError(err)
			if intervuErrors.IsNotFound(err) {
				span.SetAttributes(attribute.String("error.type", "not_found"))
				writeErrorResponse(w, "Session not found", err.Error(), http.StatusNotFound)
				return
			}
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			writeErrorResponse(w, "Failed to process answer", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("session.question_count", result.QuestionCount),
			attribute.Bool("answer.offtopic", result.OffTopic),
			attribute.Float64("answer.confidence", result.Confidence),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createEndHandler wraps the end handler with observability
func (s *Server) createEndHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("intervu.api")
		ctx, span := tracer.Start(ctx, "api.interview.end")
		defer span.End()

		var req EndRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.SessionID) == "" {
			err := fmt.Errorf("missing session id")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing session id", "sessionId field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", req.SessionID),
			attribute.String("operation", "interview.end"),
		)

		result, err := s.engine.End(ctx, req.SessionID)
		if err != nil {
			span.RecordError(err)
			if intervuErrors.IsNotFound(err) {
				span.SetAttributes(attribute.String("error.type", "not_found"))
				writeErrorResponse(w, "Session not found", err.Error(), http.StatusNotFound)
				return
			}
			writeErrorResponse(w, "Failed to end interview", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createFeedbackHandler wraps the feedback fetch handler with observability
func (s *Server) createFeedbackHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx := r.Context()
		tracer := om.Tracer("intervu.api")
		_, span := tracer.Start(ctx, "api.interview.feedback")
		defer span.End()

		sessionID := r.URL.Query().Get("sessionId")
		if strings.TrimSpace(sessionID) == "" {
			err := fmt.Errorf("missing session id")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing session id", "sessionId query parameter is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.String("session.id", sessionID),
			attribute.String("operation", "interview.feedback"),
		)

		result, err := s.engine.Feedback(sessionID)
		if err != nil {
			span.RecordError(err)
			if intervuErrors.IsNotFound(err) {
				span.SetAttributes(attribute.String("error.type", "not_found"))
				writeErrorResponse(w, "Session not found", err.Error(), http.StatusNotFound)
				return
			}
			writeErrorResponse(w, "Failed to fetch feedback", err.Error(), http.StatusInternalServerError)
			return
		}

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("feedback.ready", result.Ready),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				om.RecordRateLimitHit(r.Context(), r.URL.Path)
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
