package interview

import "context"

// Metrics receives engine lifecycle events. The observability layer
// implements this; NoopMetrics is used when observability is disabled.
type Metrics interface {
	InterviewStarted(ctx context.Context)
	TurnProcessed(ctx context.Context, confidence float64, offTopic, hesitation bool)
	InterviewCompleted(ctx context.Context, questionsAsked int)
	FeedbackGenerated(ctx context.Context, success bool)
	SessionsChanged(ctx context.Context, delta int)
}

// NoopMetrics drops all engine events
type NoopMetrics struct{}

func (NoopMetrics) InterviewStarted(context.Context)                   {}
func (NoopMetrics) TurnProcessed(context.Context, float64, bool, bool) {}
func (NoopMetrics) InterviewCompleted(context.Context, int)            {}
func (NoopMetrics) FeedbackGenerated(context.Context, bool)            {}
func (NoopMetrics) SessionsChanged(context.Context, int)               {}
