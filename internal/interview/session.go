package interview

import (
	"sync"
	"time"

	"intervu/internal/types"
)

// Session holds the mutable state of one interview. All reads and
// writes happen under mu; a turn holds the lock end to end so the
// history, counter, and current question always move together.
type Session struct {
	mu sync.Mutex

	ID    string
	Role  string
	Level string
	Focus string
	Mode  string

	MaxQuestions    int
	QuestionsAsked  int
	CurrentQuestion string
	History         []types.Turn
	Status          types.SessionStatus
	Feedback        *string

	CreatedAt time.Time
}

// NewSession creates an in-progress session with an empty history
func NewSession(id string, input types.StartInterviewInput) *Session {
	return &Session{
		ID:           id,
		Role:         input.Role,
		Level:        input.Level,
		Focus:        input.Focus,
		Mode:         input.Mode,
		MaxQuestions: MaxQuestions(input.Mode),
		Status:       types.StatusInProgress,
		CreatedAt:    time.Now(),
	}
}

// finished reports whether the session has ended. Callers must hold mu.
func (s *Session) finished() bool {
	return s.Status == types.StatusFinished
}

// appendTurn records a transcript turn. Callers must hold mu.
func (s *Session) appendTurn(speaker types.Speaker, text string) {
	s.History = append(s.History, types.Turn{Speaker: speaker, Text: text})
}
