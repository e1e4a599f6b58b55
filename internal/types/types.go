package types

// Speaker identifies who produced a transcript turn
type Speaker string

const (
	SpeakerUser        Speaker = "User"
	SpeakerInterviewer Speaker = "Interviewer"
)

// Turn is a single entry in an interview transcript
type Turn struct {
	Speaker Speaker `json:"speaker"`
	Text    string  `json:"text"`
}

// SessionStatus tracks the lifecycle of an interview session
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusFinished   SessionStatus = "finished"
)

// StartInterviewInput represents the input for starting an interview session
type StartInterviewInput struct {
	Role           string `json:"role"`
	Level          string `json:"level"`
	Focus          string `json:"focus"`
	Mode           string `json:"mode"`
	JobDescription string `json:"jobDescription"`
}

// StartInterviewOutput represents the result of starting an interview session
type StartInterviewOutput struct {
	SessionID     string        `json:"sessionId"`
	FirstQuestion string        `json:"firstQuestion"`
	Status        SessionStatus `json:"status"`
	QuestionCount int           `json:"questionCount"`
}

// SubmitAnswerInput represents a candidate answer for an active session
type SubmitAnswerInput struct {
	SessionID string `json:"sessionId"`
	Text      string `json:"text"`
}

// SubmitAnswerOutput represents the interviewer's reaction to an answer
type SubmitAnswerOutput struct {
	UserText         string   `json:"userText"`
	Evaluation       string   `json:"evaluation"`        // cleaned, marker stripped
	FullResponse     string   `json:"fullResponse"`      // raw model output
	FollowUpQuestion string   `json:"followUpQuestion"`
	NewQuestion      *string  `json:"newQuestion"`       // nil once the budget is reached
	QuestionCount    int      `json:"questionCount"`
	FeedbackReady    bool     `json:"feedbackReady"`
	Feedback         *string  `json:"feedback"`
	Confidence       float64  `json:"confidence"`
	OffTopic         bool     `json:"offtopic"`
	Hesitation       bool     `json:"hesitation"`
}

// EndInterviewOutput represents the result of ending a session
type EndInterviewOutput struct {
	Status   SessionStatus `json:"status"`
	Feedback string        `json:"feedback"`
}

// FeedbackOutput represents a feedback fetch for a session
type FeedbackOutput struct {
	Feedback string `json:"feedback"`
	Ready    bool   `json:"ready"`
}

// JobChunk is a single retrieval chunk of a job description
type JobChunk struct {
	Index int    `json:"index"`
	Words int    `json:"words"`
	Text  string `json:"text"`
}

// ChunkReport represents the result of chunking a job description
type ChunkReport struct {
	SourceWords    int        `json:"sourceWords"`
	ChunkSizeWords int        `json:"chunkSizeWords"`
	OverlapWords   int        `json:"overlapWords"`
	Chunks         []JobChunk `json:"chunks"`
}
