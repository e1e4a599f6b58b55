package interview

import (
	"math/rand"
	"sync"
	"time"
)

// Stock follow-up questions used when the model cannot produce one.
// Each stands alone regardless of what the candidate last said.
var fallbackFollowUps = []string{
	"Can you provide a concrete example related to this job requirement?",
	"Can you briefly quantify the impact of your action?",
	"Could you explain one technical decision in more detail?",
}

// RepetitionRequest is returned when the candidate's answer came back
// empty from transcription.
const RepetitionRequest = "I didn't catch that. Could you please repeat your answer?"

// FallbackPicker selects fallback follow-up questions from a seedable
// random source, so tests can pin the sequence.
type FallbackPicker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallbackPicker creates a picker seeded from the clock
func NewFallbackPicker() *FallbackPicker {
	return NewSeededFallbackPicker(time.Now().UnixNano())
}

// NewSeededFallbackPicker creates a picker with a fixed seed
func NewSeededFallbackPicker(seed int64) *FallbackPicker {
	return &FallbackPicker{rng: rand.New(rand.NewSource(seed))}
}

// Pick returns one of the stock follow-up questions
func (p *FallbackPicker) Pick() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return fallbackFollowUps[p.rng.Intn(len(fallbackFollowUps))]
}
