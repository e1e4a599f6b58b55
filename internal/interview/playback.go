package interview

// Player voices interviewer questions to the candidate. Implementations
// must be safe for concurrent use; the engine calls Speak from a
// goroutine and never waits for playback to finish.
type Player interface {
	Speak(text string)
}

// NoopPlayer discards playback requests. Used when no speech backend
// is wired in.
type NoopPlayer struct{}

// Speak implements Player
func (NoopPlayer) Speak(string) {}
