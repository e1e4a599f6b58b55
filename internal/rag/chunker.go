package rag

import (
	"strings"

	"intervu/internal/errors"
)

const (
	// DefaultChunkSizeWords is the window size for job description chunks
	DefaultChunkSizeWords = 150
	// DefaultOverlapWords is how many words consecutive chunks share
	DefaultOverlapWords = 30
	// minChunkWords drops fragments too short to carry meaning
	minChunkWords = 11
)

// Chunker splits free text into overlapping word windows
type Chunker struct {
	sizeWords    int
	overlapWords int
}

// NewChunker creates a chunker with the given window size and overlap.
// Non-positive values fall back to the defaults. The step between windows
// (size - overlap) must be positive or every window would start at the
// same offset.
func NewChunker(sizeWords, overlapWords int) (*Chunker, error) {
	if sizeWords <= 0 {
		sizeWords = DefaultChunkSizeWords
	}
	if overlapWords < 0 {
		overlapWords = DefaultOverlapWords
	}
	if sizeWords-overlapWords <= 0 {
		return nil, errors.NewConfigError(
			errors.ErrCodeInvalidChunking,
			"chunk overlap must be smaller than chunk size",
			nil,
		).WithContext("size_words", sizeWords).WithContext("overlap_words", overlapWords)
	}
	return &Chunker{sizeWords: sizeWords, overlapWords: overlapWords}, nil
}

// Split breaks text into overlapping chunks of whole words. Whitespace runs
// collapse, so the output is normalized regardless of input formatting.
// Fragments shorter than minChunkWords are dropped; text that is empty or
// all whitespace yields no chunks.
func (c *Chunker) Split(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	if len(words) <= c.sizeWords {
		return []string{strings.Join(words, " ")}
	}

	step := c.sizeWords - c.overlapWords
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + c.sizeWords
		if end > len(words) {
			end = len(words)
		}
		window := words[start:end]
		if len(window) >= minChunkWords {
			chunks = append(chunks, strings.Join(window, " "))
		}
	}
	return chunks
}
