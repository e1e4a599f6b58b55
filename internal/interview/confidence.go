package interview

import (
	"context"
	"math"
	"strings"
)

// Embedder turns texts into embedding vectors, preserving order
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Penalty factors applied to the base similarity score
const (
	hesitationPenalty  = 0.6
	shortAnswerPenalty = 0.7
	shortAnswerWords   = 8
)

// Scorer estimates how confident and JD-relevant a candidate answer is
type Scorer struct {
	embedder Embedder
}

// NewScorer creates a confidence scorer backed by the given embedder
func NewScorer(embedder Embedder) *Scorer {
	return &Scorer{embedder: embedder}
}

// Score returns a confidence value in [0,1] for an answer against the
// retrieved JD chunks. The base is the cosine similarity between the
// answer embedding and the mean chunk embedding, mapped from [-1,1] to
// [0,1]; hesitation and very short answers then multiply it down.
// Embedding failures degrade to zero similarity rather than erroring,
// so a flaky embedding backend never blocks a turn.
func (s *Scorer) Score(ctx context.Context, answer string, jdChunks []string) float64 {
	if answer == "" {
		return 0.0
	}

	var answerVec []float32
	if vecs, err := s.embedder.EmbedTexts(ctx, []string{answer}); err == nil && len(vecs) == 1 {
		answerVec = vecs[0]
	}

	var chunkMean []float32
	if len(jdChunks) > 0 {
		if vecs, err := s.embedder.EmbedTexts(ctx, jdChunks); err == nil && len(vecs) > 0 {
			chunkMean = meanVector(vecs)
		}
	}

	sim := cosineSimilarity(answerVec, chunkMean)
	conf := clamp01((sim + 1) / 2)

	if DetectHesitation(answer) {
		conf *= hesitationPenalty
	}
	if len(strings.Fields(answer)) < shortAnswerWords {
		conf *= shortAnswerPenalty
	}

	return clamp01(conf)
}

func meanVector(vecs [][]float32) []float32 {
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil
	}
	mean := make([]float32, len(vecs[0]))
	for _, v := range vecs {
		if len(v) != len(mean) {
			return nil
		}
		for i, val := range v {
			mean[i] += val
		}
	}
	n := float32(len(vecs))
	for i := range mean {
		mean[i] /= n
	}
	return mean
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0.0
	}
	return dot / denom
}

func clamp01(v float64) float64 {
	return math.Max(0.0, math.Min(1.0, v))
}
