package rag

import (
	"sort"

	"intervu/internal/errors"
)

// Index holds embedded chunks for one session and answers exact
// nearest-neighbor queries over them. Indexes are small (one job
// description), so brute-force squared-L2 scan is the right tool.
type Index struct {
	chunks  []string
	vectors [][]float32
	dim     int
}

// NewIndex builds an index from parallel chunk and vector slices.
// An empty index is valid; queries against it return no results.
func NewIndex(chunks []string, vectors [][]float32) (*Index, error) {
	if len(chunks) != len(vectors) {
		return nil, errors.NewInternalError(
			errors.ErrCodeEmbeddingFailed,
			"chunk and vector counts do not match",
			nil,
		).WithContext("chunks", len(chunks)).WithContext("vectors", len(vectors))
	}
	dim := 0
	if len(vectors) > 0 {
		dim = len(vectors[0])
	}
	for _, v := range vectors {
		if len(v) != dim {
			return nil, errors.NewInternalError(
				errors.ErrCodeEmbeddingFailed,
				"embedding vectors have mixed dimensions",
				nil,
			)
		}
	}
	return &Index{chunks: chunks, vectors: vectors, dim: dim}, nil
}

// Len returns the number of indexed chunks
func (x *Index) Len() int {
	return len(x.chunks)
}

// Search returns up to k chunks nearest to query by squared L2 distance,
// closest first. k is capped at the index size. A nil index, empty index,
// or dimension-mismatched query returns nil.
func (x *Index) Search(query []float32, k int) []string {
	if x == nil || len(x.chunks) == 0 || k <= 0 || len(query) != x.dim {
		return nil
	}
	if k > len(x.chunks) {
		k = len(x.chunks)
	}

	type scored struct {
		idx  int
		dist float32
	}
	results := make([]scored, len(x.vectors))
	for i, v := range x.vectors {
		var d float32
		for j := range v {
			diff := v[j] - query[j]
			d += diff * diff
		}
		results[i] = scored{idx: i, dist: d}
	}
	sort.Slice(results, func(a, b int) bool {
		if results[a].dist != results[b].dist {
			return results[a].dist < results[b].dist
		}
		return results[a].idx < results[b].idx
	})

	out := make([]string, 0, k)
	for _, r := range results[:k] {
		out = append(out, x.chunks[r.idx])
	}
	return out
}

// Centroid returns the mean of all indexed vectors, or nil for an
// empty index.
func (x *Index) Centroid() []float32 {
	if x == nil || len(x.vectors) == 0 {
		return nil
	}
	centroid := make([]float32, x.dim)
	for _, v := range x.vectors {
		for j, val := range v {
			centroid[j] += val
		}
	}
	n := float32(len(x.vectors))
	for j := range centroid {
		centroid[j] /= n
	}
	return centroid
}
