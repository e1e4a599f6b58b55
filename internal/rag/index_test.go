package rag

import (
	"math"
	"testing"
	"time"
)

func TestNewIndexMismatchedLengths(t *testing.T) {
	_, err := NewIndex([]string{"a", "b"}, [][]float32{{1, 0}})
	if err == nil {
		t.Fatal("NewIndex with mismatched lengths should fail")
	}
}

func TestEmptyIndexQueries(t *testing.T) {
	idx, err := NewIndex(nil, nil)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if idx.Len() != 0 {
		t.Errorf("Len = %d, want 0", idx.Len())
	}
	if got := idx.Search([]float32{1, 0}, 3); got != nil {
		t.Errorf("Search on empty index = %v, want nil", got)
	}
	if got := idx.Centroid(); got != nil {
		t.Errorf("Centroid on empty index = %v, want nil", got)
	}
}

func TestSearchOrdersByDistance(t *testing.T) {
	chunks := []string{"far", "near", "middle"}
	vectors := [][]float32{
		{10, 0},
		{1, 0},
		{5, 0},
	}
	idx, err := NewIndex(chunks, vectors)
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	got := idx.Search([]float32{0, 0}, 2)
	if len(got) != 2 || got[0] != "near" || got[1] != "middle" {
		t.Errorf("Search = %v, want [near middle]", got)
	}
}

func TestSearchCapsK(t *testing.T) {
	idx, err := NewIndex([]string{"only"}, [][]float32{{1, 1}})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	got := idx.Search([]float32{0, 0}, 5)
	if len(got) != 1 || got[0] != "only" {
		t.Errorf("Search with k above size = %v, want [only]", got)
	}
	if got := idx.Search([]float32{0, 0}, 0); got != nil {
		t.Errorf("Search with k=0 = %v, want nil", got)
	}
}

func TestSearchDimensionMismatch(t *testing.T) {
	idx, err := NewIndex([]string{"a"}, [][]float32{{1, 0, 0}})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	if got := idx.Search([]float32{1, 0}, 1); got != nil {
		t.Errorf("Search with wrong query dimension = %v, want nil", got)
	}
}

func TestCentroid(t *testing.T) {
	idx, err := NewIndex([]string{"a", "b"}, [][]float32{{2, 0}, {0, 2}})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	got := idx.Centroid()
	want := []float32{1, 1}
	if len(got) != len(want) {
		t.Fatalf("Centroid dim = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Errorf("Centroid[%d] = %f, want %f", i, got[i], want[i])
		}
	}
}

func TestStorePutGetDelete(t *testing.T) {
	store := NewStore(time.Minute, time.Minute)

	idx, err := NewIndex([]string{"a"}, [][]float32{{1}})
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}

	store.Put("s1", idx)
	if got, ok := store.Get("s1"); !ok || got.Len() != 1 {
		t.Errorf("Get after Put = (%v, %v), want stored index", got, ok)
	}
	if store.Count() != 1 {
		t.Errorf("Count = %d, want 1", store.Count())
	}

	store.Delete("s1")
	if _, ok := store.Get("s1"); ok {
		t.Error("Get after Delete should miss")
	}

	if _, ok := store.Get("unknown"); ok {
		t.Error("Get of unknown session should miss")
	}
}
