// Package vectormath holds the similarity arithmetic shared by every vector
// store backend, so all of them rank identically.
package vectormath

import (
	"container/heap"
	"math"

	"github.com/custodia-labs/sercha-pdf/internal/core/domain"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero vector has similarity 0 with everything.
// Callers must ensure len(a) == len(b).
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	// Rounding can push identical vectors just past 1.
	return math.Max(-1, math.Min(1, sim))
}

// Normalise scales v to unit length in place and returns it.
// Zero vectors are returned unchanged.
func Normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return v
}

// TopK keeps the k best hits seen so far using a bounded min-heap.
// The worst retained hit sits at the root and is evicted first.
type TopK struct {
	k int
	h hitHeap
}

// NewTopK creates a collector for k hits.
func NewTopK(k int) *TopK {
	return &TopK{k: k, h: make(hitHeap, 0, k)}
}

// Push offers a hit to the collector.
func (t *TopK) Push(hit domain.ScoredRecord) {
	if t.k <= 0 {
		return
	}
	if len(t.h) < t.k {
		heap.Push(&t.h, hit)
		return
	}
	// Replace the root only when hit ranks strictly better.
	if domain.CompareScored(hit, t.h[0]) < 0 {
		t.h[0] = hit
		heap.Fix(&t.h, 0)
	}
}

// Results returns retained hits best-first.
func (t *TopK) Results() []domain.ScoredRecord {
	out := make([]domain.ScoredRecord, len(t.h))
	copy(out, t.h)
	return domain.RankScored(out, t.k)
}

// hitHeap orders the worst hit first.
type hitHeap []domain.ScoredRecord

func (h hitHeap) Len() int           { return len(h) }
func (h hitHeap) Less(i, j int) bool { return domain.CompareScored(h[i], h[j]) > 0 }
func (h hitHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *hitHeap) Push(x any) { *h = append(*h, x.(domain.ScoredRecord)) }

func (h *hitHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
