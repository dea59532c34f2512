// Package merger selects the best k ranked documents with a bounded heap so
// large collections never need a full sort.
package merger

import (
	"container/heap"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
)

// TopK returns the k best docs ordered by ranker.Less. The input is not
// modified. A non-positive k yields an empty slice.
func TopK(docs []ranker.ScoredDoc, k int, tb ranker.TieBreak) []ranker.ScoredDoc {
	if k <= 0 {
		return []ranker.ScoredDoc{}
	}
	h := &scoredDocHeap{tb: tb}
	for _, doc := range docs {
		if h.Len() < k {
			heap.Push(h, doc)
			continue
		}
		// h.docs[0] is the worst doc kept so far.
		if ranker.Less(doc, h.docs[0], tb) {
			h.docs[0] = doc
			heap.Fix(h, 0)
		}
	}
	result := make([]ranker.ScoredDoc, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(ranker.ScoredDoc)
	}
	return result
}

// scoredDocHeap is a min-heap with the worst-ranked doc at the root.
type scoredDocHeap struct {
	docs []ranker.ScoredDoc
	tb   ranker.TieBreak
}

func (h scoredDocHeap) Len() int { return len(h.docs) }

func (h scoredDocHeap) Less(i, j int) bool {
	return ranker.Less(h.docs[j], h.docs[i], h.tb)
}

func (h scoredDocHeap) Swap(i, j int) { h.docs[i], h.docs[j] = h.docs[j], h.docs[i] }

func (h *scoredDocHeap) Push(x interface{}) {
	h.docs = append(h.docs, x.(ranker.ScoredDoc))
}

func (h *scoredDocHeap) Pop() interface{} {
	old := h.docs
	n := len(old)
	item := old[n-1]
	h.docs = old[:n-1]
	return item
}
