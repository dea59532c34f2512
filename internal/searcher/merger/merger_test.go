package merger

import (
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
)

func TestTopKMatchesFullSort(t *testing.T) {
	docs := []ranker.ScoredDoc{
		{DocID: 0, Score: 0.1}, {DocID: 1, Score: 0.7}, {DocID: 2, Score: 0.7},
		{DocID: 3, Score: 0.9}, {DocID: 4, Score: 0}, {DocID: 5, Score: 0.3},
	}
	for k := 0; k <= len(docs)+2; k++ {
		sorted := append([]ranker.ScoredDoc(nil), docs...)
		ranker.Sort(sorted, nil)
		want := ranker.Truncate(sorted, k)
		got := TopK(docs, k, nil)
		if !reflect.DeepEqual(got, want) {
			t.Errorf("TopK(k=%d) = %v, want %v", k, got, want)
		}
	}
}

func TestTopKDoesNotModifyInput(t *testing.T) {
	docs := []ranker.ScoredDoc{{DocID: 0, Score: 0.2}, {DocID: 1, Score: 0.8}}
	TopK(docs, 1, nil)
	if docs[0].DocID != 0 || docs[1].DocID != 1 {
		t.Errorf("input reordered: %v", docs)
	}
}

func TestTopKTieBreak(t *testing.T) {
	docs := []ranker.ScoredDoc{{DocID: 0, Score: 0.5}, {DocID: 1, Score: 0.5}, {DocID: 2, Score: 0.5}}
	rating := []float64{1, 3, 2}
	got := TopK(docs, 2, func(id int) float64 { return rating[id] })
	want := []ranker.ScoredDoc{{DocID: 1, Score: 0.5}, {DocID: 2, Score: 0.5}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TopK = %v, want %v", got, want)
	}
}
