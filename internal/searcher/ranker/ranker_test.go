package ranker

import (
	"math"
	"reflect"
	"strconv"
	"testing"
)

func TestSortTieBreaks(t *testing.T) {
	docs := []ScoredDoc{
		{DocID: 3, Score: 0.5},
		{DocID: 1, Score: 0.9},
		{DocID: 0, Score: 0.5},
		{DocID: 2, Score: 0.5},
	}
	Sort(docs, nil)
	want := []ScoredDoc{{1, 0.9}, {0, 0.5}, {2, 0.5}, {3, 0.5}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Sort without tie-break = %v, want %v", docs, want)
	}

	rating := map[int]float64{0: 4, 2: 9, 3: 9}
	Sort(docs, func(id int) float64 { return rating[id] })
	want = []ScoredDoc{{1, 0.9}, {2, 0.5}, {3, 0.5}, {0, 0.5}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Sort with tie-break = %v, want %v", docs, want)
	}
}

func TestTruncate(t *testing.T) {
	docs := []ScoredDoc{{0, 1}, {1, 1}, {2, 1}}
	if got := Truncate(docs, 2); len(got) != 2 {
		t.Errorf("Truncate(2) len = %d", len(got))
	}
	if got := Truncate(docs, 10); len(got) != 3 {
		t.Errorf("Truncate(10) len = %d", len(got))
	}
	if got := Truncate(docs, 0); len(got) != 0 {
		t.Errorf("Truncate(0) len = %d", len(got))
	}
}

func TestDedupKeepsFirst(t *testing.T) {
	docs := []ScoredDoc{{0, 0.9}, {1, 0.8}, {2, 0.7}, {3, 0.6}}
	key := func(id int) string { return strconv.Itoa(id % 2) }
	got := Dedup(docs, key)
	want := []ScoredDoc{{0, 0.9}, {1, 0.8}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup = %v, want %v", got, want)
	}
	if got := Dedup(docs, nil); len(got) != 4 {
		t.Errorf("Dedup(nil key) len = %d", len(got))
	}
}

func TestClampScore(t *testing.T) {
	cases := map[float64]float64{-0.1: 0, 0.4: 0.4, 1.0000000002: 1, math.NaN(): 0}
	for in, want := range cases {
		if got := ClampScore(in); got != want {
			t.Errorf("ClampScore(%v) = %v, want %v", in, got, want)
		}
	}
}
