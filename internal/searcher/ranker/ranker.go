// Package ranker holds the ranked-result type shared by every retrieval model
// together with its ordering, truncation and deduplication helpers.
package ranker

import (
	"math"
	"sort"
)

type ScoredDoc struct {
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
}

// TieBreak returns a secondary sort key for a document; larger values rank
// first when scores are equal.
type TieBreak func(docID int) float64

// KeyFunc maps a document to the key used for deduplication.
type KeyFunc func(docID int) string

// Less reports whether a ranks before b: higher score, then higher tie-break
// value when tb is non-nil, then lower document identifier.
func Less(a, b ScoredDoc, tb TieBreak) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if tb != nil {
		ta, tbv := tb(a.DocID), tb(b.DocID)
		if ta != tbv {
			return ta > tbv
		}
	}
	return a.DocID < b.DocID
}

// Sort orders docs in place by Less.
func Sort(docs []ScoredDoc, tb TieBreak) {
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j], tb)
	})
}

// Truncate returns at most limit leading docs. A non-positive limit yields an
// empty slice.
func Truncate(docs []ScoredDoc, limit int) []ScoredDoc {
	if limit <= 0 {
		return []ScoredDoc{}
	}
	if len(docs) > limit {
		return docs[:limit]
	}
	return docs
}

// Dedup keeps the first doc for each key, preserving order.
func Dedup(docs []ScoredDoc, key KeyFunc) []ScoredDoc {
	if key == nil {
		return docs
	}
	seen := make(map[string]struct{}, len(docs))
	out := make([]ScoredDoc, 0, len(docs))
	for _, d := range docs {
		k := key(d.DocID)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, d)
	}
	return out
}

// ClampScore pins a similarity into [0, 1], absorbing rounding drift.
func ClampScore(s float64) float64 {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
