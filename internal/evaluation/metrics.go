// Package evaluation scores a retrieved ranking against a gold relevance set.
// All functions are pure and deterministic.
package evaluation

import (
	"fmt"
	"math"

	apperrors "github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/errors"
)

// PrecisionRecallF1 compares retrieved with relevant using set intersection.
// Precision is 0 for an empty retrieved list, recall is 0 for an empty
// relevant list, and F1 is 0 when both are 0.
func PrecisionRecallF1(retrieved, relevant []int) (precision, recall, f1 float64) {
	relevantSet := toSet(relevant)
	truePositive := 0
	for id := range toSet(retrieved) {
		if _, ok := relevantSet[id]; ok {
			truePositive++
		}
	}
	if len(retrieved) > 0 {
		precision = float64(truePositive) / float64(len(retrieved))
	}
	if len(relevant) > 0 {
		recall = float64(truePositive) / float64(len(relevant))
	}
	if precision+recall > 0 {
		f1 = 2 * (precision * recall) / (precision + recall)
	}
	return precision, recall, f1
}

// MAPAtK is average precision over the first k retrieved ids, normalised by
// min(len(relevant), k). It returns ErrUndefinedMetric when relevant is empty
// or k is not positive.
func MAPAtK(retrieved, relevant []int, k int) (float64, error) {
	if len(relevant) == 0 {
		return 0, fmt.Errorf("%w: map@k needs at least one relevant document", apperrors.ErrUndefinedMetric)
	}
	if k <= 0 {
		return 0, fmt.Errorf("%w: map@k needs k > 0, got %d", apperrors.ErrUndefinedMetric, k)
	}
	relevantSet := toSet(relevant)
	var score float64
	hits := 0
	for i, id := range head(retrieved, k) {
		if _, ok := relevantSet[id]; ok {
			hits++
			score += float64(hits) / float64(i+1)
		}
	}
	return score / float64(min(len(relevant), k)), nil
}

// DCGAtK is the binary-gain discounted cumulative gain of the first k ids,
// each hit at zero-based position i contributing 1/log2(i+2).
func DCGAtK(retrieved, relevant []int, k int) float64 {
	relevantSet := toSet(relevant)
	var dcg float64
	for i, id := range head(retrieved, k) {
		if _, ok := relevantSet[id]; ok {
			dcg += 1 / math.Log2(float64(i+2))
		}
	}
	return dcg
}

// NDCGAtK normalises DCGAtK by the DCG of an ideal ranking of the relevant
// set. It is 0 when the ideal DCG is 0 and always lies in [0, 1].
func NDCGAtK(retrieved, relevant []int, k int) float64 {
	ideal := distinct(relevant)
	idealDCG := DCGAtK(ideal, ideal, k)
	if idealDCG == 0 {
		return 0
	}
	return DCGAtK(distinct(retrieved), relevant, k) / idealDCG
}

// Report bundles every metric for one query.
type Report struct {
	K          int     `json:"k"`
	Precision  float64 `json:"precision"`
	Recall     float64 `json:"recall"`
	F1         float64 `json:"f1"`
	MAP        float64 `json:"map"`
	MAPDefined bool    `json:"map_defined"`
	NDCG       float64 `json:"ndcg"`
}

// Evaluate computes a Report. Precision, recall and F1 use the first k
// retrieved ids. MAP is left at 0 with MAPDefined false when undefined.
func Evaluate(retrieved, relevant []int, k int) Report {
	r := Report{K: k}
	r.Precision, r.Recall, r.F1 = PrecisionRecallF1(head(retrieved, k), relevant)
	if m, err := MAPAtK(retrieved, relevant, k); err == nil {
		r.MAP = m
		r.MAPDefined = true
	}
	r.NDCG = NDCGAtK(retrieved, relevant, k)
	return r
}

func head(ids []int, k int) []int {
	if k < 0 {
		k = 0
	}
	if len(ids) > k {
		return ids[:k]
	}
	return ids
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}

func distinct(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
