// Package tfidf implements the vector space retrieval model: a TF-IDF
// weighted term-document matrix ranked by cosine similarity.
//
// Weights use raw term counts scaled by the smoothed inverse document
// frequency ln((1+N)/(1+df)) + 1, and every document row is L2-normalised.
// Terms come from tokenizer.Terms, so English stop-words and single
// characters never enter the vocabulary.
package tfidf

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/merger"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
)

// Entry is one non-zero cell of a sparse vector.
type Entry struct {
	Term   int
	Weight float64
}

// Vector is a sparse vector over the fitted vocabulary, sorted by term index.
type Vector []Entry

// Norm returns the Euclidean length of v.
func (v Vector) Norm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.Weight * e.Weight
	}
	return math.Sqrt(sum)
}

// Dot returns the inner product of two term-sorted vectors.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v) && j < len(o) {
		switch {
		case v[i].Term == o[j].Term:
			sum += v[i].Weight * o[j].Weight
			i++
			j++
		case v[i].Term < o[j].Term:
			i++
		default:
			j++
		}
	}
	return sum
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// has zero norm.
func Cosine(a, b Vector) float64 {
	na, nb := a.Norm(), b.Norm()
	if na == 0 || nb == 0 {
		return 0
	}
	return ranker.ClampScore(a.Dot(b) / (na * nb))
}

// Vectorizer is the fitted vocabulary and IDF table. It is immutable after
// Fit and safe to share between goroutines.
type Vectorizer struct {
	vocabulary map[string]int
	terms      []string
	idf        []float64
}

// Fit learns the vocabulary and IDF weights from documents.
func Fit(documents []string) *Vectorizer {
	docFreq := make(map[string]int)
	for _, doc := range documents {
		seen := make(map[string]struct{})
		for _, term := range tokenizer.Terms(doc) {
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			docFreq[term]++
		}
	}
	terms := make([]string, 0, len(docFreq))
	for term := range docFreq {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(documents))
	v := &Vectorizer{
		vocabulary: make(map[string]int, len(terms)),
		terms:      terms,
		idf:        make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocabulary[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return v
}

// Transform projects text into the fitted vocabulary. Unknown terms are
// dropped; the result is L2-normalised, or empty when nothing matched.
func (v *Vectorizer) Transform(text string) Vector {
	counts := make(map[int]float64)
	for _, term := range tokenizer.Terms(text) {
		if idx, ok := v.vocabulary[term]; ok {
			counts[idx]++
		}
	}
	vec := make(Vector, 0, len(counts))
	for idx, tf := range counts {
		vec = append(vec, Entry{Term: idx, Weight: tf * v.idf[idx]})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Term < vec[j].Term })
	return normalize(vec)
}

// VocabularySize returns the number of fitted terms.
func (v *Vectorizer) VocabularySize() int {
	return len(v.terms)
}

// IDF returns the inverse document frequency of term and whether the term is
// in the vocabulary.
func (v *Vectorizer) IDF(term string) (float64, bool) {
	idx, ok := v.vocabulary[term]
	if !ok {
		return 0, false
	}
	return v.idf[idx], true
}

// Term returns the vocabulary term at index i.
func (v *Vectorizer) Term(i int) string {
	return v.terms[i]
}

func normalize(vec Vector) Vector {
	norm := vec.Norm()
	if norm == 0 {
		return Vector{}
	}
	for i := range vec {
		vec[i].Weight /= norm
	}
	return vec
}

// Index is a fitted vectorizer with the term-document matrix it produced.
type Index struct {
	vectorizer *Vectorizer
	rows       []Vector
}

// Build fits a vectorizer over documents and transforms each of them into a
// matrix row. Documents without recognised terms get an all-zero row.
func Build(documents []string) *Index {
	vz := Fit(documents)
	rows := make([]Vector, len(documents))
	for i, doc := range documents {
		rows[i] = vz.Transform(doc)
	}
	return &Index{vectorizer: vz, rows: rows}
}

// Vectorizer returns the fitted vectorizer.
func (x *Index) Vectorizer() *Vectorizer {
	return x.vectorizer
}

// DocCount returns the number of matrix rows.
func (x *Index) DocCount() int {
	return len(x.rows)
}

// Row returns a copy of document docID's weight vector.
func (x *Index) Row(docID int) Vector {
	if docID < 0 || docID >= len(x.rows) {
		return Vector{}
	}
	return append(Vector(nil), x.rows[docID]...)
}

// Similarity returns the cosine similarity between two documents.
func (x *Index) Similarity(a, b int) float64 {
	if a < 0 || a >= len(x.rows) || b < 0 || b >= len(x.rows) {
		return 0
	}
	return Cosine(x.rows[a], x.rows[b])
}

// Search ranks every document against query by cosine similarity and returns
// the best k. A query without recognised terms scores every document 0.
func (x *Index) Search(query string, k int, tb ranker.TieBreak) []ranker.ScoredDoc {
	q := x.vectorizer.Transform(query)
	scored := make([]ranker.ScoredDoc, len(x.rows))
	for id, row := range x.rows {
		scored[id] = ranker.ScoredDoc{DocID: id, Score: Cosine(q, row)}
	}
	return merger.TopK(scored, k, tb)
}

// RankByCentroid ranks the documents in ids against the element-wise mean of
// their own rows and returns the best k of them. It answers "which member is
// most representative of this group", not a global query. Identifiers
// outside the collection are ignored and duplicates count once.
func (x *Index) RankByCentroid(ids []int, k int, tb ranker.TieBreak) []ranker.ScoredDoc {
	members := make([]int, 0, len(ids))
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if id < 0 || id >= len(x.rows) {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	if len(members) == 0 {
		return []ranker.ScoredDoc{}
	}
	centroid := x.centroid(members)
	scored := make([]ranker.ScoredDoc, len(members))
	for i, id := range members {
		scored[i] = ranker.ScoredDoc{DocID: id, Score: Cosine(centroid, x.rows[id])}
	}
	return merger.TopK(scored, k, tb)
}

// Centroid returns the element-wise mean of the rows of ids.
func (x *Index) Centroid(ids []int) Vector {
	valid := make([]int, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(x.rows) {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return Vector{}
	}
	return x.centroid(valid)
}

func (x *Index) centroid(ids []int) Vector {
	sums := make(map[int]float64)
	for _, id := range ids {
		for _, e := range x.rows[id] {
			sums[e.Term] += e.Weight
		}
	}
	n := float64(len(ids))
	vec := make(Vector, 0, len(sums))
	for term, sum := range sums {
		vec = append(vec, Entry{Term: term, Weight: sum / n})
	}
	sort.Slice(vec, func(i, j int) bool { return vec[i].Term < vec[j].Term })
	return vec
}
