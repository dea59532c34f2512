// Package index implements the inverted index behind the Boolean retrieval
// model. Document identifiers are ordinal positions in the input collection
// and posting sets are roaring bitmaps.
package index

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/parser"
)

// InvertedIndex maps each token to the documents containing it. It is built
// once and never mutated, so concurrent reads need no locking.
type InvertedIndex struct {
	postings map[string]*roaring.Bitmap
	all      *roaring.Bitmap
	docCount int
}

// Build indexes documents by their position in the slice. Every token comes
// from tokenizer.Words, the same routine used at query time.
func Build(documents []string) *InvertedIndex {
	idx := &InvertedIndex{
		postings: make(map[string]*roaring.Bitmap),
		all:      roaring.New(),
		docCount: len(documents),
	}
	for docID, text := range documents {
		idx.all.Add(uint32(docID))
		seen := make(map[string]struct{})
		for _, token := range tokenizer.Words(text) {
			if _, dup := seen[token]; dup {
				continue
			}
			seen[token] = struct{}{}
			p, ok := idx.postings[token]
			if !ok {
				p = roaring.New()
				idx.postings[token] = p
			}
			p.Add(uint32(docID))
		}
	}
	for _, p := range idx.postings {
		p.RunOptimize()
	}
	return idx
}

// Postings returns a copy of the posting set for term. Missing terms yield an
// empty set.
func (m *InvertedIndex) Postings(term string) *PostingSet {
	p, ok := m.postings[term]
	if !ok {
		return roaring.New()
	}
	return p.Clone()
}

// All returns a copy of the set of every document identifier.
func (m *InvertedIndex) All() *PostingSet {
	return m.all.Clone()
}

// Evaluate applies the plan's clauses strictly left to right, starting from
// the full document set. There is no operator precedence.
func (m *InvertedIndex) Evaluate(plan *parser.QueryPlan) []int {
	result := m.all.Clone()
	for _, clause := range plan.Clauses {
		postings, ok := m.postings[clause.Term]
		if !ok {
			postings = roaring.New()
		}
		switch clause.Op {
		case parser.OpAnd:
			result.And(postings)
		case parser.OpOr:
			result.Or(postings)
		case parser.OpNot:
			result.AndNot(postings)
		}
	}
	return IDs(result)
}

// Terms returns every indexed term with its document frequency, sorted by
// term.
func (m *InvertedIndex) Terms() []TermEntry {
	entries := make([]TermEntry, 0, len(m.postings))
	for term, p := range m.postings {
		entries = append(entries, TermEntry{Term: term, DocFreq: int(p.GetCardinality())})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// DocCount returns the number of documents the index was built from.
func (m *InvertedIndex) DocCount() int {
	return m.docCount
}

// TermCount returns the vocabulary size.
func (m *InvertedIndex) TermCount() int {
	return len(m.postings)
}
