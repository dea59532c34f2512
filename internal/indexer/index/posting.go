package index

import (
	"github.com/RoaringBitmap/roaring/v2"
)

// PostingSet is the set of document identifiers containing a term.
type PostingSet = roaring.Bitmap

// TermEntry pairs a term with the number of documents containing it.
type TermEntry struct {
	Term    string
	DocFreq int
}

// IDs returns the members of set in ascending order.
func IDs(set *PostingSet) []int {
	if set == nil || set.IsEmpty() {
		return []int{}
	}
	out := make([]int, 0, set.GetCardinality())
	it := set.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}
