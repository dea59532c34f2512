package indexer

import (
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/tfidf"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
)

// Searcher is the contract shared by every retrieval model.
type Searcher interface {
	Search(query string, k int) []ranker.ScoredDoc
	DocCount() int
}

var (
	_ Searcher = (*BooleanEngine)(nil)
	_ Searcher = (*VSMEngine)(nil)
)

// BooleanEngine answers set-algebra queries over an inverted index.
type BooleanEngine struct {
	index  *index.InvertedIndex
	logger *slog.Logger
}

// BuildBoolean indexes documents for the Boolean model.
func BuildBoolean(documents []string) *BooleanEngine {
	start := time.Now()
	e := &BooleanEngine{
		index:  index.Build(documents),
		logger: slog.Default().With("component", "boolean-engine"),
	}
	e.logger.Info("boolean index built",
		"docs", e.index.DocCount(),
		"terms", e.index.TermCount(),
		"elapsed", time.Since(start),
	)
	return e
}

// Match returns every document satisfying query in ascending id order.
func (e *BooleanEngine) Match(query string) []int {
	return e.index.Evaluate(parser.Parse(query))
}

// Search scores each match 1.0 and keeps the first k in id order.
func (e *BooleanEngine) Search(query string, k int) []ranker.ScoredDoc {
	ids := e.Match(query)
	results := make([]ranker.ScoredDoc, 0, len(ids))
	for _, id := range ids {
		results = append(results, ranker.ScoredDoc{DocID: id, Score: 1.0})
	}
	e.logger.Debug("boolean query evaluated", "query", query, "matches", len(ids))
	return ranker.Truncate(results, k)
}

func (e *BooleanEngine) DocCount() int {
	return e.index.DocCount()
}

func (e *BooleanEngine) TermCount() int {
	return e.index.TermCount()
}

// VSMEngine ranks documents by TF-IDF cosine similarity.
type VSMEngine struct {
	index    *tfidf.Index
	tieBreak ranker.TieBreak
	logger   *slog.Logger
}

// BuildVSM fits the TF-IDF model over documents.
func BuildVSM(documents []string) *VSMEngine {
	start := time.Now()
	e := &VSMEngine{
		index:  tfidf.Build(documents),
		logger: slog.Default().With("component", "vsm-engine"),
	}
	e.logger.Info("tf-idf index built",
		"docs", e.index.DocCount(),
		"vocabulary", e.index.Vectorizer().VocabularySize(),
		"elapsed", time.Since(start),
	)
	return e
}

// WithTieBreak returns an engine sharing the same index that breaks score
// ties with tb.
func (e *VSMEngine) WithTieBreak(tb ranker.TieBreak) *VSMEngine {
	return &VSMEngine{index: e.index, tieBreak: tb, logger: e.logger}
}

func (e *VSMEngine) Search(query string, k int) []ranker.ScoredDoc {
	results := e.index.Search(query, k, e.tieBreak)
	e.logger.Debug("vsm query ranked", "query", query, "returned", len(results))
	return results
}

// RankByCentroid ranks the given subset against its own centroid.
func (e *VSMEngine) RankByCentroid(ids []int, k int) []ranker.ScoredDoc {
	return e.index.RankByCentroid(ids, k, e.tieBreak)
}

func (e *VSMEngine) DocCount() int {
	return e.index.DocCount()
}

func (e *VSMEngine) VocabularySize() int {
	return e.index.Vectorizer().VocabularySize()
}
