// Package executor is the search orchestrator: it builds the engine for the
// selected retrieval model and exposes one Search contract for all of them.
package executor

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/errors"
)

// Model selects a retrieval model. The set is closed: every switch over Model
// handles each value explicitly.
type Model int

const (
	ModelBoolean Model = iota
	ModelVSM
)

// Models lists every supported model.
var Models = []Model{ModelBoolean, ModelVSM}

func (m Model) String() string {
	switch m {
	case ModelBoolean:
		return "boolean"
	case ModelVSM:
		return "vsm"
	default:
		return fmt.Sprintf("model(%d)", int(m))
	}
}

// ParseModel maps a selector string to a Model.
func ParseModel(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "boolean":
		return ModelBoolean, nil
	case "vsm":
		return ModelVSM, nil
	default:
		return 0, fmt.Errorf("%w: %q (use boolean or vsm)", apperrors.ErrInvalidModel, name)
	}
}

type SearchResult struct {
	Query   string             `json:"query"`
	Model   string             `json:"model"`
	Results []ranker.ScoredDoc `json:"results"`
}

// Option customises an Executor.
type Option func(*Executor)

// WithTieBreak orders equal-score documents by descending tb(id). Only the
// vector model produces graded scores, so the Boolean model ignores it.
func WithTieBreak(tb ranker.TieBreak) Option {
	return func(e *Executor) { e.tieBreak = tb }
}

// WithDedupKey removes results sharing key(id), keeping the best ranked one.
func WithDedupKey(key ranker.KeyFunc) Option {
	return func(e *Executor) { e.dedupKey = key }
}

type Executor struct {
	model    Model
	engine   indexer.Searcher
	boolean  *indexer.BooleanEngine
	vsm      *indexer.VSMEngine
	tieBreak ranker.TieBreak
	dedupKey ranker.KeyFunc
	logger   *slog.Logger
}

// New builds the engine for model over documents. It fails only for an
// unknown model.
func New(model Model, documents []string, opts ...Option) (*Executor, error) {
	e := &Executor{
		model:  model,
		logger: slog.Default().With("component", "query-executor", "model", model.String()),
	}
	for _, opt := range opts {
		opt(e)
	}
	switch model {
	case ModelBoolean:
		e.boolean = indexer.BuildBoolean(documents)
		e.engine = e.boolean
	case ModelVSM:
		vsm := indexer.BuildVSM(documents)
		if e.tieBreak != nil {
			vsm = vsm.WithTieBreak(e.tieBreak)
		}
		e.vsm = vsm
		e.engine = vsm
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidModel, model)
	}
	return e, nil
}

// NewFromName parses name and calls New.
func NewFromName(name string, documents []string, opts ...Option) (*Executor, error) {
	model, err := ParseModel(name)
	if err != nil {
		return nil, err
	}
	return New(model, documents, opts...)
}

func (e *Executor) Model() Model {
	return e.model
}

func (e *Executor) DocCount() int {
	return e.engine.DocCount()
}

// VocabularySize is the number of distinct indexed terms of the wrapped
// engine.
func (e *Executor) VocabularySize() int {
	switch e.model {
	case ModelVSM:
		return e.vsm.VocabularySize()
	case ModelBoolean:
		return e.boolean.TermCount()
	default:
		return 0
	}
}

// Search runs query against the wrapped engine and returns at most k results.
// It never fails: degenerate queries yield empty or zero-score results.
func (e *Executor) Search(query string, k int) []ranker.ScoredDoc {
	if k <= 0 {
		return []ranker.ScoredDoc{}
	}
	var results []ranker.ScoredDoc
	if e.dedupKey == nil {
		results = e.engine.Search(query, k)
	} else {
		results = ranker.Dedup(e.engine.Search(query, e.engine.DocCount()), e.dedupKey)
		results = ranker.Truncate(results, k)
	}
	e.logger.Debug("query executed", "query", query, "k", k, "results", len(results))
	return results
}

// Execute wraps Search in a SearchResult.
func (e *Executor) Execute(query string, k int) *SearchResult {
	return &SearchResult{
		Query:   query,
		Model:   e.model.String(),
		Results: e.Search(query, k),
	}
}

// Recommend selects the documents accepted by filter and ranks them against
// their own centroid, returning the k most representative. Only the vector
// model supports it.
func (e *Executor) Recommend(filter func(docID int) bool, k int) ([]ranker.ScoredDoc, error) {
	switch e.model {
	case ModelVSM:
	case ModelBoolean:
		return nil, fmt.Errorf("%w: recommend requires the vsm model", apperrors.ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: %s", apperrors.ErrInvalidModel, e.model)
	}
	if k <= 0 {
		return []ranker.ScoredDoc{}, nil
	}
	ids := make([]int, 0)
	for id := 0; id < e.vsm.DocCount(); id++ {
		if filter == nil || filter(id) {
			ids = append(ids, id)
		}
	}
	var results []ranker.ScoredDoc
	if e.dedupKey == nil {
		results = e.vsm.RankByCentroid(ids, k)
	} else {
		results = ranker.Dedup(e.vsm.RankByCentroid(ids, len(ids)), e.dedupKey)
		results = ranker.Truncate(results, k)
	}
	e.logger.Info("recommendation ranked", "candidates", len(ids), "returned", len(results))
	return results, nil
}
