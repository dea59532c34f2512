// Package handler serves the search, recommendation and evaluation HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/evaluation"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/metrics"
)

// SearchExecutor is implemented by *executor.Executor.
type SearchExecutor interface {
	Execute(query string, k int) *executor.SearchResult
	Recommend(filter func(docID int) bool, k int) ([]ranker.ScoredDoc, error)
}

// Tracker receives one analytics event per served request.
type Tracker interface {
	Track(event analytics.Event)
}

type Handler struct {
	executors    map[executor.Model]SearchExecutor
	collection   *dataset.Collection
	cache        *cache.QueryCache
	tracker      Tracker
	metrics      *metrics.Metrics
	defaultModel executor.Model
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New creates a Handler. queryCache, tracker and m may be nil.
func New(
	executors map[executor.Model]SearchExecutor,
	collection *dataset.Collection,
	cfg config.SearchConfig,
	queryCache *cache.QueryCache,
	tracker Tracker,
	m *metrics.Metrics,
) (*Handler, error) {
	model, err := executor.ParseModel(cfg.DefaultModel)
	if err != nil {
		return nil, fmt.Errorf("default model: %w", err)
	}
	if _, ok := executors[model]; !ok {
		return nil, fmt.Errorf("%w: no executor for default model %s", apperrors.ErrInvalidModel, model)
	}
	return &Handler{
		executors:    executors,
		collection:   collection,
		cache:        queryCache,
		tracker:      tracker,
		metrics:      m,
		defaultModel: model,
		defaultLimit: cfg.DefaultLimit,
		maxResults:   cfg.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}, nil
}

// Routes registers every endpoint on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/recommend", h.Recommend)
	mux.HandleFunc("POST /api/v1/evaluate", h.Evaluate)
	mux.HandleFunc("GET /api/v1/categories", h.Categories)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

// Search serves GET /api/v1/search?q=&k=&model=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	k, err := h.parseK(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	model, exec, err := h.resolve(r.URL.Query().Get("model"))
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	var result *executor.SearchResult
	cacheHit := false
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, model, query, k, func() (*executor.SearchResult, error) {
			return exec.Execute(query, k), nil
		})
		if err != nil {
			log.Error("search execution failed", "query", query, "error", err)
			h.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
	} else {
		result = exec.Execute(query, k)
	}

	latency := time.Since(start)
	h.observeSearch(model, result, cacheHit, latency)
	log.Info("search completed",
		"query", query,
		"model", model.String(),
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", latency.Milliseconds(),
	)
	h.track(r, analytics.Event{
		Type:      analytics.EventSearch,
		Model:     model.String(),
		Query:     query,
		K:         k,
		Returned:  len(result.Results),
		TopDocID:  topDocID(result.Results),
		LatencyMs: latency.Milliseconds(),
		CacheHit:  cacheHit,
	})

	h.writeJSON(w, http.StatusOK, SearchResponse{
		Query:     query,
		Model:     model.String(),
		Results:   h.hits(result.Results),
		CacheHit:  cacheHit,
		LatencyMs: latency.Milliseconds(),
	})
}

// Recommend serves GET /api/v1/recommend?category=&diet=&min_rating=&k=.
// The filtered dishes are ranked against their own centroid; the first is
// the main recommendation.
func (h *Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())
	q := r.URL.Query()

	filter := RecommendFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Diet:     strings.TrimSpace(q.Get("diet")),
	}
	if v := q.Get("min_rating"); v != "" {
		rating, err := strconv.ParseFloat(v, 64)
		if err != nil || rating < 0 {
			h.writeError(w, http.StatusBadRequest, "min_rating must be a non-negative number")
			return
		}
		filter.MinRating = rating
	}
	k, err := h.parseK(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	modelName := q.Get("model")
	if modelName == "" {
		modelName = executor.ModelVSM.String()
	}
	model, exec, err := h.resolve(modelName)
	if err != nil {
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	match := h.collection.Match(dataset.Filter{
		Category:  filter.Category,
		Diet:      filter.Diet,
		MinRating: filter.MinRating,
	})
	candidates := 0
	for id := 0; id < h.collection.Len(); id++ {
		if match(id) {
			candidates++
		}
	}

	results, err := exec.Recommend(match, k)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		h.observeRecommend("error")
		log.Warn("recommendation failed", "model", model.String(), "error", err, "status_code", status)
		h.writeError(w, status, err.Error())
		return
	}

	resp := RecommendResponse{Filter: filter, Candidates: candidates, Others: []Hit{}}
	hits := h.hits(results)
	if len(hits) > 0 {
		resp.Main = &hits[0]
		resp.Others = hits[1:]
		h.observeRecommend("ok")
	} else {
		h.observeRecommend("empty_filter")
	}

	latency := time.Since(start)
	log.Info("recommendation served",
		"category", filter.Category,
		"diet", filter.Diet,
		"candidates", candidates,
		"returned", len(hits),
		"latency_ms", latency.Milliseconds(),
	)
	h.track(r, analytics.Event{
		Type:      analytics.EventRecommend,
		Model:     model.String(),
		Query:     renderFilter(filter),
		K:         k,
		Returned:  len(hits),
		TopDocID:  topDocID(results),
		LatencyMs: latency.Milliseconds(),
	})
	h.writeJSON(w, http.StatusOK, resp)
}

// Evaluate serves POST /api/v1/evaluate.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := validateStruct(&req); err != nil {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			h.writeJSON(w, http.StatusBadRequest, map[string]any{
				"error":  "validation failed",
				"fields": validationErr.Fields,
			})
			return
		}
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, EvaluateResponse{Report: evaluation.Evaluate(req.Retrieved, req.Relevant, req.K)})
}

// Categories serves GET /api/v1/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, CategoriesResponse{Categories: h.collection.Categories()})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	stats, err := h.cache.Stats(r.Context())
	if err != nil {
		h.logger.Warn("cache key count unavailable", "error", err)
	}
	h.writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) resolve(name string) (executor.Model, SearchExecutor, error) {
	model := h.defaultModel
	if name != "" {
		var err error
		if model, err = executor.ParseModel(name); err != nil {
			return 0, nil, err
		}
	}
	exec, ok := h.executors[model]
	if !ok {
		return 0, nil, fmt.Errorf("%w: %s is not loaded", apperrors.ErrInvalidModel, model)
	}
	return model, exec, nil
}

// parseK reads k, falling back to the default and capping at maxResults.
func (h *Handler) parseK(r *http.Request) (int, error) {
	v := r.URL.Query().Get("k")
	if v == "" {
		return h.defaultLimit, nil
	}
	k, err := strconv.Atoi(v)
	if err != nil || k < 1 {
		return 0, fmt.Errorf("k must be a positive integer")
	}
	return min(k, h.maxResults), nil
}

func (h *Handler) hits(results []ranker.ScoredDoc) []Hit {
	hits := make([]Hit, 0, len(results))
	for i, d := range results {
		food, _ := h.collection.Meta(d.DocID)
		hits = append(hits, Hit{Rank: i + 1, DocID: d.DocID, Score: d.Score, Food: food})
	}
	return hits
}

func (h *Handler) observeSearch(model executor.Model, result *executor.SearchResult, cacheHit bool, latency time.Duration) {
	if h.metrics == nil {
		return
	}
	resultType := "hit"
	if len(result.Results) == 0 {
		resultType = "zero_result"
	}
	cacheStatus := "disabled"
	if h.cache != nil {
		cacheStatus = "miss"
		if cacheHit {
			cacheStatus = "hit"
			h.metrics.CacheHitsTotal.Inc()
		} else {
			h.metrics.CacheMissesTotal.Inc()
		}
	}
	h.metrics.SearchQueriesTotal.WithLabelValues(model.String(), resultType).Inc()
	h.metrics.SearchLatency.WithLabelValues(model.String(), cacheStatus).Observe(latency.Seconds())
	h.metrics.SearchResultsCount.WithLabelValues(model.String()).Observe(float64(len(result.Results)))
}

func (h *Handler) observeRecommend(outcome string) {
	if h.metrics != nil {
		h.metrics.RecommendTotal.WithLabelValues(outcome).Inc()
	}
}

func (h *Handler) track(r *http.Request, event analytics.Event) {
	if h.tracker == nil {
		return
	}
	event.Timestamp = time.Now().UTC()
	event.RequestID = logger.RequestID(r.Context())
	h.tracker.Track(event)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func topDocID(results []ranker.ScoredDoc) int {
	if len(results) == 0 {
		return -1
	}
	return results[0].DocID
}

func renderFilter(f RecommendFilter) string {
	parts := make([]string, 0, 3)
	if f.Category != "" {
		parts = append(parts, "category="+strings.ToLower(f.Category))
	}
	if f.Diet != "" {
		parts = append(parts, "diet="+strings.ToLower(f.Diet))
	}
	if f.MinRating > 0 {
		parts = append(parts, "min_rating="+strconv.FormatFloat(f.MinRating, 'g', -1, 64))
	}
	return strings.Join(parts, " ")
}
