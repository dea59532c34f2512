// Package cache memoises search results in Redis. Concurrent misses for the
// same key are collapsed with singleflight so each result is computed once.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/executor"
)

const keyPrefix = "search:"

// Store is the subset of the Redis client the cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
	CountByPattern(ctx context.Context, pattern string) (int64, error)
}

// Stats summarises cache effectiveness since startup.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Keys    int64   `json:"keys"`
}

type QueryCache struct {
	store  Store
	ttl    time.Duration
	isMiss func(error) bool
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache over store. isMiss reports whether a Get error means
// the key is absent rather than a backend failure.
func New(store Store, ttl time.Duration, isMiss func(error) bool) *QueryCache {
	return &QueryCache{
		store:  store,
		ttl:    ttl,
		isMiss: isMiss,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, model executor.Model, query string, k int) (*executor.SearchResult, bool) {
	key := BuildKey(model, query, k)
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !c.isMiss(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, model executor.Model, query string, k int, result *executor.SearchResult) {
	key := BuildKey(model, query, k)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes, stores, and returns it.
// The bool reports a cache hit.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	model executor.Model,
	query string,
	k int,
	computeFn func() (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, model, query, k); ok {
		return result, true, nil
	}
	key := BuildKey(model, query, k)
	val, err, _ := c.group.Do(key, func() (any, error) {
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, model, query, k, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate deletes every cached result and returns how many were removed.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.store.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats(ctx context.Context) (Stats, error) {
	s := Stats{Hits: c.hits.Load(), Misses: c.misses.Load()}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	keys, err := c.store.CountByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return s, fmt.Errorf("counting cache keys: %w", err)
	}
	s.Keys = keys
	return s, nil
}

// BuildKey derives the cache key for a query. Queries that every model would
// answer identically share a key.
func BuildKey(model executor.Model, query string, k int) string {
	raw := fmt.Sprintf("%s|%s|k=%d", model, normalizeQuery(model, query), k)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%s:%x", keyPrefix, model, hash[:16])
}

// normalizeQuery canonicalises query for model. Boolean clauses apply left
// to right, so only case and spacing are folded; the vector model sees a bag
// of terms, so its analyzed terms are sorted.
func normalizeQuery(model executor.Model, query string) string {
	switch model {
	case executor.ModelBoolean:
		return strings.Join(strings.Fields(strings.ToLower(query)), " ")
	case executor.ModelVSM:
		terms := tokenizer.Terms(query)
		sort.Strings(terms)
		return strings.Join(terms, " ")
	default:
		return query
	}
}
