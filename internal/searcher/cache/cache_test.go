package cache

import (
	"context"
	"errors"
	"path"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/searcher/ranker"
)

var errNotFound = errors.New("not found")

type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: map[string][]byte{}}
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errNotFound
	}
	return v, nil
}

func (m *memStore) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memStore) match(pattern string) []string {
	var keys []string
	for k := range m.data {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func (m *memStore) FlushByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := m.match(pattern)
	for _, k := range keys {
		delete(m.data, k)
	}
	return int64(len(keys)), nil
}

func (m *memStore) CountByPattern(_ context.Context, pattern string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.match(pattern))), nil
}

func isMiss(err error) bool { return errors.Is(err, errNotFound) }

func result(query string) *executor.SearchResult {
	return &executor.SearchResult{
		Query:   query,
		Model:   "vsm",
		Results: []ranker.ScoredDoc{{DocID: 2, Score: 0.5}},
	}
}

func TestGetOrCompute(t *testing.T) {
	c := New(newMemStore(), time.Minute, isMiss)
	ctx := context.Background()
	var calls int
	compute := func() (*executor.SearchResult, error) {
		calls++
		return result("spicy curry"), nil
	}

	got, hit, err := c.GetOrCompute(ctx, executor.ModelVSM, "spicy curry", 5, compute)
	if err != nil || hit {
		t.Fatalf("first call: hit=%v err=%v", hit, err)
	}
	if got.Results[0].DocID != 2 {
		t.Errorf("result = %+v", got)
	}
	got, hit, err = c.GetOrCompute(ctx, executor.ModelVSM, "curry  SPICY", 5, compute)
	if err != nil || !hit {
		t.Fatalf("second call: hit=%v err=%v", hit, err)
	}
	if calls != 1 {
		t.Errorf("compute called %d times, want 1", calls)
	}

	stats, err := c.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Hits != 1 || stats.Misses != 1 || stats.Keys != 1 || stats.HitRate != 0.5 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestGetOrComputeCollapsesConcurrentMisses(t *testing.T) {
	c := New(newMemStore(), time.Minute, isMiss)
	var calls atomic.Int32
	release := make(chan struct{})
	compute := func() (*executor.SearchResult, error) {
		calls.Add(1)
		<-release
		return result("mango"), nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCompute(context.Background(), executor.ModelVSM, "mango", 3, compute)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if n := calls.Load(); n < 1 || n > 8 {
		t.Errorf("compute calls = %d", n)
	}
}

func TestComputeErrorIsNotCached(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, isMiss)
	boom := errors.New("boom")
	_, _, err := c.GetOrCompute(context.Background(), executor.ModelBoolean, "curry", 5, func() (*executor.SearchResult, error) {
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Errorf("err = %v", err)
	}
	if len(store.data) != 0 {
		t.Errorf("store = %v, want empty", store.data)
	}
}

func TestInvalidate(t *testing.T) {
	store := newMemStore()
	c := New(store, time.Minute, isMiss)
	ctx := context.Background()
	c.Set(ctx, executor.ModelVSM, "a", 5, result("a"))
	c.Set(ctx, executor.ModelBoolean, "b", 5, result("b"))
	store.data["other:key"] = []byte("x")

	n, err := c.Invalidate(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Invalidate = %d, %v", n, err)
	}
	if _, ok := store.data["other:key"]; !ok {
		t.Error("foreign key deleted")
	}
}

func TestBuildKey(t *testing.T) {
	tests := []struct {
		name  string
		model executor.Model
		a, b  string
		same  bool
	}{
		{"vsm ignores order and stop words", executor.ModelVSM, "spicy curry", "the Curry spicy", true},
		{"vsm keeps term frequency", executor.ModelVSM, "curry", "curry curry", false},
		{"boolean folds case and spacing", executor.ModelBoolean, "curry  NOT fish", "curry not fish", true},
		{"boolean keeps order", executor.ModelBoolean, "curry not fish", "fish not curry", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			same := BuildKey(tt.model, tt.a, 5) == BuildKey(tt.model, tt.b, 5)
			if same != tt.same {
				t.Errorf("same key = %v, want %v", same, tt.same)
			}
		})
	}
	if BuildKey(executor.ModelVSM, "curry", 5) == BuildKey(executor.ModelBoolean, "curry", 5) {
		t.Error("models share a key")
	}
	if BuildKey(executor.ModelVSM, "curry", 5) == BuildKey(executor.ModelVSM, "curry", 6) {
		t.Error("k ignored")
	}
}
