package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/pkg/kafka"
)

type fakePublisher struct {
	mu      sync.Mutex
	batches [][]kafka.Event
}

func (p *fakePublisher) PublishBatch(_ context.Context, events []kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.batches = append(p.batches, events)
	return nil
}

func (p *fakePublisher) events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Event
	for _, b := range p.batches {
		for _, e := range b {
			out = append(out, e.Value.(Event))
		}
	}
	return out
}

func TestCollectorFlushesOnBatchSizeAndClose(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16, 2, time.Hour)
	c.Start(context.Background())

	for _, q := range []string{"curry", "mango", "lassi"} {
		c.Track(Event{Type: EventSearch, Model: "vsm", Query: q, Returned: 1})
	}
	c.Close()

	got := pub.events()
	if len(got) != 3 {
		t.Fatalf("published %d events, want 3", len(got))
	}
	if got[0].Query != "curry" || got[2].Query != "lassi" {
		t.Errorf("order = %+v", got)
	}
	if len(pub.batches) != 2 {
		t.Errorf("batches = %d, want 2 (one full, one final)", len(pub.batches))
	}
}

func TestCollectorFlushesOnInterval(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 16, 100, 10*time.Millisecond)
	c.Start(context.Background())
	defer c.Close()

	c.Track(Event{Type: EventSearch, Model: "boolean", Query: "curry"})
	deadline := time.Now().Add(time.Second)
	for len(pub.events()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if len(pub.events()) != 1 {
		t.Errorf("interval flush did not publish")
	}
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &fakePublisher{}
	c := NewCollector(pub, 1, 10, time.Hour)
	c.Track(Event{Query: "a"})
	c.Track(Event{Query: "b"})
	c.Start(context.Background())
	c.Close()
	if got := pub.events(); len(got) != 1 || got[0].Query != "a" {
		t.Errorf("events = %+v", got)
	}
}

func TestAggregatorStats(t *testing.T) {
	agg := NewAggregator()
	agg.Record(Event{Type: EventSearch, Model: "vsm", Query: "curry", Returned: 5, LatencyMs: 2})
	agg.Record(Event{Type: EventSearch, Model: "vsm", Query: "curry", Returned: 5, LatencyMs: 4, CacheHit: true})
	agg.Record(Event{Type: EventSearch, Model: "boolean", Query: "pizza", Returned: 0, LatencyMs: 6})
	agg.Record(Event{Type: EventRecommend, Model: "vsm", Query: "category=indian", Returned: 3, LatencyMs: 8})

	s := agg.Stats()
	if s.TotalSearches != 3 || s.TotalRecommends != 1 {
		t.Errorf("totals = %d/%d", s.TotalSearches, s.TotalRecommends)
	}
	if s.SearchesByModel["vsm"] != 2 || s.SearchesByModel["boolean"] != 1 {
		t.Errorf("by model = %v", s.SearchesByModel)
	}
	if s.CacheHits != 1 || s.CacheMisses != 2 {
		t.Errorf("cache = %d/%d", s.CacheHits, s.CacheMisses)
	}
	if s.ZeroResultCount != 1 || s.ZeroResultQueries[0].Query != "pizza" {
		t.Errorf("zero results = %d %v", s.ZeroResultCount, s.ZeroResultQueries)
	}
	if s.TopQueries[0] != (QueryCount{Query: "curry", Count: 2}) {
		t.Errorf("top = %v", s.TopQueries)
	}
	if s.AvgLatencyMs != 5 || s.P50LatencyMs != 6 || s.P99LatencyMs != 8 {
		t.Errorf("latency avg=%v p50=%d p99=%d", s.AvgLatencyMs, s.P50LatencyMs, s.P99LatencyMs)
	}
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator()
	h := HandleEvent(agg)
	value, _ := json.Marshal(Event{Type: EventSearch, Model: "vsm", Query: "dal", Returned: 2})
	if err := h(context.Background(), []byte("vsm"), value); err != nil {
		t.Fatal(err)
	}
	if err := h(context.Background(), nil, []byte("not json")); err != nil {
		t.Errorf("bad message should be skipped, got %v", err)
	}
	if s := agg.Stats(); s.TotalSearches != 1 {
		t.Errorf("total = %d", s.TotalSearches)
	}
}

func TestStatsHandler(t *testing.T) {
	agg := NewAggregator()
	agg.Record(Event{Type: EventSearch, Model: "vsm", Query: "curry", Returned: 1})
	rec := httptest.NewRecorder()
	NewHandler(agg, nil).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics", nil))

	var s AggregatedStats
	if err := json.NewDecoder(rec.Body).Decode(&s); err != nil {
		t.Fatal(err)
	}
	if s.TotalSearches != 1 {
		t.Errorf("stats = %+v", s)
	}
}

type fakeSnapshots struct {
	limit int
	list  []AggregatedStats
}

func (f *fakeSnapshots) ListSnapshots(_ context.Context, limit int) ([]AggregatedStats, error) {
	f.limit = limit
	return f.list, nil
}

func TestSnapshotsHandler(t *testing.T) {
	mux := http.NewServeMux()
	NewHandler(NewAggregator(), nil).Routes(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("disabled snapshots = %d", rec.Code)
	}

	src := &fakeSnapshots{list: []AggregatedStats{{TotalSearches: 7}}}
	mux = http.NewServeMux()
	NewHandler(NewAggregator(), src).Routes(mux)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=10000", nil))
	if rec.Code != http.StatusOK || src.limit != maxSnapshotLimit {
		t.Errorf("status = %d, limit = %d", rec.Code, src.limit)
	}
	var body struct {
		Snapshots []AggregatedStats `json:"snapshots"`
		Count     int               `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || body.Snapshots[0].TotalSearches != 7 {
		t.Errorf("body = %+v", body)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/analytics/snapshots?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d", rec.Code)
	}
}
