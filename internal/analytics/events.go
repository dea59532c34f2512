// Package analytics tracks search traffic. The searcher publishes an Event per
// request through Collector; the analytics service consumes them and folds
// them into an Aggregator.
package analytics

import "time"

type EventType string

const (
	EventSearch    EventType = "search"
	EventRecommend EventType = "recommend"
)

// Event describes one served search or recommendation request. For
// recommendations Query holds the rendered filter.
type Event struct {
	Type      EventType `json:"type"`
	Model     string    `json:"model"`
	Query     string    `json:"query"`
	K         int       `json:"k"`
	Returned  int       `json:"returned"`
	TopDocID  int       `json:"top_doc_id"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// ZeroResult reports whether the request returned nothing.
func (e Event) ZeroResult() bool {
	return e.Returned == 0
}
