package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"sync"
	"time"
)

// Stats collects per-endpoint outcomes of the load test.
type Stats struct {
	mu        sync.Mutex
	endpoints map[string]*endpointStats
}

type endpointStats struct {
	requests    int64
	errors      int64
	cacheHits   int64
	latencies   []time.Duration
	statusCodes map[int]int64
}

func NewStats() *Stats {
	return &Stats{endpoints: make(map[string]*endpointStats)}
}

// RecordRequest stores one result. A non-nil err counts as an error without a
// latency sample.
func (s *Stats) RecordRequest(endpoint string, duration time.Duration, statusCode int, cacheHit bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.endpoints[endpoint]
	if !ok {
		e = &endpointStats{statusCodes: make(map[int]int64)}
		s.endpoints[endpoint] = e
	}
	e.requests++
	if err != nil {
		e.errors++
		return
	}
	if statusCode < 200 || statusCode >= 300 {
		e.errors++
	}
	if cacheHit {
		e.cacheHits++
	}
	e.latencies = append(e.latencies, duration)
	e.statusCodes[statusCode]++
}

// Total returns the number of recorded requests across endpoints.
func (s *Stats) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, e := range s.endpoints {
		n += e.requests
	}
	return n
}

func (s *Stats) Report(w io.Writer, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.endpoints))
	for name := range s.endpoints {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		e := s.endpoints[name]
		fmt.Fprintf(w, "=== %s ===\n", name)
		fmt.Fprintf(w, "Requests:     %d\n", e.requests)
		fmt.Fprintf(w, "Errors:       %d (%.2f%%)\n", e.errors, pct(e.errors, e.requests))
		fmt.Fprintf(w, "Cache hits:   %d (%.2f%%)\n", e.cacheHits, pct(e.cacheHits, e.requests))
		if duration > 0 {
			fmt.Fprintf(w, "Requests/sec: %.2f\n", float64(e.requests)/duration.Seconds())
		}

		latencies := append([]time.Duration(nil), e.latencies...)
		sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
		if len(latencies) > 0 {
			var sum time.Duration
			for _, l := range latencies {
				sum += l
			}
			fmt.Fprintf(w, "Latency:      min %s  avg %s  p50 %s  p95 %s  p99 %s  max %s\n",
				latencies[0],
				sum/time.Duration(len(latencies)),
				percentile(latencies, 50),
				percentile(latencies, 95),
				percentile(latencies, 99),
				latencies[len(latencies)-1],
			)
		}

		codes := make([]int, 0, len(e.statusCodes))
		for code := range e.statusCodes {
			codes = append(codes, code)
		}
		sort.Ints(codes)
		for _, code := range codes {
			fmt.Fprintf(w, "  %d: %d\n", code, e.statusCodes[code])
		}
		fmt.Fprintln(w)
	}
}

func pct(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
