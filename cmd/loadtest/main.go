// Command loadtest drives concurrent search and recommendation traffic at a
// running searcher and prints per-endpoint latency and error statistics.
//
// Usage:
//
//	go run ./cmd/loadtest [-url http://localhost:8080] [-concurrency 10] [-duration 30s]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"
)

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	K           int
}

// request is one entry of the traffic mix.
type request struct {
	endpoint string
	params   url.Values
}

var queries = []string{
	"spicy chicken",
	"chicken curry",
	"sweet dessert",
	"mango",
	"fish not fried",
	"paneer or tofu",
	"rice and lentils",
	"chocolate cake",
	"grilled fish lemon",
	"vegetable soup",
	"noodles spicy sauce",
	"creamy pasta cheese",
}

var recommendFilters = []url.Values{
	{"category": {"Indian"}},
	{"category": {"Dessert"}, "diet": {"veg"}},
	{"diet": {"veg"}, "min_rating": {"5"}},
	{"category": {"Chinese"}},
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "base URL of the search service")
	concurrency := flag.Int("concurrency", 10, "number of concurrent workers")
	duration := flag.Duration("duration", 30*time.Second, "test duration")
	k := flag.Int("k", 10, "results per request")
	flag.Parse()

	cfg := Config{
		BaseURL:     *baseURL,
		Concurrency: *concurrency,
		Duration:    *duration,
		K:           *k,
	}

	fmt.Println("=== Food Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Println()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()
	stats := runLoadTest(ctx, cfg, trafficMix(cfg.K))
	stats.Report(os.Stdout, cfg.Duration)

	if stats.Total() == 0 {
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

// trafficMix interleaves each query over both models with the recommendation
// filters.
func trafficMix(k int) []request {
	mix := make([]request, 0, len(queries)*2+len(recommendFilters))
	for _, q := range queries {
		for _, model := range []string{"vsm", "boolean"} {
			mix = append(mix, request{
				endpoint: "/api/v1/search",
				params:   url.Values{"q": {q}, "model": {model}, "k": {fmt.Sprint(k)}},
			})
		}
	}
	for _, f := range recommendFilters {
		params := url.Values{"k": {fmt.Sprint(k)}}
		for key, v := range f {
			params[key] = v
		}
		mix = append(mix, request{endpoint: "/api/v1/recommend", params: params})
	}
	return mix
}

func runLoadTest(ctx context.Context, cfg Config, mix []request) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	var wg sync.WaitGroup
	for w := 0; w < cfg.Concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ctx.Err() == nil; i++ {
				req := mix[i%len(mix)]
				start := time.Now()
				status, cacheHit, err := do(ctx, client, cfg.BaseURL+req.endpoint+"?"+req.params.Encode())
				if ctx.Err() != nil {
					return
				}
				stats.RecordRequest(req.endpoint, time.Since(start), status, cacheHit, err)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func do(ctx context.Context, client *http.Client, rawURL string) (status int, cacheHit bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, false, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, false, err
	}
	defer resp.Body.Close()

	var body struct {
		CacheHit bool `json:"cache_hit"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		io.Copy(io.Discard, resp.Body)
	}
	return resp.StatusCode, body.CacheHit, nil
}
