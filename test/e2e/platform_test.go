// Package e2e contains end-to-end tests against a running searcher started
// with the sample dataset:
//
//	go run ./cmd/searcher -config configs/development.yaml
//	go test -v -timeout=60s ./test/e2e/...
//
// Tests skip when the service is unreachable.
package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"os"
	"testing"
	"time"
)

func searcherURL() string {
	if v := os.Getenv("E2E_SEARCHER_URL"); v != "" {
		return v
	}
	return "http://localhost:8080"
}

func client(t *testing.T) *http.Client {
	t.Helper()
	c := &http.Client{Timeout: 5 * time.Second}
	resp, err := c.Get(searcherURL() + "/health/live")
	if err != nil {
		t.Skipf("searcher unavailable: %v", err)
	}
	resp.Body.Close()
	return c
}

func getJSON(t *testing.T, c *http.Client, path string, v any) int {
	t.Helper()
	resp, err := c.Get(searcherURL() + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.Unmarshal(body, v); err != nil {
			t.Fatalf("decoding %s: %v (%s)", path, err, body)
		}
	}
	return resp.StatusCode
}

type hit struct {
	Rank   int     `json:"rank"`
	DocID  int     `json:"doc_id"`
	Score  float64 `json:"score"`
	Name   string  `json:"name"`
	FoodID string  `json:"food_id"`
}

func TestHealth(t *testing.T) {
	c := client(t)
	for _, path := range []string{"/health/live", "/health/ready"} {
		if code := getJSON(t, c, path, nil); code != http.StatusOK {
			t.Errorf("%s = %d", path, code)
		}
	}
}

func TestSearchBothModels(t *testing.T) {
	c := client(t)
	for _, model := range []string{"vsm", "boolean"} {
		t.Run(model, func(t *testing.T) {
			var resp struct {
				Model   string `json:"model"`
				Results []hit  `json:"results"`
			}
			q := url.Values{"q": {"chicken"}, "model": {model}, "k": {"5"}}
			if code := getJSON(t, c, "/api/v1/search?"+q.Encode(), &resp); code != http.StatusOK {
				t.Fatalf("status = %d", code)
			}
			if resp.Model != model || len(resp.Results) > 5 {
				t.Errorf("resp = %+v", resp)
			}
			seen := map[string]bool{}
			for i, h := range resp.Results {
				if h.Score < 0 || h.Score > 1 {
					t.Errorf("score out of range: %+v", h)
				}
				if i > 0 && resp.Results[i-1].Score < h.Score {
					t.Errorf("results not sorted: %+v", resp.Results)
				}
				if seen[h.FoodID] {
					t.Errorf("duplicate food %s", h.FoodID)
				}
				seen[h.FoodID] = true
			}
		})
	}
}

func TestRecommendAndEvaluate(t *testing.T) {
	c := client(t)
	var rec struct {
		Candidates int   `json:"candidates"`
		Main       *hit  `json:"main"`
		Others     []hit `json:"others"`
	}
	if code := getJSON(t, c, "/api/v1/recommend?k=5", &rec); code != http.StatusOK {
		t.Fatalf("recommend status = %d", code)
	}
	if rec.Candidates > 0 && rec.Main == nil {
		t.Errorf("no main recommendation for %d candidates", rec.Candidates)
	}

	body, _ := json.Marshal(map[string]any{"retrieved": []int{2, 0, 1}, "relevant": []int{0, 1}, "k": 3})
	resp, err := c.Post(searcherURL()+"/api/v1/evaluate", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var report struct {
		MAP float64 `json:"map"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		t.Fatal(err)
	}
	if report.MAP < 0.583 || report.MAP > 0.584 {
		t.Errorf("map = %v, want 0.5833", report.MAP)
	}
}
