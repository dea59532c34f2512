package handler

import (
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/dataset"
	"github.com/Adithya-Monish-Kumar-K/Food-Retrieval-Engine/internal/evaluation"
)

// Hit is one ranked document with its metadata.
type Hit struct {
	Rank  int     `json:"rank"`
	DocID int     `json:"doc_id"`
	Score float64 `json:"score"`
	dataset.Food
}

type SearchResponse struct {
	Query     string `json:"query"`
	Model     string `json:"model"`
	Results   []Hit  `json:"results"`
	CacheHit  bool   `json:"cache_hit"`
	LatencyMs int64  `json:"latency_ms"`
}

type RecommendFilter struct {
	Category  string  `json:"category,omitempty"`
	Diet      string  `json:"diet,omitempty"`
	MinRating float64 `json:"min_rating,omitempty"`
}

// RecommendResponse holds the most representative dish of the filtered set
// and the runners-up. Main is nil when nothing passes the filter.
type RecommendResponse struct {
	Filter     RecommendFilter `json:"filter"`
	Candidates int             `json:"candidates"`
	Main       *Hit            `json:"main"`
	Others     []Hit           `json:"others"`
}

// EvaluateRequest scores a ranked list against gold relevance.
type EvaluateRequest struct {
	Retrieved []int `json:"retrieved" validate:"max=10000,dive,min=0"`
	Relevant  []int `json:"relevant" validate:"max=10000,dive,min=0"`
	K         int   `json:"k" validate:"required,min=1,max=1000"`
}

type EvaluateResponse struct {
	evaluation.Report
}

type CategoriesResponse struct {
	Categories []string `json:"categories"`
}
