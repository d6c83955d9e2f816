// Package analytics answers natural-language questions about stored
// expenses. A keyword classifier and a deterministic time-range resolver
// handle the common phrasings; the hosted model is the fallback for
// everything else, and a last-resort default keeps the endpoint total.
package analytics

import (
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/core"
)

// TotalStats is the TOTAL payload: sum, record count and average spend
// per calendar day in the range.
type TotalStats struct {
	SumCents       int64 `json:"sum_cents"`
	Count          int   `json:"count"`
	AvgPerDayCents int64 `json:"avg_per_day_cents"`
	DaysInRange    int   `json:"days_in_range"`
}

// CategoryStat is one BY_CATEGORY bucket.
type CategoryStat struct {
	Category core.Category `json:"category"`
	SumCents int64         `json:"sum_cents"`
	Count    int           `json:"count"`
}

// TrendPoint is one TREND bucket. Buckets cover the range with no gaps,
// so SumCents is zero for empty buckets.
type TrendPoint struct {
	BucketStart time.Time `json:"bucket_start"`
	SumCents    int64     `json:"sum_cents"`
}

// ComparisonSide is one half of a COMPARISON. Categories is only set
// when the query asks for a per-category comparison.
type ComparisonSide struct {
	Label      string         `json:"label"`
	Start      time.Time      `json:"start"`
	End        time.Time      `json:"end"`
	Total      TotalStats     `json:"total"`
	Categories []CategoryStat `json:"categories,omitempty"`
}

// Comparison reports both sides plus the percentage delta
// (B - A) / A * 100. When A is zero the delta is undefined and
// NewSpending is set instead.
type Comparison struct {
	A           ComparisonSide `json:"a"`
	B           ComparisonSide `json:"b"`
	DeltaPct    *float64       `json:"delta_pct,omitempty"`
	NewSpending bool           `json:"new_spending"`
}

// Response is the analytics result: the classified intent, the numeric
// payload for that intent, and a prose summary. The numeric payload is
// always present; the summary may be a deterministic template when the
// model is unavailable. Approximate marks best-effort interpretations.
type Response struct {
	Intent      ai.QueryIntent `json:"intent"`
	Approximate bool           `json:"approximate"`
	Currency    string         `json:"currency"`

	Total      *TotalStats    `json:"total,omitempty"`
	Categories []CategoryStat `json:"categories,omitempty"`
	Trend      []TrendPoint   `json:"trend,omitempty"`
	Comparison *Comparison    `json:"comparison,omitempty"`

	Summary string `json:"summary"`
}
