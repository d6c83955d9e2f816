// Package ai wraps the language model behind a capability interface with
// explicit errors. Callers always have a deterministic fallback; nothing
// in the service is correct only when the model answers.
package ai

import (
	"context"
	"time"

	"spendlog/internal/core"
)

// ParsedExpense is the extractor's best-effort structured guess for one
// free-text expense line.
type ParsedExpense struct {
	Amount      core.Money
	Currency    string
	Category    core.Category
	Description string
	Tags        []string
	Notes       string
	Timestamp   time.Time
}

// QueryIntent mirrors the analytics intent enumeration so the model can
// be asked to classify questions the keyword rules cannot.
type QueryIntent string

const (
	IntentTotal      QueryIntent = "total"
	IntentByCategory QueryIntent = "by_category"
	IntentTrend      QueryIntent = "trend"
	IntentComparison QueryIntent = "comparison"
)

// QueryInterpretation is the model's reading of an analytics question.
// The second range is only set for comparisons.
type QueryInterpretation struct {
	Intent      QueryIntent
	Start       time.Time
	End         time.Time
	StartB      time.Time
	EndB        time.Time
	Granularity string // day, week or month; empty when not a trend
	Category    *core.Category
}

// Extractor is the capability port for the hosted model.
type (
	ExpenseParser interface {
		// Extract turns free text into a structured expense guess.
		// now anchors relative time expressions ("at 12:30", "yesterday").
		Extract(ctx context.Context, text string, now time.Time) (ParsedExpense, error)
	}

	Summarizer interface {
		// Summarize phrases a numeric analytics result as short prose.
		Summarize(ctx context.Context, facts string) (string, error)
	}

	QueryInterpreter interface {
		// InterpretQuery classifies an analytics question and resolves
		// its time parameters relative to now.
		InterpretQuery(ctx context.Context, query string, now time.Time) (QueryInterpretation, error)
	}

	Extractor interface {
		ExpenseParser
		Summarizer
		QueryInterpreter
	}
)
