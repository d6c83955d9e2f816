package analytics

import (
	"context"
	"strings"
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/core"
)

// plan is a fully resolved query: intent, concrete range(s), and the
// optional filters. rangeB is only set for comparisons; byCategory is
// the secondary hint asking a comparison for per-category sides.
type plan struct {
	intent      ai.QueryIntent
	rangeA      Range
	rangeB      Range
	granularity string
	category    *core.Category
	byCategory  bool
	approximate bool
}

// classifyKeywords maps obvious phrasings straight to an intent so the
// common cases never pay model latency. confident is false when nothing
// matched and the TOTAL default is a guess.
func classifyKeywords(query string) (intent ai.QueryIntent, confident bool) {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, " vs ", " vs. ", "versus", "compare", "compared", "against", "weekday", "weekend"):
		return ai.IntentComparison, true
	case containsAny(lower, "trend", "over time", "daily", "weekly", "monthly", "per day", "per week", "per month", "each day", "each week", "each month"):
		return ai.IntentTrend, true
	case containsAny(lower, "by category", "per category", "breakdown", "break down", "categories", "where did", "where does", "what did i spend on"):
		return ai.IntentByCategory, true
	case containsAny(lower, "total", "how much", "spent", "spend", "sum", "altogether"):
		return ai.IntentTotal, true
	}
	return ai.IntentTotal, false
}

// wantsCategorySplit reports whether a comparison query also asks for a
// per-category breakdown of each side.
func wantsCategorySplit(query string) bool {
	return containsAny(strings.ToLower(query),
		"by category", "per category", "breakdown", "break down", "categories")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// detectCategory finds an explicitly named category in the query.
func detectCategory(query string) *core.Category {
	lower := strings.ToLower(query)
	for _, c := range core.Categories {
		if c == core.CategoryOther {
			continue
		}
		if strings.Contains(lower, c.String()) {
			cat := c
			return &cat
		}
	}
	aliases := []struct {
		word string
		cat  core.Category
	}{
		{"transport", core.CategoryTransportation},
		{"grocery", core.CategoryGroceries},
		{"health", core.CategoryHealthcare},
		{"subscriptions", core.CategorySubscription},
	}
	for _, a := range aliases {
		if strings.Contains(lower, a.word) {
			cat := a.cat
			return &cat
		}
	}
	return nil
}

// detectGranularity picks the trend bucket size: an explicit mention
// wins, otherwise the range length decides.
func detectGranularity(query string, r Range) string {
	lower := strings.ToLower(query)
	switch {
	case containsAny(lower, "daily", "per day", "each day", "by day"):
		return "day"
	case containsAny(lower, "weekly", "per week", "each week", "by week"):
		return "week"
	case containsAny(lower, "monthly", "per month", "each month", "by month"):
		return "month"
	}
	if !r.Bounded() {
		return "month"
	}
	span := r.End.Sub(r.Start)
	switch {
	case span <= 32*24*time.Hour:
		return "day"
	case span <= 180*24*time.Hour:
		return "week"
	}
	return "month"
}

// buildPlan resolves a query into a plan. Deterministic keyword and
// time-range rules run first; the model interpreter is the fallback for
// phrasings they cannot handle; a defaulted plan flagged approximate is
// the last resort so the query always gets an answer.
func (e *Engine) buildPlan(ctx context.Context, query string, now time.Time) plan {
	intent, confident := classifyKeywords(query)
	category := detectCategory(query)

	if confident {
		if intent == ai.IntentComparison {
			a, b, approx, err := resolveComparison(query, now)
			if err == nil {
				return plan{
					intent:      intent,
					rangeA:      a,
					rangeB:      b,
					category:    category,
					byCategory:  wantsCategorySplit(query),
					approximate: approx,
				}
			}
		} else {
			r, err := resolveSingle(query, now)
			if err == nil {
				p := plan{intent: intent, rangeA: r, category: category}
				if intent == ai.IntentTrend {
					p.granularity = detectGranularity(query, r)
				}
				return p
			}
		}
	}

	if p, ok := e.interpretWithModel(ctx, query, now); ok {
		return p
	}

	// Last resort. A confidently classified intent keeps its kind over a
	// default window; an unclassified query becomes TOTAL over the full
	// history. Either way the answer is flagged approximate.
	if !confident {
		return plan{intent: ai.IntentTotal, rangeA: Range{Label: "all time"}, category: category, approximate: true}
	}
	switch intent {
	case ai.IntentComparison:
		m := startOfMonth(now)
		return plan{
			intent:      intent,
			rangeA:      Range{Label: "this month", Start: m, End: now},
			rangeB:      Range{Label: "last month", Start: m.AddDate(0, -1, 0), End: m},
			category:    category,
			byCategory:  wantsCategorySplit(query),
			approximate: true,
		}
	case ai.IntentTrend:
		r := defaultRange(now)
		return plan{intent: intent, rangeA: r, granularity: detectGranularity(query, r), category: category, approximate: true}
	default:
		return plan{intent: intent, rangeA: defaultRange(now), category: category, approximate: true}
	}
}

// interpretWithModel asks the query interpreter and validates its answer.
func (e *Engine) interpretWithModel(ctx context.Context, query string, now time.Time) (plan, bool) {
	interp, err := e.model.InterpretQuery(ctx, query, now)
	if err != nil {
		return plan{}, false
	}
	if interp.End.Before(interp.Start) || interp.Start.IsZero() || interp.End.IsZero() {
		return plan{}, false
	}

	p := plan{
		intent:   interp.Intent,
		rangeA:   Range{Label: "the requested period", Start: interp.Start, End: interp.End},
		category: interp.Category,
	}
	switch interp.Intent {
	case ai.IntentComparison:
		if interp.EndB.Before(interp.StartB) || interp.StartB.IsZero() || interp.EndB.IsZero() {
			return plan{}, false
		}
		p.rangeA.Label = "the first period"
		p.rangeB = Range{Label: "the second period", Start: interp.StartB, End: interp.EndB}
		p.byCategory = wantsCategorySplit(query)
	case ai.IntentTrend:
		p.granularity = interp.Granularity
		if p.granularity == "" {
			p.granularity = detectGranularity(query, p.rangeA)
		}
	}
	return p, true
}
