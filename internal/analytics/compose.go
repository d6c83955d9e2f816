package analytics

import (
	"context"
	"fmt"
	"strings"

	"spendlog/internal/ai"
	"spendlog/internal/core"
)

// composeSummary fills the prose field. The model gets first shot at
// phrasing the facts; its failure falls back to the deterministic
// template, so the summary is always present and the numbers never
// depend on the model.
func (e *Engine) composeSummary(ctx context.Context, resp *Response, p plan) {
	template := templateSummary(resp, p)
	prose, err := e.model.Summarize(ctx, template)
	if err != nil || strings.TrimSpace(prose) == "" {
		resp.Summary = template
		return
	}
	resp.Summary = prose
}

func money(currency string, cents int64) string {
	return fmt.Sprintf("%s %s", currency, core.Money{Cents: cents}.String())
}

// templateSummary builds the deterministic sentence for each intent.
func templateSummary(resp *Response, p plan) string {
	scope := p.rangeA.Label
	if scope == "" {
		scope = "the selected period"
	}
	if p.category != nil {
		scope = fmt.Sprintf("on %s %s", p.category.String(), scope)
	}

	var b strings.Builder
	switch resp.Intent {
	case ai.IntentTotal:
		t := resp.Total
		fmt.Fprintf(&b, "You spent %s across %d expenses %s", money(resp.Currency, t.SumCents), t.Count, scope)
		if t.Count > 0 {
			fmt.Fprintf(&b, ", averaging %s per day", money(resp.Currency, t.AvgPerDayCents))
		}
		b.WriteString(".")

	case ai.IntentByCategory:
		if len(resp.Categories) == 0 {
			fmt.Fprintf(&b, "No expenses recorded %s.", scope)
			break
		}
		top := resp.Categories[0]
		fmt.Fprintf(&b, "Your biggest category %s was %s at %s", scope, top.Category, money(resp.Currency, top.SumCents))
		if len(resp.Categories) > 1 {
			fmt.Fprintf(&b, ", across %d categories in total", len(resp.Categories))
		}
		b.WriteString(".")

	case ai.IntentTrend:
		var sum int64
		var peak TrendPoint
		for _, pt := range resp.Trend {
			sum += pt.SumCents
			if pt.SumCents > peak.SumCents {
				peak = pt
			}
		}
		fmt.Fprintf(&b, "You spent %s over %d %ss %s", money(resp.Currency, sum), len(resp.Trend), p.granularity, scope)
		if peak.SumCents > 0 {
			fmt.Fprintf(&b, ", peaking at %s on %s", money(resp.Currency, peak.SumCents), peak.BucketStart.Format("2006-01-02"))
		}
		b.WriteString(".")

	case ai.IntentComparison:
		c := resp.Comparison
		fmt.Fprintf(&b, "You spent %s %s and %s %s",
			money(resp.Currency, c.A.Total.SumCents), c.A.Label,
			money(resp.Currency, c.B.Total.SumCents), c.B.Label)
		switch {
		case c.NewSpending:
			b.WriteString("; this is new spending with no baseline to compare against.")
		case c.DeltaPct == nil:
			b.WriteString("; there was no spending in either period.")
		case *c.DeltaPct > 0:
			fmt.Fprintf(&b, ", an increase of %.1f%%.", *c.DeltaPct)
		case *c.DeltaPct < 0:
			fmt.Fprintf(&b, ", a decrease of %.1f%%.", -*c.DeltaPct)
		default:
			b.WriteString(", unchanged.")
		}
	}

	if resp.Approximate {
		b.WriteString(" (Best-effort interpretation of your question.)")
	}
	return b.String()
}
