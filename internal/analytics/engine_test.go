package analytics

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/store"
	"spendlog/internal/store/memory"
)

// fakeModel lets tests script the interpreter and summarizer; extraction
// stays on the rule path.
type fakeModel struct {
	*ai.RuleExtractor
	interp    ai.QueryInterpretation
	interpErr error
	prose     string
	proseErr  error
}

func (f *fakeModel) InterpretQuery(context.Context, string, time.Time) (ai.QueryInterpretation, error) {
	if f.interpErr != nil {
		return ai.QueryInterpretation{}, f.interpErr
	}
	return f.interp, nil
}

func (f *fakeModel) Summarize(context.Context, string) (string, error) {
	if f.proseErr != nil {
		return "", f.proseErr
	}
	return f.prose, nil
}

func newTestEngine(t *testing.T, model ai.Extractor) (*Engine, *memory.Store) {
	t.Helper()
	st := memory.New()
	if model == nil {
		model = ai.NewRuleExtractor("SGD")
	}
	return NewEngine(st, model, log.New(log.DefaultConfig()), "SGD"), st
}

func seed(t *testing.T, st *memory.Store, recs []core.ExpenseRecord) {
	t.Helper()
	for _, r := range recs {
		if _, err := st.Append(context.Background(), r); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func TestQueryTotal(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 1)),
		rec(2000, core.CategoryTransportation, date(2024, 3, 2)),
		rec(500, core.CategoryFood, date(2024, 3, 3)),
		rec(9999, core.CategoryFood, date(2024, 2, 10)), // outside range
	})

	resp, err := e.Query(context.Background(), "alice", "how much did I spend this month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentTotal {
		t.Fatalf("intent %s", resp.Intent)
	}
	if resp.Approximate {
		t.Fatal("should not be approximate")
	}
	if resp.Total == nil || resp.Total.SumCents != 3500 || resp.Total.Count != 3 {
		t.Fatalf("total %+v", resp.Total)
	}
	if resp.Summary == "" {
		t.Fatal("summary must always be present")
	}
}

func TestQueryTotalCategoryFilter(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 1)),
		rec(2000, core.CategoryTransportation, date(2024, 3, 2)),
	})

	resp, err := e.Query(context.Background(), "alice", "how much did I spend on food this month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Total == nil || resp.Total.SumCents != 1000 || resp.Total.Count != 1 {
		t.Fatalf("total %+v", resp.Total)
	}
}

func TestQueryByCategory(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 1)),
		rec(2000, core.CategoryTransportation, date(2024, 3, 2)),
		rec(500, core.CategoryFood, date(2024, 3, 3)),
	})

	resp, err := e.Query(context.Background(), "alice", "breakdown by category this month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentByCategory {
		t.Fatalf("intent %s", resp.Intent)
	}
	if len(resp.Categories) != 2 {
		t.Fatalf("categories %+v", resp.Categories)
	}
	if resp.Categories[0].Category != core.CategoryTransportation {
		t.Fatalf("expected descending order, got %+v", resp.Categories)
	}
}

func TestQueryComparison(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 5)),  // this month
		rec(2000, core.CategoryFood, date(2024, 2, 10)), // last month
		rec(2000, core.CategoryFood, date(2024, 2, 20)), // last month
	})

	resp, err := e.Query(context.Background(), "alice", "compare this month vs last month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentComparison {
		t.Fatalf("intent %s", resp.Intent)
	}
	c := resp.Comparison
	if c == nil {
		t.Fatal("missing comparison payload")
	}
	if !c.A.Start.Equal(date(2024, 3, 1)) || !c.A.End.Equal(testNow) {
		t.Fatalf("range A [%v, %v)", c.A.Start, c.A.End)
	}
	if !c.B.Start.Equal(date(2024, 2, 1)) || !c.B.End.Equal(date(2024, 3, 1)) {
		t.Fatalf("range B [%v, %v)", c.B.Start, c.B.End)
	}
	if c.A.Total.SumCents != 1000 || c.B.Total.SumCents != 4000 {
		t.Fatalf("sums A=%d B=%d", c.A.Total.SumCents, c.B.Total.SumCents)
	}
	if c.DeltaPct == nil || *c.DeltaPct != 300 {
		t.Fatalf("delta %v want 300", c.DeltaPct)
	}
}

func TestQueryComparisonNewSpending(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(5000, core.CategoryFood, date(2024, 2, 10)), // last month only
	})

	resp, err := e.Query(context.Background(), "alice", "this month vs last month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !resp.Comparison.NewSpending {
		t.Fatal("zero baseline must flag new spending")
	}
	if resp.Comparison.DeltaPct != nil {
		t.Fatal("delta must be undefined for a zero baseline")
	}
}

func TestQueryComparisonByCategory(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 5)),           // this month
		rec(2000, core.CategoryTransportation, date(2024, 3, 6)), // this month
		rec(500, core.CategoryFood, date(2024, 2, 10)),           // last month
	})

	resp, err := e.Query(context.Background(), "alice", "compare my spending by category this month vs last month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentComparison {
		t.Fatalf("intent %s", resp.Intent)
	}
	c := resp.Comparison
	if c == nil {
		t.Fatal("missing comparison payload")
	}
	if len(c.A.Categories) != 2 || len(c.B.Categories) != 1 {
		t.Fatalf("per-side categories A=%+v B=%+v", c.A.Categories, c.B.Categories)
	}
	if c.A.Categories[0].Category != core.CategoryTransportation || c.A.Categories[0].SumCents != 2000 {
		t.Fatalf("side A not sorted descending: %+v", c.A.Categories)
	}
	if c.B.Categories[0].Category != core.CategoryFood || c.B.Categories[0].SumCents != 500 {
		t.Fatalf("side B %+v", c.B.Categories)
	}
	if c.A.Total.SumCents != 3000 || c.B.Total.SumCents != 500 {
		t.Fatalf("totals still required alongside categories, A=%d B=%d", c.A.Total.SumCents, c.B.Total.SumCents)
	}
}

func TestQueryComparisonTotalsOnlyByDefault(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 5)),
		rec(500, core.CategoryFood, date(2024, 2, 10)),
	})

	resp, err := e.Query(context.Background(), "alice", "compare this month vs last month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(resp.Comparison.A.Categories) != 0 || len(resp.Comparison.B.Categories) != 0 {
		t.Fatalf("plain comparison must not carry categories: %+v", resp.Comparison)
	}
}

func TestQueryWeekdaysVsWeekends(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 4)), // Monday
		rec(2000, core.CategoryFood, date(2024, 3, 9)), // Saturday
	})

	resp, err := e.Query(context.Background(), "alice", "weekdays vs weekends this month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	c := resp.Comparison
	if c.A.Total.SumCents != 1000 || c.B.Total.SumCents != 2000 {
		t.Fatalf("sums A=%d B=%d", c.A.Total.SumCents, c.B.Total.SumCents)
	}
}

func TestQueryTrendSevenDays(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 10)),
		rec(500, core.CategoryFood, date(2024, 3, 14)),
	})

	resp, err := e.Query(context.Background(), "alice", "daily trend for the last 7 days", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentTrend {
		t.Fatalf("intent %s", resp.Intent)
	}
	if len(resp.Trend) != 7 {
		t.Fatalf("buckets %d want 7", len(resp.Trend))
	}

	// Identical inputs, identical output.
	again, err := e.Query(context.Background(), "alice", "daily trend for the last 7 days", testNow)
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if !reflect.DeepEqual(resp, again) {
		t.Fatal("trend query is not deterministic")
	}
}

func TestQueryUnresolvedRangeFallsBack(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 10)),
	})

	resp, err := e.Query(context.Background(), "alice", "how much did I spend around the blue moon", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentTotal {
		t.Fatalf("intent %s", resp.Intent)
	}
	if !resp.Approximate {
		t.Fatal("fallback interpretation must be flagged approximate")
	}
	if resp.Total.SumCents != 1000 {
		t.Fatalf("default window should still cover recent records, got %+v", resp.Total)
	}
}

func TestQueryUnclassifiedFallsBackToFullHistory(t *testing.T) {
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2023, 1, 1)), // old record
		rec(500, core.CategoryFood, date(2024, 3, 10)),
	})

	resp, err := e.Query(context.Background(), "alice", "tell me about my finances", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentTotal || !resp.Approximate {
		t.Fatalf("intent %s approximate %v", resp.Intent, resp.Approximate)
	}
	if resp.Total.SumCents != 1500 {
		t.Fatalf("full history sum %d want 1500", resp.Total.SumCents)
	}
}

func TestQueryModelInterpretation(t *testing.T) {
	model := &fakeModel{
		RuleExtractor: ai.NewRuleExtractor("SGD"),
		interp: ai.QueryInterpretation{
			Intent:      ai.IntentTrend,
			Start:       date(2024, 3, 1),
			End:         date(2024, 3, 8),
			Granularity: "day",
		},
		proseErr: core.ErrExtractionFailed,
	}
	e, st := newTestEngine(t, model)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 3)),
	})

	resp, err := e.Query(context.Background(), "alice", "something only a model can read", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Intent != ai.IntentTrend {
		t.Fatalf("intent %s", resp.Intent)
	}
	if len(resp.Trend) != 7 {
		t.Fatalf("buckets %d want 7", len(resp.Trend))
	}
	if resp.Approximate {
		t.Fatal("a model interpretation is not approximate")
	}
}

func TestQueryModelProse(t *testing.T) {
	model := &fakeModel{
		RuleExtractor: ai.NewRuleExtractor("SGD"),
		interpErr:     core.ErrExtractionFailed,
		prose:         "You spent a bit on food.",
	}
	e, st := newTestEngine(t, model)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 10)),
	})

	resp, err := e.Query(context.Background(), "alice", "how much did I spend this month", testNow)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Summary != "You spent a bit on food." {
		t.Fatalf("summary %q", resp.Summary)
	}
	if resp.Total == nil || resp.Total.SumCents != 1000 {
		t.Fatal("numeric payload must not depend on prose generation")
	}
}

func TestQueryLastNDaysExcludesLaterToday(t *testing.T) {
	noon := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	e, st := newTestEngine(t, nil)
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 14)),
		rec(9999, core.CategoryFood, noon.Add(6*time.Hour)), // later today
	})

	resp, err := e.Query(context.Background(), "alice", "how much did I spend in the last 7 days", noon)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.Total.SumCents != 1000 {
		t.Fatalf("sum %d: records after the query time must not count", resp.Total.SumCents)
	}
}

type flakyLister struct {
	inner    *memory.Store
	failures int
}

func (f *flakyLister) List(ctx context.Context, userID string, filter store.Filter) ([]core.ExpenseRecord, error) {
	if f.failures > 0 {
		f.failures--
		return nil, core.ErrStoreUnavailable
	}
	return f.inner.List(ctx, userID, filter)
}

func TestQueryRetriesStoreOutageOnce(t *testing.T) {
	st := memory.New()
	seed(t, st, []core.ExpenseRecord{
		rec(1000, core.CategoryFood, date(2024, 3, 10)),
	})
	flaky := &flakyLister{inner: st, failures: 1}
	e := NewEngine(flaky, ai.NewRuleExtractor("SGD"), log.New(log.DefaultConfig()), "SGD")

	resp, err := e.Query(context.Background(), "alice", "how much did I spend this month", testNow)
	if err != nil {
		t.Fatalf("one outage should be retried: %v", err)
	}
	if resp.Total == nil || resp.Total.SumCents != 1000 {
		t.Fatalf("total %+v", resp.Total)
	}

	flaky.failures = 2
	if _, err := e.Query(context.Background(), "alice", "how much did I spend this month", testNow); !errors.Is(err, core.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable after retry, got %v", err)
	}
}

func TestQueryInputValidation(t *testing.T) {
	e, _ := newTestEngine(t, nil)
	if _, err := e.Query(context.Background(), "alice", "   ", testNow); !errors.Is(err, core.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := e.Query(context.Background(), "", "how much", testNow); !errors.Is(err, core.ErrEmptyUserID) {
		t.Fatalf("expected ErrEmptyUserID, got %v", err)
	}
}
