package analytics

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/store"
)

// Engine orchestrates one analytics query: plan, fetch, aggregate,
// compose. It only reads from the row store.
type Engine struct {
	store    store.RowLister
	model    ai.Extractor
	logger   *log.Logger
	currency string
}

func NewEngine(rowStore store.RowLister, model ai.Extractor, logger *log.Logger, currency string) *Engine {
	return &Engine{
		store:    rowStore,
		model:    model,
		logger:   logger.WithComponent(log.ComponentAnalytics),
		currency: currency,
	}
}

// Query answers one natural-language question about a user's spending.
// The numeric payload is always computed locally; the model only helps
// with interpretation and phrasing.
func (e *Engine) Query(ctx context.Context, userID, query string, now time.Time) (Response, error) {
	if userID == "" {
		return Response{}, core.ErrEmptyUserID
	}
	if strings.TrimSpace(query) == "" {
		return Response{}, core.ErrEmptyQuery
	}

	p := e.buildPlan(ctx, query, now)
	if p.intent != ai.IntentTrend {
		// Records timestamped after now stay out of totals; the trend
		// keeps its calendar-aligned end so buckets cover the window.
		p.rangeA = p.rangeA.clampEnd(now)
		p.rangeB = p.rangeB.clampEnd(now)
	}
	resp := Response{
		Intent:      p.intent,
		Approximate: p.approximate,
		Currency:    e.currency,
	}

	switch p.intent {
	case ai.IntentComparison:
		recsA, recsB, err := e.fetchPair(ctx, userID, p)
		if err != nil {
			return Response{}, err
		}
		resp.Comparison = Compare(recsA, recsB, p.rangeA, p.rangeB, p.byCategory)

	case ai.IntentTrend:
		recs, err := e.fetch(ctx, userID, p, p.rangeA)
		if err != nil {
			return Response{}, err
		}
		resp.Trend = Trend(recs, p.rangeA, p.granularity)

	case ai.IntentByCategory:
		recs, err := e.fetch(ctx, userID, p, p.rangeA)
		if err != nil {
			return Response{}, err
		}
		resp.Categories = ByCategory(recs)

	default:
		recs, err := e.fetch(ctx, userID, p, p.rangeA)
		if err != nil {
			return Response{}, err
		}
		resp.Intent = ai.IntentTotal
		total := Total(recs, p.rangeA)
		resp.Total = &total
	}

	e.composeSummary(ctx, &resp, p)

	e.logger.InfoContext(ctx, "Analytics query answered",
		log.FieldOperation, log.OpQuery,
		log.FieldUserID, userID,
		log.FieldIntent, string(resp.Intent),
		log.FieldApproximate, resp.Approximate)
	return resp, nil
}

// list retries a single time when the store reports an outage.
func (e *Engine) list(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	recs, err := e.store.List(ctx, userID, f)
	if errors.Is(err, core.ErrStoreUnavailable) {
		recs, err = e.store.List(ctx, userID, f)
	}
	return recs, err
}

// fetch lists one range's records, applying the weekday or weekend
// partition after the store filter.
func (e *Engine) fetch(ctx context.Context, userID string, p plan, r Range) ([]core.ExpenseRecord, error) {
	recs, err := e.list(ctx, userID, store.Filter{
		Start:    r.Start,
		End:      r.End,
		Category: p.category,
	})
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	if r.Days == AllDays {
		return recs, nil
	}
	var filtered []core.ExpenseRecord
	for _, rec := range recs {
		if r.Contains(rec.Timestamp) {
			filtered = append(filtered, rec)
		}
	}
	return filtered, nil
}

// fetchPair lists the envelope of both comparison ranges once and
// partitions in memory, so the sheet-backed store is scanned one time.
func (e *Engine) fetchPair(ctx context.Context, userID string, p plan) (recsA, recsB []core.ExpenseRecord, err error) {
	envelope := store.Filter{Category: p.category}
	if !p.rangeA.Start.IsZero() && !p.rangeB.Start.IsZero() {
		envelope.Start = p.rangeA.Start
		if p.rangeB.Start.Before(envelope.Start) {
			envelope.Start = p.rangeB.Start
		}
	}
	if !p.rangeA.End.IsZero() && !p.rangeB.End.IsZero() {
		envelope.End = p.rangeA.End
		if p.rangeB.End.After(envelope.End) {
			envelope.End = p.rangeB.End
		}
	}

	recs, err := e.list(ctx, userID, envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("list records: %w", err)
	}
	for _, rec := range recs {
		if p.rangeA.Contains(rec.Timestamp) {
			recsA = append(recsA, rec)
		}
		if p.rangeB.Contains(rec.Timestamp) {
			recsB = append(recsB, rec)
		}
	}
	return recsA, recsB, nil
}
