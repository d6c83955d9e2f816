package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

func record(user string, cents int64, cat core.Category, ts time.Time) core.ExpenseRecord {
	return core.ExpenseRecord{
		UserID:      user,
		Amount:      core.Money{Cents: cents},
		Currency:    "SGD",
		Category:    cat,
		Description: "t",
		Timestamp:   ts,
	}
}

func TestAppendAssignsRowID(t *testing.T) {
	s := New()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id1, err := s.Append(context.Background(), record("u1", 100, core.CategoryFood, ts))
	if err != nil || id1 == "" {
		t.Fatalf("append: id=%q err=%v", id1, err)
	}
	id2, _ := s.Append(context.Background(), record("u1", 200, core.CategoryFood, ts))
	if id1 == id2 {
		t.Fatalf("row ids must be unique")
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	s := New()
	bad := record("u1", 0, core.CategoryFood, time.Now())
	if _, err := s.Append(context.Background(), bad); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestListScopedAndOrdered(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	s.Append(ctx, record("u1", 100, core.CategoryFood, day(3)))
	s.Append(ctx, record("u1", 200, core.CategoryTransportation, day(1)))
	s.Append(ctx, record("u2", 300, core.CategoryFood, day(2)))

	recs, err := s.List(ctx, "u1", store.Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records for u1, got %d", len(recs))
	}
	if !recs[0].Timestamp.Before(recs[1].Timestamp) {
		t.Fatalf("records not ordered by timestamp: %v, %v", recs[0].Timestamp, recs[1].Timestamp)
	}
}

func TestListFilters(t *testing.T) {
	s := New()
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }
	s.Append(ctx, record("u1", 100, core.CategoryFood, day(1)))
	s.Append(ctx, record("u1", 200, core.CategoryFood, day(10)))
	s.Append(ctx, record("u1", 300, core.CategoryTravel, day(5)))

	// Half-open range: record exactly at End excluded.
	recs, _ := s.List(ctx, "u1", store.Filter{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	})
	if len(recs) != 2 {
		t.Fatalf("expected 2 in range, got %d", len(recs))
	}

	food := core.CategoryFood
	recs, _ = s.List(ctx, "u1", store.Filter{Category: &food})
	if len(recs) != 2 {
		t.Fatalf("expected 2 food records, got %d", len(recs))
	}
}

func TestGetUpdateDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	id, _ := s.Append(ctx, record("u1", 100, core.CategoryFood, ts))

	if _, err := s.Get(ctx, "u2", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user get must be NotFound, got %v", err)
	}

	amt := core.Money{Cents: 250}
	if err := s.Update(ctx, "u1", id, core.FieldPatch{Amount: &amt}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rec, _ := s.Get(ctx, "u1", id)
	if rec.Amount.Cents != 250 {
		t.Fatalf("update not applied: %+v", rec)
	}

	if err := s.Update(ctx, "u2", id, core.FieldPatch{Amount: &amt}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user update must be NotFound, got %v", err)
	}

	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(ctx, "u1", id); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleting absent row must be NotFound, got %v", err)
	}
	// Store unchanged after failed delete
	recs, _ := s.List(ctx, "u1", store.Filter{})
	if len(recs) != 0 {
		t.Fatalf("expected empty store, got %d", len(recs))
	}
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	s := New()
	ctx := context.Background()
	id, _ := s.Append(ctx, record("u1", 100, core.CategoryFood, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))
	bad := core.Money{Cents: -5}
	if err := s.Update(ctx, "u1", id, core.FieldPatch{Amount: &bad}); !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
	rec, _ := s.Get(ctx, "u1", id)
	if rec.Amount.Cents != 100 {
		t.Fatalf("failed update must not mutate the row: %+v", rec)
	}
}
