package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

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

func TestAppendGetRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	rec := record("u1", 350, core.CategoryFood, ts)
	rec.Tags = []string{"lunch", "fruit"}
	rec.Notes = "cash"

	id, err := s.Append(ctx, rec)
	if err != nil || id == "" {
		t.Fatalf("append: id=%q err=%v", id, err)
	}

	got, err := s.Get(ctx, "u1", id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Amount.Cents != 350 || got.Category != core.CategoryFood || !got.Timestamp.Equal(ts) {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[1] != "fruit" {
		t.Fatalf("tags mismatch: %v", got.Tags)
	}
}

func TestListRangeAndUserScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 12, 0, 0, 0, time.UTC) }

	s.Append(ctx, record("u1", 100, core.CategoryFood, day(1)))
	s.Append(ctx, record("u1", 200, core.CategoryFood, day(10)))
	s.Append(ctx, record("u2", 300, core.CategoryFood, day(5)))

	recs, err := s.List(ctx, "u1", store.Filter{
		Start: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].Amount.Cents != 100 {
		t.Fatalf("expected only the day-1 record, got %+v", recs)
	}
}

func TestUpdateAndDeleteScoping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Append(ctx, record("u1", 100, core.CategoryFood, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	amt := core.Money{Cents: 500}
	if err := s.Update(ctx, "u2", id, core.FieldPatch{Amount: &amt}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("cross-user update must be NotFound, got %v", err)
	}
	if err := s.Update(ctx, "u1", id, core.FieldPatch{Amount: &amt}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := s.Delete(ctx, "u1", "missing-id"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleting missing row must be NotFound, got %v", err)
	}
	if err := s.Delete(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestSyncBookkeeping(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id, _ := s.Append(ctx, record("u1", 100, core.CategoryFood, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)))

	pending, err := s.ListUnsynced(ctx, 10)
	if err != nil || len(pending) != 1 {
		t.Fatalf("expected 1 unsynced row, got %d err=%v", len(pending), err)
	}

	if err := s.MarkSynced(ctx, id); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ = s.ListUnsynced(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected 0 unsynced rows, got %d", len(pending))
	}

	// Updates flip the row back to unsynced.
	amt := core.Money{Cents: 200}
	if err := s.Update(ctx, "u1", id, core.FieldPatch{Amount: &amt}); err != nil {
		t.Fatalf("update: %v", err)
	}
	pending, _ = s.ListUnsynced(ctx, 10)
	if len(pending) != 1 {
		t.Fatalf("expected row to be unsynced again, got %d", len(pending))
	}

	if _, err := s.GetAny(ctx, id); err != nil {
		t.Fatalf("get any: %v", err)
	}
}
