package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/store/memory"
)

type fakePublisher struct {
	ops    []amqp.Op
	rowIDs []string
	err    error
}

func (f *fakePublisher) PublishSync(_ context.Context, op amqp.Op, rowID string) error {
	if f.err != nil {
		return f.err
	}
	f.ops = append(f.ops, op)
	f.rowIDs = append(f.rowIDs, rowID)
	return nil
}

func testRecord() core.ExpenseRecord {
	return core.ExpenseRecord{
		UserID:      "alice",
		Amount:      core.Money{Cents: 210},
		Currency:    "SGD",
		Category:    core.CategoryFood,
		Description: "banana lunch",
		Timestamp:   time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
	}
}

func TestWritesPublish(t *testing.T) {
	pub := &fakePublisher{}
	st := New(memory.New(), pub, log.New(log.DefaultConfig()))
	ctx := context.Background()

	rowID, err := st.Append(ctx, testRecord())
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	amount := core.Money{Cents: 350}
	if err := st.Update(ctx, "alice", rowID, core.FieldPatch{Amount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := st.Delete(ctx, "alice", rowID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	wantOps := []amqp.Op{amqp.OpUpsert, amqp.OpUpsert, amqp.OpDelete}
	if len(pub.ops) != len(wantOps) {
		t.Fatalf("published ops %v", pub.ops)
	}
	for i, op := range wantOps {
		if pub.ops[i] != op || pub.rowIDs[i] != rowID {
			t.Fatalf("op %d: got (%s, %s) want (%s, %s)", i, pub.ops[i], pub.rowIDs[i], op, rowID)
		}
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	st := New(memory.New(), pub, log.New(log.DefaultConfig()))

	rowID, err := st.Append(context.Background(), testRecord())
	if err != nil {
		t.Fatalf("append must succeed despite publish failure: %v", err)
	}
	if _, err := st.Get(context.Background(), "alice", rowID); err != nil {
		t.Fatalf("row must be stored locally: %v", err)
	}
}

func TestFailedWriteDoesNotPublish(t *testing.T) {
	pub := &fakePublisher{}
	st := New(memory.New(), pub, log.New(log.DefaultConfig()))

	if err := st.Delete(context.Background(), "alice", "missing"); err == nil {
		t.Fatal("expected delete of a missing row to fail")
	}
	if len(pub.ops) != 0 {
		t.Fatalf("nothing should be published, got %v", pub.ops)
	}
}
