package amqp

import (
	"testing"
)

func TestSyncMessageRoundTrip(t *testing.T) {
	msg := NewSyncMessage(OpUpsert, "row-123")
	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := SyncMessageFromJSON(body)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Op != OpUpsert || got.RowID != "row-123" {
		t.Fatalf("round trip: %+v", got)
	}
	if got.Timestamp.IsZero() {
		t.Fatal("timestamp not carried")
	}
}

func TestSyncMessageFromBadJSON(t *testing.T) {
	if _, err := SyncMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected an error")
	}
}
