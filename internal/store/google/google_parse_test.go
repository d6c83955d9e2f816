package google

import (
	"testing"
	"time"

	"spendlog/internal/core"
)

func TestRecordRowRoundTrip(t *testing.T) {
	rec := core.ExpenseRecord{
		RowID:       "550e8400-e29b-41d4-a716-446655440000",
		UserID:      "default_user",
		Amount:      core.Money{Cents: 350},
		Currency:    "SGD",
		Category:    core.CategoryFood,
		Description: "banana lunch",
		Tags:        []string{"lunch", "fruit"},
		Notes:       "paid cash",
		Timestamp:   time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC),
	}

	row := recordToRow(rec)
	got, ok := rowToRecord(row)
	if !ok {
		t.Fatalf("row did not parse: %v", row)
	}
	if got.RowID != rec.RowID || got.UserID != rec.UserID {
		t.Fatalf("identity mismatch: %+v", got)
	}
	if got.Amount.Cents != 350 || got.Currency != "SGD" || got.Category != core.CategoryFood {
		t.Fatalf("value mismatch: %+v", got)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Fatalf("timestamp mismatch: %v != %v", got.Timestamp, rec.Timestamp)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "lunch" {
		t.Fatalf("tags mismatch: %v", got.Tags)
	}
}

func TestRowToRecordSkipsJunk(t *testing.T) {
	junk := [][]any{
		{},                          // blank line
		{"note to self"},            // manual edit, too short
		{"", "2024-03-15 12:30:00", "3.50", "SGD", "food", "x", "", "", "u1"}, // missing id
		{"id1", "not a date", "3.50", "SGD", "food", "x", "", "", "u1"},
		{"id1", "2024-03-15 12:30:00", "free", "SGD", "food", "x", "", "", "u1"},
	}
	for i, row := range junk {
		if _, ok := rowToRecord(row); ok {
			t.Fatalf("case %d: junk row parsed: %v", i, row)
		}
	}
}

func TestRowToRecordUnknownCategoryCollapsesToOther(t *testing.T) {
	row := []any{"id1", "2024-03-15 12:30:00", "3.50", "SGD", "snacks", "desc", "", "", "u1"}
	rec, ok := rowToRecord(row)
	if !ok {
		t.Fatalf("row should parse")
	}
	if rec.Category != core.CategoryOther {
		t.Fatalf("expected other, got %s", rec.Category)
	}
}

func TestHeaderMatches(t *testing.T) {
	if !headerMatches(headerRow()) {
		t.Fatalf("canonical header row must match")
	}
	if headerMatches([]any{"ID", "Timestamp"}) {
		t.Fatalf("short header row must not match")
	}
}
