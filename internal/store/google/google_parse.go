package google

import (
	"fmt"
	"strings"
	"time"

	"spendlog/internal/core"
)

// Sheet layout, columns A:I.
var headers = []string{
	"ID", "Timestamp", "Amount", "Currency", "Category",
	"Description", "Tags", "Notes", "User ID",
}

const timestampLayout = "2006-01-02 15:04:05"

func headerRow() []any {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return row
}

func headerMatches(row []any) bool {
	if len(row) < len(headers) {
		return false
	}
	for i, h := range headers {
		if strings.TrimSpace(fmt.Sprint(row[i])) != h {
			return false
		}
	}
	return true
}

func recordToRow(rec core.ExpenseRecord) []any {
	return []any{
		rec.RowID,
		rec.Timestamp.UTC().Format(timestampLayout),
		rec.Amount.String(),
		rec.Currency,
		rec.Category.String(),
		rec.Description,
		strings.Join(rec.Tags, ", "),
		rec.Notes,
		rec.UserID,
	}
}

// rowToRecord parses one sheet row. Returns ok=false for rows that do not
// look like records (blank lines, manual notes, stray edits).
func rowToRecord(row []any) (core.ExpenseRecord, bool) {
	cols := toStrings(row)
	if len(cols) < 9 {
		return core.ExpenseRecord{}, false
	}
	id := cols[0]
	if id == "" {
		return core.ExpenseRecord{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, cols[1], time.UTC)
	if err != nil {
		return core.ExpenseRecord{}, false
	}
	cents, err := core.ParseDecimalToCents(cols[2])
	if err != nil {
		return core.ExpenseRecord{}, false
	}
	category, _ := core.ParseCategory(cols[4])
	rec := core.ExpenseRecord{
		RowID:       id,
		Timestamp:   ts,
		Amount:      core.Money{Cents: cents},
		Currency:    cols[3],
		Category:    category,
		Description: cols[5],
		Tags:        splitTags(cols[6]),
		Notes:       cols[7],
		UserID:      cols[8],
	}
	if rec.UserID == "" || rec.Description == "" {
		return core.ExpenseRecord{}, false
	}
	return rec, true
}

func toStrings(in []any) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[i] = strings.TrimSpace(fmt.Sprint(v))
	}
	return out
}

func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
