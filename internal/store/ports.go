// Package store defines the row store port: a persistent, sheet-like table
// of expense records keyed by an opaque row ID.
//
// Row identity is a stable UUID assigned on append, not a sheet row index.
// Positional identity breaks as soon as anything else inserts or deletes
// rows in the spreadsheet; every adapter here carries the ID in the data
// itself.
package store

import (
	"context"
	"time"

	"spendlog/internal/core"
)

// Filter restricts List results. Zero time bounds mean unbounded; the
// range is half-open [Start, End).
type Filter struct {
	Start    time.Time
	End      time.Time
	Category *core.Category
}

// Matches reports whether a record passes the filter. Shared by adapters
// that filter in memory after a full scan (sheets, memory).
func (f Filter) Matches(rec core.ExpenseRecord) bool {
	if !f.Start.IsZero() && rec.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !rec.Timestamp.Before(f.End) {
		return false
	}
	if f.Category != nil && rec.Category != *f.Category {
		return false
	}
	return true
}

// Ports for outbound row store adapters.
type (
	RowAppender interface {
		// Append persists a new record and returns its assigned row ID.
		Append(ctx context.Context, rec core.ExpenseRecord) (rowID string, err error)
	}

	RowLister interface {
		// List returns all records for one user passing the filter,
		// ordered by timestamp ascending.
		List(ctx context.Context, userID string, f Filter) ([]core.ExpenseRecord, error)
	}

	RowGetter interface {
		// Get returns the record with the given row ID, or
		// core.ErrNotFound when absent or owned by a different user.
		Get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error)
	}

	RowUpdater interface {
		// Update applies the patch to an existing row. core.ErrNotFound
		// when absent or owned by a different user.
		Update(ctx context.Context, userID, rowID string, patch core.FieldPatch) error
	}

	RowDeleter interface {
		// Delete removes a row. Deleting a missing row is an error
		// (core.ErrNotFound), not a no-op.
		Delete(ctx context.Context, userID, rowID string) error
	}

	// RowStore is the full port used by the expense record manager.
	RowStore interface {
		RowAppender
		RowLister
		RowGetter
		RowUpdater
		RowDeleter
	}
)
