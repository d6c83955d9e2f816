// Package sqlite implements the row store on a local SQLite database.
// Writes are mirrored to the spreadsheet asynchronously by the sync
// worker; the synced column tracks rows not yet mirrored.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.RowStore = (*Store)(nil)

const tsLayout = "2006-01-02 15:04:05"

func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	rec.RowID = uuid.NewString()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO expenses (row_id, user_id, amount_cents, currency, category, description, tags, notes, ts, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`,
		rec.RowID, rec.UserID, rec.Amount.Cents, rec.Currency, rec.Category.String(),
		rec.Description, strings.Join(rec.Tags, ", "), rec.Notes, rec.Timestamp.UTC().Format(tsLayout))
	if err != nil {
		return "", fmt.Errorf("%w: insert expense: %v", core.ErrStoreUnavailable, err)
	}
	return rec.RowID, nil
}

func (s *Store) List(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	query := `SELECT row_id, user_id, amount_cents, currency, category, description, tags, notes, ts
		FROM expenses WHERE user_id = ?`
	args := []any{userID}
	if !f.Start.IsZero() {
		query += " AND ts >= ?"
		args = append(args, f.Start.UTC().Format(tsLayout))
	}
	if !f.End.IsZero() {
		query += " AND ts < ?"
		args = append(args, f.End.UTC().Format(tsLayout))
	}
	if f.Category != nil {
		query += " AND category = ?"
		args = append(args, f.Category.String())
	}
	query += " ORDER BY ts ASC, row_id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list expenses: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list expenses: %v", core.ErrStoreUnavailable, err)
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT row_id, user_id, amount_cents, currency, category, description, tags, notes, ts
		FROM expenses WHERE row_id = ? AND user_id = ?`, rowID, userID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return rec, err
}

func (s *Store) Update(ctx context.Context, userID, rowID string, patch core.FieldPatch) error {
	rec, err := s.Get(ctx, userID, rowID)
	if err != nil {
		return err
	}
	updated := rec.Apply(patch)
	if err := updated.Validate(); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE expenses
		SET amount_cents = ?, currency = ?, category = ?, description = ?, tags = ?, notes = ?, ts = ?, synced = 0
		WHERE row_id = ? AND user_id = ?`,
		updated.Amount.Cents, updated.Currency, updated.Category.String(), updated.Description,
		strings.Join(updated.Tags, ", "), updated.Notes, updated.Timestamp.UTC().Format(tsLayout),
		rowID, userID)
	if err != nil {
		return fmt.Errorf("%w: update expense: %v", core.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, rowID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE row_id = ? AND user_id = ?`, rowID, userID)
	if err != nil {
		return fmt.Errorf("%w: delete expense: %v", core.ErrStoreUnavailable, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// GetAny fetches a record by row ID without user scoping. The sync worker
// uses it; sync messages carry only the row ID.
func (s *Store) GetAny(ctx context.Context, rowID string) (core.ExpenseRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT row_id, user_id, amount_cents, currency, category, description, tags, notes, ts
		FROM expenses WHERE row_id = ?`, rowID)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return rec, err
}

// ListUnsynced returns rows not yet mirrored to the spreadsheet, oldest
// first. Backup path for lost sync messages.
func (s *Store) ListUnsynced(ctx context.Context, limit int) ([]core.ExpenseRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT row_id, user_id, amount_cents, currency, category, description, tags, notes, ts
		FROM expenses WHERE synced = 0 ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list unsynced: %v", core.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	var out []core.ExpenseRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) MarkSynced(ctx context.Context, rowID string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE expenses SET synced = 1 WHERE row_id = ?`, rowID)
	if err != nil {
		return fmt.Errorf("%w: mark synced: %v", core.ErrStoreUnavailable, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(r rowScanner) (core.ExpenseRecord, error) {
	var (
		rec      core.ExpenseRecord
		category string
		tags     string
		ts       string
	)
	err := r.Scan(&rec.RowID, &rec.UserID, &rec.Amount.Cents, &rec.Currency,
		&category, &rec.Description, &tags, &rec.Notes, &ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.ExpenseRecord{}, err
		}
		return core.ExpenseRecord{}, fmt.Errorf("%w: scan expense: %v", core.ErrStoreUnavailable, err)
	}
	rec.Category, _ = core.ParseCategory(category)
	if tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				rec.Tags = append(rec.Tags, t)
			}
		}
	}
	parsed, err := time.ParseInLocation(tsLayout, ts, time.UTC)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("parse timestamp %q: %w", ts, err)
	}
	rec.Timestamp = parsed
	return rec, nil
}
