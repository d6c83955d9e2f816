// Package memory is an in-memory row store used as the default backend and
// as the substrate for tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"spendlog/internal/core"
	"spendlog/internal/store"
)

type Store struct {
	mu   sync.Mutex
	rows map[string]core.ExpenseRecord
}

var _ store.RowStore = (*Store)(nil)

func New() *Store {
	return &Store{rows: make(map[string]core.ExpenseRecord)}
}

func (s *Store) Append(_ context.Context, rec core.ExpenseRecord) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.RowID = uuid.NewString()
	s.rows[rec.RowID] = rec
	return rec.RowID, nil
}

func (s *Store) List(_ context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.ExpenseRecord
	for _, rec := range s.rows {
		if rec.UserID != userID || !f.Matches(rec) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].RowID < out[j].RowID
		}
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[rowID]
	if !ok || rec.UserID != userID {
		return core.ExpenseRecord{}, core.ErrNotFound
	}
	return rec, nil
}

func (s *Store) Update(_ context.Context, userID, rowID string, patch core.FieldPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[rowID]
	if !ok || rec.UserID != userID {
		return core.ErrNotFound
	}
	updated := rec.Apply(patch)
	if err := updated.Validate(); err != nil {
		return err
	}
	s.rows[rowID] = updated
	return nil
}

func (s *Store) Delete(_ context.Context, userID, rowID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.rows[rowID]
	if !ok || rec.UserID != userID {
		return core.ErrNotFound
	}
	delete(s.rows, rowID)
	return nil
}
