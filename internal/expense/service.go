// Package expense is the record manager: it turns free text into
// validated records via the extractor and owns all row store access for
// CRUD operations.
package expense

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

type Service struct {
	store     store.RowStore
	extractor ai.ExpenseParser
	logger    *log.Logger

	defaultCurrency string
}

func NewService(rowStore store.RowStore, extractor ai.ExpenseParser, logger *log.Logger, defaultCurrency string) *Service {
	return &Service{
		store:           rowStore,
		extractor:       extractor,
		logger:          logger.WithComponent(log.ComponentExpense),
		defaultCurrency: defaultCurrency,
	}
}

// Submit extracts structured fields from text and persists the record.
// Extraction failure persists nothing.
func (s *Service) Submit(ctx context.Context, text, userID string, now time.Time) (core.ExpenseRecord, error) {
	if strings.TrimSpace(text) == "" {
		return core.ExpenseRecord{}, fmt.Errorf("%w: empty input", core.ErrExtractionFailed)
	}

	parsed, err := s.extractor.Extract(ctx, text, now)
	if err != nil {
		s.logger.WarnContext(ctx, "Extraction failed",
			log.FieldOperation, log.OpExtract,
			log.FieldUserID, userID,
			log.FieldError, err.Error())
		return core.ExpenseRecord{}, err
	}

	rec := core.ExpenseRecord{
		UserID:      userID,
		Amount:      parsed.Amount,
		Currency:    parsed.Currency,
		Category:    parsed.Category,
		Description: parsed.Description,
		Tags:        parsed.Tags,
		Notes:       parsed.Notes,
		Timestamp:   parsed.Timestamp,
	}
	if rec.Currency == "" {
		rec.Currency = s.defaultCurrency
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = now
	}
	if err := rec.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}

	rowID, err := s.store.Append(ctx, rec)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("append record: %w", err)
	}
	rec.RowID = rowID

	s.logger.InfoContext(ctx, "Expense recorded",
		log.FieldOperation, log.OpSubmit,
		log.FieldUserID, userID,
		log.FieldRowID, rowID,
		log.FieldAmountCents, rec.Amount.Cents,
		log.FieldCategory, rec.Category.String())
	return rec, nil
}

// get retries a single time when the store reports an outage.
func (s *Service) get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	rec, err := s.store.Get(ctx, userID, rowID)
	if errors.Is(err, core.ErrStoreUnavailable) {
		rec, err = s.store.Get(ctx, userID, rowID)
	}
	return rec, err
}

func (s *Service) list(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	recs, err := s.store.List(ctx, userID, f)
	if errors.Is(err, core.ErrStoreUnavailable) {
		recs, err = s.store.List(ctx, userID, f)
	}
	return recs, err
}

func (s *Service) Get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	return s.get(ctx, userID, rowID)
}

func (s *Service) List(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	return s.list(ctx, userID, f)
}

func (s *Service) Update(ctx context.Context, userID, rowID string, patch core.FieldPatch) (core.ExpenseRecord, error) {
	if patch.Empty() {
		return s.get(ctx, userID, rowID)
	}
	if err := s.store.Update(ctx, userID, rowID, patch); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.logger.InfoContext(ctx, "Expense updated",
		log.FieldOperation, log.OpUpdate,
		log.FieldUserID, userID,
		log.FieldRowID, rowID)
	return s.get(ctx, userID, rowID)
}

func (s *Service) Delete(ctx context.Context, userID, rowID string) error {
	if err := s.store.Delete(ctx, userID, rowID); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "Expense deleted",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID,
		log.FieldRowID, rowID)
	return nil
}

// Search matches q case-insensitively against description, category,
// tags and notes.
func (s *Service) Search(ctx context.Context, userID, q string) ([]core.ExpenseRecord, error) {
	recs, err := s.list(ctx, userID, store.Filter{})
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(q))
	if needle == "" {
		return recs, nil
	}
	var out []core.ExpenseRecord
	for _, rec := range recs {
		haystack := strings.ToLower(strings.Join(append([]string{
			rec.Description, rec.Category.String(), rec.Notes,
		}, rec.Tags...), " "))
		if strings.Contains(haystack, needle) {
			out = append(out, rec)
		}
	}
	return out, nil
}
