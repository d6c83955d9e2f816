// Package mirror decorates a row store so every write publishes a sync
// message. The SQLite backend uses it to keep the spreadsheet copy
// up to date without blocking requests on the Sheets API.
package mirror

import (
	"context"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
	"spendlog/internal/store"
)

// Publisher is the outbound side of the sync queue.
type Publisher interface {
	PublishSync(ctx context.Context, op amqp.Op, rowID string) error
}

type Store struct {
	inner  store.RowStore
	pub    Publisher
	logger *log.Logger
}

var _ store.RowStore = (*Store)(nil)

func New(inner store.RowStore, pub Publisher, logger *log.Logger) *Store {
	return &Store{
		inner:  inner,
		pub:    pub,
		logger: logger.WithComponent(log.ComponentStore),
	}
}

// publish failures are logged, not returned: the local write already
// succeeded and the worker's backstop scan picks up unsynced rows.
func (s *Store) publish(ctx context.Context, op amqp.Op, rowID string) {
	if err := s.pub.PublishSync(ctx, op, rowID); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish sync message",
			log.FieldOperation, log.OpSync,
			log.FieldRowID, rowID,
			log.FieldError, err.Error())
	}
}

func (s *Store) Append(ctx context.Context, rec core.ExpenseRecord) (string, error) {
	rowID, err := s.inner.Append(ctx, rec)
	if err != nil {
		return "", err
	}
	s.publish(ctx, amqp.OpUpsert, rowID)
	return rowID, nil
}

func (s *Store) List(ctx context.Context, userID string, f store.Filter) ([]core.ExpenseRecord, error) {
	return s.inner.List(ctx, userID, f)
}

func (s *Store) Get(ctx context.Context, userID, rowID string) (core.ExpenseRecord, error) {
	return s.inner.Get(ctx, userID, rowID)
}

func (s *Store) Update(ctx context.Context, userID, rowID string, patch core.FieldPatch) error {
	if err := s.inner.Update(ctx, userID, rowID, patch); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpUpsert, rowID)
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, rowID string) error {
	if err := s.inner.Delete(ctx, userID, rowID); err != nil {
		return err
	}
	s.publish(ctx, amqp.OpDelete, rowID)
	return nil
}
