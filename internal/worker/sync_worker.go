// Package worker mirrors locally stored rows into the spreadsheet. It
// consumes sync messages published by the SQLite backend and also scans
// for unsynced rows periodically, as a backstop for lost messages.
package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"spendlog/internal/amqp"
	"spendlog/internal/core"
	"spendlog/internal/log"
)

// LocalStore is the subset of the SQLite store the worker needs.
type LocalStore interface {
	GetAny(ctx context.Context, rowID string) (core.ExpenseRecord, error)
	ListUnsynced(ctx context.Context, limit int) ([]core.ExpenseRecord, error)
	MarkSynced(ctx context.Context, rowID string) error
}

// SheetMirror is the subset of the spreadsheet client the worker needs.
type SheetMirror interface {
	SyncRecord(ctx context.Context, rec core.ExpenseRecord) error
	RemoveRow(ctx context.Context, rowID string) error
}

// Consumer delivers sync messages until its context is done.
type Consumer interface {
	Consume(ctx context.Context, handler func(*amqp.SyncMessage) error) error
}

type SyncWorker struct {
	local     LocalStore
	sheet     SheetMirror
	logger    *log.Logger
	batchSize int
	interval  time.Duration
}

func NewSyncWorker(local LocalStore, sheet SheetMirror, logger *log.Logger, batchSize int, interval time.Duration) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 50
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &SyncWorker{
		local:     local,
		sheet:     sheet,
		logger:    logger.WithComponent(log.ComponentWorker),
		batchSize: batchSize,
		interval:  interval,
	}
}

// HandleMessage dispatches one sync message.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Op {
	case amqp.OpUpsert:
		return w.handleUpsert(ctx, msg.RowID)
	case amqp.OpDelete:
		return w.handleDelete(ctx, msg.RowID)
	}
	// Unknown ops are dropped; requeueing them would loop forever.
	w.logger.WarnContext(ctx, "Dropping message with unknown op",
		"op", string(msg.Op),
		log.FieldRowID, msg.RowID)
	return nil
}

func (w *SyncWorker) handleUpsert(ctx context.Context, rowID string) error {
	rec, err := w.local.GetAny(ctx, rowID)
	if errors.Is(err, core.ErrNotFound) {
		// Row was deleted locally before the message arrived.
		w.logger.WarnContext(ctx, "Row gone before sync, skipping",
			log.FieldOperation, log.OpSync,
			log.FieldRowID, rowID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get row from local store: %w", err)
	}
	return w.syncRecord(ctx, rec)
}

func (w *SyncWorker) handleDelete(ctx context.Context, rowID string) error {
	if err := w.sheet.RemoveRow(ctx, rowID); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("remove row from sheet: %w", err)
	}
	w.logger.InfoContext(ctx, "Removed row from sheet",
		log.FieldOperation, log.OpSync,
		log.FieldRowID, rowID)
	return nil
}

func (w *SyncWorker) syncRecord(ctx context.Context, rec core.ExpenseRecord) error {
	if err := w.sheet.SyncRecord(ctx, rec); err != nil {
		return fmt.Errorf("sync row to sheet: %w", err)
	}
	if err := w.local.MarkSynced(ctx, rec.RowID); err != nil {
		// The sheet write succeeded; the backstop scan will retry the
		// bookkeeping, and upserts are idempotent by row ID.
		w.logger.ErrorContext(ctx, "Failed to mark row synced",
			log.FieldRowID, rec.RowID,
			log.FieldError, err.Error())
	}
	w.logger.InfoContext(ctx, "Synced row to sheet",
		log.FieldOperation, log.OpSync,
		log.FieldRowID, rec.RowID,
		log.FieldUserID, rec.UserID,
		log.FieldAmountCents, rec.Amount.Cents)
	return nil
}

// ProcessPending scans for rows the message path missed and syncs them.
func (w *SyncWorker) ProcessPending(ctx context.Context) error {
	pending, err := w.local.ListUnsynced(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list unsynced rows: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	w.logger.InfoContext(ctx, "Processing unsynced rows", "count", len(pending))
	for _, rec := range pending {
		if err := w.syncRecord(ctx, rec); err != nil {
			w.logger.ErrorContext(ctx, "Failed to sync pending row",
				log.FieldRowID, rec.RowID,
				log.FieldError, err.Error())
		}
	}
	return nil
}

// Run consumes messages and runs the periodic backstop scan until ctx
// is cancelled. A startup scan recovers anything missed while the
// worker was down.
func (w *SyncWorker) Run(ctx context.Context, consumer Consumer) error {
	if err := w.ProcessPending(ctx); err != nil {
		w.logger.ErrorContext(ctx, "Startup scan failed", log.FieldError, err.Error())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return consumer.Consume(ctx, func(msg *amqp.SyncMessage) error {
			return w.HandleMessage(ctx, msg)
		})
	})

	g.Go(func() error {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				if err := w.ProcessPending(ctx); err != nil {
					w.logger.ErrorContext(ctx, "Backstop scan failed", log.FieldError, err.Error())
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
