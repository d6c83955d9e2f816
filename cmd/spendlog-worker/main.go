// The sync worker copies locally stored expense rows into the Google
// spreadsheet. It consumes sync messages published by the API server
// and scans for unsynced rows on an interval as a backstop.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"spendlog/internal/amqp"
	"spendlog/internal/config"
	"spendlog/internal/log"
	googlestore "spendlog/internal/store/google"
	"spendlog/internal/store/sqlite"
	"spendlog/internal/worker"
)

func main() {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL must be set for the sync worker")
		os.Exit(1)
	}
	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID must be set for the sync worker")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	db, err := sqlite.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite database", log.FieldError, err.Error(), "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer db.Close()

	sheet, err := googlestore.New(ctx, googlestore.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
	})
	if err != nil {
		logger.Error("Failed to initialize Sheets client", log.FieldError, err.Error())
		os.Exit(1)
	}

	broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to connect to AMQP broker", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer broker.Close()

	w := worker.NewSyncWorker(db, sheet, logger, cfg.SyncBatchSize, cfg.SyncInterval)

	logger.Info("Starting sync worker",
		log.FieldOperation, log.OpStartup,
		"queue", cfg.AMQPQueue,
		"batch_size", cfg.SyncBatchSize,
		"interval", cfg.SyncInterval.String())
	if err := w.Run(ctx, broker); err != nil {
		logger.Error("Sync worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("Sync worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}
