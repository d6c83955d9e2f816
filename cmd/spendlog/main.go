package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spendlog/internal/ai"
	"spendlog/internal/amqp"
	"spendlog/internal/analytics"
	"spendlog/internal/auth"
	"spendlog/internal/config"
	"spendlog/internal/expense"
	apphttp "spendlog/internal/http"
	"spendlog/internal/log"
	"spendlog/internal/store"
	googlestore "spendlog/internal/store/google"
	"spendlog/internal/store/memory"
	"spendlog/internal/store/mirror"
	"spendlog/internal/store/sqlite"
)

func main() {
	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rowStore, cleanup, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize row store", log.FieldError, err.Error(), log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer cleanup()
	logger.Info("Row store initialized", log.FieldBackend, cfg.DataBackend)

	extractor := buildExtractor(ctx, cfg, logger)

	expenses := expense.NewService(rowStore, extractor, logger, cfg.DefaultCurrency)
	engine := analytics.NewEngine(rowStore, extractor, logger, cfg.DefaultCurrency)
	gate := auth.NewGatekeeper(cfg.StaticPassword, cfg.JWTSecretKey, cfg.TokenTTL, cfg.DefaultUser)

	handlers := apphttp.NewHandlers(expenses, engine, gate, logger, cfg.DefaultUser)
	srv := apphttp.NewServer(":"+cfg.Port, handlers, gate, logger)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err.Error())
		}
		cancel()
	}()

	logger.Info("Starting spendlog server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend)
	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// buildStore selects the row store backend. The sqlite backend is
// wrapped in the sync mirror when a broker is configured; a worker
// process then copies rows into the spreadsheet.
func buildStore(ctx context.Context, cfg *config.Config, logger *log.Logger) (store.RowStore, func(), error) {
	noop := func() {}

	switch cfg.DataBackend {
	case "sheets":
		client, err := googlestore.New(ctx, googlestore.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil

	case "sqlite":
		db, err := sqlite.New(cfg.SQLiteDBPath)
		if err != nil {
			return nil, noop, err
		}
		if cfg.AMQPURL == "" {
			logger.Info("AMQP not configured, sheet mirroring disabled")
			return db, func() { db.Close() }, nil
		}
		broker, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			db.Close()
			return nil, noop, err
		}
		cleanup := func() {
			broker.Close()
			db.Close()
		}
		return mirror.New(db, broker, logger), cleanup, nil

	default:
		return memory.New(), noop, nil
	}
}

// buildExtractor prefers the hosted model; without credentials the
// deterministic rule parser runs alone.
func buildExtractor(ctx context.Context, cfg *config.Config, logger *log.Logger) ai.Extractor {
	if cfg.GeminiAPIKey == "" {
		logger.Info("No Gemini API key, using rule-based extraction only")
		return ai.NewRuleExtractor(cfg.DefaultCurrency)
	}
	gemini, err := ai.NewGemini(ctx, ai.GeminiConfig{
		APIKey:          cfg.GeminiAPIKey,
		Model:           cfg.GeminiModel,
		Timeout:         cfg.AITimeout,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		logger.Error("Failed to initialize Gemini client, falling back to rules", log.FieldError, err.Error())
		return ai.NewRuleExtractor(cfg.DefaultCurrency)
	}
	logger.Info("Gemini extractor initialized", "model", cfg.GeminiModel)
	return gemini
}
