/**
 * Bill Extraction Worker - Main Entry Point
 *
 * Go worker that turns scanned hospital and utility bills into structured
 * line items.
 *
 * Architecture:
 * - Asynq consumer for Redis-backed job queue
 * - pdftoppm rasterization at 300 DPI
 * - Tesseract word-level OCR with image enhancement
 * - Unsupervised table layout reconstruction (rows, columns, cells)
 * - Line-item parsing, cross-page dedup, totals reconciliation
 * - PostgreSQL persistence for jobs and extraction results (optional)
 */

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/docuflow/billextract-worker/internal/config"
	"github.com/docuflow/billextract-worker/internal/logging"
	"github.com/docuflow/billextract-worker/internal/processor"
	"github.com/docuflow/billextract-worker/internal/queue"
	"github.com/docuflow/billextract-worker/internal/rasterize"
	"github.com/docuflow/billextract-worker/internal/recognize"
	"github.com/docuflow/billextract-worker/internal/storage"
)

func main() {
	logger := logging.NewLogger("billextract-worker")

	if err := godotenv.Load(".env"); err != nil {
		logger.Warn(".env not found, using system environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker starting",
		"redis", cfg.RedisURL,
		"queue", cfg.QueueName,
		"concurrency", cfg.WorkerConcurrency,
		"pageWorkers", cfg.PageWorkers)

	// PostgreSQL is optional: without it the worker still extracts and
	// publishes results over Redis, it just skips persistence.
	var store *storage.PostgresStore
	if cfg.DatabaseURL != "" {
		store, err = storage.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			logger.Error("Failed to connect to PostgreSQL", "error", err)
			os.Exit(1)
		}
		defer store.Close()
		logger.Info("PostgreSQL connected")
	} else {
		logger.Warn("DATABASE_URL not set, persistence disabled")
	}

	recognizer, err := recognize.NewTesseractRecognizer(cfg.TesseractLang)
	if err != nil {
		logger.Error("Failed to initialize Tesseract", "error", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	rasterizer := rasterize.NewPopplerRasterizer()
	rasterizer.DPI = cfg.RasterDPI

	proc, err := processor.NewBillProcessor(processor.ProcessorConfig{
		Recognizer:  recognizer,
		Rasterizer:  rasterizer,
		Store:       store,
		PageWorkers: cfg.PageWorkers,
		TempDir:     cfg.TempDir,
		Options: processor.ExtractOptions{
			YThresh:       cfg.RowYThresh,
			MaxCols:       cfg.MaxColumns,
			NameThreshold: cfg.DedupeNameThreshold,
			AmountTol:     cfg.DedupeAmountTol,
		},
	})
	if err != nil {
		logger.Error("Failed to initialize processor", "error", err)
		os.Exit(1)
	}

	events, err := queue.NewEventPublisher(cfg.RedisURL, cfg.QueueName)
	if err != nil {
		logger.Error("Failed to connect to Redis for events", "error", err)
		os.Exit(1)
	}
	defer events.Close()

	consumer, err := queue.NewConsumer(&queue.ConsumerConfig{
		RedisURL:          cfg.RedisURL,
		QueueName:         cfg.QueueName,
		Concurrency:       cfg.WorkerConcurrency,
		Processor:         proc,
		Events:            events,
		ProcessingTimeout: int64(cfg.ProcessingTimeout),
	})
	if err != nil {
		logger.Error("Failed to initialize queue consumer", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := consumer.Start(ctx); err != nil {
		logger.Error("Failed to start queue consumer", "error", err)
		os.Exit(1)
	}

	logger.Info("Worker ready, waiting for jobs",
		"queue", cfg.QueueName,
		"language", cfg.TesseractLang,
		"dpi", cfg.RasterDPI)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("Shutdown signal received", "signal", sig)

	if err := consumer.Stop(ctx); err != nil {
		logger.Error("Error stopping queue consumer", "error", err)
	}

	logger.Info("Shutdown complete")
}
