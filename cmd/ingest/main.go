package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/time/rate"

	"semantic-ats/internal/candidate"
	"semantic-ats/internal/config"
	"semantic-ats/internal/contextutil"
	"semantic-ats/internal/ingest"
	"semantic-ats/internal/llm"
	"semantic-ats/internal/storage"
	"semantic-ats/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Ctrl-C stops dispatching new files; in-flight files finish
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	// Ingestion ledger
	db, err := storage.New(cfg.LedgerPath)
	if err != nil {
		log.Fatalf("Failed to open ledger database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()
	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	ledger := storage.NewIngestionRepo(db)
	slog.Info("Ledger initialized", "path", cfg.LedgerPath)

	// Qdrant vector store
	store, err := vectorstore.NewQdrantStore(
		cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection,
		cfg.VectorSize, candidate.VectorNames,
	)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Provider clients share one rate limiter so concurrent workers
	// stay under the configured request rate
	limiter := rate.NewLimiter(rate.Limit(cfg.ProviderRPS), 1)
	generator := llm.NewGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.MaxRetries, limiter)
	embedder := llm.NewEmbeddingsClient(
		cfg.VoyageBaseURL, cfg.VoyageAPIKey, cfg.EmbeddingModel,
		cfg.VectorSize, cfg.MaxRetries, limiter,
	)

	builder := candidate.NewBuilder(
		llm.NewStoryExtractor(generator),
		llm.NewPersonalityExtractor(generator),
		embedder,
	)

	orch := ingest.NewOrchestrator(
		builder, store, ledger,
		cfg.ResumeDir, cfg.ProcessedDir, cfg.ErrorDir,
		cfg.IngestWorkers,
	)

	summary, err := orch.Run(ctx)
	if err != nil {
		slog.Error("Ingestion run failed", "error", err,
			"scanned", summary.Scanned, "full", summary.Full,
			"partial", summary.Partial, "failed", summary.Failed)
		os.Exit(1)
	}

	slog.Info("Ingestion run complete",
		"scanned", summary.Scanned, "full", summary.Full,
		"partial", summary.Partial, "failed", summary.Failed)
	if summary.Failed > 0 {
		os.Exit(2)
	}
}
