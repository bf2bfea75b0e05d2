package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"golang.org/x/time/rate"

	"semantic-ats/internal/candidate"
	"semantic-ats/internal/config"
	"semantic-ats/internal/http"
	"semantic-ats/internal/llm"
	"semantic-ats/internal/search"
	"semantic-ats/internal/vectorstore"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
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
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx := context.Background()

	// Initialize Qdrant vector store
	store, err := vectorstore.NewQdrantStore(
		cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection,
		cfg.VectorSize, candidate.VectorNames,
	)
	if err != nil {
		log.Fatalf("Failed to create Qdrant client: %v", err)
	}

	// Ensure collection exists with correct named-vector schema
	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure Qdrant collection: %v", err)
	}
	slog.Info("Qdrant collection ready",
		"collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

	// One rate limiter shared across all embedding calls
	limiter := rate.NewLimiter(rate.Limit(cfg.ProviderRPS), 1)
	embedder := llm.NewEmbeddingsClient(
		cfg.VoyageBaseURL, cfg.VoyageAPIKey, cfg.EmbeddingModel,
		cfg.VectorSize, cfg.MaxRetries, limiter,
	)

	searcher := search.NewService(embedder, store, cfg.SearchLimit)
	slog.Info("Search service initialized", "limit", cfg.SearchLimit)

	router := http.NewRouter(&http.Deps{
		Searcher: searcher,
		Store:    store,
	})

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
