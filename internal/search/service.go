package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"semantic-ats/internal/contextutil"
	"semantic-ats/internal/vectorstore"
)

// Sentinel errors distinguish who is at fault so the HTTP layer can map
// them to the right status code.
var (
	// ErrInvalidMode is returned for a mode outside the supported set.
	ErrInvalidMode = errors.New("invalid search mode")
	// ErrEmbeddingUnavailable is returned when the embedding provider fails.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")
	// ErrStoreUnavailable is returned when the vector store fails.
	ErrStoreUnavailable = errors.New("vector store unavailable")
)

// QueryEmbedder generates a query-side embedding for search text.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Searcher answers semantic candidate queries.
type Searcher interface {
	Search(ctx context.Context, query string, mode Mode) ([]Result, error)
}

// Service routes queries to the named vector selected by the mode and
// assembles ranked candidate results.
type Service struct {
	embedder QueryEmbedder
	store    vectorstore.CandidateStore
	limit    int
}

// NewService creates a search service returning at most limit results.
func NewService(embedder QueryEmbedder, store vectorstore.CandidateStore, limit int) *Service {
	if limit < 1 {
		limit = 5
	}
	return &Service{
		embedder: embedder,
		store:    store,
		limit:    limit,
	}
}

// Search embeds the query and ranks candidates against the mode's vector.
//
// An unknown mode is the caller's error and fails before any provider
// call. An empty query returns empty results rather than an error, also
// without touching the providers.
func (s *Service) Search(ctx context.Context, query string, mode Mode) ([]Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		logger.InfoContext(ctx, "empty query, returning no results", "mode", mode)
		return []Result{}, nil
	}

	logger.InfoContext(ctx, "search started", "mode", mode, "vector", mode.VectorName())

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed query", "mode", mode, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrEmbeddingUnavailable, err)
	}

	hits, err := s.store.Search(ctx, mode.VectorName(), queryVector, s.limit)
	if err != nil {
		logger.ErrorContext(ctx, "vector search failed", "mode", mode, "error", err)
		return nil, fmt.Errorf("%w: %s", ErrStoreUnavailable, err)
	}

	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Filename:    payloadString(hit.Payload, "filename"),
			Score:       normalizeScore(hit.Score),
			Story:       payloadString(hit.Payload, "story"),
			Personality: payloadString(hit.Payload, "personality"),
			RawText:     payloadString(hit.Payload, "raw_text"),
		})
	}

	logger.InfoContext(ctx, "search completed", "mode", mode, "results", len(results))
	return results, nil
}

// normalizeScore maps cosine similarity from [-1, 1] to [0, 1], clamping
// any floating point drift outside the range.
func normalizeScore(score float32) float64 {
	normalized := (float64(score) + 1) / 2
	if normalized < 0 {
		return 0
	}
	if normalized > 1 {
		return 1
	}
	return normalized
}

// payloadString reads an optional string field from a search payload.
func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	if s, ok := payload[key].(string); ok {
		return s
	}
	return ""
}
