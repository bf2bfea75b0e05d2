package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_candidate_store.go -package=mocks semantic-ats/internal/vectorstore CandidateStore

import (
	"context"
	"errors"
)

// ErrDimensionMismatch marks an upsert rejected because a vector does not
// match the collection's configured size. The caller treats it as a
// per-record failure, not a batch abort.
var ErrDimensionMismatch = errors.New("vector dimension mismatch")

// Point is one candidate in the collection: a stable ID, a payload with
// the record's text fields, and up to three independently-addressable
// named vectors.
type Point struct {
	ID      string
	Vectors map[string][]float32
	Payload map[string]any
}

// SearchResult is a single hit from a named-vector similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Payload map[string]any
}

// CandidateStore owns the multi-vector candidate collection.
type CandidateStore interface {
	// EnsureCollection creates the named-vector collection if it does not
	// exist, or validates the vector sizes if it does.
	EnsureCollection(ctx context.Context) error
	// Upsert creates or fully replaces a point: payload and all vectors.
	// Vectors absent from the point are cleared, never left stale.
	Upsert(ctx context.Context, point Point) error
	// Search compares queryVector against the named vector across all
	// points. Points lacking that named vector are excluded, never scored
	// as zero. Results are ordered by descending similarity.
	Search(ctx context.Context, vectorName string, queryVector []float32, limit int) ([]SearchResult, error)
}
