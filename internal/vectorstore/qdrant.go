package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"semantic-ats/internal/contextutil"
)

// QdrantStore implements CandidateStore using a single Qdrant collection
// with one named vector per record field.
type QdrantStore struct {
	client      *qdrant.Client
	collection  string
	vectorSize  int
	vectorNames []string
}

// NewQdrantStore creates a Qdrant-backed candidate store.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) will be derived from the HTTP port.
func NewQdrantStore(urlStr, apiKey, collection string, vectorSize int, vectorNames []string) (*QdrantStore, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// Extract port from URL, default to 6333 for HTTP
	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
		UseTLS: parsedURL.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantStore{
		client:      client,
		collection:  collection,
		vectorSize:  vectorSize,
		vectorNames: vectorNames,
	}, nil
}

// EnsureCollection ensures the candidate collection exists with every
// named vector configured at the expected size. If the collection exists,
// the per-vector sizes are validated; if it doesn't, it is created.
func (s *QdrantStore) EnsureCollection(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection",
			"collection", s.collection, "vector_size", s.vectorSize, "vectors", s.vectorNames)

		params := make(map[string]*qdrant.VectorParams, len(s.vectorNames))
		for _, name := range s.vectorNames {
			params[name] = &qdrant.VectorParams{
				Size:     uint64(s.vectorSize),
				Distance: qdrant.Distance_Cosine,
			}
		}
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig:  qdrant.NewVectorsConfigMap(params),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		logger.InfoContext(ctx, "collection created", "collection", s.collection)
		return nil
	}

	// Collection exists, validate each named vector's size
	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}

	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}

	paramsMap := vectorsConfig.GetParamsMap()
	if paramsMap == nil {
		return fmt.Errorf("collection %q does not use named vectors", s.collection)
	}

	configured := paramsMap.GetMap()
	for _, name := range s.vectorNames {
		params, ok := configured[name]
		if !ok {
			return fmt.Errorf("collection %q is missing named vector %q", s.collection, name)
		}
		if int(params.Size) != s.vectorSize {
			return fmt.Errorf("named vector %q size mismatch: expected %d, got %d",
				name, s.vectorSize, params.Size)
		}
	}

	logger.InfoContext(ctx, "collection validated",
		"collection", s.collection, "vector_size", s.vectorSize)
	return nil
}

// Upsert creates or fully replaces the point for one candidate. Every
// present vector is dimension-checked before anything is sent, so a bad
// record never reaches the collection half-written.
func (s *QdrantStore) Upsert(ctx context.Context, point Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if err := validateVectors(point, s.vectorSize); err != nil {
		return err
	}

	vectors := make(map[string]*qdrant.Vector, len(point.Vectors))
	for name, vec := range point.Vectors {
		vectors[name] = qdrant.NewVector(vec...)
	}

	qdrantPoint := &qdrant.PointStruct{
		Id:      qdrant.NewID(point.ID),
		Vectors: qdrant.NewVectorsMap(vectors),
	}
	if len(point.Payload) > 0 {
		qdrantPoint.Payload = qdrant.NewValueMap(point.Payload)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{qdrantPoint},
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert point",
			"collection", s.collection, "point_id", point.ID, "error", err)
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	logger.InfoContext(ctx, "upserted point",
		"collection", s.collection, "point_id", point.ID, "vectors", len(point.Vectors))
	return nil
}

// Search runs a similarity query against one named vector.
func (s *QdrantStore) Search(ctx context.Context, vectorName string, queryVector []float32, limit int) ([]SearchResult, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be greater than 0")
	}
	if len(queryVector) != s.vectorSize {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection expects %d",
			ErrDimensionMismatch, len(queryVector), s.vectorSize)
	}

	qdrantLimit := uint64(limit)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(queryVector...),
		Using:          qdrant.PtrOf(vectorName),
		Limit:          &qdrantLimit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points",
			"collection", s.collection, "vector", vectorName, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	results := make([]SearchResult, 0, len(scoredPoints))
	for _, result := range scoredPoints {
		pointID := ""
		if result.Id != nil {
			pointID = result.Id.GetUuid()
		}

		payload := make(map[string]any)
		if result.Payload != nil {
			payload = convertPayloadToMap(result.Payload)
		}

		results = append(results, SearchResult{
			PointID: pointID,
			Score:   result.Score,
			Payload: payload,
		})
	}

	logger.InfoContext(ctx, "search completed",
		"collection", s.collection, "vector", vectorName, "results", len(results))
	return results, nil
}

// validateVectors checks every vector on a point against the expected size.
func validateVectors(point Point, vectorSize int) error {
	for name, vec := range point.Vectors {
		if len(vec) != vectorSize {
			return fmt.Errorf("%w: vector %q has %d dimensions, expected %d",
				ErrDimensionMismatch, name, len(vec), vectorSize)
		}
	}
	return nil
}

// convertPayloadToMap converts Qdrant payload to map[string]any.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		if v == nil {
			continue
		}
		result[k] = convertValue(v)
	}
	return result
}

// convertValue converts a Qdrant Value to Go any type.
func convertValue(v *qdrant.Value) any {
	switch val := v.Kind.(type) {
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_ListValue:
		list := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			list[i] = convertValue(item)
		}
		return list
	case *qdrant.Value_StructValue:
		return convertPayloadToMap(val.StructValue.Fields)
	default:
		return nil
	}
}
