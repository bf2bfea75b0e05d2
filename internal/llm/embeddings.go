package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// Input types distinguish corpus texts from search queries so both land
// in comparable vector spaces. Indexed texts must use "document" and
// query texts "query"; mixing them degrades retrieval.
const (
	inputTypeDocument = "document"
	inputTypeQuery    = "query"
)

// maxEmbedBatch is the provider's maximum batch size per request.
const maxEmbedBatch = 128

// EmbeddingsClient is a client for a Voyage-style embeddings API.
type EmbeddingsClient struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExpectedSize int // Expected vector size for validation

	maxRetries int
	limiter    *rate.Limiter
	client     *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the dimension every returned vector is validated
// against; it must match the Qdrant collection's vector size.
// limiter may be nil to disable client-side rate limiting.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize, maxRetries int, limiter *rate.Limiter) *EmbeddingsClient {
	return &EmbeddingsClient{
		BaseURL:      baseURL,
		APIKey:       apiKey,
		Model:        model,
		ExpectedSize: expectedSize,
		maxRetries:   maxRetries,
		limiter:      limiter,
		client:       http.DefaultClient,
	}
}

// embeddingsRequest represents the request payload for the embeddings API.
type embeddingsRequest struct {
	Model     string   `json:"model"`
	Input     []string `json:"input"`
	InputType string   `json:"input_type"`
}

// embeddingData represents a single embedding in the response.
type embeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// embeddingsResponse represents the response from the embeddings API.
type embeddingsResponse struct {
	Data []embeddingData `json:"data"`
}

// EmbedDocuments generates document-typed embeddings for the given texts,
// batching requests at the provider's batch ceiling. Returns one vector
// per input text, validated against ExpectedSize.
func (c *EmbeddingsClient) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	all := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += maxEmbedBatch {
		end := i + maxEmbedBatch
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := c.embed(ctx, texts[i:end], inputTypeDocument)
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}
	return all, nil
}

// EmbedQuery generates a query-typed embedding for a single search query.
func (c *EmbeddingsClient) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("empty query text")
	}
	vectors, err := c.embed(ctx, []string{text}, inputTypeQuery)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// embed performs one embeddings request with retry and size validation.
func (c *EmbeddingsClient) embed(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	var result [][]float32

	err := withRetry(ctx, c.maxRetries, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		vectors, err := c.doRequest(ctx, texts, inputType)
		if err != nil {
			return err
		}
		result = vectors
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (c *EmbeddingsClient) doRequest(ctx context.Context, texts []string, inputType string) ([][]float32, error) {
	url := fmt.Sprintf("%s/v1/embeddings", c.BaseURL)

	payload := embeddingsRequest{
		Model:     c.Model,
		Input:     texts,
		InputType: inputType,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	var embResp embeddingsResponse
	if err := json.NewDecoder(resp.Body).Decode(&embResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(embResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embResp.Data))
	}

	result := make([][]float32, len(embResp.Data))
	for i, data := range embResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
