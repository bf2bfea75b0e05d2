package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"golang.org/x/time/rate"
)

// maxNarrativeTokens caps the length of generated narratives.
const maxNarrativeTokens = 1024

// Generator produces free-text narratives from resume text using the
// Anthropic Messages API. Calls are rate-limited and retried with
// exponential backoff; non-retryable provider errors surface immediately.
type Generator struct {
	client     *anthropic.Client
	model      string
	maxRetries int
	limiter    *rate.Limiter
}

// NewGenerator creates a Generator for the given model.
// limiter may be nil to disable client-side rate limiting. Extra request
// options are passed through to the SDK client (tests use this to point
// the client at a local server).
func NewGenerator(apiKey, model string, maxRetries int, limiter *rate.Limiter, opts ...option.RequestOption) *Generator {
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &Generator{
		client:     &client,
		model:      model,
		maxRetries: maxRetries,
		limiter:    limiter,
	}
}

// Generate sends the instruction and resume text to the model and returns
// the generated narrative. An empty completion is treated as an error: the
// generation boundary promises non-empty text or failure.
func (g *Generator) Generate(ctx context.Context, instruction, text string) (string, error) {
	prompt := fmt.Sprintf("%s\n\nText: %s", instruction, text)

	var out string
	err := withRetry(ctx, g.maxRetries, func() error {
		if g.limiter != nil {
			if err := g.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(g.model),
			MaxTokens: maxNarrativeTokens,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if err != nil {
			return fmt.Errorf("anthropic request failed: %w", err)
		}

		var sb strings.Builder
		for _, block := range msg.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}

		out = strings.TrimSpace(sb.String())
		if out == "" {
			return fmt.Errorf("empty completion from model %s", g.model)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	return out, nil
}
