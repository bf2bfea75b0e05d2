package candidate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"semantic-ats/internal/contextutil"
)

// Extractor derives a narrative text from raw resume text.
// Implementations wrap a text-generation provider with retries.
type Extractor interface {
	Extract(ctx context.Context, resumeText string) (string, error)
}

// Embedder generates document embeddings for the given texts.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Builder assembles a Record from raw resume text: it runs the story and
// personality extractors, embeds every text field that exists, and
// classifies the outcome. Sub-stage failures are isolated; Build never
// returns an error, only a degraded outcome.
type Builder struct {
	story       Extractor
	personality Extractor
	embedder    Embedder
}

// NewBuilder creates a Builder from the two extractors and an embedder.
func NewBuilder(story, personality Extractor, embedder Embedder) *Builder {
	return &Builder{
		story:       story,
		personality: personality,
		embedder:    embedder,
	}
}

// Build produces a Record for the given resume with as many fields
// populated as possible.
//
// Empty raw text fails immediately without any provider call. A failed
// narrative extraction (or its embedding) demotes that field to absent
// and the outcome to partial; a failed raw-text embedding demotes the
// whole record to failed, since such a record would not be reachable in
// any search mode.
func (b *Builder) Build(ctx context.Context, filename, rawText string) (*Record, Outcome) {
	logger := contextutil.LoggerFromContext(ctx)

	// Raw text is kept verbatim; trimming is only for the empty check.
	record := &Record{
		ID:          PointID(filename),
		Filename:    filename,
		RawText:     rawText,
		Vectors:     make(map[string][]float32),
		ProcessedAt: time.Now().UTC(),
	}

	if strings.TrimSpace(rawText) == "" {
		logger.WarnContext(ctx, "empty resume text", "filename", filename)
		return record, OutcomeFailed
	}

	storyRes := b.extract(ctx, b.story, record.RawText, "story")
	personalityRes := b.extract(ctx, b.personality, record.RawText, "personality")

	// The resume embedding decides indexability, so embed it first.
	resumeVec, err := b.embedField(ctx, record.RawText)
	if err != nil {
		logger.ErrorContext(ctx, "failed to embed resume text", "filename", filename, "error", err)
		return record, OutcomeFailed
	}
	record.Vectors[VectorResume] = resumeVec

	if storyRes.OK() {
		if vec, err := b.embedField(ctx, storyRes.Text); err != nil {
			logger.WarnContext(ctx, "failed to embed story narrative", "filename", filename, "error", err)
		} else {
			record.StoryText = storyRes.Text
			record.Vectors[VectorStory] = vec
		}
	}

	if personalityRes.OK() {
		if vec, err := b.embedField(ctx, personalityRes.Text); err != nil {
			logger.WarnContext(ctx, "failed to embed personality analysis", "filename", filename, "error", err)
		} else {
			record.PersonalityText = personalityRes.Text
			record.Vectors[VectorPersonality] = vec
		}
	}

	outcome := classify(record)
	logger.InfoContext(ctx, "candidate record built",
		"filename", filename,
		"outcome", outcome.String(),
		"vectors", len(record.Vectors),
	)
	return record, outcome
}

// extract runs one extractor and wraps the result, logging failures.
func (b *Builder) extract(ctx context.Context, e Extractor, rawText, stage string) StageResult {
	logger := contextutil.LoggerFromContext(ctx)

	text, err := e.Extract(ctx, rawText)
	if err != nil {
		logger.WarnContext(ctx, "extraction failed", "stage", stage, "error", err)
		return Failed(fmt.Errorf("%s extraction: %w", stage, err))
	}
	if strings.TrimSpace(text) == "" {
		logger.WarnContext(ctx, "extraction returned empty text", "stage", stage)
		return Failed(fmt.Errorf("%s extraction: empty output", stage))
	}
	return Ok(text)
}

// embedField embeds a single text field.
func (b *Builder) embedField(ctx context.Context, text string) ([]float32, error) {
	vectors, err := b.embedder.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected 1 embedding, got %d", len(vectors))
	}
	return vectors[0], nil
}

// classify derives the outcome from which text+vector pairs are present.
func classify(r *Record) Outcome {
	if !r.HasVector(VectorResume) {
		return OutcomeFailed
	}
	if r.HasVector(VectorStory) && r.HasVector(VectorPersonality) {
		return OutcomeFull
	}
	return OutcomePartial
}
