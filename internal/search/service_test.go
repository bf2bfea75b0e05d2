package search

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/mock/gomock"

	"semantic-ats/internal/vectorstore"
	"semantic-ats/internal/vectorstore/mocks"
)

// fakeQueryEmbedder returns a fixed vector and counts calls.
type fakeQueryEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (f *fakeQueryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

func TestService_Search_InvalidMode(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
	store := mocks.NewMockCandidateStore(ctrl)

	svc := NewService(embedder, store, 5)

	for _, mode := range []Mode{"", "stories", "RESUME", "vibes"} {
		_, err := svc.Search(context.Background(), "backend engineer", mode)
		if !errors.Is(err, ErrInvalidMode) {
			t.Errorf("Search(mode=%q) = %v, want ErrInvalidMode", mode, err)
		}
	}

	if embedder.calls != 0 {
		t.Errorf("invalid mode must not trigger embedding, got %d calls", embedder.calls)
	}
}

func TestService_Search_EmptyQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
	store := mocks.NewMockCandidateStore(ctrl)

	svc := NewService(embedder, store, 5)

	for _, query := range []string{"", "   ", "\n\t"} {
		results, err := svc.Search(context.Background(), query, ModeStory)
		if err != nil {
			t.Errorf("Search(%q) error = %v, want nil", query, err)
		}
		if results == nil || len(results) != 0 {
			t.Errorf("Search(%q) = %v, want empty slice", query, results)
		}
	}

	if embedder.calls != 0 {
		t.Errorf("empty query must not trigger embedding, got %d calls", embedder.calls)
	}
}

func TestService_Search_ModeRoutesToNamedVector(t *testing.T) {
	tests := []struct {
		mode       Mode
		wantVector string
	}{
		{ModeStory, "story"},
		{ModePersonality, "personality"},
		{ModeResume, "resume"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
			store := mocks.NewMockCandidateStore(ctrl)

			store.EXPECT().
				Search(gomock.Any(), tt.wantVector, []float32{1, 0}, 5).
				Return([]vectorstore.SearchResult{}, nil)

			svc := NewService(embedder, store, 5)
			if _, err := svc.Search(context.Background(), "systems thinker", tt.mode); err != nil {
				t.Fatalf("Search() error = %v", err)
			}
		})
	}
}

func TestService_Search_ModeIsolation(t *testing.T) {
	// The same query ranks candidates differently per mode because each
	// mode consults a different vector space.
	ctrl := gomock.NewController(t)
	embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
	store := mocks.NewMockCandidateStore(ctrl)

	aliceHit := vectorstore.SearchResult{
		PointID: "id-alice",
		Score:   0.9,
		Payload: map[string]any{"filename": "alice.txt", "raw_text": "Alice. Backend engineering."},
	}
	bobHit := vectorstore.SearchResult{
		PointID: "id-bob",
		Score:   0.8,
		Payload: map[string]any{"filename": "bob.txt", "raw_text": "Bob. UX design."},
	}

	store.EXPECT().
		Search(gomock.Any(), "story", gomock.Any(), gomock.Any()).
		Return([]vectorstore.SearchResult{aliceHit, bobHit}, nil)
	store.EXPECT().
		Search(gomock.Any(), "resume", gomock.Any(), gomock.Any()).
		Return([]vectorstore.SearchResult{bobHit, aliceHit}, nil)

	svc := NewService(embedder, store, 5)

	storyResults, err := svc.Search(context.Background(), "growth journey", ModeStory)
	if err != nil {
		t.Fatalf("story Search() error = %v", err)
	}
	resumeResults, err := svc.Search(context.Background(), "growth journey", ModeResume)
	if err != nil {
		t.Fatalf("resume Search() error = %v", err)
	}

	if storyResults[0].Filename != "alice.txt" {
		t.Errorf("story mode top hit = %s, want alice.txt", storyResults[0].Filename)
	}
	if resumeResults[0].Filename != "bob.txt" {
		t.Errorf("resume mode top hit = %s, want bob.txt", resumeResults[0].Filename)
	}
}

func TestService_Search_ResultAssembly(t *testing.T) {
	ctrl := gomock.NewController(t)
	embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
	store := mocks.NewMockCandidateStore(ctrl)

	store.EXPECT().
		Search(gomock.Any(), "story", gomock.Any(), gomock.Any()).
		Return([]vectorstore.SearchResult{
			{
				PointID: "id-full",
				Score:   0.5,
				Payload: map[string]any{
					"filename":    "full.txt",
					"raw_text":    "the resume",
					"story":       "the story",
					"personality": "the personality",
				},
			},
			{
				PointID: "id-partial",
				Score:   0.25,
				// Partial record: personality never made it in
				Payload: map[string]any{
					"filename": "partial.txt",
					"raw_text": "another resume",
					"story":    "another story",
				},
			},
		}, nil)

	svc := NewService(embedder, store, 5)
	results, err := svc.Search(context.Background(), "curious builder", ModeStory)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Search() returned %d results, want 2", len(results))
	}

	full := results[0]
	if full.Filename != "full.txt" || full.Story != "the story" ||
		full.Personality != "the personality" || full.RawText != "the resume" {
		t.Errorf("full record assembled wrong: %+v", full)
	}

	partial := results[1]
	if partial.Personality != "" {
		t.Errorf("partial record should have empty personality, got %q", partial.Personality)
	}
	if partial.Story != "another story" {
		t.Errorf("partial record story = %q, want %q", partial.Story, "another story")
	}
}

func TestService_Search_ProviderErrorsPropagate(t *testing.T) {
	t.Run("embedding failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := &fakeQueryEmbedder{err: errors.New("bad status 503")}
		store := mocks.NewMockCandidateStore(ctrl)

		svc := NewService(embedder, store, 5)
		_, err := svc.Search(context.Background(), "query", ModeResume)
		if !errors.Is(err, ErrEmbeddingUnavailable) {
			t.Fatalf("Search() with failing embedder = %v, want ErrEmbeddingUnavailable", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		embedder := &fakeQueryEmbedder{vector: []float32{1, 0}}
		store := mocks.NewMockCandidateStore(ctrl)
		store.EXPECT().
			Search(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, errors.New("connection refused"))

		svc := NewService(embedder, store, 5)
		_, err := svc.Search(context.Background(), "query", ModeResume)
		if !errors.Is(err, ErrStoreUnavailable) {
			t.Fatalf("Search() with failing store = %v, want ErrStoreUnavailable", err)
		}
	})
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		raw  float32
		want float64
	}{
		{1, 1},
		{-1, 0},
		{0, 0.5},
		{0.5, 0.75},
		{1.0000002, 1}, // clamp float drift
		{-1.0000002, 0},
	}

	for _, tt := range tests {
		got := normalizeScore(tt.raw)
		if math.Abs(got-tt.want) > 1e-6 {
			t.Errorf("normalizeScore(%v) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestMode_Valid(t *testing.T) {
	valid := []Mode{ModeStory, ModePersonality, ModeResume}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("%q should be valid", m)
		}
	}
	invalid := []Mode{"", "Story", "raw", "all"}
	for _, m := range invalid {
		if m.Valid() {
			t.Errorf("%q should be invalid", m)
		}
	}
}
