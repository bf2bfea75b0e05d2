package ingest

import (
	"strings"
	"testing"
)

func TestMarkdownExtractor_PlainText(t *testing.T) {
	extractor := NewMarkdownExtractor()

	tests := []struct {
		name        string
		content     string
		want        []string // substrings that must appear
		wantAbsent  []string // markdown syntax that must not leak through
	}{
		{
			name:       "headings and paragraphs",
			content:    "# Alice Smith\n\nBackend engineer with 5 years of experience.\n\n## Skills\n\nGo, PostgreSQL",
			want:       []string{"Alice Smith", "Backend engineer", "Skills", "Go, PostgreSQL"},
			wantAbsent: []string{"#"},
		},
		{
			name:       "emphasis stripped",
			content:    "Worked on **distributed systems** and *search infrastructure*.",
			want:       []string{"distributed systems", "search infrastructure"},
			wantAbsent: []string{"**", "*"},
		},
		{
			name:       "list items",
			content:    "## Experience\n\n- Led a team of four\n- Shipped a payments API",
			want:       []string{"Led a team of four", "Shipped a payments API"},
			wantAbsent: []string{"- "},
		},
		{
			name:    "fenced code block content kept",
			content: "Sample work:\n\n```\nfunc main() {}\n```",
			want:    []string{"func main() {}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.PlainText([]byte(tt.content))

			for _, sub := range tt.want {
				if !strings.Contains(got, sub) {
					t.Errorf("PlainText() missing %q in output:\n%s", sub, got)
				}
			}
			for _, sub := range tt.wantAbsent {
				if strings.Contains(got, sub) {
					t.Errorf("PlainText() leaked markdown syntax %q in output:\n%s", sub, got)
				}
			}
		})
	}
}

func TestMarkdownExtractor_PlainText_Empty(t *testing.T) {
	extractor := NewMarkdownExtractor()

	if got := extractor.PlainText(nil); got != "" {
		t.Errorf("PlainText(nil) = %q, want empty", got)
	}
	if got := extractor.PlainText([]byte("")); got != "" {
		t.Errorf("PlainText(\"\") = %q, want empty", got)
	}
}

func TestMarkdownExtractor_PlainText_BlockSeparation(t *testing.T) {
	extractor := NewMarkdownExtractor()

	got := extractor.PlainText([]byte("# Title\n\nFirst paragraph.\n\nSecond paragraph."))
	if !strings.Contains(got, "\n") {
		t.Errorf("PlainText() should separate blocks with newlines, got %q", got)
	}
	if strings.Contains(got, "Title\nFirst") == false && strings.Contains(got, "TitleFirst") {
		t.Errorf("PlainText() merged heading into paragraph: %q", got)
	}
}
