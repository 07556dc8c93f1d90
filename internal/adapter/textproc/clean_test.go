package textproc

import (
	"strings"
	"testing"
)

func TestCleanStripsHTML(t *testing.T) {
	got := CleanDefault("<p>Hello <b>world</b></p>")
	if got != "Hello world" {
		t.Errorf("expected 'Hello world', got %q", got)
	}
}

func TestCleanStripsURLsAndEmails(t *testing.T) {
	got := CleanDefault("see https://example.com/docs or mail admin@example.com today")
	if strings.Contains(got, "example.com") {
		t.Errorf("URL or email survived cleaning: %q", got)
	}
	if !strings.Contains(got, "see") || !strings.Contains(got, "today") {
		t.Errorf("surrounding text lost: %q", got)
	}
}

func TestCleanNormalizesWhitespace(t *testing.T) {
	got := CleanDefault("  a\t\tb\n\nc  ")
	if got != "a b c" {
		t.Errorf("expected 'a b c', got %q", got)
	}
}

func TestCleanEmpty(t *testing.T) {
	if got := CleanDefault(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestBuildMetadata(t *testing.T) {
	text := "one two three"
	meta := BuildMetadata(text, "wikipedia", "https://en.wikipedia.org/wiki/Go", "Go", "programming")

	if meta.Source != "wikipedia" {
		t.Errorf("source = %q", meta.Source)
	}
	if meta.TextLength != len(text) {
		t.Errorf("text_length = %d, want %d", meta.TextLength, len(text))
	}
	if meta.WordCount != 3 {
		t.Errorf("word_count = %d, want 3", meta.WordCount)
	}
	if meta.ContentHash == "" || meta.ContentHash != ContentHash(text) {
		t.Error("content hash not set deterministically")
	}
	if meta.ExtractedAt == "" {
		t.Error("extracted_at not set")
	}
}

func TestKeywords(t *testing.T) {
	text := "machine learning models learn from data. machine learning is data driven."
	kws := Keywords(text, 3)

	if len(kws) != 3 {
		t.Fatalf("expected 3 keywords, got %d: %v", len(kws), kws)
	}
	if kws[0] != "machine" && kws[0] != "learning" && kws[0] != "data" {
		t.Errorf("unexpected top keyword %q", kws[0])
	}
	for _, kw := range kws {
		if _, stop := stopWords[kw]; stop {
			t.Errorf("stop word %q returned as keyword", kw)
		}
	}
}

func TestJaccardSimilarity(t *testing.T) {
	if sim := JaccardSimilarity("", ""); sim != 1.0 {
		t.Errorf("two empty texts should be identical, got %f", sim)
	}
	if sim := JaccardSimilarity("cats", ""); sim != 0.0 {
		t.Errorf("empty vs non-empty should be 0, got %f", sim)
	}
	if sim := JaccardSimilarity("alpha beta", "alpha beta"); sim != 1.0 {
		t.Errorf("identical texts should be 1, got %f", sim)
	}
	sim := JaccardSimilarity("alpha beta", "beta gamma")
	if sim <= 0 || sim >= 1 {
		t.Errorf("partial overlap should be in (0,1), got %f", sim)
	}
}
