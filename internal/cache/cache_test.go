package cache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

func TestAppendThenLoad_RoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "outputs", "02_newsapi_ai.json")
	publishedAt := time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)

	article := news.Article{
		Title:       "Fed Cuts Rates",
		Description: "Quarter point cut",
		URL:         "http://example.com/fed",
		PublishedAt: &publishedAt,
		SourceName:  "Example Wire",
		Authors:     []string{"Jordan Lee"},
		Topics:      []string{"economy"},
	}

	count, err := Append(path, []news.Article{article})
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if count != 1 {
		t.Fatalf("unexpected appended count: got %d want 1", count)
	}

	loaded := Load(path)
	if len(loaded) != 1 {
		t.Fatalf("unexpected loaded count: got %d want 1", len(loaded))
	}
	got := loaded[0]
	if got.URL != article.URL || got.Title != article.Title {
		t.Fatalf("round trip lost identity fields: %+v", got)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(publishedAt) {
		t.Fatalf("round trip lost published_at: %v", got.PublishedAt)
	}
	if len(got.Authors) != 1 || got.Authors[0] != "Jordan Lee" {
		t.Fatalf("round trip lost authors: %v", got.Authors)
	}
}

func TestAppend_DoesNotDeduplicate(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "05_tiingo.json")
	article := news.Article{Title: "Same", URL: "http://same"}

	if _, err := Append(path, []news.Article{article}); err != nil {
		t.Fatalf("first append: %v", err)
	}
	if _, err := Append(path, []news.Article{article}); err != nil {
		t.Fatalf("second append: %v", err)
	}

	if got := Count(path); got != 2 {
		t.Fatalf("expected cache to keep both copies, got %d", got)
	}
}

func TestLoad_MissingOrCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	if got := Load(filepath.Join(dir, "missing.json")); got != nil {
		t.Fatalf("expected nil for missing file, got %d articles", len(got))
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	if got := Load(corrupt); got != nil {
		t.Fatalf("expected nil for corrupt file, got %d articles", len(got))
	}
	if got := Count(corrupt); got != 0 {
		t.Fatalf("expected zero count for corrupt file, got %d", got)
	}
}

func TestAppend_EmptyBatchIsNoop(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "01_rss_news.json")
	count, err := Append(path, nil)
	if err != nil {
		t.Fatalf("append empty batch: %v", err)
	}
	if count != 0 {
		t.Fatalf("unexpected count for empty batch: %d", count)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected no file to be created for empty batch")
	}
}
