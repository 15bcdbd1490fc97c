// Package cache reads and writes the per-collector JSON flat files. The cache
// never deduplicates: callers append batches that were already filtered.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// Load reads the JSON array at path. A missing or unparseable file is treated
// as an empty cache, never an error.
func Load(path string) []news.Article {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var articles []news.Article
	if err := json.Unmarshal(data, &articles); err != nil {
		return nil
	}
	return articles
}

// Append loads the existing cache, appends the batch, and rewrites the file
// in full. Returns the number of articles appended by this call.
func Append(path string, articles []news.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	existing := Load(path)
	combined := make([]news.Article, 0, len(existing)+len(articles))
	combined = append(combined, existing...)
	combined = append(combined, articles...)

	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal cache articles: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, fmt.Errorf("create cache directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, fmt.Errorf("write cache file: %w", err)
	}

	return len(articles), nil
}

// Count returns the number of cached articles at path, zero when the file is
// missing or malformed.
func Count(path string) int {
	return len(Load(path))
}
