package news

import (
	"strings"
	"time"
	"unicode"
)

// Article is the unified record produced by every collector. The URL is the
// article's identity: no two persisted articles share one.
type Article struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SourceName  string     `json:"source_name,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Language    string     `json:"language,omitempty"`
	FullContent string     `json:"full_content,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	Tickers     []string   `json:"tickers,omitempty"`
	Topics      []string   `json:"topics,omitempty"`
}

// NormalizeTitle derives the comparison key for near-duplicate titles:
// lower-cased, punctuation stripped, whitespace collapsed. An empty result
// must never be used as a collision key.
func NormalizeTitle(title string) string {
	lowered := strings.ToLower(strings.TrimSpace(title))
	if lowered == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
