package collect

import (
	"strings"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
)

// publishedAtLayouts covers the timestamp formats the providers actually
// emit. Order matters: the most common formats come first.
var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	"20060102T150405", // AlphaVantage time_published
	"2006-01-02",
}

// maxFutureSkew tolerates timezone sloppiness in provider timestamps. Dates
// further in the future than this are treated as unparseable.
const maxFutureSkew = 24 * time.Hour

// ParsePublishedAt parses a provider timestamp into UTC. It returns nil for
// empty, unparseable, or implausibly future timestamps; callers decide the
// fallback.
func ParsePublishedAt(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	for _, layout := range publishedAtLayouts {
		parsed, err := time.Parse(layout, raw)
		if err != nil {
			continue
		}
		utc := parsed.UTC()
		if utc.After(globaltime.Now().UTC().Add(maxFutureSkew)) {
			return nil
		}
		return &utc
	}
	return nil
}

// feedFallbackTime is the stand-in timestamp for feed items without a usable
// publication date: one hour before now, so they sort as recent without
// claiming to be brand new.
func feedFallbackTime() *time.Time {
	t := globaltime.Now().UTC().Add(-time.Hour)
	return &t
}
