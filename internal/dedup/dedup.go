// Package dedup decides whether a freshly fetched article is new. The key
// index is rebuilt from durable state (relational store plus flat-file
// caches) at every call, so a run never depends on a previous run's memory.
package dedup

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// KeySource yields the raw title and URL of every persisted article.
type KeySource interface {
	TitleURLKeys(ctx context.Context) (titles []string, urls []string, err error)
}

// KeySet holds the known normalized title keys and URL keys. Empty strings
// are never members, so empty keys cannot collide.
type KeySet struct {
	Titles map[string]struct{}
	URLs   map[string]struct{}
}

func NewKeySet() KeySet {
	return KeySet{
		Titles: make(map[string]struct{}),
		URLs:   make(map[string]struct{}),
	}
}

// AddTitle registers an already-normalized title key.
func (k KeySet) AddTitle(normalized string) {
	if normalized == "" {
		return
	}
	k.Titles[normalized] = struct{}{}
}

func (k KeySet) AddURL(url string) {
	if url == "" {
		return
	}
	k.URLs[url] = struct{}{}
}

func (k KeySet) add(article news.Article) {
	k.AddTitle(news.NormalizeTitle(article.Title))
	k.AddURL(article.URL)
}

// LoadKeys unions the dedup keys of every persistent sink: the relational
// store and each flat-file cache. An unreachable store degrades to file data
// only; a missing or malformed cache file contributes nothing. Never fails.
func LoadKeys(ctx context.Context, store KeySource, cacheFiles []string, logger zerolog.Logger) KeySet {
	keys := NewKeySet()

	if store != nil {
		titles, urls, err := store.TitleURLKeys(ctx)
		if err != nil {
			logger.Warn().Err(err).Msg("dedup key load from store failed, continuing with file caches only")
		} else {
			for _, title := range titles {
				keys.AddTitle(news.NormalizeTitle(title))
			}
			for _, url := range urls {
				keys.AddURL(url)
			}
		}
	}

	for _, path := range cacheFiles {
		for _, article := range cache.Load(path) {
			keys.add(article)
		}
	}

	return keys
}

// Filter drops every candidate whose URL or normalized title collides with
// the key set or with an earlier candidate in the same batch. First
// occurrence wins; survivors keep their input order and are never mutated.
func Filter(candidates []news.Article, keys KeySet) ([]news.Article, int) {
	if len(candidates) == 0 {
		return nil, 0
	}

	seenTitles := make(map[string]struct{}, len(candidates))
	seenURLs := make(map[string]struct{}, len(candidates))

	unique := make([]news.Article, 0, len(candidates))
	duplicates := 0

	for _, candidate := range candidates {
		normTitle := news.NormalizeTitle(candidate.Title)

		isDuplicate := false
		if candidate.URL != "" {
			if _, exists := keys.URLs[candidate.URL]; exists {
				isDuplicate = true
			} else if _, exists := seenURLs[candidate.URL]; exists {
				isDuplicate = true
			}
		}
		if !isDuplicate && normTitle != "" {
			if _, exists := keys.Titles[normTitle]; exists {
				isDuplicate = true
			} else if _, exists := seenTitles[normTitle]; exists {
				isDuplicate = true
			}
		}

		if isDuplicate {
			duplicates++
			continue
		}

		unique = append(unique, candidate)
		if candidate.URL != "" {
			seenURLs[candidate.URL] = struct{}{}
		}
		if normTitle != "" {
			seenTitles[normTitle] = struct{}{}
		}
	}

	return unique, duplicates
}
