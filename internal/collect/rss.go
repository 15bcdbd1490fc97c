package collect

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/language"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// RSSCollector walks the configured feed list. One broken feed never takes
// down the batch; its error is joined into the run error after the healthy
// feeds have contributed their items.
type RSSCollector struct {
	sources []RSSSource
	client  *http.Client
	logger  zerolog.Logger
}

func NewRSSCollector(sources []RSSSource, client *http.Client, logger zerolog.Logger) *RSSCollector {
	return &RSSCollector{
		sources: sources,
		client:  client,
		logger:  logger,
	}
}

func (c *RSSCollector) Name() string   { return "rss" }
func (c *RSSCollector) Family() Family { return FamilyFeed }

func (c *RSSCollector) Collect(ctx context.Context) ([]news.Article, error) {
	if len(c.sources) == 0 {
		return nil, nil
	}

	parser := gofeed.NewParser()
	parser.Client = c.client

	var articles []news.Article
	var feedErrs []error
	for _, source := range c.sources {
		feed, err := parser.ParseURLWithContext(source.URL, ctx)
		if err != nil {
			c.logger.Warn().Err(err).Str("feed", source.Name).Msg("feed fetch failed")
			feedErrs = append(feedErrs, fmt.Errorf("feed %s: %w", source.Name, err))
			continue
		}

		feedLanguage := language.ResolveCode(feed.Language)
		for _, item := range feed.Items {
			article, ok := c.parseItem(source, item, feedLanguage)
			if !ok {
				continue
			}
			articles = append(articles, article)
		}
	}

	if len(articles) == 0 && len(feedErrs) > 0 {
		return nil, errors.Join(feedErrs...)
	}
	return articles, nil
}

func (c *RSSCollector) parseItem(source RSSSource, item *gofeed.Item, feedLanguage string) (news.Article, bool) {
	if item == nil || strings.TrimSpace(item.Link) == "" {
		return news.Article{}, false
	}

	publishedAt := itemPublishedAt(item)
	if publishedAt == nil {
		publishedAt = feedFallbackTime()
	}

	var authors []string
	for _, author := range item.Authors {
		if author == nil {
			continue
		}
		if name := strings.TrimSpace(author.Name); name != "" {
			authors = append(authors, name)
		}
	}

	sourceURL := source.Link
	if sourceURL == "" {
		sourceURL = source.URL
	}

	return news.Article{
		Title:       strings.TrimSpace(item.Title),
		Description: strings.TrimSpace(item.Description),
		URL:         item.Link,
		ImageURL:    itemImageURL(item),
		PublishedAt: publishedAt,
		SourceName:  source.Name,
		SourceURL:   sourceURL,
		Language:    feedLanguage,
		Authors:     authors,
		Topics:      cleanStrings(item.Categories),
	}, true
}

func itemPublishedAt(item *gofeed.Item) *time.Time {
	for _, parsed := range []*time.Time{item.PublishedParsed, item.UpdatedParsed} {
		if parsed == nil {
			continue
		}
		utc := parsed.UTC()
		if utc.After(globaltime.Now().UTC().Add(maxFutureSkew)) {
			continue
		}
		return &utc
	}
	return nil
}

func itemImageURL(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enclosure := range item.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	return ""
}
