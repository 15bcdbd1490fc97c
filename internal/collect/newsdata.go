package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/language"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

const newsDataEndpoint = "https://newsdata.io/api/1/news"

// NewsDataCollector pulls the latest articles from NewsData.io.
type NewsDataCollector struct {
	apiKey  string
	limit   int
	client  *http.Client
	baseURL string
}

func NewNewsDataCollector(apiKey string, limit int, client *http.Client) (*NewsDataCollector, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("NEWSDATA_API_KEY is not set")
	}
	return &NewsDataCollector{
		apiKey:  apiKey,
		limit:   limit,
		client:  client,
		baseURL: newsDataEndpoint,
	}, nil
}

func (c *NewsDataCollector) Name() string   { return "newsdata" }
func (c *NewsDataCollector) Family() Family { return FamilyAPI }

type newsDataResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Link        string   `json:"link"`
		ImageURL    string   `json:"image_url"`
		PubDate     string   `json:"pubDate"`
		SourceName  string   `json:"source_name"`
		SourceID    string   `json:"source_id"`
		SourceURL   string   `json:"source_url"`
		Language    string   `json:"language"`
		Content     string   `json:"content"`
		Creator     []string `json:"creator"`
		Category    []string `json:"category"`
	} `json:"results"`
}

func (c *NewsDataCollector) Collect(ctx context.Context) ([]news.Article, error) {
	// NewsData caps size at 10 on free plans; larger values are rejected.
	size := c.limit
	if size > 10 {
		size = 10
	}

	query := url.Values{}
	query.Set("apikey", c.apiKey)
	query.Set("language", "en")
	query.Set("size", strconv.Itoa(size))

	var decoded newsDataResponse
	if err := getJSON(ctx, c.client, c.Name(), c.baseURL+"?"+query.Encode(), &decoded); err != nil {
		return nil, err
	}
	if decoded.Status != "success" {
		return nil, fmt.Errorf("%s: response status %q", c.Name(), decoded.Status)
	}

	articles := make([]news.Article, 0, len(decoded.Results))
	for _, record := range decoded.Results {
		if strings.TrimSpace(record.Link) == "" {
			continue
		}

		sourceName := record.SourceName
		if sourceName == "" {
			sourceName = record.SourceID
		}

		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(record.Title),
			Description: strings.TrimSpace(record.Description),
			URL:         record.Link,
			ImageURL:    record.ImageURL,
			PublishedAt: ParsePublishedAt(record.PubDate),
			SourceName:  sourceName,
			SourceURL:   record.SourceURL,
			Language:    language.ResolveCode(record.Language),
			FullContent: strings.TrimSpace(record.Content),
			Authors:     cleanStrings(record.Creator),
			Topics:      cleanStrings(record.Category),
		})
	}
	return articles, nil
}
