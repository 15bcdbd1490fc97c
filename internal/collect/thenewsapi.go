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
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/reader"
)

const theNewsAPIEndpoint = "https://api.thenewsapi.com/v1/news/all"

// TheNewsAPICollector pulls top stories from TheNewsAPI and enriches each
// article with readable full text extracted from the publisher page.
type TheNewsAPICollector struct {
	apiToken string
	limit    int
	domains  []string
	client   *http.Client
	baseURL  string

	// fetchFullText is swapped out in tests.
	fetchFullText func(ctx context.Context, articleURL, title string) (string, error)
}

func NewTheNewsAPICollector(apiToken string, limit int, domains []string, client *http.Client) (*TheNewsAPICollector, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, fmt.Errorf("THENEWSAPI_API_TOKEN is not set")
	}
	return &TheNewsAPICollector{
		apiToken:      apiToken,
		limit:         limit,
		domains:       domains,
		client:        client,
		baseURL:       theNewsAPIEndpoint,
		fetchFullText: reader.FetchFullContent,
	}, nil
}

func (c *TheNewsAPICollector) Name() string   { return "thenewsapi" }
func (c *TheNewsAPICollector) Family() Family { return FamilyAPI }

type theNewsAPIResponse struct {
	Data []struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Snippet     string   `json:"snippet"`
		URL         string   `json:"url"`
		ImageURL    string   `json:"image_url"`
		PublishedAt string   `json:"published_at"`
		Source      string   `json:"source"`
		Categories  []string `json:"categories"`
		Language    string   `json:"language"`
	} `json:"data"`
}

func (c *TheNewsAPICollector) Collect(ctx context.Context) ([]news.Article, error) {
	query := url.Values{}
	query.Set("api_token", c.apiToken)
	query.Set("language", "en")
	query.Set("limit", strconv.Itoa(c.limit))
	if len(c.domains) > 0 {
		query.Set("domains", strings.Join(c.domains, ","))
	}

	var decoded theNewsAPIResponse
	if err := getJSON(ctx, c.client, c.Name(), c.baseURL+"?"+query.Encode(), &decoded); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(decoded.Data))
	for _, record := range decoded.Data {
		if strings.TrimSpace(record.URL) == "" {
			continue
		}

		// Full-text extraction is best effort: the snippet stands in when
		// the publisher page cannot be read.
		fullContent, err := c.fetchFullText(ctx, record.URL, record.Title)
		if err != nil || strings.TrimSpace(fullContent) == "" {
			fullContent = strings.TrimSpace(record.Snippet)
		}

		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(record.Title),
			Description: strings.TrimSpace(record.Description),
			URL:         record.URL,
			ImageURL:    record.ImageURL,
			PublishedAt: ParsePublishedAt(record.PublishedAt),
			SourceName:  record.Source,
			SourceURL:   record.URL,
			Language:    language.ResolveCode(record.Language),
			FullContent: fullContent,
			Topics:      cleanStrings(record.Categories),
		})
	}
	return articles, nil
}

func cleanStrings(values []string) []string {
	var out []string
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
