package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/language"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

const newsAPIAIEndpoint = "https://eventregistry.org/api/v1/article/getArticles"

// NewsAPIAICollector pulls recent articles from the NewsAPI.ai (Event
// Registry) getArticles endpoint.
type NewsAPIAICollector struct {
	apiKey  string
	limit   int
	client  *http.Client
	baseURL string
}

func NewNewsAPIAICollector(apiKey string, limit int, client *http.Client) (*NewsAPIAICollector, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("NEWSAPI_AI_API_KEY is not set")
	}
	return &NewsAPIAICollector{
		apiKey:  apiKey,
		limit:   limit,
		client:  client,
		baseURL: newsAPIAIEndpoint,
	}, nil
}

func (c *NewsAPIAICollector) Name() string   { return "newsapi_ai" }
func (c *NewsAPIAICollector) Family() Family { return FamilyAPI }

type newsAPIAIRequest struct {
	Action         string `json:"action"`
	ResultType     string `json:"resultType"`
	ArticlesSortBy string `json:"articlesSortBy"`
	ArticlesCount  int    `json:"articlesCount"`
	APIKey         string `json:"apiKey"`
}

type newsAPIAIResponse struct {
	Articles struct {
		Results []struct {
			Title       string `json:"title"`
			Body        string `json:"body"`
			URL         string `json:"url"`
			Image       string `json:"image"`
			DateTimePub string `json:"dateTimePub"`
			DateTime    string `json:"dateTime"`
			Lang        string `json:"lang"`
			Source      struct {
				Title string `json:"title"`
				URI   string `json:"uri"`
			} `json:"source"`
			Authors []struct {
				Name string `json:"name"`
			} `json:"authors"`
		} `json:"results"`
	} `json:"articles"`
	Error string `json:"error"`
}

func (c *NewsAPIAICollector) Collect(ctx context.Context) ([]news.Article, error) {
	payload := newsAPIAIRequest{
		Action:         "getArticles",
		ResultType:     "articles",
		ArticlesSortBy: "date",
		ArticlesCount:  c.limit,
		APIKey:         c.apiKey,
	}

	var decoded newsAPIAIResponse
	if err := postJSON(ctx, c.client, c.Name(), c.baseURL, payload, &decoded); err != nil {
		return nil, err
	}
	// Event Registry reports key and quota problems inside a 200 body.
	if decoded.Error != "" {
		return nil, fmt.Errorf("%s: %s", c.Name(), decoded.Error)
	}

	articles := make([]news.Article, 0, len(decoded.Articles.Results))
	for _, record := range decoded.Articles.Results {
		if strings.TrimSpace(record.URL) == "" {
			continue
		}

		publishedAt := ParsePublishedAt(record.DateTimePub)
		if publishedAt == nil {
			publishedAt = ParsePublishedAt(record.DateTime)
		}

		var authors []string
		for _, author := range record.Authors {
			if name := strings.TrimSpace(author.Name); name != "" {
				authors = append(authors, name)
			}
		}

		sourceURL := record.Source.URI
		if sourceURL != "" && !strings.Contains(sourceURL, "://") {
			sourceURL = "https://" + sourceURL
		}

		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(record.Title),
			Description: strings.TrimSpace(record.Body),
			URL:         record.URL,
			ImageURL:    record.Image,
			PublishedAt: publishedAt,
			SourceName:  record.Source.Title,
			SourceURL:   sourceURL,
			Language:    language.ResolveCode(record.Lang),
			FullContent: strings.TrimSpace(record.Body),
			Authors:     authors,
		})
	}
	return articles, nil
}
