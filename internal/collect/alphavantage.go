package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

const alphaVantageEndpoint = "https://www.alphavantage.co/query"

// AlphaVantageCollector pulls the NEWS_SENTIMENT feed from Alpha Vantage.
type AlphaVantageCollector struct {
	apiKey  string
	limit   int
	client  *http.Client
	baseURL string
}

func NewAlphaVantageCollector(apiKey string, limit int, client *http.Client) (*AlphaVantageCollector, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("ALPHAVANTAGE_API_KEY is not set")
	}
	return &AlphaVantageCollector{
		apiKey:  apiKey,
		limit:   limit,
		client:  client,
		baseURL: alphaVantageEndpoint,
	}, nil
}

func (c *AlphaVantageCollector) Name() string   { return "alphavantage" }
func (c *AlphaVantageCollector) Family() Family { return FamilyAPI }

type alphaVantageResponse struct {
	Feed []struct {
		Title         string   `json:"title"`
		Summary       string   `json:"summary"`
		URL           string   `json:"url"`
		BannerImage   string   `json:"banner_image"`
		TimePublished string   `json:"time_published"`
		Source        string   `json:"source"`
		SourceDomain  string   `json:"source_domain"`
		Authors       []string `json:"authors"`
		Topics        []struct {
			Topic string `json:"topic"`
		} `json:"topics"`
		TickerSentiment []struct {
			Ticker string `json:"ticker"`
		} `json:"ticker_sentiment"`
	} `json:"feed"`

	// Alpha Vantage reports throttling and key errors inside a 200 body.
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (c *AlphaVantageCollector) Collect(ctx context.Context) ([]news.Article, error) {
	query := url.Values{}
	query.Set("function", "NEWS_SENTIMENT")
	query.Set("apikey", c.apiKey)
	query.Set("limit", strconv.Itoa(c.limit))
	query.Set("sort", "LATEST")

	var decoded alphaVantageResponse
	if err := getJSON(ctx, c.client, c.Name(), c.baseURL+"?"+query.Encode(), &decoded); err != nil {
		return nil, err
	}
	if decoded.ErrorMessage != "" {
		return nil, fmt.Errorf("%s: %s", c.Name(), decoded.ErrorMessage)
	}
	if decoded.Information != "" {
		return nil, fmt.Errorf("%s: rate limited: %s", c.Name(), decoded.Information)
	}

	count := len(decoded.Feed)
	if count > c.limit {
		count = c.limit
	}

	articles := make([]news.Article, 0, count)
	for _, record := range decoded.Feed[:count] {
		if strings.TrimSpace(record.URL) == "" {
			continue
		}

		var topics []string
		for _, topic := range record.Topics {
			if trimmed := strings.TrimSpace(topic.Topic); trimmed != "" {
				topics = append(topics, trimmed)
			}
		}
		var tickers []string
		for _, sentiment := range record.TickerSentiment {
			if trimmed := strings.TrimSpace(sentiment.Ticker); trimmed != "" {
				tickers = append(tickers, trimmed)
			}
		}

		sourceURL := record.SourceDomain
		if sourceURL != "" && !strings.Contains(sourceURL, "://") {
			sourceURL = "https://" + sourceURL
		}

		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(record.Title),
			Description: strings.TrimSpace(record.Summary),
			URL:         record.URL,
			ImageURL:    record.BannerImage,
			PublishedAt: ParsePublishedAt(record.TimePublished),
			SourceName:  record.Source,
			SourceURL:   sourceURL,
			Authors:     cleanStrings(record.Authors),
			Tickers:     tickers,
			Topics:      topics,
		})
	}
	return articles, nil
}
