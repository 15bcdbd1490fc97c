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

const tiingoEndpoint = "https://api.tiingo.com/tiingo/news"

// TiingoCollector pulls financial news from the Tiingo news API.
type TiingoCollector struct {
	apiToken string
	limit    int
	domains  []string
	client   *http.Client
	baseURL  string
}

func NewTiingoCollector(apiToken string, limit int, domains []string, client *http.Client) (*TiingoCollector, error) {
	if strings.TrimSpace(apiToken) == "" {
		return nil, fmt.Errorf("TIINGO_API_KEY is not set")
	}
	return &TiingoCollector{
		apiToken: apiToken,
		limit:    limit,
		domains:  domains,
		client:   client,
		baseURL:  tiingoEndpoint,
	}, nil
}

func (c *TiingoCollector) Name() string   { return "tiingo" }
func (c *TiingoCollector) Family() Family { return FamilyAPI }

// Tiingo responds with a bare JSON array.
type tiingoRecord struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	URL           string   `json:"url"`
	ImageURL      string   `json:"imageUrl"`
	PublishedDate string   `json:"publishedDate"`
	Source        string   `json:"source"`
	Content       string   `json:"content"`
	Tickers       []string `json:"tickers"`
	Tags          []string `json:"tags"`
}

func (c *TiingoCollector) Collect(ctx context.Context) ([]news.Article, error) {
	query := url.Values{}
	query.Set("token", c.apiToken)
	query.Set("limit", strconv.Itoa(c.limit))
	if len(c.domains) > 0 {
		query.Set("sources", strings.Join(c.domains, ","))
	}

	var decoded []tiingoRecord
	if err := getJSON(ctx, c.client, c.Name(), c.baseURL+"?"+query.Encode(), &decoded); err != nil {
		return nil, err
	}

	articles := make([]news.Article, 0, len(decoded))
	for _, record := range decoded {
		if strings.TrimSpace(record.URL) == "" {
			continue
		}

		var tickers []string
		for _, ticker := range record.Tickers {
			if trimmed := strings.TrimSpace(ticker); trimmed != "" {
				tickers = append(tickers, strings.ToUpper(trimmed))
			}
		}

		articles = append(articles, news.Article{
			Title:       strings.TrimSpace(record.Title),
			Description: strings.TrimSpace(record.Description),
			URL:         record.URL,
			ImageURL:    record.ImageURL,
			PublishedAt: ParsePublishedAt(record.PublishedDate),
			SourceName:  record.Source,
			SourceURL:   record.URL,
			Language:    "en", // Tiingo serves English financial news only
			FullContent: strings.TrimSpace(record.Content),
			Tickers:     tickers,
			Topics:      cleanStrings(record.Tags),
		})
	}
	return articles, nil
}
