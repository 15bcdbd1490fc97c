package collect

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewsAPIAICollector_MapsRecords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"articles":{"results":[{
			"title":"Fed Cuts Rates",
			"body":"The central bank moved on Wednesday.",
			"url":"https://example.com/fed",
			"image":"https://example.com/fed.jpg",
			"dateTimePub":"2026-08-20T14:30:00Z",
			"lang":"eng",
			"source":{"title":"Example Wire","uri":"example.com"},
			"authors":[{"name":"Jordan Lee"}]
		}]}}`)
	}))
	defer server.Close()

	collector, err := NewNewsAPIAICollector("key", 10, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	articles, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("unexpected article count: %d", len(articles))
	}
	got := articles[0]
	if got.URL != "https://example.com/fed" || got.Title != "Fed Cuts Rates" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.Language != "en" {
		t.Fatalf("expected three-letter code to resolve to en, got %q", got.Language)
	}
	if got.SourceURL != "https://example.com" {
		t.Fatalf("expected scheme to be added to source uri, got %q", got.SourceURL)
	}
	if got.PublishedAt == nil || !got.PublishedAt.Equal(time.Date(2026, 8, 20, 14, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at: %v", got.PublishedAt)
	}
	if len(got.Authors) != 1 || got.Authors[0] != "Jordan Lee" {
		t.Fatalf("unexpected authors: %v", got.Authors)
	}
	if got.FullContent != "The central bank moved on Wednesday." {
		t.Fatalf("expected the body to fill full content, got %q", got.FullContent)
	}
}

func TestNewsAPIAICollector_InBodyError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error":"Your API key is invalid"}`)
	}))
	defer server.Close()

	collector, err := NewNewsAPIAICollector("key", 10, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	if _, err := collector.Collect(context.Background()); err == nil {
		t.Fatalf("expected in-body error to fail the run")
	}
}

func TestTheNewsAPICollector_FullTextWithSnippetFallback(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("api_token"); got != "token" {
			t.Errorf("unexpected api_token: %q", got)
		}
		if got := r.URL.Query().Get("domains"); got != "reuters.com,bloomberg.com" {
			t.Errorf("unexpected domains: %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en" {
			t.Errorf("unexpected language: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"data":[
			{"title":"Readable","url":"https://example.com/readable","snippet":"snippet one","published_at":"2026-08-20T10:00:00.000000Z","language":"en"},
			{"title":"Paywalled","url":"https://example.com/paywalled","snippet":"snippet two","language":"en"}
		]}`)
	}))
	defer server.Close()

	collector, err := NewTheNewsAPICollector("token", 10, []string{"reuters.com", "bloomberg.com"}, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL
	collector.fetchFullText = func(_ context.Context, articleURL, _ string) (string, error) {
		if strings.Contains(articleURL, "paywalled") {
			return "", fmt.Errorf("fetch status 403")
		}
		return "full extracted body", nil
	}

	articles, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("unexpected article count: %d", len(articles))
	}
	if articles[0].FullContent != "full extracted body" {
		t.Fatalf("expected extracted text, got %q", articles[0].FullContent)
	}
	if articles[1].FullContent != "snippet two" {
		t.Fatalf("expected snippet fallback, got %q", articles[1].FullContent)
	}
	if articles[0].SourceURL != "https://example.com/readable" {
		t.Fatalf("expected the article url as source url, got %q", articles[0].SourceURL)
	}
}

func TestNewsDataCollector_RejectsNonSuccessStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"error","results":[]}`)
	}))
	defer server.Close()

	collector, err := NewNewsDataCollector("key", 10, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	if _, err := collector.Collect(context.Background()); err == nil {
		t.Fatalf("expected non-success status to fail the run")
	}
}

func TestNewsDataCollector_MapsRecords(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("size"); got != "10" {
			t.Errorf("expected size to be capped at 10, got %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en" {
			t.Errorf("unexpected language: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"status":"success","results":[{
			"title":"Oil Rises",
			"description":"Crude climbed.",
			"link":"https://example.com/oil",
			"pubDate":"2026-08-20 09:15:00",
			"source_id":"example",
			"source_url":"https://example.com",
			"language":"english",
			"content":"Crude oil climbed for a third session.",
			"creator":["Sam Wu"],
			"category":["business"]
		}]}`)
	}))
	defer server.Close()

	collector, err := NewNewsDataCollector("key", 50, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	articles, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("unexpected article count: %d", len(articles))
	}
	got := articles[0]
	if got.SourceName != "example" {
		t.Fatalf("expected source_id fallback, got %q", got.SourceName)
	}
	if got.Language != "en" {
		t.Fatalf("expected language name to resolve to en, got %q", got.Language)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "business" {
		t.Fatalf("unexpected topics: %v", got.Topics)
	}
	if got.FullContent != "Crude oil climbed for a third session." {
		t.Fatalf("expected content to fill full content, got %q", got.FullContent)
	}
}

func TestTiingoCollector_MapsBareArray(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{
			"title":"Chipmaker Beats",
			"description":"Earnings above estimates.",
			"url":"https://example.com/chips",
			"imageUrl":"https://example.com/chips.jpg",
			"publishedDate":"2026-08-20T08:00:00Z",
			"source":"example.com",
			"content":"The chipmaker reported earnings above estimates.",
			"tickers":["nvda"," "],
			"tags":["Earnings"]
		}]`)
	}))
	defer server.Close()

	collector, err := NewTiingoCollector("token", 10, nil, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	articles, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("unexpected article count: %d", len(articles))
	}
	got := articles[0]
	if len(got.Tickers) != 1 || got.Tickers[0] != "NVDA" {
		t.Fatalf("expected upper-cased ticker, got %v", got.Tickers)
	}
	if len(got.Topics) != 1 || got.Topics[0] != "Earnings" {
		t.Fatalf("unexpected topics: %v", got.Topics)
	}
	if got.ImageURL != "https://example.com/chips.jpg" {
		t.Fatalf("unexpected image url: %q", got.ImageURL)
	}
	if got.FullContent != "The chipmaker reported earnings above estimates." {
		t.Fatalf("expected content to fill full content, got %q", got.FullContent)
	}
	if got.SourceURL != "https://example.com/chips" {
		t.Fatalf("expected the article url as source url, got %q", got.SourceURL)
	}
	if got.Language != "en" {
		t.Fatalf("expected english default, got %q", got.Language)
	}
}

func TestAlphaVantageCollector_MapsFeedAndHonorsLimit(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "NEWS_SENTIMENT" {
			t.Errorf("unexpected function: %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"feed":[
			{"title":"One","url":"https://example.com/1","time_published":"20260820T070000","source":"Example","source_domain":"example.com","topics":[{"topic":"Technology"}],"ticker_sentiment":[{"ticker":"AAPL"}]},
			{"title":"Two","url":"https://example.com/2","time_published":"20260820T071500","source":"Example","source_domain":"example.com"}
		]}`)
	}))
	defer server.Close()

	collector, err := NewAlphaVantageCollector("key", 1, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	articles, err := collector.Collect(context.Background())
	if err != nil {
		t.Fatalf("collect: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected feed to be clipped to the limit, got %d", len(articles))
	}
	got := articles[0]
	if got.PublishedAt == nil || !got.PublishedAt.Equal(time.Date(2026, 8, 20, 7, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published_at: %v", got.PublishedAt)
	}
	if len(got.Tickers) != 1 || got.Tickers[0] != "AAPL" {
		t.Fatalf("unexpected tickers: %v", got.Tickers)
	}
	if got.SourceURL != "https://example.com" {
		t.Fatalf("unexpected source url: %q", got.SourceURL)
	}
}

func TestAlphaVantageCollector_InformationMeansRateLimited(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Information":"Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`)
	}))
	defer server.Close()

	collector, err := NewAlphaVantageCollector("key", 10, server.Client())
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	collector.baseURL = server.URL

	_, err = collector.Collect(context.Background())
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected rate limited error, got %v", err)
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   string
	}{
		{status: http.StatusUnauthorized, want: "invalid API key"},
		{status: http.StatusPaymentRequired, want: "API quota exceeded"},
		{status: http.StatusForbidden, want: "API quota exceeded"},
		{status: http.StatusTooManyRequests, want: "rate limited"},
		{status: http.StatusBadGateway, want: "HTTP 502"},
	}
	for _, tc := range cases {
		err := classifyStatus("provider", tc.status, []byte("details"))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("status %d: expected %q in error, got %v", tc.status, tc.want, err)
		}
	}
}

func TestProviderEndpoints_MatchPublishedAPIs(t *testing.T) {
	t.Parallel()

	if theNewsAPIEndpoint != "https://api.thenewsapi.com/v1/news/all" {
		t.Fatalf("unexpected TheNewsAPI endpoint: %q", theNewsAPIEndpoint)
	}
	if newsDataEndpoint != "https://newsdata.io/api/1/news" {
		t.Fatalf("unexpected NewsData endpoint: %q", newsDataEndpoint)
	}
}

func TestProviderConstructors_RequireCredentials(t *testing.T) {
	t.Parallel()

	if _, err := NewNewsAPIAICollector("", 10, nil); err == nil {
		t.Fatalf("expected error for missing NewsAPI.ai key")
	}
	if _, err := NewTheNewsAPICollector(" ", 10, nil, nil); err == nil {
		t.Fatalf("expected error for missing TheNewsAPI token")
	}
	if _, err := NewNewsDataCollector("", 10, nil); err == nil {
		t.Fatalf("expected error for missing NewsData key")
	}
	if _, err := NewTiingoCollector("", 10, nil, nil); err == nil {
		t.Fatalf("expected error for missing Tiingo token")
	}
	if _, err := NewAlphaVantageCollector("", 10, nil); err == nil {
		t.Fatalf("expected error for missing Alpha Vantage key")
	}
}
