package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/live"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

type memoryStore struct {
	byURL map[string]news.Article
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{byURL: make(map[string]news.Article)}
}

func (m *memoryStore) InsertArticles(_ context.Context, articles []news.Article) (int, []news.Article, error) {
	if m.err != nil {
		return 0, nil, m.err
	}
	var inserted []news.Article
	for _, article := range articles {
		if _, exists := m.byURL[article.URL]; exists {
			continue
		}
		m.byURL[article.URL] = article
		inserted = append(inserted, article)
	}
	return len(inserted), inserted, nil
}

func (m *memoryStore) TitleURLKeys(context.Context) ([]string, []string, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	var titles, urls []string
	for url, article := range m.byURL {
		titles = append(titles, article.Title)
		urls = append(urls, url)
	}
	return titles, urls, nil
}

type stubCollector struct {
	name     string
	family   collect.Family
	articles []news.Article
	err      error
	calls    int
}

func (s *stubCollector) Name() string           { return s.name }
func (s *stubCollector) Family() collect.Family { return s.family }
func (s *stubCollector) Collect(context.Context) ([]news.Article, error) {
	s.calls++
	return s.articles, s.err
}

func newTestService(t *testing.T, store Store, collectors ...collect.Collector) *Service {
	t.Helper()
	registry := collect.NewRegistryFromCollectors(collectors...)
	return NewService(registry, store, nil, live.NewHub(zerolog.Nop()), t.TempDir(), zerolog.Nop())
}

func TestRunCollector_DeduplicatesAndPersists(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	collector := &stubCollector{
		name:   "tiingo",
		family: collect.FamilyAPI,
		articles: []news.Article{
			{Title: "Fed Cuts Rates", URL: "http://one", Language: "en"},
			{Title: "fed CUTS rates!", URL: "http://two", Language: "en"},
		},
	}
	service := newTestService(t, store, collector)

	run, err := service.RunCollector(context.Background(), collector)
	if err != nil {
		t.Fatalf("run collector: %v", err)
	}
	if run.Fetched != 2 || run.Duplicates != 1 {
		t.Fatalf("unexpected counts: %+v", run)
	}
	if run.Persisted.DBCount != 1 || run.Persisted.CacheCount != 1 {
		t.Fatalf("unexpected persisted counts: %+v", run.Persisted)
	}
	if got := cache.Count(service.CacheFile("tiingo")); got != 1 {
		t.Fatalf("unexpected cache count: %d", got)
	}
}

func TestRunCollector_SecondRunSeesPersistedKeys(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	collector := &stubCollector{
		name:     "newsdata",
		family:   collect.FamilyAPI,
		articles: []news.Article{{Title: "Same Story", URL: "http://same", Language: "en"}},
	}
	service := newTestService(t, store, collector)

	if _, err := service.RunCollector(context.Background(), collector); err != nil {
		t.Fatalf("first run: %v", err)
	}
	second, err := service.RunCollector(context.Background(), collector)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.Duplicates != 1 || second.Persisted.DBCount != 0 {
		t.Fatalf("expected the repeat to be filtered, got %+v", second)
	}
	if got := cache.Count(service.CacheFile("newsdata")); got != 1 {
		t.Fatalf("filtered article must not reach the cache, got %d entries", got)
	}
}

func TestRunCollector_CrossCollectorDedupViaCacheFiles(t *testing.T) {
	t.Parallel()

	// Store is down: only the cache files can supply dedup keys.
	store := newMemoryStore()
	store.err = fmt.Errorf("connection refused")

	article := news.Article{Title: "Shared Story", URL: "http://shared", Language: "en"}
	first := &stubCollector{name: "tiingo", family: collect.FamilyAPI, articles: []news.Article{article}}
	second := &stubCollector{name: "alphavantage", family: collect.FamilyAPI, articles: []news.Article{article}}
	service := newTestService(t, store, first, second)

	if _, err := service.RunCollector(context.Background(), first); err != nil {
		t.Fatalf("first collector: %v", err)
	}
	run, err := service.RunCollector(context.Background(), second)
	if err != nil {
		t.Fatalf("second collector: %v", err)
	}
	if run.Duplicates != 1 || run.Persisted.CacheCount != 0 {
		t.Fatalf("expected cross-collector duplicate to be filtered, got %+v", run)
	}
}

func TestRunFamily_OneFailureDoesNotStopTheRest(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	failing := &stubCollector{name: "newsapi_ai", family: collect.FamilyAPI, err: fmt.Errorf("invalid API key")}
	healthy := &stubCollector{
		name:     "tiingo",
		family:   collect.FamilyAPI,
		articles: []news.Article{{Title: "Survives", URL: "http://survives", Language: "en"}},
	}
	service := newTestService(t, store, failing, healthy)

	result, err := service.RunFamily(context.Background(), collect.FamilyAPI)
	if err == nil {
		t.Fatalf("expected the failing collector's error to surface")
	}
	if healthy.calls != 1 {
		t.Fatalf("expected the healthy collector to still run")
	}
	if result.NewCount != 1 || len(result.Inserted) != 1 {
		t.Fatalf("unexpected family result: %+v", result)
	}
	if len(result.NewArticles) != 1 || result.NewArticles[0].URL != "http://survives" {
		t.Fatalf("unexpected new article preview: %+v", result.NewArticles)
	}
	if len(result.Runs) != 2 {
		t.Fatalf("expected a run entry per collector, got %d", len(result.Runs))
	}
}

func TestRunFamily_OnlySelectedFamilyRuns(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	api := &stubCollector{name: "tiingo", family: collect.FamilyAPI}
	feed := &stubCollector{name: "rss", family: collect.FamilyFeed}
	service := newTestService(t, store, api, feed)

	if _, err := service.RunFamily(context.Background(), collect.FamilyFeed); err != nil {
		t.Fatalf("run family: %v", err)
	}
	if api.calls != 0 || feed.calls != 1 {
		t.Fatalf("unexpected calls: api=%d feed=%d", api.calls, feed.calls)
	}
}

func TestRunFamily_NewArticlePreviewIsCapped(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	var articles []news.Article
	for i := 0; i < 12; i++ {
		articles = append(articles, news.Article{
			Title:    fmt.Sprintf("Story %d", i),
			URL:      fmt.Sprintf("http://story/%d", i),
			Language: "en",
		})
	}
	collector := &stubCollector{name: "tiingo", family: collect.FamilyAPI, articles: articles}
	service := newTestService(t, store, collector)

	result, err := service.RunFamily(context.Background(), collect.FamilyAPI)
	if err != nil {
		t.Fatalf("run family: %v", err)
	}
	if result.NewCount != 12 || len(result.Inserted) != 12 {
		t.Fatalf("unexpected family result: count=%d inserted=%d", result.NewCount, len(result.Inserted))
	}
	if len(result.NewArticles) != 10 {
		t.Fatalf("expected the preview capped at 10, got %d", len(result.NewArticles))
	}
}

func TestRunFamily_EmptySweepHasEmptyPreview(t *testing.T) {
	t.Parallel()

	store := newMemoryStore()
	collector := &stubCollector{name: "newsdata", family: collect.FamilyAPI}
	service := newTestService(t, store, collector)

	result, err := service.RunFamily(context.Background(), collect.FamilyAPI)
	if err != nil {
		t.Fatalf("run family: %v", err)
	}
	if result.NewArticles == nil || len(result.NewArticles) != 0 {
		t.Fatalf("expected an empty non-nil preview, got %#v", result.NewArticles)
	}
}

func TestCacheFile_FixedNames(t *testing.T) {
	t.Parallel()

	service := NewService(nil, nil, nil, nil, "outputs", zerolog.Nop())
	cases := map[string]string{
		"rss":          "01_rss_news.json",
		"newsapi_ai":   "02_newsapi_ai.json",
		"thenewsapi":   "03_thenewsapi.json",
		"newsdata":     "04_newsdata.json",
		"tiingo":       "05_tiingo.json",
		"alphavantage": "06_alphavantage.json",
	}
	for collector, file := range cases {
		want := filepath.Join("outputs", file)
		if got := service.CacheFile(collector); got != want {
			t.Fatalf("cache file for %s: got %q want %q", collector, got, want)
		}
	}
	if got := len(service.AllCacheFiles()); got != len(cases) {
		t.Fatalf("unexpected cache file count: %d", got)
	}
}
