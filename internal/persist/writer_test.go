package persist

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

type stubRelational struct {
	seen map[string]struct{}
	err  error
}

func newStubRelational() *stubRelational {
	return &stubRelational{seen: make(map[string]struct{})}
}

func (s *stubRelational) InsertArticles(_ context.Context, articles []news.Article) (int, []news.Article, error) {
	if s.err != nil {
		return 0, nil, s.err
	}
	var inserted []news.Article
	for _, article := range articles {
		if _, exists := s.seen[article.URL]; exists {
			continue
		}
		s.seen[article.URL] = struct{}{}
		inserted = append(inserted, article)
	}
	return len(inserted), inserted, nil
}

type stubMirror struct {
	upserts int64
	err     error
}

func (s *stubMirror) Upsert(_ context.Context, articles []news.Article) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.upserts += int64(len(articles))
	return int64(len(articles)), nil
}

func TestPersist_AllSinksSucceed(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "03_thenewsapi.json")
	writer := NewWriter(newStubRelational(), &stubMirror{}, zerolog.Nop())

	articles := []news.Article{
		{Title: "One", URL: "http://one"},
		{Title: "Two", URL: "http://two"},
	}

	result := writer.Persist(context.Background(), articles, cacheFile)
	if result.DBCount != 2 || result.CacheCount != 2 || result.MirrorCount != 2 {
		t.Fatalf("unexpected counts: %+v", result)
	}
	if len(result.Inserted) != 2 {
		t.Fatalf("unexpected inserted subset: %d", len(result.Inserted))
	}
	if got := cache.Count(cacheFile); got != 2 {
		t.Fatalf("unexpected cache count: %d", got)
	}
}

func TestPersist_RepeatedArticle(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "04_newsdata.json")
	store := newStubRelational()
	mirror := &stubMirror{}
	writer := NewWriter(store, mirror, zerolog.Nop())

	article := []news.Article{{Title: "Repeat", URL: "http://repeat"}}

	first := writer.Persist(context.Background(), article, cacheFile)
	if first.DBCount != 1 || first.MirrorCount != 1 {
		t.Fatalf("unexpected first-run counts: %+v", first)
	}

	second := writer.Persist(context.Background(), article, cacheFile)
	if second.DBCount != 0 {
		t.Fatalf("expected unique constraint to reject the repeat, got db count %d", second.DBCount)
	}
	if len(second.Inserted) != 0 {
		t.Fatalf("expected empty inserted subset on repeat, got %d", len(second.Inserted))
	}
	if second.MirrorCount != 1 {
		t.Fatalf("expected upsert to still report a write, got %d", second.MirrorCount)
	}
	// The cache layer does not deduplicate on its own.
	if got := cache.Count(cacheFile); got != 2 {
		t.Fatalf("unexpected cache count after repeat: %d", got)
	}
}

func TestPersist_StoreDownDegradesOnlyDB(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "06_alphavantage.json")
	store := newStubRelational()
	store.err = fmt.Errorf("connection refused")
	writer := NewWriter(store, &stubMirror{}, zerolog.Nop())

	result := writer.Persist(context.Background(), []news.Article{{Title: "X", URL: "http://x"}}, cacheFile)
	if result.DBCount != 0 || result.Inserted != nil {
		t.Fatalf("expected degraded db result, got %+v", result)
	}
	if result.CacheCount != 1 || result.MirrorCount != 1 {
		t.Fatalf("expected cache and mirror to succeed independently, got %+v", result)
	}
}

func TestPersist_MirrorDownDegradesOnlyMirror(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "01_rss_news.json")
	writer := NewWriter(newStubRelational(), &stubMirror{err: fmt.Errorf("no reachable servers")}, zerolog.Nop())

	result := writer.Persist(context.Background(), []news.Article{{Title: "Y", URL: "http://y"}}, cacheFile)
	if result.MirrorCount != 0 {
		t.Fatalf("expected mirror count 0, got %d", result.MirrorCount)
	}
	if result.DBCount != 1 || result.CacheCount != 1 {
		t.Fatalf("expected db and cache to succeed, got %+v", result)
	}
}

func TestPersist_NilSinks(t *testing.T) {
	t.Parallel()

	cacheFile := filepath.Join(t.TempDir(), "02_newsapi_ai.json")
	writer := NewWriter(nil, nil, zerolog.Nop())

	result := writer.Persist(context.Background(), []news.Article{{Title: "Z", URL: "http://z"}}, cacheFile)
	if result.DBCount != 0 || result.MirrorCount != 0 {
		t.Fatalf("expected zero counts for nil sinks, got %+v", result)
	}
	if result.CacheCount != 1 {
		t.Fatalf("expected cache write to proceed, got %+v", result)
	}
}
