package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// NewsItem is the row shape returned to the /api/news endpoint and CLI.
type NewsItem struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	URL         string     `json:"url"`
	ImageURL    string     `json:"image_url,omitempty"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	SourceName  string     `json:"source_name,omitempty"`
	SourceURL   string     `json:"source_url,omitempty"`
	Language    string     `json:"language,omitempty"`
	Authors     []string   `json:"authors,omitempty"`
	Tickers     []string   `json:"tickers,omitempty"`
	Topics      []string   `json:"topics,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DedupStats summarizes key uniqueness across the persisted articles.
type DedupStats struct {
	TotalArticles   int64 `json:"total_articles"`
	UniqueTitles    int64 `json:"unique_titles"`
	UniqueURLs      int64 `json:"unique_urls"`
	DuplicateTitles int64 `json:"duplicate_titles"`
}

// InsertArticles inserts the batch one row at a time, relying on the URL
// unique constraint: a conflicting URL is skipped, not an error. Returns the
// inserted count and the subset that was actually inserted, in input order.
func (p *Pool) InsertArticles(ctx context.Context, articles []news.Article) (int, []news.Article, error) {
	if len(articles) == 0 {
		return 0, nil, nil
	}
	if p == nil || p.gdb == nil {
		return 0, nil, fmt.Errorf("database pool is not initialized")
	}

	const q = `
INSERT INTO articles (title, description, url, image_url, published_at,
	source_name, source_url, language, full_content, authors, tickers, topics)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (url) DO NOTHING
RETURNING id
`

	tx, err := p.BeginTx(ctx, TxOptions{})
	if err != nil {
		return 0, nil, fmt.Errorf("begin insert transaction: %w", err)
	}

	inserted := make([]news.Article, 0, len(articles))
	for _, article := range articles {
		var id int64
		err := tx.QueryRow(ctx, q,
			article.Title,
			article.Description,
			article.URL,
			article.ImageURL,
			article.PublishedAt,
			article.SourceName,
			article.SourceURL,
			article.Language,
			article.FullContent,
			pq.Array(emptyIfNil(article.Authors)),
			pq.Array(emptyIfNil(article.Tickers)),
			pq.Array(emptyIfNil(article.Topics)),
		).Scan(&id)
		if err != nil {
			if errors.Is(err, ErrNoRows) {
				// URL conflict: already persisted.
				continue
			}
			_ = tx.Rollback(ctx)
			return 0, nil, fmt.Errorf("insert article %q: %w", article.URL, err)
		}
		inserted = append(inserted, article)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, nil, fmt.Errorf("commit article inserts: %w", err)
	}

	return len(inserted), inserted, nil
}

// TitleURLKeys returns every persisted article's raw title and URL, used to
// seed the dedup key index before a collection run.
func (p *Pool) TitleURLKeys(ctx context.Context) ([]string, []string, error) {
	if p == nil || p.gdb == nil {
		return nil, nil, fmt.Errorf("database pool is not initialized")
	}

	const q = `SELECT COALESCE(title, ''), COALESCE(url, '') FROM articles`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, nil, fmt.Errorf("query article keys: %w", err)
	}
	defer rows.Close()

	var titles, urls []string
	for rows.Next() {
		var title, url string
		if err := rows.Scan(&title, &url); err != nil {
			return nil, nil, fmt.Errorf("scan article key row: %w", err)
		}
		titles = append(titles, title)
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate article key rows: %w", err)
	}

	return titles, urls, nil
}

// CountArticles returns the total number of persisted articles.
func (p *Pool) CountArticles(ctx context.Context) (int64, error) {
	if p == nil || p.gdb == nil {
		return 0, fmt.Errorf("database pool is not initialized")
	}

	var count int64
	if err := p.QueryRow(ctx, `SELECT COUNT(*) FROM articles`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return count, nil
}

// ListArticles returns the most recent articles, optionally filtered by a
// case-insensitive source name match.
func (p *Pool) ListArticles(ctx context.Context, limit int, source string) ([]NewsItem, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be > 0")
	}

	const q = `
SELECT
	a.id,
	COALESCE(a.title, ''),
	COALESCE(a.description, ''),
	a.url,
	COALESCE(a.image_url, ''),
	a.published_at,
	COALESCE(a.source_name, ''),
	COALESCE(a.source_url, ''),
	COALESCE(a.language, ''),
	a.authors,
	a.tickers,
	a.topics,
	a.created_at
FROM articles a
WHERE ($1 = '' OR a.source_name ILIKE '%' || $1 || '%')
ORDER BY a.published_at DESC NULLS LAST, a.id DESC
LIMIT $2
`

	rows, err := p.Query(ctx, q, strings.TrimSpace(source), limit)
	if err != nil {
		return nil, fmt.Errorf("query articles: %w", err)
	}
	defer rows.Close()

	items := make([]NewsItem, 0, limit)
	for rows.Next() {
		var (
			row     NewsItem
			authors pq.StringArray
			tickers pq.StringArray
			topics  pq.StringArray
		)
		if err := rows.Scan(
			&row.ID,
			&row.Title,
			&row.Description,
			&row.URL,
			&row.ImageURL,
			&row.PublishedAt,
			&row.SourceName,
			&row.SourceURL,
			&row.Language,
			&authors,
			&tickers,
			&topics,
			&row.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan article row: %w", err)
		}
		row.Authors = authors
		row.Tickers = tickers
		row.Topics = topics
		items = append(items, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate article rows: %w", err)
	}

	return items, nil
}

// SourceCount is one source's share of the persisted articles.
type SourceCount struct {
	SourceName string `json:"source_name"`
	Count      int64  `json:"count"`
}

// CountBySource returns per-source article counts, largest first.
func (p *Pool) CountBySource(ctx context.Context) ([]SourceCount, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	const q = `
SELECT COALESCE(NULLIF(source_name, ''), 'unknown') AS source_name, COUNT(*)::BIGINT
FROM articles
GROUP BY 1
ORDER BY 2 DESC, 1
`

	rows, err := p.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query source counts: %w", err)
	}
	defer rows.Close()

	var counts []SourceCount
	for rows.Next() {
		var row SourceCount
		if err := rows.Scan(&row.SourceName, &row.Count); err != nil {
			return nil, fmt.Errorf("scan source count: %w", err)
		}
		counts = append(counts, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate source counts: %w", err)
	}
	return counts, nil
}

// LastUpdatedAt returns the most recent created_at across all articles.
func (p *Pool) LastUpdatedAt(ctx context.Context) (*time.Time, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	var last *time.Time
	if err := p.QueryRow(ctx, `SELECT MAX(created_at) FROM articles`).Scan(&last); err != nil {
		return nil, fmt.Errorf("query last update: %w", err)
	}
	return last, nil
}

// DeduplicationStats reports key uniqueness over the persisted articles.
func (p *Pool) DeduplicationStats(ctx context.Context) (*DedupStats, error) {
	if p == nil || p.gdb == nil {
		return nil, fmt.Errorf("database pool is not initialized")
	}

	const q = `
SELECT
	(SELECT COUNT(*) FROM articles) AS total_articles,
	(SELECT COUNT(DISTINCT title) FROM articles WHERE title IS NOT NULL) AS unique_titles,
	(SELECT COUNT(DISTINCT url) FROM articles WHERE url IS NOT NULL) AS unique_urls,
	(SELECT COUNT(*) FROM (
		SELECT title FROM articles WHERE title IS NOT NULL GROUP BY title HAVING COUNT(*) > 1
	) dup) AS duplicate_titles
`

	var stats DedupStats
	if err := p.QueryRow(ctx, q).Scan(
		&stats.TotalArticles,
		&stats.UniqueTitles,
		&stats.UniqueURLs,
		&stats.DuplicateTitles,
	); err != nil {
		return nil, fmt.Errorf("query dedup stats: %w", err)
	}
	return &stats, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
