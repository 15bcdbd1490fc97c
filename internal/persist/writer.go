// Package persist writes deduplicated articles to the three sinks: the
// relational store, the per-collector flat-file cache, and the document-store
// mirror. Each sink is attempted unconditionally; a failed sink reports a
// zero count and never blocks the others.
package persist

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// RelationalSink is the authoritative store. The insert skips URL conflicts
// and reports the subset of rows actually inserted.
type RelationalSink interface {
	InsertArticles(ctx context.Context, articles []news.Article) (int, []news.Article, error)
}

// DocumentSink is the idempotent mirror, keyed by URL.
type DocumentSink interface {
	Upsert(ctx context.Context, articles []news.Article) (int64, error)
}

// Result aggregates the per-sink outcomes of one Persist call. Zero counts on
// a sink signal degraded persistence; Persist itself never fails.
type Result struct {
	DBCount     int            `json:"db_count"`
	CacheCount  int            `json:"cache_count"`
	MirrorCount int            `json:"mirror_count"`
	Inserted    []news.Article `json:"-"`
}

type Writer struct {
	store  RelationalSink
	mirror DocumentSink
	logger zerolog.Logger
}

func NewWriter(store RelationalSink, mirror DocumentSink, logger zerolog.Logger) *Writer {
	return &Writer{
		store:  store,
		mirror: mirror,
		logger: logger,
	}
}

// Persist writes the batch to all three sinks. The caller is expected to have
// deduplicated the batch already; the cache layer appends blindly.
func (w *Writer) Persist(ctx context.Context, articles []news.Article, cacheFile string) Result {
	var result Result
	if w == nil || len(articles) == 0 {
		return result
	}

	if w.store != nil {
		dbCount, inserted, err := w.store.InsertArticles(ctx, articles)
		if err != nil {
			w.logger.Warn().Err(err).Msg("relational insert failed, continuing with remaining sinks")
		} else {
			result.DBCount = dbCount
			result.Inserted = inserted
		}
	}

	cacheCount, err := cache.Append(cacheFile, articles)
	if err != nil {
		w.logger.Warn().Err(err).Str("cache_file", cacheFile).Msg("cache append failed")
	} else {
		result.CacheCount = cacheCount
	}

	if w.mirror != nil {
		mirrorCount, err := w.mirror.Upsert(ctx, articles)
		if err != nil {
			w.logger.Warn().Err(err).Msg("mirror upsert failed")
		} else {
			result.MirrorCount = int(mirrorCount)
		}
	}

	return result
}
