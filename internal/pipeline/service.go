// Package pipeline runs the collect, deduplicate, persist cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/dedup"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/langdetect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/live"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/persist"
)

// cacheFiles fixes the flat-file name per collector. The numeric prefixes
// keep directory listings in collection order.
var cacheFiles = map[string]string{
	"rss":          "01_rss_news.json",
	"newsapi_ai":   "02_newsapi_ai.json",
	"thenewsapi":   "03_thenewsapi.json",
	"newsdata":     "04_newsdata.json",
	"tiingo":       "05_tiingo.json",
	"alphavantage": "06_alphavantage.json",
}

// Store is the relational side of the pipeline: the insert sink plus the key
// source that seeds deduplication.
type Store interface {
	persist.RelationalSink
	dedup.KeySource
}

// CollectorRun is the outcome of one collector's cycle.
type CollectorRun struct {
	Collector  string         `json:"collector"`
	Fetched    int            `json:"fetched"`
	Duplicates int            `json:"duplicates"`
	Persisted  persist.Result `json:"persisted"`
}

// newArticlePreviewLimit caps how many of a sweep's new articles travel in
// responses and live events; the full list stays internal.
const newArticlePreviewLimit = 10

// FamilyRun aggregates the collector runs of one family invocation.
// NewArticles previews the first few inserted articles; Inserted carries
// the complete list for in-process consumers.
type FamilyRun struct {
	Family      collect.Family `json:"family"`
	Runs        []CollectorRun `json:"runs"`
	NewCount    int            `json:"new_count"`
	NewArticles []news.Article `json:"new_articles"`
	Inserted    []news.Article `json:"-"`
}

// Service owns one collection pipeline: fetch, dedup against everything
// already persisted, then fan out to the sinks.
type Service struct {
	registry   *collect.Registry
	store      Store
	writer     *persist.Writer
	hub        *live.Hub
	logger     zerolog.Logger
	outputsDir string
}

func NewService(registry *collect.Registry, store Store, mirror persist.DocumentSink, hub *live.Hub, outputsDir string, logger zerolog.Logger) *Service {
	return &Service{
		registry:   registry,
		store:      store,
		writer:     persist.NewWriter(store, mirror, logger),
		hub:        hub,
		logger:     logger,
		outputsDir: outputsDir,
	}
}

// CacheFile maps a collector name to its flat-file path under the outputs
// directory.
func (s *Service) CacheFile(collectorName string) string {
	name, exists := cacheFiles[collectorName]
	if !exists {
		name = collectorName + ".json"
	}
	return filepath.Join(s.outputsDir, name)
}

// AllCacheFiles lists every known flat-file path, whether or not it exists
// yet on disk.
func (s *Service) AllCacheFiles() []string {
	paths := make([]string, 0, len(cacheFiles))
	for _, name := range []string{"rss", "newsapi_ai", "thenewsapi", "newsdata", "tiingo", "alphavantage"} {
		paths = append(paths, filepath.Join(s.outputsDir, cacheFiles[name]))
	}
	return paths
}

// RunCollector executes one collector's full cycle. The key index is loaded
// fresh so articles persisted moments ago by another collector count as
// duplicates.
func (s *Service) RunCollector(ctx context.Context, collector collect.Collector) (CollectorRun, error) {
	run := CollectorRun{Collector: collector.Name()}

	s.hub.Log(fmt.Sprintf("[%s] collection started", collector.Name()))

	fetched, err := collector.Collect(ctx)
	if err != nil {
		s.hub.Log(fmt.Sprintf("[%s] collection failed: %v", collector.Name(), err))
		return run, fmt.Errorf("collector %s: %w", collector.Name(), err)
	}
	run.Fetched = len(fetched)

	fillMissingLanguages(fetched)

	keys := dedup.LoadKeys(ctx, s.store, s.AllCacheFiles(), s.logger)
	unique, duplicates := dedup.Filter(fetched, keys)
	run.Duplicates = duplicates

	run.Persisted = s.writer.Persist(ctx, unique, s.CacheFile(collector.Name()))

	s.logger.Info().
		Str("collector", collector.Name()).
		Int("fetched", run.Fetched).
		Int("duplicates", run.Duplicates).
		Int("db", run.Persisted.DBCount).
		Int("cache", run.Persisted.CacheCount).
		Int("mirror", run.Persisted.MirrorCount).
		Msg("collector run finished")
	s.hub.Log(fmt.Sprintf("[%s] fetched %d, %d duplicates, %d new",
		collector.Name(), run.Fetched, run.Duplicates, run.Persisted.DBCount))

	return run, nil
}

// RunFamily runs every collector of the family sequentially, in registration
// order. One failing collector never stops the rest; its error is joined
// into the returned error after the full sweep.
func (s *Service) RunFamily(ctx context.Context, family collect.Family) (FamilyRun, error) {
	result := FamilyRun{Family: family}

	var runErrs []error
	for _, collector := range s.registry.Family(family) {
		if ctx.Err() != nil {
			runErrs = append(runErrs, ctx.Err())
			break
		}

		run, err := s.RunCollector(ctx, collector)
		result.Runs = append(result.Runs, run)
		if err != nil {
			runErrs = append(runErrs, err)
			continue
		}
		result.NewCount += run.Persisted.DBCount
		result.Inserted = append(result.Inserted, run.Persisted.Inserted...)
	}

	result.NewArticles = result.Inserted
	if len(result.NewArticles) > newArticlePreviewLimit {
		result.NewArticles = result.NewArticles[:newArticlePreviewLimit]
	}
	if result.NewArticles == nil {
		result.NewArticles = []news.Article{}
	}

	s.hub.DataUpdate(result)

	return result, errors.Join(runErrs...)
}

// fillMissingLanguages detects the language of articles whose provider did
// not supply one. Best effort: short or ambiguous text stays unset.
func fillMissingLanguages(articles []news.Article) {
	for i := range articles {
		if articles[i].Language != "" {
			continue
		}
		sample := strings.TrimSpace(articles[i].Title + " " + articles[i].Description)
		articles[i].Language = langdetect.DetectISO6391(sample)
	}
}

// Run executes both families back to back, API collectors first.
func (s *Service) Run(ctx context.Context) ([]FamilyRun, error) {
	var runs []FamilyRun
	var errs []error
	for _, family := range []collect.Family{collect.FamilyAPI, collect.FamilyFeed} {
		run, err := s.RunFamily(ctx, family)
		runs = append(runs, run)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return runs, errors.Join(errs...)
}
