package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cli"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/db"
)

type statsReport struct {
	DatabaseCount int64            `json:"database_count"`
	MirrorCount   int64            `json:"mirror_count"`
	CacheCounts   map[string]int   `json:"cache_counts"`
	SourceStats   []db.SourceCount `json:"source_stats,omitempty"`
	Deduplication *db.DedupStats   `json:"deduplication,omitempty"`
	LastUpdated   *time.Time       `json:"last_updated,omitempty"`
}

func runStats(args []string) int {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	format := fs.String("format", "table", "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *format != "table" && *format != "json" {
		fmt.Fprintln(os.Stderr, "--format must be table or json")
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.close()

	report := statsReport{CacheCounts: map[string]int{}}

	if count, err := rt.pool.CountArticles(ctx); err != nil {
		logger.Warn().Err(err).Msg("database count unavailable")
	} else {
		report.DatabaseCount = count
	}
	if counts, err := rt.pool.CountBySource(ctx); err == nil {
		report.SourceStats = counts
	}
	if dedupStats, err := rt.pool.DeduplicationStats(ctx); err == nil {
		report.Deduplication = dedupStats
	}
	if last, err := rt.pool.LastUpdatedAt(ctx); err == nil {
		report.LastUpdated = last
	}
	if count, err := rt.mirror.Count(ctx); err != nil {
		logger.Warn().Err(err).Msg("mirror count unavailable")
	} else {
		report.MirrorCount = count
	}
	for _, path := range rt.service.AllCacheFiles() {
		report.CacheCounts[path] = cache.Count(path)
	}

	if *format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode report: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Printf("Database articles: %d\n", report.DatabaseCount)
	fmt.Printf("Mirror articles:   %d\n", report.MirrorCount)
	if report.Deduplication != nil {
		fmt.Printf("Unique titles:     %d (%d duplicated)\n",
			report.Deduplication.UniqueTitles, report.Deduplication.DuplicateTitles)
		fmt.Printf("Unique URLs:       %d\n", report.Deduplication.UniqueURLs)
	}
	if report.LastUpdated != nil {
		fmt.Printf("Last updated:      %s\n", report.LastUpdated.UTC().Format(time.RFC3339))
	}

	fmt.Println("\nCache files:")
	for _, path := range rt.service.AllCacheFiles() {
		fmt.Printf("  %-40s %d\n", path, report.CacheCounts[path])
	}

	if len(report.SourceStats) > 0 {
		fmt.Println("\nArticles by source:")
		for _, row := range report.SourceStats {
			fmt.Printf("  %-40s %d\n", row.SourceName, row.Count)
		}
	}
	return 0
}
