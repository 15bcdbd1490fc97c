package app

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cli"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/pipeline"
)

func runCollect(args []string) int {
	fs := flag.NewFlagSet("collect", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	familyFlag := fs.String("family", "all", "Collector family to run: api, rss, or all")
	format := fs.String("format", "table", "Output format: table or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	var families []collect.Family
	switch strings.ToLower(strings.TrimSpace(*familyFlag)) {
	case "all":
		families = []collect.Family{collect.FamilyAPI, collect.FamilyFeed}
	default:
		family, err := collect.ParseFamily(*familyFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		families = []collect.Family{family}
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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("collect failed to wire the collection stack")
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.close()

	var results []pipeline.FamilyRun
	var runErrs []error
	for _, family := range families {
		result, runErr := rt.service.RunFamily(ctx, family)
		results = append(results, result)
		if runErr != nil {
			runErrs = append(runErrs, runErr)
		}
	}

	if *format == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode results: %v\n", err)
			return 1
		}
	} else {
		printCollectTable(results)
	}

	if len(runErrs) > 0 {
		fmt.Fprintf(os.Stderr, "Completed with errors: %v\n", errors.Join(runErrs...))
		return 1
	}
	return 0
}

func printCollectTable(results []pipeline.FamilyRun) {
	fmt.Printf("%-14s %-10s %-10s %-8s %-8s %-8s\n", "COLLECTOR", "FETCHED", "DUPLICATE", "DB", "CACHE", "MIRROR")
	for _, result := range results {
		for _, run := range result.Runs {
			fmt.Printf("%-14s %-10d %-10d %-8d %-8d %-8d\n",
				run.Collector,
				run.Fetched,
				run.Duplicates,
				run.Persisted.DBCount,
				run.Persisted.CacheCount,
				run.Persisted.MirrorCount,
			)
		}
	}
	total := 0
	for _, result := range results {
		total += result.NewCount
	}
	fmt.Printf("\n%d new articles persisted\n", total)
}
