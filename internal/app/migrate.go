package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cli"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/db"
)

func runMigrate(args []string) int {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// NewPool runs the schema migration as part of connecting.
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	logger.Info().Msg("schema migration complete")
	fmt.Println("Schema is up to date.")
	return 0
}
