package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cli"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/config"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/db"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/live"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/logging"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/mirror"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/pipeline"
)

// runtime bundles the wired components shared by serve and collect.
type runtime struct {
	cfg     *config.Config
	logger  zerolog.Logger
	pool    *db.Pool
	mirror  *mirror.Store
	reg     *collect.Registry
	sources []collect.RSSSource
	hub     *live.Hub
	service *pipeline.Service
}

// loadConfigAndLogger runs the shared env-file, config, and logger setup.
func loadConfigAndLogger(envLoader *cli.EnvLoader) (*config.Config, zerolog.Logger, error) {
	if envLoader != nil {
		if _, err := envLoader.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("initialize logger: %w", err)
	}

	return cfg, logger, nil
}

// newRuntime wires the full collection stack. The stores degrade: an
// unreachable Postgres or Mongo logs a warning and leaves that sink nil, so
// collection still runs against the remaining sinks.
func newRuntime(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*runtime, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := db.NewPool(connectCtx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("database unavailable, persisting to caches and mirror only")
		pool = nil
	}

	store, err := mirror.NewStore(connectCtx, cfg)
	if err != nil {
		logger.Warn().Err(err).Msg("mirror unavailable, persisting without the document backup")
		store = nil
	}

	registry, err := collect.NewRegistry(cfg, logger)
	if err != nil {
		if pool != nil {
			_ = pool.Close()
		}
		if store != nil {
			_ = store.Close(context.Background())
		}
		return nil, fmt.Errorf("build collector registry: %w", err)
	}

	sources, err := collect.LoadRSSSources(cfg.RSSSourcesFile)
	if err != nil {
		sources = nil
	}

	hub := live.NewHub(logger)
	service := pipeline.NewService(registry, pool, store, hub, cfg.OutputsDir, logger)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		pool:    pool,
		mirror:  store,
		reg:     registry,
		sources: sources,
		hub:     hub,
		service: service,
	}, nil
}

func (r *runtime) close() {
	if r == nil {
		return
	}
	if r.pool != nil {
		_ = r.pool.Close()
	}
	if r.mirror != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.mirror.Close(closeCtx)
	}
}
