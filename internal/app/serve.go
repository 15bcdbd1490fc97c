package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cli"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/httpapi"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/schedule"
)

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	host := fs.String("host", "0.0.0.0", "Host interface to bind")
	port := fs.Int("port", 8000, "HTTP port")
	readTimeout := fs.Duration("read-timeout", 10*time.Second, "HTTP read timeout")
	writeTimeout := fs.Duration("write-timeout", 120*time.Second, "HTTP write timeout")
	shutdownTimeout := fs.Duration("shutdown-timeout", 10*time.Second, "Graceful shutdown timeout")
	autostart := fs.Bool("autostart", false, "Start periodic collection for both families on boot")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if *port <= 0 || *port > 65535 {
		fmt.Fprintln(os.Stderr, "--port must be between 1 and 65535")
		return 2
	}

	cfg, logger, err := loadConfigAndLogger(envLoader)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := newRuntime(ctx, cfg, logger)
	if err != nil {
		logger.Error().Err(err).Msg("serve failed to wire the collection stack")
		fmt.Fprintf(os.Stderr, "Failed to start: %v\n", err)
		return 1
	}
	defer rt.close()

	manager := schedule.NewManager(func(runCtx context.Context, family collect.Family) (int, []news.Article, error) {
		result, runErr := rt.service.RunFamily(runCtx, family)
		return result.NewCount, result.NewArticles, runErr
	}, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		<-sigCh
		cancel()
	}()

	if *autostart {
		apiInterval := time.Duration(cfg.APIIntervalSeconds) * time.Second
		rssInterval := time.Duration(cfg.RSSIntervalSeconds) * time.Second
		if err := manager.Start(ctx, collect.FamilyAPI, apiInterval); err != nil {
			logger.Warn().Err(err).Msg("api scheduler autostart failed")
		}
		if err := manager.Start(ctx, collect.FamilyFeed, rssInterval); err != nil {
			logger.Warn().Err(err).Msg("rss scheduler autostart failed")
		}
	}

	srv := httpapi.NewServer(rt.pool, rt.mirror, rt.service, manager, rt.hub, rt.reg, rt.sources, logger, httpapi.Options{
		Host:               *host,
		Port:               *port,
		ReadTimeout:        *readTimeout,
		WriteTimeout:       *writeTimeout,
		ShutdownTimeout:    *shutdownTimeout,
		AllowedOrigins:     cfg.CORSAllowedOriginsList(),
		APIIntervalSeconds: cfg.APIIntervalSeconds,
		RSSIntervalSeconds: cfg.RSSIntervalSeconds,
	})

	if err := srv.Start(ctx); err != nil {
		logger.Error().Err(err).Str("host", *host).Int("port", *port).Msg("server failed")
		fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
		return 1
	}

	return 0
}
