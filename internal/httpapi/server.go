// Package httpapi serves the JSON API and the WebSocket log stream.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/cache"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/collect"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/db"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/globaltime"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/live"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/mirror"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/pipeline"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/schedule"
)

const (
	defaultNewsLimit = 50
	maxNewsLimit     = 500
)

type Options struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	APIIntervalSeconds int
	RSSIntervalSeconds int
}

type Server struct {
	pool    *db.Pool
	mirror  *mirror.Store
	service *pipeline.Service
	manager *schedule.Manager
	hub     *live.Hub
	sources []collect.RSSSource
	names   []string
	logger  zerolog.Logger
	opts    Options

	// baseCtx outlives individual requests; scheduler loops started from a
	// handler are bound to it, not to the request.
	baseCtx context.Context
}

func NewServer(
	pool *db.Pool,
	documentStore *mirror.Store,
	service *pipeline.Service,
	manager *schedule.Manager,
	hub *live.Hub,
	registry *collect.Registry,
	sources []collect.RSSSource,
	logger zerolog.Logger,
	opts Options,
) *Server {
	host := strings.TrimSpace(opts.Host)
	if host == "" {
		host = "0.0.0.0"
	}
	port := opts.Port
	if port <= 0 {
		port = 8000
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 120 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	apiInterval := opts.APIIntervalSeconds
	if apiInterval <= 0 {
		apiInterval = 300
	}
	rssInterval := opts.RSSIntervalSeconds
	if rssInterval <= 0 {
		rssInterval = 300
	}

	return &Server{
		pool:    pool,
		mirror:  documentStore,
		service: service,
		manager: manager,
		hub:     hub,
		sources: sources,
		names:   registry.Names(),
		logger:  logger,
		opts: Options{
			Host:               host,
			Port:               port,
			ReadTimeout:        readTimeout,
			WriteTimeout:       writeTimeout,
			ShutdownTimeout:    shutdownTimeout,
			AllowedOrigins:     allowedOrigins,
			APIIntervalSeconds: apiInterval,
			RSSIntervalSeconds: rssInterval,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.service == nil || s.manager == nil {
		return fmt.Errorf("server is not initialized")
	}
	s.baseCtx = ctx

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.opts.AllowedOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Err(v.Error).
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Str("remote_ip", v.RemoteIP).
					Str("request_id", v.RequestID).
					Msg("http request failed")
				return nil
			}

			s.logger.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("remote_ip", v.RemoteIP).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	assetsSub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return fmt.Errorf("load embedded assets: %w", err)
	}
	indexHTML, err := fs.ReadFile(assetsSub, "index.html")
	if err != nil {
		return fmt.Errorf("load index.html: %w", err)
	}

	e.GET("/", func(c echo.Context) error {
		return c.Blob(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/news", s.handleNews)
	api.GET("/stats", s.handleStats)
	api.GET("/sources", s.handleSources)
	api.POST("/collect/:family", s.handleCollect)
	api.POST("/schedule/:family/start", s.handleScheduleStart)
	api.POST("/schedule/:family/stop", s.handleScheduleStop)
	api.GET("/schedule", s.handleSchedule)

	e.GET("/ws/logs", s.handleLogSocket)

	addr := fmt.Sprintf("%s:%d", s.opts.Host, s.opts.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.manager.StopAll()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", addr).Msg("newsreader web server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("newsreader web server stopped")
	return nil
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch v := he.Message.(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				message = v
			}
		default:
			if text := strings.TrimSpace(http.StatusText(status)); text != "" {
				message = text
			}
		}
	} else if err != nil {
		message = err.Error()
	}

	isAPI := strings.HasPrefix(c.Request().URL.Path, "/api/")
	if isAPI {
		if status >= 500 {
			_ = internalError(c, "Internal server error")
			return
		}
		_ = fail(c, status, message, nil)
		return
	}

	_ = c.String(status, message)
}

func (s *Server) handleHealth(c echo.Context) error {
	return success(c, map[string]any{
		"service": "newsreader",
		"time":    globaltime.UTC(),
	})
}

func (s *Server) handleNews(c echo.Context) error {
	limit, err := parsePositiveInt(c.QueryParam("limit"), defaultNewsLimit, 1, maxNewsLimit)
	if err != nil {
		return failValidation(c, map[string]string{"limit": err.Error()})
	}
	source := strings.TrimSpace(c.QueryParam("source"))

	items, err := s.pool.ListArticles(c.Request().Context(), limit, source)
	if err != nil {
		s.logger.Error().Err(err).Msg("query news failed")
		return internalError(c, "Failed to load news")
	}

	return success(c, map[string]any{
		"items":  items,
		"count":  len(items),
		"limit":  limit,
		"source": source,
	})
}

func (s *Server) handleStats(c echo.Context) error {
	ctx := c.Request().Context()

	stats := map[string]any{
		"last_updated": nil,
	}

	// Each data point degrades independently: a sink being down zeroes its
	// figure instead of failing the endpoint.
	if count, err := s.pool.CountArticles(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("database count unavailable")
		stats["database_count"] = int64(0)
	} else {
		stats["database_count"] = count
	}

	if count, err := s.mirror.Count(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("mirror count unavailable")
		stats["mirror_count"] = int64(0)
	} else {
		stats["mirror_count"] = count
	}

	if counts, err := s.pool.CountBySource(ctx); err == nil {
		stats["source_stats"] = counts
	} else {
		stats["source_stats"] = []db.SourceCount{}
	}

	if dedupStats, err := s.pool.DeduplicationStats(ctx); err == nil {
		stats["deduplication"] = dedupStats
	}

	if last, err := s.pool.LastUpdatedAt(ctx); err == nil && last != nil {
		stats["last_updated"] = last
	}

	cacheCounts := map[string]int{}
	for _, path := range s.service.AllCacheFiles() {
		cacheCounts[path] = cache.Count(path)
	}
	stats["cache_counts"] = cacheCounts

	return success(c, stats)
}

func (s *Server) handleSources(c echo.Context) error {
	feeds := s.sources
	if feeds == nil {
		feeds = []collect.RSSSource{}
	}
	return success(c, map[string]any{
		"collectors": s.names,
		"rss_feeds":  feeds,
	})
}

func (s *Server) handleCollect(c echo.Context) error {
	family, err := collect.ParseFamily(c.Param("family"))
	if err != nil {
		return failValidation(c, map[string]string{"family": err.Error()})
	}

	newCount, newArticles, runErr := s.manager.RunOnce(c.Request().Context(), family)
	if newArticles == nil {
		newArticles = []news.Article{}
	}

	data := map[string]any{
		"family":       family,
		"new_count":    newCount,
		"new_articles": newArticles,
	}
	if runErr != nil {
		data["errors"] = runErr.Error()
	}
	return success(c, data)
}

func (s *Server) handleScheduleStart(c echo.Context) error {
	family, err := collect.ParseFamily(c.Param("family"))
	if err != nil {
		return failValidation(c, map[string]string{"family": err.Error()})
	}

	defaultInterval := s.opts.APIIntervalSeconds
	if family == collect.FamilyFeed {
		defaultInterval = s.opts.RSSIntervalSeconds
	}
	intervalSeconds, err := parsePositiveInt(c.QueryParam("interval_seconds"), defaultInterval, 1, 86400)
	if err != nil {
		return failValidation(c, map[string]string{"interval_seconds": err.Error()})
	}

	loopCtx := s.baseCtx
	if loopCtx == nil {
		loopCtx = context.Background()
	}
	if err := s.manager.Start(loopCtx, family, time.Duration(intervalSeconds)*time.Second); err != nil {
		if errors.Is(err, schedule.ErrAlreadyRunning) {
			return failConflict(c, fmt.Sprintf("%s collection is already running", family))
		}
		s.logger.Error().Err(err).Str("family", string(family)).Msg("scheduler start failed")
		return internalError(c, "Failed to start scheduler")
	}

	return success(c, map[string]any{
		"family":           family,
		"interval_seconds": intervalSeconds,
		"running":          true,
	})
}

func (s *Server) handleScheduleStop(c echo.Context) error {
	family, err := collect.ParseFamily(c.Param("family"))
	if err != nil {
		return failValidation(c, map[string]string{"family": err.Error()})
	}

	if err := s.manager.Stop(family); err != nil {
		if errors.Is(err, schedule.ErrNotRunning) {
			return failConflict(c, fmt.Sprintf("%s collection is not running", family))
		}
		s.logger.Error().Err(err).Str("family", string(family)).Msg("scheduler stop failed")
		return internalError(c, "Failed to stop scheduler")
	}

	return success(c, map[string]any{
		"family":  family,
		"running": false,
	})
}

func (s *Server) handleSchedule(c echo.Context) error {
	return success(c, map[string]any{
		"families": s.manager.StatusAll(),
	})
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
