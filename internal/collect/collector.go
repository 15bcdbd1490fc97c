// Package collect fetches provider records and maps them into unified
// articles. One collector per provider; collectors are grouped into two
// families that share a scheduling lifecycle.
package collect

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/DDMYmia/NEWS-READER-ELITE/internal/config"
	"github.com/DDMYmia/NEWS-READER-ELITE/internal/news"
)

// Family groups collectors that share one scheduling lifecycle.
type Family string

const (
	FamilyAPI  Family = "api"
	FamilyFeed Family = "rss"
)

// ParseFamily resolves a family name from user input.
func ParseFamily(raw string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "api":
		return FamilyAPI, nil
	case "rss", "feed":
		return FamilyFeed, nil
	default:
		return "", fmt.Errorf("unknown collector family %q (expected api or rss)", raw)
	}
}

// Collector fetches and transforms one provider's records. Constructors
// validate credentials once; a missing key fails construction, never a run.
type Collector interface {
	Name() string
	Family() Family
	Collect(ctx context.Context) ([]news.Article, error)
}

// Registry holds the configured collectors in fixed, deterministic order.
type Registry struct {
	collectors []Collector
}

// NewRegistry builds every collector whose credentials are configured. A
// provider without a key is skipped with a warning so the remaining
// collectors still run.
func NewRegistry(cfg *config.Config, logger zerolog.Logger) (*Registry, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	client := &http.Client{Timeout: time.Duration(cfg.CollectorHTTPTimeout) * time.Second}
	domains := LoadAPISources(cfg.APISourcesFile)

	registry := &Registry{}

	apiConstructors := []struct {
		name  string
		build func() (Collector, error)
	}{
		{name: "newsapi_ai", build: func() (Collector, error) {
			return NewNewsAPIAICollector(cfg.NewsAPIAIKey, cfg.APIFetchLimit, client)
		}},
		{name: "thenewsapi", build: func() (Collector, error) {
			return NewTheNewsAPICollector(cfg.TheNewsAPIToken, cfg.APIFetchLimit, domains, client)
		}},
		{name: "newsdata", build: func() (Collector, error) {
			return NewNewsDataCollector(cfg.NewsDataKey, cfg.APIFetchLimit, client)
		}},
		{name: "tiingo", build: func() (Collector, error) {
			return NewTiingoCollector(cfg.TiingoKey, cfg.APIFetchLimit, domains, client)
		}},
		{name: "alphavantage", build: func() (Collector, error) {
			return NewAlphaVantageCollector(cfg.AlphaVantageKey, cfg.APIFetchLimit, client)
		}},
	}

	for _, entry := range apiConstructors {
		collector, err := entry.build()
		if err != nil {
			logger.Warn().Err(err).Str("collector", entry.name).Msg("collector not configured, skipping")
			continue
		}
		registry.collectors = append(registry.collectors, collector)
	}

	feeds, err := LoadRSSSources(cfg.RSSSourcesFile)
	if err != nil {
		logger.Warn().Err(err).Str("file", cfg.RSSSourcesFile).Msg("invalid RSS sources file, feed collector has no sources")
		feeds = nil
	}
	registry.collectors = append(registry.collectors, NewRSSCollector(feeds, client, logger))

	return registry, nil
}

// NewRegistryFromCollectors builds a registry from explicit collectors, in
// the order given.
func NewRegistryFromCollectors(collectors ...Collector) *Registry {
	return &Registry{collectors: collectors}
}

// Family returns the collectors of one family, in registration order.
func (r *Registry) Family(family Family) []Collector {
	if r == nil {
		return nil
	}
	var out []Collector
	for _, collector := range r.collectors {
		if collector.Family() == family {
			out = append(out, collector)
		}
	}
	return out
}

// All returns every registered collector in fixed order.
func (r *Registry) All() []Collector {
	if r == nil {
		return nil
	}
	return r.collectors
}

// Names lists the registered collector names in order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.collectors))
	for _, collector := range r.collectors {
		names = append(names, collector.Name())
	}
	return names
}
