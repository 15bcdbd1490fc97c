package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Environment string `envconfig:"ENVIRONMENT" default:"local"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	PostgresHost     string `envconfig:"POSTGRES_HOST" default:"localhost"`
	PostgresPort     int    `envconfig:"POSTGRES_PORT" default:"5432"`
	PostgresDB       string `envconfig:"POSTGRES_DB" default:"news_db"`
	PostgresUser     string `envconfig:"POSTGRES_USER" default:"postgres"`
	PostgresPassword string `envconfig:"POSTGRES_PASSWORD" default:""`
	PostgresSSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
	DBMinConns       int32  `envconfig:"NR_DB_MIN_CONNS" default:"1"`
	DBMaxConns       int32  `envconfig:"NR_DB_MAX_CONNS" default:"8"`

	MongoHost       string `envconfig:"MONGO_HOST" default:"localhost"`
	MongoPort       int    `envconfig:"MONGO_PORT" default:"27017"`
	MongoDBName     string `envconfig:"MONGO_DB_NAME" default:"news_db_backup"`
	MongoCollection string `envconfig:"MONGO_COLLECTION" default:"articles"`

	OutputsDir     string `envconfig:"OUTPUTS_DIR" default:"outputs"`
	APISourcesFile string `envconfig:"API_SOURCES_FILE" default:"sources/01_api_sources.txt"`
	RSSSourcesFile string `envconfig:"RSS_SOURCES_FILE" default:"sources/02_rss_sources.json"`

	NewsAPIAIKey    string `envconfig:"NEWSAPI_AI_API_KEY" default:""`
	TheNewsAPIToken string `envconfig:"THENEWSAPI_API_TOKEN" default:""`
	NewsDataKey     string `envconfig:"NEWSDATA_API_KEY" default:""`
	TiingoKey       string `envconfig:"TIINGO_API_KEY" default:""`
	AlphaVantageKey string `envconfig:"ALPHAVANTAGE_API_KEY" default:""`

	APIFetchLimit        int `envconfig:"API_FETCH_LIMIT" default:"10"`
	APIIntervalSeconds   int `envconfig:"API_COLLECT_INTERVAL_SECONDS" default:"300"`
	RSSIntervalSeconds   int `envconfig:"RSS_COLLECT_INTERVAL_SECONDS" default:"300"`
	CollectorHTTPTimeout int `envconfig:"COLLECTOR_HTTP_TIMEOUT_SECONDS" default:"30"`

	CORSAllowedOrigins string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("POSTGRES_HOST is required")
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("POSTGRES_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(c.PostgresDB) == "" {
		return fmt.Errorf("POSTGRES_DB is required")
	}
	if c.DBMinConns < 0 {
		return fmt.Errorf("NR_DB_MIN_CONNS must be >= 0")
	}
	if c.DBMaxConns < 1 {
		return fmt.Errorf("NR_DB_MAX_CONNS must be >= 1")
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("NR_DB_MIN_CONNS (%d) cannot exceed NR_DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.MongoPort < 1 || c.MongoPort > 65535 {
		return fmt.Errorf("MONGO_PORT must be between 1 and 65535")
	}
	if strings.TrimSpace(c.MongoDBName) == "" {
		return fmt.Errorf("MONGO_DB_NAME is required")
	}
	if strings.TrimSpace(c.OutputsDir) == "" {
		return fmt.Errorf("OUTPUTS_DIR is required")
	}
	if c.APIFetchLimit < 1 {
		return fmt.Errorf("API_FETCH_LIMIT must be >= 1")
	}
	if c.APIIntervalSeconds < 1 {
		return fmt.Errorf("API_COLLECT_INTERVAL_SECONDS must be >= 1")
	}
	if c.RSSIntervalSeconds < 1 {
		return fmt.Errorf("RSS_COLLECT_INTERVAL_SECONDS must be >= 1")
	}
	if c.CollectorHTTPTimeout < 1 {
		return fmt.Errorf("COLLECTOR_HTTP_TIMEOUT_SECONDS must be >= 1")
	}
	return nil
}

// PostgresDSN assembles a keyword/value connection string from the parts.
func (c *Config) PostgresDSN() string {
	parts := []string{
		"host=" + c.PostgresHost,
		fmt.Sprintf("port=%d", c.PostgresPort),
		"dbname=" + c.PostgresDB,
		"user=" + c.PostgresUser,
		"sslmode=" + c.PostgresSSLMode,
	}
	if c.PostgresPassword != "" {
		parts = append(parts, "password="+c.PostgresPassword)
	}
	return strings.Join(parts, " ")
}

func (c *Config) MongoURI() string {
	return fmt.Sprintf("mongodb://%s:%d", c.MongoHost, c.MongoPort)
}

func (c *Config) CORSAllowedOriginsList() []string {
	if c == nil {
		return nil
	}

	parts := strings.Split(c.CORSAllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		origin := strings.TrimSpace(part)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	return origins
}
