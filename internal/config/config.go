package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	TMDB     TMDBConfig
	Listings ListingsConfig
	Catalog  CatalogConfig
	Fetch    FetchConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type PostgresConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type TMDBConfig struct {
	APIKey      string
	WatchRegion string
}

type ListingsConfig struct {
	BaseURL string
	// Localized tokens that open a trailing season/episode suffix on a
	// series title ("Сезон 3, Епизод 5"). Data, not logic: add a new
	// language by extending the list.
	SeriesMarkers []string
}

type CatalogConfig struct {
	MoviesPath   string
	OscarsPath   string
	ChannelsSeed string
}

type FetchConfig struct {
	CronSpec    string
	Concurrency int
}

type LoggingConfig struct {
	Level string
	File  string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnvInt("SERVER_PORT", 8000),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("POSTGRES_HOST", "localhost"),
			Port:     getEnvInt("POSTGRES_PORT", 5432),
			User:     getEnv("POSTGRES_USER", "tvprograma"),
			Password: getEnv("POSTGRES_PASSWORD", ""),
			Database: getEnv("POSTGRES_DB", "tvprograma"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		TMDB: TMDBConfig{
			APIKey:      getEnv("TMDB_API_KEY", ""),
			WatchRegion: getEnv("TMDB_WATCH_REGION", "BG"),
		},
		Listings: ListingsConfig{
			BaseURL:       getEnv("LISTINGS_BASE_URL", "https://www.xn----8sbafg9clhjcp.bg"),
			SeriesMarkers: parseCommaSeparated(getEnv("SERIES_MARKERS", "сез.,сезон,сез,еп.,епизод,еп")),
		},
		Catalog: CatalogConfig{
			MoviesPath:   getEnv("MOVIES_PATH", "data/movies-min.json"),
			OscarsPath:   getEnv("OSCARS_PATH", "data/oscars-min.json"),
			ChannelsSeed: getEnv("CHANNELS_SEED", "data/tv_channels.json"),
		},
		Fetch: FetchConfig{
			CronSpec:    getEnv("FETCH_CRON", "0 7 * * *"),
			Concurrency: getEnvInt("FETCH_CONCURRENCY", 4),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Listings.BaseURL == "" {
		return fmt.Errorf("LISTINGS_BASE_URL is required")
	}
	if len(c.Listings.SeriesMarkers) == 0 {
		return fmt.Errorf("SERIES_MARKERS must contain at least one marker")
	}
	if c.Catalog.MoviesPath == "" || c.Catalog.OscarsPath == "" {
		return fmt.Errorf("MOVIES_PATH and OSCARS_PATH are required")
	}
	if c.Postgres.Host == "" || c.Postgres.Database == "" {
		return fmt.Errorf("POSTGRES_HOST and POSTGRES_DB are required")
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func parseCommaSeparated(value string) []string {
	if value == "" {
		return []string{}
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
