package config

import (
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	Geocoder    GeocoderConfig
	CORS        CORSConfig
	Logging     LoggingConfig
	Environment string
}

type ServerConfig struct {
	Host    string
	Port    int
	BaseURL string
}

// DatabaseConfig configures the durable backend. URL may be empty: the server
// then runs on the in-memory store, which is valid (if forgetful) operation.
type DatabaseConfig struct {
	URL            string
	MaxConnections int
	ProbeTimeout   time.Duration
}

type GeocoderConfig struct {
	BaseURL       string
	Email         string
	RatePerSecond float64
}

type CORSConfig struct {
	AllowAllOrigins bool
	AllowedOrigins  []string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (Config, error) {
	environment := getEnv("ENVIRONMENT", "development")

	cfg := Config{
		Server: ServerConfig{
			Host:    getEnv("SERVER_HOST", "0.0.0.0"),
			Port:    getEnvInt("SERVER_PORT", 8080),
			BaseURL: getEnv("SERVER_BASE_URL", "http://localhost:8080"),
		},
		Database: DatabaseConfig{
			URL:            getEnv("DATABASE_URL", ""),
			MaxConnections: getEnvInt("DATABASE_MAX_CONNECTIONS", 25),
			ProbeTimeout:   time.Duration(getEnvInt("DATABASE_PROBE_TIMEOUT_SECONDS", 5)) * time.Second,
		},
		Geocoder: GeocoderConfig{
			BaseURL:       getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			Email:         getEnv("GEOCODER_EMAIL", ""),
			RatePerSecond: getEnvFloat("GEOCODER_RATE_PER_SECOND", 1.0),
		},
		CORS: CORSConfig{
			AllowAllOrigins: environment == "development" || environment == "test",
			AllowedOrigins:  splitList(getEnv("CORS_ALLOWED_ORIGINS", "")),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Environment: environment,
	}

	return cfg, nil
}

// NewLogger builds the process logger from LoggingConfig. Unknown levels fall
// back to info rather than failing startup; "console" switches to the
// human-readable writer for local development, everything else emits JSON.
// The result is also installed as zerolog's global logger so ad-hoc callers
// and the process logger agree.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	var sink io.Writer = os.Stdout
	if strings.EqualFold(cfg.Format, "console") {
		sink = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	logger := zerolog.New(sink).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
