package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

const (
	SeedFixtures = "fixtures"
	SeedPostgres = "postgres"
)

type Config struct {
	AppEnv   string
	LogLevel string

	HTTPPort        int
	GraphQLEndpoint string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration

	SeedSource  string
	DatabaseURL string

	// Empty disables event publishing.
	RabbitMQURL string
}

func Load() Config {
	return Config{
		AppEnv:          getEnv("APP_ENV", "dev"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		HTTPPort:        getEnvInt("HTTP_PORT", 3000),
		GraphQLEndpoint: getEnv("GRAPHQL_ENDPOINT", "/api/graphql"),
		AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		SeedSource:      strings.ToLower(getEnv("SEED_SOURCE", SeedFixtures)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RabbitMQURL:     os.Getenv("RABBITMQ_URL"),
	}
}

// Validate reports settings that cannot work together.
func (c Config) Validate() error {
	switch c.SeedSource {
	case SeedFixtures:
	case SeedPostgres:
		if c.DatabaseURL == "" {
			return errors.Errorf("SEED_SOURCE=%s requires DATABASE_URL", SeedPostgres)
		}
	default:
		return errors.Errorf("unknown SEED_SOURCE %q", c.SeedSource)
	}
	if !strings.HasPrefix(c.GraphQLEndpoint, "/") {
		return errors.Errorf("GRAPHQL_ENDPOINT must start with /, got %q", c.GraphQLEndpoint)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)

	if v == "" {
		return def
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}

	return n
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
