// Package config loads server and CLI settings. Sources, lowest
// precedence first: built-in defaults, the TOML file named by
// BLOCKSEATS_CONFIG, then environment variables (a .env file in the
// working directory is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/dharmasatrya/blockseats/internal/ratelimit"
)

const FileEnv = "BLOCKSEATS_CONFIG"

type Config struct {
	Port      string          `toml:"port"`
	LogLevel  string          `toml:"log_level"`
	Backend   BackendConfig   `toml:"backend"`
	Cache     CacheConfig     `toml:"cache"`
	Search    SearchConfig    `toml:"search"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type BackendConfig struct {
	URL        string        `toml:"url"`
	Token      string        `toml:"token"`
	Timeout    time.Duration `toml:"timeout"`
	MaxRetries int           `toml:"max_retries"`
}

type CacheConfig struct {
	Enabled       bool          `toml:"enabled"`
	RedisHost     string        `toml:"redis_host"`
	RedisPort     string        `toml:"redis_port"`
	RedisPassword string        `toml:"redis_password"`
	TTL           time.Duration `toml:"ttl"`
}

type SearchConfig struct {
	Debounce time.Duration `toml:"debounce"`
	PageSize int           `toml:"page_size"`
}

type RateLimitConfig struct {
	Default   ratelimit.Limit            `toml:"default"`
	Endpoints map[string]ratelimit.Limit `toml:"endpoints"`
}

func Default() *Config {
	return &Config{
		Port:     "8080",
		LogLevel: "info",
		Backend: BackendConfig{
			URL:        "http://localhost:9090/api",
			Timeout:    10 * time.Second,
			MaxRetries: 2,
		},
		Cache: CacheConfig{
			Enabled:   true,
			RedisHost: "localhost",
			RedisPort: "6379",
			TTL:       5 * time.Minute,
		},
		Search: SearchConfig{
			Debounce: 700 * time.Millisecond,
			PageSize: 20,
		},
		RateLimit: RateLimitConfig{
			Default: ratelimit.DefaultLimit(),
			Endpoints: map[string]ratelimit.Limit{
				"tickets": {RPS: 20, Burst: 30},
			},
		},
	}
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	c.Backend.URL = getEnv("BACKEND_URL", c.Backend.URL)
	c.Backend.Token = getEnv("BACKEND_TOKEN", c.Backend.Token)
	c.Backend.Timeout = getEnvDuration("BACKEND_TIMEOUT", c.Backend.Timeout)
	c.Backend.MaxRetries = getEnvInt("BACKEND_MAX_RETRIES", c.Backend.MaxRetries)

	c.Cache.Enabled = getEnvBool("CACHE_ENABLED", c.Cache.Enabled)
	c.Cache.RedisHost = getEnv("REDIS_HOST", c.Cache.RedisHost)
	c.Cache.RedisPort = getEnv("REDIS_PORT", c.Cache.RedisPort)
	c.Cache.RedisPassword = getEnv("REDIS_PASSWORD", c.Cache.RedisPassword)
	c.Cache.TTL = getEnvDuration("REDIS_TTL", c.Cache.TTL)

	c.Search.Debounce = getEnvDuration("SEARCH_DEBOUNCE", c.Search.Debounce)
	c.Search.PageSize = getEnvInt("PAGE_SIZE", c.Search.PageSize)

	c.RateLimit.Default.RPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimit.Default.RPS)
	c.RateLimit.Default.Burst = getEnvInt("RATE_LIMIT_BURST", c.RateLimit.Default.Burst)
}

func (c *Config) Validate() error {
	var problems []string
	if c.Backend.URL == "" {
		problems = append(problems, "backend url is empty")
	}
	if c.Search.PageSize <= 0 {
		problems = append(problems, "page size must be positive")
	}
	if c.Search.Debounce <= 0 {
		problems = append(problems, "search debounce must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return duration
}

func getEnvInt(key string, defaultValue int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return i
}

func getEnvFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return f
}
