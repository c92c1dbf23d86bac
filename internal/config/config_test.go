package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory so no stray .env is read.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	for _, key := range []string{
		FileEnv, "PORT", "LOG_LEVEL", "BACKEND_URL", "BACKEND_TOKEN", "BACKEND_TIMEOUT",
		"BACKEND_MAX_RETRIES", "CACHE_ENABLED", "REDIS_HOST", "REDIS_PORT", "REDIS_PASSWORD",
		"REDIS_TTL", "SEARCH_DEBOUNCE", "PAGE_SIZE", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Search.Debounce != 700*time.Millisecond || cfg.Search.PageSize != 20 {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "blockseats.toml")
	data := `
port = "9000"

[backend]
url = "https://backend.example/api"
timeout = "3s"

[cache]
enabled = false
ttl = "1m"

[rate_limit.endpoints."admin/users"]
rps = 2.5
burst = 4
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	t.Setenv("PORT", "9100")
	t.Setenv("PAGE_SIZE", "50")
	t.Setenv("SEARCH_DEBOUNCE", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9100" {
		t.Errorf("env should override file: port = %s", cfg.Port)
	}
	if cfg.Backend.URL != "https://backend.example/api" || cfg.Backend.Timeout != 3*time.Second {
		t.Errorf("backend = %+v", cfg.Backend)
	}
	if cfg.Cache.Enabled || cfg.Cache.TTL != time.Minute || cfg.Cache.RedisHost != "localhost" {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Search.PageSize != 50 || cfg.Search.Debounce != 250*time.Millisecond {
		t.Errorf("search = %+v", cfg.Search)
	}
	if l := cfg.RateLimit.Endpoints["admin/users"]; l.RPS != 2.5 || l.Burst != 4 {
		t.Errorf("endpoint limit = %+v", l)
	}
	if _, ok := cfg.RateLimit.Endpoints["tickets"]; !ok {
		t.Error("file overlay dropped the default tickets limit")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("BACKEND_TOKEN=from-dotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables that are already set, and
	// t.Setenv set BACKEND_TOKEN to empty; unset it so the file applies.
	os.Unsetenv("BACKEND_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend.Token != "from-dotenv" {
		t.Fatalf("token = %q", cfg.Backend.Token)
	}
}

func TestLoadBadFile(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(path, []byte("port = "), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(FileEnv, path)
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "broken.toml") {
		t.Fatalf("err = %v", err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Backend.URL = ""
	cfg.Search.PageSize = 0
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "backend url") || !strings.Contains(err.Error(), "page size") {
		t.Fatalf("err = %v", err)
	}
}

func TestSlogLevel(t *testing.T) {
	cfg := Default()
	cfg.LogLevel = "debug"
	if cfg.SlogLevel() != slog.LevelDebug {
		t.Fatal("debug not parsed")
	}
	cfg.LogLevel = "loud"
	if cfg.SlogLevel() != slog.LevelInfo {
		t.Fatal("unknown level should fall back to info")
	}
}
