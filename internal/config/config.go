package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultBaseURL = "https://api.raindrop.io/rest/v1"

type Config struct {
	Token          string        // Raindrop.io bearer token (env only, required)
	BaseURL        string        // ex: https://api.raindrop.io/rest/v1
	RequestTimeout time.Duration // per-attempt HTTP timeout (default: 30s)
	MaxRetries     int           // extra attempts after the first one (default: 3)
	RetryBaseDelay time.Duration // first backoff delay, doubles per retry (default: 1s)

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	ShutdownTimeout time.Duration // drain window after a termination signal (default: 5s)
	HTTPAddr        string        // ex: ":8080"; empty => stdio transport
}

// fileConfig is the optional YAML file schema. The token deliberately has no
// file counterpart: credentials come from the environment only.
type fileConfig struct {
	BaseURL         string `yaml:"base_url"`
	RequestTimeout  string `yaml:"request_timeout"`
	MaxRetries      *int   `yaml:"max_retries"`
	RetryBaseDelay  string `yaml:"retry_base_delay"`
	LogLevel        string `yaml:"log_level"`
	PrettyLog       *bool  `yaml:"pretty_log"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	HTTPAddr        string `yaml:"http_addr"`
}

// Load builds the configuration from defaults, then the optional YAML file
// named by RAINDROP_MCP_CONFIG, then environment variables. Later layers win.
// A missing RAINDROP_TOKEN is fatal: the server must not start without
// credentials.
func Load() *Config {
	cfg := &Config{
		BaseURL:         DefaultBaseURL,
		RequestTimeout:  30 * time.Second,
		MaxRetries:      3,
		RetryBaseDelay:  time.Second,
		LogLevel:        "info",
		PrettyLog:       false,
		ShutdownTimeout: 5 * time.Second,
	}

	if path := os.Getenv("RAINDROP_MCP_CONFIG"); path != "" {
		applyFile(cfg, path)
	}

	cfg.Token = requireEnv("RAINDROP_TOKEN")
	cfg.BaseURL = getenv("RAINDROP_BASE_URL", cfg.BaseURL)
	cfg.RequestTimeout = mustDuration("RAINDROP_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxRetries = getenvInt("RAINDROP_MAX_RETRIES", cfg.MaxRetries)
	cfg.RetryBaseDelay = mustDuration("RAINDROP_RETRY_DELAY", cfg.RetryBaseDelay)
	cfg.LogLevel = getenv("RAINDROP_MCP_LOG_LEVEL", cfg.LogLevel)
	cfg.PrettyLog = mustBool("RAINDROP_MCP_PRETTY_LOG", cfg.PrettyLog)
	cfg.ShutdownTimeout = mustDuration("RAINDROP_MCP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.HTTPAddr = getenv("RAINDROP_MCP_HTTP_ADDR", cfg.HTTPAddr)

	if cfg.MaxRetries < 0 {
		panic(fmt.Sprintf("❌ FATAL: RAINDROP_MAX_RETRIES must be >= 0, got %d", cfg.MaxRetries))
	}

	return cfg
}

func applyFile(cfg *Config, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: cannot read config file %s: %v", path, err))
	}
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid config file %s: %v", path, err))
	}

	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.RequestTimeout != "" {
		cfg.RequestTimeout = parseFileDuration(path, "request_timeout", f.RequestTimeout)
	}
	if f.MaxRetries != nil {
		cfg.MaxRetries = *f.MaxRetries
	}
	if f.RetryBaseDelay != "" {
		cfg.RetryBaseDelay = parseFileDuration(path, "retry_base_delay", f.RetryBaseDelay)
	}
	if f.LogLevel != "" {
		cfg.LogLevel = f.LogLevel
	}
	if f.PrettyLog != nil {
		cfg.PrettyLog = *f.PrettyLog
	}
	if f.ShutdownTimeout != "" {
		cfg.ShutdownTimeout = parseFileDuration(path, "shutdown_timeout", f.ShutdownTimeout)
	}
	if f.HTTPAddr != "" {
		cfg.HTTPAddr = f.HTTPAddr
	}
}

func parseFileDuration(path, key, value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: invalid %s in %s: %q", key, path, value))
	}
	return d
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
