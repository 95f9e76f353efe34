package config

import (
	"os"
	"strconv"
	"time"
)

// Client captures configuration for the headless client process.
type Client struct {
	BackendURL   string
	ControlAddr  string
	ControlToken string
	HTTPTimeout  time.Duration
	HTTPRetries  int

	PollInterval   time.Duration
	ExpiryInterval time.Duration
	NotifyTTL      time.Duration
	GrantMinutes   int

	Redis RedisConfig
	Log   LogConfig

	// Credentials used for the unattended login performed at startup.
	Email    string
	Password string
}

// RedisConfig configures the optional lock store backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

const (
	DefaultBackendURL     = "http://localhost:8000"
	DefaultControlAddr    = "127.0.0.1:8090"
	DefaultPollInterval   = 30 * time.Second
	DefaultExpiryInterval = 60 * time.Second
	DefaultNotifyTTL      = 3 * time.Second
	DefaultGrantMinutes   = 60
)

// Default returns the configuration used when no environment overrides are set.
func Default() Client {
	return Client{
		BackendURL:     DefaultBackendURL,
		ControlAddr:    DefaultControlAddr,
		HTTPTimeout:    10 * time.Second,
		HTTPRetries:    2,
		PollInterval:   DefaultPollInterval,
		ExpiryInterval: DefaultExpiryInterval,
		NotifyTTL:      DefaultNotifyTTL,
		GrantMinutes:   DefaultGrantMinutes,
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 1,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// FromEnv builds a Client config from environment variables so main stays lean.
func FromEnv() Client {
	cfg := Default()
	cfg.BackendURL = envString("DIGIPIN_BACKEND_URL", cfg.BackendURL)
	cfg.ControlAddr = envString("DIGIPIN_CONTROL_ADDR", cfg.ControlAddr)
	cfg.ControlToken = os.Getenv("DIGIPIN_CONTROL_TOKEN")
	cfg.HTTPTimeout = envDuration("DIGIPIN_HTTP_TIMEOUT", cfg.HTTPTimeout)
	cfg.HTTPRetries = envInt("DIGIPIN_HTTP_RETRIES", cfg.HTTPRetries)
	cfg.PollInterval = envDuration("DIGIPIN_POLL_INTERVAL", cfg.PollInterval)
	cfg.ExpiryInterval = envDuration("DIGIPIN_EXPIRY_INTERVAL", cfg.ExpiryInterval)
	cfg.NotifyTTL = envDuration("DIGIPIN_NOTIFY_TTL", cfg.NotifyTTL)
	cfg.GrantMinutes = envInt("DIGIPIN_GRANT_MINUTES", cfg.GrantMinutes)
	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.Log.Level = envString("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = envString("LOG_FORMAT", cfg.Log.Format)
	cfg.Email = os.Getenv("DIGIPIN_EMAIL")
	cfg.Password = os.Getenv("DIGIPIN_PASSWORD")
	return cfg
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// envDuration accepts Go duration strings ("45s") or bare seconds ("45").
func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
