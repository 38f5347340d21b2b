package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scan      ScanConfig
	Probe     ProbeConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// BrowserConfig controls the shared Rod browser instance.
type BrowserConfig struct {
	// Env selects the launch parameter set: "production" (headless,
	// sandbox disabled for containers) or "development".
	Env string // default: "production"

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// DefaultProxy is the proxy URL used for all browser traffic.
	DefaultProxy string
}

// Production reports whether the production launch parameters apply.
func (b BrowserConfig) Production() bool {
	return b.Env != "development"
}

// ScanConfig controls page rendering and extraction.
type ScanConfig struct {
	// NavTimeout is the maximum time for a single page load.
	NavTimeout time.Duration // default: 30s

	// SettleDelay is the pause after load before scrolling, giving
	// post-load scripts time to run.
	SettleDelay time.Duration // default: 2s

	// ScrollStep is the per-iteration scroll distance in CSS pixels.
	ScrollStep int // default: 100

	// ScrollInterval is the pause between scroll iterations.
	ScrollInterval time.Duration // default: 100ms

	// MaxTimeout is the wall-clock ceiling on an entire scan request.
	MaxTimeout time.Duration // default: 120s
}

// ProbeConfig controls image size probing.
type ProbeConfig struct {
	// HeadTimeout is the deadline for the HEAD attempt.
	HeadTimeout time.Duration // default: 10s

	// GetTimeout is the deadline for the GET fallback.
	GetTimeout time.Duration // default: 15s

	// MaxRedirects is the redirect-follow limit per request.
	MaxRedirects int // default: 5
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// RateLimitConfig controls per-key rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per API key.
	Burst int // default: 10
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("IMGSCOUT_HOST", "0.0.0.0"),
			Port: envIntOr("IMGSCOUT_PORT", 8080),
			Mode: envOr("IMGSCOUT_MODE", "release"),
		},
		Browser: BrowserConfig{
			Env:          envOr("IMGSCOUT_ENV", "production"),
			BrowserBin:   os.Getenv("IMGSCOUT_BROWSER_BIN"),
			DefaultProxy: os.Getenv("IMGSCOUT_PROXY"),
		},
		Scan: ScanConfig{
			NavTimeout:     envDurationOr("IMGSCOUT_NAV_TIMEOUT", 30*time.Second),
			SettleDelay:    envDurationOr("IMGSCOUT_SETTLE_DELAY", 2*time.Second),
			ScrollStep:     envIntOr("IMGSCOUT_SCROLL_STEP", 100),
			ScrollInterval: envDurationOr("IMGSCOUT_SCROLL_INTERVAL", 100*time.Millisecond),
			MaxTimeout:     envDurationOr("IMGSCOUT_MAX_TIMEOUT", 120*time.Second),
		},
		Probe: ProbeConfig{
			HeadTimeout:  envDurationOr("IMGSCOUT_PROBE_HEAD_TIMEOUT", 10*time.Second),
			GetTimeout:   envDurationOr("IMGSCOUT_PROBE_GET_TIMEOUT", 15*time.Second),
			MaxRedirects: envIntOr("IMGSCOUT_PROBE_MAX_REDIRECTS", 5),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("IMGSCOUT_AUTH_ENABLED", false),
			APIKeys: envSliceOr("IMGSCOUT_API_KEYS", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("IMGSCOUT_RATE_RPS", 5.0),
			Burst:             envIntOr("IMGSCOUT_RATE_BURST", 10),
		},
		Log: LogConfig{
			Level:  envOr("IMGSCOUT_LOG_LEVEL", "info"),
			Format: envOr("IMGSCOUT_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
