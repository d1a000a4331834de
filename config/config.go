// ABOUTME: Configuration loader for the gallery BFF service
// ABOUTME: Loads settings from environment variables with defaults

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	AuthMode           string   // disabled, optional, required (default: optional)
	CORSAllowedOrigins []string // allowed CORS origins (empty = block all cross-origin)
	CookieSecure       bool     // Set Secure flag on session cookies (default: true)

	// Sessions and caching
	SessionTTL  time.Duration // server-side session lifetime (default: 1h)
	CacheTTL    time.Duration // default TTL for the general cache (default: 5m)
	CategoryTTL time.Duration // TTL for the cached category list (default: 5m)
	JWTSecret   string        // signs the identity claims cookie

	// Rate Limiting
	RateLimitEnabled bool // Enable rate limiting (default: true)
	RateLimitAuth    int  // Requests per minute for auth endpoints (default: 5)
	RateLimitUpload  int  // Requests per minute for uploads (default: 10)
	RateLimitWrite   int  // Requests per minute for write endpoints (default: 30)
	RateLimitDefault int  // Requests per minute for all other endpoints (default: 100)

	// Upstream gallery API
	UpstreamAPIURL            string
	UpstreamTimeout           time.Duration // per-request timeout for JSON calls (default: 15s)
	UploadTimeout             time.Duration // timeout for multipart uploads (default: 2m)
	MaxUploadMB               int           // image size limit in MiB (default: 10)
	UpstreamProxyURL          string        // optional ssh+socks5:// egress proxy
	UpstreamSkipSSLValidation bool          // explicit opt-in for insecure connections

	// ML prompt analysis service (optional)
	MLAPIURL  string
	MLTimeout time.Duration // default: 10s

	// Admin log browser
	LogDir string // directory the log endpoints are confined to (default: logs)
}

// MLConfigured returns true if the prompt analysis service is set up
func (c *Config) MLConfigured() bool {
	return c.MLAPIURL != ""
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func Load() (*Config, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		AuthMode:           getEnv("AUTH_MODE", "optional"),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),
		CookieSecure:       getEnvBool("COOKIE_SECURE", true),

		SessionTTL:  getEnvDuration("SESSION_TTL", time.Hour),
		CacheTTL:    getEnvDuration("CACHE_TTL", 5*time.Minute),
		CategoryTTL: getEnvDuration("CATEGORY_CACHE_TTL", 5*time.Minute),
		JWTSecret:   os.Getenv("JWT_SECRET"),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 5),
		RateLimitUpload:  getEnvInt("RATE_LIMIT_UPLOAD", 10),
		RateLimitWrite:   getEnvInt("RATE_LIMIT_WRITE", 30),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 100),

		UpstreamAPIURL:            ensureScheme(os.Getenv("UPSTREAM_API_URL")),
		UpstreamTimeout:           getEnvDuration("UPSTREAM_TIMEOUT", 15*time.Second),
		UploadTimeout:             getEnvDuration("UPLOAD_TIMEOUT", 2*time.Minute),
		MaxUploadMB:               getEnvInt("MAX_UPLOAD_MB", 10),
		UpstreamProxyURL:          os.Getenv("UPSTREAM_PROXY_URL"),
		UpstreamSkipSSLValidation: getEnvBool("UPSTREAM_SKIP_SSL_VALIDATION", false),

		MLAPIURL:  ensureScheme(os.Getenv("ML_API_URL")),
		MLTimeout: getEnvDuration("ML_TIMEOUT", 10*time.Second),

		LogDir: getEnv("LOG_DIR", "logs"),
	}

	// Validate required fields
	if cfg.UpstreamAPIURL == "" {
		return nil, fmt.Errorf("UPSTREAM_API_URL is required")
	}

	switch cfg.AuthMode {
	case "disabled", "optional", "required":
	default:
		return nil, fmt.Errorf("AUTH_MODE must be disabled, optional, or required, got %q", cfg.AuthMode)
	}

	if cfg.MaxUploadMB < 1 || cfg.MaxUploadMB > 100 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be between 1 and 100, got %d", cfg.MaxUploadMB)
	}

	// Validate rate limit values
	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", cfg.RateLimitAuth},
		{"RATE_LIMIT_UPLOAD", cfg.RateLimitUpload},
		{"RATE_LIMIT_WRITE", cfg.RateLimitWrite},
		{"RATE_LIMIT_DEFAULT", cfg.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return nil, fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	return cfg, nil
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

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings ("90s", "2m") and, for
// compatibility, bare integers meaning seconds.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// ensureScheme adds http:// prefix if the URL has no scheme
func ensureScheme(url string) string {
	if url == "" {
		return url
	}
	if !strings.Contains(url, "://") {
		return "http://" + url
	}
	return url
}
