package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds the application configuration. Values are read from
// environment variables with the APP_ prefix; every field has a working
// default so the server can boot without any configuration.
type Settings struct {
	Port int

	// DatabaseURL is the optional Postgres DSN tried at startup. When the
	// connection fails and UsePlayground is set, the SQLite playground file
	// is activated instead.
	DatabaseURL      string
	UsePlayground    bool
	PlaygroundDBPath string

	AllowedOrigins []string

	UploadDir       string
	MaxUploadSizeMB int64

	SessionExpiry   time.Duration
	CleanupInterval time.Duration

	QueryTimeout    time.Duration
	DefaultPageSize uint64
	MaxPageSize     uint64

	// CaseInsensitiveMatch switches contains/startswith/endswith filters to
	// case-insensitive matching. Default is case-sensitive.
	CaseInsensitiveMatch bool

	Debug bool
}

func Load() *Settings {
	return &Settings{
		Port:                 envInt("PORT", 8080),
		DatabaseURL:          envString("APP_DATABASE_URL", ""),
		UsePlayground:        envBool("APP_USE_PLAYGROUND_DB", true),
		PlaygroundDBPath:     envString("APP_PLAYGROUND_DB_PATH", "playground.db"),
		AllowedOrigins:       envList("APP_ALLOWED_ORIGINS", []string{"http://localhost:5173", "http://localhost:3000"}),
		UploadDir:            envString("APP_UPLOAD_DIR", "uploads"),
		MaxUploadSizeMB:      int64(envInt("APP_MAX_UPLOAD_SIZE_MB", 50)),
		SessionExpiry:        envDuration("APP_SESSION_EXPIRY", 7*24*time.Hour),
		CleanupInterval:      envDuration("APP_CLEANUP_INTERVAL", 6*time.Hour),
		QueryTimeout:         envDuration("APP_QUERY_TIMEOUT", 30*time.Second),
		DefaultPageSize:      uint64(envInt("APP_DEFAULT_PAGE_SIZE", 50)),
		MaxPageSize:          uint64(envInt("APP_MAX_PAGE_SIZE", 1000)),
		CaseInsensitiveMatch: envBool("APP_CASE_INSENSITIVE_MATCH", false),
		Debug:                envBool("APP_DEBUG", false),
	}
}

// MaxUploadSizeBytes returns the upload cap in bytes.
func (s *Settings) MaxUploadSizeBytes() int64 {
	return s.MaxUploadSizeMB * 1024 * 1024
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
	if err != nil {
		return fallback
	}
	return n
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
