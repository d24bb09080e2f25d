package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	s := Load()

	if s.Port != 8080 {
		t.Errorf("default port = %d", s.Port)
	}
	if !s.UsePlayground {
		t.Error("playground should default to enabled")
	}
	if s.DefaultPageSize != 50 || s.MaxPageSize != 1000 {
		t.Errorf("unexpected page size defaults: %d / %d", s.DefaultPageSize, s.MaxPageSize)
	}
	if s.SessionExpiry != 7*24*time.Hour {
		t.Errorf("unexpected session expiry: %s", s.SessionExpiry)
	}
	if s.CaseInsensitiveMatch {
		t.Error("matching should default to case-sensitive")
	}
	if len(s.AllowedOrigins) == 0 {
		t.Error("expected default allowed origins")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("APP_DATABASE_URL", "postgres://localhost/test")
	t.Setenv("APP_MAX_UPLOAD_SIZE_MB", "5")
	t.Setenv("APP_QUERY_TIMEOUT", "10s")
	t.Setenv("APP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("APP_CASE_INSENSITIVE_MATCH", "true")

	s := Load()

	if s.Port != 9000 {
		t.Errorf("port = %d", s.Port)
	}
	if s.DatabaseURL != "postgres://localhost/test" {
		t.Errorf("database url = %q", s.DatabaseURL)
	}
	if s.MaxUploadSizeMB != 5 || s.MaxUploadSizeBytes() != 5*1024*1024 {
		t.Errorf("upload size = %dMB / %d bytes", s.MaxUploadSizeMB, s.MaxUploadSizeBytes())
	}
	if s.QueryTimeout != 10*time.Second {
		t.Errorf("query timeout = %s", s.QueryTimeout)
	}
	if len(s.AllowedOrigins) != 2 || s.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("allowed origins = %v", s.AllowedOrigins)
	}
	if !s.CaseInsensitiveMatch {
		t.Error("case-insensitive flag not applied")
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("APP_QUERY_TIMEOUT", "soon")
	t.Setenv("APP_USE_PLAYGROUND_DB", "maybe")

	s := Load()

	if s.Port != 8080 {
		t.Errorf("malformed port should fall back to default, got %d", s.Port)
	}
	if s.QueryTimeout != 30*time.Second {
		t.Errorf("malformed duration should fall back to default, got %s", s.QueryTimeout)
	}
	if !s.UsePlayground {
		t.Error("malformed bool should fall back to default")
	}
}
