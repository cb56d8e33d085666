package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/morikuni/failure/v2"
)

func clearTigoEnv(t *testing.T) {
	t.Helper()
	for _, name := range envNames {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func TestLoad(t *testing.T) {
	clearTigoEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TIGO_USERNAME", "user@example.com")
	t.Setenv("TIGO_PASSWORD", "secret")
	t.Setenv("TIGO_SYSTEM_ID", "1234")
	t.Setenv("TIGO_HTTP_TIMEOUT", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Username != "user@example.com" {
		t.Errorf("username = %q", cfg.Username)
	}
	if cfg.SystemID != 1234 {
		t.Errorf("system id = %d, want 1234", cfg.SystemID)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s", cfg.HTTPTimeout)
	}
	// Defaults
	if cfg.CacheTTL != time.Hour {
		t.Errorf("cache ttl = %v, want 1h", cfg.CacheTTL)
	}
	if cfg.APIURL != "" {
		t.Errorf("api url = %q, want empty (client applies its default)", cfg.APIURL)
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	clearTigoEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TIGO_USERNAME", "user@example.com")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing password")
	}
	msg := failure.MessageOf(err).String()
	if !strings.Contains(msg, "TIGO_PASSWORD") {
		t.Errorf("message %q does not name the missing variable", msg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearTigoEnv(t)
	dir := t.TempDir()
	env := "TIGO_USERNAME=env-user@example.com\nTIGO_PASSWORD=env-secret\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Username != "env-user@example.com" {
		t.Errorf("username = %q, want value from .env", cfg.Username)
	}
}

func TestLoadEnvironmentWinsOverDotEnv(t *testing.T) {
	clearTigoEnv(t)
	dir := t.TempDir()
	env := "TIGO_USERNAME=file-user@example.com\nTIGO_PASSWORD=file-secret\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("TIGO_USERNAME", "real-user@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Username != "real-user@example.com" {
		t.Errorf("username = %q, environment must win", cfg.Username)
	}
	if cfg.Password != "file-secret" {
		t.Errorf("password = %q, want value from .env", cfg.Password)
	}
}

func TestLoadBadSystemID(t *testing.T) {
	clearTigoEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TIGO_USERNAME", "user@example.com")
	t.Setenv("TIGO_PASSWORD", "secret")
	t.Setenv("TIGO_SYSTEM_ID", "primary")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-numeric system id")
	}
}

func TestLoadBadDuration(t *testing.T) {
	clearTigoEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("TIGO_USERNAME", "user@example.com")
	t.Setenv("TIGO_PASSWORD", "secret")
	t.Setenv("TIGO_HTTP_TIMEOUT", "30")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for bare number without unit")
	}
}

func TestClientConfig(t *testing.T) {
	cfg := &Config{
		Username:    "user@example.com",
		Password:    "secret",
		APIURL:      "https://example.com/api/v3",
		HTTPTimeout: 20 * time.Second,
	}

	cc := cfg.ClientConfig()
	if cc.Username != cfg.Username || cc.Password != cfg.Password {
		t.Error("credentials not carried over")
	}
	if cc.BaseURL != cfg.APIURL {
		t.Errorf("base url = %q", cc.BaseURL)
	}
	if cc.Timeout != cfg.HTTPTimeout {
		t.Errorf("timeout = %v", cc.Timeout)
	}
}
