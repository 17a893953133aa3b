// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// configKeys lists every variable Load reads.
var configKeys = []string{
	"APP_HOST", "APP_PORT", "APP_ENV",
	"POSTGRES_HOST", "POSTGRES_PORT", "POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "POSTGRES_SSLMODE",
	"VALKEY_HOST", "VALKEY_PORT", "VALKEY_PASSWORD",
	"CACHE_TTL", "CACHE_SIZE", "SESSION_TTL", "SECURE_COOKIES",
	"LOGIN_RATE_LIMIT", "LOGIN_RATE_WINDOW", "SHUTDOWN_TIMEOUT",
}

// clearEnv blanks every config variable for the duration of the test.
// Empty values fall through to defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	strs := map[string][2]string{
		"Host":       {cfg.Host, "0.0.0.0"},
		"Port":       {cfg.Port, "8080"},
		"Env":        {cfg.Env, "development"},
		"DBUser":     {cfg.DBUser, "quillpress"},
		"DBName":     {cfg.DBName, "quillpress"},
		"DBSSLMode":  {cfg.DBSSLMode, "disable"},
		"ValkeyPort": {cfg.ValkeyPort, "6379"},
	}
	for name, v := range strs {
		if v[0] != v[1] {
			t.Errorf("%s: got %q, want %q", name, v[0], v[1])
		}
	}

	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL: got %v", cfg.CacheTTL)
	}
	if cfg.SessionTTL != 24*time.Hour {
		t.Errorf("SessionTTL: got %v", cfg.SessionTTL)
	}
	if cfg.LoginRateLimit != 10 || cfg.LoginRateWindow != time.Minute {
		t.Errorf("login rate: got %d per %v", cfg.LoginRateLimit, cfg.LoginRateWindow)
	}
	if cfg.SecureCookies {
		t.Error("SecureCookies should default to false in development")
	}
	if !cfg.IsDev() || cfg.IsProd() {
		t.Error("expected development mode")
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "testing")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("CACHE_TTL", "90s")
	t.Setenv("CACHE_SIZE", "64")
	t.Setenv("LOGIN_RATE_LIMIT", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:9090" {
		t.Errorf("Addr: got %q", cfg.Addr())
	}
	if cfg.CacheTTL != 90*time.Second || cfg.CacheSize != 64 {
		t.Errorf("cache: got %v / %d", cfg.CacheTTL, cfg.CacheSize)
	}
	if cfg.LoginRateLimit != 3 {
		t.Errorf("LoginRateLimit: got %d", cfg.LoginRateLimit)
	}
	if !cfg.SecureCookies {
		t.Error("SecureCookies should default to true outside development")
	}
}

func TestLoad_MalformedValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("CACHE_SIZE", "lots")
	t.Setenv("SESSION_TTL", "-1h")
	t.Setenv("SECURE_COOKIES", "maybe")

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error")
	}
	for _, key := range []string{"CACHE_SIZE", "SESSION_TTL", "SECURE_COOKIES"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not name %s", err, key)
		}
	}
}

func TestLoad_Production(t *testing.T) {
	t.Run("default password rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "POSTGRES_PASSWORD") {
			t.Fatalf("got %v, want POSTGRES_PASSWORD error", err)
		}
	})

	t.Run("insecure cookies rejected", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("POSTGRES_PASSWORD", "s3cret")
		t.Setenv("SECURE_COOKIES", "false")

		_, err := Load()
		if err == nil || !strings.Contains(err.Error(), "SECURE_COOKIES") {
			t.Fatalf("got %v, want SECURE_COOKIES error", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("APP_ENV", "production")
		t.Setenv("POSTGRES_PASSWORD", "s3cret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if !cfg.IsProd() || !cfg.SecureCookies {
			t.Errorf("got prod=%v secure=%v", cfg.IsProd(), cfg.SecureCookies)
		}
	})
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5433", DBName: "blog", DBSSLMode: "require",
	}
	want := "postgres://u:p@db:5433/blog?sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()

	if err := loadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("missing file: %v", err)
	}

	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("QP_DOTENV_A=from-file\nQP_DOTENV_B=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QP_DOTENV_A", "")
	os.Unsetenv("QP_DOTENV_A")
	t.Setenv("QP_DOTENV_B", "from-env")
	t.Cleanup(func() { os.Unsetenv("QP_DOTENV_A") })

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("loadDotEnv: %v", err)
	}
	if got := os.Getenv("QP_DOTENV_A"); got != "from-file" {
		t.Errorf("QP_DOTENV_A: got %q", got)
	}
	if got := os.Getenv("QP_DOTENV_B"); got != "from-env" {
		t.Errorf("existing variables must win: got %q", got)
	}
}
