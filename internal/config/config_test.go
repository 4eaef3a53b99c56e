package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every key Load reads so the host environment does not leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"ACTIVITIES_ADDR", "PORT", "ACTIVITIES_DB_PATH", "ACTIVITIES_DB_DRIVER",
		"ACTIVITIES_SEED_FILE", "ACTIVITIES_STATIC_DIR", "ACTIVITIES_RATE_LIMIT",
		"ACTIVITIES_CORS_ORIGINS", "ACTIVITIES_CSRF_KEY", "ACTIVITIES_RESEND_KEY",
		"ACTIVITIES_RESEND_FROM", "ACTIVITIES_ENV", "ACTIVITIES_LOG_LEVEL",
		"ACTIVITIES_LOG_FORMAT", "ACTIVITIES_SLOW_REQUEST_MS",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q, want :3000", cfg.Addr)
	}
	if cfg.DBPath != "database.sqlite" || cfg.DBDriver != "sqlite" {
		t.Errorf("db = %q/%q", cfg.DBPath, cfg.DBDriver)
	}
	if cfg.RateLimit != 10 {
		t.Errorf("RateLimit = %v, want 10", cfg.RateLimit)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
	if cfg.IsProduction() {
		t.Error("default env should not be production")
	}
}

func TestLoad_PortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":8081" {
		t.Errorf("Addr = %q, want :8081", cfg.Addr)
	}

	t.Setenv("ACTIVITIES_ADDR", "127.0.0.1:9000")
	cfg, err = Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %q, want explicit address to win", cfg.Addr)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "ACTIVITIES_DB_DRIVER=memory\nACTIVITIES_CORS_ORIGINS=http://a.test, http://b.test\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.Unsetenv("ACTIVITIES_DB_DRIVER")
		os.Unsetenv("ACTIVITIES_CORS_ORIGINS")
	})
	// godotenv does not override variables that are already set, even to "".
	os.Unsetenv("ACTIVITIES_DB_DRIVER")
	os.Unsetenv("ACTIVITIES_CORS_ORIGINS")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DBDriver != "memory" {
		t.Errorf("DBDriver = %q, want memory", cfg.DBDriver)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.test" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_MissingDotEnvIsFine(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{"ACTIVITIES_RATE_LIMIT", "fast"},
		{"ACTIVITIES_RATE_LIMIT", "-1"},
		{"ACTIVITIES_SLOW_REQUEST_MS", "0"},
		{"ACTIVITIES_DB_DRIVER", "postgres"},
	}
	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)
			if _, err := Load(""); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Config{LogLevel: "warn", LogFormat: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("store_degraded", "backend", "memory")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line should be filtered: %s", out)
	}
	if !strings.Contains(out, `"msg":"store_degraded"`) {
		t.Errorf("expected JSON warn line, got %s", out)
	}
}
