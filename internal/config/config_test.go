package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

// clearEnv unsets the CONSOLE_* variables for the duration of a test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONSOLE_API_URL", "CONSOLE_SESSION_PATH", "CONSOLE_PAGE_SIZE", "CONSOLE_LOG_LEVEL", "CONSOLE_LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	content := `
api:
  base_url: "https://campaigns.example.com/api/"
  user_agent: "ops-console/1.0"

session:
  path: "/tmp/console/session.db"

store:
  page_size: 25

logging:
  level: "debug"
  format: "json"

metrics:
  enabled: true
  textfile: "/tmp/console.prom"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.BaseURL != "https://campaigns.example.com/api" {
		t.Errorf("API.BaseURL = %v, want trailing slash trimmed", cfg.API.BaseURL)
	}
	if cfg.API.UserAgent != "ops-console/1.0" {
		t.Errorf("API.UserAgent = %v", cfg.API.UserAgent)
	}
	if cfg.Session.Path != "/tmp/console/session.db" {
		t.Errorf("Session.Path = %v", cfg.Session.Path)
	}
	if cfg.Store.PageSize != 25 {
		t.Errorf("Store.PageSize = %v, want 25", cfg.Store.PageSize)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Textfile != "/tmp/console.prom" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(writeConfig(t, "api:\n  base_url: http://localhost:8080\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.PageSize != 10 {
		t.Errorf("Store.PageSize = %v, want 10", cfg.Store.PageSize)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	if want := filepath.Join(home, ".campaign-console", "session.db"); cfg.Session.Path != want {
		t.Errorf("Session.Path = %v, want %v", cfg.Session.Path, want)
	}
	if cfg.API.UserAgent != "campaign-console" {
		t.Errorf("API.UserAgent = %v", cfg.API.UserAgent)
	}
	if cfg.Metrics.Enabled {
		t.Error("metrics should be off by default")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)
	t.Setenv("CONSOLE_API_URL", "https://override.example.com")
	t.Setenv("CONSOLE_PAGE_SIZE", "50")
	t.Setenv("CONSOLE_LOG_LEVEL", "warn")
	t.Setenv("CONSOLE_SESSION_PATH", "/var/tmp/s.db")

	cfg, err := Load(writeConfig(t, "api:\n  base_url: http://localhost:8080\nstore:\n  page_size: 5\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://override.example.com" {
		t.Errorf("API.BaseURL = %v", cfg.API.BaseURL)
	}
	if cfg.Store.PageSize != 50 {
		t.Errorf("Store.PageSize = %v, want 50", cfg.Store.PageSize)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %v", cfg.Logging.Level)
	}
	if cfg.Session.Path != "/var/tmp/s.db" {
		t.Errorf("Session.Path = %v", cfg.Session.Path)
	}
}

func TestLoadDotEnvWithoutFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	clearEnv(t)

	dotenv := "CONSOLE_API_URL=http://from-dotenv.local:9000\nCONSOLE_LOG_FORMAT=json\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://from-dotenv.local:9000" {
		t.Errorf("API.BaseURL = %v", cfg.API.BaseURL)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %v", cfg.Logging.Format)
	}
}

func TestLoadMissingFile(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"missing base url", "store:\n  page_size: 10\n", "api.base_url is required"},
		{"bad scheme", "api:\n  base_url: ftp://example.com\n", "http or https"},
		{"no host", "api:\n  base_url: http://\n", "http or https"},
		{"page size too big", "api:\n  base_url: http://x.test\nstore:\n  page_size: 500\n", "page_size"},
		{"negative page size", "api:\n  base_url: http://x.test\nstore:\n  page_size: -1\n", "page_size"},
		{"bad level", "api:\n  base_url: http://x.test\nlogging:\n  level: loud\n", "logging.level"},
		{"bad format", "api:\n  base_url: http://x.test\nlogging:\n  format: xml\n", "logging.format"},
		{"textfile without metrics", "api:\n  base_url: http://x.test\nmetrics:\n  textfile: /tmp/x.prom\n", "metrics.enabled"},
		{"malformed yaml", "api: [\n", "failed to parse config file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want %q", err, tt.wantErr)
			}
		})
	}
}
