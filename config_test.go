package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// LoadConfig exits the process on invalid input, so the tests only cover
// the paths that succeed.

func setRequiredEnv(t *testing.T) {
	t.Helper()
	// Point away from any config.yaml in the working directory.
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	t.Setenv("WEBHOOK_URL", "http://example.com/hook")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg := LoadConfig()
	if cfg.DataDir != "./data" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.DBPath != "./receiptbot.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.PendingTTLHours != 24 {
		t.Fatalf("ttl = %d", cfg.PendingTTLHours)
	}
	if cfg.CleanupSchedule != "0 * * * *" {
		t.Fatalf("schedule = %q", cfg.CleanupSchedule)
	}
	if cfg.WebhookURL != "http://example.com/hook" {
		t.Fatalf("webhook url = %q", cfg.WebhookURL)
	}
	if cfg.Location == nil {
		t.Fatal("location not resolved")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	yamlContent := `
data_dir: /var/lib/receiptbot
listen_addr: ":9090"
webhook_url: http://internal/hook
webhook_token: yaml-token
pending_ttl_hours: 48
cleanup_schedule: "*/30 * * * *"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)

	cfg := LoadConfig()
	if cfg.DataDir != "/var/lib/receiptbot" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("listen addr = %q", cfg.ListenAddr)
	}
	if cfg.WebhookURL != "http://internal/hook" || cfg.WebhookToken != "yaml-token" {
		t.Fatalf("webhook config = %q / %q", cfg.WebhookURL, cfg.WebhookToken)
	}
	if cfg.PendingTTLHours != 48 {
		t.Fatalf("ttl = %d", cfg.PendingTTLHours)
	}
	if cfg.CleanupSchedule != "*/30 * * * *" {
		t.Fatalf("schedule = %q", cfg.CleanupSchedule)
	}
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	yamlContent := `
listen_addr: ":9090"
webhook_url: http://internal/hook
pending_ttl_hours: 48
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LISTEN_ADDR", ":7070")
	t.Setenv("PENDING_TTL_HOURS", "12")
	t.Setenv("WEBHOOK_TOKEN", "env-token")

	cfg := LoadConfig()
	if cfg.ListenAddr != ":7070" {
		t.Fatalf("listen addr = %q, env should win", cfg.ListenAddr)
	}
	if cfg.PendingTTLHours != 12 {
		t.Fatalf("ttl = %d, env should win", cfg.PendingTTLHours)
	}
	if cfg.WebhookToken != "env-token" {
		t.Fatalf("webhook token = %q", cfg.WebhookToken)
	}
	// YAML still covers what the environment leaves alone.
	if cfg.WebhookURL != "http://internal/hook" {
		t.Fatalf("webhook url = %q", cfg.WebhookURL)
	}
}

func TestLoadConfigTimezone(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIMEZONE", "America/Sao_Paulo")

	cfg := LoadConfig()
	if cfg.Location == nil || cfg.Location.String() != "America/Sao_Paulo" {
		t.Fatalf("location = %v", cfg.Location)
	}
}

// "local" in any casing means the process timezone, never a LoadLocation
// lookup.
func TestLoadConfigTimezoneLocalCaseInsensitive(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TIMEZONE", "local")

	cfg := LoadConfig()
	if cfg.Location != time.Local {
		t.Fatalf("location = %v, want time.Local", cfg.Location)
	}
}

func TestLoadConfigValidatesKeywordFile(t *testing.T) {
	setRequiredEnv(t)

	path := filepath.Join(t.TempDir(), "keywords.yaml")
	content := `
patterns:
  - category: voucher
    weight: 5
    keywords: ["vale extra"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write keywords: %v", err)
	}
	t.Setenv("KEYWORDS_PATH", path)

	cfg := LoadConfig()
	if cfg.KeywordsPath != path {
		t.Fatalf("keywords path = %q", cfg.KeywordsPath)
	}
}
