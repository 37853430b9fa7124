package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DataDir string `yaml:"data_dir"`
	DBPath  string `yaml:"db_path"`

	ListenAddr string `yaml:"listen_addr"`
	APIToken   string `yaml:"api_token"`

	WebhookURL   string `yaml:"webhook_url"`
	WebhookToken string `yaml:"webhook_token"`

	PendingTTLHours int    `yaml:"pending_ttl_hours"`
	CleanupSchedule string `yaml:"cleanup_schedule"`

	KeywordsPath string `yaml:"keywords_path"`
	Timezone     string `yaml:"timezone"`

	Location *time.Location `yaml:"-"`
}

func LoadConfig() Config {
	// .env is optional; real deployments use config.yaml or the process
	// environment.
	_ = godotenv.Load()

	var cfg Config

	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.DataDir, "DATA_DIR")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.ListenAddr, "LISTEN_ADDR")
	envOverride(&cfg.APIToken, "API_TOKEN")
	envOverride(&cfg.WebhookURL, "WEBHOOK_URL")
	envOverride(&cfg.WebhookToken, "WEBHOOK_TOKEN")
	envOverrideInt(&cfg.PendingTTLHours, "PENDING_TTL_HOURS")
	envOverride(&cfg.CleanupSchedule, "CLEANUP_SCHEDULE")
	envOverride(&cfg.KeywordsPath, "KEYWORDS_PATH")
	envOverride(&cfg.Timezone, "TIMEZONE")

	// Defaults
	if cfg.DataDir == "" {
		cfg.DataDir = "./data"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./receiptbot.db"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.PendingTTLHours == 0 {
		cfg.PendingTTLHours = 24
	}
	if cfg.CleanupSchedule == "" {
		cfg.CleanupSchedule = "0 * * * *"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "Local"
	}

	// Validate required fields
	if cfg.WebhookURL == "" {
		log.Fatalf("Required config 'webhook_url' is not set (via config.yaml or env var)")
	}
	if cfg.PendingTTLHours < 1 {
		log.Fatalf("invalid pending_ttl_hours '%d': must be >= 1", cfg.PendingTTLHours)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.CleanupSchedule); err != nil {
		log.Fatalf("invalid cleanup_schedule '%s': %v", cfg.CleanupSchedule, err)
	}

	if cfg.KeywordsPath != "" {
		if _, err := LoadKeywordFile(cfg.KeywordsPath); err != nil {
			log.Fatalf("invalid keywords_path '%s': %v", cfg.KeywordsPath, err)
		}
	}

	if strings.EqualFold(cfg.Timezone, "Local") {
		cfg.Location = time.Local
	} else {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			log.Fatalf("invalid timezone '%s': %v", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	return cfg
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
