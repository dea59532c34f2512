package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.DefaultModel != "vsm" || cfg.Search.DefaultLimit != 5 {
		t.Errorf("search defaults = %+v", cfg.Search)
	}
	if cfg.Redis.Enabled || cfg.Kafka.Enabled {
		t.Error("optional backends should default to disabled")
	}
}

func TestLoadYAMLAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  port: 9000
  writeTimeout: 5s
search:
  defaultModel: boolean
  defaultLimit: 3
  maxResults: 10
dataset:
  foodPath: /data/food.csv
redis:
  enabled: true
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FR_SERVER_PORT", "9100")
	t.Setenv("FR_KAFKA_BROKERS", "a:1,b:2")
	t.Setenv("FR_SERVER_RATE_LIMIT", "12.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("port = %d, want env override 9100", cfg.Server.Port)
	}
	if cfg.Server.RateLimit != 12.5 || cfg.Server.RateBurst != 20 {
		t.Errorf("rate limit = %v burst = %d", cfg.Server.RateLimit, cfg.Server.RateBurst)
	}
	if cfg.Server.WriteTimeout != 5*time.Second {
		t.Errorf("writeTimeout = %v", cfg.Server.WriteTimeout)
	}
	if cfg.Search.DefaultModel != "boolean" || cfg.Search.MaxResults != 10 {
		t.Errorf("search = %+v", cfg.Search)
	}
	if cfg.Dataset.FoodPath != "/data/food.csv" || cfg.Dataset.Source != "csv" {
		t.Errorf("dataset = %+v", cfg.Dataset)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "localhost:6379" {
		t.Errorf("redis = %+v", cfg.Redis)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "b:2" {
		t.Errorf("brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Analytics.BatchSize != 100 || cfg.Kafka.ConsumerGroup != "food-analytics" {
		t.Errorf("analytics = %+v, group = %q", cfg.Analytics, cfg.Kafka.ConsumerGroup)
	}
}

func TestValidate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Search.DefaultLimit = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for zero default limit")
	}
	cfg = defaultConfig()
	cfg.Dataset.Source = "s3"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown source")
	}
	cfg = defaultConfig()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = nil
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for kafka without brokers")
	}
	cfg = defaultConfig()
	cfg.Server.RateLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for negative rate limit")
	}
	cfg = defaultConfig()
	cfg.Dataset.Source = "postgres"
	cfg.Dataset.FoodPath = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("postgres source should not need a food path: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error")
	}
}
