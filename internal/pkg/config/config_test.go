package config

import (
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET": "secret",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}

	if cfg.Port != "8080" || cfg.BasePath != "/api" || !cfg.IsDevelopment() {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Token.AccessTTL != 15*time.Minute || cfg.Token.RefreshTTL != 168*time.Hour {
		t.Fatalf("unexpected token ttls: %+v", cfg.Token)
	}
	if cfg.Redis.RefreshSingleUse {
		t.Fatalf("single-use refresh must be off by default")
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected no kafka brokers by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestLoadWith_Overrides(t *testing.T) {
	cfg, err := LoadWith(envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":         "secret",
		"ACCESS_TOKEN_TTL":   "5m",
		"REFRESH_SINGLE_USE": "true",
		"KAFKA_BROKERS":      "k1:9092,k2:9092",
		"ENV":                "production",
	}))
	if err != nil {
		t.Fatalf("LoadWith: %v", err)
	}
	if cfg.Token.AccessTTL != 5*time.Minute {
		t.Fatalf("expected 5m access ttl, got %s", cfg.Token.AccessTTL)
	}
	if !cfg.Redis.RefreshSingleUse {
		t.Fatalf("expected single-use refresh")
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers %v", cfg.Kafka.Brokers)
	}
	if cfg.IsDevelopment() {
		t.Fatalf("expected production env")
	}
}

func TestLoadWith_SecretRequired(t *testing.T) {
	if _, err := LoadWith(envconfig.MapLookuper(map[string]string{})); err == nil {
		t.Fatalf("expected error when JWT_SECRET is missing")
	}
}
