package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.PostgresURL != "" {
		t.Errorf("expected empty postgres url, got %s", cfg.PostgresURL)
	}
	if cfg.KafkaBrokers != nil {
		t.Errorf("expected no brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.InventoryIODelay != 100*time.Millisecond ||
		cfg.ShippingIODelay != 150*time.Millisecond ||
		cfg.NotificationIODelay != 200*time.Millisecond {
		t.Errorf("unexpected delays: %s/%s/%s",
			cfg.InventoryIODelay, cfg.ShippingIODelay, cfg.NotificationIODelay)
	}
	if cfg.StuckSagaAge != time.Minute {
		t.Errorf("expected 1m stuck saga age, got %s", cfg.StuckSagaAge)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9000")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("INVENTORY_IO_DELAY_MS", "5")
	t.Setenv("STUCK_SAGA_AGE", "120")

	cfg := Load()

	if cfg.HTTPAddr != ":9000" {
		t.Errorf("expected :9000, got %s", cfg.HTTPAddr)
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.InventoryIODelay != 5*time.Millisecond {
		t.Errorf("expected 5ms, got %s", cfg.InventoryIODelay)
	}
	if cfg.StuckSagaAge != 2*time.Minute {
		t.Errorf("expected 2m, got %s", cfg.StuckSagaAge)
	}
}

func TestLoadIgnoresMalformedNumbers(t *testing.T) {
	t.Setenv("INVENTORY_IO_DELAY_MS", "not-a-number")

	if cfg := Load(); cfg.InventoryIODelay != 100*time.Millisecond {
		t.Errorf("expected default on malformed value, got %s", cfg.InventoryIODelay)
	}
}
