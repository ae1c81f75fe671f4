// Package config provides runtime configuration values for the service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration knobs for the HTTP server, storage, bus, and
// the saga's simulated I/O latencies.
type Config struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration

	// Empty PostgresURL selects the in-memory repositories.
	PostgresURL string
	// Empty KafkaBrokers selects the in-process event bus.
	KafkaBrokers  []string
	ConsumerGroup string

	InventoryIODelay    time.Duration
	ShippingIODelay     time.Duration
	NotificationIODelay time.Duration

	// Sagas not updated within this age count as stuck in the recovery sweep.
	StuckSagaAge time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func durenvms(key string, defMs int) time.Duration {
	return time.Duration(atoienv(key, defMs)) * time.Millisecond
}

func durenvs(key string, defSec int) time.Duration {
	return time.Duration(atoienv(key, defSec)) * time.Second
}

// Load collects configuration from environment with defaults.
func Load() Config {
	cfg := Config{
		HTTPAddr:            getenv("HTTP_ADDR", ":8080"),
		ShutdownTimeout:     durenvs("SHUTDOWN_TIMEOUT", 15),
		PostgresURL:         getenv("POSTGRES_URL", ""),
		ConsumerGroup:       getenv("KAFKA_CONSUMER_GROUP", "order-saga"),
		InventoryIODelay:    durenvms("INVENTORY_IO_DELAY_MS", 100),
		ShippingIODelay:     durenvms("SHIPPING_IO_DELAY_MS", 150),
		NotificationIODelay: durenvms("NOTIFICATION_IO_DELAY_MS", 200),
		StuckSagaAge:        durenvs("STUCK_SAGA_AGE", 60),
	}
	if brokers := getenv("KAFKA_BROKERS", ""); brokers != "" {
		cfg.KafkaBrokers = strings.Split(brokers, ",")
	}
	return cfg
}
