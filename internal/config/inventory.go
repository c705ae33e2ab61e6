package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
	BrokerNone     = "none"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultMigrationsPath  = "migrations/inventory"
	defaultShutdownTimeout = 10 * time.Second
	defaultEventsExchange  = "inventory.events"

	defaultDBMaxOpenConns    = 25
	defaultDBMaxIdleConns    = 5
	defaultDBConnMaxLifetime = 5 * time.Minute
	defaultDBPingTimeout     = 5 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second

	defaultAdapterTimeout    = 2 * time.Second
	defaultLowStockThreshold = 10
	defaultResyncInterval    = 30 * time.Second
)

type Inventory struct {
	HTTPAddr          string
	DatabaseURL       string
	MigrationsPath    string
	EventBroker       string
	RabbitMQURL       string
	KafkaBrokers      []string
	EventsExchange    string
	AdapterTimeout    time.Duration
	LowStockThreshold int
	ResyncInterval    time.Duration
	SeedSampleData    bool
	LogLevel          slog.Level
	ShutdownTimeout   time.Duration
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration
	DBPingTimeout     time.Duration
	ReadHeaderTimeout time.Duration
}

func LoadInventory() (Inventory, error) {
	cfg := Inventory{
		HTTPAddr:          getEnv("HTTP_ADDR", defaultHTTPAddr),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		MigrationsPath:    getEnv("MIGRATIONS_PATH", defaultMigrationsPath),
		EventBroker:       strings.ToLower(getEnv("EVENT_BROKER", BrokerNone)),
		RabbitMQURL:       getEnv("RABBITMQ_URL", ""),
		KafkaBrokers:      splitList(getEnv("KAFKA_BROKERS", "")),
		EventsExchange:    getEnv("EVENTS_EXCHANGE", defaultEventsExchange),
		ShutdownTimeout:   defaultShutdownTimeout,
		DBMaxOpenConns:    defaultDBMaxOpenConns,
		DBMaxIdleConns:    defaultDBMaxIdleConns,
		DBConnMaxLifetime: defaultDBConnMaxLifetime,
		DBPingTimeout:     defaultDBPingTimeout,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
	}

	var err error
	if cfg.AdapterTimeout, err = getDuration("ADAPTER_TIMEOUT", defaultAdapterTimeout); err != nil {
		return Inventory{}, err
	}
	if cfg.ResyncInterval, err = getDuration("RESYNC_INTERVAL", defaultResyncInterval); err != nil {
		return Inventory{}, err
	}
	if cfg.LowStockThreshold, err = getInt("LOW_STOCK_THRESHOLD", defaultLowStockThreshold); err != nil {
		return Inventory{}, err
	}
	if cfg.LowStockThreshold < 0 {
		return Inventory{}, fmt.Errorf("LOW_STOCK_THRESHOLD must not be negative")
	}
	if cfg.SeedSampleData, err = getBool("SEED_SAMPLE_DATA", true); err != nil {
		return Inventory{}, err
	}
	if cfg.LogLevel, err = getLogLevel(); err != nil {
		return Inventory{}, err
	}

	if err := validateBroker(cfg.EventBroker, cfg.RabbitMQURL, cfg.KafkaBrokers, true); err != nil {
		return Inventory{}, err
	}

	return cfg, nil
}

func validateBroker(broker, rabbitURL string, kafkaBrokers []string, allowNone bool) error {
	switch broker {
	case BrokerRabbitMQ:
		if rabbitURL == "" {
			return fmt.Errorf("RABBITMQ_URL is required")
		}
	case BrokerKafka:
		if len(kafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required")
		}
	case BrokerNone:
		if !allowNone {
			return fmt.Errorf("EVENT_BROKER %q is not supported", broker)
		}
	default:
		return fmt.Errorf("EVENT_BROKER %q is not supported", broker)
	}
	return nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return value, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, raw)
	}
	return value, nil
}

func getLogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
