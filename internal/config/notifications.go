package config

import (
	"log/slog"
	"strings"
	"time"
)

const (
	defaultNotificationsQueue = "notifications.inventory"
	defaultKafkaGroupID       = "notifications-service"
)

type Notifications struct {
	EventBroker     string
	RabbitMQURL     string
	KafkaBrokers    []string
	EventsExchange  string
	Queue           string
	KafkaGroupID    string
	LogLevel        slog.Level
	ShutdownTimeout time.Duration
}

func LoadNotifications() (Notifications, error) {
	cfg := Notifications{
		EventBroker:     strings.ToLower(getEnv("EVENT_BROKER", BrokerRabbitMQ)),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		KafkaBrokers:    splitList(getEnv("KAFKA_BROKERS", "")),
		EventsExchange:  getEnv("EVENTS_EXCHANGE", defaultEventsExchange),
		Queue:           getEnv("NOTIFICATIONS_QUEUE", defaultNotificationsQueue),
		KafkaGroupID:    getEnv("KAFKA_GROUP_ID", defaultKafkaGroupID),
		ShutdownTimeout: defaultShutdownTimeout,
	}

	var err error
	if cfg.LogLevel, err = getLogLevel(); err != nil {
		return Notifications{}, err
	}
	if err := validateBroker(cfg.EventBroker, cfg.RabbitMQURL, cfg.KafkaBrokers, false); err != nil {
		return Notifications{}, err
	}

	return cfg, nil
}
