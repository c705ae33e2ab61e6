package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-service/internal/config"
	"inventory-service/internal/notifications"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

type consumer interface {
	Listen(ctx context.Context) error
	Close() error
}

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadNotifications()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	os.Exit(run(cfg, logger))
}

func run(cfg config.Notifications, logger *slog.Logger) int {
	handler := notifications.NewHandler(logger)

	var c consumer
	switch cfg.EventBroker {
	case config.BrokerKafka:
		c = notifications.NewKafkaConsumer(cfg.KafkaBrokers, cfg.KafkaGroupID, handler, logger)
	default:
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq", "error", err)
			return 1
		}
		defer conn.Close()

		rc, err := notifications.NewRabbitConsumer(conn, cfg.EventsExchange, cfg.Queue, handler, logger)
		if err != nil {
			logger.Error("init consumer", "error", err)
			return 1
		}
		c = rc
	}
	defer c.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("notifications service started", "event_broker", cfg.EventBroker)
		errCh <- c.Listen(ctx)
	}()

	waitForDrain := false
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		waitForDrain = true
	case err := <-errCh:
		if err != nil {
			logger.Error("consumer failed", "error", err)
			return 1
		}
	}

	if waitForDrain {
		shutdownDeadline := time.NewTimer(cfg.ShutdownTimeout)
		defer shutdownDeadline.Stop()
		select {
		case err := <-errCh:
			if err != nil {
				logger.Error("consumer stop failed", "error", err)
				return 1
			}
		case <-shutdownDeadline.C:
			logger.Warn("consumer shutdown timeout reached")
		}
	}

	logger.Info("notifications service stopped")
	return 0
}
