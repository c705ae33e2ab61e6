package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-service/internal/config"
	inventoryhttp "inventory-service/internal/inventory/http"
	"inventory-service/internal/inventory/messaging"
	"inventory-service/internal/inventory/repository"
	"inventory-service/internal/inventory/service"

	_ "inventory-service/docs"

	"github.com/gin-gonic/gin"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	migrateSourcePrefix = "file://"
	postgresDriverName  = "postgres"
)

type store interface {
	service.Repository
	Health() error
}

type publisher interface {
	service.Publisher
	io.Closer
}

// @title        Inventory API
// @version      1.0
// @description  Product catalog and stock management with inventory events.
// @host         localhost:8080
// @BasePath     /
func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadInventory()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("load config", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))

	os.Exit(run(cfg, logger))
}

func run(cfg config.Inventory, logger *slog.Logger) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetrics(prometheus.DefaultRegisterer)

	repo, closeStore, err := openStore(ctx, cfg, logger, metrics)
	if err != nil {
		logger.Error("open store", "error", err)
		return 1
	}
	defer closeStore()

	pub, closeBroker, err := openPublisher(cfg, logger)
	if err != nil {
		logger.Error("init publisher", "error", err)
		return 1
	}
	defer closeBroker()
	defer pub.Close()

	svc := service.New(repo, pub, logger, metrics, service.Config{
		LowStockThreshold: cfg.LowStockThreshold,
		AdapterTimeout:    cfg.AdapterTimeout,
	})
	if _, err := svc.Restore(ctx); err != nil {
		logger.Warn("restore catalog", "error", err)
	}
	if cfg.SeedSampleData && svc.Len() == 0 {
		svc.Seed(ctx, service.SampleProducts(time.Now()))
	}

	handler := inventoryhttp.NewHandler(svc, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(inventoryhttp.ProcessTimeMiddleware())
	router.Use(inventoryhttp.RequestIDMiddleware())
	router.Use(inventoryhttp.AccessLogMiddleware(logger))
	inventoryhttp.RegisterRoutes(router, handler, repo)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("inventory service started",
			"addr", cfg.HTTPAddr,
			"event_broker", cfg.EventBroker,
			"durable_store", cfg.DatabaseURL != "",
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	logger.Info("inventory service stopped")
	return 0
}

// openStore returns the in-memory store when no database is configured.
// Otherwise Postgres is the primary store with memory taking over writes
// while it is unavailable, and a worker copying them back.
func openStore(ctx context.Context, cfg config.Inventory, logger *slog.Logger, metrics *service.Metrics) (store, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, products are kept in memory only")
		return repository.NewMemory(), func() {}, nil
	}

	if err := runMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return nil, nil, err
	}

	sqlDB, err := sql.Open(postgresDriverName, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	db := sqlx.NewDb(sqlDB, postgresDriverName)

	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	db.SetConnMaxLifetime(cfg.DBConnMaxLifetime)

	pingCtx, pingCancel := context.WithTimeout(ctx, cfg.DBPingTimeout)
	defer pingCancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	fallback := repository.NewFallback(repository.NewPostgres(db), repository.NewMemory(), logger, metrics.StoreFallbacks)
	worker := repository.NewResyncWorker(fallback, logger, cfg.ResyncInterval, cfg.AdapterTimeout)
	go worker.Start(ctx)

	return fallback, func() { _ = db.Close() }, nil
}

func openPublisher(cfg config.Inventory, logger *slog.Logger) (publisher, func(), error) {
	switch cfg.EventBroker {
	case config.BrokerRabbitMQ:
		conn, err := amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			return nil, nil, err
		}
		pub, err := messaging.NewRabbitPublisher(conn, cfg.EventsExchange)
		if err != nil {
			_ = conn.Close()
			return nil, nil, err
		}
		return pub, func() { _ = conn.Close() }, nil
	case config.BrokerKafka:
		return messaging.NewKafkaPublisher(cfg.KafkaBrokers), func() {}, nil
	default:
		return messaging.NewLogPublisher(logger), func() {}, nil
	}
}

func runMigrations(databaseURL, migrationsPath string) error {
	m, err := migrate.New(migrateSourcePrefix+migrationsPath, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}

	return nil
}
