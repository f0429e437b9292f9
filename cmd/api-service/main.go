package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cuongbtq/job-tracker/internal/api/events"
	"github.com/cuongbtq/job-tracker/internal/api/handler"
	"github.com/cuongbtq/job-tracker/internal/api/router"
	"github.com/cuongbtq/job-tracker/internal/api/service"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
	"github.com/cuongbtq/job-tracker/internal/config"
	"github.com/cuongbtq/job-tracker/shared/logger"
	"github.com/cuongbtq/job-tracker/shared/postgresql"
	"github.com/cuongbtq/job-tracker/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := logger.New(cfg.Logging.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
		slog.String("database_driver", cfg.Database.Driver),
		slog.Bool("rabbitmq_enabled", cfg.RabbitMQ.Enabled),
	)

	healthChecks := make(map[string]func(context.Context) error)

	// Job store
	var store service.JobStore
	var dbClient *postgresql.Client
	if cfg.Database.IsMemory() {
		appLogger.Warn("Using in-memory job store, data is lost on restart")
		store = storage.NewMemoryStorage()
	} else {
		dbClient, err = postgresql.NewClient(cfg.Database.PostgresConfig(), appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer dbClient.Close()

		if cfg.Database.AutoMigrate {
			if err := storage.Migrate(context.Background(), dbClient); err != nil {
				return err
			}
			appLogger.Info("Database schema migrated")
		}

		store = storage.NewStorage(dbClient)
		healthChecks["database"] = dbClient.HealthCheck
	}

	// Event publisher
	var publisher service.EventPublisher
	if cfg.RabbitMQ.Enabled {
		rabbitClient, err := rabbitmq.NewClient(cfg.RabbitMQ.ClientConfig(), appLogger.Logger)
		if err != nil {
			return fmt.Errorf("failed to initialize RabbitMQ: %w", err)
		}
		defer rabbitClient.Close()

		publisher = events.NewRabbitPublisher(rabbitClient, appLogger.Logger)
		healthChecks["rabbitmq"] = rabbitClient.HealthCheck
	} else {
		publisher = events.NewLogPublisher(appLogger.Logger)
	}

	jobService := service.NewJobService(store, publisher, appLogger.Logger, service.Options{
		BulkMaxItems:    cfg.Bulk.MaxItems,
		BulkConcurrency: cfg.Bulk.Concurrency,
	})

	r := initRouter(cfg, appLogger.Logger, jobService, healthChecks)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
		slog.Duration("read_timeout", cfg.Server.ReadTimeout),
		slog.Duration("write_timeout", cfg.Server.WriteTimeout),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		appLogger.Error("Server failed", slog.Any("error", err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, logger *slog.Logger, jobService *service.JobService, checks map[string]func(context.Context) error) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(&handler.Dependencies{
		Logger:         logger,
		Service:        jobService,
		Environment:    cfg.App.Environment,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthChecks:   checks,
	})
}
