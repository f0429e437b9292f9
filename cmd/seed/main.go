package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/cuongbtq/job-tracker/internal/api/domain"
	"github.com/cuongbtq/job-tracker/internal/api/events"
	"github.com/cuongbtq/job-tracker/internal/api/service"
	"github.com/cuongbtq/job-tracker/internal/api/storage"
	"github.com/cuongbtq/job-tracker/internal/config"
	"github.com/cuongbtq/job-tracker/internal/seed"
	"github.com/cuongbtq/job-tracker/shared/logger"
	"github.com/cuongbtq/job-tracker/shared/postgresql"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
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

	appLogger, err := logger.New(cfg.Logging.LoggerConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	if cfg.Database.IsMemory() {
		return fmt.Errorf("seeding needs a postgres database driver, got %q", cfg.Database.Driver)
	}

	dbClient, err := postgresql.NewClient(cfg.Database.PostgresConfig(), appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	ctx := context.Background()
	if err := storage.Migrate(ctx, dbClient); err != nil {
		return err
	}

	svc := service.NewJobService(storage.NewStorage(dbClient), events.NewLogPublisher(appLogger.Logger), appLogger.Logger, service.Options{})

	res, err := seed.Run(ctx, svc, appLogger.Logger)
	if err != nil {
		return err
	}

	appLogger.Info("Job statistics",
		slog.Int("total", res.Stats.Total),
		slog.Int("saved", res.Stats.ByStatus[domain.StatusSaved]),
		slog.Int("applied", res.Stats.ByStatus[domain.StatusApplied]),
		slog.Int("interviewing", res.Stats.ByStatus[domain.StatusInterviewing]),
		slog.Int("offer", res.Stats.ByStatus[domain.StatusOffer]),
		slog.Int("rejected", res.Stats.ByStatus[domain.StatusRejected]),
		slog.Int("response_rate", res.Stats.ResponseRate),
		slog.Int("success_rate", res.Stats.SuccessRate),
	)

	for _, st := range domain.Statuses {
		appLogger.Info("Grouped bucket",
			slog.String("status", string(st)),
			slog.Int("jobs", len(res.Grouped.Buckets[st])),
		)
	}

	appLogger.Info("Database setup completed",
		slog.String("try", fmt.Sprintf("GET /api/v1/jobs/%s", seed.DemoUserID)),
	)
	return nil
}
