package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stratosmfi/backend/internal/config"
	"github.com/stratosmfi/backend/internal/db"
	"github.com/stratosmfi/backend/internal/jobs"
	"github.com/stratosmfi/backend/internal/notify"
	"github.com/stratosmfi/backend/internal/observability"
	postgresrepo "github.com/stratosmfi/backend/internal/repository/postgres"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	var mailer jobs.Mailer
	if cfg.NotifyEnabled {
		mailer = notify.NewEmailSender(
			cfg.SMTPHost, int(cfg.SMTPPort), cfg.SMTPUsername, cfg.SMTPPassword,
			cfg.SMTPFrom, cfg.NotifyBackOffice,
		)
	}

	maintenanceRepo := postgresrepo.NewMaintenanceRepository(pool)
	worker := jobs.NewWorker(
		postgresrepo.NewOutboxRepository(pool),
		maintenanceRepo,
		mailer,
		maintenanceRepo,
	)

	interval := cfg.WorkerPollInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("worker started", "interval", interval.String(), "batch_size", cfg.WorkerBatchSize)
	for {
		select {
		case <-sigCtx.Done():
			logger.Info("worker stopped")
			return
		case <-ticker.C:
			runCtx, runCancel := context.WithTimeout(context.Background(), 30*time.Second)
			err := worker.RunOnce(runCtx, cfg.WorkerBatchSize)
			runCancel()
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker run failed", "err", err)
			}
		}
	}
}
