package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/stratosmfi/backend/internal/auth"
	"github.com/stratosmfi/backend/internal/config"
	"github.com/stratosmfi/backend/internal/db"
	admindomain "github.com/stratosmfi/backend/internal/domain/admin"
	borrowerdomain "github.com/stratosmfi/backend/internal/domain/borrower"
	ledgerdomain "github.com/stratosmfi/backend/internal/domain/ledger"
	loandomain "github.com/stratosmfi/backend/internal/domain/loan"
	plandomain "github.com/stratosmfi/backend/internal/domain/plan"
	"github.com/stratosmfi/backend/internal/domain/reporting"
	"github.com/stratosmfi/backend/internal/export"
	"github.com/stratosmfi/backend/internal/http/handlers"
	"github.com/stratosmfi/backend/internal/observability"
	postgresrepo "github.com/stratosmfi/backend/internal/repository/postgres"
	"github.com/stratosmfi/backend/internal/server"
	"github.com/stratosmfi/backend/internal/ws"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := observability.NewLogger(cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.RunMigrations(cfg); err != nil {
		logger.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPostgresPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect postgres", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	authRepo := db.NewAuthRepository(pool)
	jwtManager := auth.NewJWTManager(cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTSigningKey)
	authService := auth.NewService(authRepo, jwtManager, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)
	if err := authService.EnsureBootstrapAdmin(ctx, cfg.BootstrapAdminEmail, cfg.BootstrapAdminPassword); err != nil {
		logger.Error("bootstrap admin failed", "err", err)
		os.Exit(1)
	}
	authHandler := handlers.NewAuthHandler(authService, auth.CookieConfig{Domain: cfg.CookieDomain, Secure: cfg.CookieSecure}, cfg.JWTAccessTTL, cfg.JWTRefreshTTL)

	borrowerRepo := postgresrepo.NewBorrowerRepository(pool)
	planRepo := postgresrepo.NewPlanRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	ledgerRepo := postgresrepo.NewLedgerRepository(pool)
	maintenanceRepo := postgresrepo.NewMaintenanceRepository(pool)

	borrowerService := borrowerdomain.NewService(borrowerRepo)
	planService := plandomain.NewService(planRepo)
	loanService := loandomain.NewService(borrowerRepo, planRepo, loanRepo)
	ledgerService := ledgerdomain.NewService(ledgerRepo)
	reportingService := reporting.NewService(postgresrepo.NewReportingRepository(pool))
	exportService := export.NewService(postgresrepo.NewExportRepository(pool))
	adminService := admindomain.NewService(authRepo, maintenanceRepo, loanRepo, postgresrepo.NewAuditRepository(pool))

	hub := ws.NewHub()
	notifier := ws.NewNotifier(postgresrepo.NewWSRepository(pool), hub, cfg.WSPollInterval)

	r := server.NewRouter(cfg, logger, server.Dependencies{
		Pinger:            pool,
		AuthHandler:       authHandler,
		BorrowerHandler:   handlers.NewBorrowerHandler(borrowerService),
		PlanHandler:       handlers.NewPlanHandler(planService),
		LoanHandler:       handlers.NewLoanHandler(loanService, ledgerService),
		CollectionHandler: handlers.NewCollectionHandler(ledgerService, borrowerService, loanService, reportingService),
		ReportingHandler:  handlers.NewReportingHandler(reportingService),
		ExportHandler:     handlers.NewExportHandler(exportService),
		AdminHandler:      handlers.NewAdminHandler(adminService),
		WSHandler:         ws.NewHandler(hub),
		JWTManager:        jwtManager,
	})
	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	notifierCtx, notifierCancel := context.WithCancel(context.Background())
	defer notifierCancel()
	go func() {
		if err := notifier.Run(notifierCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("ws notifier stopped", "err", err)
		}
	}()

	go func() {
		logger.Info("api server starting", "addr", cfg.Addr())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	notifierCancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = httpServer.Shutdown(shutdownCtx)
	logger.Info("api server stopped")
}
