package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratosmfi/backend/internal/auth"
	"github.com/stratosmfi/backend/internal/config"
	"github.com/stratosmfi/backend/internal/http/handlers"
	"github.com/stratosmfi/backend/internal/http/middleware"
	"github.com/stratosmfi/backend/internal/version"
	"github.com/stratosmfi/backend/internal/ws"
)

const maxBodyBytes = 1 << 20

type Dependencies struct {
	Pinger            handlers.Pinger
	AuthHandler       *handlers.AuthHandler
	BorrowerHandler   *handlers.BorrowerHandler
	PlanHandler       *handlers.PlanHandler
	LoanHandler       *handlers.LoanHandler
	CollectionHandler *handlers.CollectionHandler
	ReportingHandler  *handlers.ReportingHandler
	ExportHandler     *handlers.ExportHandler
	AdminHandler      *handlers.AdminHandler
	WSHandler         *ws.Handler
	JWTManager        *auth.JWTManager
}

func NewRouter(cfg config.Config, logger *slog.Logger, deps Dependencies) *gin.Engine {
	if cfg.Env == "prod" || cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestBodyLimit(maxBodyBytes))
	r.Use(func(c *gin.Context) {
		logger.Info("request", "method", c.Request.Method, "path", c.Request.URL.Path)
		c.Next()
	})

	health := handlers.NewHealthHandler(deps.Pinger)
	meta := handlers.NewMetaHandler(cfg.Env, version.Version)

	r.GET("/health", health.Health)
	r.GET("/ready", health.Ready)
	r.GET("/v1/meta", meta.GetMeta)

	if deps.AuthHandler != nil && deps.JWTManager != nil {
		authGroup := r.Group("/v1/auth")
		authGroup.POST("/login", deps.AuthHandler.Login)
		authGroup.POST("/refresh", deps.AuthHandler.Refresh)
		authGroup.POST("/logout", deps.AuthHandler.Logout)

		protected := authGroup.Group("")
		protected.Use(middleware.RequireAuth(deps.JWTManager))
		protected.GET("/me", deps.AuthHandler.Me)

		// Back-office surface: registry, plans, issuance, reporting,
		// exports.
		adminGroup := r.Group("/v1")
		adminGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleAdmin))
		if deps.BorrowerHandler != nil {
			adminGroup.POST("/borrowers", deps.BorrowerHandler.Register)
			adminGroup.GET("/borrowers", deps.BorrowerHandler.List)
			adminGroup.GET("/borrowers/:borrowerId", deps.BorrowerHandler.Get)
			adminGroup.PATCH("/borrowers/:borrowerId/status", deps.BorrowerHandler.UpdateStatus)
			adminGroup.PATCH("/borrowers/:borrowerId/collector", deps.BorrowerHandler.AssignCollector)
		}
		if deps.PlanHandler != nil {
			adminGroup.POST("/plans", deps.PlanHandler.Create)
			adminGroup.GET("/plans", deps.PlanHandler.List)
			adminGroup.GET("/plans/:planId", deps.PlanHandler.Get)
			adminGroup.DELETE("/plans/:planId", deps.PlanHandler.Delete)
		}
		if deps.LoanHandler != nil {
			adminGroup.POST("/loans", deps.LoanHandler.Issue)
			adminGroup.GET("/loans", deps.LoanHandler.List)
		}
		if deps.ReportingHandler != nil {
			adminGroup.GET("/reports/summary", deps.ReportingHandler.Summary)
			adminGroup.GET("/reports/trend", deps.ReportingHandler.MonthlyTrend)
		}
		if deps.ExportHandler != nil {
			adminGroup.GET("/exports/:exportType", deps.ExportHandler.Download)
		}
		if deps.AdminHandler != nil {
			adminGroup.POST("/admin/collectors", deps.AdminHandler.ProvisionCollector)
			adminGroup.GET("/admin/collectors", deps.AdminHandler.ListCollectors)
			adminGroup.POST("/admin/loans/:loanId/default", deps.AdminHandler.MarkLoanDefaulted)
			adminGroup.POST("/admin/reset", deps.AdminHandler.Reset)
		}

		// Shared surface: loan detail, schedule, payments, receipts.
		staffGroup := r.Group("/v1")
		staffGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleAdmin, auth.RoleCollector))
		if deps.LoanHandler != nil {
			staffGroup.GET("/loans/:loanId", deps.LoanHandler.Get)
			staffGroup.GET("/loans/:loanId/schedule", deps.LoanHandler.Schedule)
			staffGroup.GET("/loans/:loanId/payments", deps.LoanHandler.Payments)
		}
		if deps.CollectionHandler != nil {
			staffGroup.POST("/loans/:loanId/payments", deps.CollectionHandler.RecordPayment)
			staffGroup.GET("/payments/:paymentId/receipt", deps.CollectionHandler.Receipt)

			collectorGroup := r.Group("/v1/collector")
			collectorGroup.Use(middleware.RequireAuth(deps.JWTManager), middleware.RequireRole(auth.RoleCollector, auth.RoleAdmin))
			collectorGroup.GET("/borrowers", deps.CollectionHandler.MyBorrowers)
			collectorGroup.GET("/loans", deps.CollectionHandler.MyLoans)
			collectorGroup.GET("/summary", deps.CollectionHandler.MySummary)
		}

		if deps.WSHandler != nil {
			wsGroup := r.Group("/v1")
			wsGroup.Use(middleware.RequireAuth(deps.JWTManager))
			wsGroup.GET("/ws", deps.WSHandler.HandleWebSocket)
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	return r
}
