package main

import (
	"context"
	"log"
	"time"

	"lexfund_crm_go/config"
	"lexfund_crm_go/db"
	"lexfund_crm_go/handlers"
	"lexfund_crm_go/middleware"
	"lexfund_crm_go/models"
	"lexfund_crm_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	if err := db.Initialize(cfg.DBPath, cfg.Environment); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Run migrations
	if err := db.AutoMigrate(
		&models.User{}, &models.Session{},
		&models.LawFirm{}, &models.Lawyer{}, &models.Plaintiff{}, &models.Case{},
		&models.Document{}, &models.Communication{}, &models.Contract{},
		&models.MessageTemplate{}, &models.AuditLog{},
		&models.SettingsCategory{}, &models.Setting{},
		&models.UserSetting{}, &models.AgentSetting{},
	); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize services
	services.InitializeStorage(cfg)
	services.InitializeSMS(cfg)
	services.InitializeSettings(db.DB)
	if err := services.Settings.Seed(); err != nil {
		log.Fatalf("Failed to seed settings: %v", err)
	}
	if _, err := services.InitializeDrafter(context.Background(), cfg); err != nil {
		log.Printf("[WARNING] LLM drafter unavailable: %v", err)
	}

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowCredentials: true,
	}))

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	// Public routes (no authentication required)
	e.POST("/api/login", handlers.LoginHandler)

	// Protected routes
	protected := e.Group("/api")
	protected.Use(middleware.RequireAuth())
	protected.Use(middleware.AuditContext())
	{
		protected.POST("/logout", handlers.LogoutHandler)
		protected.GET("/me", handlers.GetCurrentUserHandler)

		// Plaintiffs
		protected.GET("/plaintiffs", handlers.GetPlaintiffsHandler)
		protected.GET("/plaintiffs/:id", handlers.GetPlaintiffHandler)
		protected.POST("/plaintiffs", handlers.CreatePlaintiffHandler)
		protected.PUT("/plaintiffs/:id", handlers.UpdatePlaintiffHandler)
		protected.POST("/plaintiffs/:id/archive", handlers.ArchivePlaintiffHandler)

		// Law firms and lawyers
		protected.GET("/law-firms", handlers.GetLawFirmsHandler)
		protected.GET("/law-firms/:id", handlers.GetLawFirmHandler)
		protected.POST("/law-firms", handlers.CreateLawFirmHandler)
		protected.PUT("/law-firms/:id", handlers.UpdateLawFirmHandler)
		protected.POST("/law-firms/:id/deactivate", handlers.DeactivateLawFirmHandler)

		protected.GET("/lawyers", handlers.GetLawyersHandler)
		protected.GET("/lawyers/:id", handlers.GetLawyerHandler)
		protected.POST("/lawyers", handlers.CreateLawyerHandler)
		protected.PUT("/lawyers/:id", handlers.UpdateLawyerHandler)
		protected.POST("/lawyers/:id/deactivate", handlers.DeactivateLawyerHandler)

		// Cases
		protected.GET("/cases", handlers.GetCasesHandler)
		protected.GET("/cases/:id", handlers.GetCaseHandler)
		protected.POST("/cases", handlers.CreateCaseHandler)
		protected.PUT("/cases/:id", handlers.UpdateCaseHandler)
		protected.PUT("/cases/:id/funding-status", handlers.ChangeFundingStatusHandler)

		// Documents
		protected.POST("/cases/:id/documents", handlers.UploadCaseDocumentHandler)
		protected.GET("/cases/:id/documents", handlers.GetCaseDocumentsHandler)
		protected.GET("/documents/:id/download", handlers.DownloadDocumentHandler)
		protected.DELETE("/documents/:id", handlers.DeleteDocumentHandler)

		// Communications
		protected.GET("/communications", handlers.GetCommunicationsHandler)
		protected.GET("/communications/:id", handlers.GetCommunicationHandler)
		protected.POST("/communications", handlers.CreateCommunicationHandler)
		protected.POST("/communications/draft", handlers.DraftCommunicationHandler)
		protected.POST("/communications/:id/send", handlers.SendCommunicationHandler)

		// Contracts
		protected.GET("/contracts", handlers.GetContractsHandler)
		protected.GET("/contracts/:id", handlers.GetContractHandler)
		protected.POST("/contracts", handlers.CreateContractHandler)
		protected.PUT("/contracts/:id", handlers.UpdateContractHandler)
		protected.PUT("/contracts/:id/status", handlers.ChangeContractStatusHandler)
		protected.POST("/contracts/:id/generate-pdf", handlers.GenerateContractPDFHandler)

		// Message templates
		protected.GET("/message-templates", handlers.GetMessageTemplatesHandler)
		protected.GET("/message-templates/:id", handlers.GetMessageTemplateHandler)
		protected.POST("/message-templates/:id/preview", handlers.PreviewMessageTemplateHandler)

		// Settings (reads for everyone, overrides handler-gated)
		protected.GET("/settings", handlers.GetSettingsHandler)
		protected.GET("/settings/:category/:key", handlers.GetSettingHandler)
		protected.PUT("/settings/:category/:key/override", handlers.SetSettingOverrideHandler)
		protected.DELETE("/settings/:category/:key/override", handlers.DeleteSettingOverrideHandler)

		// Users (reads for everyone, writes handler-gated)
		protected.GET("/users", handlers.GetUsersHandler)
		protected.GET("/users/:id", handlers.GetUserHandler)
		protected.PUT("/users/:id", handlers.UpdateUserHandler)

		// Reports
		protected.GET("/reports/cases/export", handlers.ExportCasesHandler)

		// Audit history for a single resource
		protected.GET("/audit-logs/resource/:type/:id", handlers.GetResourceAuditHistoryHandler)

		// Admin-only routes
		adminRoutes := protected.Group("")
		adminRoutes.Use(middleware.RequireRole(models.RoleAdmin))
		{
			adminRoutes.POST("/users", handlers.CreateUserHandler)
			adminRoutes.GET("/audit-logs", handlers.GetAuditLogsHandler)
			adminRoutes.PUT("/settings/:category/:key", handlers.UpdateSettingHandler)
			adminRoutes.PUT("/documents/:id/legal-hold", handlers.SetLegalHoldHandler)
			adminRoutes.POST("/message-templates", handlers.CreateMessageTemplateHandler)
			adminRoutes.PUT("/message-templates/:id", handlers.UpdateMessageTemplateHandler)
			adminRoutes.DELETE("/message-templates/:id", handlers.DeleteMessageTemplateHandler)
		}
	}

	// Start background cleanup jobs (runs every hour)
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			if err := services.CleanupExpiredSessions(db.DB); err != nil {
				log.Printf("Error cleaning up expired sessions: %v", err)
			}
		}
	}()

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
