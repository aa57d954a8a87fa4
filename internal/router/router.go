// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/veritrace/veritrace-backend/internal/config"
	"github.com/veritrace/veritrace-backend/internal/handlers"
	"github.com/veritrace/veritrace-backend/internal/middleware"
	"github.com/veritrace/veritrace-backend/internal/models"
	"github.com/veritrace/veritrace-backend/internal/services"
	"github.com/veritrace/veritrace-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	eventService := services.NewEventService(db, cfg)
	ledgerService := services.NewLedgerService(db, eventService, cfg)
	reportService := services.NewReportService(db)
	queryService := services.NewQueryService(db, reportService)
	authService := services.NewAuthService(db, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	productHandler := handlers.NewProductHandler(ledgerService, queryService, authService)
	verificationHandler := handlers.NewVerificationHandler(ledgerService)
	reportHandler := handlers.NewReportHandler(queryService)
	regulatorHandler := handlers.NewRegulatorHandler(queryService)
	eventHandler := handlers.NewEventHandler(eventService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.POST("/wallet", middleware.AuthRequired(), authHandler.BindWallet)
		}

		// Public verification: the QR scan entry point
		v1.GET("/verify/:identifier", middleware.VerifyRateLimit(), verificationHandler.Verify)

		// Product routes
		products := v1.Group("/products")
		{
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.GET("/:id/history", middleware.OptionalAuth(), productHandler.GetHistory)

			// Authenticated routes
			protected := products.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("", middleware.RoleRequired(models.RoleManufacturer), productHandler.RegisterProduct)
				protected.GET("/mine", productHandler.GetMyProducts)
				protected.GET("/manufactured", middleware.RoleRequired(models.RoleManufacturer), productHandler.GetManufactured)
				protected.POST("/:id/transfer", productHandler.TransferOwnership)
				protected.POST("/:id/report", productHandler.ReportCounterfeit)
			}
		}

		// Regulator routes
		regulator := v1.Group("/regulator")
		regulator.Use(middleware.AuthRequired(), middleware.RoleRequired(models.RoleRegulator))
		{
			regulator.GET("/stats", regulatorHandler.GetStats)
			regulator.GET("/export", regulatorHandler.ExportCompliance)
		}

		// Report log, regulator only
		v1.GET("/reports", middleware.AuthRequired(), middleware.RoleRequired(models.RoleRegulator), reportHandler.ListReports)

		// Ledger event feed
		v1.GET("/events", middleware.AuthRequired(), eventHandler.ListEvents)
	}

	return r
}
