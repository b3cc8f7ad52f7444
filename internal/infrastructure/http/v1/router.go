// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"ferreteria/internal/backup"
	"ferreteria/internal/core/tx"
	"ferreteria/internal/domain/audit"
	"ferreteria/internal/domain/auth"
	"ferreteria/internal/domain/catalogs/product"
	"ferreteria/internal/domain/documents/purchase"
	"ferreteria/internal/domain/documents/rental"
	"ferreteria/internal/domain/documents/sale"
	"ferreteria/internal/domain/reports"
	"ferreteria/internal/domain/stock"
	"ferreteria/internal/infrastructure/http/v1/handlers"
	"ferreteria/internal/infrastructure/http/v1/middleware"
	"ferreteria/internal/infrastructure/storage/postgres"
)

// RouterConfig carries the wired services the router exposes.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager tx.Manager

	TokenValidator middleware.TokenValidator

	AuthService     *auth.Service
	ProductService  *product.Service
	StockService    *stock.Service
	SaleService     *sale.Service
	PurchaseService *purchase.Service
	RentalService   *rental.Service
	ReportService   *reports.Service
	AuditAppender   *audit.Appender
	BackupManager   *backup.Manager
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: recovery outermost, then trace, then error rendering.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.ErrorHandler())

	baseHandler := handlers.NewBaseHandler()

	// Health endpoints, no auth.
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	api := router.Group("/api/v1")

	// Login is the only public API endpoint.
	authHandler := handlers.NewAuthHandler(baseHandler, cfg.AuthService)
	api.POST("/auth/login", authHandler.Login)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.TokenValidator))

	// Products and the stock ledger.
	{
		handler := handlers.NewProductHandler(baseHandler, cfg.ProductService, cfg.StockService, cfg.TxManager)
		products := protected.Group("/products")
		products.GET("", handler.List)
		products.POST("", handler.Create)
		products.GET("/low-stock", handler.LowStock)
		products.GET("/:id", handler.GetByID)
		products.GET("/:id/movements", handler.Movements)
		products.POST("/:id/adjust", handler.AdjustStock)
	}

	// Documents.
	{
		handler := handlers.NewSaleHandler(baseHandler, cfg.SaleService)
		sales := protected.Group("/sales")
		sales.GET("", handler.List)
		sales.POST("", handler.Create)
		sales.GET("/:id", handler.GetByID)
	}
	{
		handler := handlers.NewPurchaseHandler(baseHandler, cfg.PurchaseService)
		purchases := protected.Group("/purchases")
		purchases.GET("", handler.List)
		purchases.POST("", handler.Create)
		purchases.GET("/:id", handler.GetByID)
	}
	{
		handler := handlers.NewRentalHandler(baseHandler, cfg.RentalService)
		rentals := protected.Group("/rentals")
		rentals.GET("", handler.List)
		rentals.POST("", handler.Create)
		rentals.GET("/:id", handler.GetByID)
		rentals.POST("/:id/return", handler.Return)
	}

	// Reports.
	{
		handler := handlers.NewReportsHandler(baseHandler, cfg.ReportService)
		reportsGroup := protected.Group("/reports")
		reportsGroup.GET("/dashboard", handler.Dashboard)
		reportsGroup.GET("/sales", handler.SalesByPeriod)
		reportsGroup.GET("/top-products", handler.TopProducts)
		reportsGroup.GET("/stock-value", handler.StockValuation)
	}

	// Audit history.
	{
		handler := handlers.NewAuditHandler(baseHandler, cfg.AuditAppender)
		protected.GET("/audit/:table/:id", handler.History)
	}

	// Backups are admin only.
	{
		handler := handlers.NewBackupHandler(baseHandler, cfg.BackupManager)
		backups := protected.Group("/backups")
		backups.Use(middleware.RequireRole(auth.RoleAdmin))
		backups.GET("", handler.List)
		backups.POST("", handler.Create)
		backups.POST("/:name/restore", handler.Restore)
		backups.DELETE("/:name", handler.Delete)
	}

	return router
}
