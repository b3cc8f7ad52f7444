// Package main is the entry point for the ferreteria API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ferreteria/internal/backup"
	"ferreteria/internal/config"
	"ferreteria/internal/domain/audit"
	"ferreteria/internal/domain/auth"
	"ferreteria/internal/domain/catalogs/product"
	"ferreteria/internal/domain/documents/purchase"
	"ferreteria/internal/domain/documents/rental"
	"ferreteria/internal/domain/documents/sale"
	"ferreteria/internal/domain/reports"
	"ferreteria/internal/domain/stock"
	v1 "ferreteria/internal/infrastructure/http/v1"
	"ferreteria/internal/infrastructure/storage/postgres"
	"ferreteria/internal/infrastructure/storage/postgres/auth_repo"
	"ferreteria/internal/infrastructure/storage/postgres/catalog_repo"
	"ferreteria/internal/infrastructure/storage/postgres/document_repo"
	"ferreteria/internal/infrastructure/storage/postgres/register_repo"
	"ferreteria/internal/infrastructure/storage/postgres/report_repo"
	"ferreteria/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: !cfg.IsProduction(),
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting ferreteria server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = int32(cfg.DBMaxConns)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)
	txManager.SetDefaultIsolation(cfg.DefaultIsolation)

	// --- Audit trail ---
	auditRepo, err := postgres.NewAuditRepo(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit repo", "error", err)
	}
	auditor := audit.NewAppender(auditRepo)

	// --- Stock ledger ---
	stockRepo := register_repo.NewStockRepo(txManager)
	stockService := stock.NewService(stockRepo)

	// --- Catalogs ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	productService := product.NewService(productRepo, txManager, auditor)

	// --- Documents ---
	saleService := sale.NewService(document_repo.NewSaleRepo(txManager), stockService, auditor, txManager)
	purchaseService := purchase.NewService(document_repo.NewPurchaseRepo(txManager), stockService, auditor, txManager)
	rentalService := rental.NewService(document_repo.NewRentalRepo(txManager), stockService, auditor, txManager)

	// --- Reports ---
	reportService := reports.NewService(report_repo.NewReportRepo(txManager), txManager)

	// --- Auth ---
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	authService := auth.NewService(auth_repo.NewCollaboratorRepo(txManager), jwtService)

	// --- Backups ---
	backupManager := backup.NewManager(backup.Config{
		DSN:       cfg.DatabaseURL,
		Dir:       cfg.BackupDir,
		Retention: cfg.BackupRetention,
	}, backup.NewPgRunner())

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.BackupCron != "" || cfg.BackupInterval > 0 {
		scheduler, err := backup.NewScheduler(backupManager, backup.ScheduleConfig{
			CronExpr:      cfg.BackupCron,
			Interval:      cfg.BackupInterval,
			PruneAfterRun: cfg.BackupRetention > 0,
		})
		if err != nil {
			log.Fatalw("invalid backup schedule", "error", err)
		}
		go scheduler.Run(schedulerCtx)
		log.Infow("backup scheduler started", "cron", cfg.BackupCron, "interval", cfg.BackupInterval)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:      pool,
		TxManager: txManager,

		TokenValidator: jwtService,

		AuthService:     authService,
		ProductService:  productService,
		StockService:    stockService,
		SaleService:     saleService,
		PurchaseService: purchaseService,
		RentalService:   rentalService,
		ReportService:   reportService,
		AuditAppender:   auditor,
		BackupManager:   backupManager,
	})

	// --- HTTP server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
