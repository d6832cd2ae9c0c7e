package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"billing-backend/internal/archive"
	"billing-backend/internal/auth"
	"billing-backend/internal/cache"
	"billing-backend/internal/config"
	"billing-backend/internal/database"
	"billing-backend/internal/db"
	"billing-backend/internal/events"
	h "billing-backend/internal/http"
	"billing-backend/internal/handlers"
	"billing-backend/internal/health"
	"billing-backend/internal/middleware"
	"billing-backend/internal/repositories"
	"billing-backend/internal/repositories/memory"
	"billing-backend/internal/services"
	"billing-backend/migrations"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply database migrations and exit")
	flag.Parse()

	cfg := config.Load()

	store, closeStore := openStore(cfg)
	defer closeStore()
	if *migrateOnly {
		log.Println("Migrations applied, exiting")
		return
	}

	// Redis is optional; without it settings are read from the store and
	// Idempotency-Key retries are not deduplicated.
	if err := cache.Init(cfg.Redis); err != nil {
		log.Printf("[Redis] Continuing without cache: %v", err)
	}
	defer cache.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT)

	// Initialize services
	hub := events.NewHub(256)
	go hub.Run(ctx)

	userService := services.NewUserService(store, jwtManager)
	if err := userService.EnsureAdmin(ctx, cfg.Defaults.AdminUsername, cfg.Defaults.AdminPassword, cfg.Defaults.AdminFullName); err != nil {
		log.Fatalf("Failed to seed admin user: %v", err)
	}

	pdfService := services.NewInvoicePDFService(nil)
	archiveClient, err := archive.New(ctx, cfg.Archive)
	if err != nil {
		log.Fatalf("Failed to configure invoice archive: %v", err)
	}
	if archiveClient != nil {
		pdfService.Archive = archiveClient
	}

	productService := services.NewProductService(store, cfg.Billing)
	customerService := services.NewCustomerService(store)
	salesPersonService := services.NewSalesPersonService(store)
	settingsService := services.NewSettingsService(store, cfg.Billing)
	billingService := services.NewBillingService(store, cfg.Billing, hub)
	stockService := services.NewStockService(store, cfg.Billing, hub)

	// Initialize health checker
	var cachePinger health.Pinger
	if cache.Enabled() {
		cachePinger = health.PingFunc(cache.Ping)
	}
	healthChecker := health.NewHealthChecker(store, cachePinger)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userService)
	corsMiddleware := middleware.NewCORS(cfg)
	requestLogger := middleware.NewRequestLogger(nil)
	defer requestLogger.Close()

	idempotencyTTL := time.Duration(cfg.Redis.IdempotencyTTLMinutes) * time.Minute
	if idempotencyTTL <= 0 {
		idempotencyTTL = 24 * time.Hour
	}

	router := h.NewRouter(
		handlers.NewAuthHandler(userService),
		handlers.NewProductHandler(productService, stockService),
		handlers.NewCustomerHandler(customerService),
		handlers.NewSalesPersonHandler(salesPersonService),
		handlers.NewBillHandler(billingService, stockService, settingsService, pdfService),
		handlers.NewStockHandler(stockService),
		handlers.NewSettingsHandler(settingsService),
		handlers.NewHealthHandler(healthChecker),
		authMiddleware,
		cache.Responses{},
		idempotencyTTL,
		hub,
	)

	// Wrap with panic recovery, request logging and CORS
	handler := middleware.PanicRecovery(requestLogger.Handler(corsMiddleware(router)))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server running on %s (store: %s)", addr, cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Graceful shutdown failed: %v", err)
	}
}

// openStore connects to PostgreSQL and applies pending migrations, or returns
// the in-process store when the memory driver is configured.
func openStore(cfg *config.Config) (repositories.Store, func()) {
	if cfg.Database.Driver == "memory" {
		log.Println("[DB] Using in-memory store; data is lost on restart")
		return memory.New(), func() {}
	}

	pool := db.Connect(cfg)

	log.Println("Running database migrations...")
	migrator := database.NewMigrator(pool, migrations.FS)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		pool.Close()
		log.Fatalf("Failed to run migrations: %v", err)
	}

	return repositories.NewPostgresStore(pool), pool.Close
}
