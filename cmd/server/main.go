// Package main is the entry point for the distrisur API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"distrisur/internal/domain/catalogs/customer"
	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/domain/inventory"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/fiscalgw"
	v1 "distrisur/internal/infrastructure/http/v1"
	"distrisur/internal/infrastructure/notification"
	"distrisur/internal/infrastructure/pricing"
	"distrisur/internal/infrastructure/storage/postgres"
	"distrisur/internal/infrastructure/storage/postgres/catalog_repo"
	"distrisur/internal/infrastructure/storage/postgres/inventory_repo"
	"distrisur/internal/infrastructure/storage/postgres/sales_repo"
	"distrisur/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting distrisur server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(mustEnv("DATABASE_URL"))
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	productRepo := catalog_repo.NewProductRepo(txManager)
	customerRepo := catalog_repo.NewCustomerRepo(txManager)
	warehouseRepo := catalog_repo.NewWarehouseRepo(txManager)
	ledgerRepo := inventory_repo.NewLedgerRepo(txManager)
	saleRepo := sales_repo.NewSaleRepo(txManager)
	invoiceRepo := sales_repo.NewInvoiceRepo(txManager)

	// --- Notifier ---
	var notifier inventory.Notifier
	if broker := getEnv("KAFKA_BROKER", ""); broker != "" {
		kafkaNotifier := notification.NewKafkaNotifier(broker, getEnv("KAFKA_ALERT_TOPIC", "distrisur.alerts"))
		defer kafkaNotifier.Close()
		notifier = kafkaNotifier
		log.Infow("kafka notifier initialized", "broker", broker)
	} else {
		notifier = notification.NewLogNotifier()
		log.Info("no broker configured, alerts go to the log")
	}

	// --- Services ---
	productService := product.NewService(productRepo)
	customerService := customer.NewService(customerRepo)
	warehouseService := warehouse.NewService(warehouseRepo)

	inventoryService := inventory.NewService(
		ledgerRepo,
		productRepo,
		warehouseService,
		txManager,
		notifier,
		int64(getEnvInt("LOW_STOCK_THRESHOLD", 0)),
	)

	salesService := sales.NewService(sales.Config{
		Repo:       saleRepo,
		Invoices:   invoiceRepo,
		Gateway:    fiscalgw.NewStubGateway(invoiceRepo),
		Customers:  customerService,
		Products:   productRepo,
		Warehouses: warehouseService,
		Ledger:     inventoryService,
		Pricing:    pricing.NewPriceListResolver(txManager),
		Promotions: pricing.NewRuleEngine(nil),
		Coupons:    pricing.NewCouponRecorder(txManager),
		TxManager:  txManager,
	})

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:       pool,
		Logger:     log,
		Inventory:  inventoryService,
		Sales:      salesService,
		Products:   productService,
		Warehouses: warehouseService,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
