// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"distrisur/internal/domain/catalogs/product"
	"distrisur/internal/domain/catalogs/warehouse"
	"distrisur/internal/domain/inventory"
	"distrisur/internal/domain/sales"
	"distrisur/internal/infrastructure/http/v1/handlers"
	"distrisur/internal/infrastructure/http/v1/middleware"
	"distrisur/internal/infrastructure/storage/postgres"
	"distrisur/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool *postgres.Pool

	Logger *logger.Logger

	Inventory  *inventory.Service
	Sales      *sales.Service
	Products   *product.Service
	Warehouses *warehouse.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	inventoryHandler := handlers.NewInventoryHandler(base, cfg.Inventory)
	salesHandler := handlers.NewSalesHandler(base, cfg.Sales)
	productHandler := handlers.NewProductHandler(base, cfg.Products)
	warehouseHandler := handlers.NewWarehouseHandler(base, cfg.Warehouses)

	api := router.Group("/api/v1")
	{
		inv := api.Group("/inventory")
		{
			inv.POST("/receive", inventoryHandler.Receive)
			inv.POST("/adjust", inventoryHandler.Adjust)
			inv.POST("/transfer", inventoryHandler.Transfer)
			inv.GET("/stock/:productId", inventoryHandler.GetStock)
			inv.GET("/history/:productId", inventoryHandler.GetHistory)
			inv.GET("/alerts/low-stock", inventoryHandler.GetLowStock)
			inv.GET("/expiration/report", inventoryHandler.GetExpirationReport)
			inv.GET("/expiration/expiring", inventoryHandler.GetExpiring)
			inv.GET("/expiration/expired", inventoryHandler.GetExpired)
		}

		sl := api.Group("/sales")
		{
			sl.POST("", salesHandler.Create)
			sl.GET("", salesHandler.List)
			sl.GET("/:id", salesHandler.Get)
			sl.POST("/:id/void", salesHandler.Void)
			sl.DELETE("/:id", salesHandler.Delete)
		}

		checkout := api.Group("/checkout")
		{
			checkout.POST("", salesHandler.Checkout)
			checkout.POST("/preview", salesHandler.Preview)
		}

		products := api.Group("/products")
		{
			products.POST("", productHandler.Create)
			products.GET("", productHandler.List)
			products.GET("/:id", productHandler.Get)
		}

		warehouses := api.Group("/warehouses")
		{
			warehouses.POST("", warehouseHandler.Create)
			warehouses.GET("", warehouseHandler.List)
			warehouses.GET("/:id", warehouseHandler.Get)
		}
	}

	return router
}
