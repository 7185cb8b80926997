// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"botica/internal/domain/ledger"
	"botica/internal/domain/lot"
	"botica/internal/domain/reconcile"
	"botica/internal/domain/sale"
	"botica/internal/infrastructure/http/v1/handlers"
	"botica/internal/infrastructure/http/v1/middleware"
	"botica/internal/infrastructure/storage/postgres"
	"botica/pkg/logger"
)

// RouterConfig holds the wired services the router exposes.
type RouterConfig struct {
	Pool   *postgres.Pool
	Logger *logger.Logger

	LedgerService    *ledger.Service
	LotService       *lot.Service
	SaleService      *sale.Service
	ReconcileService *reconcile.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Actor())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	router.GET("/health", healthHandler.Live)
	router.GET("/health/ready", healthHandler.Ready)

	baseHandler := handlers.NewBaseHandler()

	api := router.Group("/v1")
	{
		stockHandler := handlers.NewStockHandler(baseHandler, cfg.LedgerService)
		stockHandler.RegisterRoutes(api.Group("/stock"))

		lotHandler := handlers.NewLotHandler(baseHandler, cfg.LotService)
		lotHandler.RegisterRoutes(api.Group("/lots"))

		saleHandler := handlers.NewSaleHandler(baseHandler, cfg.SaleService)
		saleHandler.RegisterRoutes(api.Group("/sales"))

		syncHandler := handlers.NewSyncHandler(baseHandler, cfg.ReconcileService)
		syncHandler.RegisterRoutes(api.Group("/sync"))
	}

	return router
}
