// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"invoicely/internal/domain/auth"
	"invoicely/internal/domain/purchase"
	"invoicely/internal/domain/reports"
	"invoicely/internal/domain/stock"
	"invoicely/internal/infrastructure/http/v1/handlers"
	"invoicely/internal/infrastructure/http/v1/middleware"
	"invoicely/pkg/logger"
)

// RouterConfig holds the services the gateway routes to.
type RouterConfig struct {
	Logger *logger.Logger

	// SessionParser reads the bearer token on protected routes.
	SessionParser middleware.SessionParser

	Inventory    *stock.Service
	Purchases    *purchase.Service
	Reports      *reports.Service
	Registration *auth.RegistrationService

	// SyncStatus is the background poller's latest reading.
	SyncStatus handlers.StatusSource

	// AllowedOrigins enables CORS for the browser app. Empty disables CORS.
	AllowedOrigins []string

	Version string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Order matters: errors recorded by later middleware are rendered by ErrorHandler.
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	if cors := middleware.CORS(cfg.AllowedOrigins); cors != nil {
		router.Use(cors)
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.SyncStatus, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	base := handlers.NewBaseHandler()

	v1 := router.Group("/api/v1")
	{
		// Pure calculation, no backend access.
		v1.POST("/tax/calculate", handlers.NewTaxHandler(base).Calculate)

		protected := v1.Group("")
		protected.Use(middleware.Session(cfg.SessionParser))

		registerAuthRoutes(v1, protected, base, cfg)
		registerInventoryRoutes(protected, base, cfg)
		registerPurchaseRoutes(protected, base, cfg)
		registerReportRoutes(protected, base, cfg)

		protected.GET("/sync/status", handlers.NewSyncHandler(base, cfg.SyncStatus).Status)
	}

	return router
}

func registerAuthRoutes(public, protected *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	if cfg.Registration == nil {
		return
	}
	h := handlers.NewAuthHandler(base, cfg.Registration)
	h.RegisterRoutes(public.Group("/auth"), protected.Group("/auth"))
}

func registerInventoryRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewInventoryHandler(base, cfg.Inventory)
	products := rg.Group("/products", middleware.RequireOrganization())
	{
		products.GET("", h.ListProducts)
		products.GET("/:id/movements", h.Movements)
		products.POST("/:id/adjust-stock/preview", h.PreviewAdjustment)
		products.POST("/:id/adjust-stock", h.AdjustStock)
	}
}

func registerPurchaseRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewPurchaseHandler(base, cfg.Purchases)
	scoped := rg.Group("", middleware.RequireOrganization())
	scoped.GET("/suppliers", h.ListSuppliers)

	purchases := scoped.Group("/purchases")
	{
		purchases.GET("", h.List)
		purchases.POST("", h.Create)
		purchases.PUT("/:id", h.Update)
	}
}

func registerReportRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	h := handlers.NewReportsHandler(base, cfg.Reports)
	reportsGroup := rg.Group("/reports", middleware.RequireOrganization())
	{
		reportsGroup.POST("/export", h.Export)
		reportsGroup.POST("/email", h.Email)
	}
}
