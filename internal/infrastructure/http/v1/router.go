// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"freshsave/internal/domain/home"
	"freshsave/internal/domain/inventory"
	"freshsave/internal/infrastructure/http/v1/handlers"
	"freshsave/internal/infrastructure/http/v1/middleware"
	"freshsave/pkg/logger"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Store backs the readiness probe
	Store handlers.Pinger

	// StoreDriver and Version are reported by /health/info
	StoreDriver string
	Version     string

	// Repository serves item reads
	Repository inventory.Repository

	// Coordinator owns home state and item writes
	Coordinator *home.Coordinator

	// ExpiringWindowDays classifies items in responses
	ExpiringWindowDays int

	// Now overrides the clock used for expiry status; nil means time.Now
	Now func() time.Time
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger.WithComponent("http")))
	router.Use(middleware.ErrorHandler())

	healthHandler := handlers.NewHealthHandler(cfg.Store, cfg.StoreDriver, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler(cfg.ExpiringWindowDays, cfg.Now)

	api := router.Group("/api/v1")
	{
		itemHandler := handlers.NewItemHandler(base, cfg.Repository, cfg.Coordinator)
		RegisterItemRoutes(api.Group("/items"), itemHandler)
		api.GET("/suggestions", itemHandler.Suggestions)

		homeHandler := handlers.NewHomeHandler(base, cfg.Coordinator)
		RegisterHomeRoutes(api.Group("/home"), homeHandler)
	}

	return router
}
