package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dialwise/directory/cmd/directory/container"
	dirmw "github.com/dialwise/directory/cmd/directory/middleware"
	"github.com/dialwise/directory/cmd/directory/repository"
	"github.com/dialwise/directory/cmd/directory/routes"
	"github.com/dialwise/directory/common/bootstrap"
	commonmw "github.com/dialwise/directory/common/middleware"
)

func main() {
	ctx := context.Background()

	// Bootstrap common components (config, logger, store, cache, telemetry)
	components, err := bootstrap.Setup(ctx, "directory",
		bootstrap.WithDBInitHook(repository.InitSchema),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap directory: %v\n", err)
		os.Exit(1)
	}
	defer components.Shutdown(ctx)

	// Initialize service container (singleton pattern - all services created once)
	serviceContainer, err := container.NewContainer(components)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize service container: %v\n", err)
		os.Exit(1)
	}

	// Initialize Echo server
	e := setupEcho()

	// Setup middleware
	setupMiddleware(e, serviceContainer)

	// Setup health check
	setupHealthCheck(e, serviceContainer)

	// Register all routes
	registerRoutes(e, serviceContainer)

	// Start server
	startServer(e, components)
}

// setupEcho initializes the Echo server with basic configuration
func setupEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	return e
}

// setupMiddleware configures all middleware for the Echo server
func setupMiddleware(e *echo.Echo, c *container.Container) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	if c.Components.Telemetry != nil {
		telemetry := c.Components.Telemetry
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(ec echo.Context) error {
				start := time.Now()
				err := next(ec)
				telemetry.RecordDuration(ec.Request().Method+" "+ec.Path(), start)
				return err
			}
		})
	}

	if c.RateLimiter != nil {
		cfg := c.Components.Config.RateLimit
		e.Use(commonmw.GlobalRateLimitMiddleware(c.RateLimiter, cfg.GlobalPerMinute))
		// The actor must be resolved before the per-actor limiter; group
		// middleware runs after globals, so resolve it here as well
		e.Use(dirmw.ExtractActor())
		e.Use(commonmw.ActorRateLimitMiddleware(c.RateLimiter, cfg.ActorPerMinute))
	}
}

// setupHealthCheck registers the health check endpoint
func setupHealthCheck(e *echo.Echo, c *container.Container) {
	e.GET("/health", func(ec echo.Context) error {
		ctx := ec.Request().Context()

		status := "ok"
		httpStatus := http.StatusOK
		if err := c.Components.Health(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		} else if err := c.CatalogRepo.Health(ctx); err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		return ec.JSON(httpStatus, map[string]interface{}{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"mode":      c.Components.Config.Store.Backend,
			"service":   c.Components.Config.Service.Name,
		})
	})
}

// registerRoutes registers all application routes using the service container
func registerRoutes(e *echo.Echo, serviceContainer *container.Container) {
	routes.RegisterCatalogRoutes(e, serviceContainer)
	routes.RegisterAdminRoutes(e, serviceContainer)
	routes.RegisterChangeRoutes(e, serviceContainer)
	routes.RegisterTransferRoutes(e, serviceContainer)
}

// startServer starts the Echo server on the configured port
func startServer(e *echo.Echo, components *bootstrap.Components) {
	port := components.Config.Service.Port
	components.Logger.Info("Starting directory", "port", port)

	// Start with graceful shutdown
	if err := e.Start(fmt.Sprintf(":%d", port)); err != nil {
		components.Logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
