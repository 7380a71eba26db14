package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/container"
	"github.com/dialwise/directory/cmd/directory/handlers"
)

// RegisterCatalogRoutes registers the public read-only catalog routes
func RegisterCatalogRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewCatalogHandler(c.Components, c.CatalogService)

	api := e.Group("/api/v1")
	{
		api.GET("/lookup", h.Lookup)             // GET /api/v1/lookup?service=&network=
		api.GET("/services", h.Services)         // GET /api/v1/services?network=
		api.GET("/compare/:service", h.Compare)  // GET /api/v1/compare/{service}
	}
}
