package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/container"
	"github.com/dialwise/directory/cmd/directory/handlers"
	"github.com/dialwise/directory/cmd/directory/middleware"
)

// RegisterAdminRoutes registers the admin catalog CRUD routes
func RegisterAdminRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewAdminHandler(c.Components, c.CatalogService)

	data := e.Group("/api/v1/data")
	data.Use(middleware.ExtractActor()) // Resolve X-Role / X-Actor into context
	{
		data.GET("", h.GetData)                    // GET    /api/v1/data
		data.POST("", h.CreateService)             // POST   /api/v1/data
		data.PUT("/:service", h.UpdateService)     // PUT    /api/v1/data/{service}
		data.DELETE("/:service", h.DeleteService)  // DELETE /api/v1/data/{service}
	}
}
