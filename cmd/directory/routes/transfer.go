package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/container"
	"github.com/dialwise/directory/cmd/directory/handlers"
	"github.com/dialwise/directory/cmd/directory/middleware"
)

// RegisterTransferRoutes registers the export/import routes
func RegisterTransferRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewTransferHandler(c.Components, c.TransferService)

	api := e.Group("/api/v1")
	api.Use(middleware.ExtractActor()) // Resolve X-Role / X-Actor into context
	{
		api.GET("/export", h.ExportFull)              // GET  /api/v1/export
		api.GET("/export/:network", h.ExportNetwork)  // GET  /api/v1/export/{network}
		api.POST("/import", h.ImportFull)             // POST /api/v1/import
		api.POST("/import/:network", h.ImportNetwork) // POST /api/v1/import/{network}
	}
}
