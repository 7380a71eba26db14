package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/container"
	"github.com/dialwise/directory/cmd/directory/handlers"
	"github.com/dialwise/directory/cmd/directory/middleware"
)

// RegisterChangeRoutes registers the change-request workflow routes
func RegisterChangeRoutes(e *echo.Echo, c *container.Container) {
	h := handlers.NewChangeHandler(c.Components, c.LedgerService)

	changes := e.Group("/api/v1/changes")
	changes.Use(middleware.ExtractActor()) // Resolve X-Role / X-Actor into context
	{
		changes.POST("", h.Create)               // POST   /api/v1/changes
		changes.GET("", h.List)                  // GET    /api/v1/changes?service=&status=
		changes.GET("/:id", h.Get)               // GET    /api/v1/changes/{id}
		changes.POST("/:id/submit", h.Submit)    // POST   /api/v1/changes/{id}/submit
		changes.POST("/:id/recall", h.Recall)    // POST   /api/v1/changes/{id}/recall
		changes.POST("/:id/approve", h.Approve)  // POST   /api/v1/changes/{id}/approve
		changes.POST("/:id/reject", h.Reject)    // POST   /api/v1/changes/{id}/reject
		changes.DELETE("/:id", h.Cancel)         // DELETE /api/v1/changes/{id}
	}
}
