package handlers

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/middleware"
	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/service"
	"github.com/dialwise/directory/common/bootstrap"
)

// AdminHandler handles admin CRUD over the catalog
type AdminHandler struct {
	components *bootstrap.Components
	catalog    *service.CatalogService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(components *bootstrap.Components, catalog *service.CatalogService) *AdminHandler {
	return &AdminHandler{
		components: components,
		catalog:    catalog,
	}
}

// GetData returns the full catalog keyed by service id
// GET /api/v1/data
func (h *AdminHandler) GetData(c echo.Context) error {
	ctx := c.Request().Context()

	full, err := h.catalog.Full(ctx)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, full)
}

// CreateService adds a new catalog entry
// POST /api/v1/data
func (h *AdminHandler) CreateService(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var req struct {
		ID     string                                `json:"id"`
		Name   string                                `json:"name"`
		Note   string                                `json:"note"`
		Telcos map[models.Network]models.TelcoRecord `json:"telcos"`
		Active *bool                                 `json:"active"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	entry := &models.ServiceEntry{
		ID:     req.ID,
		Name:   req.Name,
		Note:   req.Note,
		Telcos: req.Telcos,
		Active: active,
	}

	created, err := h.catalog.Create(ctx, actor, entry)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	h.components.Logger.Info("service created", "service_id", created.ID, "actor", actor.Name)
	return c.JSON(http.StatusCreated, created)
}

// UpdateService applies a JSON merge patch to an entry
// PUT /api/v1/data/:service
func (h *AdminHandler) UpdateService(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	patch, err := io.ReadAll(c.Request().Body)
	if err != nil || len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "request body is required",
		})
	}

	updated, err := h.catalog.Merge(ctx, actor, c.Param("service"), patch)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, updated)
}

// DeleteService removes an entry from the catalog
// DELETE /api/v1/data/:service
func (h *AdminHandler) DeleteService(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	if err := h.catalog.Delete(ctx, actor, c.Param("service")); err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}
