package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/service"
	"github.com/dialwise/directory/common/bootstrap"
)

// CatalogHandler handles public read-only catalog requests
type CatalogHandler struct {
	components *bootstrap.Components
	catalog    *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(components *bootstrap.Components, catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		components: components,
		catalog:    catalog,
	}
}

// Lookup returns the dial code record for one (service, network) pair
// GET /api/v1/lookup?service=...&network=...
func (h *CatalogHandler) Lookup(c echo.Context) error {
	ctx := c.Request().Context()
	serviceID := c.QueryParam("service")
	network := c.QueryParam("network")

	if serviceID == "" || network == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "service and network query parameters are required",
		})
	}

	rec, err := h.catalog.Lookup(ctx, serviceID, network)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, rec)
}

// Services lists service display names, optionally restricted to one network
// GET /api/v1/services?network=...
func (h *CatalogHandler) Services(c echo.Context) error {
	ctx := c.Request().Context()
	network := c.QueryParam("network")

	names, err := h.catalog.ListNames(ctx, network)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	// Contract shape is the bare sorted array
	return c.JSON(http.StatusOK, names)
}

// Compare returns each network's dial code for one service
// GET /api/v1/compare/:service
func (h *CatalogHandler) Compare(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.catalog.Compare(ctx, c.Param("service"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, result)
}
