package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/middleware"
	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/service"
	"github.com/dialwise/directory/common/bootstrap"
)

// TransferHandler handles export/import of the catalog
type TransferHandler struct {
	components *bootstrap.Components
	transfer   *service.TransferService
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(components *bootstrap.Components, transfer *service.TransferService) *TransferHandler {
	return &TransferHandler{
		components: components,
		transfer:   transfer,
	}
}

// ExportFull returns the full-schema projection
// GET /api/v1/export
func (h *TransferHandler) ExportFull(c echo.Context) error {
	ctx := c.Request().Context()

	exported, err := h.transfer.ExportFull(ctx)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, exported)
}

// ExportNetwork returns one network's subset projection
// GET /api/v1/export/:network
func (h *TransferHandler) ExportNetwork(c echo.Context) error {
	ctx := c.Request().Context()

	exported, err := h.transfer.ExportNetwork(ctx, c.Param("network"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, exported)
}

// ImportFull replaces the catalog wholesale
// POST /api/v1/import
func (h *TransferHandler) ImportFull(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var payload map[string]service.ExportEntry
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid import payload",
		})
	}

	count, err := h.transfer.ImportFull(ctx, actor, payload)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"imported": count,
	})
}

// ImportNetwork merges one network's subset into the catalog
// POST /api/v1/import/:network
func (h *TransferHandler) ImportNetwork(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var payload map[string]models.TelcoRecord
	if err := c.Bind(&payload); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid import payload",
		})
	}

	applied, skipped, err := h.transfer.ImportNetwork(ctx, actor, c.Param("network"), payload)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"applied": applied,
		"skipped": skipped,
	})
}
