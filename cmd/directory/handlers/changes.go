package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/middleware"
	"github.com/dialwise/directory/cmd/directory/models"
	"github.com/dialwise/directory/cmd/directory/service"
	"github.com/dialwise/directory/common/bootstrap"
)

// ChangeHandler handles the change-request workflow endpoints
type ChangeHandler struct {
	components *bootstrap.Components
	ledger     *service.LedgerService
}

// NewChangeHandler creates a new change handler
func NewChangeHandler(components *bootstrap.Components, ledger *service.LedgerService) *ChangeHandler {
	return &ChangeHandler{
		components: components,
		ledger:     ledger,
	}
}

// Create files or updates a draft change request
// POST /api/v1/changes
func (h *ChangeHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	var req struct {
		ServiceID string `json:"service_id"`
		Field     string `json:"field"`
		NewValue  string `json:"new_value"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid request body",
		})
	}
	if req.ServiceID == "" || req.Field == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "service_id and field are required",
		})
	}

	draft, err := h.ledger.CreateOrUpdateDraft(ctx, actor, req.ServiceID, req.Field, req.NewValue)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusCreated, draft)
}

// List returns change requests, optionally filtered
// GET /api/v1/changes?service=...&status=...
func (h *ChangeHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	requests, err := h.ledger.List(ctx, c.QueryParam("service"), c.QueryParam("status"))
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"changes": requests,
		"count":   len(requests),
	})
}

// Get returns one change request
// GET /api/v1/changes/:id
func (h *ChangeHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid change request id",
		})
	}

	req, err := h.ledger.Get(ctx, id)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, req)
}

// Submit moves a draft to pending
// POST /api/v1/changes/:id/submit
func (h *ChangeHandler) Submit(c echo.Context) error {
	return h.transition(c, h.ledger.Submit)
}

// Recall pulls a pending request back to draft
// POST /api/v1/changes/:id/recall
func (h *ChangeHandler) Recall(c echo.Context) error {
	return h.transition(c, h.ledger.Recall)
}

// Approve accepts a pending request and applies it to the catalog
// POST /api/v1/changes/:id/approve
func (h *ChangeHandler) Approve(c echo.Context) error {
	return h.transition(c, h.ledger.Approve)
}

// Reject declines a pending request
// POST /api/v1/changes/:id/reject
func (h *ChangeHandler) Reject(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid change request id",
		})
	}

	var req struct {
		Comments string `json:"comments"`
	}
	// Body is optional on reject
	_ = c.Bind(&req)

	rejected, err := h.ledger.Reject(ctx, actor, id, req.Comments)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, rejected)
}

// Cancel deletes a draft
// DELETE /api/v1/changes/:id
func (h *ChangeHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid change request id",
		})
	}

	if err := h.ledger.Cancel(ctx, actor, id); err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.NoContent(http.StatusNoContent)
}

// transition runs one of the uniform id-only transitions
func (h *ChangeHandler) transition(c echo.Context, fn func(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.ChangeRequest, error)) error {
	ctx := c.Request().Context()

	actor, err := middleware.RequireActor(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"error": "invalid change request id",
		})
	}

	result, err := fn(ctx, actor, id)
	if err != nil {
		return respondError(c, h.components.Logger, err)
	}

	return c.JSON(http.StatusOK, result)
}
