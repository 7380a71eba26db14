package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/common/apperr"
	"github.com/dialwise/directory/common/logger"
)

// respondError maps a service error onto the API's status codes.
// Taxonomy errors carry their own status; anything else is a 500 and
// gets logged with its stack.
func respondError(c echo.Context, log *logger.Logger, err error) error {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(status, map[string]interface{}{
			"error": "internal error",
		})
	}
	return c.JSON(status, map[string]interface{}{
		"error": err.Error(),
	})
}
