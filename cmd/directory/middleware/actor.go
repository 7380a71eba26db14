package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/dialwise/directory/cmd/directory/models"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ActorKey is the context key for the resolved actor
	ActorKey ContextKey = "actor"

	// RoleHeader carries the session role: "admin" or a network id.
	// This is a trusted internal tool; the headers are the session.
	RoleHeader = "X-Role"

	// NameHeader carries the actor's display name
	NameHeader = "X-Actor"
)

// ExtractActor resolves the acting identity from the X-Role / X-Actor
// headers and stores it in the request context. Requests without a
// role pass through anonymously; mutating handlers enforce presence
// via RequireActor.
//
// Usage:
//
//	g := e.Group("/api/v1/data")
//	g.Use(middleware.ExtractActor())
func ExtractActor() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleHeader := c.Request().Header.Get(RoleHeader)
			if roleHeader == "" {
				return next(c)
			}

			role, err := models.ParseRole(roleHeader)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]interface{}{
					"error": "unknown role: " + roleHeader,
				})
			}

			actor := models.Actor{
				Name: c.Request().Header.Get(NameHeader),
				Role: role,
			}
			c.Set(string(ActorKey), actor)
			// Plain string key for the common rate-limit middleware
			c.Set("actor_name", actor.Name)

			return next(c)
		}
	}
}

// GetActor retrieves the actor from the request context
func GetActor(c echo.Context) (models.Actor, bool) {
	actor, ok := c.Get(string(ActorKey)).(models.Actor)
	return actor, ok
}

// RequireActor ensures an actor exists in context.
// Returns a 401 error if not found.
func RequireActor(c echo.Context) (models.Actor, error) {
	actor, ok := GetActor(c)
	if !ok {
		return models.Actor{}, echo.NewHTTPError(http.StatusUnauthorized,
			"authentication required (X-Role header missing)")
	}
	return actor, nil
}
