package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/database"
	"github.com/klncollege/od-provider/utils/response"
)

// HandleCheckHealth reports whether the API and its database are reachable
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			return response.Error(c, fiber.StatusServiceUnavailable, "Database is unreachable", "DB_UNAVAILABLE")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	}
}
