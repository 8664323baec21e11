package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/coursehunt/api/database"
	"github.com/coursehunt/api/utils/response"
)

// HandleCheckHealth reports service and database health
func HandleCheckHealth(store database.Storage) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status := "ok"
		dbStatus := "ok"
		if err := store.HealthCheck(); err != nil {
			status = "degraded"
			dbStatus = err.Error()
		}

		return response.Success(c, fiber.Map{
			"status":   status,
			"database": dbStatus,
		})
	}
}
