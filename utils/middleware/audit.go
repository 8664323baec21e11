package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
)

// AdminAuditLog records admin mutations against a resource. It must run
// after RequireAdmin so the admin identity is in the request context.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		adminID, ok := GetUserID(c)
		if !ok {
			return c.Next()
		}

		resourceID := c.Params("id")

		var newValue datatypes.JSON
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut {
			if body := c.Body(); len(body) > 0 && json.Valid(body) {
				newValue = datatypes.JSON(append([]byte(nil), body...))
			}
		}

		// Capture request metadata before the handler returns; fiber
		// recycles the context afterwards.
		entry := model.AdminAuditLog{
			AdminID:     adminID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			NewValue:    newValue,
			IPAddress:   c.IP(),
			UserAgent:   c.Get("User-Agent"),
			Description: c.Method() + " " + c.Path(),
		}

		err := c.Next()
		if err == nil && c.Response().StatusCode() < 400 {
			go db.Create(&entry)
		}
		return err
	}
}
