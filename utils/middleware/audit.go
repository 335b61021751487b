package middleware

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	"gorm.io/gorm"
)

// AdminAuditLog creates an audit log entry for admin actions.
// Must run after an auth middleware that stores the user in context.
func AdminAuditLog(db *gorm.DB, action, resource string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		admin, ok := GetUser(c)
		if !ok || admin.Role != model.RoleAdmin {
			return c.Next()
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsedID, err := strconv.ParseUint(id, 10, 32); err == nil {
				resourceID = uint(parsedID)
			}
		}

		// Capture the existing teacher record before mutation
		var oldValue []byte
		if resourceID > 0 && resource == "teachers" &&
			(c.Method() == fiber.MethodPut || c.Method() == fiber.MethodPatch || c.Method() == fiber.MethodDelete) {
			var teacher model.User
			if err := db.Where("role = ?", model.RoleTeacher).First(&teacher, resourceID).Error; err == nil {
				oldValue, _ = json.Marshal(teacher)
			}
		}

		var newValue []byte
		if c.Method() == fiber.MethodPost || c.Method() == fiber.MethodPut || c.Method() == fiber.MethodPatch {
			if body := c.Body(); len(body) > 0 && json.Valid(body) {
				newValue = append(newValue, body...)
			}
		}

		ip := c.IP()
		userAgent := c.Get("User-Agent")
		description := c.Method() + " " + c.Path()

		err := c.Next()

		// Only log actions that actually took effect
		if c.Response().StatusCode() >= 400 {
			return err
		}

		auditLog := model.AdminAuditLog{
			AdminID:     admin.ID,
			Action:      action,
			Resource:    resource,
			ResourceID:  resourceID,
			OldValue:    oldValue,
			NewValue:    newValue,
			IPAddress:   ip,
			UserAgent:   userAgent,
			Description: description,
		}
		go db.Create(&auditLog)

		return err
	}
}
