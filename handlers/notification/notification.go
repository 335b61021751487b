package notification

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/services"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/response"
	"gorm.io/gorm"
)

// NotificationHandler handles in-app notification endpoints
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/v1/notifications
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	unreadOnly := c.Query("unread") == "true"

	notifications, total, err := h.notificationService.ListForUser(c.Context(), user.ID, unreadOnly, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list notifications")
	}

	return response.Paginated(c, notifications, response.CalculatePagination(page, limit, total))
}

// MarkRead handles POST /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid notification ID")
	}

	if err := h.notificationService.MarkRead(c.Context(), user.ID, uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Notification not found")
		}
		return response.InternalServerError(c, "Failed to update notification")
	}

	return response.Success(c, fiber.Map{
		"message": "Notification marked as read",
	})
}
