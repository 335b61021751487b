package admin

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/utils/response"
)

// Dashboard handles GET /api/v1/admin/dashboard
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.statsService.Dashboard(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to compute dashboard statistics")
	}

	return response.Success(c, stats)
}

// ListAuditLogs handles GET /api/v1/admin/audit
func (h *AdminHandler) ListAuditLogs(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}

	query := h.db.Model(&model.AdminAuditLog{})
	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count audit logs")
	}

	var logs []model.AdminAuditLog
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&logs).Error; err != nil {
		return response.InternalServerError(c, "Failed to list audit logs")
	}

	return response.Paginated(c, logs, response.CalculatePagination(page, limit, total))
}
