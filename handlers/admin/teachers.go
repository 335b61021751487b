package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/services"
	"github.com/klncollege/od-provider/utils/response"
	"github.com/klncollege/od-provider/utils/validation"
	"gorm.io/gorm"
)

// AdminHandler handles the admin surface: teacher management, dashboard
// statistics and the audit trail.
type AdminHandler struct {
	db             *gorm.DB
	teacherService *services.TeacherService
	statsService   *services.StatsService
	validator      *validation.Validator
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, teacherService *services.TeacherService, statsService *services.StatsService) *AdminHandler {
	return &AdminHandler{
		db:             db,
		teacherService: teacherService,
		statsService:   statsService,
		validator:      validation.NewValidator(),
	}
}

// ListTeachers handles GET /api/v1/admin/teachers
func (h *AdminHandler) ListTeachers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)
	department := c.Query("department")

	teachers, total, err := h.teacherService.List(c.Context(), department, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to list teachers")
	}

	return response.Paginated(c, teachers, response.CalculatePagination(page, limit, total))
}

// CreateTeacher handles POST /api/v1/admin/teachers
func (h *AdminHandler) CreateTeacher(c *fiber.Ctx) error {
	var in services.CreateTeacherInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(in); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	created, err := h.teacherService.Create(c.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			return response.Conflict(c, "An account with this email already exists")
		case errors.Is(err, services.ErrInvalidLevel):
			return response.ValidationError(c, map[string]string{
				"approval_level": "approval_level must be mentor, hod or principal",
			})
		default:
			return response.InternalServerError(c, "Failed to create teacher")
		}
	}

	return response.Created(c, created)
}

// GetTeacher handles GET /api/v1/admin/teachers/:id
func (h *AdminHandler) GetTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid teacher ID")
	}

	teacher, err := h.teacherService.Get(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to fetch teacher")
	}

	return response.Success(c, teacher)
}

// UpdateTeacher handles PUT /api/v1/admin/teachers/:id
func (h *AdminHandler) UpdateTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid teacher ID")
	}

	var in services.UpdateTeacherInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	teacher, err := h.teacherService.Update(c.Context(), uint(id), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTeacherNotFound):
			return response.NotFound(c, "Teacher not found")
		case errors.Is(err, services.ErrInvalidLevel):
			return response.ValidationError(c, map[string]string{
				"approval_level": "approval_level must be mentor, hod or principal",
			})
		default:
			return response.InternalServerError(c, "Failed to update teacher")
		}
	}

	return response.Success(c, teacher)
}

// DeleteTeacher handles DELETE /api/v1/admin/teachers/:id
func (h *AdminHandler) DeleteTeacher(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid teacher ID")
	}

	if err := h.teacherService.Delete(c.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, services.ErrTeacherNotFound):
			return response.NotFound(c, "Teacher not found")
		case errors.Is(err, services.ErrTeacherHasPending):
			return response.Conflict(c, "Teacher still has pending approvals. Reassign or resolve them first")
		default:
			return response.InternalServerError(c, "Failed to delete teacher")
		}
	}

	return response.Success(c, fiber.Map{
		"message": "Teacher deleted",
	})
}

// ToggleTeacherActive handles POST /api/v1/admin/teachers/:id/toggle-active
func (h *AdminHandler) ToggleTeacherActive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid teacher ID")
	}

	teacher, err := h.teacherService.ToggleActive(c.Context(), uint(id))
	if err != nil {
		if errors.Is(err, services.ErrTeacherNotFound) {
			return response.NotFound(c, "Teacher not found")
		}
		return response.InternalServerError(c, "Failed to update teacher")
	}

	return response.Success(c, teacher)
}
