package teacher

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/services"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/response"
)

// TeacherHandler handles the reviewer-facing endpoints
type TeacherHandler struct {
	approvalService *services.ApprovalService
}

// NewTeacherHandler creates a new teacher handler
func NewTeacherHandler(approvalService *services.ApprovalService) *TeacherHandler {
	return &TeacherHandler{approvalService: approvalService}
}

// Queue handles GET /api/v1/teacher/queue. Requests awaiting this
// teacher's decision, oldest first.
func (h *TeacherHandler) Queue(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	requests, total, err := h.approvalService.ListPendingFor(c.Context(), user, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load review queue")
	}

	return response.Paginated(c, requests, response.CalculatePagination(page, limit, total))
}

// Review handles POST /api/v1/teacher/requests/:id/review
func (h *TeacherHandler) Review(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid request ID")
	}

	var in services.ReviewInput
	if err := c.BodyParser(&in); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	reviewed, err := h.approvalService.Review(c.Context(), uint(id), user, in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			return response.NotFound(c, "Request not found")
		case errors.Is(err, services.ErrInvalidAction):
			return response.ValidationError(c, map[string]string{
				"action": "action must be approved or rejected",
			})
		case errors.Is(err, services.ErrAlreadyReviewed):
			return response.Conflict(c, "Request has already been reviewed")
		case errors.Is(err, services.ErrReviewConflict):
			return response.Conflict(c, "Request was just reviewed by someone else. Reload and try again")
		case errors.Is(err, services.ErrNotEligible), errors.Is(err, services.ErrInactiveAccount):
			return response.Forbidden(c, "You are not eligible to review this request")
		case errors.Is(err, services.ErrLevelMismatch):
			return response.Conflict(c, "The request is waiting on a different approval level")
		default:
			return response.InternalServerError(c, "Failed to record review")
		}
	}

	return response.Success(c, reviewed)
}
