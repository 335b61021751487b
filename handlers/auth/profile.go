package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/response"
)

// UpdateProfileRequest represents a profile update request. Role,
// department and approval level are admin-managed and cannot change here.
type UpdateProfileRequest struct {
	FullName string `json:"full_name,omitempty"`
	Year     int    `json:"year,omitempty"`
	Section  string `json:"section,omitempty"`
}

// GetProfile retrieves the current user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	return response.Success(c, NewUserResponse(user))
}

// UpdateProfile updates the current user's profile
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	current, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var user model.User
	if err := h.db.First(&user, current.ID).Error; err != nil {
		return response.NotFound(c, "User not found")
	}

	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if user.Role == model.RoleStudent {
		if req.Year > 0 {
			user.Year = req.Year
		}
		if req.Section != "" {
			user.Section = req.Section
		}
	}

	if err := h.db.Save(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	return response.Success(c, NewUserResponse(&user))
}
