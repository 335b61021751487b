package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	authutil "github.com/klncollege/od-provider/utils/auth"
	"github.com/klncollege/od-provider/utils/response"
	"github.com/klncollege/od-provider/utils/validation"
)

// LoginRequest represents a user login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	User         UserResponse `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // in seconds
}

// Login handles user login for every role
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return response.BadRequest(c, "Email and password are required")
	}

	ip := c.IP()
	email := validation.NormalizeEmail(req.Email)

	var user model.User
	if err := h.db.Where("email = ?", email).First(&user).Error; err != nil {
		// Record failed attempt even if user not found
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip)
		}
		return response.Unauthorized(c, "Invalid email or password")
	}

	// Deactivated teachers keep their rows but cannot sign in
	if user.Role == model.RoleTeacher && !user.IsActive {
		return response.Forbidden(c, "Account has been deactivated")
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	return response.Success(c, LoginResponse{
		User:         NewUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60,
	})
}

// AutoLoginRequest carries a previously issued access token
type AutoLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// AutoLogin resolves a stored access token back to its account. All roles
// live in one users table, so the lookup cannot land on the wrong account
// when a student and a teacher share nothing but an email typo.
func (h *AuthHandler) AutoLogin(c *fiber.Ctx) error {
	var req AutoLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.BadRequest(c, "Token is required")
	}

	claims, err := h.jwtManager.ValidateToken(req.Token)
	if err != nil {
		return response.Unauthorized(c, "Invalid or expired token")
	}
	if claims.TokenType != "access" {
		return response.Unauthorized(c, "Invalid token type")
	}

	isRevoked, err := h.blacklistService.IsTokenRevoked(c.Context(), claims.ID)
	if err != nil {
		return response.InternalServerError(c, "Failed to check token status")
	}
	if isRevoked {
		return response.Unauthorized(c, "Token has been revoked")
	}

	var user model.User
	if err := h.db.First(&user, claims.UserID).Error; err != nil {
		return response.Unauthorized(c, "User not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return response.Unauthorized(c, "Token has been invalidated")
	}

	if user.Role == model.RoleTeacher && !user.IsActive {
		return response.Forbidden(c, "Account has been deactivated")
	}

	return response.Success(c, fiber.Map{
		"user": NewUserResponse(&user),
	})
}
