package auth

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/services"
	authutil "github.com/klncollege/od-provider/utils/auth"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/response"
	"github.com/klncollege/od-provider/utils/validation"
	"gorm.io/gorm"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	emailService         *services.EmailService
	validator            *validation.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, jwtManager *authutil.JWTManager, bruteForceProtection *middleware.BruteForceProtection, emailService *services.EmailService) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		emailService:         emailService,
		validator:            validation.NewValidator(),
	}
}

// RegisterRequest represents a student registration request
type RegisterRequest struct {
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=8"`
	FullName       string `json:"full_name" validate:"required,min=2"`
	RegisterNumber string `json:"register_number" validate:"required"`
	Department     string `json:"department" validate:"required"`
	Year           int    `json:"year" validate:"required,gte=1,lte=6"`
	Section        string `json:"section" validate:"required"`
}

// UserResponse represents account data in responses
type UserResponse struct {
	ID             uint      `json:"id"`
	Email          string    `json:"email"`
	FullName       string    `json:"full_name"`
	Role           string    `json:"role"`
	EmailVerified  bool      `json:"email_verified"`
	RegisterNumber string    `json:"register_number,omitempty"`
	Department     string    `json:"department,omitempty"`
	Year           int       `json:"year,omitempty"`
	Section        string    `json:"section,omitempty"`
	EmployeeID     string    `json:"employee_id,omitempty"`
	Designation    string    `json:"designation,omitempty"`
	ApprovalLevel  string    `json:"approval_level,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUserResponse maps an account onto its API shape
func NewUserResponse(user *model.User) UserResponse {
	return UserResponse{
		ID:             user.ID,
		Email:          user.Email,
		FullName:       user.FullName,
		Role:           user.Role,
		EmailVerified:  user.EmailVerified,
		RegisterNumber: user.RegisterNumber,
		Department:     user.Department,
		Year:           user.Year,
		Section:        user.Section,
		EmployeeID:     user.EmployeeID,
		Designation:    user.Designation,
		ApprovalLevel:  user.ApprovalLevel,
		IsActive:       user.IsActive,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
}

// Register handles student self-service registration. Teacher and admin
// accounts are provisioned through the admin surface, never here.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	if !authutil.IsPasswordValid(req.Password) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	req.Email = validation.NormalizeEmail(req.Email)

	// Check if user already exists
	var existingUser model.User
	if err := h.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}

	hashedPassword, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	user := model.User{
		Email:          req.Email,
		PasswordHash:   hashedPassword,
		FullName:       req.FullName,
		Role:           model.RoleStudent,
		RegisterNumber: req.RegisterNumber,
		Department:     req.Department,
		Year:           req.Year,
		Section:        req.Section,
		TokenVersion:   0,
	}

	if err := h.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return response.Conflict(c, "An account with this email already exists")
		}
		return response.InternalServerError(c, "Failed to create account")
	}

	// Issue a verification token and mail it. Registration still succeeds
	// when SMTP is not configured; the account just stays unverified.
	verification := model.EmailVerificationToken{
		UserID:    user.ID,
		Token:     uuid.New().String(),
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	if err := h.db.Create(&verification).Error; err != nil {
		return response.InternalServerError(c, "Failed to create verification token")
	}

	if h.emailService.IsConfigured() {
		go func() {
			if err := h.emailService.SendVerificationEmail(user.Email, user.FullName, verification.Token); err != nil {
				log.Printf("Failed to send verification email to %s: %v", user.Email, err)
			}
		}()
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	refreshToken, _, err := h.jwtManager.GenerateRefreshToken(user.ID, user.Email, user.Role, user.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate refresh token")
	}

	return response.Created(c, LoginResponse{
		User:         NewUserResponse(&user),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    24 * 60 * 60,
	})
}

// VerifyEmailRequest carries the mailed verification token
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required"`
}

// VerifyEmail confirms ownership of a registered email address
func (h *AuthHandler) VerifyEmail(c *fiber.Ctx) error {
	var req VerifyEmailRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.BadRequest(c, "Verification token is required")
	}

	var verification model.EmailVerificationToken
	if err := h.db.Where("token = ?", req.Token).First(&verification).Error; err != nil {
		return response.BadRequest(c, "Invalid verification token")
	}

	if verification.IsExpired() {
		return response.BadRequest(c, "Verification token has expired")
	}
	if verification.IsUsed() {
		return response.BadRequest(c, "Verification token has already been used")
	}

	if err := h.db.Model(&model.User{}).Where("id = ?", verification.UserID).
		Update("email_verified", true).Error; err != nil {
		return response.InternalServerError(c, "Failed to verify email")
	}

	verification.MarkAsUsed()
	h.db.Save(&verification)

	return response.Success(c, fiber.Map{
		"message": "Email verified successfully",
	})
}
