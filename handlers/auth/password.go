package auth

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/klncollege/od-provider/model"
	authutil "github.com/klncollege/od-provider/utils/auth"
	"github.com/klncollege/od-provider/utils/middleware"
	"github.com/klncollege/od-provider/utils/random"
	"github.com/klncollege/od-provider/utils/response"
)

const otpTTL = 10 * time.Minute

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword handles password change for authenticated users
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old password and new password are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.OldPassword); err != nil {
		return response.BadRequest(c, "Current password is incorrect")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	// Bump token version to invalidate all existing sessions
	if err := h.db.Model(user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": user.TokenVersion + 1,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	return response.Success(c, fiber.Map{
		"message": "Password changed successfully. Please login again with your new password",
	})
}

// RequestPasswordChangeOTP mails a short-lived one-time code to the
// authenticated user for a password change without the old password.
func (h *AuthHandler) RequestPasswordChangeOTP(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if !h.emailService.IsConfigured() {
		return response.Error(c, fiber.StatusServiceUnavailable, "Email delivery is not configured", "EMAIL_NOT_CONFIGURED")
	}

	code, err := random.OTPCode()
	if err != nil {
		return response.InternalServerError(c, "Failed to generate code")
	}

	otp := model.PasswordOTP{
		UserID:    user.ID,
		Code:      code,
		Purpose:   model.OTPPurposePasswordChange,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := h.db.Create(&otp).Error; err != nil {
		return response.InternalServerError(c, "Failed to create code")
	}

	go func() {
		if err := h.emailService.SendPasswordOTP(user.Email, user.FullName, code); err != nil {
			log.Printf("Failed to send password OTP to %s: %v", user.Email, err)
		}
	}()

	return response.Success(c, fiber.Map{
		"message": "A verification code has been sent to your email",
	})
}

// ChangePasswordWithOTPRequest represents a password change using a mailed code
type ChangePasswordWithOTPRequest struct {
	Code        string `json:"code" validate:"required,len=6"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ChangePasswordWithOTP handles a password change authorised by a one-time code
func (h *AuthHandler) ChangePasswordWithOTP(c *fiber.Ctx) error {
	var req ChangePasswordWithOTPRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Code == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Code and new password are required")
	}

	if !authutil.IsPasswordValid(req.NewPassword) {
		return response.BadRequest(c, "Password must be at least 8 characters long")
	}

	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var otp model.PasswordOTP
	if err := h.db.Where("user_id = ? AND code = ? AND purpose = ?",
		user.ID, req.Code, model.OTPPurposePasswordChange).
		Order("created_at DESC").First(&otp).Error; err != nil {
		return response.BadRequest(c, "Invalid verification code")
	}

	if otp.IsExpired() {
		return response.BadRequest(c, "Verification code has expired")
	}
	if otp.IsUsed() {
		return response.BadRequest(c, "Verification code has already been used")
	}

	hashedPassword, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.InternalServerError(c, "Failed to process password")
	}

	if err := h.db.Model(user).Updates(map[string]interface{}{
		"password_hash": hashedPassword,
		"token_version": user.TokenVersion + 1,
	}).Error; err != nil {
		return response.InternalServerError(c, "Failed to update password")
	}

	otp.MarkAsUsed()
	h.db.Save(&otp)

	return response.Success(c, fiber.Map{
		"message": "Password changed successfully. Please login again with your new password",
	})
}
