package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	authutil "github.com/coursehunt/api/utils/auth"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

const resetTokenTTL = time.Hour

// ForgotPasswordRequest represents a password reset request
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ForgotPassword issues a reset token and emails the reset link. The
// response never reveals whether the email is registered.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	neutral := "If an account exists for this email, a reset link has been sent."

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.SuccessWithMessage(c, neutral, nil)
	}

	token := uuid.New().String()
	reset := model.PasswordResetToken{
		UserID:    user.ID,
		Token:     token,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.db.Create(&reset).Error; err != nil {
		return response.InternalServerError(c, "Failed to create reset token")
	}

	h.emailService.SendPasswordResetEmail(user.Email, user.FullName(), token)

	return response.SuccessWithMessage(c, neutral, nil)
}

// ResetPasswordRequest represents a password reset confirmation
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// ResetPassword sets a new password from a valid reset token and
// invalidates every issued session.
func (h *AuthHandler) ResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var reset model.PasswordResetToken
	err := h.db.Where("token = ?", req.Token).First(&reset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.BadRequest(c, "Invalid or expired reset token")
		}
		return response.InternalServerError(c, "Failed to look up reset token")
	}
	if reset.IsUsed() || reset.IsExpired() {
		return response.BadRequest(c, "Invalid or expired reset token")
	}

	passwordHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).
			Where("id = ?", reset.UserID).
			Update("password_hash", passwordHash).Error; err != nil {
			return err
		}
		reset.MarkAsUsed()
		return tx.Model(&model.PasswordResetToken{}).
			Where("id = ?", reset.ID).
			Update("used_at", reset.UsedAt).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to reset password")
	}

	h.blacklistService.RevokeAllUserTokens(c.Context(), reset.UserID)

	return response.SuccessWithMessage(c, "Password has been reset. Log in with your new password.", nil)
}

// ChangePasswordRequest represents an authenticated password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// ChangePassword updates the password for the logged-in user
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if user.Method != model.AuthMethodCredentials {
		return response.BadRequest(c, "Password change is not available for social login accounts")
	}

	if err := authutil.VerifyPassword(user.PasswordHash, req.CurrentPassword); err != nil {
		return response.Unauthorized(c, "Current password is incorrect")
	}

	passwordHash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	if err := h.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("password_hash", passwordHash).Error; err != nil {
		return response.InternalServerError(c, "Failed to change password")
	}

	h.blacklistService.RevokeAllUserTokens(c.Context(), user.ID)

	return response.SuccessWithMessage(c, "Password changed. Please log in again.", nil)
}
