package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// ProfileResponse bundles the user record with their contact profile
type ProfileResponse struct {
	User    UserResponse  `json:"user"`
	Profile model.Profile `json:"profile"`
}

// GetProfile returns the logged-in user's profile
func (h *AuthHandler) GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var profile model.Profile
	err := h.db.Where("user_id = ?", user.ID).First(&profile).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to load profile")
	}

	return response.Success(c, ProfileResponse{
		User:    toUserResponse(user),
		Profile: profile,
	})
}

// UpdateProfileRequest carries the editable profile fields
type UpdateProfileRequest struct {
	FirstName string `json:"first_name" validate:"omitempty,min=2,max=50"`
	LastName  string `json:"last_name" validate:"omitempty,max=50"`
	Image     string `json:"image" validate:"omitempty,url"`
	Country   string `json:"country" validate:"omitempty,max=60"`
	City      string `json:"city" validate:"omitempty,max=60"`
	Address   string `json:"address" validate:"omitempty,max=200"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

// UpdateProfile updates the user's name, image and contact details
func (h *AuthHandler) UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		userUpdates := map[string]interface{}{}
		if req.FirstName != "" {
			userUpdates["first_name"] = req.FirstName
		}
		if req.LastName != "" {
			userUpdates["last_name"] = req.LastName
		}
		if req.Image != "" {
			userUpdates["image"] = req.Image
		}
		if len(userUpdates) > 0 {
			if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(userUpdates).Error; err != nil {
				return err
			}
		}

		profile := model.Profile{UserID: user.ID}
		if err := tx.Where(model.Profile{UserID: user.ID}).FirstOrCreate(&profile).Error; err != nil {
			return err
		}
		return tx.Model(&profile).Updates(map[string]interface{}{
			"country": req.Country,
			"city":    req.City,
			"address": req.Address,
			"phone":   req.Phone,
		}).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update profile")
	}

	var fresh model.User
	if err := h.db.First(&fresh, user.ID).Error; err != nil {
		return response.InternalServerError(c, "Failed to load profile")
	}
	var profile model.Profile
	h.db.Where("user_id = ?", user.ID).First(&profile)

	return response.Success(c, ProfileResponse{
		User:    toUserResponse(&fresh),
		Profile: profile,
	})
}
