package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/services"
	authutil "github.com/coursehunt/api/utils/auth"
	"github.com/coursehunt/api/utils/cache"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// AuthHandler handles authentication-related requests
type AuthHandler struct {
	db                   *gorm.DB
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
	otpService           *services.OTPService
	emailService         *services.EmailService
	redisCache           *cache.RedisCache
	oauth                OAuthConfig
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	db *gorm.DB,
	jwtManager *authutil.JWTManager,
	bruteForceProtection *middleware.BruteForceProtection,
	emailService *services.EmailService,
	redisCache *cache.RedisCache,
	oauth OAuthConfig,
) *AuthHandler {
	return &AuthHandler{
		db:                   db,
		jwtManager:           jwtManager,
		blacklistService:     authutil.NewBlacklistService(db),
		bruteForceProtection: bruteForceProtection,
		otpService:           services.NewOTPService(db),
		emailService:         emailService,
		redisCache:           redisCache,
		oauth:                oauth,
	}
}

// RegisterRequest represents a user registration request
type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required,min=2,max=50"`
	LastName  string `json:"last_name" validate:"max=50"`
}

// UserResponse represents user data in responses
type UserResponse struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Image     string    `json:"image,omitempty"`
	Role      string    `json:"role"`
	Method    string    `json:"method"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Image:     u.Image,
		Role:      u.Role,
		Method:    u.Method,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates an inactive account and emails an activation code
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return response.Conflict(c, "An account with this email already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return response.InternalServerError(c, "Failed to check existing account")
	}

	passwordHash, err := authutil.HashPassword(req.Password)
	if err != nil {
		return response.BadRequest(c, err.Error())
	}

	user := model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Method:       model.AuthMethodCredentials,
		Role:         model.RoleStudent,
		IsActive:     false,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return response.InternalServerError(c, "Failed to create account")
	}

	code, err := h.otpService.Issue(c.Context(), user.ID, model.OTPPurposeActivation)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue activation code")
	}
	h.emailService.SendActivationEmail(user.Email, user.FullName(), code)

	return response.Created(c, fiber.Map{
		"user":    toUserResponse(&user),
		"message": "Account created. Check your email for the activation code.",
	})
}

// ActivateRequest represents an account activation request
type ActivateRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

// Activate marks an account active once the emailed code checks out
func (h *AuthHandler) Activate(c *fiber.Ctx) error {
	var req ActivateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var user model.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return response.BadRequest(c, "Invalid email or activation code")
	}
	if user.IsActive {
		return response.SuccessWithMessage(c, "Account is already active", nil)
	}

	if err := h.otpService.Consume(c.Context(), user.ID, req.Code, model.OTPPurposeActivation); err != nil {
		if errors.Is(err, services.ErrOTPInvalid) {
			return response.BadRequest(c, "Invalid email or activation code")
		}
		return response.InternalServerError(c, "Failed to verify activation code")
	}

	if err := h.db.Model(&user).Update("is_active", true).Error; err != nil {
		return response.InternalServerError(c, "Failed to activate account")
	}

	return response.SuccessWithMessage(c, "Account activated. You can log in now.", nil)
}

// ResendActivationRequest asks for a fresh activation code
type ResendActivationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ResendActivation reissues the activation code for an inactive account.
// The response does not reveal whether the email is registered.
func (h *AuthHandler) ResendActivation(c *fiber.Ctx) error {
	var req ResendActivationRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	neutral := "If an inactive account exists for this email, a new code has been sent."

	var user model.User
	if err := h.db.Where("email = ? AND is_active = ?", req.Email, false).First(&user).Error; err != nil {
		return response.SuccessWithMessage(c, neutral, nil)
	}

	code, err := h.otpService.Issue(c.Context(), user.ID, model.OTPPurposeActivation)
	if err != nil {
		return response.InternalServerError(c, "Failed to issue activation code")
	}
	h.emailService.SendActivationEmail(user.Email, user.FullName(), code)

	return response.SuccessWithMessage(c, neutral, nil)
}
