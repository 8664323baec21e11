package instructor

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// InstructorHandler handles the instructor directory
type InstructorHandler struct {
	db *gorm.DB
}

// NewInstructorHandler creates a new instructor handler
func NewInstructorHandler(db *gorm.DB) *InstructorHandler {
	return &InstructorHandler{db: db}
}

// List returns the instructor directory
func (h *InstructorHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := h.db.Model(&model.Instructor{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count instructors")
	}

	var instructors []model.Instructor
	err := h.db.Preload("User").
		Order("created_at ASC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&instructors).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load instructors")
	}

	return response.Paginated(c, instructors, response.CalculatePagination(page, limit, total))
}

// Get returns a single instructor profile
func (h *InstructorHandler) Get(c *fiber.Ctx) error {
	var instructor model.Instructor
	err := h.db.Preload("User").First(&instructor, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Instructor not found")
		}
		return response.InternalServerError(c, "Failed to load instructor")
	}
	return response.Success(c, instructor)
}

// JoinRequest carries an application for the instructor directory
type JoinRequest struct {
	Bio        string   `json:"bio" validate:"required,min=10,max=2000"`
	Skills     []string `json:"skills" validate:"required,min=1"`
	Experience int      `json:"experience" validate:"gte=0,lte=60"`
	Website    string   `json:"website" validate:"omitempty,url"`
	Github     string   `json:"github" validate:"omitempty,url"`
	Linkedin   string   `json:"linkedin" validate:"omitempty,url"`
	Youtube    string   `json:"youtube" validate:"omitempty,url"`
}

// Join registers the caller as an instructor and upgrades their role
func (h *InstructorHandler) Join(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req JoinRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var existing model.Instructor
	if err := h.db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return response.Conflict(c, "You are already listed as an instructor")
	}

	instructor := model.Instructor{
		UserID:     userID,
		Bio:        req.Bio,
		Skills:     datatypes.NewJSONSlice(req.Skills),
		Experience: req.Experience,
		Website:    req.Website,
		Github:     req.Github,
		Linkedin:   req.Linkedin,
		Youtube:    req.Youtube,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&instructor).Error; err != nil {
			return err
		}
		// Admins keep their role
		return tx.Model(&model.User{}).
			Where("id = ? AND role = ?", userID, model.RoleStudent).
			Update("role", model.RoleInstructor).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to register instructor")
	}

	return response.Created(c, instructor)
}
