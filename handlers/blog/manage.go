package blog

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// BlogRequest carries the admin-editable blog fields
type BlogRequest struct {
	Title   string `json:"title" validate:"required,min=3,max=100"`
	Content string `json:"content" validate:"required"`
	Image   string `json:"image" validate:"omitempty,url"`
}

// AdminList returns blogs with engagement counters for the dashboard
func (h *BlogHandler) AdminList(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	var total int64
	if err := h.db.Model(&model.Blog{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count blogs")
	}

	var blogs []model.Blog
	err := h.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&blogs).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load blogs")
	}

	return response.Paginated(c, blogs, response.CalculatePagination(page, limit, total))
}

// Create publishes a new blog
func (h *BlogHandler) Create(c *fiber.Ctx) error {
	var req BlogRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	blog := model.Blog{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	}
	if err := h.db.Create(&blog).Error; err != nil {
		return response.InternalServerError(c, "Failed to create blog")
	}

	h.invalidateListCache(c)
	return response.Created(c, blog)
}

// Update edits an existing blog
func (h *BlogHandler) Update(c *fiber.Ctx) error {
	var req BlogRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var blog model.Blog
	if err := h.db.First(&blog, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Blog not found")
		}
		return response.InternalServerError(c, "Failed to load blog")
	}

	err := h.db.Model(&blog).Updates(map[string]interface{}{
		"title":   req.Title,
		"content": req.Content,
		"image":   req.Image,
	}).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to update blog")
	}

	h.invalidateListCache(c)
	return response.Success(c, blog)
}

func (h *BlogHandler) invalidateListCache(c *fiber.Ctx) {
	if h.redisCache != nil {
		h.redisCache.DeletePattern(c.Context(), "blogs:page:*")
	}
}
