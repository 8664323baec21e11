package feedback

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// FeedbackHandler handles site feedback requests
type FeedbackHandler struct {
	db *gorm.DB
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(db *gorm.DB) *FeedbackHandler {
	return &FeedbackHandler{db: db}
}

// SubmitRequest carries a feedback submission. Out-of-range ratings are
// clamped rather than rejected.
type SubmitRequest struct {
	Feedback string `json:"feedback" validate:"required,min=1,max=2000"`
	Rating   int    `json:"rating"`
}

// Submit stores feedback from the logged-in user
func (h *FeedbackHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	fb := model.Feedback{
		UserID:   userID,
		Feedback: req.Feedback,
		Rating:   req.Rating,
	}
	if err := h.db.Create(&fb).Error; err != nil {
		return response.InternalServerError(c, "Failed to save feedback")
	}

	return response.Created(c, fb)
}

// List returns all feedback for the admin dashboard
func (h *FeedbackHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := h.db.Model(&model.Feedback{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count feedback")
	}

	var feedbacks []model.Feedback
	err := h.db.Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&feedbacks).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load feedback")
	}

	return response.Paginated(c, feedbacks, response.CalculatePagination(page, limit, total))
}

// Delete removes a feedback entry
func (h *FeedbackHandler) Delete(c *fiber.Ctx) error {
	res := h.db.Delete(&model.Feedback{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete feedback")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Feedback not found")
	}
	return response.SuccessWithMessage(c, "Feedback deleted", nil)
}
