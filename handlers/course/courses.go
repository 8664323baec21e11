package course

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/services/storage"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
)

// CourseHandler handles course catalog requests
type CourseHandler struct {
	db     *gorm.DB
	spaces *storage.SpacesClient
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(db *gorm.DB, spaces *storage.SpacesClient) *CourseHandler {
	return &CourseHandler{db: db, spaces: spaces}
}

func pageParams(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "12"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 12
	}
	return page, limit
}

// publicCourseFields excludes the paid content columns from catalog
// responses. Study material is only served through the Study endpoint.
var publicCourseFields = []string{
	"id", "created_at", "updated_at", "name", "short_description",
	"long_description", "price", "offer", "language", "tags", "rating",
	"learners", "duration", "thumbnail", "status", "includes", "requirements",
}

// List returns published courses, paginated, with optional search
func (h *CourseHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	query := h.db.Model(&model.Course{}).Where("status = ?", model.CourseStatusPublished)
	if q := c.Query("q"); q != "" {
		like := "%" + q + "%"
		query = query.Where("name LIKE ? OR short_description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.Course
	err := query.Select(publicCourseFields).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// Get returns a single published course
func (h *CourseHandler) Get(c *fiber.Ctx) error {
	var course model.Course
	err := h.db.Select(publicCourseFields).
		Where("id = ? AND status = ?", c.Params("id"), model.CourseStatusPublished).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	res := fiber.Map{"course": course}
	if userID, ok := middleware.GetUserID(c); ok {
		var owned int64
		h.db.Model(&model.UserCourse{}).
			Where("user_id = ? AND course_id = ?", userID, course.ID).
			Count(&owned)
		res["purchased"] = owned > 0
	}

	return response.Success(c, res)
}

// Purchased returns the courses the user is entitled to
func (h *CourseHandler) Purchased(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var courses []model.Course
	err := h.db.Select(publicCourseFields).
		Joins("JOIN user_courses ON user_courses.course_id = courses.id").
		Where("user_courses.user_id = ?", userID).
		Order("user_courses.enrolled_at DESC").
		Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load purchased courses")
	}

	return response.Success(c, courses)
}

// Study returns the full course including paid content. The caller must
// own the course.
func (h *CourseHandler) Study(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	courseID := c.Params("id")

	var owned int64
	err := h.db.Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&owned).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to check entitlement")
	}
	if owned == 0 {
		return response.Forbidden(c, "Purchase the course to access its content")
	}

	var course model.Course
	if err := h.db.First(&course, "id = ?", courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	return response.Success(c, course)
}
