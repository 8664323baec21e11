package course

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/services/storage"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// CourseRequest carries the admin-editable course fields
type CourseRequest struct {
	Name             string   `json:"name" validate:"required,min=3,max=120"`
	ShortDescription string   `json:"short_description" validate:"max=500"`
	LongDescription  string   `json:"long_description"`
	Price            int      `json:"price" validate:"gte=0"`
	Offer            float64  `json:"offer" validate:"gte=0,lte=100"`
	Language         []string `json:"language"`
	Tags             []string `json:"tags"`
	Duration         string   `json:"duration" validate:"max=50"`
	VideoURL         string   `json:"video_url" validate:"omitempty,url"`
	NotesURL         string   `json:"notes_url" validate:"omitempty,url"`
	PresentationURL  string   `json:"presentation_url" validate:"omitempty,url"`
	CodeURL          string   `json:"code_url" validate:"omitempty,url"`
	Content          string   `json:"content"`
	Includes         []string `json:"includes"`
	Requirements     []string `json:"requirements"`
}

func (r *CourseRequest) apply(course *model.Course) {
	course.Name = r.Name
	course.ShortDescription = r.ShortDescription
	course.LongDescription = r.LongDescription
	course.Price = r.Price
	course.Offer = r.Offer
	course.Language = datatypes.NewJSONSlice(r.Language)
	course.Tags = datatypes.NewJSONSlice(r.Tags)
	course.Duration = r.Duration
	course.VideoURL = r.VideoURL
	course.NotesURL = r.NotesURL
	course.PresentationURL = r.PresentationURL
	course.CodeURL = r.CodeURL
	course.Content = r.Content
	course.Includes = datatypes.NewJSONSlice(r.Includes)
	course.Requirements = datatypes.NewJSONSlice(r.Requirements)
}

// AdminList returns all courses regardless of status
func (h *CourseHandler) AdminList(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	var total int64
	if err := h.db.Model(&model.Course{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count courses")
	}

	var courses []model.Course
	err := h.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&courses).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load courses")
	}

	return response.Paginated(c, courses, response.CalculatePagination(page, limit, total))
}

// Create creates a new draft course
func (h *CourseHandler) Create(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	course := model.Course{Status: model.CourseStatusDraft}
	req.apply(&course)
	if userID, ok := middleware.GetUserID(c); ok {
		course.CreatedByID = userID
	}

	if err := h.db.Create(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to create course")
	}

	return response.Created(c, course)
}

// Update replaces the editable fields of a course
func (h *CourseHandler) Update(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var course model.Course
	if err := h.db.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	req.apply(&course)
	if err := h.db.Save(&course).Error; err != nil {
		return response.InternalServerError(c, "Failed to update course")
	}

	return response.Success(c, course)
}

// Delete removes a course
func (h *CourseHandler) Delete(c *fiber.Ctx) error {
	res := h.db.Delete(&model.Course{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete course")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Course not found")
	}
	return response.SuccessWithMessage(c, "Course deleted", nil)
}

// ToggleStatus flips a course between draft and published
func (h *CourseHandler) ToggleStatus(c *fiber.Ctx) error {
	var course model.Course
	if err := h.db.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	status := model.CourseStatusPublished
	if course.Status == model.CourseStatusPublished {
		status = model.CourseStatusDraft
	}
	if err := h.db.Model(&course).Update("status", status).Error; err != nil {
		return response.InternalServerError(c, "Failed to update status")
	}

	return response.Success(c, fiber.Map{"id": course.ID, "status": status})
}

// UploadThumbnail stores a course thumbnail in object storage
func (h *CourseHandler) UploadThumbnail(c *fiber.Ctx) error {
	var course model.Course
	if err := h.db.First(&course, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Course not found")
		}
		return response.InternalServerError(c, "Failed to load course")
	}

	if h.spaces == nil {
		return response.ServiceUnavailable(c, "Media storage is not configured")
	}

	fileHeader, err := c.FormFile("thumbnail")
	if err != nil {
		return response.BadRequest(c, "A thumbnail file is required")
	}

	contentType := storage.ImageContentType(fileHeader.Filename)
	if contentType == "" {
		return response.BadRequest(c, "Thumbnail must be a jpg, png, webp or gif image")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read upload")
	}
	defer file.Close()

	key := storage.GenerateKey("thumbnails", fileHeader.Filename)
	url, err := h.spaces.UploadFile(c.Context(), key, file, contentType)
	if err != nil {
		return response.InternalServerError(c, "Failed to store thumbnail")
	}

	if err := h.db.Model(&course).Update("thumbnail", url).Error; err != nil {
		return response.InternalServerError(c, "Failed to save thumbnail URL")
	}

	return response.Success(c, fiber.Map{"thumbnail": url})
}
