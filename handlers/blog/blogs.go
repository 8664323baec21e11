package blog

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/cache"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

const blogListTTL = 60 * time.Second

// BlogHandler handles blog and comment requests
type BlogHandler struct {
	db         *gorm.DB
	redisCache *cache.RedisCache
}

// NewBlogHandler creates a new blog handler
func NewBlogHandler(db *gorm.DB, redisCache *cache.RedisCache) *BlogHandler {
	return &BlogHandler{db: db, redisCache: redisCache}
}

func pageParams(c *fiber.Ctx) (int, int) {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return page, limit
}

type blogPage struct {
	Blogs []model.Blog `json:"blogs"`
	Total int64        `json:"total"`
}

// List returns blogs newest first. Pages are cached briefly since the
// listing is the busiest read endpoint.
func (h *BlogHandler) List(c *fiber.Ctx) error {
	page, limit := pageParams(c)
	key := fmt.Sprintf("blogs:page:%d:limit:%d", page, limit)

	if h.redisCache != nil {
		var cached blogPage
		if err := h.redisCache.GetJSON(c.Context(), key, &cached); err == nil {
			return response.Paginated(c, cached.Blogs, response.CalculatePagination(page, limit, cached.Total))
		}
	}

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

	if h.redisCache != nil {
		h.redisCache.SetJSON(c.Context(), key, blogPage{Blogs: blogs, Total: total}, blogListTTL)
	}

	return response.Paginated(c, blogs, response.CalculatePagination(page, limit, total))
}

// Get returns a blog with its comment thread and bumps the read counter
func (h *BlogHandler) Get(c *fiber.Ctx) error {
	var blog model.Blog
	err := h.db.Preload("CommentList", func(db *gorm.DB) *gorm.DB {
		return db.Where("parent_id IS NULL").Order("created_at DESC")
	}).
		Preload("CommentList.User").
		Preload("CommentList.Replies").
		Preload("CommentList.Replies.User").
		First(&blog, "id = ?", c.Params("id")).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Blog not found")
		}
		return response.InternalServerError(c, "Failed to load blog")
	}

	h.db.Model(&model.Blog{}).
		Where("id = ?", blog.ID).
		UpdateColumn("read", gorm.Expr("read + ?", 1))
	blog.Read++

	res := fiber.Map{"blog": blog, "comments": blog.CommentList}
	if userID, ok := middleware.GetUserID(c); ok {
		var liked int64
		h.db.Model(&model.BlogLike{}).
			Where("blog_id = ? AND user_id = ?", blog.ID, userID).
			Count(&liked)
		res["liked"] = liked > 0
	}

	return response.Success(c, res)
}

// ToggleLike likes or unlikes a blog for the caller
func (h *BlogHandler) ToggleLike(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	blogID := c.Params("id")

	var blog model.Blog
	if err := h.db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Blog not found")
		}
		return response.InternalServerError(c, "Failed to load blog")
	}

	liked := false
	err := h.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("blog_id = ? AND user_id = ?", blogID, userID).Delete(&model.BlogLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Model(&model.Blog{}).Where("id = ?", blogID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
		}

		liked = true
		if err := tx.Create(&model.BlogLike{BlogID: blogID, UserID: userID}).Error; err != nil {
			return err
		}
		return tx.Model(&model.Blog{}).Where("id = ?", blogID).
			UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to update like")
	}

	return response.Success(c, fiber.Map{"liked": liked})
}

// CommentRequest carries a new comment or reply
type CommentRequest struct {
	Content  string  `json:"content" validate:"required,min=1,max=2000"`
	ParentID *string `json:"parent_id"`
}

// AddComment posts a comment or a reply on a blog
func (h *BlogHandler) AddComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	blogID := c.Params("id")

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var blog model.Blog
	if err := h.db.First(&blog, "id = ?", blogID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Blog not found")
		}
		return response.InternalServerError(c, "Failed to load blog")
	}

	if req.ParentID != nil {
		var parent model.Comment
		if err := h.db.Where("id = ? AND blog_id = ?", *req.ParentID, blogID).First(&parent).Error; err != nil {
			return response.BadRequest(c, "Parent comment not found on this blog")
		}
	}

	comment := model.Comment{
		BlogID:   blogID,
		UserID:   userID,
		ParentID: req.ParentID,
		Content:  req.Content,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&model.Blog{}).Where("id = ?", blogID).
			UpdateColumn("comments", gorm.Expr("comments + ?", 1)).Error
	})
	if err != nil {
		return response.InternalServerError(c, "Failed to post comment")
	}

	return response.Created(c, comment)
}

// UpdateComment edits the caller's own comment
func (h *BlogHandler) UpdateComment(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var comment model.Comment
	if err := h.db.First(&comment, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Comment not found")
		}
		return response.InternalServerError(c, "Failed to load comment")
	}
	if comment.UserID != userID {
		return response.Forbidden(c, "You can only edit your own comments")
	}

	if err := h.db.Model(&comment).Update("content", req.Content).Error; err != nil {
		return response.InternalServerError(c, "Failed to update comment")
	}

	return response.Success(c, comment)
}
