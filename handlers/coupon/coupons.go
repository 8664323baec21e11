package coupon

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// CouponHandler handles admin coupon management
type CouponHandler struct {
	db *gorm.DB
}

// NewCouponHandler creates a new coupon handler
func NewCouponHandler(db *gorm.DB) *CouponHandler {
	return &CouponHandler{db: db}
}

// CouponRequest carries the editable coupon fields
type CouponRequest struct {
	Code        string  `json:"code" validate:"required,min=3,max=10"`
	Discount    float64 `json:"discount" validate:"required,gt=0"`
	Expiry      string  `json:"expiry" validate:"required"` // YYYY-MM-DD
	Quantity    *int    `json:"quantity" validate:"omitempty,gte=0"`
	IsUnlimited bool    `json:"is_unlimited"`
	IsActive    *bool   `json:"is_active"`
}

func (r *CouponRequest) parseExpiry() (time.Time, error) {
	return time.Parse("2006-01-02", r.Expiry)
}

// List returns all coupons, paginated, newest first
func (h *CouponHandler) List(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var total int64
	if err := h.db.Model(&model.CouponCode{}).Count(&total).Error; err != nil {
		return response.InternalServerError(c, "Failed to count coupons")
	}

	var coupons []model.CouponCode
	err := h.db.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&coupons).Error
	if err != nil {
		return response.InternalServerError(c, "Failed to load coupons")
	}

	return response.Paginated(c, coupons, response.CalculatePagination(page, limit, total))
}

// Create creates a new coupon code
func (h *CouponHandler) Create(c *fiber.Ctx) error {
	var req CouponRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	expiry, err := req.parseExpiry()
	if err != nil {
		return response.BadRequest(c, "Expiry must be a YYYY-MM-DD date")
	}
	if !req.IsUnlimited && req.Quantity == nil {
		return response.BadRequest(c, "Quantity is required for limited coupons")
	}

	coupon := model.CouponCode{
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Discount:    req.Discount,
		Expiry:      expiry,
		Quantity:    req.Quantity,
		IsUnlimited: req.IsUnlimited,
		IsActive:    true,
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if err := h.db.Create(&coupon).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return response.Conflict(c, "A coupon with this code already exists")
		}
		return response.InternalServerError(c, "Failed to create coupon")
	}

	return response.Created(c, coupon)
}

// CouponUpdateRequest carries a partial edit: only the fields present
// in the body are applied.
type CouponUpdateRequest struct {
	Code        *string  `json:"code" validate:"omitempty,min=3,max=10"`
	Discount    *float64 `json:"discount" validate:"omitempty,gt=0"`
	Expiry      *string  `json:"expiry"` // YYYY-MM-DD
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	IsUnlimited *bool    `json:"is_unlimited"`
	IsActive    *bool    `json:"is_active"`
}

// Update edits an existing coupon. Fields omitted from the body keep
// their current values.
func (h *CouponHandler) Update(c *fiber.Ctx) error {
	var req CouponUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	var coupon model.CouponCode
	if err := h.db.First(&coupon, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return response.NotFound(c, "Coupon not found")
		}
		return response.InternalServerError(c, "Failed to load coupon")
	}

	if req.Code != nil {
		coupon.Code = strings.ToUpper(strings.TrimSpace(*req.Code))
	}
	if req.Discount != nil {
		coupon.Discount = *req.Discount
	}
	if req.Expiry != nil {
		expiry, err := time.Parse("2006-01-02", *req.Expiry)
		if err != nil {
			return response.BadRequest(c, "Expiry must be a YYYY-MM-DD date")
		}
		coupon.Expiry = expiry
	}
	if req.Quantity != nil {
		coupon.Quantity = req.Quantity
	}
	if req.IsUnlimited != nil {
		coupon.IsUnlimited = *req.IsUnlimited
	}
	if req.IsActive != nil {
		coupon.IsActive = *req.IsActive
	}

	if !coupon.IsUnlimited && coupon.Quantity == nil {
		return response.BadRequest(c, "Quantity is required for limited coupons")
	}

	if err := h.db.Save(&coupon).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "UNIQUE") {
			return response.Conflict(c, "A coupon with this code already exists")
		}
		return response.InternalServerError(c, "Failed to update coupon")
	}

	return response.Success(c, coupon)
}

// Delete removes a coupon
func (h *CouponHandler) Delete(c *fiber.Ctx) error {
	res := h.db.Delete(&model.CouponCode{}, "id = ?", c.Params("id"))
	if res.Error != nil {
		return response.InternalServerError(c, "Failed to delete coupon")
	}
	if res.RowsAffected == 0 {
		return response.NotFound(c, "Coupon not found")
	}
	return response.SuccessWithMessage(c, "Coupon deleted", nil)
}
