package payment

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	paymentsvc "github.com/coursehunt/api/services/payment"
	"github.com/coursehunt/api/utils/middleware"
	"github.com/coursehunt/api/utils/response"
	"github.com/coursehunt/api/utils/validation"
)

// PaymentHandler handles the purchase lifecycle endpoints
type PaymentHandler struct {
	service *paymentsvc.Service
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(service *paymentsvc.Service) *PaymentHandler {
	return &PaymentHandler{service: service}
}

// mapError translates the payment error taxonomy to HTTP. Caller
// mistakes are 4xx; only gateway unavailability surfaces as 5xx.
func mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, paymentsvc.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, paymentsvc.ErrOrderNotFound):
		return response.NotFound(c, "Payment order not found")
	case errors.Is(err, paymentsvc.ErrCouponNotFound):
		return response.NotFound(c, "Coupon code not found")
	case errors.Is(err, paymentsvc.ErrCouponInactive),
		errors.Is(err, paymentsvc.ErrCouponExpired),
		errors.Is(err, paymentsvc.ErrCouponExhausted):
		return response.Error(c, fiber.StatusBadRequest, err.Error(), "COUPON_INVALID")
	case errors.Is(err, paymentsvc.ErrAlreadyPurchased):
		return response.Conflict(c, "You already own this course")
	case errors.Is(err, paymentsvc.ErrAlreadyPaid):
		return response.Conflict(c, "This payment has already been completed")
	case errors.Is(err, paymentsvc.ErrOrderNotPending):
		return response.Conflict(c, "This payment order is no longer pending")
	case errors.Is(err, paymentsvc.ErrInvalidSignature):
		return response.Error(c, fiber.StatusBadRequest, "Payment signature verification failed", "INVALID_SIGNATURE")
	case errors.Is(err, paymentsvc.ErrGatewayUnavailable):
		return response.ServiceUnavailable(c, "Payment gateway is unavailable. Try again shortly.")
	default:
		return response.InternalServerError(c, "Payment processing failed")
	}
}

// Checkout returns the pricing preview for a course
func (h *PaymentHandler) Checkout(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	details, err := h.service.Checkout(c.Context(), userID, c.Params("course_id"))
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, details)
}

// InitiateRequest optionally carries a coupon code
type InitiateRequest struct {
	CouponCode string `json:"coupon_code" validate:"omitempty,max=10"`
}

// Initiate creates a gateway order and a pending purchase
func (h *PaymentHandler) Initiate(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req InitiateRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.Initiate(c.Context(), userID, c.Params("course_id"), req.CouponCode)
	if err != nil {
		return mapError(c, err)
	}
	return response.Created(c, result)
}

// Verify confirms a gateway payment and grants the entitlement
func (h *PaymentHandler) Verify(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req paymentsvc.VerifyRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	purchase, err := h.service.Verify(c.Context(), userID, req)
	if err != nil {
		return mapError(c, err)
	}
	return response.SuccessWithMessage(c, "Payment verified", purchase)
}

// CancelRequest identifies the pending order to abandon
type CancelRequest struct {
	OrderID string `json:"razorpay_order_id" validate:"required"`
}

// Cancel abandons a pending purchase
func (h *PaymentHandler) Cancel(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	var req CancelRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	if err := h.service.Cancel(c.Context(), userID, req.OrderID); err != nil {
		return mapError(c, err)
	}
	return response.SuccessWithMessage(c, "Payment cancelled", nil)
}

// ApplyCoupon previews a coupon against a course total
func (h *PaymentHandler) ApplyCoupon(c *fiber.Ctx) error {
	var req struct {
		CouponCode string `json:"coupon_code" validate:"required,max=10"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	result, err := h.service.ApplyCoupon(c.Context(), c.Params("course_id"), req.CouponCode, time.Now())
	if err != nil {
		return mapError(c, err)
	}
	return response.Success(c, result)
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

// ListTransactions returns all purchases for the admin dashboard
func (h *PaymentHandler) ListTransactions(c *fiber.Ctx) error {
	page, limit := pageParams(c)

	purchases, total, err := h.service.ListTransactions(c.Context(), page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load transactions")
	}
	return response.Paginated(c, purchases, response.CalculatePagination(page, limit, total))
}

// ListMyTransactions returns the caller's purchases
func (h *PaymentHandler) ListMyTransactions(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	page, limit := pageParams(c)

	purchases, total, err := h.service.ListUserTransactions(c.Context(), userID, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load transactions")
	}
	return response.Paginated(c, purchases, response.CalculatePagination(page, limit, total))
}
