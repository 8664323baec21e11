package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/cache"
)

const (
	defaultCurrency  = "INR"
	transactionTTL   = 60 * time.Second
	transactionCache = "transactions:page:%d:limit:%d"
)

// Service owns the purchase lifecycle: pricing preview, coupon
// application, order initiation against the gateway, verification and
// cancellation.
type Service struct {
	db       *gorm.DB
	gateway  Gateway
	cache    *cache.RedisCache
	currency string
}

// NewService creates a payment service. The redis cache may be nil, in
// which case transaction listings are served straight from the database.
func NewService(db *gorm.DB, gateway Gateway, redisCache *cache.RedisCache) *Service {
	return &Service{
		db:       db,
		gateway:  gateway,
		cache:    redisCache,
		currency: defaultCurrency,
	}
}

// CheckoutDetails is the pricing preview shown before initiating payment.
type CheckoutDetails struct {
	CourseID   string  `json:"course_id"`
	CourseName string  `json:"course_name"`
	Price      int     `json:"price"`
	Offer      float64 `json:"offer"`
	Tax        float64 `json:"tax"`
	Total      float64 `json:"total"`

	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	City    string `json:"city,omitempty"`
	Address string `json:"address,omitempty"`
}

// CouponResult is the outcome of applying a coupon to a course total.
type CouponResult struct {
	CouponID string  `json:"coupon_id"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// InitiateResult carries what the client needs to open the gateway
// checkout widget.
type InitiateResult struct {
	PurchaseID  string  `json:"purchase_id"`
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	AmountPaise int64   `json:"amount_paise"`
	Currency    string  `json:"currency"`
}

// VerifyRequest is the gateway callback payload submitted by the client.
type VerifyRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

func (s *Service) publishedCourse(ctx context.Context, courseID string) (*model.Course, error) {
	var course model.Course
	err := s.db.WithContext(ctx).
		Where("id = ? AND status = ?", courseID, model.CourseStatusPublished).
		First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

// Checkout returns the pricing preview and the buyer's contact details
// for the checkout page.
func (s *Service) Checkout(ctx context.Context, userID uint, courseID string) (*CheckoutDetails, error) {
	course, err := s.publishedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, err
	}

	details := &CheckoutDetails{
		CourseID:   course.ID,
		CourseName: course.Name,
		Price:      course.Price,
		Offer:      course.Offer,
		Tax:        Tax(course.Price),
		Total:      ComputeTotal(course.Price, course.Offer),
		Name:       user.FullName(),
		Email:      user.Email,
	}

	var profile model.Profile
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err == nil {
		details.Phone = profile.Phone
		details.Country = profile.Country
		details.City = profile.City
		details.Address = profile.Address
	}

	return details, nil
}

// ApplyCoupon validates a coupon against a course and returns the
// discounted total. It is side-effect free: the redemption counter is
// only consumed when the payment is verified.
func (s *Service) ApplyCoupon(ctx context.Context, courseID, code string, today time.Time) (*CouponResult, error) {
	course, err := s.publishedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	coupon, err := s.findCoupon(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := Redeemable(coupon, today); err != nil {
		return nil, err
	}

	total := ComputeTotal(course.Price, course.Offer)
	discounted := ApplyDiscount(total, coupon.Discount)

	return &CouponResult{
		CouponID: coupon.ID,
		Discount: total - discounted,
		Total:    discounted,
	}, nil
}

func (s *Service) findCoupon(ctx context.Context, code string) (*model.CouponCode, error) {
	var coupon model.CouponCode
	err := s.db.WithContext(ctx).Where("code = ?", code).First(&coupon).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCouponNotFound
		}
		return nil, err
	}
	return &coupon, nil
}

// Initiate creates a gateway order and records a pending purchase row.
// A previous pending attempt for the same user and course is replaced;
// paid rows make initiation fail with ErrAlreadyPurchased.
func (s *Service) Initiate(ctx context.Context, userID uint, courseID string, couponCode string) (*InitiateResult, error) {
	course, err := s.publishedCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	var owned int64
	err = s.db.WithContext(ctx).
		Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Count(&owned).Error
	if err != nil {
		return nil, err
	}
	if owned > 0 {
		return nil, ErrAlreadyPurchased
	}

	total := ComputeTotal(course.Price, course.Offer)

	var couponID *string
	if couponCode != "" {
		coupon, err := s.findCoupon(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		if err := Redeemable(coupon, time.Now()); err != nil {
			return nil, err
		}
		total = ApplyDiscount(total, coupon.Discount)
		couponID = &coupon.ID
	}

	purchaseID := uuid.New().String()
	amountPaise := PaiseAmount(total)

	orderID, err := s.gateway.CreateOrder(ctx, amountPaise, s.currency, purchaseID)
	if err != nil {
		return nil, err
	}

	purchase := model.Purchase{
		ID:              purchaseID,
		CourseID:        courseID,
		UserID:          userID,
		Amount:          total,
		RazorpayOrderID: orderID,
		CouponID:        couponID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Abandoned pending attempts are superseded by the new order.
		if err := tx.Unscoped().
			Where("user_id = ? AND course_id = ? AND is_paid = ?", userID, courseID, false).
			Delete(&model.Purchase{}).Error; err != nil {
			return err
		}
		return tx.Create(&purchase).Error
	})
	if err != nil {
		return nil, err
	}

	return &InitiateResult{
		PurchaseID:  purchaseID,
		OrderID:     orderID,
		Amount:      total,
		AmountPaise: amountPaise,
		Currency:    s.currency,
	}, nil
}

// Verify checks the gateway signature and, in a single transaction,
// marks the purchase paid, consumes a coupon redemption and grants the
// course entitlement. The paid transition is a compare-and-set so a
// concurrent verify or cancel cannot apply it twice.
func (s *Service) Verify(ctx context.Context, userID uint, req VerifyRequest) (*model.Purchase, error) {
	var purchase model.Purchase
	err := s.db.WithContext(ctx).
		Where("razorpay_order_id = ? AND user_id = ?", req.OrderID, userID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	if purchase.IsPaid {
		return nil, ErrAlreadyPaid
	}

	// A bad signature leaves the row pending and untouched.
	if err := s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Purchase{}).
			Where("razorpay_order_id = ? AND is_paid = ?", req.OrderID, false).
			Updates(map[string]interface{}{
				"is_paid":             true,
				"razorpay_payment_id": req.PaymentID,
				"razorpay_signature":  req.Signature,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotPending
		}

		// The coupon comes from the purchase row recorded at initiation,
		// never from the client payload.
		if purchase.CouponID != nil {
			res := tx.Model(&model.CouponCode{}).
				Where("id = ? AND (is_unlimited = ? OR used < quantity)", *purchase.CouponID, true).
				UpdateColumn("used", gorm.Expr("used + ?", 1))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Exhausted between initiation and verification. The
				// payment is already captured, so the purchase proceeds.
				log.Printf("coupon %s exhausted before redemption for order %s", *purchase.CouponID, req.OrderID)
			}
		}

		enrollment := model.UserCourse{UserID: userID, CourseID: purchase.CourseID}
		res = tx.Where(model.UserCourse{UserID: userID, CourseID: purchase.CourseID}).
			FirstOrCreate(&enrollment)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			if err := tx.Model(&model.Course{}).
				Where("id = ?", purchase.CourseID).
				UpdateColumn("learners", gorm.Expr("learners + ?", 1)).Error; err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateTransactionCache(ctx)

	purchase.IsPaid = true
	purchase.RazorpayPaymentID = req.PaymentID
	purchase.RazorpaySignature = req.Signature
	return &purchase, nil
}

// Cancel deletes a pending purchase. Paid purchases are never deleted.
func (s *Service) Cancel(ctx context.Context, userID uint, orderID string) error {
	var purchase model.Purchase
	err := s.db.WithContext(ctx).
		Where("razorpay_order_id = ? AND user_id = ?", orderID, userID).
		First(&purchase).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOrderNotFound
		}
		return err
	}
	if purchase.IsPaid {
		return ErrAlreadyPaid
	}

	// Conditional delete so a concurrent verify cannot lose a paid row.
	res := s.db.WithContext(ctx).Unscoped().
		Where("razorpay_order_id = ? AND is_paid = ?", orderID, false).
		Delete(&model.Purchase{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

type transactionPage struct {
	Purchases []model.Purchase `json:"purchases"`
	Total     int64            `json:"total"`
}

// ListTransactions returns all purchases newest first, for the admin
// dashboard. Pages are cached in redis for a short window.
func (s *Service) ListTransactions(ctx context.Context, page, limit int) ([]model.Purchase, int64, error) {
	key := fmt.Sprintf(transactionCache, page, limit)
	if s.cache != nil {
		var cached transactionPage
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
			return cached.Purchases, cached.Total, nil
		}
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.Purchase{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	err := s.db.WithContext(ctx).
		Preload("Course").
		Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, transactionPage{Purchases: purchases, Total: total}, transactionTTL)
	}

	return purchases, total, nil
}

// ListUserTransactions returns a user's purchases newest first.
func (s *Service) ListUserTransactions(ctx context.Context, userID uint, page, limit int) ([]model.Purchase, int64, error) {
	var total int64
	err := s.db.WithContext(ctx).
		Model(&model.Purchase{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	err = s.db.WithContext(ctx).
		Preload("Course").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (s *Service) invalidateTransactionCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, "transactions:page:*"); err != nil {
		log.Println("failed to invalidate transaction cache:", err)
	}
}

// SweepStalePending deletes pending purchases older than the cutoff.
// Paid rows are never touched.
func (s *Service) SweepStalePending(ctx context.Context, olderThan time.Duration) (int64, error) {
	res := s.db.WithContext(ctx).Unscoped().
		Where("is_paid = ? AND created_at < ?", false, time.Now().Add(-olderThan)).
		Delete(&model.Purchase{})
	return res.RowsAffected, res.Error
}
