package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehunt/api/model"
)

// fakeGateway stands in for Razorpay. Orders get sequential ids and
// only the signature "sig-valid" verifies.
type fakeGateway struct {
	orders      int
	createErr   error
	lastAmount  int64
	lastReceipt string
}

func (g *fakeGateway) CreateOrder(ctx context.Context, amountPaise int64, currency, receipt string) (string, error) {
	if g.createErr != nil {
		return "", g.createErr
	}
	g.orders++
	g.lastAmount = amountPaise
	g.lastReceipt = receipt
	return fmt.Sprintf("order_test_%d", g.orders), nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) error {
	if signature != "sig-valid" {
		return ErrInvalidSignature
	}
	return nil
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every pooled connection to :memory: would get its own database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.Course{},
		&model.UserCourse{},
		&model.CouponCode{},
		&model.Purchase{},
	))
	return db
}

func setupService(t *testing.T) (*Service, *fakeGateway, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	gateway := &fakeGateway{}
	return NewService(db, gateway, nil), gateway, db
}

func createUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := model.User{
		Email:     email,
		FirstName: "Test",
		LastName:  "User",
		IsActive:  true,
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createCourse(t *testing.T, db *gorm.DB, price int, offer float64, status string) *model.Course {
	t.Helper()
	course := model.Course{
		Name:   "Go from Scratch",
		Price:  price,
		Offer:  offer,
		Status: status,
	}
	require.NoError(t, db.Create(&course).Error)
	return &course
}

func createCoupon(t *testing.T, db *gorm.DB, code string, discount float64, quantity *int, unlimited bool) *model.CouponCode {
	t.Helper()
	coupon := model.CouponCode{
		Code:        code,
		Discount:    discount,
		Expiry:      time.Now().AddDate(0, 1, 0),
		Quantity:    quantity,
		IsUnlimited: unlimited,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&coupon).Error)
	return &coupon
}

func TestCheckout(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 10, model.CourseStatusPublished)
	require.NoError(t, db.Create(&model.Profile{
		UserID: user.ID, Phone: "9876543210", Country: "India", City: "Indore",
	}).Error)

	details, err := svc.Checkout(ctx, user.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, course.ID, details.CourseID)
	assert.Equal(t, 1000, details.Price)
	assert.InDelta(t, 180.0, details.Tax, 1e-9)
	assert.InDelta(t, 1062.0, details.Total, 1e-9)
	assert.Equal(t, "Test User", details.Name)
	assert.Equal(t, "9876543210", details.Phone)
	assert.Equal(t, "Indore", details.City)
}

func TestCheckoutUnpublishedCourse(t *testing.T) {
	svc, _, db := setupService(t)
	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusDraft)

	_, err := svc.Checkout(context.Background(), user.ID, course.ID)
	assert.ErrorIs(t, err, ErrCourseNotFound)
}

func TestApplyCouponIsSideEffectFree(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	coupon := createCoupon(t, db, "SAVE100", 100, intPtr(5), false)

	result, err := svc.ApplyCoupon(ctx, course.ID, "SAVE100", time.Now())
	require.NoError(t, err)
	assert.Equal(t, coupon.ID, result.CouponID)
	assert.InDelta(t, 100.0, result.Discount, 1e-9)
	assert.InDelta(t, 1080.0, result.Total, 1e-9)

	var fresh model.CouponCode
	require.NoError(t, db.First(&fresh, "id = ?", coupon.ID).Error)
	assert.Equal(t, 0, fresh.Used, "validation must not consume a redemption")

	_, err = svc.ApplyCoupon(ctx, course.ID, "NOPE", time.Now())
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestApplyCouponDiscountClampsAtZero(t *testing.T) {
	svc, _, db := setupService(t)

	course := createCourse(t, db, 100, 0, model.CourseStatusPublished)
	createCoupon(t, db, "FREEBIE", 10000, nil, true)

	result, err := svc.ApplyCoupon(context.Background(), course.ID, "FREEBIE", time.Now())
	require.NoError(t, err)
	assert.InDelta(t, 0.0, result.Total, 1e-9)
	assert.InDelta(t, 118.0, result.Discount, 1e-9)
}

func TestInitiate(t *testing.T) {
	svc, gateway, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "order_test_1", result.OrderID)
	assert.InDelta(t, 1180.0, result.Amount, 1e-9)
	assert.Equal(t, int64(118000), result.AmountPaise)
	assert.Equal(t, "INR", result.Currency)
	assert.Equal(t, result.PurchaseID, gateway.lastReceipt)
	assert.Equal(t, int64(118000), gateway.lastAmount)

	var purchase model.Purchase
	require.NoError(t, db.First(&purchase, "razorpay_order_id = ?", result.OrderID).Error)
	assert.False(t, purchase.IsPaid)
	assert.Nil(t, purchase.CouponID)
}

func TestInitiateReplacesPendingAttempt(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	first, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)
	second, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)
	assert.NotEqual(t, first.OrderID, second.OrderID)

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Purchase{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&count).Error)
	assert.Equal(t, int64(1), count, "a new attempt supersedes the old pending row")

	var remaining model.Purchase
	require.NoError(t, db.First(&remaining, "user_id = ?", user.ID).Error)
	assert.Equal(t, second.OrderID, remaining.RazorpayOrderID)
}

func TestInitiateAlreadyPurchased(t *testing.T) {
	svc, _, db := setupService(t)
	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	require.NoError(t, db.Create(&model.UserCourse{UserID: user.ID, CourseID: course.ID}).Error)

	_, err := svc.Initiate(context.Background(), user.ID, course.ID, "")
	assert.ErrorIs(t, err, ErrAlreadyPurchased)
}

func TestInitiateGatewayDown(t *testing.T) {
	svc, gateway, db := setupService(t)
	gateway.createErr = ErrGatewayUnavailable

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	_, err := svc.Initiate(context.Background(), user.ID, course.ID, "")
	assert.ErrorIs(t, err, ErrGatewayUnavailable)

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Purchase{}).Count(&count).Error)
	assert.Zero(t, count, "no purchase row without a gateway order")
}

func TestInitiateWithCouponRecordsCouponID(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	coupon := createCoupon(t, db, "SAVE100", 100, intPtr(5), false)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "SAVE100")
	require.NoError(t, err)
	assert.InDelta(t, 1080.0, result.Amount, 1e-9)

	var purchase model.Purchase
	require.NoError(t, db.First(&purchase, "razorpay_order_id = ?", result.OrderID).Error)
	require.NotNil(t, purchase.CouponID)
	assert.Equal(t, coupon.ID, *purchase.CouponID)

	var fresh model.CouponCode
	require.NoError(t, db.First(&fresh, "id = ?", coupon.ID).Error)
	assert.Equal(t, 0, fresh.Used, "redemption is consumed at verification, not initiation")
}

func TestVerify(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	coupon := createCoupon(t, db, "SAVE100", 100, intPtr(5), false)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "SAVE100")
	require.NoError(t, err)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-valid"}
	purchase, err := svc.Verify(ctx, user.ID, req)
	require.NoError(t, err)
	assert.True(t, purchase.IsPaid)
	assert.Equal(t, "pay_1", purchase.RazorpayPaymentID)

	var stored model.Purchase
	require.NoError(t, db.First(&stored, "razorpay_order_id = ?", result.OrderID).Error)
	assert.True(t, stored.IsPaid)

	var enrolled int64
	require.NoError(t, db.Model(&model.UserCourse{}).
		Where("user_id = ? AND course_id = ?", user.ID, course.ID).
		Count(&enrolled).Error)
	assert.Equal(t, int64(1), enrolled)

	var freshCourse model.Course
	require.NoError(t, db.First(&freshCourse, "id = ?", course.ID).Error)
	assert.Equal(t, 1, freshCourse.Learners)

	var freshCoupon model.CouponCode
	require.NoError(t, db.First(&freshCoupon, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, freshCoupon.Used)
}

func TestVerifyIsOneWay(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	coupon := createCoupon(t, db, "SAVE100", 100, intPtr(5), false)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "SAVE100")
	require.NoError(t, err)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-valid"}
	_, err = svc.Verify(ctx, user.ID, req)
	require.NoError(t, err)

	_, err = svc.Verify(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrAlreadyPaid)

	// Replaying must not double-count the coupon or the enrollment.
	var freshCoupon model.CouponCode
	require.NoError(t, db.First(&freshCoupon, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, freshCoupon.Used)

	var freshCourse model.Course
	require.NoError(t, db.First(&freshCourse, "id = ?", course.ID).Error)
	assert.Equal(t, 1, freshCourse.Learners)
}

func TestVerifyBadSignatureLeavesRowPending(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-forged"}
	_, err = svc.Verify(ctx, user.ID, req)
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var stored model.Purchase
	require.NoError(t, db.First(&stored, "razorpay_order_id = ?", result.OrderID).Error)
	assert.False(t, stored.IsPaid)

	var enrolled int64
	require.NoError(t, db.Model(&model.UserCourse{}).Count(&enrolled).Error)
	assert.Zero(t, enrolled)
}

func TestVerifyUnknownOrder(t *testing.T) {
	svc, _, db := setupService(t)
	user := createUser(t, db, "buyer@example.com")

	req := VerifyRequest{OrderID: "order_missing", PaymentID: "pay_1", Signature: "sig-valid"}
	_, err := svc.Verify(context.Background(), user.ID, req)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestVerifyOtherUsersOrder(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	buyer := createUser(t, db, "buyer@example.com")
	other := createUser(t, db, "other@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	result, err := svc.Initiate(ctx, buyer.ID, course.ID, "")
	require.NoError(t, err)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-valid"}
	_, err = svc.Verify(ctx, other.ID, req)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestVerifyProceedsWhenCouponExhaustedLate(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	coupon := createCoupon(t, db, "SAVE100", 100, intPtr(1), false)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "SAVE100")
	require.NoError(t, err)

	// The last redemption goes to someone else while this payment is in
	// flight at the gateway.
	require.NoError(t, db.Model(&model.CouponCode{}).
		Where("id = ?", coupon.ID).
		UpdateColumn("used", 1).Error)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-valid"}
	purchase, err := svc.Verify(ctx, user.ID, req)
	require.NoError(t, err, "a captured payment is honored even if the coupon ran out")
	assert.True(t, purchase.IsPaid)

	var freshCoupon model.CouponCode
	require.NoError(t, db.First(&freshCoupon, "id = ?", coupon.ID).Error)
	assert.Equal(t, 1, freshCoupon.Used, "the counter never exceeds the quantity")
}

func TestCancel(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(ctx, user.ID, result.OrderID))

	var count int64
	require.NoError(t, db.Unscoped().Model(&model.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)

	assert.ErrorIs(t, svc.Cancel(ctx, user.ID, result.OrderID), ErrOrderNotFound)
}

func TestCancelNeverDeletesPaidPurchase(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	result, err := svc.Initiate(ctx, user.ID, course.ID, "")
	require.NoError(t, err)

	req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_1", Signature: "sig-valid"}
	_, err = svc.Verify(ctx, user.ID, req)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Cancel(ctx, user.ID, result.OrderID), ErrAlreadyPaid)

	var count int64
	require.NoError(t, db.Model(&model.Purchase{}).Where("is_paid = ?", true).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestListUserTransactions(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	buyer := createUser(t, db, "buyer@example.com")
	other := createUser(t, db, "other@example.com")
	first := createCourse(t, db, 1000, 0, model.CourseStatusPublished)
	second := createCourse(t, db, 2000, 0, model.CourseStatusPublished)

	for _, c := range []*model.Course{first, second} {
		result, err := svc.Initiate(ctx, buyer.ID, c.ID, "")
		require.NoError(t, err)
		req := VerifyRequest{OrderID: result.OrderID, PaymentID: "pay_" + c.ID, Signature: "sig-valid"}
		_, err = svc.Verify(ctx, buyer.ID, req)
		require.NoError(t, err)
	}

	purchases, total, err := svc.ListUserTransactions(ctx, buyer.ID, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, purchases, 2)

	_, total, err = svc.ListUserTransactions(ctx, other.ID, 1, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestSweepStalePending(t *testing.T) {
	svc, _, db := setupService(t)
	ctx := context.Background()

	user := createUser(t, db, "buyer@example.com")
	course := createCourse(t, db, 1000, 0, model.CourseStatusPublished)

	stale := model.Purchase{
		CourseID:        course.ID,
		UserID:          user.ID,
		Amount:          1180,
		RazorpayOrderID: "order_stale",
		CreatedAt:       time.Now().Add(-48 * time.Hour),
	}
	require.NoError(t, db.Create(&stale).Error)

	fresh := model.Purchase{
		CourseID:        course.ID,
		UserID:          user.ID,
		Amount:          1180,
		RazorpayOrderID: "order_fresh",
	}
	require.NoError(t, db.Create(&fresh).Error)

	paid := model.Purchase{
		CourseID:        course.ID,
		UserID:          user.ID,
		Amount:          1180,
		RazorpayOrderID: "order_paid",
		IsPaid:          true,
		CreatedAt:       time.Now().Add(-72 * time.Hour),
	}
	require.NoError(t, db.Create(&paid).Error)

	deleted, err := svc.SweepStalePending(ctx, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	var remaining []model.Purchase
	require.NoError(t, db.Unscoped().Find(&remaining).Error)
	require.Len(t, remaining, 2)
	for _, p := range remaining {
		assert.NotEqual(t, "order_stale", p.RazorpayOrderID)
	}
}
