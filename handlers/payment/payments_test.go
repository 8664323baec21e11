package payment

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coursehunt/api/model"
	paymentsvc "github.com/coursehunt/api/services/payment"
)

func setupApplyApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Course{}, &model.CouponCode{}))

	handler := NewPaymentHandler(paymentsvc.NewService(db, nil, nil))
	app := fiber.New()
	app.Post("/coupons/apply/:course_id", handler.ApplyCoupon)
	return app, db
}

func TestApplyCouponRequestField(t *testing.T) {
	app, db := setupApplyApp(t)

	course := model.Course{Name: "Go from Scratch", Price: 1000, Status: model.CourseStatusPublished}
	require.NoError(t, db.Create(&course).Error)

	quantity := 10
	coupon := model.CouponCode{
		Code:     "SAVE100",
		Discount: 100,
		Expiry:   time.Now().AddDate(0, 1, 0),
		Quantity: &quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	body := func(payload map[string]interface{}) *http.Request {
		var buf bytes.Buffer
		require.NoError(t, json.NewEncoder(&buf).Encode(payload))
		req := httptest.NewRequest(http.MethodPost, "/coupons/apply/"+course.ID, &buf)
		req.Header.Set("Content-Type", "application/json")
		return req
	}

	// Same field name the initiate endpoint uses.
	resp, err := app.Test(body(map[string]interface{}{"coupon_code": "SAVE100"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(body(map[string]interface{}{"coupon_code": ""}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp, err = app.Test(body(map[string]interface{}{"coupon_code": "UNKNOWN"}))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
