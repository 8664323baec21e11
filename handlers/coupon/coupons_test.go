package coupon

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
)

func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.CouponCode{}))

	handler := NewCouponHandler(db)
	app := fiber.New()
	app.Get("/coupons", handler.List)
	app.Post("/coupons", handler.Create)
	app.Put("/coupons/:id", handler.Update)
	app.Delete("/coupons/:id", handler.Delete)
	return app, db
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func validRequest() CouponRequest {
	quantity := 50
	return CouponRequest{
		Code:     "save100",
		Discount: 100,
		Expiry:   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		Quantity: &quantity,
	}
}

func TestCreateCoupon(t *testing.T) {
	app, db := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/coupons", validRequest()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var stored model.CouponCode
	require.NoError(t, db.First(&stored, "code = ?", "SAVE100").Error)
	assert.Equal(t, "SAVE100", stored.Code, "codes are normalized to upper case")
	assert.True(t, stored.IsActive)
	assert.NotEmpty(t, stored.ID)
}

func TestCreateCouponValidation(t *testing.T) {
	app, _ := setupApp(t)

	missingCode := validRequest()
	missingCode.Code = ""
	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/coupons", missingCode))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	codeTooLong := validRequest()
	codeTooLong.Code = "WAYTOOLONGCODE"
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/coupons", codeTooLong))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	zeroDiscount := validRequest()
	zeroDiscount.Discount = 0
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/coupons", zeroDiscount))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	badExpiry := validRequest()
	badExpiry.Expiry = "31-12-2026"
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/coupons", badExpiry))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	limitedWithoutQuantity := validRequest()
	limitedWithoutQuantity.Quantity = nil
	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/coupons", limitedWithoutQuantity))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateCouponDuplicateCode(t *testing.T) {
	app, _ := setupApp(t)

	resp, err := app.Test(jsonRequest(t, http.MethodPost, "/coupons", validRequest()))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = app.Test(jsonRequest(t, http.MethodPost, "/coupons", validRequest()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestUpdateCoupon(t *testing.T) {
	app, db := setupApp(t)

	quantity := 10
	coupon := model.CouponCode{
		Code:     "OLD1",
		Discount: 50,
		Expiry:   time.Now().AddDate(0, 1, 0),
		Quantity: &quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	update := validRequest()
	inactive := false
	update.IsActive = &inactive
	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/coupons/"+coupon.ID, update))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.CouponCode
	require.NoError(t, db.First(&stored, "id = ?", coupon.ID).Error)
	assert.Equal(t, "SAVE100", stored.Code)
	assert.False(t, stored.IsActive)

	resp, err = app.Test(jsonRequest(t, http.MethodPut, "/coupons/missing-id", validRequest()))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateCouponPartial(t *testing.T) {
	app, db := setupApp(t)

	quantity := 25
	expiry := time.Now().AddDate(0, 1, 0)
	coupon := model.CouponCode{
		Code:     "KEEP10",
		Discount: 50,
		Expiry:   expiry,
		Quantity: &quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	body := map[string]interface{}{"discount": 250}
	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/coupons/"+coupon.ID, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var stored model.CouponCode
	require.NoError(t, db.First(&stored, "id = ?", coupon.ID).Error)
	assert.InDelta(t, 250.0, stored.Discount, 1e-9)
	assert.Equal(t, "KEEP10", stored.Code, "omitted fields keep their values")
	require.NotNil(t, stored.Quantity)
	assert.Equal(t, 25, *stored.Quantity)
	assert.True(t, stored.IsActive)
}

func TestUpdateCouponRequiresQuantityWhenMadeLimited(t *testing.T) {
	app, db := setupApp(t)

	coupon := model.CouponCode{
		Code:        "NOLIMIT",
		Discount:    50,
		Expiry:      time.Now().AddDate(0, 1, 0),
		IsUnlimited: true,
		IsActive:    true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	body := map[string]interface{}{"is_unlimited": false}
	resp, err := app.Test(jsonRequest(t, http.MethodPut, "/coupons/"+coupon.ID, body))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var stored model.CouponCode
	require.NoError(t, db.First(&stored, "id = ?", coupon.ID).Error)
	assert.True(t, stored.IsUnlimited, "rejected edits leave the coupon unchanged")
}

func TestDeleteCoupon(t *testing.T) {
	app, db := setupApp(t)

	quantity := 10
	coupon := model.CouponCode{
		Code:     "GONE1",
		Discount: 50,
		Expiry:   time.Now().AddDate(0, 1, 0),
		Quantity: &quantity,
		IsActive: true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	req := httptest.NewRequest(http.MethodDelete, "/coupons/"+coupon.ID, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodDelete, "/coupons/"+coupon.ID, nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
