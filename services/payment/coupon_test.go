package payment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/coursehunt/api/model"
)

func intPtr(v int) *int { return &v }

func validCoupon() *model.CouponCode {
	return &model.CouponCode{
		ID:       "coupon-1",
		Code:     "SAVE100",
		Discount: 100,
		Expiry:   time.Now().AddDate(0, 1, 0),
		Quantity: intPtr(10),
		IsActive: true,
	}
}

func TestRedeemable(t *testing.T) {
	now := time.Now()

	assert.NoError(t, Redeemable(validCoupon(), now))
	assert.ErrorIs(t, Redeemable(nil, now), ErrCouponNotFound)

	inactive := validCoupon()
	inactive.IsActive = false
	assert.ErrorIs(t, Redeemable(inactive, now), ErrCouponInactive)

	expired := validCoupon()
	expired.Expiry = now.AddDate(0, 0, -1)
	assert.ErrorIs(t, Redeemable(expired, now), ErrCouponExpired)

	exhausted := validCoupon()
	exhausted.Used = 10
	assert.ErrorIs(t, Redeemable(exhausted, now), ErrCouponExhausted)
}

func TestRedeemableErrorPrecedence(t *testing.T) {
	// An inactive coupon reports inactive even when it is also expired
	// and exhausted.
	c := validCoupon()
	c.IsActive = false
	c.Expiry = time.Now().AddDate(0, 0, -7)
	c.Used = 99
	assert.ErrorIs(t, Redeemable(c, time.Now()), ErrCouponInactive)
}

func TestCouponExpiryIsDateInclusive(t *testing.T) {
	// A coupon expiring today is still redeemable for the whole day.
	now := time.Now()
	c := validCoupon()
	c.Expiry = now.Truncate(24 * time.Hour)
	assert.NoError(t, Redeemable(c, now))

	assert.Error(t, Redeemable(c, now.AddDate(0, 0, 1)))
}

func TestCouponExpiryIgnoresTimezoneOffset(t *testing.T) {
	// Expiry dates come back from the DB in UTC while "today" is the
	// server's local time. The comparison is by calendar date, so a
	// coupon expiring today stays valid late in the evening even when
	// the local day lags or leads UTC.
	c := validCoupon()
	c.Expiry = time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)

	west := time.FixedZone("UTC-11", -11*3600)
	lateEvening := time.Date(2026, time.March, 10, 23, 0, 0, 0, west)
	assert.NoError(t, Redeemable(c, lateEvening))

	east := time.FixedZone("UTC+13", 13*3600)
	earlyMorning := time.Date(2026, time.March, 10, 1, 0, 0, 0, east)
	assert.NoError(t, Redeemable(c, earlyMorning))

	dayAfter := time.Date(2026, time.March, 11, 0, 30, 0, 0, west)
	assert.ErrorIs(t, Redeemable(c, dayAfter), ErrCouponExpired)
}

func TestCouponExhaustion(t *testing.T) {
	unlimited := validCoupon()
	unlimited.IsUnlimited = true
	unlimited.Quantity = nil
	unlimited.Used = 100000
	assert.False(t, unlimited.IsExhausted())
	assert.NoError(t, Redeemable(unlimited, time.Now()))

	// A limited coupon without a quantity can never be redeemed.
	noQuantity := validCoupon()
	noQuantity.Quantity = nil
	assert.True(t, noQuantity.IsExhausted())

	almostUsed := validCoupon()
	almostUsed.Used = 9
	assert.False(t, almostUsed.IsExhausted())
	almostUsed.Used = 10
	assert.True(t, almostUsed.IsExhausted())
}
