package payment

import (
	"time"

	"github.com/coursehunt/api/model"
)

// Redeemable reports whether a coupon can be applied on the given day.
// It is a pure check: validation never consumes a redemption. The checks
// run in order so callers get the most specific error.
func Redeemable(c *model.CouponCode, today time.Time) error {
	if c == nil {
		return ErrCouponNotFound
	}
	if !c.IsActive {
		return ErrCouponInactive
	}
	if c.IsExpired(today) {
		return ErrCouponExpired
	}
	if c.IsExhausted() {
		return ErrCouponExhausted
	}
	return nil
}
