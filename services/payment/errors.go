package payment

import "errors"

var (
	ErrCourseNotFound     = errors.New("course not found")
	ErrCouponNotFound     = errors.New("coupon code not found")
	ErrCouponInactive     = errors.New("coupon code is inactive")
	ErrCouponExpired      = errors.New("coupon code has expired")
	ErrCouponExhausted    = errors.New("coupon code has been fully redeemed")
	ErrAlreadyPurchased   = errors.New("course already purchased")
	ErrOrderNotFound      = errors.New("payment order not found")
	ErrInvalidSignature   = errors.New("payment signature verification failed")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrAlreadyPaid        = errors.New("payment already completed")
	ErrOrderNotPending    = errors.New("payment order is no longer pending")
)
