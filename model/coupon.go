package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CouponCode is an admin-issued flat-discount code. Discount is an
// absolute amount subtracted from the computed total, not a percentage.
type CouponCode struct {
	ID          string         `gorm:"primaryKey;type:varchar(120)" json:"id"`
	Code        string         `gorm:"type:varchar(10);uniqueIndex;not null" json:"code"`
	Discount    float64        `gorm:"not null" json:"discount"`
	Expiry      time.Time      `gorm:"type:date;not null" json:"expiry"`
	Quantity    *int           `json:"quantity"` // nil or ignored when IsUnlimited
	Used        int            `gorm:"default:0" json:"used"`
	IsUnlimited bool           `gorm:"default:false" json:"is_unlimited"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for CouponCode
func (CouponCode) TableName() string {
	return "coupon_codes"
}

// BeforeCreate generates the coupon ID if not provided
func (c *CouponCode) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// IsExpired reports whether the coupon expired before the given day.
// The comparison is by calendar date, each taken in its own location,
// so a coupon stays valid through the end of its expiry date regardless
// of the server's timezone.
func (c *CouponCode) IsExpired(today time.Time) bool {
	ey, em, ed := c.Expiry.Date()
	expiry := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	ty, tm, td := today.Date()
	day := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return expiry.Before(day)
}

// IsExhausted reports whether the redemption cap has been reached.
func (c *CouponCode) IsExhausted() bool {
	if c.IsUnlimited {
		return false
	}
	if c.Quantity == nil {
		return true
	}
	return c.Used >= *c.Quantity
}
