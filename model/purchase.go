package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Purchase is the ledger row for a single checkout attempt. It is created
// pending at payment initiation and either marked paid at verification or
// deleted at cancellation. A paid row is never mutated again.
type Purchase struct {
	ID                string         `gorm:"primaryKey;type:varchar(120)" json:"id"`
	CourseID          string         `gorm:"type:varchar(120);not null;index" json:"course_id"`
	UserID            uint           `gorm:"not null;index" json:"user_id"`
	Amount            float64        `gorm:"not null" json:"amount"`
	RazorpayOrderID   string         `gorm:"type:varchar(100);uniqueIndex" json:"razorpay_order_id"`
	RazorpayPaymentID string         `gorm:"type:varchar(100)" json:"razorpay_payment_id,omitempty"`
	RazorpaySignature string         `gorm:"type:varchar(100)" json:"-"`
	CouponID          *string        `gorm:"type:varchar(120)" json:"coupon_id,omitempty"`
	IsPaid            bool           `gorm:"default:false;index" json:"is_paid"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for Purchase
func (Purchase) TableName() string {
	return "purchases"
}

// BeforeCreate generates the purchase ID if not provided
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}
