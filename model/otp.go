package model

import (
	"time"

	"gorm.io/gorm"
)

// OTP purposes
const (
	OTPPurposeActivation = "activation"
	OTPPurposeLogin      = "login"
	OTPPurposeResetEmail = "reset_email"
)

// OTPCode stores short-lived numeric codes sent to users over email.
// A code is single-use: UsedAt is set when it is consumed.
type OTPCode struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    uint           `gorm:"index;not null" json:"user_id"`
	Code      string         `gorm:"type:varchar(10);not null" json:"-"`
	Purpose   string         `gorm:"type:varchar(20);not null;index" json:"purpose"`
	ExpiresAt time.Time      `gorm:"index;not null" json:"expires_at"`
	UsedAt    *time.Time     `json:"used_at,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for OTPCode
func (OTPCode) TableName() string {
	return "otp_codes"
}

// IsExpired checks if the code has expired
func (o *OTPCode) IsExpired() bool {
	return time.Now().After(o.ExpiresAt)
}

// IsUsed checks if the code has already been consumed
func (o *OTPCode) IsUsed() bool {
	return o.UsedAt != nil
}

// MarkAsUsed marks the code as consumed
func (o *OTPCode) MarkAsUsed() {
	now := time.Now()
	o.UsedAt = &now
}
