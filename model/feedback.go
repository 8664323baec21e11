package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback is a site-wide rating and comment left by a user
type Feedback struct {
	ID        string         `gorm:"primaryKey;type:varchar(120)" json:"id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	Feedback  string         `gorm:"type:text" json:"feedback"`
	Rating    int            `gorm:"default:0" json:"rating"` // clamped to 0..5
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for Feedback
func (Feedback) TableName() string {
	return "feedbacks"
}

// BeforeSave generates the ID if missing and clamps the rating to 0..5
func (f *Feedback) BeforeSave(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Rating < 0 {
		f.Rating = 0
	} else if f.Rating > 5 {
		f.Rating = 5
	}
	return nil
}
