package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Instructor is a directory entry for a user who teaches on the platform
type Instructor struct {
	ID         uint                        `gorm:"primaryKey" json:"id"`
	UserID     uint                        `gorm:"uniqueIndex;not null" json:"user_id"`
	Bio        string                      `gorm:"type:text" json:"bio"`
	Skills     datatypes.JSONSlice[string] `json:"skills"`
	Experience int                         `gorm:"default:0" json:"experience"` // years
	Website    string                      `gorm:"type:varchar(1000)" json:"website,omitempty"`
	Github     string                      `gorm:"type:varchar(1000)" json:"github,omitempty"`
	Linkedin   string                      `gorm:"type:varchar(1000)" json:"linkedin,omitempty"`
	Youtube    string                      `gorm:"type:varchar(1000)" json:"youtube,omitempty"`
	CreatedAt  time.Time                   `json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
	DeletedAt  gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
}

// TableName specifies the table name for Instructor
func (Instructor) TableName() string {
	return "instructors"
}
