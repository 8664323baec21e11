package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Course publication states
const (
	CourseStatusDraft     = "draft"
	CourseStatusPublished = "published"
)

// Course represents a purchasable course in the catalog
type Course struct {
	ID               string                      `gorm:"primaryKey;type:varchar(120)" json:"id"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
	DeletedAt        gorm.DeletedAt              `gorm:"index" json:"-"`
	Name             string                      `gorm:"type:varchar(120);not null" json:"name"`
	ShortDescription string                      `gorm:"type:text" json:"short_description"`
	LongDescription  string                      `gorm:"type:text" json:"long_description"`
	Price            int                         `gorm:"default:0" json:"price"`
	Offer            float64                     `gorm:"default:0" json:"offer"` // percentage discount, 0-100
	Language         datatypes.JSONSlice[string] `json:"language"`
	Tags             datatypes.JSONSlice[string] `json:"tags"`
	Rating           float64                     `gorm:"default:0" json:"rating"`
	Learners         int                         `gorm:"default:0" json:"learners"`
	Duration         string                      `gorm:"type:varchar(50)" json:"duration"`
	Thumbnail        string                      `gorm:"type:varchar(1000)" json:"thumbnail"`
	Status           string                      `gorm:"type:varchar(20);default:'draft'" json:"status"`
	VideoURL         string                      `gorm:"type:varchar(1000)" json:"video_url,omitempty"`
	NotesURL         string                      `gorm:"type:varchar(1000)" json:"notes_url,omitempty"`
	PresentationURL  string                      `gorm:"type:varchar(1000)" json:"presentation_url,omitempty"`
	CodeURL          string                      `gorm:"type:varchar(1000)" json:"code_url,omitempty"`
	Content          string                      `gorm:"type:text" json:"content,omitempty"`
	Includes         datatypes.JSONSlice[string] `json:"includes"`
	Requirements     datatypes.JSONSlice[string] `json:"requirements"`
	CreatedByID      uint                        `gorm:"index" json:"created_by"`

	// Relationships
	CreatedBy   User         `gorm:"foreignKey:CreatedByID" json:"-"`
	Enrollments []UserCourse `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates the course ID if not provided
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// IsPublished reports whether the course is visible to non-admin users
func (c *Course) IsPublished() bool {
	return c.Status == CourseStatusPublished
}

// UserCourse is the entitlement set: one row per course a user owns.
// The composite primary key makes entitlement grants naturally idempotent.
type UserCourse struct {
	UserID     uint      `gorm:"primaryKey" json:"user_id"`
	CourseID   string    `gorm:"primaryKey;type:varchar(120)" json:"course_id"`
	EnrolledAt time.Time `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}

// TableName specifies the table name for UserCourse
func (UserCourse) TableName() string {
	return "user_courses"
}
