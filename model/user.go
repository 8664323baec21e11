package model

import (
	"time"

	"gorm.io/gorm"
)

// Auth methods a user can sign up with
const (
	AuthMethodCredentials = "credentials"
	AuthMethodGoogle      = "google"
	AuthMethodGithub      = "github"
)

// User roles
const (
	RoleStudent    = "student"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// User represents a registered user in the system
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"` // Never expose password in JSON
	FirstName    string         `gorm:"not null" json:"first_name"`
	LastName     string         `json:"last_name"`
	Image        string         `gorm:"type:varchar(1000)" json:"image,omitempty"`
	Method       string         `gorm:"type:varchar(20);default:'credentials'" json:"method"`
	Role         string         `gorm:"type:varchar(20);default:'student'" json:"role"`
	IsActive     bool           `gorm:"default:false" json:"is_active"` // false until OTP activation
	TokenVersion int            `gorm:"default:0" json:"-"`             // Increment to invalidate all user tokens

	// Relationships
	Profile          Profile             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"profile,omitempty"`
	PurchasedCourses []UserCourse        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Purchases        []Purchase          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	TokenBlacklist   []JWTTokenBlacklist `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// FullName returns the user's display name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Profile holds the billing/contact details attached to a user
type Profile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	Country   string    `gorm:"type:varchar(100)" json:"country"`
	City      string    `gorm:"type:varchar(100)" json:"city"`
	Address   string    `gorm:"type:varchar(1000)" json:"address"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}
