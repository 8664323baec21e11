package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Blog represents a published article
type Blog struct {
	ID        string         `gorm:"primaryKey;type:varchar(120)" json:"id"`
	Title     string         `gorm:"type:varchar(100);not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Image     string         `gorm:"type:varchar(1000)" json:"image"`
	Likes     int            `gorm:"default:0" json:"likes"`
	Read      int            `gorm:"default:0" json:"read"`
	Comments  int            `gorm:"default:0" json:"comments"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	CommentList []Comment `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate generates the blog ID if not provided
func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// BlogLike records which users liked a blog so likes stay idempotent
type BlogLike struct {
	BlogID    string    `gorm:"primaryKey;type:varchar(120)" json:"blog_id"`
	UserID    uint      `gorm:"primaryKey" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Blog Blog `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"-"`
	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for BlogLike
func (BlogLike) TableName() string {
	return "blog_likes"
}

// Comment is a threaded comment on a blog. ParentID is nil for top-level
// comments and points at another comment for replies.
type Comment struct {
	ID        string         `gorm:"primaryKey;type:varchar(120)" json:"id"`
	BlogID    string         `gorm:"type:varchar(120);not null;index" json:"blog_id"`
	UserID    uint           `gorm:"not null;index" json:"user_id"`
	ParentID  *string        `gorm:"type:varchar(120);index" json:"parent_id,omitempty"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Blog    Blog      `gorm:"foreignKey:BlogID;constraint:OnDelete:CASCADE" json:"-"`
	User    User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Replies []Comment `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"replies,omitempty"`
}

// BeforeCreate generates the comment ID if not provided
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}
