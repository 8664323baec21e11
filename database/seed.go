package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/coursehunt/api/model"
	"github.com/coursehunt/api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// RunSeeds runs all seed functions on the given database
func RunSeeds(db *gorm.DB) error {
	return NewSeeder(db).SeedAll()
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}
	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}
	if err := s.SeedCoupons(); err != nil {
		return fmt.Errorf("failed to seed coupons: %w", err)
	}

	log.Println("Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user from environment variables
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail == "" || adminPassword == "" {
		log.Println("ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FirstName:    "Admin",
		Method:       model.AuthMethodCredentials,
		Role:         model.RoleAdmin,
		IsActive:     true,
	}
	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("Created admin user %s", adminEmail)
	return nil
}

// SeedCourses creates a couple of sample published courses
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Courses already exist, skipping...")
		return nil
	}

	courses := []model.Course{
		{
			Name:             "Complete Web Development Bootcamp",
			ShortDescription: "HTML, CSS, JavaScript, React and Node from scratch.",
			LongDescription:  "Build and deploy full-stack applications with modern tooling.",
			Price:            1999,
			Offer:            20,
			Language:         datatypes.NewJSONSlice([]string{"English", "Hindi"}),
			Tags:             datatypes.NewJSONSlice([]string{"web", "javascript", "react"}),
			Duration:         "42 hours",
			Status:           model.CourseStatusPublished,
			Includes:         datatypes.NewJSONSlice([]string{"Lifetime access", "Certificate of completion"}),
			Requirements:     datatypes.NewJSONSlice([]string{"A laptop", "No prior experience needed"}),
		},
		{
			Name:             "Data Structures and Algorithms in Go",
			ShortDescription: "Interview preparation with practical problem solving.",
			LongDescription:  "Arrays to graphs, with complexity analysis throughout.",
			Price:            1499,
			Offer:            0,
			Language:         datatypes.NewJSONSlice([]string{"English"}),
			Tags:             datatypes.NewJSONSlice([]string{"go", "dsa", "interviews"}),
			Duration:         "30 hours",
			Status:           model.CourseStatusPublished,
			Includes:         datatypes.NewJSONSlice([]string{"Lifetime access", "150 practice problems"}),
			Requirements:     datatypes.NewJSONSlice([]string{"Basic programming knowledge"}),
		},
	}

	for i := range courses {
		if err := s.db.Create(&courses[i]).Error; err != nil {
			return err
		}
	}

	log.Printf("Created %d sample courses", len(courses))
	return nil
}

// SeedCoupons creates a sample welcome coupon
func (s *Seeder) SeedCoupons() error {
	var count int64
	if err := s.db.Model(&model.CouponCode{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		log.Println("Coupons already exist, skipping...")
		return nil
	}

	quantity := 100
	coupon := model.CouponCode{
		Code:     "WELCOME100",
		Discount: 100,
		Expiry:   time.Now().AddDate(0, 3, 0),
		Quantity: &quantity,
		IsActive: true,
	}
	if err := s.db.Create(&coupon).Error; err != nil {
		return err
	}

	log.Println("Created welcome coupon")
	return nil
}
