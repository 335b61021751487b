package database

import (
	"fmt"
	"log"
	"os"

	"github.com/klncollege/od-provider/model"
	"github.com/klncollege/od-provider/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedPrincipal(); err != nil {
		return fmt.Errorf("failed to seed principal: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user from environment variables.
// Idempotent: skips when any admin already exists.
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return err
	}

	admin := model.User{
		Email:         adminEmail,
		PasswordHash:  passwordHash,
		FullName:      "System Administrator",
		Role:          model.RoleAdmin,
		AdminLevel:    "super",
		EmailVerified: true,
		IsActive:      true,
	}

	if err := s.db.Create(&admin).Error; err != nil {
		return err
	}

	log.Printf("👤 Created admin user %s", adminEmail)
	return nil
}

// SeedPrincipal creates the initial principal-level teacher so sequential
// approval flows can finalise from day one. Idempotent like the admin seed.
func (s *Seeder) SeedPrincipal() error {
	var count int64
	if err := s.db.Model(&model.User{}).
		Where("role = ? AND approval_level = ?", model.RoleTeacher, model.LevelPrincipal).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Principal account already exists, skipping...")
		return nil
	}

	email := os.Getenv("PRINCIPAL_EMAIL")
	password := os.Getenv("PRINCIPAL_PASSWORD")

	if email == "" || password == "" {
		log.Println("⚠️  PRINCIPAL_EMAIL and PRINCIPAL_PASSWORD environment variables not set, skipping principal creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	principal := model.User{
		Email:         email,
		PasswordHash:  passwordHash,
		FullName:      "Principal",
		Role:          model.RoleTeacher,
		Designation:   "Principal",
		ApprovalLevel: model.LevelPrincipal,
		EmailVerified: true,
		IsActive:      true,
	}

	if err := s.db.Create(&principal).Error; err != nil {
		return err
	}

	log.Printf("👤 Created principal account %s", email)
	return nil
}
