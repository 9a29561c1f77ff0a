package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm/clause"

	"authcore/internal/database"
	"authcore/internal/domain"
)

// Bootstraps the first admin account. The admin gate reads the role from the
// directory on every request, so promoting a user here takes effect
// immediately without touching any issued tokens.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}
	email := os.Getenv("ADMIN_EMAIL")
	password := os.Getenv("ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("ADMIN_EMAIL and ADMIN_PASSWORD are required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	if err := db.AutoMigrate(&domain.User{}, &domain.SessionToken{}); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("hash password failed: %v", err)
	}

	admin := domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         domain.RoleAdmin,
	}

	// Upsert by email: re-running the seed rotates the password and restores
	// the admin role if it was revoked.
	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "role", "updated_at"}),
	}).Create(&admin).Error
	if err != nil {
		log.Fatalf("seed admin failed: %v", err)
	}

	log.Printf("admin account ready: %s", email)
}
