package main

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"authcore/internal/database"
	"authcore/internal/domain"
)

// Deletes session rows whose refresh token has passed its lifetime anyway.
// Purely housekeeping: validity is decided by the token's signed expiry, so
// stale rows are dead weight, not a security concern. Intended as a cron job.
func main() {
	_ = godotenv.Load()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := database.Connect(databaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	res := db.Where("expires_at < ?", time.Now().UTC()).Delete(&domain.SessionToken{})
	if res.Error != nil {
		log.Fatalf("cleanup session_tokens failed: %v", res.Error)
	}

	log.Printf("auth cleanup completed: session_tokens=%d", res.RowsAffected)
}
