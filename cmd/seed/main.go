package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"mentorhub/internal/config"
	"mentorhub/internal/database"
	"mentorhub/internal/domain"
	"mentorhub/internal/repository"
)

// Seeds a demo mentor with a weekday schedule and a demo mentee so the API
// can be exercised right after a fresh migration.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	windows := repository.NewAvailabilityRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	mentor := &domain.User{
		Email:        "mentor@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleMentor,
		Name:         "Aigerim Mentor",
		Bio:          "Backend engineering, 10 years in production systems",
		HourlyRate:   100000,
	}
	if err := users.Create(ctx, mentor); err != nil {
		log.Fatalf("seed mentor: %v", err)
	}

	mentee := &domain.User{
		Email:        "mentee@example.com",
		PasswordHash: string(hash),
		Role:         domain.RoleMentee,
		Name:         "Daniyar Mentee",
	}
	if err := users.Create(ctx, mentee); err != nil {
		log.Fatalf("seed mentee: %v", err)
	}

	weekly := make([]domain.AvailabilityWindow, 0, 5)
	for day := 1; day <= 5; day++ {
		weekly = append(weekly, domain.AvailabilityWindow{
			MentorID:  mentor.ID,
			DayOfWeek: day,
			StartTime: "09:00",
			EndTime:   "12:00",
			IsActive:  true,
		})
	}
	if err := windows.ReplaceForMentor(ctx, mentor.ID, weekly); err != nil {
		log.Fatalf("seed availability: %v", err)
	}

	log.Printf("seeded mentor=%d mentee=%d windows=%d", mentor.ID, mentee.ID, len(weekly))
}
