package bootstrap

import (
	"log"

	"fitquest.app/backend/internal/entity"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Streak{},
		&entity.Challenge{},
		&entity.Achievement{},
		&entity.PointTransaction{},
		&entity.WorkoutSession{},
		&entity.WeightEntry{},
		&entity.Notification{},
	)
}

// SeedDemoUser creates a ready-to-use account for local development.
// Intended for non-production environments only.
func SeedDemoUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", "demo@fitquest.app").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Demo user already exists, skipping seed")
		return nil
	}

	password := "demo1234"
	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	demoUser := entity.User{
		Username:     "demo",
		Email:        "demo@fitquest.app",
		PasswordHash: string(hashedPasswordBytes),
		Level:        1,
	}

	if err := db.Create(&demoUser).Error; err != nil {
		return err
	}

	log.Println("✅ Demo user seeded successfully")
	log.Println("   Email: demo@fitquest.app")
	log.Println("   Password: demo1234")

	return nil
}
