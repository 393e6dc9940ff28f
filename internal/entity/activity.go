package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WorkoutSession struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User            *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WorkoutType     string    `gorm:"size:50;not null" json:"workout_type"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	CaloriesBurned  int       `gorm:"default:0" json:"calories_burned"`
	Notes           string    `gorm:"type:text" json:"notes"`
	CompletedAt     time.Time `gorm:"index;autoCreateTime" json:"completed_at"`
}

func (w *WorkoutSession) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}

type WeightEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	User       *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	WeightKg   float64   `gorm:"not null" json:"weight_kg"`
	RecordedAt time.Time `gorm:"index;autoCreateTime" json:"recorded_at"`
}

func (w *WeightEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
