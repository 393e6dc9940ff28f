package repository

import (
	"context"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StreakRepository interface {
	Find(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error)
	Create(ctx context.Context, streak *entity.Streak) error
	Save(ctx context.Context, streak *entity.Streak) error
}

type streakRepository struct {
	db *gorm.DB
}

func NewStreakRepository(db *gorm.DB) StreakRepository {
	return &streakRepository{db: db}
}

func (r *streakRepository) Find(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error) {
	var streak entity.Streak
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, streakType).
		First(&streak).Error
	if err != nil {
		return nil, err
	}
	return &streak, nil
}

func (r *streakRepository) Create(ctx context.Context, streak *entity.Streak) error {
	return r.db.WithContext(ctx).Create(streak).Error
}

func (r *streakRepository) Save(ctx context.Context, streak *entity.Streak) error {
	return r.db.WithContext(ctx).Save(streak).Error
}
