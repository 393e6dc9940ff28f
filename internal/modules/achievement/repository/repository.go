package repository

import (
	"context"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AchievementRepository interface {
	FindByKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Achievement, error)
	Create(ctx context.Context, achievement *entity.Achievement) error
	ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Achievement, error)
}

type achievementRepository struct {
	db *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &achievementRepository{db: db}
}

func (r *achievementRepository) FindByKey(ctx context.Context, userID uuid.UUID, key string) (*entity.Achievement, error) {
	var achievement entity.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND key = ?", userID, key).
		First(&achievement).Error
	if err != nil {
		return nil, err
	}
	return &achievement, nil
}

func (r *achievementRepository) Create(ctx context.Context, achievement *entity.Achievement) error {
	return r.db.WithContext(ctx).Create(achievement).Error
}

func (r *achievementRepository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]entity.Achievement, error) {
	var achievements []entity.Achievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("unlocked_at desc").
		Limit(limit).
		Find(&achievements).Error
	return achievements, err
}
