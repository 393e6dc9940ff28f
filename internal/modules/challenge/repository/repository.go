package repository

import (
	"context"
	"time"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ChallengeRepository interface {
	// FindForDay returns the challenge whose created_at falls on the
	// same calendar day as date.
	FindForDay(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.Challenge, error)
	Create(ctx context.Context, challenge *entity.Challenge) error
	Save(ctx context.Context, challenge *entity.Challenge) error
}

type challengeRepository struct {
	db *gorm.DB
}

func NewChallengeRepository(db *gorm.DB) ChallengeRepository {
	return &challengeRepository{db: db}
}

func (r *challengeRepository) FindForDay(ctx context.Context, userID uuid.UUID, date time.Time) (*entity.Challenge, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	var challenge entity.Challenge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startOfDay, endOfDay).
		First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *challengeRepository) Create(ctx context.Context, challenge *entity.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *challengeRepository) Save(ctx context.Context, challenge *entity.Challenge) error {
	return r.db.WithContext(ctx).Save(challenge).Error
}
