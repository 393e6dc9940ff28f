package repository

import (
	"context"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ActivityRepository interface {
	CreateWorkout(ctx context.Context, session *entity.WorkoutSession) error
	CreateWeightEntry(ctx context.Context, entry *entity.WeightEntry) error
	CountWorkouts(ctx context.Context, userID uuid.UUID) (int64, error)
	CountWeightEntries(ctx context.Context, userID uuid.UUID) (int64, error)
	ListWorkouts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WorkoutSession, error)
	ListWeightEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WeightEntry, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) CreateWorkout(ctx context.Context, session *entity.WorkoutSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

func (r *activityRepository) CreateWeightEntry(ctx context.Context, entry *entity.WeightEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *activityRepository) CountWorkouts(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.WorkoutSession{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) CountWeightEntries(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.WeightEntry{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

func (r *activityRepository) ListWorkouts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WorkoutSession, error) {
	var sessions []entity.WorkoutSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("completed_at desc").
		Limit(limit).
		Offset(offset).
		Find(&sessions).Error
	return sessions, err
}

func (r *activityRepository) ListWeightEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WeightEntry, error) {
	var entries []entity.WeightEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("recorded_at desc").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	return entries, err
}
