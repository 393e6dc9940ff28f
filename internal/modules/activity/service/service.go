package service

import (
	"context"

	"fitquest.app/backend/internal/entity"
	"fitquest.app/backend/internal/modules/activity/repository"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type WorkoutInput struct {
	WorkoutType     string
	DurationMinutes int
	CaloriesBurned  int
	Notes           string
}

type ActivityService interface {
	LogWorkout(ctx context.Context, userID uuid.UUID, input WorkoutInput) (*entity.WorkoutSession, error)
	LogWeight(ctx context.Context, userID uuid.UUID, weightKg float64) (*entity.WeightEntry, error)
	WorkoutCount(ctx context.Context, userID uuid.UUID) (int64, error)
	WeightEntryCount(ctx context.Context, userID uuid.UUID) (int64, error)
	RecentWorkouts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WorkoutSession, error)
	RecentWeightEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WeightEntry, error)
}

type activityService struct {
	repo      repository.ActivityRepository
	sanitizer *bluemonday.Policy
}

func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{
		repo:      repo,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *activityService) LogWorkout(ctx context.Context, userID uuid.UUID, input WorkoutInput) (*entity.WorkoutSession, error) {
	session := &entity.WorkoutSession{
		UserID:          userID,
		WorkoutType:     input.WorkoutType,
		DurationMinutes: input.DurationMinutes,
		CaloriesBurned:  input.CaloriesBurned,
		Notes:           s.sanitizer.Sanitize(input.Notes),
	}
	if err := s.repo.CreateWorkout(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *activityService) LogWeight(ctx context.Context, userID uuid.UUID, weightKg float64) (*entity.WeightEntry, error) {
	entry := &entity.WeightEntry{
		UserID:   userID,
		WeightKg: weightKg,
	}
	if err := s.repo.CreateWeightEntry(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *activityService) WorkoutCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountWorkouts(ctx, userID)
}

func (s *activityService) WeightEntryCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.CountWeightEntries(ctx, userID)
}

func (s *activityService) RecentWorkouts(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WorkoutSession, error) {
	return s.repo.ListWorkouts(ctx, userID, limit, offset)
}

func (s *activityService) RecentWeightEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.WeightEntry, error) {
	return s.repo.ListWeightEntries(ctx, userID, limit, offset)
}
