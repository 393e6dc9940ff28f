package service

import (
	"context"
	"errors"
	"time"

	"fitquest.app/backend/internal/entity"
	"fitquest.app/backend/internal/modules/streak/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// StreakService maintains consecutive-calendar-day counters per user and
// activity type. It only moves the counter; point bonuses and milestone
// checks belong to the caller.
type StreakService interface {
	RecordActivity(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error)
	Get(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error)
}

type streakService struct {
	repo   repository.StreakRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewStreakService(repo repository.StreakRepository, logger *zap.Logger) StreakService {
	return &streakService{
		repo:   repo,
		now:    time.Now,
		logger: logger,
	}
}

// NewStreakServiceWithClock injects the clock for day-boundary tests.
func NewStreakServiceWithClock(repo repository.StreakRepository, logger *zap.Logger, now func() time.Time) StreakService {
	return &streakService{
		repo:   repo,
		now:    now,
		logger: logger,
	}
}

func (s *streakService) RecordActivity(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error) {
	streak, err := s.repo.Find(ctx, userID, streakType)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		streak = &entity.Streak{
			UserID:   userID,
			Type:     streakType,
			IsActive: true,
		}
		if err := s.repo.Create(ctx, streak); err != nil {
			return nil, err
		}
	}

	now := s.now()

	if streak.LastUpdated != nil {
		switch daysBetween(*streak.LastUpdated, now) {
		case 0:
			// Already counted today. Multiple activities on the same
			// calendar day never double-increment.
			return streak, nil
		case 1:
			streak.CurrentCount++
		default:
			streak.CurrentCount = 1
		}
	} else {
		streak.CurrentCount = 1
	}

	streak.LastUpdated = &now
	streak.IsActive = true
	if streak.CurrentCount > streak.BestCount {
		streak.BestCount = streak.CurrentCount
	}

	if err := s.repo.Save(ctx, streak); err != nil {
		return nil, err
	}

	s.logger.Debug("streak updated",
		zap.String("user_id", userID.String()),
		zap.String("type", string(streakType)),
		zap.Int("current", streak.CurrentCount),
		zap.Int("best", streak.BestCount),
	)

	return streak, nil
}

func (s *streakService) Get(ctx context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error) {
	streak, err := s.repo.Find(ctx, userID, streakType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &entity.Streak{UserID: userID, Type: streakType}, nil
		}
		return nil, err
	}
	return streak, nil
}

// daysBetween counts calendar-day boundaries crossed between a and b,
// ignoring the time of day. The date triples are re-anchored in UTC so a
// 23-hour DST transition day still counts as one full day.
func daysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay) / (24 * time.Hour))
}
