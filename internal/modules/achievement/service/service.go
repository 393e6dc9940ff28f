package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitquest.app/backend/internal/entity"
	achievementRepo "fitquest.app/backend/internal/modules/achievement/repository"
	activityRepo "fitquest.app/backend/internal/modules/activity/repository"
	notifService "fitquest.app/backend/internal/modules/notification/service"
	pointsService "fitquest.app/backend/internal/modules/points/service"
	streakRepo "fitquest.app/backend/internal/modules/streak/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecentLimit caps the recent-achievements list shown in the summary.
const RecentLimit = 5

var (
	streakMilestones      = []int{7, 14, 30, 60, 100}
	workoutMilestones     = []int{1, 5, 10, 25, 50, 100}
	weightEntryMilestones = []int{7, 14, 30, 90}
)

const (
	streakRewardFactor      = 10
	workoutRewardFactor     = 5
	weightEntryRewardFactor = 3
)

// EvaluatorService scans the user's streaks and activity counts against the
// milestone tables and unlocks each crossed milestone exactly once. It is
// idempotent: the (user, key) existence check makes repeated calls after the
// same activity a no-op.
type EvaluatorService interface {
	CheckForAchievements(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error)
	Recent(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error)
}

type evaluatorService struct {
	achievements  achievementRepo.AchievementRepository
	streaks       streakRepo.StreakRepository
	activities    activityRepo.ActivityRepository
	ledger        pointsService.LedgerService
	notifications notifService.NotificationService
	logger        *zap.Logger
}

func NewEvaluatorService(
	achievements achievementRepo.AchievementRepository,
	streaks streakRepo.StreakRepository,
	activities activityRepo.ActivityRepository,
	ledger pointsService.LedgerService,
	notifications notifService.NotificationService,
	logger *zap.Logger,
) EvaluatorService {
	return &evaluatorService{
		achievements:  achievements,
		streaks:       streaks,
		activities:    activities,
		ledger:        ledger,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *evaluatorService) CheckForAchievements(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error) {
	var unlocked []entity.Achievement

	streakCount := 0
	workoutStreak, err := s.streaks.Find(ctx, userID, entity.StreakWorkout)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if workoutStreak != nil {
		streakCount = workoutStreak.CurrentCount
	}

	for _, threshold := range streakMilestones {
		if streakCount < threshold {
			break
		}
		achievement, err := s.unlock(ctx, userID, unlockSpec{
			key:      fmt.Sprintf("streak_%d", threshold),
			title:    fmt.Sprintf("%d Day Streak!", threshold),
			desc:     fmt.Sprintf("Completed workouts %d days in a row", threshold),
			icon:     "flame.fill",
			category: entity.CategoryStreak,
			reward:   threshold * streakRewardFactor,
			value:    threshold,
		})
		if err != nil {
			return unlocked, err
		}
		if achievement != nil {
			unlocked = append(unlocked, *achievement)
		}
	}

	workouts, err := s.activities.CountWorkouts(ctx, userID)
	if err != nil {
		return unlocked, err
	}
	for _, threshold := range workoutMilestones {
		if int(workouts) < threshold {
			break
		}
		achievement, err := s.unlock(ctx, userID, unlockSpec{
			key:      fmt.Sprintf("workouts_%d", threshold),
			title:    workoutTitle(threshold),
			desc:     fmt.Sprintf("Logged %d total workouts", threshold),
			icon:     "figure.run",
			category: entity.CategoryWorkouts,
			reward:   threshold * workoutRewardFactor,
			value:    threshold,
		})
		if err != nil {
			return unlocked, err
		}
		if achievement != nil {
			unlocked = append(unlocked, *achievement)
		}
	}

	weighIns, err := s.activities.CountWeightEntries(ctx, userID)
	if err != nil {
		return unlocked, err
	}
	for _, threshold := range weightEntryMilestones {
		if int(weighIns) < threshold {
			break
		}
		achievement, err := s.unlock(ctx, userID, unlockSpec{
			key:      fmt.Sprintf("weight_entries_%d", threshold),
			title:    fmt.Sprintf("%d Weigh-Ins!", threshold),
			desc:     fmt.Sprintf("Tracked your weight %d times", threshold),
			icon:     "scalemass.fill",
			category: entity.CategoryWeightEntries,
			reward:   threshold * weightEntryRewardFactor,
			value:    threshold,
		})
		if err != nil {
			return unlocked, err
		}
		if achievement != nil {
			unlocked = append(unlocked, *achievement)
		}
	}

	return unlocked, nil
}

func (s *evaluatorService) Recent(ctx context.Context, userID uuid.UUID) ([]entity.Achievement, error) {
	return s.achievements.ListRecent(ctx, userID, RecentLimit)
}

type unlockSpec struct {
	key      string
	title    string
	desc     string
	icon     string
	category entity.AchievementCategory
	reward   int
	value    int
}

// unlock creates the achievement if it does not exist yet, credits its
// reward through the ledger and emits a notification. Returns nil when the
// milestone was already unlocked.
func (s *evaluatorService) unlock(ctx context.Context, userID uuid.UUID, spec unlockSpec) (*entity.Achievement, error) {
	if _, err := s.achievements.FindByKey(ctx, userID, spec.key); err == nil {
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	achievement := &entity.Achievement{
		UserID:      userID,
		Key:         spec.key,
		Title:       spec.title,
		Description: spec.desc,
		IconName:    spec.icon,
		Tier:        TierFor(spec.value),
		Category:    spec.category,
		PointReward: spec.reward,
		IsUnlocked:  true,
		UnlockedAt:  time.Now(),
		Progress:    spec.value,
		TargetValue: spec.value,
	}
	if err := s.achievements.Create(ctx, achievement); err != nil {
		return nil, err
	}

	if _, err := s.ledger.Award(ctx, userID, spec.reward, entity.SourceAchievement, spec.title); err != nil {
		return nil, err
	}

	s.logger.Info("achievement unlocked",
		zap.String("user_id", userID.String()),
		zap.String("key", spec.key),
		zap.String("tier", string(achievement.Tier)),
	)

	if s.notifications != nil {
		notification := &entity.Notification{
			UserID:   userID,
			Type:     entity.NotificationAchievementUnlocked,
			EntityID: achievement.ID,
			Message:  spec.title,
		}
		if err := s.notifications.CreateNotification(ctx, notification); err != nil {
			s.logger.Warn("achievement notification failed", zap.Error(err))
		}
	}

	return achievement, nil
}

// TierFor maps a milestone magnitude to its badge tier.
func TierFor(milestone int) entity.AchievementTier {
	switch {
	case milestone <= 5:
		return entity.TierBronze
	case milestone <= 25:
		return entity.TierSilver
	case milestone <= 50:
		return entity.TierGold
	default:
		return entity.TierPlatinum
	}
}

func workoutTitle(threshold int) string {
	if threshold == 1 {
		return "First Workout!"
	}
	return fmt.Sprintf("%d Workouts!", threshold)
}
