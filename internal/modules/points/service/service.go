package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fitquest.app/backend/internal/entity"
	achievementRepo "fitquest.app/backend/internal/modules/achievement/repository"
	notifService "fitquest.app/backend/internal/modules/notification/service"
	"fitquest.app/backend/internal/modules/points/repository"
	userRepo "fitquest.app/backend/internal/modules/user/repository"
	"fitquest.app/backend/pkg/apperror"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// ExperiencePerLevel is the width of every level band:
	// level = experience/500 + 1.
	ExperiencePerLevel = 500

	LevelUpBonusPerLevel = 100

	// maxLevelUpCascade bounds chained level-up bonuses within a single
	// award. Below level 5 the bonus (level*100) is narrower than a
	// level band and the chain stops on its own; past that a bonus can
	// keep crossing boundaries, so the chain is cut off rather than
	// allowed to run away. Levels stay correct either way, only further
	// bonus credits stop.
	maxLevelUpCascade = 16
)

// LedgerService appends point transactions and keeps the user's cumulative
// total, experience and derived level in step. Every credited point is
// traceable to exactly one PointTransaction row.
type LedgerService interface {
	// Award credits points to the user. A missing user is a silent
	// no-op returning (nil, nil); callers treat that as "nothing to
	// award against".
	Award(ctx context.Context, userID uuid.UUID, points int, source entity.PointSource, description string) (*entity.User, error)
	History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.PointTransaction, error)
}

type ledgerService struct {
	points        repository.PointsRepository
	users         userRepo.UserRepository
	achievements  achievementRepo.AchievementRepository
	notifications notifService.NotificationService
	logger        *zap.Logger
}

func NewLedgerService(
	points repository.PointsRepository,
	users userRepo.UserRepository,
	achievements achievementRepo.AchievementRepository,
	notifications notifService.NotificationService,
	logger *zap.Logger,
) LedgerService {
	return &ledgerService{
		points:        points,
		users:         users,
		achievements:  achievements,
		notifications: notifications,
		logger:        logger,
	}
}

func (s *ledgerService) Award(ctx context.Context, userID uuid.UUID, points int, source entity.PointSource, description string) (*entity.User, error) {
	return s.award(ctx, userID, points, source, description, 0)
}

func (s *ledgerService) award(ctx context.Context, userID uuid.UUID, points int, source entity.PointSource, description string, depth int) (*entity.User, error) {
	if points <= 0 {
		return nil, apperror.New(0, "points must be positive", apperror.ErrInvalidInput)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("award skipped, no such user", zap.String("user_id", userID.String()))
			return nil, nil
		}
		return nil, err
	}

	transaction := &entity.PointTransaction{
		UserID:      userID,
		Points:      points,
		Type:        "earned",
		Source:      source,
		Description: description,
	}

	user.TotalPoints += points
	user.Experience += points

	newLevel := user.Experience/ExperiencePerLevel + 1
	leveledUp := newLevel > user.Level
	if leveledUp {
		user.Level = newLevel
	}

	var unlocked *entity.Achievement
	if leveledUp {
		unlocked, err = s.levelAchievement(ctx, userID, newLevel)
		if err != nil {
			return nil, err
		}
	}

	// Single storage transaction: either the ledger row, the totals and
	// the badge all land, or none of them do.
	if err := s.points.Apply(ctx, transaction, user, unlocked); err != nil {
		return nil, err
	}

	if !leveledUp {
		return user, nil
	}

	s.logger.Info("level up",
		zap.String("user_id", userID.String()),
		zap.Int("level", newLevel),
	)

	if unlocked != nil {
		s.notifyLevelUp(ctx, user.ID, unlocked)
	}

	if depth+1 >= maxLevelUpCascade {
		s.logger.Error("level-up cascade cut off",
			zap.String("user_id", userID.String()),
			zap.Int("level", newLevel),
		)
		return user, nil
	}

	// The level-up bonus goes back through the ledger so it is audited
	// like any other award, and may itself cross the next boundary.
	return s.award(ctx, userID, newLevel*LevelUpBonusPerLevel, entity.SourceLevelUp,
		fmt.Sprintf("Level %d bonus", newLevel), depth+1)
}

func (s *ledgerService) History(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.PointTransaction, error) {
	return s.points.ListByUser(ctx, userID, limit, offset)
}

// levelAchievement builds the "Level N Reached!" badge for the same storage
// transaction as the award, or returns nil when it was unlocked before. Its
// point_reward is a display value only; the credited bonus is the level*100
// award issued by the caller under source "level_up".
func (s *ledgerService) levelAchievement(ctx context.Context, userID uuid.UUID, level int) (*entity.Achievement, error) {
	key := fmt.Sprintf("level_%d", level)

	if _, err := s.achievements.FindByKey(ctx, userID, key); err == nil {
		return nil, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &entity.Achievement{
		UserID:      userID,
		Key:         key,
		Title:       fmt.Sprintf("Level %d Reached!", level),
		Description: fmt.Sprintf("You reached level %d", level),
		IconName:    "star.circle.fill",
		Tier:        entity.TierGold,
		Category:    entity.CategoryLevel,
		PointReward: level * 50,
		IsUnlocked:  true,
		UnlockedAt:  time.Now(),
		Progress:    level,
		TargetValue: level,
	}, nil
}

func (s *ledgerService) notifyLevelUp(ctx context.Context, userID uuid.UUID, achievement *entity.Achievement) {
	if s.notifications == nil {
		return
	}
	notification := &entity.Notification{
		UserID:   userID,
		Type:     entity.NotificationLevelUp,
		EntityID: achievement.ID,
		Message:  achievement.Title,
	}
	if err := s.notifications.CreateNotification(ctx, notification); err != nil {
		// A missed notice is not worth failing the award over
		s.logger.Warn("level-up notification failed", zap.Error(err))
	}
}
