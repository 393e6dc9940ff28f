package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"fitquest.app/backend/internal/entity"
	achievementService "fitquest.app/backend/internal/modules/achievement/service"
	"fitquest.app/backend/internal/modules/challenge/repository"
	notifService "fitquest.app/backend/internal/modules/notification/service"
	pointsService "fitquest.app/backend/internal/modules/points/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChallengeService hands out one daily challenge per user and tracks its
// progress. "Today" is computed lazily on access; there is no scheduler and
// challenges never carry over across days.
type ChallengeService interface {
	GetOrCreateToday(ctx context.Context, userID uuid.UUID) (*entity.Challenge, error)
	// RecordProgress accumulates value on today's challenge when the
	// category matches and the challenge is still open. Mismatched or
	// already-completed challenges are a silent no-op.
	RecordProgress(ctx context.Context, userID uuid.UUID, category entity.ChallengeCategory, value int) (*entity.Challenge, error)
}

type challengeService struct {
	repo          repository.ChallengeRepository
	ledger        pointsService.LedgerService
	evaluator     achievementService.EvaluatorService
	notifications notifService.NotificationService
	now           func() time.Time
	pick          func(n int) int
	logger        *zap.Logger
}

func NewChallengeService(
	repo repository.ChallengeRepository,
	ledger pointsService.LedgerService,
	evaluator achievementService.EvaluatorService,
	notifications notifService.NotificationService,
	logger *zap.Logger,
) ChallengeService {
	return &challengeService{
		repo:          repo,
		ledger:        ledger,
		evaluator:     evaluator,
		notifications: notifications,
		now:           time.Now,
		pick:          rand.IntN,
		logger:        logger,
	}
}

// NewChallengeServiceWithClock injects clock and template picker for tests.
func NewChallengeServiceWithClock(
	repo repository.ChallengeRepository,
	ledger pointsService.LedgerService,
	evaluator achievementService.EvaluatorService,
	notifications notifService.NotificationService,
	logger *zap.Logger,
	now func() time.Time,
	pick func(n int) int,
) ChallengeService {
	return &challengeService{
		repo:          repo,
		ledger:        ledger,
		evaluator:     evaluator,
		notifications: notifications,
		now:           now,
		pick:          pick,
		logger:        logger,
	}
}

func (s *challengeService) GetOrCreateToday(ctx context.Context, userID uuid.UUID) (*entity.Challenge, error) {
	now := s.now()

	challenge, err := s.repo.FindForDay(ctx, userID, now)
	if err == nil {
		return challenge, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	templates := challengeTemplates()
	template := templates[s.pick(len(templates))]

	challenge = &entity.Challenge{
		UserID:      userID,
		Title:       template.Title,
		Type:        template.Type,
		TargetValue: template.TargetValue,
		PointReward: template.PointReward,
		CreatedAt:   now,
		ExpiresAt:   now.Add(24 * time.Hour),
	}
	if err := s.repo.Create(ctx, challenge); err != nil {
		return nil, err
	}

	s.logger.Debug("daily challenge created",
		zap.String("user_id", userID.String()),
		zap.String("type", string(challenge.Type)),
	)

	return challenge, nil
}

func (s *challengeService) RecordProgress(ctx context.Context, userID uuid.UUID, category entity.ChallengeCategory, value int) (*entity.Challenge, error) {
	challenge, err := s.GetOrCreateToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	if challenge.IsCompleted || challenge.Type != category {
		return challenge, nil
	}

	challenge.CurrentValue += value

	if challenge.CurrentValue >= challenge.TargetValue {
		return challenge, s.complete(ctx, userID, challenge)
	}

	return challenge, s.repo.Save(ctx, challenge)
}

// complete seals the challenge, credits its reward and re-runs the milestone
// sweep. Once sealed, current_value and is_completed are frozen.
func (s *challengeService) complete(ctx context.Context, userID uuid.UUID, challenge *entity.Challenge) error {
	now := s.now()
	challenge.IsCompleted = true
	challenge.CompletedAt = &now

	if err := s.repo.Save(ctx, challenge); err != nil {
		return err
	}

	if _, err := s.ledger.Award(ctx, userID, challenge.PointReward, entity.SourceChallenge, challenge.Title); err != nil {
		return err
	}

	if s.notifications != nil {
		notification := &entity.Notification{
			UserID:   userID,
			Type:     entity.NotificationChallengeCompleted,
			EntityID: challenge.ID,
			Message:  challenge.Title,
		}
		if err := s.notifications.CreateNotification(ctx, notification); err != nil {
			s.logger.Warn("challenge notification failed", zap.Error(err))
		}
	}

	if _, err := s.evaluator.CheckForAchievements(ctx, userID); err != nil {
		return err
	}

	s.logger.Info("challenge completed",
		zap.String("user_id", userID.String()),
		zap.String("title", challenge.Title),
		zap.Int("reward", challenge.PointReward),
	)

	return nil
}
