package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"fitquest.app/backend/internal/entity"
	achievementService "fitquest.app/backend/internal/modules/achievement/service"
	activityService "fitquest.app/backend/internal/modules/activity/service"
	challengeService "fitquest.app/backend/internal/modules/challenge/service"
	"fitquest.app/backend/internal/modules/gamification/dto"
	pointsService "fitquest.app/backend/internal/modules/points/service"
	streakService "fitquest.app/backend/internal/modules/streak/service"
	userRepo "fitquest.app/backend/internal/modules/user/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	workoutStreakBonusFactor = 5
	weightStreakBonusFactor  = 3
)

// GamificationService is the facade the HTTP layer talks to. Each mutating
// call runs the full pipeline (persist activity, move the streak, credit the
// streak bonus, sweep milestones) and returns a fresh snapshot. Pipelines
// are serialized per user because every step is a read-modify-write against
// shared rows.
type GamificationService interface {
	RecordWorkoutCompleted(ctx context.Context, userID uuid.UUID, input activityService.WorkoutInput) (*dto.Snapshot, error)
	RecordWeightLogged(ctx context.Context, userID uuid.UUID, weightKg float64) (*dto.Snapshot, error)
	RecordChallengeProgress(ctx context.Context, userID uuid.UUID, category entity.ChallengeCategory, value int) (*dto.Snapshot, error)
	Snapshot(ctx context.Context, userID uuid.UUID) (*dto.Snapshot, error)
}

type gamificationService struct {
	users      userRepo.UserRepository
	activities activityService.ActivityService
	streaks    streakService.StreakService
	ledger     pointsService.LedgerService
	challenges challengeService.ChallengeService
	evaluator  achievementService.EvaluatorService
	logger     *zap.Logger

	userLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewGamificationService(
	users userRepo.UserRepository,
	activities activityService.ActivityService,
	streaks streakService.StreakService,
	ledger pointsService.LedgerService,
	challenges challengeService.ChallengeService,
	evaluator achievementService.EvaluatorService,
	logger *zap.Logger,
) GamificationService {
	return &gamificationService{
		users:      users,
		activities: activities,
		streaks:    streaks,
		ledger:     ledger,
		challenges: challenges,
		evaluator:  evaluator,
		logger:     logger,
	}
}

func (s *gamificationService) lockUser(userID uuid.UUID) func() {
	value, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	mu := value.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *gamificationService) RecordWorkoutCompleted(ctx context.Context, userID uuid.UUID, input activityService.WorkoutInput) (*dto.Snapshot, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		// Nothing to score against before onboarding finishes
		return nil, nil
	}

	if _, err := s.activities.LogWorkout(ctx, userID, input); err != nil {
		return nil, err
	}

	streak, err := s.streaks.RecordActivity(ctx, userID, entity.StreakWorkout)
	if err != nil {
		return nil, err
	}

	bonus := streak.CurrentCount * workoutStreakBonusFactor
	if _, err := s.ledger.Award(ctx, userID, bonus, entity.SourceWorkoutStreak,
		fmt.Sprintf("Workout streak day %d", streak.CurrentCount)); err != nil {
		return nil, err
	}

	if _, err := s.evaluator.CheckForAchievements(ctx, userID); err != nil {
		return nil, err
	}

	return s.snapshot(ctx, userID)
}

func (s *gamificationService) RecordWeightLogged(ctx context.Context, userID uuid.UUID, weightKg float64) (*dto.Snapshot, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	if _, err := s.activities.LogWeight(ctx, userID, weightKg); err != nil {
		return nil, err
	}

	streak, err := s.streaks.RecordActivity(ctx, userID, entity.StreakWeightTracking)
	if err != nil {
		return nil, err
	}

	bonus := streak.CurrentCount * weightStreakBonusFactor
	if _, err := s.ledger.Award(ctx, userID, bonus, entity.SourceWeightStreak,
		fmt.Sprintf("Weight tracking streak day %d", streak.CurrentCount)); err != nil {
		return nil, err
	}

	if _, err := s.evaluator.CheckForAchievements(ctx, userID); err != nil {
		return nil, err
	}

	return s.snapshot(ctx, userID)
}

func (s *gamificationService) RecordChallengeProgress(ctx context.Context, userID uuid.UUID, category entity.ChallengeCategory, value int) (*dto.Snapshot, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	if _, err := s.challenges.RecordProgress(ctx, userID, category, value); err != nil {
		return nil, err
	}

	return s.snapshot(ctx, userID)
}

func (s *gamificationService) Snapshot(ctx context.Context, userID uuid.UUID) (*dto.Snapshot, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	exists, err := s.userExists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	return s.snapshot(ctx, userID)
}

func (s *gamificationService) userExists(ctx context.Context, userID uuid.UUID) (bool, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Debug("gamification call for unknown user", zap.String("user_id", userID.String()))
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *gamificationService) snapshot(ctx context.Context, userID uuid.UUID) (*dto.Snapshot, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	workoutStreak, err := s.streaks.Get(ctx, userID, entity.StreakWorkout)
	if err != nil {
		return nil, err
	}

	challenge, err := s.challenges.GetOrCreateToday(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent, err := s.evaluator.Recent(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.Snapshot{
		CurrentStreak:      workoutStreak.CurrentCount,
		BestStreak:         workoutStreak.BestCount,
		TotalPoints:        user.TotalPoints,
		Level:              user.Level,
		Experience:         user.Experience,
		TodaysChallenge:    challenge,
		RecentAchievements: recent,
	}, nil
}
