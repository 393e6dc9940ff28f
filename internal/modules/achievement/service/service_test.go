package service

import (
	"context"
	"testing"
	"time"

	"fitquest.app/backend/internal/entity"
	pointsService "fitquest.app/backend/internal/modules/points/service"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Save(_ context.Context, user *entity.User) error {
	r.users[user.ID] = user
	return nil
}

type memPointsRepo struct {
	log          []entity.PointTransaction
	users        *memUserRepo
	achievements *memAchievementRepo
}

func (r *memPointsRepo) Apply(ctx context.Context, transaction *entity.PointTransaction, user *entity.User, achievement *entity.Achievement) error {
	transaction.ID = uint(len(r.log) + 1)
	r.log = append(r.log, *transaction)
	if err := r.users.Save(ctx, user); err != nil {
		return err
	}
	if achievement != nil {
		return r.achievements.Create(ctx, achievement)
	}
	return nil
}

func (r *memPointsRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.PointTransaction, error) {
	return nil, nil
}

func (r *memPointsRepo) SumByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	for _, transaction := range r.log {
		if transaction.UserID == userID {
			total += int64(transaction.Points)
		}
	}
	return total, nil
}

type memAchievementRepo struct {
	achievements []*entity.Achievement
}

func (r *memAchievementRepo) FindByKey(_ context.Context, userID uuid.UUID, key string) (*entity.Achievement, error) {
	for _, achievement := range r.achievements {
		if achievement.UserID == userID && achievement.Key == key {
			return achievement, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memAchievementRepo) Create(_ context.Context, achievement *entity.Achievement) error {
	if achievement.ID == uuid.Nil {
		achievement.ID = uuid.New()
	}
	r.achievements = append(r.achievements, achievement)
	return nil
}

func (r *memAchievementRepo) ListRecent(_ context.Context, userID uuid.UUID, limit int) ([]entity.Achievement, error) {
	var result []entity.Achievement
	for i := len(r.achievements) - 1; i >= 0 && len(result) < limit; i-- {
		if r.achievements[i].UserID == userID {
			result = append(result, *r.achievements[i])
		}
	}
	return result, nil
}

type memStreakRepo struct {
	streaks map[string]*entity.Streak
}

func streakKey(userID uuid.UUID, streakType entity.StreakType) string {
	return userID.String() + "/" + string(streakType)
}

func (r *memStreakRepo) Find(_ context.Context, userID uuid.UUID, streakType entity.StreakType) (*entity.Streak, error) {
	streak, ok := r.streaks[streakKey(userID, streakType)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return streak, nil
}

func (r *memStreakRepo) Create(_ context.Context, streak *entity.Streak) error {
	r.streaks[streakKey(streak.UserID, streak.Type)] = streak
	return nil
}

func (r *memStreakRepo) Save(_ context.Context, streak *entity.Streak) error {
	r.streaks[streakKey(streak.UserID, streak.Type)] = streak
	return nil
}

type memActivityRepo struct {
	workouts []entity.WorkoutSession
	weights  []entity.WeightEntry
}

func (r *memActivityRepo) CreateWorkout(_ context.Context, session *entity.WorkoutSession) error {
	r.workouts = append(r.workouts, *session)
	return nil
}

func (r *memActivityRepo) CreateWeightEntry(_ context.Context, entry *entity.WeightEntry) error {
	r.weights = append(r.weights, *entry)
	return nil
}

func (r *memActivityRepo) CountWorkouts(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, workout := range r.workouts {
		if workout.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memActivityRepo) CountWeightEntries(_ context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	for _, entry := range r.weights {
		if entry.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *memActivityRepo) ListWorkouts(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.WorkoutSession, error) {
	return nil, nil
}

func (r *memActivityRepo) ListWeightEntries(_ context.Context, userID uuid.UUID, limit, offset int) ([]entity.WeightEntry, error) {
	return nil, nil
}

type evaluatorFixture struct {
	user         *entity.User
	users        *memUserRepo
	points       *memPointsRepo
	achievements *memAchievementRepo
	streaks      *memStreakRepo
	activities   *memActivityRepo
	svc          EvaluatorService
}

func newEvaluatorFixture() *evaluatorFixture {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := &evaluatorFixture{
		user:         user,
		users:        &memUserRepo{users: map[uuid.UUID]*entity.User{user.ID: user}},
		achievements: &memAchievementRepo{},
		streaks:      &memStreakRepo{streaks: map[string]*entity.Streak{}},
		activities:   &memActivityRepo{},
	}
	f.points = &memPointsRepo{users: f.users, achievements: f.achievements}
	ledger := pointsService.NewLedgerService(f.points, f.users, f.achievements, nil, zap.NewNop())
	f.svc = NewEvaluatorService(f.achievements, f.streaks, f.activities, ledger, nil, zap.NewNop())
	return f
}

func (f *evaluatorFixture) setWorkoutStreak(count int) {
	now := time.Now()
	f.streaks.streaks[streakKey(f.user.ID, entity.StreakWorkout)] = &entity.Streak{
		ID:           uuid.New(),
		UserID:       f.user.ID,
		Type:         entity.StreakWorkout,
		CurrentCount: count,
		BestCount:    count,
		IsActive:     true,
		LastUpdated:  &now,
	}
}

func TestStreakMilestoneUnlock(t *testing.T) {
	f := newEvaluatorFixture()
	f.setWorkoutStreak(7)

	unlocked, err := f.svc.CheckForAchievements(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(unlocked) != 1 {
		t.Fatalf("expected 1 unlock, got %d", len(unlocked))
	}

	achievement := unlocked[0]
	if achievement.Key != "streak_7" {
		t.Fatalf("expected key streak_7, got %s", achievement.Key)
	}
	if achievement.PointReward != 70 {
		t.Fatalf("expected reward 70, got %d", achievement.PointReward)
	}
	if achievement.Tier != entity.TierSilver {
		t.Fatalf("expected silver, got %s", achievement.Tier)
	}
	if f.user.TotalPoints != 70 {
		t.Fatalf("expected 70 points credited, got %d", f.user.TotalPoints)
	}
}

func TestCheckIsIdempotent(t *testing.T) {
	f := newEvaluatorFixture()
	f.setWorkoutStreak(7)
	ctx := context.Background()

	first, err := f.svc.CheckForAchievements(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("first check failed: %v", err)
	}
	second, err := f.svc.CheckForAchievements(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("second check failed: %v", err)
	}
	if len(first) != 1 || len(second) != 0 {
		t.Fatalf("expected 1 then 0 unlocks, got %d then %d", len(first), len(second))
	}
	if len(f.achievements.achievements) != 1 {
		t.Fatalf("expected exactly one achievement row, got %d", len(f.achievements.achievements))
	}
	if f.user.TotalPoints != 70 {
		t.Fatalf("double-award detected: %d points", f.user.TotalPoints)
	}
}

func TestLongStreakUnlocksEveryCrossedMilestone(t *testing.T) {
	f := newEvaluatorFixture()
	f.setWorkoutStreak(30)

	unlocked, err := f.svc.CheckForAchievements(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(unlocked) != 3 {
		t.Fatalf("expected streak_7/14/30, got %d unlocks", len(unlocked))
	}
	// 70 + 140 + 300
	if f.user.TotalPoints != 510+200 {
		// Crossing 500 experience also pays the level-2 bonus of 200
		t.Fatalf("expected 710 points, got %d", f.user.TotalPoints)
	}
}

func TestWorkoutCountMilestones(t *testing.T) {
	f := newEvaluatorFixture()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_ = f.activities.CreateWorkout(ctx, &entity.WorkoutSession{UserID: f.user.ID})
	}

	unlocked, err := f.svc.CheckForAchievements(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(unlocked) != 2 {
		t.Fatalf("expected workouts_1 and workouts_5, got %d", len(unlocked))
	}
	if unlocked[0].Key != "workouts_1" || unlocked[1].Key != "workouts_5" {
		t.Fatalf("unexpected keys: %s, %s", unlocked[0].Key, unlocked[1].Key)
	}
	if unlocked[0].Tier != entity.TierBronze || unlocked[1].Tier != entity.TierBronze {
		t.Fatalf("1 and 5 are bronze milestones")
	}
	if f.user.TotalPoints != 1*5+5*5 {
		t.Fatalf("expected 30 points, got %d", f.user.TotalPoints)
	}
}

func TestWeightEntryMilestones(t *testing.T) {
	f := newEvaluatorFixture()
	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_ = f.activities.CreateWeightEntry(ctx, &entity.WeightEntry{UserID: f.user.ID})
	}

	unlocked, err := f.svc.CheckForAchievements(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if len(unlocked) != 1 {
		t.Fatalf("expected weight_entries_7 only, got %d", len(unlocked))
	}
	if unlocked[0].Key != "weight_entries_7" || unlocked[0].PointReward != 21 {
		t.Fatalf("unexpected unlock: %+v", unlocked[0])
	}
}

func TestTierMapping(t *testing.T) {
	cases := []struct {
		milestone int
		tier      entity.AchievementTier
	}{
		{1, entity.TierBronze},
		{5, entity.TierBronze},
		{6, entity.TierSilver},
		{25, entity.TierSilver},
		{26, entity.TierGold},
		{50, entity.TierGold},
		{51, entity.TierPlatinum},
		{100, entity.TierPlatinum},
	}
	for _, tc := range cases {
		if got := TierFor(tc.milestone); got != tc.tier {
			t.Errorf("TierFor(%d) = %s, want %s", tc.milestone, got, tc.tier)
		}
	}
}

func TestRecentIsCappedAtFive(t *testing.T) {
	f := newEvaluatorFixture()
	f.setWorkoutStreak(100)
	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_ = f.activities.CreateWorkout(ctx, &entity.WorkoutSession{UserID: f.user.ID})
	}

	if _, err := f.svc.CheckForAchievements(ctx, f.user.ID); err != nil {
		t.Fatalf("check failed: %v", err)
	}

	recent, err := f.svc.Recent(ctx, f.user.ID)
	if err != nil {
		t.Fatalf("recent failed: %v", err)
	}
	if len(recent) != RecentLimit {
		t.Fatalf("expected %d recent achievements, got %d", RecentLimit, len(recent))
	}
}
