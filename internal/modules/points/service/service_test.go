package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo(seed ...*entity.User) *memUserRepo {
	repo := &memUserRepo{users: map[uuid.UUID]*entity.User{}}
	for _, user := range seed {
		if user.ID == uuid.Nil {
			user.ID = uuid.New()
		}
		repo.users[user.ID] = user
	}
	return repo
}

func (r *memUserRepo) Create(_ context.Context, user *entity.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.users[user.ID] = user
	return nil
}

// FindByID hands out a copy, like a real row scan would; mutations only
// land through Save or Apply.
func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) FindByUsername(_ context.Context, username string) (*entity.User, error) {
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepo) Save(_ context.Context, user *entity.User) error {
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

type memPointsRepo struct {
	log          []entity.PointTransaction
	users        *memUserRepo
	achievements *memAchievementRepo
	failNext     error
}

func (r *memPointsRepo) Apply(ctx context.Context, transaction *entity.PointTransaction, user *entity.User, achievement *entity.Achievement) error {
	if r.failNext != nil {
		err := r.failNext
		r.failNext = nil
		return err
	}
	transaction.ID = uint(len(r.log) + 1)
	transaction.CreatedAt = time.Now()
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
	var result []entity.PointTransaction
	for i := len(r.log) - 1; i >= 0; i-- {
		if r.log[i].UserID == userID {
			result = append(result, r.log[i])
		}
	}
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
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

type memNotifier struct {
	created []entity.Notification
}

func (n *memNotifier) CreateNotification(_ context.Context, notification *entity.Notification) error {
	n.created = append(n.created, *notification)
	return nil
}

func (n *memNotifier) GetNotifications(uuid.UUID, int, int) ([]entity.Notification, error) {
	return nil, nil
}

func (n *memNotifier) MarkAsRead(uuid.UUID) error { return nil }

func (n *memNotifier) MarkAllAsRead(uuid.UUID) error { return nil }

func (n *memNotifier) UnreadCount(uuid.UUID) (int64, error) { return 0, nil }

type ledgerFixture struct {
	users        *memUserRepo
	points       *memPointsRepo
	achievements *memAchievementRepo
	notifier     *memNotifier
	svc          LedgerService
}

func newLedgerFixture(seed ...*entity.User) *ledgerFixture {
	f := &ledgerFixture{
		users:        newMemUserRepo(seed...),
		achievements: &memAchievementRepo{},
		notifier:     &memNotifier{},
	}
	f.points = &memPointsRepo{users: f.users, achievements: f.achievements}
	f.svc = NewLedgerService(f.points, f.users, f.achievements, f.notifier, zap.NewNop())
	return f
}

func TestAwardCreatesTransactionAndUpdatesTotals(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)

	result, err := f.svc.Award(context.Background(), user.ID, 50, entity.SourceChallenge, "Walk 8,000 Steps")
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if result.TotalPoints != 50 || result.Experience != 50 {
		t.Fatalf("expected 50/50, got %d/%d", result.TotalPoints, result.Experience)
	}
	if len(f.points.log) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(f.points.log))
	}
	transaction := f.points.log[0]
	if transaction.Points != 50 || transaction.Source != entity.SourceChallenge || transaction.Type != "earned" {
		t.Fatalf("unexpected transaction: %+v", transaction)
	}
}

func TestAwardRejectsNonPositivePoints(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)

	if _, err := f.svc.Award(context.Background(), user.ID, 0, entity.SourceChallenge, "zero"); err == nil {
		t.Fatalf("expected error for zero points")
	}
	if _, err := f.svc.Award(context.Background(), user.ID, -10, entity.SourceChallenge, "negative"); err == nil {
		t.Fatalf("expected error for negative points")
	}
	if len(f.points.log) != 0 {
		t.Fatalf("rejected awards must not append transactions")
	}
}

func TestAwardMissingUserIsSilentNoop(t *testing.T) {
	f := newLedgerFixture()

	result, err := f.svc.Award(context.Background(), uuid.New(), 10, entity.SourceWorkoutStreak, "streak")
	if err != nil {
		t.Fatalf("missing user must not be an error: %v", err)
	}
	if result != nil {
		t.Fatalf("expected nil user for silent skip, got %+v", result)
	}
	if len(f.points.log) != 0 {
		t.Fatalf("no transaction expected for missing user")
	}
}

func TestLevelUpCascadeFrom490(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1, TotalPoints: 490, Experience: 490}
	f := newLedgerFixture(user)

	result, err := f.svc.Award(context.Background(), user.ID, 20, entity.SourceWorkoutStreak, "streak day 4")
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}

	// 490+20 crosses 500: level 2, plus a 200-point level-up bonus.
	// 710 experience stays below the next boundary, so the chain stops.
	if result.Level != 2 {
		t.Fatalf("expected level 2, got %d", result.Level)
	}
	if result.Experience != 710 {
		t.Fatalf("expected experience 710, got %d", result.Experience)
	}
	if result.TotalPoints != 490+220 {
		t.Fatalf("expected total %d, got %d", 490+220, result.TotalPoints)
	}

	if len(f.points.log) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(f.points.log))
	}
	bonus := f.points.log[1]
	if bonus.Points != 200 || bonus.Source != entity.SourceLevelUp {
		t.Fatalf("unexpected bonus transaction: %+v", bonus)
	}
}

func TestLevelUpUnlocksDisplayOnlyAchievement(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1, TotalPoints: 490, Experience: 490}
	f := newLedgerFixture(user)

	if _, err := f.svc.Award(context.Background(), user.ID, 20, entity.SourceWorkoutStreak, "streak"); err != nil {
		t.Fatalf("award failed: %v", err)
	}

	achievement, err := f.achievements.FindByKey(context.Background(), user.ID, "level_2")
	if err != nil {
		t.Fatalf("expected level_2 achievement: %v", err)
	}
	if achievement.Tier != entity.TierGold {
		t.Fatalf("expected gold tier, got %s", achievement.Tier)
	}
	if achievement.PointReward != 100 {
		t.Fatalf("expected display reward 100, got %d", achievement.PointReward)
	}

	// The achievement's point_reward is display-only: totals must equal
	// the transaction sum exactly.
	sum, _ := f.points.SumByUser(context.Background(), user.ID)
	if int(sum) != f.users.users[user.ID].TotalPoints-490 {
		t.Fatalf("ledger out of balance: sum=%d, earned=%d", sum, f.users.users[user.ID].TotalPoints-490)
	}

	if len(f.notifier.created) != 1 || f.notifier.created[0].Type != entity.NotificationLevelUp {
		t.Fatalf("expected one level-up notification, got %+v", f.notifier.created)
	}
}

func TestFailedAwardLeavesLedgerBalanced(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)
	ctx := context.Background()

	if _, err := f.svc.Award(ctx, user.ID, 50, entity.SourceChallenge, "warmup"); err != nil {
		t.Fatalf("award failed: %v", err)
	}

	f.points.failNext = errors.New("storage down")
	if _, err := f.svc.Award(ctx, user.ID, 30, entity.SourceWorkoutStreak, "streak"); err == nil {
		t.Fatalf("expected the failed write to surface")
	}

	// The failed award must write nothing: no orphaned transaction row,
	// no half-applied totals.
	stored := f.users.users[user.ID]
	sum, _ := f.points.SumByUser(ctx, user.ID)
	if len(f.points.log) != 1 || int(sum) != stored.TotalPoints {
		t.Fatalf("ledger out of balance after failure: %d rows, sum=%d, total=%d", len(f.points.log), sum, stored.TotalPoints)
	}
	if stored.TotalPoints != 50 {
		t.Fatalf("expected totals untouched at 50, got %d", stored.TotalPoints)
	}

	result, err := f.svc.Award(ctx, user.ID, 30, entity.SourceWorkoutStreak, "streak")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	sum, _ = f.points.SumByUser(ctx, user.ID)
	if result.TotalPoints != 80 || int(sum) != 80 {
		t.Fatalf("conservation violated after retry: sum=%d, total=%d", sum, result.TotalPoints)
	}
}

func TestPointsConservationAcrossAwards(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)
	ctx := context.Background()

	awards := []int{5, 10, 70, 50, 25, 300, 15}
	for _, points := range awards {
		if _, err := f.svc.Award(ctx, user.ID, points, entity.SourceAchievement, "test"); err != nil {
			t.Fatalf("award %d failed: %v", points, err)
		}
	}

	sum, _ := f.points.SumByUser(ctx, user.ID)
	if int(sum) != f.users.users[user.ID].TotalPoints {
		t.Fatalf("conservation violated: transactions sum to %d, total is %d", sum, f.users.users[user.ID].TotalPoints)
	}
	if f.users.users[user.ID].Level != f.users.users[user.ID].Experience/ExperiencePerLevel+1 {
		t.Fatalf("level formula violated: level=%d experience=%d", f.users.users[user.ID].Level, f.users.users[user.ID].Experience)
	}
}

func TestExtremeAwardTerminatesAndStaysConsistent(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)
	ctx := context.Background()

	// Large enough to push past level 5, where every bonus can cross
	// another boundary. The cascade cap must stop the chain while
	// keeping the ledger balanced and the level formula intact.
	result, err := f.svc.Award(ctx, user.ID, 100000, entity.SourceAchievement, "synthetic")
	if err != nil {
		t.Fatalf("award failed: %v", err)
	}
	if result == nil {
		t.Fatalf("expected a user back")
	}

	final := f.users.users[user.ID]
	sum, _ := f.points.SumByUser(ctx, user.ID)
	if int(sum) != final.TotalPoints {
		t.Fatalf("conservation violated: transactions sum to %d, total is %d", sum, final.TotalPoints)
	}
	if final.Level != final.Experience/ExperiencePerLevel+1 {
		t.Fatalf("level formula violated: level=%d experience=%d", final.Level, final.Experience)
	}
	if len(f.points.log) > maxLevelUpCascade+1 {
		t.Fatalf("cascade exceeded cap: %d transactions", len(f.points.log))
	}
}

func TestLevelNeverDecreases(t *testing.T) {
	user := &entity.User{ID: uuid.New(), Level: 1}
	f := newLedgerFixture(user)
	ctx := context.Background()

	previous := 1
	for i := 0; i < 30; i++ {
		if _, err := f.svc.Award(ctx, user.ID, 90, entity.SourceWorkoutStreak, "grind"); err != nil {
			t.Fatalf("award failed: %v", err)
		}
		level := f.users.users[user.ID].Level
		if level < previous {
			t.Fatalf("level decreased from %d to %d", previous, level)
		}
		previous = level
	}
}
