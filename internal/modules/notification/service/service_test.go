package service

import (
	"context"
	"testing"
	"time"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memNotifRepo struct {
	created []entity.Notification
}

func (r *memNotifRepo) Create(notification *entity.Notification) error {
	if notification.ID == uuid.Nil {
		notification.ID = uuid.New()
	}
	r.created = append(r.created, *notification)
	return nil
}

func (r *memNotifRepo) GetByUserID(userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return nil, nil
}

func (r *memNotifRepo) MarkAsRead(id uuid.UUID) error { return nil }

func (r *memNotifRepo) MarkAllAsRead(userID uuid.UUID) error { return nil }

func (r *memNotifRepo) CountUnread(userID uuid.UUID) (int64, error) { return 0, nil }

func TestCreateNotificationWithoutRedisStillPersists(t *testing.T) {
	repo := &memNotifRepo{}
	svc := NewNotificationService(repo, nil, zap.NewNop())

	err := svc.CreateNotification(context.Background(), &entity.Notification{
		UserID:  uuid.New(),
		Type:    entity.NotificationLevelUp,
		Message: "Level 2 Reached!",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected persisted notification, got %d", len(repo.created))
	}
}

func TestPublishFailureIsLoggedNotFatal(t *testing.T) {
	repo := &memNotifRepo{}
	core, logs := observer.New(zap.WarnLevel)

	// Nothing listens on port 1; the publish fails fast.
	dead := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer dead.Close()

	svc := NewNotificationService(repo, dead, zap.New(core))

	err := svc.CreateNotification(context.Background(), &entity.Notification{
		UserID:  uuid.New(),
		Type:    entity.NotificationAchievementUnlocked,
		Message: "First Workout!",
	})
	if err != nil {
		t.Fatalf("a dead broker must not fail the create: %v", err)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected persisted notification, got %d", len(repo.created))
	}
	if logs.FilterMessage("notification publish failed").Len() != 1 {
		t.Fatalf("expected one publish warning, got %d warn entries", logs.Len())
	}
}

func TestChannelFor(t *testing.T) {
	userID := uuid.New()
	want := "user_gamification:" + userID.String()
	if got := ChannelFor(userID); got != want {
		t.Fatalf("ChannelFor = %q, want %q", got, want)
	}
}
