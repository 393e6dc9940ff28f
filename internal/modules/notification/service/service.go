package service

import (
	"context"
	"encoding/json"
	"fmt"

	"fitquest.app/backend/internal/entity"
	notifRepo "fitquest.app/backend/internal/modules/notification/repository"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChannelFor is the Redis pub/sub channel carrying a user's gamification
// events; the websocket handler subscribes to the same name.
func ChannelFor(userID uuid.UUID) string {
	return fmt.Sprintf("user_gamification:%s", userID.String())
}

type NotificationService interface {
	CreateNotification(ctx context.Context, notification *entity.Notification) error
	GetNotifications(userID uuid.UUID, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(id uuid.UUID) error
	MarkAllAsRead(userID uuid.UUID) error
	UnreadCount(userID uuid.UUID) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, logger *zap.Logger) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		logger:      logger,
	}
}

func (s *notificationService) CreateNotification(ctx context.Context, notification *entity.Notification) error {
	if err := s.repo.Create(notification); err != nil {
		return err
	}

	// Push to Redis so open websocket sessions see it immediately. The
	// row is already persisted, so a dead broker only costs liveness.
	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			s.logger.Warn("notification marshal failed", zap.Error(err))
			return nil
		}
		if err := s.redisClient.Publish(ctx, ChannelFor(notification.UserID), payload).Err(); err != nil {
			s.logger.Warn("notification publish failed",
				zap.String("user_id", notification.UserID.String()),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (s *notificationService) GetNotifications(userID uuid.UUID, limit, offset int) ([]entity.Notification, error) {
	return s.repo.GetByUserID(userID, limit, offset)
}

func (s *notificationService) MarkAsRead(id uuid.UUID) error {
	return s.repo.MarkAsRead(id)
}

func (s *notificationService) MarkAllAsRead(userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(userID)
}

func (s *notificationService) UnreadCount(userID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(userID)
}
