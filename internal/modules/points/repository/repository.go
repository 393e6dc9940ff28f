package repository

import (
	"context"

	"fitquest.app/backend/internal/entity"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PointsRepository interface {
	// Apply appends the transaction and persists the user's updated
	// totals in a single database transaction, so a storage failure
	// never leaves an orphaned transaction row. A non-nil achievement
	// unlocked by the same award is inserted atomically with them.
	Apply(ctx context.Context, transaction *entity.PointTransaction, user *entity.User, achievement *entity.Achievement) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.PointTransaction, error)
	SumByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type pointsRepository struct {
	db *gorm.DB
}

func NewPointsRepository(db *gorm.DB) PointsRepository {
	return &pointsRepository{db: db}
}

func (r *pointsRepository) Apply(ctx context.Context, transaction *entity.PointTransaction, user *entity.User, achievement *entity.Achievement) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(transaction).Error; err != nil {
			return err
		}
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if achievement != nil {
			if err := tx.Create(achievement).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *pointsRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entity.PointTransaction, error) {
	var transactions []entity.PointTransaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	return transactions, err
}

func (r *pointsRepository) SumByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&entity.PointTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(points), 0)").
		Scan(&total).Error
	return total, err
}
