package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

// ActivityRepository handles database operations for the activity log.
// Activities are append-mostly: workflow transitions, sends and responses
// are recorded against their target entity.
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *domain.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *ActivityRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	var activity domain.Activity
	err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *ActivityRepository) List(ctx context.Context, page, pageSize int, targetType *domain.ActivityTargetType, targetID *uuid.UUID) ([]domain.Activity, int64, error) {
	var activities []domain.Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Activity{})

	if targetType != nil {
		query = query.Where("target_type = ?", *targetType)
	}

	if targetID != nil {
		query = query.Where("target_id = ?", *targetID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("occurred_at DESC").Find(&activities).Error

	return activities, total, err
}

func (r *ActivityRepository) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	err := r.db.WithContext(ctx).
		Where("target_type = ? AND target_id = ?", targetType, targetID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

// GetRecentInWindow returns the most recent activities within a time window.
// If since is nil, no date filter is applied (all time).
func (r *ActivityRepository) GetRecentInWindow(ctx context.Context, since *time.Time, limit int) ([]domain.Activity, error) {
	var activities []domain.Activity
	query := r.db.WithContext(ctx)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}
	err := query.Order("created_at DESC").Limit(limit).Find(&activities).Error
	return activities, err
}
