package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

type ConfiguredItemRepository struct {
	db *gorm.DB
}

func NewConfiguredItemRepository(db *gorm.DB) *ConfiguredItemRepository {
	return &ConfiguredItemRepository{db: db}
}

func (r *ConfiguredItemRepository) Create(ctx context.Context, item *domain.ConfiguredItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *ConfiguredItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ConfiguredItem, error) {
	var item domain.ConfiguredItem
	err := r.db.WithContext(ctx).
		Preload("Materials").
		First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ConfiguredItemRepository) Update(ctx context.Context, item *domain.ConfiguredItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *ConfiguredItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.ConfiguredItem{}, "id = ?", id).Error
}

func (r *ConfiguredItemRepository) ListByAmendment(ctx context.Context, amendmentID uuid.UUID) ([]domain.ConfiguredItem, error) {
	var items []domain.ConfiguredItem
	err := r.db.WithContext(ctx).
		Preload("Materials").
		Where("amendment_id = ?", amendmentID).
		Order("created_at ASC").
		Find(&items).Error
	return items, err
}

// UpdateWithMaterials saves the item and replaces its material lines in one
// transaction. Materials are replaced wholesale at each review submission.
func (r *ConfiguredItemRepository) UpdateWithMaterials(ctx context.Context, item *domain.ConfiguredItem, materials []domain.ItemMaterial) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		if err := tx.Delete(&domain.ItemMaterial{}, "configured_item_id = ?", item.ID).Error; err != nil {
			return err
		}
		for i := range materials {
			materials[i].ConfiguredItemID = item.ID
		}
		if len(materials) == 0 {
			return nil
		}
		return tx.Create(&materials).Error
	})
}

// ResetReviews clears review outcomes on all items of an amendment. Runs
// when a revision is requested or the scope changes, forcing full re-review.
func (r *ConfiguredItemRepository) ResetReviews(ctx context.Context, amendmentID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&domain.ConfiguredItem{}).
		Where("amendment_id = ?", amendmentID).
		Updates(map[string]interface{}{
			"review_status":    domain.ItemReviewPending,
			"review_notes":     "",
			"reviewed_by_id":   "",
			"reviewed_by_name": "",
			"reviewed_at":      nil,
		}).Error
}

// CountByReviewStatus returns the review progress tallies for an amendment
func (r *ConfiguredItemRepository) CountByReviewStatus(ctx context.Context, amendmentID uuid.UUID) (approved, rejected, pending int, err error) {
	type row struct {
		ReviewStatus domain.ItemReviewStatus
		Count        int
	}
	var rows []row
	err = r.db.WithContext(ctx).Model(&domain.ConfiguredItem{}).
		Select("review_status, COUNT(*) as count").
		Where("amendment_id = ?", amendmentID).
		Group("review_status").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, 0, err
	}
	for _, r := range rows {
		switch r.ReviewStatus {
		case domain.ItemReviewApproved:
			approved = r.Count
		case domain.ItemReviewRejected:
			rejected = r.Count
		case domain.ItemReviewPending:
			pending = r.Count
		}
	}
	return approved, rejected, pending, nil
}
