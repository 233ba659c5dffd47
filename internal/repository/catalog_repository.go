package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

// CatalogRepository handles database operations for the sales catalog:
// yacht models, their memorial items, upgrades and options.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateYachtModel(ctx context.Context, model *domain.YachtModel) error {
	return r.db.WithContext(ctx).Create(model).Error
}

// GetYachtModel loads a model with its full specification tree: memorial
// items ordered for display, each with its upgrades, plus the options list.
func (r *CatalogRepository) GetYachtModel(ctx context.Context, id uuid.UUID) (*domain.YachtModel, error) {
	var model domain.YachtModel
	err := r.db.WithContext(ctx).
		Preload("MemorialItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order ASC")
		}).
		Preload("MemorialItems.Upgrades").
		Preload("Options").
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &model, nil
}

func (r *CatalogRepository) UpdateYachtModel(ctx context.Context, model *domain.YachtModel) error {
	return r.db.WithContext(ctx).Save(model).Error
}

func (r *CatalogRepository) ListYachtModels(ctx context.Context, activeOnly bool) ([]domain.YachtModel, error) {
	var models []domain.YachtModel
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Find(&models).Error
	return models, err
}

func (r *CatalogRepository) CreateMemorialItem(ctx context.Context, item *domain.MemorialItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *CatalogRepository) GetMemorialItem(ctx context.Context, id uuid.UUID) (*domain.MemorialItem, error) {
	var item domain.MemorialItem
	err := r.db.WithContext(ctx).Preload("Upgrades").First(&item, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CatalogRepository) CreateUpgrade(ctx context.Context, upgrade *domain.Upgrade) error {
	return r.db.WithContext(ctx).Create(upgrade).Error
}

// GetUpgrade loads an upgrade with its memorial item, needed to resolve
// which slot the upgrade occupies when checking replacement conflicts.
func (r *CatalogRepository) GetUpgrade(ctx context.Context, id uuid.UUID) (*domain.Upgrade, error) {
	var upgrade domain.Upgrade
	err := r.db.WithContext(ctx).Preload("MemorialItem").First(&upgrade, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &upgrade, nil
}

func (r *CatalogRepository) UpdateUpgrade(ctx context.Context, upgrade *domain.Upgrade) error {
	return r.db.WithContext(ctx).Save(upgrade).Error
}

func (r *CatalogRepository) CreateOption(ctx context.Context, option *domain.OptionItem) error {
	return r.db.WithContext(ctx).Create(option).Error
}

func (r *CatalogRepository) GetOption(ctx context.Context, id uuid.UUID) (*domain.OptionItem, error) {
	var option domain.OptionItem
	err := r.db.WithContext(ctx).First(&option, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

func (r *CatalogRepository) UpdateOption(ctx context.Context, option *domain.OptionItem) error {
	return r.db.WithContext(ctx).Save(option).Error
}

func (r *CatalogRepository) ListOptions(ctx context.Context, yachtModelID uuid.UUID, activeOnly bool) ([]domain.OptionItem, error) {
	var options []domain.OptionItem
	query := r.db.WithContext(ctx).Where("yacht_model_id = ?", yachtModelID)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&options).Error
	return options, err
}
