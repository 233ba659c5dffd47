package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

type ContractRepository struct {
	db *gorm.DB
}

func NewContractRepository(db *gorm.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

func (r *ContractRepository) Create(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("YachtModel").
		Preload("SelectedUpgrades").
		Preload("SelectedUpgrades.Upgrade").
		First(&contract, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) GetByNumber(ctx context.Context, number string) (*domain.Contract, error) {
	var contract domain.Contract
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("YachtModel").
		First(&contract, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *ContractRepository) Update(ctx context.Context, contract *domain.Contract) error {
	return r.db.WithContext(ctx).Save(contract).Error
}

func (r *ContractRepository) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.ContractStatus) ([]domain.Contract, int64, error) {
	var contracts []domain.Contract
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Contract{}).
		Preload("Client").
		Preload("YachtModel")

	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&contracts).Error

	return contracts, total, err
}

func (r *ContractRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Contract, error) {
	var contracts []domain.Contract
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("LOWER(number) LIKE ?", searchPattern).
		Limit(limit).
		Find(&contracts).Error
	return contracts, err
}

// GetUpgradeForSlot returns the upgrade currently occupying a memorial
// slot on the contract, or nil when the slot holds standard equipment.
func (r *ContractRepository) GetUpgradeForSlot(ctx context.Context, contractID, memorialItemID uuid.UUID) (*domain.ContractUpgrade, error) {
	var cu domain.ContractUpgrade
	err := r.db.WithContext(ctx).
		Preload("Upgrade").
		Where("contract_id = ? AND memorial_item_id = ?", contractID, memorialItemID).
		First(&cu).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cu, nil
}

// ListApprovedAmendments returns the approved amendments of a contract in
// sequence order, the input to consolidated-impact recomputation.
func (r *ContractRepository) ListApprovedAmendments(ctx context.Context, contractID uuid.UUID) ([]domain.Amendment, error) {
	var amendments []domain.Amendment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("contract_id = ? AND status = ?", contractID, domain.AmendmentStatusApproved).
		Order("sequence_number ASC").
		Find(&amendments).Error
	return amendments, err
}
