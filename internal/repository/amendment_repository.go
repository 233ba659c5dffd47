package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

type AmendmentRepository struct {
	db *gorm.DB
}

func NewAmendmentRepository(db *gorm.DB) *AmendmentRepository {
	return &AmendmentRepository{db: db}
}

func (r *AmendmentRepository) Create(ctx context.Context, amendment *domain.Amendment) error {
	return r.db.WithContext(ctx).Create(amendment).Error
}

func (r *AmendmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Amendment, error) {
	var amendment domain.Amendment
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Preload("Contract.Client").
		Preload("Items").
		Preload("Items.Materials").
		Preload("WorkflowSteps", func(db *gorm.DB) *gorm.DB {
			return db.Order("performed_at ASC")
		}).
		First(&amendment, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &amendment, nil
}

func (r *AmendmentRepository) Update(ctx context.Context, amendment *domain.Amendment) error {
	return r.db.WithContext(ctx).Save(amendment).Error
}

func (r *AmendmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Amendment{}, "id = ?", id).Error
}

func (r *AmendmentRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.Amendment, error) {
	var amendments []domain.Amendment
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("contract_id = ?", contractID).
		Order("sequence_number ASC").
		Find(&amendments).Error
	return amendments, err
}

// amendmentSortFields whitelists the API sort fields for amendment lists
var amendmentSortFields = map[string]string{
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
	"number":         "number",
	"sequenceNumber": "sequence_number",
	"priceImpact":    "price_impact",
	"status":         "status",
}

func (r *AmendmentRepository) List(ctx context.Context, page, pageSize int, contractID *uuid.UUID, status *domain.AmendmentStatus, workflowStatus *domain.WorkflowStatus, assigneeID string, sort SortConfig) ([]domain.Amendment, int64, error) {
	var amendments []domain.Amendment
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Amendment{}).
		Preload("Contract")

	if contractID != nil {
		query = query.Where("contract_id = ?", *contractID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if workflowStatus != nil {
		query = query.Where("workflow_status = ?", *workflowStatus)
	}

	if assigneeID != "" {
		query = query.Where("assignee_id = ?", assigneeID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).
		Order(BuildOrderClause(sort, amendmentSortFields, "created_at")).
		Find(&amendments).Error

	return amendments, total, err
}

// SaveWithStep persists an amendment mutation and its workflow step audit
// record in one transaction. Every state change goes through here so the
// step history can never drift from the amendment itself.
func (r *AmendmentRepository) SaveWithStep(ctx context.Context, amendment *domain.Amendment, step *domain.WorkflowStep) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(amendment).Error; err != nil {
			return err
		}
		step.AmendmentID = amendment.ID
		return tx.Create(step).Error
	})
}

// SaveWithStepAndContract persists the client-acceptance mutation: the
// amendment, its workflow step, the recomputed contract totals and the
// contract's slot occupancy, atomically. A failure anywhere leaves the
// contract untouched.
func (r *AmendmentRepository) SaveWithStepAndContract(ctx context.Context, amendment *domain.Amendment, step *domain.WorkflowStep, contract *domain.Contract, occupy []domain.ContractUpgrade, vacateSlots []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(amendment).Error; err != nil {
			return err
		}
		step.AmendmentID = amendment.ID
		if err := tx.Create(step).Error; err != nil {
			return err
		}
		if err := tx.Save(contract).Error; err != nil {
			return err
		}
		if len(vacateSlots) > 0 {
			if err := tx.Delete(&domain.ContractUpgrade{},
				"contract_id = ? AND memorial_item_id IN ?", contract.ID, vacateSlots).Error; err != nil {
				return err
			}
		}
		for i := range occupy {
			occupy[i].ContractID = contract.ID
		}
		if len(occupy) > 0 {
			if err := tx.Create(&occupy).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSentBefore returns amendments awaiting a client response since before
// the cutoff. Used by the overdue-response sweep, which notifies but never
// mutates workflow state.
func (r *AmendmentRepository) ListSentBefore(ctx context.Context, cutoff time.Time) ([]domain.Amendment, error) {
	var amendments []domain.Amendment
	err := r.db.WithContext(ctx).
		Preload("Contract").
		Where("status = ? AND sent_at IS NOT NULL AND sent_at < ?", domain.AmendmentStatusPendingApproval, cutoff).
		Find(&amendments).Error
	return amendments, err
}

// MaxSequenceNumber returns the highest sequence number on a contract, 0
// when it has none. Used when seeding the counter after a legacy import.
func (r *AmendmentRepository) MaxSequenceNumber(ctx context.Context, contractID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&domain.Amendment{}).
		Where("contract_id = ?", contractID).
		Select("COALESCE(MAX(sequence_number), 0)").
		Scan(&max).Error
	return max, err
}

// GetByNumber retrieves an amendment by its display number (ATO-...-NNN)
func (r *AmendmentRepository) GetByNumber(ctx context.Context, number string) (*domain.Amendment, error) {
	var amendment domain.Amendment
	err := r.db.WithContext(ctx).First(&amendment, "number = ?", number).Error
	if err != nil {
		return nil, err
	}
	return &amendment, nil
}
