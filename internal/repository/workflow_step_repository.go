package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

type WorkflowStepRepository struct {
	db *gorm.DB
}

func NewWorkflowStepRepository(db *gorm.DB) *WorkflowStepRepository {
	return &WorkflowStepRepository{db: db}
}

func (r *WorkflowStepRepository) Create(ctx context.Context, step *domain.WorkflowStep) error {
	return r.db.WithContext(ctx).Create(step).Error
}

func (r *WorkflowStepRepository) ListByAmendment(ctx context.Context, amendmentID uuid.UUID) ([]domain.WorkflowStep, error) {
	var steps []domain.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("amendment_id = ?", amendmentID).
		Order("performed_at ASC").
		Find(&steps).Error
	return steps, err
}

// LatestByPhase returns the most recent step of a phase, nil when the phase
// never ran.
func (r *WorkflowStepRepository) LatestByPhase(ctx context.Context, amendmentID uuid.UUID, phase domain.WorkflowPhase) (*domain.WorkflowStep, error) {
	var step domain.WorkflowStep
	err := r.db.WithContext(ctx).
		Where("amendment_id = ? AND phase = ?", amendmentID, phase).
		Order("performed_at DESC").
		First(&step).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &step, nil
}
