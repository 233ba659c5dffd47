package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/mapper"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ContractService exposes signed contracts and their consolidated amendment
// impact. Contracts are created by quotation acceptance, never directly.
type ContractService struct {
	contractRepo  *repository.ContractRepository
	amendmentRepo *repository.AmendmentRepository
	activityRepo  *repository.ActivityRepository
	logger        *zap.Logger
}

func NewContractService(
	contractRepo *repository.ContractRepository,
	amendmentRepo *repository.AmendmentRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *ContractService {
	return &ContractService{
		contractRepo:  contractRepo,
		amendmentRepo: amendmentRepo,
		activityRepo:  activityRepo,
		logger:        logger,
	}
}

// GetByID retrieves a contract with its client, model and slot configuration
func (s *ContractService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// GetByNumber retrieves a contract by its display number
func (s *ContractService) GetByNumber(ctx context.Context, number string) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}
	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// List returns contracts with optional client/status filters
func (s *ContractService) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.ContractStatus) ([]domain.ContractDTO, int64, error) {
	contracts, total, err := s.contractRepo.List(ctx, page, pageSize, clientID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contracts: %w", err)
	}
	dtos := make([]domain.ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = mapper.ToContractDTO(&contracts[i])
	}
	return dtos, total, nil
}

// Search finds contracts by number or client name
func (s *ContractService) Search(ctx context.Context, query string, limit int) ([]domain.ContractDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	contracts, err := s.contractRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search contracts: %w", err)
	}
	dtos := make([]domain.ContractDTO, len(contracts))
	for i := range contracts {
		dtos[i] = mapper.ToContractDTO(&contracts[i])
	}
	return dtos, nil
}

// GetImpact folds the contract's approved amendments into the consolidated
// impact breakdown, gross and corrected totals side by side.
func (s *ContractService) GetImpact(ctx context.Context, id uuid.UUID) (*domain.ContractImpactDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	impact, err := s.consolidate(ctx, contract)
	if err != nil {
		return nil, err
	}

	dto := mapper.ToContractImpactDTO(contract, impact)
	return &dto, nil
}

// ListAmendments returns all amendments of a contract in sequence order
func (s *ContractService) ListAmendments(ctx context.Context, id uuid.UUID) ([]domain.AmendmentDTO, error) {
	if _, err := s.contractRepo.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	amendments, err := s.amendmentRepo.ListByContract(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list amendments: %w", err)
	}
	dtos := make([]domain.AmendmentDTO, len(amendments))
	for i := range amendments {
		dtos[i] = mapper.ToAmendmentDTO(&amendments[i])
	}
	return dtos, nil
}

// RecomputeTotals re-derives and persists the contract's consolidated totals
// from its approved amendments. Used after legacy imports and as a repair
// operation; normal acceptance updates totals transactionally.
func (s *ContractService) RecomputeTotals(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	impact, err := s.consolidate(ctx, contract)
	if err != nil {
		return nil, err
	}

	contract.TotalPrice = pricing.Round2(impact.TotalPrice)
	contract.TotalDeliveryDays = impact.TotalDeliveryDays
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	s.logActivity(ctx, contract.ID, "Totais recalculados",
		fmt.Sprintf("Os totais do contrato %s foram recalculados: R$ %.2f, %d dias",
			contract.Number, contract.TotalPrice, contract.TotalDeliveryDays))

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// UpdateStatus moves a contract to delivered or cancelled
func (s *ContractService) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ContractStatus) (*domain.ContractDTO, error) {
	switch status {
	case domain.ContractStatusDelivered, domain.ContractStatusCancelled:
	default:
		return nil, fmt.Errorf("%w: invalid target status %q", ErrInvalidInput, status)
	}

	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.Status != domain.ContractStatusActive {
		return nil, fmt.Errorf("%w: contract is %s", ErrInvalidTransition, contract.Status)
	}

	contract.Status = status
	if err := s.contractRepo.Update(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to update contract: %w", err)
	}

	label := "Contrato entregue"
	if status == domain.ContractStatusCancelled {
		label = "Contrato cancelado"
	}
	s.logActivity(ctx, contract.ID, label,
		fmt.Sprintf("O contrato %s mudou para %s", contract.Number, status))

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

func (s *ContractService) consolidate(ctx context.Context, contract *domain.Contract) (pricing.ConsolidatedImpact, error) {
	approved, err := s.contractRepo.ListApprovedAmendments(ctx, contract.ID)
	if err != nil {
		return pricing.ConsolidatedImpact{}, fmt.Errorf("failed to list approved amendments: %w", err)
	}
	impacts := make([]pricing.ApprovedImpact, len(approved))
	for i := range approved {
		impacts[i] = approvedImpactOf(&approved[i])
	}
	return pricing.ConsolidateImpacts(contract.BasePrice, contract.BaseDeliveryDays, impacts), nil
}

func (s *ContractService) logActivity(ctx context.Context, contractID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetContract,
		TargetID:   contractID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID
		activity.CreatorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
