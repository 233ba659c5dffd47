package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/mapper"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CatalogService manages the sales catalog: yacht models, their memorial
// (standard equipment slots), upgrades and options.
type CatalogService struct {
	catalogRepo *repository.CatalogRepository
	logger      *zap.Logger
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalogRepo: catalogRepo,
		logger:      logger,
	}
}

// CreateYachtModel adds a model to the catalog
func (s *CatalogService) CreateYachtModel(ctx context.Context, req *domain.CreateYachtModelRequest) (*domain.YachtModelDTO, error) {
	model := &domain.YachtModel{
		Name:             req.Name,
		LengthFeet:       req.LengthFeet,
		BasePrice:        req.BasePrice,
		BaseDeliveryDays: req.BaseDeliveryDays,
		Description:      req.Description,
		IsActive:         true,
	}
	if err := s.catalogRepo.CreateYachtModel(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to create yacht model: %w", err)
	}

	s.logger.Info("yacht model created",
		zap.String("modelID", model.ID.String()),
		zap.String("name", model.Name))

	dto := mapper.ToYachtModelDTO(model)
	return &dto, nil
}

// GetYachtModel retrieves one model with its full memorial, upgrades and options
func (s *CatalogService) GetYachtModel(ctx context.Context, id uuid.UUID) (*domain.YachtModelDTO, error) {
	model, err := s.catalogRepo.GetYachtModel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}
	dto := mapper.ToYachtModelDTO(model)
	return &dto, nil
}

// ListYachtModels lists the catalog, optionally only active models
func (s *CatalogService) ListYachtModels(ctx context.Context, activeOnly bool) ([]domain.YachtModelDTO, error) {
	models, err := s.catalogRepo.ListYachtModels(ctx, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list yacht models: %w", err)
	}
	dtos := make([]domain.YachtModelDTO, len(models))
	for i := range models {
		dtos[i] = mapper.ToYachtModelDTO(&models[i])
	}
	return dtos, nil
}

// UpdateYachtModel applies a partial update. Price changes affect new
// quotations only; existing quotations and contracts keep their snapshots.
func (s *CatalogService) UpdateYachtModel(ctx context.Context, id uuid.UUID, req *domain.UpdateYachtModelRequest) (*domain.YachtModelDTO, error) {
	model, err := s.catalogRepo.GetYachtModel(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	if req.Name != nil {
		model.Name = *req.Name
	}
	if req.LengthFeet != nil {
		model.LengthFeet = *req.LengthFeet
	}
	if req.BasePrice != nil {
		model.BasePrice = *req.BasePrice
	}
	if req.BaseDeliveryDays != nil {
		model.BaseDeliveryDays = *req.BaseDeliveryDays
	}
	if req.Description != nil {
		model.Description = *req.Description
	}
	if req.IsActive != nil {
		model.IsActive = *req.IsActive
	}

	if err := s.catalogRepo.UpdateYachtModel(ctx, model); err != nil {
		return nil, fmt.Errorf("failed to update yacht model: %w", err)
	}

	dto := mapper.ToYachtModelDTO(model)
	return &dto, nil
}

// AddMemorialItem adds a standard-equipment slot to a model
func (s *CatalogService) AddMemorialItem(ctx context.Context, modelID uuid.UUID, req *domain.CreateMemorialItemRequest) (*domain.MemorialItemDTO, error) {
	if _, err := s.catalogRepo.GetYachtModel(ctx, modelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	item := &domain.MemorialItem{
		YachtModelID: modelID,
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		DisplayOrder: req.DisplayOrder,
	}
	if err := s.catalogRepo.CreateMemorialItem(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create memorial item: %w", err)
	}

	dto := mapper.ToMemorialItemDTO(item)
	return &dto, nil
}

// AddUpgrade registers a priced alternative for a memorial slot
func (s *CatalogService) AddUpgrade(ctx context.Context, req *domain.CreateUpgradeRequest) (*domain.UpgradeDTO, error) {
	if _, err := s.catalogRepo.GetMemorialItem(ctx, req.MemorialItemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: memorial item %s", ErrNotFound, req.MemorialItemID)
		}
		return nil, fmt.Errorf("failed to get memorial item: %w", err)
	}

	upgrade := &domain.Upgrade{
		MemorialItemID:     req.MemorialItemID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		DeliveryImpactDays: req.DeliveryImpactDays,
		IsActive:           true,
	}
	if err := s.catalogRepo.CreateUpgrade(ctx, upgrade); err != nil {
		return nil, fmt.Errorf("failed to create upgrade: %w", err)
	}

	dto := mapper.ToUpgradeDTO(upgrade)
	return &dto, nil
}

// AddOption registers an optional extra on a model
func (s *CatalogService) AddOption(ctx context.Context, modelID uuid.UUID, req *domain.CreateOptionRequest) (*domain.OptionItemDTO, error) {
	if _, err := s.catalogRepo.GetYachtModel(ctx, modelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	option := &domain.OptionItem{
		YachtModelID:       modelID,
		Name:               req.Name,
		Description:        req.Description,
		UnitPrice:          req.UnitPrice,
		DeliveryImpactDays: req.DeliveryImpactDays,
		IsActive:           true,
	}
	if err := s.catalogRepo.CreateOption(ctx, option); err != nil {
		return nil, fmt.Errorf("failed to create option: %w", err)
	}

	dto := mapper.ToOptionItemDTO(option)
	return &dto, nil
}

// ListOptions lists a model's options
func (s *CatalogService) ListOptions(ctx context.Context, modelID uuid.UUID, activeOnly bool) ([]domain.OptionItemDTO, error) {
	options, err := s.catalogRepo.ListOptions(ctx, modelID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list options: %w", err)
	}
	dtos := make([]domain.OptionItemDTO, len(options))
	for i := range options {
		dtos[i] = mapper.ToOptionItemDTO(&options[i])
	}
	return dtos, nil
}
