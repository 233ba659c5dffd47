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

// quotationValidityDays is how long a sent quotation stays open before the
// expiration sweep marks it expired.
const quotationValidityDays = 30

// QuotationService handles quotation CRUD, pricing and the accept path that
// turns a quotation into a signed contract.
type QuotationService struct {
	quotationRepo *repository.QuotationRepository
	clientRepo    *repository.ClientRepository
	catalogRepo   *repository.CatalogRepository
	contractRepo  *repository.ContractRepository
	activityRepo  *repository.ActivityRepository
	numberSeq     *NumberSequenceService
	pricingCfg    pricing.Config
	logger        *zap.Logger
}

func NewQuotationService(
	quotationRepo *repository.QuotationRepository,
	clientRepo *repository.ClientRepository,
	catalogRepo *repository.CatalogRepository,
	contractRepo *repository.ContractRepository,
	activityRepo *repository.ActivityRepository,
	numberSeq *NumberSequenceService,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *QuotationService {
	return &QuotationService{
		quotationRepo: quotationRepo,
		clientRepo:    clientRepo,
		catalogRepo:   catalogRepo,
		contractRepo:  contractRepo,
		activityRepo:  activityRepo,
		numberSeq:     numberSeq,
		pricingCfg:    pricingCfg,
		logger:        logger,
	}
}

// Create creates a draft quotation, pricing it immediately. A discount above
// the absolute ceiling blocks the create with a *pricing.DiscountCeilingError.
func (s *QuotationService) Create(ctx context.Context, req *domain.CreateQuotationRequest) (*domain.QuotationDTO, []domain.PolicyWarning, error) {
	client, err := s.clientRepo.GetByID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: client %s", ErrNotFound, req.ClientID)
		}
		return nil, nil, fmt.Errorf("failed to get client: %w", err)
	}

	model, err := s.catalogRepo.GetYachtModel(ctx, req.YachtModelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, fmt.Errorf("%w: yacht model %s", ErrNotFound, req.YachtModelID)
		}
		return nil, nil, fmt.Errorf("failed to get yacht model: %w", err)
	}
	if !model.IsActive {
		return nil, nil, fmt.Errorf("%w: yacht model %s is inactive", ErrInvalidInput, model.Name)
	}

	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, nil, err
	}

	result, err := s.pricingCfg.ComputeQuote(quoteInput(model, items, req.BaseDiscountPct, req.OptionsDiscountPct))
	if err != nil {
		return nil, nil, err
	}

	quotation := &domain.Quotation{
		ClientID:           client.ID,
		YachtModelID:       model.ID,
		Status:             domain.QuotationStatusDraft,
		BaseDiscountPct:    req.BaseDiscountPct,
		OptionsDiscountPct: req.OptionsDiscountPct,
		FinalPrice:         pricing.Round2(result.FinalPrice),
		TotalDeliveryDays:  result.TotalDeliveryDays,
		ResponsibleUserID:  req.ResponsibleUserID,
		Notes:              req.Notes,
		Items:              items,
	}
	if userCtx, ok := auth.FromContext(ctx); ok && quotation.ResponsibleUserID == "" {
		quotation.ResponsibleUserID = userCtx.UserID
	}

	if err := s.quotationRepo.Create(ctx, quotation); err != nil {
		return nil, nil, fmt.Errorf("failed to create quotation: %w", err)
	}

	s.logActivity(ctx, domain.ActivityTargetQuotation, quotation.ID, "Cotação criada",
		fmt.Sprintf("Cotação do modelo %s criada para %s", model.Name, client.Name))

	quotation, err = s.quotationRepo.GetByID(ctx, quotation.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, s.discountWarnings(ctx, req.BaseDiscountPct, req.OptionsDiscountPct), nil
}

// GetByID retrieves a quotation with its items
func (s *QuotationService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}
	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// GetPricing re-prices a stored quotation and returns the full breakdown
// with any advisory warnings for the current user's discount tier.
func (s *QuotationService) GetPricing(ctx context.Context, id uuid.UUID) (*domain.QuotationPricingDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	model, err := s.catalogRepo.GetYachtModel(ctx, quotation.YachtModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	result, err := s.pricingCfg.ComputeQuote(quoteInput(model, quotation.Items, quotation.BaseDiscountPct, quotation.OptionsDiscountPct))
	if err != nil {
		return nil, err
	}

	dto := mapper.ToQuotationPricingDTO(result, s.discountWarnings(ctx, quotation.BaseDiscountPct, quotation.OptionsDiscountPct))
	return &dto, nil
}

// List returns quotations with optional client/status filters
func (s *QuotationService) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.QuotationDTO, int64, error) {
	quotations, total, err := s.quotationRepo.List(ctx, page, pageSize, clientID, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list quotations: %w", err)
	}
	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}
	return dtos, total, nil
}

// Update edits a draft quotation and re-prices it. Item changes replace the
// item set wholesale.
func (s *QuotationService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuotationRequest) (*domain.QuotationDTO, []domain.PolicyWarning, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return nil, nil, fmt.Errorf("%w: only draft quotations can be edited", ErrInvalidTransition)
	}

	if req.BaseDiscountPct != nil {
		quotation.BaseDiscountPct = *req.BaseDiscountPct
	}
	if req.OptionsDiscountPct != nil {
		quotation.OptionsDiscountPct = *req.OptionsDiscountPct
	}
	if req.Notes != nil {
		quotation.Notes = *req.Notes
	}

	if req.Items != nil {
		newItems, err := s.buildItems(ctx, req.Items)
		if err != nil {
			return nil, nil, err
		}
		if err := s.quotationRepo.ReplaceItems(ctx, quotation.ID, newItems); err != nil {
			return nil, nil, fmt.Errorf("failed to replace quotation items: %w", err)
		}
		quotation.Items = newItems
	}

	model, err := s.catalogRepo.GetYachtModel(ctx, quotation.YachtModelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	result, err := s.pricingCfg.ComputeQuote(quoteInput(model, quotation.Items, quotation.BaseDiscountPct, quotation.OptionsDiscountPct))
	if err != nil {
		return nil, nil, err
	}
	quotation.FinalPrice = pricing.Round2(result.FinalPrice)
	quotation.TotalDeliveryDays = result.TotalDeliveryDays

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, nil, fmt.Errorf("failed to update quotation: %w", err)
	}

	s.logActivity(ctx, domain.ActivityTargetQuotation, quotation.ID, "Cotação atualizada",
		fmt.Sprintf("A cotação %s foi atualizada", quotationLabel(quotation)))

	quotation, err = s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reload quotation: %w", err)
	}

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, s.discountWarnings(ctx, quotation.BaseDiscountPct, quotation.OptionsDiscountPct), nil
}

// Delete removes a draft quotation
func (s *QuotationService) Delete(ctx context.Context, id uuid.UUID) error {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get quotation: %w", err)
	}
	if quotation.Status != domain.QuotationStatusDraft {
		return fmt.Errorf("%w: only draft quotations can be deleted", ErrInvalidTransition)
	}
	return s.quotationRepo.Delete(ctx, id)
}

// Send transmits a draft quotation to the client: it receives its sequential
// number and the validity clock starts.
func (s *QuotationService) Send(ctx context.Context, id uuid.UUID) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusDraft {
		return nil, fmt.Errorf("%w: quotation is %s", ErrInvalidTransition, quotation.Status)
	}

	if quotation.Number == "" {
		number, err := s.numberSeq.GenerateQuotationNumber(ctx)
		if err != nil {
			return nil, err
		}
		quotation.Number = number
	}

	now := time.Now()
	expiration := now.AddDate(0, 0, quotationValidityDays)
	quotation.Status = domain.QuotationStatusSent
	quotation.SentDate = &now
	quotation.ExpirationDate = &expiration

	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to send quotation: %w", err)
	}

	s.logActivity(ctx, domain.ActivityTargetQuotation, quotation.ID, "Cotação enviada",
		fmt.Sprintf("A cotação %s foi enviada ao cliente (válida até %s)",
			quotation.Number, expiration.Format("02/01/2006")))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Accept converts a sent quotation into a signed contract. The contract
// freezes the model's base price and delivery days and takes over the
// quotation's upgrades as its initial slot configuration.
func (s *QuotationService) Accept(ctx context.Context, id uuid.UUID) (*domain.ContractDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusSent {
		return nil, fmt.Errorf("%w: quotation is %s", ErrInvalidTransition, quotation.Status)
	}

	model, err := s.catalogRepo.GetYachtModel(ctx, quotation.YachtModelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get yacht model: %w", err)
	}

	selected, err := s.selectedUpgrades(ctx, quotation)
	if err != nil {
		return nil, err
	}

	number, err := s.numberSeq.GenerateContractNumber(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	contract := &domain.Contract{
		Number:            number,
		QuotationID:       &quotation.ID,
		ClientID:          quotation.ClientID,
		YachtModelID:      quotation.YachtModelID,
		Status:            domain.ContractStatusActive,
		BasePrice:         model.BasePrice,
		BaseDeliveryDays:  model.BaseDeliveryDays,
		TotalPrice:        quotation.FinalPrice,
		TotalDeliveryDays: quotation.TotalDeliveryDays,
		SignedAt:          &now,
		SelectedUpgrades:  selected,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	quotation.Status = domain.QuotationStatusAccepted
	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to update quotation: %w", err)
	}

	s.logActivity(ctx, domain.ActivityTargetQuotation, quotation.ID, "Cotação aceita",
		fmt.Sprintf("A cotação %s foi aceita; contrato %s criado", quotation.Number, contract.Number))
	s.logActivity(ctx, domain.ActivityTargetContract, contract.ID, "Contrato criado",
		fmt.Sprintf("Contrato %s assinado a partir da cotação %s", contract.Number, quotation.Number))

	contract, err = s.contractRepo.GetByID(ctx, contract.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload contract: %w", err)
	}

	dto := mapper.ToContractDTO(contract)
	return &dto, nil
}

// Reject marks a sent quotation as rejected by the client
func (s *QuotationService) Reject(ctx context.Context, id uuid.UUID, reason string) (*domain.QuotationDTO, error) {
	quotation, err := s.quotationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quotation: %w", err)
	}

	if quotation.Status != domain.QuotationStatusSent {
		return nil, fmt.Errorf("%w: quotation is %s", ErrInvalidTransition, quotation.Status)
	}

	quotation.Status = domain.QuotationStatusRejected
	if reason != "" {
		quotation.Notes = reason
	}
	if err := s.quotationRepo.Update(ctx, quotation); err != nil {
		return nil, fmt.Errorf("failed to reject quotation: %w", err)
	}

	s.logActivity(ctx, domain.ActivityTargetQuotation, quotation.ID, "Cotação recusada",
		fmt.Sprintf("A cotação %s foi recusada pelo cliente", quotation.Number))

	dto := mapper.ToQuotationDTO(quotation)
	return &dto, nil
}

// Search finds quotations by number or client name
func (s *QuotationService) Search(ctx context.Context, query string, limit int) ([]domain.QuotationDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	quotations, err := s.quotationRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search quotations: %w", err)
	}
	dtos := make([]domain.QuotationDTO, len(quotations))
	for i := range quotations {
		dtos[i] = mapper.ToQuotationDTO(&quotations[i])
	}
	return dtos, nil
}

// ExpireOverdue marks sent quotations past their expiration date as expired.
// Called by the scheduled sweep.
func (s *QuotationService) ExpireOverdue(ctx context.Context) (int64, error) {
	count, err := s.quotationRepo.MarkExpired(ctx, time.Now())
	if err != nil {
		return 0, fmt.Errorf("failed to expire quotations: %w", err)
	}
	if count > 0 {
		s.logger.Info("expired overdue quotations", zap.Int64("count", count))
	}
	return count, nil
}

// buildItems snapshots catalog prices onto quotation item lines
func (s *QuotationService) buildItems(ctx context.Context, reqs []domain.CreateQuotationItemRequest) ([]domain.QuotationItem, error) {
	items := make([]domain.QuotationItem, 0, len(reqs))
	for _, req := range reqs {
		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		switch req.Kind {
		case domain.QuotationItemOption:
			if req.OptionItemID == nil {
				return nil, fmt.Errorf("%w: option line requires optionItemId", ErrInvalidInput)
			}
			option, err := s.catalogRepo.GetOption(ctx, *req.OptionItemID)
			if err != nil {
				return nil, fmt.Errorf("%w: option %s", ErrNotFound, *req.OptionItemID)
			}
			items = append(items, domain.QuotationItem{
				Kind:               domain.QuotationItemOption,
				OptionItemID:       &option.ID,
				Name:               option.Name,
				UnitPrice:          option.UnitPrice,
				Quantity:           quantity,
				DeliveryImpactDays: option.DeliveryImpactDays,
			})

		case domain.QuotationItemUpgrade:
			if req.UpgradeID == nil {
				return nil, fmt.Errorf("%w: upgrade line requires upgradeId", ErrInvalidInput)
			}
			upgrade, err := s.catalogRepo.GetUpgrade(ctx, *req.UpgradeID)
			if err != nil {
				return nil, fmt.Errorf("%w: upgrade %s", ErrNotFound, *req.UpgradeID)
			}
			items = append(items, domain.QuotationItem{
				Kind:               domain.QuotationItemUpgrade,
				UpgradeID:          &upgrade.ID,
				Name:               upgrade.Name,
				UnitPrice:          upgrade.Price,
				Quantity:           1,
				DeliveryImpactDays: upgrade.DeliveryImpactDays,
			})

		default:
			return nil, fmt.Errorf("%w: invalid item kind %q", ErrInvalidInput, req.Kind)
		}
	}
	return items, nil
}

// selectedUpgrades resolves the quotation's upgrade lines into the
// contract's initial slot configuration.
func (s *QuotationService) selectedUpgrades(ctx context.Context, quotation *domain.Quotation) ([]domain.ContractUpgrade, error) {
	var selected []domain.ContractUpgrade
	for i := range quotation.Items {
		item := &quotation.Items[i]
		if item.Kind != domain.QuotationItemUpgrade || item.UpgradeID == nil {
			continue
		}
		upgrade, err := s.catalogRepo.GetUpgrade(ctx, *item.UpgradeID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve upgrade %s: %w", *item.UpgradeID, err)
		}
		selected = append(selected, domain.ContractUpgrade{
			MemorialItemID: upgrade.MemorialItemID,
			UpgradeID:      upgrade.ID,
			Price:          item.UnitPrice * item.Quantity,
		})
	}
	return selected, nil
}

// discountWarnings builds advisory warnings for discounts above the current
// user's tier but within the absolute ceiling.
func (s *QuotationService) discountWarnings(ctx context.Context, basePct, optionsPct float64) []domain.PolicyWarning {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil
	}
	tier := userCtx.DiscountTier()

	var warnings []domain.PolicyWarning
	if s.pricingCfg.NeedsApproval(basePct, tier) {
		warnings = append(warnings, domain.PolicyWarning{
			Code: "base_discount_above_tier",
			Message: fmt.Sprintf("Desconto de %.2f%% no casco excede o limite de %.0f%% do seu perfil e exigirá aprovação",
				basePct, s.pricingCfg.MaxDiscountForTier(tier)),
		})
	}
	if s.pricingCfg.NeedsApproval(optionsPct, tier) {
		warnings = append(warnings, domain.PolicyWarning{
			Code: "options_discount_above_tier",
			Message: fmt.Sprintf("Desconto de %.2f%% em opcionais excede o limite de %.0f%% do seu perfil e exigirá aprovação",
				optionsPct, s.pricingCfg.MaxDiscountForTier(tier)),
		})
	}
	return warnings
}

// quoteInput assembles the pricing input from the stored model and items
func quoteInput(model *domain.YachtModel, items []domain.QuotationItem, basePct, optionsPct float64) pricing.QuoteInput {
	in := pricing.QuoteInput{
		BasePrice:          model.BasePrice,
		BaseDeliveryDays:   model.BaseDeliveryDays,
		BaseDiscountPct:    basePct,
		OptionsDiscountPct: optionsPct,
	}
	for i := range items {
		item := &items[i]
		switch item.Kind {
		case domain.QuotationItemOption:
			in.Options = append(in.Options, pricing.OptionLine{
				Name:               item.Name,
				UnitPrice:          item.UnitPrice,
				Quantity:           item.Quantity,
				DeliveryImpactDays: item.DeliveryImpactDays,
			})
		case domain.QuotationItemUpgrade:
			in.Upgrades = append(in.Upgrades, pricing.UpgradeLine{
				Name:               item.Name,
				Price:              item.UnitPrice * item.Quantity,
				DeliveryImpactDays: item.DeliveryImpactDays,
			})
		}
	}
	return in
}

func quotationLabel(q *domain.Quotation) string {
	if q.Number != "" {
		return q.Number
	}
	return q.ID.String()
}

func (s *QuotationService) logActivity(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: targetType,
		TargetID:   targetID,
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
