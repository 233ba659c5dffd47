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

// ReplacementConflictError carries the conflict disclosures back to the
// handler so the operator can acknowledge them and retry.
type ReplacementConflictError struct {
	Conflicts []pricing.ReplacementConflict
}

func (e *ReplacementConflictError) Error() string {
	return fmt.Sprintf("%d unacknowledged replacement conflict(s)", len(e.Conflicts))
}

func (e *ReplacementConflictError) Unwrap() error {
	return ErrReplacementConflict
}

// AmendmentService handles the ATO lifecycle: creation with per-contract
// numbering, replacement-conflict detection, scope edits and cancellation.
// Workflow transitions live in amendment_lifecycle_service.go; per-item
// review lives in item_review_service.go.
type AmendmentService struct {
	amendmentRepo *repository.AmendmentRepository
	itemRepo      *repository.ConfiguredItemRepository
	contractRepo  *repository.ContractRepository
	catalogRepo   *repository.CatalogRepository
	activityRepo  *repository.ActivityRepository
	numberSeq     *NumberSequenceService
	notifications *NotificationService
	pricingCfg    pricing.Config
	logger        *zap.Logger
}

func NewAmendmentService(
	amendmentRepo *repository.AmendmentRepository,
	itemRepo *repository.ConfiguredItemRepository,
	contractRepo *repository.ContractRepository,
	catalogRepo *repository.CatalogRepository,
	activityRepo *repository.ActivityRepository,
	numberSeq *NumberSequenceService,
	notifications *NotificationService,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *AmendmentService {
	return &AmendmentService{
		amendmentRepo: amendmentRepo,
		itemRepo:      itemRepo,
		contractRepo:  contractRepo,
		catalogRepo:   catalogRepo,
		activityRepo:  activityRepo,
		numberSeq:     numberSeq,
		notifications: notifications,
		pricingCfg:    pricingCfg,
		logger:        logger,
	}
}

// Create creates a new amendment on an active contract. The per-contract
// sequence number is drawn atomically; upgrade items are checked for slot
// collisions against the contract configuration and any unacknowledged
// conflict aborts the create with its disclosures.
func (s *AmendmentService) Create(ctx context.Context, req *domain.CreateAmendmentRequest) (*domain.AmendmentDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, req.ContractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	if contract.Status != domain.ContractStatusActive {
		return nil, fmt.Errorf("%w: contract %s is %s", ErrInvalidInput, contract.Number, contract.Status)
	}

	items, conflicts, err := s.buildItems(ctx, contract, req.Items, req.AcknowledgedConflicts)
	if err != nil {
		return nil, err
	}
	if len(conflicts) > 0 {
		return nil, &ReplacementConflictError{Conflicts: conflicts}
	}

	seq, number, err := s.numberSeq.NextAmendmentNumber(ctx, contract.Number)
	if err != nil {
		return nil, err
	}

	amendment := &domain.Amendment{
		ContractID:         contract.ID,
		SequenceNumber:     seq,
		Number:             number,
		Title:              req.Title,
		Description:        req.Description,
		DiscountPercentage: req.DiscountPercentage,
		DiscountAmount:     req.DiscountAmount,
		AssigneeID:         req.AssigneeID,
		Items:              items,
	}
	amendment.Apply(domain.StateInPMReview)
	recomputeImpacts(amendment)

	if userCtx, ok := auth.FromContext(ctx); ok {
		amendment.CreatedByID = userCtx.UserID
		amendment.CreatedByName = userCtx.DisplayName
	}

	if err := s.amendmentRepo.Create(ctx, amendment); err != nil {
		return nil, fmt.Errorf("failed to create amendment: %w", err)
	}

	// Reload with relations
	amendment, err = s.amendmentRepo.GetByID(ctx, amendment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, amendment.Number, "ATO criado",
		fmt.Sprintf("O aditivo '%s' (%s) foi criado no contrato %s", amendment.Title, amendment.Number, contract.Number))

	if amendment.AssigneeID != "" {
		s.notifications.Notify(ctx, amendment.AssigneeID, domain.NotificationAmendmentAssigned,
			"ATO atribuído para análise",
			fmt.Sprintf("O aditivo %s aguarda sua análise técnica", amendment.Number),
			"Amendment", &amendment.ID)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// GetByID retrieves an amendment with items, materials and workflow history
func (s *AmendmentService) GetByID(ctx context.Context, id uuid.UUID) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// List returns amendments with optional contract/status/assignee filters
func (s *AmendmentService) List(ctx context.Context, page, pageSize int, contractID *uuid.UUID, status *domain.AmendmentStatus, workflowStatus *domain.WorkflowStatus, assigneeID string, sort repository.SortConfig) ([]domain.AmendmentDTO, int64, error) {
	amendments, total, err := s.amendmentRepo.List(ctx, page, pageSize, contractID, status, workflowStatus, assigneeID, sort)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list amendments: %w", err)
	}

	dtos := make([]domain.AmendmentDTO, len(amendments))
	for i := range amendments {
		dtos[i] = mapper.ToAmendmentDTO(&amendments[i])
	}

	return dtos, total, nil
}

// Update edits an amendment. Changing its scope (description, raw impacts)
// after review has started sends it back to PM review with all item reviews
// cleared. An edit that leaves a reviewed amendment carrying a discount above
// the commercial threshold escalates it to commercial approval on the spot;
// the scope reset wins when both happen in the same edit.
func (s *AmendmentService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateAmendmentRequest) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if state.IsTerminal() {
		return nil, ErrAmendmentTerminal
	}
	if state == domain.StateSentToClient {
		return nil, fmt.Errorf("%w: amendment already sent to client", ErrInvalidTransition)
	}
	if amendment.IsLegacy() {
		return nil, ErrLegacyAmendment
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if userCtx.UserID != amendment.CreatedByID && !userCtx.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	scopeChanged := false
	if req.Title != nil {
		amendment.Title = *req.Title
	}
	if req.Description != nil && *req.Description != amendment.Description {
		amendment.Description = *req.Description
		scopeChanged = true
	}
	if req.PriceImpact != nil && *req.PriceImpact != amendment.PriceImpact {
		amendment.PriceImpact = *req.PriceImpact
		scopeChanged = true
	}
	if req.DeliveryDaysImpact != nil && *req.DeliveryDaysImpact != amendment.DeliveryDaysImpact {
		amendment.DeliveryDaysImpact = *req.DeliveryDaysImpact
		scopeChanged = true
	}
	if req.DiscountPercentage != nil {
		amendment.DiscountPercentage = *req.DiscountPercentage
	}
	if req.DiscountAmount != nil {
		amendment.DiscountAmount = *req.DiscountAmount
	}
	if req.AssigneeID != nil {
		amendment.AssigneeID = *req.AssigneeID
	}

	amendment.UpdatedByID = userCtx.UserID
	amendment.UpdatedByName = userCtx.DisplayName

	if scopeChanged && state != domain.StateInPMReview {
		// A scope edit invalidates all technical review done so far
		amendment.Apply(domain.StateInPMReview)
		if err := s.itemRepo.ResetReviews(ctx, amendment.ID); err != nil {
			return nil, fmt.Errorf("failed to reset item reviews: %w", err)
		}

		step := s.newStep(ctx, domain.PhasePMReview, domain.StepStatusPending,
			"Escopo alterado; nova análise técnica necessária")
		if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
			return nil, fmt.Errorf("failed to update amendment: %w", err)
		}

		s.logActivity(ctx, amendment.ID, amendment.Number, "Escopo alterado",
			fmt.Sprintf("O aditivo %s voltou para análise técnica após alteração de escopo", amendment.Number))
	} else if state == domain.StateTechnicalComplete && s.pricingCfg.RequiresCommercialApproval(amendment.DiscountPercentage) {
		// Discount above the threshold on a reviewed amendment goes straight
		// to commercial approval
		amendment.Apply(domain.StatePendingApproval)

		step := s.newStep(ctx, domain.PhaseCommercialApproval, domain.StepStatusPending,
			fmt.Sprintf("Desconto de %.2f%% acima do limite de %.0f%%; aprovação comercial necessária",
				amendment.DiscountPercentage, s.pricingCfg.AmendmentApprovalThreshold))
		if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
			return nil, fmt.Errorf("failed to update amendment: %w", err)
		}

		s.logActivity(ctx, amendment.ID, amendment.Number, "Desconto escalado",
			fmt.Sprintf("O aditivo %s aguarda aprovação comercial (desconto de %.2f%%)",
				amendment.Number, amendment.DiscountPercentage))

		message := fmt.Sprintf("O aditivo %s tem desconto de %.2f%% e aguarda sua aprovação",
			amendment.Number, amendment.DiscountPercentage)
		s.notifications.NotifyRole(ctx, domain.RoleDiretorComercial, domain.NotificationDiscountEscalated,
			"Desconto aguardando aprovação", message, "Amendment", &amendment.ID)
		s.notifications.NotifyRole(ctx, domain.RoleGerenteComercial, domain.NotificationDiscountEscalated,
			"Desconto aguardando aprovação", message, "Amendment", &amendment.ID)
	} else {
		if err := s.amendmentRepo.Update(ctx, amendment); err != nil {
			return nil, fmt.Errorf("failed to update amendment: %w", err)
		}

		s.logActivity(ctx, amendment.ID, amendment.Number, "ATO atualizado",
			fmt.Sprintf("O aditivo %s foi atualizado", amendment.Number))
	}

	// Reload with relations
	amendment, err = s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// Delete removes an amendment still in technical review. Only an
// administrator may delete.
func (s *AmendmentService) Delete(ctx context.Context, id uuid.UUID) error {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if state != domain.StateInPMReview && state != domain.StateNeedsRevision {
		return fmt.Errorf("%w: amendment past technical review cannot be deleted, cancel it instead", ErrInvalidTransition)
	}

	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUnauthorized
	}
	if !userCtx.IsAdmin() {
		return ErrPermissionDenied
	}

	if err := s.amendmentRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete amendment: %w", err)
	}

	// Log against the contract since the amendment row is gone
	activity := &domain.Activity{
		TargetType:  domain.ActivityTargetContract,
		TargetID:    amendment.ContractID,
		Title:       "ATO excluído",
		Body:        fmt.Sprintf("O aditivo %s foi excluído", amendment.Number),
		OccurredAt:  time.Now(),
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.String("amendmentNumber", amendment.Number), zap.Error(err))
	}

	return nil
}

// Cancel cancels an amendment from any non-terminal state. Cancellation is
// reserved for administrators and the commercial leadership roles.
func (s *AmendmentService) Cancel(ctx context.Context, id uuid.UUID, req *domain.CancelAmendmentRequest) (*domain.AmendmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.CanApproveDiscounts() {
		return nil, ErrPermissionDenied
	}

	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if !domain.CanTransition(state, domain.StateCancelled) {
		if state.IsTerminal() {
			return nil, ErrAmendmentTerminal
		}
		return nil, fmt.Errorf("%w: %s -> cancelled", ErrInvalidTransition, state)
	}

	now := time.Now()
	amendment.Apply(domain.StateCancelled)
	amendment.CancelledAt = &now

	notes := req.Reason
	if notes == "" {
		notes = "Cancelado"
	}
	step := s.newStep(ctx, domain.PhaseCancellation, domain.StepStatusCompleted, notes)
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to cancel amendment: %w", err)
	}

	activityBody := fmt.Sprintf("O aditivo %s foi cancelado", amendment.Number)
	if req.Reason != "" {
		activityBody = fmt.Sprintf("%s. Motivo: %s", activityBody, req.Reason)
	}
	s.logActivity(ctx, amendment.ID, amendment.Number, "ATO cancelado", activityBody)

	amendment, err = s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// Reverse creates a compensating amendment that undoes an approved one.
// Approved amendments are immutable; the reversal is a new ATO carrying
// the negated price impact and flows through the normal workflow.
func (s *AmendmentService) Reverse(ctx context.Context, id uuid.UUID, req *domain.CreateAmendmentRequest) (*domain.AmendmentDTO, error) {
	source, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := source.StateOf()
	if state != domain.StateApproved && state != domain.StateLegacyApproved {
		return nil, fmt.Errorf("%w: only approved amendments can be reversed", ErrInvalidTransition)
	}

	contract, err := s.contractRepo.GetByID(ctx, source.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	seq, number, err := s.numberSeq.NextAmendmentNumber(ctx, contract.Number)
	if err != nil {
		return nil, err
	}

	title := fmt.Sprintf("Estorno de %s", source.Number)
	if req != nil && req.Title != "" {
		title = req.Title
	}

	reversal := &domain.Amendment{
		ContractID:     contract.ID,
		SequenceNumber: seq,
		Number:         number,
		Title:          title,
		Description:    fmt.Sprintf("Estorno do aditivo %s: %s", source.Number, source.Title),
		ReversalOfID:   &source.ID,
		Items: []domain.ConfiguredItem{
			{
				ItemType:           domain.ItemTypeAtoItem,
				Name:               title,
				OriginalPrice:      -source.EffectivePriceImpact(),
				Price:              -source.EffectivePriceImpact(),
				Quantity:           1,
				DeliveryImpactDays: 0,
			},
		},
	}
	reversal.Apply(domain.StateInPMReview)
	recomputeImpacts(reversal)

	if userCtx, ok := auth.FromContext(ctx); ok {
		reversal.CreatedByID = userCtx.UserID
		reversal.CreatedByName = userCtx.DisplayName
	}

	if err := s.amendmentRepo.Create(ctx, reversal); err != nil {
		return nil, fmt.Errorf("failed to create reversal amendment: %w", err)
	}

	s.logActivity(ctx, reversal.ID, reversal.Number, "Estorno criado",
		fmt.Sprintf("O aditivo %s foi criado para estornar %s", reversal.Number, source.Number))

	reversal, err = s.amendmentRepo.GetByID(ctx, reversal.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(reversal)
	return &dto, nil
}

// ReopenLegacy pulls an approved amendment imported from the old ERP back
// into the structured workflow so it can be re-negotiated. Restricted to
// administrators and commercial approvers.
func (s *AmendmentService) ReopenLegacy(ctx context.Context, id uuid.UUID) (*domain.AmendmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.CanApproveDiscounts() {
		return nil, ErrPermissionDenied
	}

	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if state != domain.StateLegacyApproved {
		return nil, fmt.Errorf("%w: only legacy approved amendments can be reopened", ErrInvalidTransition)
	}

	amendment.Apply(domain.StateTechnicalComplete)
	amendment.ApprovedAt = nil

	step := s.newStep(ctx, domain.PhasePMReview, domain.StepStatusCompleted,
		"Aditivo legado reaberto para o fluxo estruturado")
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to reopen amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, amendment.Number, "ATO legado reaberto",
		fmt.Sprintf("O aditivo legado %s foi reaberto para renegociação", amendment.Number))

	amendment, err = s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// buildItems materializes request items, resolving catalog references and
// detecting slot collisions for upgrade items. Collisions whose existing
// upgrade ID is listed in acknowledged are priced as deltas; the rest are
// returned as conflicts.
func (s *AmendmentService) buildItems(ctx context.Context, contract *domain.Contract, reqs []domain.CreateConfiguredItemRequest, acknowledged []uuid.UUID) ([]domain.ConfiguredItem, []pricing.ReplacementConflict, error) {
	ackSet := make(map[uuid.UUID]bool, len(acknowledged))
	for _, id := range acknowledged {
		ackSet[id] = true
	}

	var conflicts []pricing.ReplacementConflict
	items := make([]domain.ConfiguredItem, 0, len(reqs))

	for _, req := range reqs {
		if !req.ItemType.IsValid() {
			return nil, nil, fmt.Errorf("%w: invalid item type %q", ErrInvalidInput, req.ItemType)
		}

		quantity := req.Quantity
		if quantity == 0 {
			quantity = 1
		}

		item := domain.ConfiguredItem{
			ItemType:           req.ItemType,
			Name:               req.Name,
			Description:        req.Description,
			OptionItemID:       req.OptionItemID,
			UpgradeID:          req.UpgradeID,
			MemorialItemID:     req.MemorialItemID,
			OriginalPrice:      req.Price,
			Price:              req.Price,
			DiscountPercentage: req.DiscountPercentage,
			Quantity:           quantity,
			DeliveryImpactDays: req.DeliveryImpactDays,
		}

		switch req.ItemType {
		case domain.ItemTypeOption:
			if req.OptionItemID != nil {
				option, err := s.catalogRepo.GetOption(ctx, *req.OptionItemID)
				if err != nil {
					return nil, nil, fmt.Errorf("%w: option %s", ErrNotFound, *req.OptionItemID)
				}
				item.Name = option.Name
				item.OriginalPrice = option.UnitPrice
				item.Price = option.UnitPrice
				item.DeliveryImpactDays = option.DeliveryImpactDays
			}

		case domain.ItemTypeUpgrade:
			if req.UpgradeID == nil {
				return nil, nil, fmt.Errorf("%w: upgrade item requires upgradeId", ErrInvalidInput)
			}
			upgrade, err := s.catalogRepo.GetUpgrade(ctx, *req.UpgradeID)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: upgrade %s", ErrNotFound, *req.UpgradeID)
			}
			item.Name = upgrade.Name
			item.OriginalPrice = upgrade.Price
			item.Price = upgrade.Price
			item.DeliveryImpactDays = upgrade.DeliveryImpactDays
			item.MemorialItemID = &upgrade.MemorialItemID

			existing, err := s.contractRepo.GetUpgradeForSlot(ctx, contract.ID, upgrade.MemorialItemID)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to check slot occupancy: %w", err)
			}
			if existing != nil && existing.UpgradeID != upgrade.ID {
				existingName := ""
				if existing.Upgrade != nil {
					existingName = existing.Upgrade.Name
				}
				source := s.replacementSource(ctx, contract.ID, existing.UpgradeID)
				conflict := pricing.NewReplacementConflict(
					existing.UpgradeID, existingName, existing.Price,
					source, upgrade.Name, upgrade.Price, quantity)
				if !ackSet[existing.UpgradeID] {
					conflicts = append(conflicts, conflict)
					continue
				}
				// Acknowledged: the amendment charges only the delta; the
				// gross price is kept for struck-through display.
				item.ReplacesUpgradeID = &existing.UpgradeID
				item.ReplacesUpgradeName = existingName
				item.ReplacesUpgradePrice = existing.Price
				item.ReplacementDelta = conflict.Delta
				item.ReplacementSource = source
				item.Price = conflict.Delta
			}
		}

		items = append(items, item)
	}

	return items, conflicts, nil
}

// replacementSource names where the occupying upgrade came from: the number
// of the approved amendment that installed it, or "contract" when it was
// part of the original configuration.
func (s *AmendmentService) replacementSource(ctx context.Context, contractID, upgradeID uuid.UUID) string {
	approved, err := s.contractRepo.ListApprovedAmendments(ctx, contractID)
	if err != nil {
		s.logger.Warn("failed to resolve replacement source", zap.Error(err))
		return "contract"
	}
	for i := range approved {
		for j := range approved[i].Items {
			item := &approved[i].Items[j]
			if item.UpgradeID != nil && *item.UpgradeID == upgradeID && item.ReviewStatus == domain.ItemReviewApproved {
				return approved[i].Number
			}
		}
	}
	return "contract"
}

// recomputeImpacts rebuilds the amendment's aggregate price and delivery
// impacts from its items. Rejected items do not count; delivery impacts
// never sum, the longest lead wins.
func recomputeImpacts(a *domain.Amendment) {
	total := 0.0
	maxDelivery := 0
	for i := range a.Items {
		item := &a.Items[i]
		if item.ReviewStatus == domain.ItemReviewRejected {
			continue
		}
		if item.IsReplacement() {
			// Price already carries the full-quantity delta
			total += item.Price
		} else {
			total += item.Price * item.Quantity
		}
		if item.DeliveryImpactDays > maxDelivery {
			maxDelivery = item.DeliveryImpactDays
		}
	}
	a.PriceImpact = total
	a.DeliveryDaysImpact = maxDelivery
}

// newStep builds a workflow step stamped with the acting user
func (s *AmendmentService) newStep(ctx context.Context, phase domain.WorkflowPhase, status domain.StepStatus, notes string) *domain.WorkflowStep {
	step := &domain.WorkflowStep{
		Phase:       phase,
		Status:      status,
		Notes:       notes,
		PerformedAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		step.PerformedByID = userCtx.UserID
		step.PerformedByName = userCtx.DisplayName
	}
	return step
}

// logActivity creates an activity log entry for an amendment
func (s *AmendmentService) logActivity(ctx context.Context, amendmentID uuid.UUID, amendmentNumber, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetAmendment,
		TargetID:   amendmentID,
		Title:      title,
		Body:       body,
		OccurredAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID
		activity.CreatorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity",
			zap.String("amendmentNumber", amendmentNumber),
			zap.Error(err))
	}
}
