package service

import (
	"context"
	"encoding/json"
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

// ItemReviewService is the PM's side of the ATO workflow: per-item technical
// review with cost breakdowns, whole-amendment revision requests and the
// automatic advance to technical-complete once every item is resolved.
type ItemReviewService struct {
	amendmentRepo *repository.AmendmentRepository
	itemRepo      *repository.ConfiguredItemRepository
	activityRepo  *repository.ActivityRepository
	notifications *NotificationService
	pricingCfg    pricing.Config
	logger        *zap.Logger
}

func NewItemReviewService(
	amendmentRepo *repository.AmendmentRepository,
	itemRepo *repository.ConfiguredItemRepository,
	activityRepo *repository.ActivityRepository,
	notifications *NotificationService,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *ItemReviewService {
	return &ItemReviewService{
		amendmentRepo: amendmentRepo,
		itemRepo:      itemRepo,
		activityRepo:  activityRepo,
		notifications: notifications,
		pricingCfg:    pricingCfg,
		logger:        logger,
	}
}

// ResolveItem records the PM's decision on one item. Resolution is one-way:
// a resolved item can only be reviewed again after a revision or scope reset
// clears every review. Rejections require notes; full-analysis items require
// a feasibility answer, and an infeasible item cannot be approved. When the
// last item resolves with at least one approval the amendment advances to
// technical-complete on its own.
func (s *ItemReviewService) ResolveItem(ctx context.Context, amendmentID, itemID uuid.UUID, req *domain.ResolveItemRequest) (*domain.AmendmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.IsEngineeringPM() {
		return nil, ErrPermissionDenied
	}

	amendment, err := s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	if amendment.StateOf() != domain.StateInPMReview {
		return nil, fmt.Errorf("%w: amendment is not in technical review", ErrInvalidTransition)
	}

	item := findItem(amendment, itemID)
	if item == nil {
		return nil, fmt.Errorf("%w: item %s", ErrNotFound, itemID)
	}
	if item.IsResolved() {
		return nil, ErrItemAlreadyResolved
	}

	if req.Outcome == domain.OutcomeRejected && req.Notes == "" {
		return nil, ErrRejectionNeedsNotes
	}

	if item.ItemType.NeedsFullAnalysis() {
		if req.Feasibility == nil || !req.Feasibility.IsValid() {
			return nil, fmt.Errorf("%w: full-analysis items require a feasibility answer", ErrInvalidInput)
		}
		if *req.Feasibility == domain.FeasibilityNo && req.Outcome == domain.OutcomeApproved {
			return nil, fmt.Errorf("%w: an infeasible item cannot be approved", ErrInvalidInput)
		}
		item.Feasibility = req.Feasibility

		materials := make([]pricing.Material, len(req.Materials))
		for i, m := range req.Materials {
			materials[i] = pricing.Material{Name: m.Name, UnitCost: m.UnitCost, Quantity: m.Quantity}
		}
		breakdown := s.pricingCfg.ComputeCostBreakdown(materials, req.LaborHours, req.LaborCostPerHour)
		item.LaborHours = breakdown.LaborHours
		item.LaborCostPerHour = breakdown.LaborCostPerHour
		item.MaterialsCost = pricing.Round2(breakdown.MaterialsCost)
		item.LaborCost = pricing.Round2(breakdown.LaborCost)
		item.TotalCost = pricing.Round2(breakdown.TotalCost)
		item.SuggestedPrice = pricing.Round2(breakdown.SuggestedPrice)

		// Reviewer may override the suggested price; otherwise it becomes
		// the item price.
		if req.Price != nil {
			item.Price = *req.Price
			item.OriginalPrice = *req.Price
		} else {
			item.Price = item.SuggestedPrice
			item.OriginalPrice = item.SuggestedPrice
		}
	} else if req.Price != nil {
		item.Price = *req.Price
	}

	if req.DeliveryImpactDays != nil {
		item.DeliveryImpactDays = *req.DeliveryImpactDays
	}

	now := time.Now()
	item.ReviewStatus = domain.ItemReviewStatus(req.Outcome)
	item.ReviewNotes = req.Notes
	item.ReviewedByID = userCtx.UserID
	item.ReviewedByName = userCtx.DisplayName
	item.ReviewedAt = &now

	itemMaterials := make([]domain.ItemMaterial, len(req.Materials))
	for i, m := range req.Materials {
		itemMaterials[i] = domain.ItemMaterial{Name: m.Name, UnitCost: m.UnitCost, Quantity: m.Quantity}
	}
	if err := s.itemRepo.UpdateWithMaterials(ctx, item, itemMaterials); err != nil {
		return nil, fmt.Errorf("failed to save item review: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "Item analisado",
		fmt.Sprintf("O item '%s' do aditivo %s foi %s", item.Name, amendment.Number, outcomeLabel(req.Outcome)))

	// Reload so the advance decision sees the review just saved
	amendment, err = s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	if err := s.maybeAdvance(ctx, amendment); err != nil {
		return nil, err
	}

	amendment, err = s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}

	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

// RequestRevision rejects the amendment as a whole, sending it back to the
// requester. All item reviews done so far are discarded.
func (s *ItemReviewService) RequestRevision(ctx context.Context, amendmentID uuid.UUID, req *domain.RequestRevisionRequest) (*domain.AmendmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}
	if !userCtx.IsEngineeringPM() {
		return nil, ErrPermissionDenied
	}

	amendment, err := s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if !domain.CanTransition(state, domain.StateNeedsRevision) {
		if state.IsTerminal() {
			return nil, ErrAmendmentTerminal
		}
		return nil, fmt.Errorf("%w: %s -> needs_revision", ErrInvalidTransition, state)
	}

	amendment.Apply(domain.StateNeedsRevision)

	if err := s.itemRepo.ResetReviews(ctx, amendment.ID); err != nil {
		return nil, fmt.Errorf("failed to reset item reviews: %w", err)
	}

	step := s.newStep(ctx, domain.PhasePMReview, domain.StepStatusRejected, req.Reason)
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to request revision: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "Revisão solicitada",
		fmt.Sprintf("A engenharia devolveu o aditivo %s para revisão. Motivo: %s", amendment.Number, req.Reason))

	if amendment.CreatedByID != "" && amendment.CreatedByID != userCtx.UserID {
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentRejected,
			"ATO devolvido para revisão",
			fmt.Sprintf("O aditivo %s precisa de revisão: %s", amendment.Number, req.Reason),
			"Amendment", &amendment.ID)
	}

	return s.reload(ctx, amendmentID)
}

// Resubmit sends a reworked amendment back into technical review
func (s *ItemReviewService) Resubmit(ctx context.Context, amendmentID uuid.UUID) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	if amendment.StateOf() != domain.StateNeedsRevision {
		return nil, fmt.Errorf("%w: only amendments awaiting revision can be resubmitted", ErrInvalidTransition)
	}

	amendment.Apply(domain.StateInPMReview)

	step := s.newStep(ctx, domain.PhasePMReview, domain.StepStatusPending, "Aditivo reenviado para análise técnica")
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to resubmit amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "ATO reenviado",
		fmt.Sprintf("O aditivo %s foi reenviado para análise técnica", amendment.Number))

	if amendment.AssigneeID != "" {
		s.notifications.Notify(ctx, amendment.AssigneeID, domain.NotificationAmendmentAssigned,
			"ATO reenviado para análise",
			fmt.Sprintf("O aditivo %s foi reenviado e aguarda sua análise", amendment.Number),
			"Amendment", &amendment.ID)
	}

	return s.reload(ctx, amendmentID)
}

// Progress returns the review tallies for an amendment
func (s *ItemReviewService) Progress(ctx context.Context, amendmentID uuid.UUID) (*domain.ReviewProgressDTO, error) {
	approved, rejected, pending, err := s.itemRepo.CountByReviewStatus(ctx, amendmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to count item reviews: %w", err)
	}
	total := approved + rejected + pending
	return &domain.ReviewProgressDTO{
		Approved:    approved,
		Rejected:    rejected,
		Pending:     pending,
		Total:       total,
		AllApproved: total > 0 && approved == total,
		AllResolved: pending == 0,
		AnyApproved: approved > 0,
	}, nil
}

// maybeAdvance moves the amendment to technical-complete once every item is
// resolved and at least one was approved. An amendment whose items were all
// rejected stays in review: the PM either rejects it as a whole via
// RequestRevision or the requester cancels it.
func (s *ItemReviewService) maybeAdvance(ctx context.Context, amendment *domain.Amendment) error {
	if len(amendment.Items) == 0 {
		return nil
	}

	approved, rejected := 0, 0
	for i := range amendment.Items {
		switch amendment.Items[i].ReviewStatus {
		case domain.ItemReviewPending:
			return nil
		case domain.ItemReviewApproved:
			approved++
		case domain.ItemReviewRejected:
			rejected++
		}
	}
	if approved == 0 {
		return nil
	}

	amendment.Apply(domain.StateTechnicalComplete)
	s.recomputeFromReviews(amendment)

	response, err := json.Marshal(reviewSummary(amendment, approved, rejected))
	if err != nil {
		return fmt.Errorf("failed to encode review summary: %w", err)
	}

	step := s.newStep(ctx, domain.PhasePMReview, domain.StepStatusCompleted,
		fmt.Sprintf("Análise técnica concluída: %d aprovado(s), %d rejeitado(s)", approved, rejected))
	step.Response = string(response)

	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return fmt.Errorf("failed to complete technical review: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "Análise técnica concluída",
		fmt.Sprintf("O aditivo %s concluiu a análise técnica e aguarda envio ao cliente", amendment.Number))

	if amendment.CreatedByID != "" {
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentApproved,
			"Análise técnica concluída",
			fmt.Sprintf("O aditivo %s está pronto para envio ao cliente", amendment.Number),
			"Amendment", &amendment.ID)
	}

	return nil
}

// recomputeFromReviews rebuilds the aggregate impacts counting approved
// items only. Rejected items stay on the record for audit but stop
// contributing to price and schedule.
func (s *ItemReviewService) recomputeFromReviews(amendment *domain.Amendment) {
	total := 0.0
	maxDelivery := 0
	for i := range amendment.Items {
		item := &amendment.Items[i]
		if item.ReviewStatus != domain.ItemReviewApproved {
			continue
		}
		if item.IsReplacement() {
			total += item.Price
		} else {
			total += item.Price * item.Quantity
		}
		if item.DeliveryImpactDays > maxDelivery {
			maxDelivery = item.DeliveryImpactDays
		}
	}
	amendment.PriceImpact = total
	amendment.DeliveryDaysImpact = maxDelivery
}

// reviewSummary is the structured response stored on the pm_review
// completion step: the full per-item outcome with cost breakdowns.
func reviewSummary(amendment *domain.Amendment, approved, rejected int) map[string]interface{} {
	items := make([]map[string]interface{}, 0, len(amendment.Items))
	for i := range amendment.Items {
		item := &amendment.Items[i]
		entry := map[string]interface{}{
			"itemId":       item.ID,
			"name":         item.Name,
			"reviewStatus": item.ReviewStatus,
			"price":        pricing.Round2(item.Price),
		}
		if item.ItemType.NeedsFullAnalysis() {
			entry["materialsCost"] = item.MaterialsCost
			entry["laborCost"] = item.LaborCost
			entry["totalCost"] = item.TotalCost
			entry["suggestedPrice"] = item.SuggestedPrice
		}
		items = append(items, entry)
	}
	return map[string]interface{}{
		"approved":           approved,
		"rejected":           rejected,
		"priceImpact":        pricing.Round2(amendment.PriceImpact),
		"deliveryDaysImpact": amendment.DeliveryDaysImpact,
		"items":              items,
	}
}

func findItem(amendment *domain.Amendment, itemID uuid.UUID) *domain.ConfiguredItem {
	for i := range amendment.Items {
		if amendment.Items[i].ID == itemID {
			return &amendment.Items[i]
		}
	}
	return nil
}

func outcomeLabel(outcome domain.ItemReviewOutcome) string {
	if outcome == domain.OutcomeApproved {
		return "aprovado"
	}
	return "rejeitado"
}

func (s *ItemReviewService) reload(ctx context.Context, id uuid.UUID) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}
	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

func (s *ItemReviewService) newStep(ctx context.Context, phase domain.WorkflowPhase, status domain.StepStatus, notes string) *domain.WorkflowStep {
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

func (s *ItemReviewService) logActivity(ctx context.Context, amendmentID uuid.UUID, title, body string) {
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
		s.logger.Warn("failed to log activity", zap.Error(err))
	}
}
