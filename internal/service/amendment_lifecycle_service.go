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

// AmendmentLifecycleService drives the commercial half of the ATO workflow:
// discount escalation, commercial approval, transmission to the client and
// the client's decision. The technical half lives in ItemReviewService.
type AmendmentLifecycleService struct {
	amendmentRepo *repository.AmendmentRepository
	stepRepo      *repository.WorkflowStepRepository
	contractRepo  *repository.ContractRepository
	activityRepo  *repository.ActivityRepository
	notifications *NotificationService
	pricingCfg    pricing.Config
	logger        *zap.Logger
}

func NewAmendmentLifecycleService(
	amendmentRepo *repository.AmendmentRepository,
	stepRepo *repository.WorkflowStepRepository,
	contractRepo *repository.ContractRepository,
	activityRepo *repository.ActivityRepository,
	notifications *NotificationService,
	pricingCfg pricing.Config,
	logger *zap.Logger,
) *AmendmentLifecycleService {
	return &AmendmentLifecycleService{
		amendmentRepo: amendmentRepo,
		stepRepo:      stepRepo,
		contractRepo:  contractRepo,
		activityRepo:  activityRepo,
		notifications: notifications,
		pricingCfg:    pricingCfg,
		logger:        logger,
	}
}

// SendToClient transmits a technically complete amendment to the client.
// A discount above the approval threshold stops the send unless a commercial
// approver already cleared it (or is the one sending): in that case the
// amendment escalates to pending approval and the approvers are notified.
func (s *AmendmentLifecycleService) SendToClient(ctx context.Context, id uuid.UUID, req *domain.SendToClientRequest) (*domain.AmendmentDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUnauthorized
	}

	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if !domain.CanTransition(state, domain.StateSentToClient) {
		if state.IsTerminal() {
			return nil, ErrAmendmentTerminal
		}
		return nil, fmt.Errorf("%w: %s -> sent_to_client", ErrInvalidTransition, state)
	}

	if err := s.checkItemsSendable(amendment); err != nil {
		return nil, err
	}

	if amendment.DiscountPercentage > s.pricingCfg.AbsoluteDiscountCeiling {
		return nil, fmt.Errorf("%w: %.2f%% exceeds the %.0f%% ceiling",
			ErrDiscountCeiling, amendment.DiscountPercentage, s.pricingCfg.AbsoluteDiscountCeiling)
	}

	if s.pricingCfg.RequiresCommercialApproval(amendment.DiscountPercentage) &&
		!userCtx.CanApproveDiscounts() && !s.commerciallyCleared(ctx, amendment) {
		if state == domain.StatePendingApproval {
			// Already escalated, still waiting on an approver
			return nil, ErrDiscountRequiresApproval
		}
		return s.escalate(ctx, amendment)
	}

	now := time.Now()
	amendment.Apply(domain.StateSentToClient)
	amendment.SentAt = &now
	s.computeFinalImpact(amendment)

	notes := req.Notes
	if notes == "" {
		notes = "ATO enviado ao cliente; aguardando resposta"
	}
	step := s.newStep(ctx, domain.PhaseClientResponse, domain.StepStatusPending, notes)
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to send amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "ATO enviado",
		fmt.Sprintf("O aditivo %s foi enviado ao cliente (valor final: R$ %.2f)",
			amendment.Number, amendment.FinalPriceImpact))

	if amendment.CreatedByID != "" && amendment.CreatedByID != userCtx.UserID {
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentSent,
			"ATO enviado ao cliente",
			fmt.Sprintf("O aditivo %s foi enviado ao cliente", amendment.Number),
			"Amendment", &amendment.ID)
	}

	return s.reload(ctx, id)
}

// ApproveCommercial clears the discount gate on an escalated amendment,
// returning it to ready-to-send. Only commercial approvers may call it.
func (s *AmendmentLifecycleService) ApproveCommercial(ctx context.Context, id uuid.UUID, req *domain.CommercialApprovalRequest) (*domain.AmendmentDTO, error) {
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

	if amendment.StateOf() != domain.StatePendingApproval {
		return nil, fmt.Errorf("%w: amendment is not pending commercial approval", ErrInvalidTransition)
	}

	amendment.Apply(domain.StateTechnicalComplete)

	notes := req.Notes
	if notes == "" {
		notes = fmt.Sprintf("Desconto de %.2f%% aprovado", amendment.DiscountPercentage)
	}
	step := s.newStep(ctx, domain.PhaseCommercialApproval, domain.StepStatusCompleted, notes)
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to approve amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "Desconto aprovado",
		fmt.Sprintf("O desconto de %.2f%% do aditivo %s foi aprovado por %s",
			amendment.DiscountPercentage, amendment.Number, userCtx.DisplayName))

	if amendment.CreatedByID != "" && amendment.CreatedByID != userCtx.UserID {
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentApproved,
			"Desconto aprovado",
			fmt.Sprintf("O desconto do aditivo %s foi aprovado; ele pode ser enviado ao cliente", amendment.Number),
			"Amendment", &amendment.ID)
	}

	return s.reload(ctx, id)
}

// RecordClientResponse records the client's accept/reject decision on a sent
// amendment. Acceptance recomputes the contract's consolidated totals and
// slot occupancy in the same transaction; a failure anywhere leaves the
// contract untouched.
func (s *AmendmentLifecycleService) RecordClientResponse(ctx context.Context, id uuid.UUID, req *domain.ClientResponseRequest) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	state := amendment.StateOf()
	if state != domain.StateSentToClient {
		if state.IsTerminal() {
			return nil, ErrAmendmentTerminal
		}
		return nil, fmt.Errorf("%w: amendment was not sent to the client", ErrInvalidTransition)
	}

	now := time.Now()
	amendment.ClientResponse = req.Notes

	if !req.Accepted {
		if req.Notes == "" {
			return nil, fmt.Errorf("%w: client rejection requires a reason", ErrInvalidInput)
		}
		amendment.Apply(domain.StateRejected)
		amendment.RejectedAt = &now

		step := s.newStep(ctx, domain.PhaseClientResponse, domain.StepStatusRejected, req.Notes)
		if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
			return nil, fmt.Errorf("failed to record rejection: %w", err)
		}

		s.logActivity(ctx, amendment.ID, "ATO recusado",
			fmt.Sprintf("O cliente recusou o aditivo %s. Motivo: %s", amendment.Number, req.Notes))
		if amendment.CreatedByID != "" {
			s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentRejected,
				"ATO recusado pelo cliente",
				fmt.Sprintf("O cliente recusou o aditivo %s", amendment.Number),
				"Amendment", &amendment.ID)
		}

		return s.reload(ctx, id)
	}

	amendment.Apply(domain.StateApproved)
	amendment.ApprovedAt = &now

	contract, err := s.contractRepo.GetByID(ctx, amendment.ContractID)
	if err != nil {
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	impact, err := s.consolidateWith(ctx, contract, amendment)
	if err != nil {
		return nil, err
	}
	contract.TotalPrice = pricing.Round2(impact.TotalPrice)
	contract.TotalDeliveryDays = impact.TotalDeliveryDays

	occupy, vacate := slotChanges(amendment)

	notes := req.Notes
	if notes == "" {
		notes = "ATO aceito pelo cliente"
	}
	step := s.newStep(ctx, domain.PhaseClientResponse, domain.StepStatusCompleted, notes)
	if err := s.amendmentRepo.SaveWithStepAndContract(ctx, amendment, step, contract, occupy, vacate); err != nil {
		return nil, fmt.Errorf("failed to record acceptance: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "ATO aprovado",
		fmt.Sprintf("O cliente aceitou o aditivo %s. Novo total do contrato: R$ %.2f",
			amendment.Number, contract.TotalPrice))
	if amendment.CreatedByID != "" {
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationAmendmentApproved,
			"ATO aprovado pelo cliente",
			fmt.Sprintf("O cliente aceitou o aditivo %s", amendment.Number),
			"Amendment", &amendment.ID)
	}

	return s.reload(ctx, id)
}

// NotifyOverdueResponses notifies the creator of every amendment that has
// been with the client longer than the given age without a response. The
// sweep never mutates workflow state; a sent amendment waits for the client
// indefinitely.
func (s *AmendmentLifecycleService) NotifyOverdueResponses(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	amendments, err := s.amendmentRepo.ListSentBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list overdue amendments: %w", err)
	}

	notified := 0
	for i := range amendments {
		amendment := &amendments[i]
		days := int(time.Since(*amendment.SentAt).Hours() / 24)
		s.notifications.Notify(ctx, amendment.CreatedByID, domain.NotificationResponseOverdue,
			"Resposta do cliente pendente",
			fmt.Sprintf("O aditivo %s foi enviado há %d dias e ainda não teve resposta", amendment.Number, days),
			"Amendment", &amendment.ID)
		notified++
	}

	if notified > 0 {
		s.logger.Info("notified overdue client responses",
			zap.Int("count", notified),
			zap.Duration("older_than", olderThan))
	}
	return notified, nil
}

// escalate moves an amendment whose discount exceeds the threshold into
// pending commercial approval and notifies every approver.
func (s *AmendmentLifecycleService) escalate(ctx context.Context, amendment *domain.Amendment) (*domain.AmendmentDTO, error) {
	amendment.Apply(domain.StatePendingApproval)

	step := s.newStep(ctx, domain.PhaseCommercialApproval, domain.StepStatusPending,
		fmt.Sprintf("Desconto de %.2f%% acima do limite de %.0f%%; aprovação comercial necessária",
			amendment.DiscountPercentage, s.pricingCfg.AmendmentApprovalThreshold))
	if err := s.amendmentRepo.SaveWithStep(ctx, amendment, step); err != nil {
		return nil, fmt.Errorf("failed to escalate amendment: %w", err)
	}

	s.logActivity(ctx, amendment.ID, "Desconto escalado",
		fmt.Sprintf("O aditivo %s aguarda aprovação comercial (desconto de %.2f%%)",
			amendment.Number, amendment.DiscountPercentage))

	message := fmt.Sprintf("O aditivo %s tem desconto de %.2f%% e aguarda sua aprovação",
		amendment.Number, amendment.DiscountPercentage)
	s.notifications.NotifyRole(ctx, domain.RoleDiretorComercial, domain.NotificationDiscountEscalated,
		"Desconto aguardando aprovação", message, "Amendment", &amendment.ID)
	s.notifications.NotifyRole(ctx, domain.RoleGerenteComercial, domain.NotificationDiscountEscalated,
		"Desconto aguardando aprovação", message, "Amendment", &amendment.ID)

	return s.reload(ctx, amendment.ID)
}

// commerciallyCleared reports whether a commercial approver already cleared
// this amendment's discount. A clearance older than the latest technical
// review step is stale: scope changes reset the review and the gate with it.
func (s *AmendmentLifecycleService) commerciallyCleared(ctx context.Context, amendment *domain.Amendment) bool {
	approval, err := s.stepRepo.LatestByPhase(ctx, amendment.ID, domain.PhaseCommercialApproval)
	if err != nil || approval == nil || approval.Status != domain.StepStatusCompleted {
		return false
	}
	review, err := s.stepRepo.LatestByPhase(ctx, amendment.ID, domain.PhasePMReview)
	if err == nil && review != nil && review.PerformedAt.After(approval.PerformedAt) {
		return false
	}
	return true
}

// checkItemsSendable verifies the item reviews allow transmission: every
// item resolved, at least one approved. Item-less amendments (reversals,
// reopened legacy records) pass.
func (s *AmendmentLifecycleService) checkItemsSendable(amendment *domain.Amendment) error {
	if len(amendment.Items) == 0 {
		return nil
	}
	anyApproved := false
	for i := range amendment.Items {
		switch amendment.Items[i].ReviewStatus {
		case domain.ItemReviewPending:
			return ErrItemsUnresolved
		case domain.ItemReviewApproved:
			anyApproved = true
		}
	}
	if !anyApproved {
		return ErrNoApprovedItems
	}
	return nil
}

// computeFinalImpact freezes the client-facing price at send time
func (s *AmendmentLifecycleService) computeFinalImpact(amendment *domain.Amendment) {
	discount := amendment.DiscountAmount
	if discount == 0 && amendment.DiscountPercentage > 0 {
		discount = amendment.PriceImpact * amendment.DiscountPercentage / 100
	}
	amendment.DiscountAmount = pricing.Round2(discount)
	amendment.FinalPriceImpact = pricing.Round2(amendment.PriceImpact - discount)
}

// consolidateWith folds the already approved amendments plus the one being
// accepted into the contract's consolidated totals.
func (s *AmendmentLifecycleService) consolidateWith(ctx context.Context, contract *domain.Contract, accepted *domain.Amendment) (pricing.ConsolidatedImpact, error) {
	approved, err := s.contractRepo.ListApprovedAmendments(ctx, contract.ID)
	if err != nil {
		return pricing.ConsolidatedImpact{}, fmt.Errorf("failed to list approved amendments: %w", err)
	}

	impacts := make([]pricing.ApprovedImpact, 0, len(approved)+1)
	for i := range approved {
		if approved[i].ID == accepted.ID {
			continue
		}
		impacts = append(impacts, approvedImpactOf(&approved[i]))
	}
	impacts = append(impacts, approvedImpactOf(accepted))

	return pricing.ConsolidateImpacts(contract.BasePrice, contract.BaseDeliveryDays, impacts), nil
}

// approvedImpactOf converts an amendment into its consolidation entry. The
// gross impact adds back the superseded-upgrade prices that replacement
// deltas subtracted, so audit views can show the uncorrected figure.
func approvedImpactOf(a *domain.Amendment) pricing.ApprovedImpact {
	effective := a.EffectivePriceImpact()
	correction := 0.0
	for i := range a.Items {
		item := &a.Items[i]
		if item.IsReplacement() && item.ReviewStatus != domain.ItemReviewRejected {
			correction += item.ReplacesUpgradePrice
		}
	}
	return pricing.ApprovedImpact{
		Number:               a.Number,
		EffectivePriceImpact: effective,
		GrossPriceImpact:     effective + correction,
		DeliveryDays:         a.DeliveryDaysImpact,
	}
}

// slotChanges derives the contract-configuration changes an accepted
// amendment carries: every approved upgrade item takes over its memorial
// slot, vacating whatever occupied it.
func slotChanges(a *domain.Amendment) ([]domain.ContractUpgrade, []uuid.UUID) {
	var occupy []domain.ContractUpgrade
	var vacate []uuid.UUID
	for i := range a.Items {
		item := &a.Items[i]
		if item.ItemType != domain.ItemTypeUpgrade || item.ReviewStatus != domain.ItemReviewApproved {
			continue
		}
		if item.UpgradeID == nil || item.MemorialItemID == nil {
			continue
		}
		vacate = append(vacate, *item.MemorialItemID)
		occupy = append(occupy, domain.ContractUpgrade{
			MemorialItemID: *item.MemorialItemID,
			UpgradeID:      *item.UpgradeID,
			Price:          item.OriginalPrice * item.Quantity,
		})
	}
	return occupy, vacate
}

func (s *AmendmentLifecycleService) reload(ctx context.Context, id uuid.UUID) (*domain.AmendmentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload amendment: %w", err)
	}
	dto := mapper.ToAmendmentDTO(amendment)
	return &dto, nil
}

func (s *AmendmentLifecycleService) newStep(ctx context.Context, phase domain.WorkflowPhase, status domain.StepStatus, notes string) *domain.WorkflowStep {
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

func (s *AmendmentLifecycleService) logActivity(ctx context.Context, amendmentID uuid.UUID, title, body string) {
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
