package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"github.com/oceanis-yachts/sales-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type workflowTestEnv struct {
	db         *gorm.DB
	amendments *service.AmendmentService
	review     *service.ItemReviewService
	lifecycle  *service.AmendmentLifecycleService
	contract   *domain.Contract
	seq        int
}

func setupWorkflowTest(t *testing.T) *workflowTestEnv {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() {
		testutil.CleanupTestData(t, db)
	})

	logger := zap.NewNop()
	amendmentRepo := repository.NewAmendmentRepository(db)
	itemRepo := repository.NewConfiguredItemRepository(db)
	stepRepo := repository.NewWorkflowStepRepository(db)
	contractRepo := repository.NewContractRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifications := service.NewNotificationService(notificationRepo, userRepo, logger)
	catalogRepo := repository.NewCatalogRepository(db)
	numberSeq := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db), logger)
	cfg := pricing.DefaultConfig()

	client := testutil.CreateTestClient(t, db, "Marina Oliveira")
	model := testutil.CreateTestYachtModel(t, db, "Oceanis 465", 2500000)
	contract := testutil.CreateTestContract(t, db, client, model)

	return &workflowTestEnv{
		db:         db,
		amendments: service.NewAmendmentService(amendmentRepo, itemRepo, contractRepo, catalogRepo, activityRepo, numberSeq, notifications, cfg, logger),
		review:     service.NewItemReviewService(amendmentRepo, itemRepo, activityRepo, notifications, cfg, logger),
		lifecycle:  service.NewAmendmentLifecycleService(amendmentRepo, stepRepo, contractRepo, activityRepo, notifications, cfg, logger),
		contract:   contract,
	}
}

func pmContext(displayName string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.NewString(),
		DisplayName: displayName,
		Email:       "pm@oceanis.com.br",
		Roles:       []string{domain.RolePMEngenharia},
	})
}

func sellerContext(displayName string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.NewString(),
		DisplayName: displayName,
		Email:       "vendas@oceanis.com.br",
		Roles:       []string{domain.RoleVendedor},
	})
}

func directorContext(displayName string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.NewString(),
		DisplayName: displayName,
		Email:       "diretoria@oceanis.com.br",
		Roles:       []string{domain.RoleDiretorComercial},
	})
}

func adminContext(displayName string) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      uuid.NewString(),
		DisplayName: displayName,
		Email:       "admin@oceanis.com.br",
		Roles:       []string{domain.RoleAdministrador},
	})
}

// creatorContext impersonates the seller that created the given amendment.
func creatorContext(amendment *domain.Amendment) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID:      amendment.CreatedByID,
		DisplayName: amendment.CreatedByName,
		Email:       "vendas@oceanis.com.br",
		Roles:       []string{domain.RoleVendedor},
	})
}

// createWorkflowAmendment persists an amendment in the given state with the
// given items. Price impact is the sum of the item prices times quantity.
func createWorkflowAmendment(t *testing.T, env *workflowTestEnv, state domain.AmendmentState, discountPct float64, items []domain.ConfiguredItem) *domain.Amendment {
	priceImpact := 0.0
	for i := range items {
		priceImpact += items[i].Price * items[i].Quantity
	}
	env.seq++
	amendment := &domain.Amendment{
		ContractID:         env.contract.ID,
		SequenceNumber:     env.seq,
		Number:             fmt.Sprintf("ATO-%s-%03d", env.contract.Number, env.seq),
		Title:              "Customização de convés",
		DiscountPercentage: discountPct,
		PriceImpact:        priceImpact,
		CreatedByID:        uuid.NewString(),
		CreatedByName:      "Ana Souza",
		Items:              items,
	}
	amendment.Apply(state)
	if state == domain.StateSentToClient {
		now := time.Now()
		amendment.SentAt = &now
		amendment.FinalPriceImpact = priceImpact
	}
	require.NoError(t, env.db.Create(amendment).Error)
	return amendment
}

func optionItem(name string, price float64, qty float64) domain.ConfiguredItem {
	return domain.ConfiguredItem{
		ItemType:      domain.ItemTypeOption,
		Name:          name,
		OriginalPrice: price,
		Price:         price,
		Quantity:      qty,
		ReviewStatus:  domain.ItemReviewPending,
	}
}

func resolvedOptionItem(name string, price float64, status domain.ItemReviewStatus) domain.ConfiguredItem {
	item := optionItem(name, price, 1)
	item.ReviewStatus = status
	return item
}

func TestItemReviewService_ResolveItem_AutoAdvance(t *testing.T) {
	env := setupWorkflowTest(t)
	ctx := pmContext("Paulo Mendes")

	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Gerador 17.5kVA", 85000, 1),
		optionItem("Ar condicionado central", 62000, 1),
	})

	// First item resolved: amendment stays in review
	dto, err := env.review.ResolveItem(ctx, amendment.ID, amendment.Items[0].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateInPMReview, dto.State)

	// Last item resolved with a rejection: review completes, only the
	// approved item contributes to the recomputed impact
	dto, err = env.review.ResolveItem(ctx, amendment.ID, amendment.Items[1].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeRejected,
		Notes:   "Incompatível com o compartimento do motor",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateTechnicalComplete, dto.State)
	assert.Equal(t, 85000.0, dto.PriceImpact)

	// Completion step recorded on the technical review phase
	var steps []domain.WorkflowStep
	require.NoError(t, env.db.Where("amendment_id = ? AND phase = ? AND status = ?",
		amendment.ID, domain.PhasePMReview, domain.StepStatusCompleted).Find(&steps).Error)
	require.Len(t, steps, 1)
	assert.Contains(t, steps[0].Notes, "1 aprovado(s), 1 rejeitado(s)")
	assert.NotEmpty(t, steps[0].Response)
}

func TestItemReviewService_ResolveItem_Permissions(t *testing.T) {
	env := setupWorkflowTest(t)
	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Guincho elétrico", 18000, 1),
	})
	req := &domain.ResolveItemRequest{Outcome: domain.OutcomeApproved}

	t.Run("missing user context", func(t *testing.T) {
		_, err := env.review.ResolveItem(context.Background(), amendment.ID, amendment.Items[0].ID, req)
		assert.ErrorIs(t, err, service.ErrUnauthorized)
	})

	t.Run("seller cannot review", func(t *testing.T) {
		_, err := env.review.ResolveItem(sellerContext("Ana Souza"), amendment.ID, amendment.Items[0].ID, req)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestItemReviewService_ResolveItem_RejectionNeedsNotes(t *testing.T) {
	env := setupWorkflowTest(t)
	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Teka no cockpit", 35000, 1),
	})

	_, err := env.review.ResolveItem(pmContext("Paulo Mendes"), amendment.ID, amendment.Items[0].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeRejected,
	})
	assert.ErrorIs(t, err, service.ErrRejectionNeedsNotes)
}

func TestItemReviewService_ResolveItem_AlreadyResolved(t *testing.T) {
	env := setupWorkflowTest(t)
	ctx := pmContext("Paulo Mendes")
	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Bow thruster", 48000, 1),
		optionItem("Passarela hidráulica", 95000, 1),
	})

	_, err := env.review.ResolveItem(ctx, amendment.ID, amendment.Items[0].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeApproved,
	})
	require.NoError(t, err)

	_, err = env.review.ResolveItem(ctx, amendment.ID, amendment.Items[0].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeRejected,
		Notes:   "mudei de ideia",
	})
	assert.ErrorIs(t, err, service.ErrItemAlreadyResolved)
}

func TestItemReviewService_ResolveItem_FullAnalysis(t *testing.T) {
	env := setupWorkflowTest(t)
	ctx := pmContext("Paulo Mendes")

	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		{
			ItemType:     domain.ItemTypeFreeCustomization,
			Name:         "Churrasqueira na popa",
			Quantity:     1,
			ReviewStatus: domain.ItemReviewPending,
		},
	})
	itemID := amendment.Items[0].ID

	t.Run("feasibility answer is required", func(t *testing.T) {
		_, err := env.review.ResolveItem(ctx, amendment.ID, itemID, &domain.ResolveItemRequest{
			Outcome: domain.OutcomeApproved,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("infeasible item cannot be approved", func(t *testing.T) {
		no := domain.FeasibilityNo
		_, err := env.review.ResolveItem(ctx, amendment.ID, itemID, &domain.ResolveItemRequest{
			Outcome:     domain.OutcomeApproved,
			Feasibility: &no,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("cost breakdown priced with markup", func(t *testing.T) {
		yes := domain.FeasibilityYes
		dto, err := env.review.ResolveItem(ctx, amendment.ID, itemID, &domain.ResolveItemRequest{
			Outcome:     domain.OutcomeApproved,
			Feasibility: &yes,
			Materials: []domain.CreateMaterialRequest{
				{Name: "Aço inox 316", UnitCost: 1200, Quantity: 5},
				{Name: "Queimador marinizado", UnitCost: 3000, Quantity: 1},
			},
			LaborHours:       40,
			LaborCostPerHour: 150,
		})
		require.NoError(t, err)

		// materials 9000 + labor 6000 = 15000; suggested = 15000 * 2.33
		var item domain.ConfiguredItem
		require.NoError(t, env.db.Preload("Materials").First(&item, "id = ?", itemID).Error)
		assert.Equal(t, 9000.0, item.MaterialsCost)
		assert.Equal(t, 6000.0, item.LaborCost)
		assert.Equal(t, 15000.0, item.TotalCost)
		assert.Equal(t, 34950.0, item.SuggestedPrice)
		assert.Equal(t, 34950.0, item.Price)
		require.NotNil(t, item.Feasibility)
		assert.Equal(t, domain.FeasibilityYes, *item.Feasibility)
		assert.Len(t, item.Materials, 2)

		// Single item approved: review completes with the suggested price
		assert.Equal(t, domain.StateTechnicalComplete, dto.State)
		assert.Equal(t, 34950.0, dto.PriceImpact)
	})
}

func TestItemReviewService_RequestRevisionAndResubmit(t *testing.T) {
	env := setupWorkflowTest(t)
	ctx := pmContext("Paulo Mendes")

	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Mastro de carbono", 320000, 1),
		optionItem("Velas performance", 110000, 1),
	})

	_, err := env.review.ResolveItem(ctx, amendment.ID, amendment.Items[0].ID, &domain.ResolveItemRequest{
		Outcome: domain.OutcomeApproved,
	})
	require.NoError(t, err)

	dto, err := env.review.RequestRevision(ctx, amendment.ID, &domain.RequestRevisionRequest{
		Reason: "Escopo precisa incluir o reforço estrutural do mastro",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateNeedsRevision, dto.State)

	// All item reviews were discarded with the revision
	var pending int64
	require.NoError(t, env.db.Model(&domain.ConfiguredItem{}).
		Where("amendment_id = ? AND review_status = ?", amendment.ID, domain.ItemReviewPending).
		Count(&pending).Error)
	assert.Equal(t, int64(2), pending)

	dto, err = env.review.Resubmit(ctx, amendment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateInPMReview, dto.State)

	t.Run("resubmit only from needs_revision", func(t *testing.T) {
		_, err := env.review.Resubmit(ctx, amendment.ID)
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestItemReviewService_Progress(t *testing.T) {
	env := setupWorkflowTest(t)
	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Item aprovado", 10000, domain.ItemReviewApproved),
		resolvedOptionItem("Item rejeitado", 5000, domain.ItemReviewRejected),
		optionItem("Item pendente", 7000, 1),
	})

	progress, err := env.review.Progress(context.Background(), amendment.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, progress.Approved)
	assert.Equal(t, 1, progress.Rejected)
	assert.Equal(t, 1, progress.Pending)
	assert.Equal(t, 3, progress.Total)
	assert.False(t, progress.AllResolved)
	assert.True(t, progress.AnyApproved)
	assert.False(t, progress.AllApproved)
}

func TestLifecycleService_SendToClient(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 5, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador 17.5kVA", 85000, domain.ItemReviewApproved),
	})

	dto, err := env.lifecycle.SendToClient(sellerContext("Ana Souza"), amendment.ID, &domain.SendToClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.StateSentToClient, dto.State)
	assert.NotNil(t, dto.SentAt)
	// 5% over 85000
	assert.Equal(t, 4250.0, dto.DiscountAmount)
	assert.Equal(t, 80750.0, dto.FinalPriceImpact)
}

func TestLifecycleService_SendToClient_ItemGates(t *testing.T) {
	env := setupWorkflowTest(t)
	ctx := sellerContext("Ana Souza")

	t.Run("unresolved items block the send", func(t *testing.T) {
		amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
			resolvedOptionItem("Aprovado", 10000, domain.ItemReviewApproved),
			optionItem("Pendente", 5000, 1),
		})
		_, err := env.lifecycle.SendToClient(ctx, amendment.ID, &domain.SendToClientRequest{})
		assert.ErrorIs(t, err, service.ErrItemsUnresolved)
	})

	t.Run("all items rejected blocks the send", func(t *testing.T) {
		amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
			resolvedOptionItem("Rejeitado", 10000, domain.ItemReviewRejected),
		})
		_, err := env.lifecycle.SendToClient(ctx, amendment.ID, &domain.SendToClientRequest{})
		assert.ErrorIs(t, err, service.ErrNoApprovedItems)
	})

	t.Run("amendment still in review cannot be sent", func(t *testing.T) {
		amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
			optionItem("Pendente", 5000, 1),
		})
		_, err := env.lifecycle.SendToClient(ctx, amendment.ID, &domain.SendToClientRequest{})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})
}

func TestLifecycleService_DiscountEscalation(t *testing.T) {
	env := setupWorkflowTest(t)

	// 15% is above the 10% approval threshold
	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 15, []domain.ConfiguredItem{
		resolvedOptionItem("Passarela hidráulica", 95000, domain.ItemReviewApproved),
	})

	// Seller cannot push the discount through: the amendment escalates
	dto, err := env.lifecycle.SendToClient(sellerContext("Ana Souza"), amendment.ID, &domain.SendToClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingApproval, dto.State)

	// A second send while pending is refused outright
	_, err = env.lifecycle.SendToClient(sellerContext("Ana Souza"), amendment.ID, &domain.SendToClientRequest{})
	assert.ErrorIs(t, err, service.ErrDiscountRequiresApproval)

	// Seller cannot clear the gate either
	_, err = env.lifecycle.ApproveCommercial(sellerContext("Ana Souza"), amendment.ID, &domain.CommercialApprovalRequest{})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// Director clears it, amendment returns to ready-to-send
	dto, err = env.lifecycle.ApproveCommercial(directorContext("Carlos Lima"), amendment.ID, &domain.CommercialApprovalRequest{
		Notes: "Aprovado para fechar o negócio na temporada",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateTechnicalComplete, dto.State)

	// Now the seller's send goes through on the stored clearance
	dto, err = env.lifecycle.SendToClient(sellerContext("Ana Souza"), amendment.ID, &domain.SendToClientRequest{})
	require.NoError(t, err)
	assert.Equal(t, domain.StateSentToClient, dto.State)
}

func TestLifecycleService_SendToClient_DiscountCeiling(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 35, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador", 85000, domain.ItemReviewApproved),
	})

	// Even a director cannot exceed the absolute ceiling
	_, err := env.lifecycle.SendToClient(directorContext("Carlos Lima"), amendment.ID, &domain.SendToClientRequest{})
	assert.ErrorIs(t, err, service.ErrDiscountCeiling)
}

func TestLifecycleService_RecordClientResponse_Accept(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateSentToClient, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Ar condicionado central", 62000, domain.ItemReviewApproved),
	})

	dto, err := env.lifecycle.RecordClientResponse(sellerContext("Ana Souza"), amendment.ID, &domain.ClientResponseRequest{
		Accepted: true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateApproved, dto.State)
	assert.NotNil(t, dto.ApprovedAt)

	// Contract totals consolidated in the same transaction
	var contract domain.Contract
	require.NoError(t, env.db.First(&contract, "id = ?", env.contract.ID).Error)
	assert.Equal(t, env.contract.BasePrice+62000, contract.TotalPrice)

	t.Run("terminal amendment refuses a second response", func(t *testing.T) {
		_, err := env.lifecycle.RecordClientResponse(sellerContext("Ana Souza"), amendment.ID, &domain.ClientResponseRequest{
			Accepted: false,
			Notes:    "tarde demais",
		})
		assert.ErrorIs(t, err, service.ErrAmendmentTerminal)
	})
}

func TestLifecycleService_RecordClientResponse_Reject(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateSentToClient, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Teka no cockpit", 35000, domain.ItemReviewApproved),
	})

	t.Run("rejection requires a reason", func(t *testing.T) {
		_, err := env.lifecycle.RecordClientResponse(sellerContext("Ana Souza"), amendment.ID, &domain.ClientResponseRequest{
			Accepted: false,
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	dto, err := env.lifecycle.RecordClientResponse(sellerContext("Ana Souza"), amendment.ID, &domain.ClientResponseRequest{
		Accepted: false,
		Notes:    "Valor acima do orçamento disponível",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateRejected, dto.State)
	assert.NotNil(t, dto.RejectedAt)
	assert.Equal(t, "Valor acima do orçamento disponível", dto.ClientResponse)

	// Contract untouched by a rejection
	var contract domain.Contract
	require.NoError(t, env.db.First(&contract, "id = ?", env.contract.ID).Error)
	assert.Equal(t, env.contract.BasePrice, contract.TotalPrice)
}

func TestLifecycleService_NotifyOverdueResponses(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateSentToClient, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador", 85000, domain.ItemReviewApproved),
	})
	sentAt := time.Now().Add(-40 * 24 * time.Hour)
	require.NoError(t, env.db.Model(&domain.Amendment{}).
		Where("id = ?", amendment.ID).
		Update("sent_at", sentAt).Error)

	// A freshly sent amendment is not overdue
	createWorkflowAmendment(t, env, domain.StateSentToClient, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Guincho", 18000, domain.ItemReviewApproved),
	})

	notified, err := env.lifecycle.NotifyOverdueResponses(context.Background(), 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, notified)

	// The creator got the reminder
	var notifications []domain.Notification
	require.NoError(t, env.db.Where("user_id = ? AND type = ?",
		amendment.CreatedByID, string(domain.NotificationResponseOverdue)).
		Find(&notifications).Error)
	require.Len(t, notifications, 1)
	assert.Contains(t, notifications[0].Message, amendment.Number)
}
