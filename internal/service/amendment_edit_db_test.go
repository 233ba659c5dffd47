package service_test

import (
	"context"
	"testing"

	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func workflowSteps(t *testing.T, env *workflowTestEnv, amendment *domain.Amendment, phase domain.WorkflowPhase) []domain.WorkflowStep {
	t.Helper()
	var steps []domain.WorkflowStep
	require.NoError(t, env.db.
		Where("amendment_id = ? AND phase = ?", amendment.ID, phase).
		Order("performed_at ASC").
		Find(&steps).Error)
	return steps
}

func reloadItems(t *testing.T, env *workflowTestEnv, amendment *domain.Amendment) []domain.ConfiguredItem {
	t.Helper()
	var items []domain.ConfiguredItem
	require.NoError(t, env.db.
		Where("amendment_id = ?", amendment.ID).
		Find(&items).Error)
	return items
}

func TestAmendmentService_Update_DiscountEscalation(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador 17.5kVA", 85000, domain.ItemReviewApproved),
	})

	// A merely generous discount stays within the seller's authority
	dto, err := env.amendments.Update(creatorContext(amendment), amendment.ID, &domain.UpdateAmendmentRequest{
		DiscountPercentage: f64Ptr(8),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateTechnicalComplete, dto.State)

	// Above the threshold the amendment escalates immediately, without
	// waiting for the send attempt
	dto, err = env.amendments.Update(creatorContext(amendment), amendment.ID, &domain.UpdateAmendmentRequest{
		DiscountPercentage: f64Ptr(12),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatePendingApproval, dto.State)
	assert.Equal(t, domain.AmendmentStatusPendingApproval, dto.Status)
	assert.Equal(t, 12.0, dto.DiscountPercentage)

	steps := workflowSteps(t, env, amendment, domain.PhaseCommercialApproval)
	require.Len(t, steps, 1)
	assert.Equal(t, domain.StepStatusPending, steps[0].Status)
	assert.Contains(t, steps[0].Notes, "aprovação comercial")

	// Technical review survives a pure discount edit
	for _, item := range reloadItems(t, env, amendment) {
		assert.Equal(t, domain.ItemReviewApproved, item.ReviewStatus)
	}
}

func TestAmendmentService_Update_ScopeChangeResetsReviews(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador 17.5kVA", 85000, domain.ItemReviewApproved),
		resolvedOptionItem("Ar condicionado central", 62000, domain.ItemReviewApproved),
	})

	dto, err := env.amendments.Update(creatorContext(amendment), amendment.ID, &domain.UpdateAmendmentRequest{
		Description: strPtr("Incluir suporte reforçado no convés de popa"),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateInPMReview, dto.State)
	assert.Equal(t, domain.AmendmentStatusDraft, dto.Status)

	for _, item := range reloadItems(t, env, amendment) {
		assert.Equal(t, domain.ItemReviewPending, item.ReviewStatus)
	}

	steps := workflowSteps(t, env, amendment, domain.PhasePMReview)
	require.NotEmpty(t, steps)
	assert.Equal(t, domain.StepStatusPending, steps[len(steps)-1].Status)
	assert.Contains(t, steps[len(steps)-1].Notes, "Escopo alterado")
}

func TestAmendmentService_Update_ScopeResetWinsOverDiscountGate(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador 17.5kVA", 85000, domain.ItemReviewApproved),
	})

	// Scope and discount changed in the same edit: back to PM review, the
	// discount gate waits for the renewed technical pass
	dto, err := env.amendments.Update(creatorContext(amendment), amendment.ID, &domain.UpdateAmendmentRequest{
		Description:        strPtr("Trocar gerador por modelo 21kVA"),
		DiscountPercentage: f64Ptr(12),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateInPMReview, dto.State)
	assert.Equal(t, domain.AmendmentStatusDraft, dto.Status)
	assert.Equal(t, 12.0, dto.DiscountPercentage)

	assert.Empty(t, workflowSteps(t, env, amendment, domain.PhaseCommercialApproval))
	for _, item := range reloadItems(t, env, amendment) {
		assert.Equal(t, domain.ItemReviewPending, item.ReviewStatus)
	}
}

func TestAmendmentService_Update_Permissions(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Gerador 17.5kVA", 85000, 1),
	})

	_, err := env.amendments.Update(context.Background(), amendment.ID, &domain.UpdateAmendmentRequest{
		Title: strPtr("Novo título"),
	})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = env.amendments.Update(sellerContext("Outro Vendedor"), amendment.ID, &domain.UpdateAmendmentRequest{
		Title: strPtr("Novo título"),
	})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	dto, err := env.amendments.Update(adminContext("Carla Dias"), amendment.ID, &domain.UpdateAmendmentRequest{
		Title: strPtr("Customização de convés revisada"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Customização de convés revisada", dto.Title)
}

func TestAmendmentService_Cancel_Permissions(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateTechnicalComplete, 0, []domain.ConfiguredItem{
		resolvedOptionItem("Gerador 17.5kVA", 85000, domain.ItemReviewApproved),
	})

	_, err := env.amendments.Cancel(context.Background(), amendment.ID, &domain.CancelAmendmentRequest{})
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = env.amendments.Cancel(creatorContext(amendment), amendment.ID, &domain.CancelAmendmentRequest{})
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	dto, err := env.amendments.Cancel(directorContext("Roberto Lima"), amendment.ID, &domain.CancelAmendmentRequest{
		Reason: "Cliente desistiu da customização",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StateCancelled, dto.State)
	require.NotNil(t, dto.CancelledAt)
}

func TestAmendmentService_Delete_RequiresAdmin(t *testing.T) {
	env := setupWorkflowTest(t)

	amendment := createWorkflowAmendment(t, env, domain.StateInPMReview, 0, []domain.ConfiguredItem{
		optionItem("Gerador 17.5kVA", 85000, 1),
	})

	err := env.amendments.Delete(context.Background(), amendment.ID)
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	// Not even the creator may delete
	err = env.amendments.Delete(creatorContext(amendment), amendment.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	require.NoError(t, env.amendments.Delete(adminContext("Carla Dias"), amendment.ID))

	var gone domain.Amendment
	err = env.db.First(&gone, "id = ?", amendment.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
