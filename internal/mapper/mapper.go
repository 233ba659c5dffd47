package mapper

import (
	"time"

	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

// ToClientDTO converts Client to ClientDTO
func ToClientDTO(client *domain.Client) domain.ClientDTO {
	return domain.ClientDTO{
		ID:        client.ID,
		Name:      client.Name,
		Document:  client.Document,
		Email:     client.Email,
		Phone:     client.Phone,
		Address:   client.Address,
		City:      client.City,
		State:     client.State,
		Country:   client.Country,
		Status:    client.Status,
		Notes:     client.Notes,
		CreatedAt: formatTime(client.CreatedAt),
		UpdatedAt: formatTime(client.UpdatedAt),
	}
}

// ToYachtModelDTO converts YachtModel to YachtModelDTO
func ToYachtModelDTO(model *domain.YachtModel) domain.YachtModelDTO {
	memorialItems := make([]domain.MemorialItemDTO, len(model.MemorialItems))
	for i := range model.MemorialItems {
		memorialItems[i] = ToMemorialItemDTO(&model.MemorialItems[i])
	}

	options := make([]domain.OptionItemDTO, len(model.Options))
	for i := range model.Options {
		options[i] = ToOptionItemDTO(&model.Options[i])
	}

	return domain.YachtModelDTO{
		ID:               model.ID,
		Name:             model.Name,
		LengthFeet:       model.LengthFeet,
		BasePrice:        pricing.Round2(model.BasePrice),
		BaseDeliveryDays: model.BaseDeliveryDays,
		Description:      model.Description,
		IsActive:         model.IsActive,
		MemorialItems:    memorialItems,
		Options:          options,
	}
}

// ToMemorialItemDTO converts MemorialItem to MemorialItemDTO
func ToMemorialItemDTO(item *domain.MemorialItem) domain.MemorialItemDTO {
	upgrades := make([]domain.UpgradeDTO, len(item.Upgrades))
	for i := range item.Upgrades {
		upgrades[i] = ToUpgradeDTO(&item.Upgrades[i])
	}

	return domain.MemorialItemDTO{
		ID:           item.ID,
		Name:         item.Name,
		Category:     item.Category,
		Description:  item.Description,
		DisplayOrder: item.DisplayOrder,
		Upgrades:     upgrades,
	}
}

// ToUpgradeDTO converts Upgrade to UpgradeDTO
func ToUpgradeDTO(upgrade *domain.Upgrade) domain.UpgradeDTO {
	return domain.UpgradeDTO{
		ID:                 upgrade.ID,
		MemorialItemID:     upgrade.MemorialItemID,
		Name:               upgrade.Name,
		Description:        upgrade.Description,
		Price:              pricing.Round2(upgrade.Price),
		DeliveryImpactDays: upgrade.DeliveryImpactDays,
		IsActive:           upgrade.IsActive,
	}
}

// ToOptionItemDTO converts OptionItem to OptionItemDTO
func ToOptionItemDTO(option *domain.OptionItem) domain.OptionItemDTO {
	return domain.OptionItemDTO{
		ID:                 option.ID,
		Name:               option.Name,
		Description:        option.Description,
		UnitPrice:          pricing.Round2(option.UnitPrice),
		DeliveryImpactDays: option.DeliveryImpactDays,
		IsActive:           option.IsActive,
	}
}

// ToQuotationDTO converts Quotation to QuotationDTO
func ToQuotationDTO(quotation *domain.Quotation) domain.QuotationDTO {
	items := make([]domain.QuotationItemDTO, len(quotation.Items))
	for i := range quotation.Items {
		items[i] = ToQuotationItemDTO(&quotation.Items[i])
	}

	dto := domain.QuotationDTO{
		ID:                 quotation.ID,
		Number:             quotation.Number,
		ClientID:           quotation.ClientID,
		YachtModelID:       quotation.YachtModelID,
		Status:             quotation.Status,
		BaseDiscountPct:    quotation.BaseDiscountPct,
		OptionsDiscountPct: quotation.OptionsDiscountPct,
		FinalPrice:         pricing.Round2(quotation.FinalPrice),
		TotalDeliveryDays:  quotation.TotalDeliveryDays,
		ResponsibleUserID:  quotation.ResponsibleUserID,
		SentDate:           formatTimePtr(quotation.SentDate),
		ExpirationDate:     formatTimePtr(quotation.ExpirationDate),
		Notes:              quotation.Notes,
		Items:              items,
		CreatedAt:          formatTime(quotation.CreatedAt),
		UpdatedAt:          formatTime(quotation.UpdatedAt),
	}

	if quotation.Client != nil {
		dto.ClientName = quotation.Client.Name
	}
	if quotation.YachtModel != nil {
		dto.YachtModelName = quotation.YachtModel.Name
	}

	return dto
}

// ToQuotationItemDTO converts QuotationItem to QuotationItemDTO
func ToQuotationItemDTO(item *domain.QuotationItem) domain.QuotationItemDTO {
	return domain.QuotationItemDTO{
		ID:                 item.ID,
		Kind:               item.Kind,
		OptionItemID:       item.OptionItemID,
		UpgradeID:          item.UpgradeID,
		Name:               item.Name,
		UnitPrice:          pricing.Round2(item.UnitPrice),
		Quantity:           item.Quantity,
		DeliveryImpactDays: item.DeliveryImpactDays,
	}
}

// ToQuotationPricingDTO converts a computed quote and its policy warnings
// to the API shape. Money fields are rounded here, at the display edge.
func ToQuotationPricingDTO(result pricing.QuoteResult, warnings []domain.PolicyWarning) domain.QuotationPricingDTO {
	return domain.QuotationPricingDTO{
		TotalOptionsPrice:  pricing.Round2(result.TotalOptionsPrice),
		TotalUpgradesPrice: pricing.Round2(result.TotalUpgradesPrice),
		FinalBasePrice:     pricing.Round2(result.FinalBasePrice),
		FinalOptionsPrice:  pricing.Round2(result.FinalOptionsPrice),
		FinalUpgradesPrice: pricing.Round2(result.FinalUpgradesPrice),
		FinalPrice:         pricing.Round2(result.FinalPrice),
		TotalDeliveryDays:  result.TotalDeliveryDays,
		Warnings:           warnings,
	}
}

// ToContractDTO converts Contract to ContractDTO
func ToContractDTO(contract *domain.Contract) domain.ContractDTO {
	dto := domain.ContractDTO{
		ID:                contract.ID,
		Number:            contract.Number,
		QuotationID:       contract.QuotationID,
		ClientID:          contract.ClientID,
		YachtModelID:      contract.YachtModelID,
		Status:            contract.Status,
		BasePrice:         pricing.Round2(contract.BasePrice),
		BaseDeliveryDays:  contract.BaseDeliveryDays,
		TotalPrice:        pricing.Round2(contract.TotalPrice),
		TotalDeliveryDays: contract.TotalDeliveryDays,
		SignedAt:          formatTimePtr(contract.SignedAt),
		CreatedAt:         formatTime(contract.CreatedAt),
		UpdatedAt:         formatTime(contract.UpdatedAt),
	}

	if contract.Client != nil {
		dto.ClientName = contract.Client.Name
	}
	if contract.YachtModel != nil {
		dto.YachtModelName = contract.YachtModel.Name
	}

	return dto
}

// ToContractImpactDTO converts a consolidated impact to the API shape
func ToContractImpactDTO(contract *domain.Contract, impact pricing.ConsolidatedImpact) domain.ContractImpactDTO {
	return domain.ContractImpactDTO{
		ContractID:        contract.ID,
		BasePrice:         pricing.Round2(contract.BasePrice),
		BaseDeliveryDays:  contract.BaseDeliveryDays,
		TotalPrice:        pricing.Round2(impact.TotalPrice),
		GrossTotalPrice:   pricing.Round2(impact.GrossTotalPrice),
		TotalDeliveryDays: impact.TotalDeliveryDays,
		HasCorrection:     impact.HasCorrection,
		Breakdown:         impact.Breakdown,
	}
}

// ToAmendmentDTO converts Amendment to AmendmentDTO
func ToAmendmentDTO(amendment *domain.Amendment) domain.AmendmentDTO {
	items := make([]domain.ConfiguredItemDTO, len(amendment.Items))
	approved, rejected, pending := 0, 0, 0
	for i := range amendment.Items {
		items[i] = ToConfiguredItemDTO(&amendment.Items[i])
		switch amendment.Items[i].ReviewStatus {
		case domain.ItemReviewApproved:
			approved++
		case domain.ItemReviewRejected:
			rejected++
		default:
			pending++
		}
	}

	steps := make([]domain.WorkflowStepDTO, len(amendment.WorkflowSteps))
	for i := range amendment.WorkflowSteps {
		steps[i] = ToWorkflowStepDTO(&amendment.WorkflowSteps[i])
	}

	dto := domain.AmendmentDTO{
		ID:                 amendment.ID,
		ContractID:         amendment.ContractID,
		SequenceNumber:     amendment.SequenceNumber,
		Number:             amendment.Number,
		Title:              amendment.Title,
		Description:        amendment.Description,
		Status:             amendment.Status,
		WorkflowStatus:     amendment.WorkflowStatus,
		State:              amendment.StateOf(),
		PriceImpact:        pricing.Round2(amendment.PriceImpact),
		DiscountPercentage: amendment.DiscountPercentage,
		DiscountAmount:     pricing.Round2(amendment.DiscountAmount),
		FinalPriceImpact:   pricing.Round2(amendment.FinalPriceImpact),
		DeliveryDaysImpact: amendment.DeliveryDaysImpact,
		AssigneeID:         amendment.AssigneeID,
		CreatedByID:        amendment.CreatedByID,
		CreatedByName:      amendment.CreatedByName,
		SentAt:             formatTimePtr(amendment.SentAt),
		ApprovedAt:         formatTimePtr(amendment.ApprovedAt),
		RejectedAt:         formatTimePtr(amendment.RejectedAt),
		CancelledAt:        formatTimePtr(amendment.CancelledAt),
		ClientResponse:     amendment.ClientResponse,
		ReversalOfID:       amendment.ReversalOfID,
		Items:              items,
		WorkflowSteps:      steps,
		CreatedAt:          formatTime(amendment.CreatedAt),
		UpdatedAt:          formatTime(amendment.UpdatedAt),
	}

	if amendment.Contract != nil {
		dto.ContractNumber = amendment.Contract.Number
	}

	if total := len(amendment.Items); total > 0 {
		dto.ReviewProgress = &domain.ReviewProgressDTO{
			Approved:    approved,
			Rejected:    rejected,
			Pending:     pending,
			Total:       total,
			AllApproved: approved == total,
			AllResolved: pending == 0,
			AnyApproved: approved > 0,
		}
	}

	return dto
}

// ToConfiguredItemDTO converts ConfiguredItem to ConfiguredItemDTO
func ToConfiguredItemDTO(item *domain.ConfiguredItem) domain.ConfiguredItemDTO {
	materials := make([]domain.ItemMaterialDTO, len(item.Materials))
	for i := range item.Materials {
		materials[i] = domain.ItemMaterialDTO{
			ID:       item.Materials[i].ID,
			Name:     item.Materials[i].Name,
			UnitCost: pricing.Round2(item.Materials[i].UnitCost),
			Quantity: item.Materials[i].Quantity,
			Total:    pricing.Round2(item.Materials[i].Total()),
		}
	}

	dto := domain.ConfiguredItemDTO{
		ID:                 item.ID,
		AmendmentID:        item.AmendmentID,
		ItemType:           item.ItemType,
		Name:               item.Name,
		Description:        item.Description,
		OriginalPrice:      pricing.Round2(item.OriginalPrice),
		Price:              pricing.Round2(item.Price),
		DiscountPercentage: item.DiscountPercentage,
		Quantity:           item.Quantity,
		DeliveryImpactDays: item.DeliveryImpactDays,
		NeedsFullAnalysis:  item.ItemType.NeedsFullAnalysis(),
		ReviewStatus:       item.ReviewStatus,
		ReviewNotes:        item.ReviewNotes,
		ReviewedByName:     item.ReviewedByName,
		ReviewedAt:         formatTimePtr(item.ReviewedAt),
		Feasibility:        item.Feasibility,
		LaborHours:         item.LaborHours,
		LaborCostPerHour:   pricing.Round2(item.LaborCostPerHour),
		MaterialsCost:      pricing.Round2(item.MaterialsCost),
		LaborCost:          pricing.Round2(item.LaborCost),
		TotalCost:          pricing.Round2(item.TotalCost),
		SuggestedPrice:     pricing.Round2(item.SuggestedPrice),
		Materials:          materials,
	}

	if item.IsReplacement() {
		delta := pricing.Round2(item.ReplacementDelta)
		dto.Replacement = &domain.ReplacementInfoDTO{
			ReplacesUpgradeID:    *item.ReplacesUpgradeID,
			ReplacesUpgradeName:  item.ReplacesUpgradeName,
			ReplacesUpgradePrice: pricing.Round2(item.ReplacesUpgradePrice),
			Delta:                delta,
			IsPositiveDelta:      delta >= 0,
			Source:               item.ReplacementSource,
		}
	}

	return dto
}

// ToWorkflowStepDTO converts WorkflowStep to WorkflowStepDTO
func ToWorkflowStepDTO(step *domain.WorkflowStep) domain.WorkflowStepDTO {
	return domain.WorkflowStepDTO{
		ID:              step.ID,
		Phase:           step.Phase,
		Status:          step.Status,
		Notes:           step.Notes,
		Response:        step.Response,
		PerformedByID:   step.PerformedByID,
		PerformedByName: step.PerformedByName,
		PerformedAt:     formatTime(step.PerformedAt),
	}
}

// ToNotificationDTO converts Notification to NotificationDTO
func ToNotificationDTO(notification *domain.Notification) domain.NotificationDTO {
	return domain.NotificationDTO{
		ID:         notification.ID,
		Type:       notification.Type,
		Title:      notification.Title,
		Message:    notification.Message,
		Read:       notification.Read,
		ReadAt:     formatTimePtr(notification.ReadAt),
		EntityID:   notification.EntityID,
		EntityType: notification.EntityType,
		CreatedAt:  formatTime(notification.CreatedAt),
	}
}

// ToDocumentDTO converts Document to DocumentDTO
func ToDocumentDTO(doc *domain.Document) domain.DocumentDTO {
	return domain.DocumentDTO{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		ContractID:  doc.ContractID,
		AmendmentID: doc.AmendmentID,
		CreatedAt:   formatTime(doc.CreatedAt),
	}
}

// ToActivityDTO converts Activity to ActivityDTO
func ToActivityDTO(activity *domain.Activity) domain.ActivityDTO {
	return domain.ActivityDTO{
		ID:          activity.ID,
		TargetType:  activity.TargetType,
		TargetID:    activity.TargetID,
		Title:       activity.Title,
		Body:        activity.Body,
		OccurredAt:  formatTime(activity.OccurredAt),
		CreatorID:   activity.CreatorID,
		CreatorName: activity.CreatorName,
	}
}
