package domain

import (
	"github.com/google/uuid"

	"github.com/oceanis-yachts/sales-api/internal/pricing"
)

// DTOs for API responses. Timestamps are ISO 8601 strings.

type ClientDTO struct {
	ID        uuid.UUID    `json:"id"`
	Name      string       `json:"name"`
	Document  string       `json:"document,omitempty"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Address   string       `json:"address,omitempty"`
	City      string       `json:"city,omitempty"`
	State     string       `json:"state,omitempty"`
	Country   string       `json:"country"`
	Status    ClientStatus `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt string       `json:"createdAt"`
	UpdatedAt string       `json:"updatedAt"`
}

type YachtModelDTO struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	LengthFeet       float64           `json:"lengthFeet,omitempty"`
	BasePrice        float64           `json:"basePrice"`
	BaseDeliveryDays int               `json:"baseDeliveryDays"`
	Description      string            `json:"description,omitempty"`
	IsActive         bool              `json:"isActive"`
	MemorialItems    []MemorialItemDTO `json:"memorialItems,omitempty"`
	Options          []OptionItemDTO   `json:"options,omitempty"`
}

type MemorialItemDTO struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	Description  string       `json:"description,omitempty"`
	DisplayOrder int          `json:"displayOrder"`
	Upgrades     []UpgradeDTO `json:"upgrades,omitempty"`
}

type UpgradeDTO struct {
	ID                 uuid.UUID `json:"id"`
	MemorialItemID     uuid.UUID `json:"memorialItemId"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	Price              float64   `json:"price"`
	DeliveryImpactDays int       `json:"deliveryImpactDays"`
	IsActive           bool      `json:"isActive"`
}

type OptionItemDTO struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	UnitPrice          float64   `json:"unitPrice"`
	DeliveryImpactDays int       `json:"deliveryImpactDays"`
	IsActive           bool      `json:"isActive"`
}

type QuotationDTO struct {
	ID                 uuid.UUID          `json:"id"`
	Number             string             `json:"number,omitempty"`
	ClientID           uuid.UUID          `json:"clientId"`
	ClientName         string             `json:"clientName,omitempty"`
	YachtModelID       uuid.UUID          `json:"yachtModelId"`
	YachtModelName     string             `json:"yachtModelName,omitempty"`
	Status             QuotationStatus    `json:"status"`
	BaseDiscountPct    float64            `json:"baseDiscountPct"`
	OptionsDiscountPct float64            `json:"optionsDiscountPct"`
	FinalPrice         float64            `json:"finalPrice"`
	TotalDeliveryDays  int                `json:"totalDeliveryDays"`
	ResponsibleUserID  string             `json:"responsibleUserId,omitempty"`
	SentDate           *string            `json:"sentDate,omitempty"`
	ExpirationDate     *string            `json:"expirationDate,omitempty"`
	Notes              string             `json:"notes,omitempty"`
	Items              []QuotationItemDTO `json:"items,omitempty"`
	CreatedAt          string             `json:"createdAt"`
	UpdatedAt          string             `json:"updatedAt"`
}

type QuotationItemDTO struct {
	ID                 uuid.UUID         `json:"id"`
	Kind               QuotationItemKind `json:"kind"`
	OptionItemID       *uuid.UUID        `json:"optionItemId,omitempty"`
	UpgradeID          *uuid.UUID        `json:"upgradeId,omitempty"`
	Name               string            `json:"name"`
	UnitPrice          float64           `json:"unitPrice"`
	Quantity           float64           `json:"quantity"`
	DeliveryImpactDays int               `json:"deliveryImpactDays"`
}

// QuotationPricingDTO is the computed pricing returned alongside a
// quotation, including any advisory policy warnings.
type QuotationPricingDTO struct {
	TotalOptionsPrice  float64         `json:"totalOptionsPrice"`
	TotalUpgradesPrice float64         `json:"totalUpgradesPrice"`
	FinalBasePrice     float64         `json:"finalBasePrice"`
	FinalOptionsPrice  float64         `json:"finalOptionsPrice"`
	FinalUpgradesPrice float64         `json:"finalUpgradesPrice"`
	FinalPrice         float64         `json:"finalPrice"`
	TotalDeliveryDays  int             `json:"totalDeliveryDays"`
	Warnings           []PolicyWarning `json:"warnings,omitempty"`
}

type ContractDTO struct {
	ID                uuid.UUID      `json:"id"`
	Number            string         `json:"number"`
	QuotationID       *uuid.UUID     `json:"quotationId,omitempty"`
	ClientID          uuid.UUID      `json:"clientId"`
	ClientName        string         `json:"clientName,omitempty"`
	YachtModelID      uuid.UUID      `json:"yachtModelId"`
	YachtModelName    string         `json:"yachtModelName,omitempty"`
	Status            ContractStatus `json:"status"`
	BasePrice         float64        `json:"basePrice"`
	BaseDeliveryDays  int            `json:"baseDeliveryDays"`
	TotalPrice        float64        `json:"totalPrice"`
	TotalDeliveryDays int            `json:"totalDeliveryDays"`
	SignedAt          *string        `json:"signedAt,omitempty"`
	CreatedAt         string         `json:"createdAt"`
	UpdatedAt         string         `json:"updatedAt"`
}

// ContractImpactDTO exposes the consolidated impact of approved amendments,
// with the raw gross sum alongside the corrected total for audit display.
type ContractImpactDTO struct {
	ContractID        uuid.UUID             `json:"contractId"`
	BasePrice         float64               `json:"basePrice"`
	BaseDeliveryDays  int                   `json:"baseDeliveryDays"`
	TotalPrice        float64               `json:"totalPrice"`
	GrossTotalPrice   float64               `json:"grossTotalPrice"`
	TotalDeliveryDays int                   `json:"totalDeliveryDays"`
	HasCorrection     bool                  `json:"hasCorrection"`
	Breakdown         []pricing.ImpactEntry `json:"breakdown"`
}

type AmendmentDTO struct {
	ID                 uuid.UUID           `json:"id"`
	ContractID         uuid.UUID           `json:"contractId"`
	ContractNumber     string              `json:"contractNumber,omitempty"`
	SequenceNumber     int                 `json:"sequenceNumber"`
	Number             string              `json:"number"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	Status             AmendmentStatus     `json:"status"`
	WorkflowStatus     *WorkflowStatus     `json:"workflowStatus,omitempty"`
	State              AmendmentState      `json:"state"`
	PriceImpact        float64             `json:"priceImpact"`
	DiscountPercentage float64             `json:"discountPercentage"`
	DiscountAmount     float64             `json:"discountAmount,omitempty"`
	FinalPriceImpact   float64             `json:"finalPriceImpact,omitempty"`
	DeliveryDaysImpact int                 `json:"deliveryDaysImpact"`
	AssigneeID         string              `json:"assigneeId,omitempty"`
	CreatedByID        string              `json:"createdById"`
	CreatedByName      string              `json:"createdByName,omitempty"`
	SentAt             *string             `json:"sentAt,omitempty"`
	ApprovedAt         *string             `json:"approvedAt,omitempty"`
	RejectedAt         *string             `json:"rejectedAt,omitempty"`
	CancelledAt        *string             `json:"cancelledAt,omitempty"`
	ClientResponse     string              `json:"clientResponse,omitempty"`
	ReversalOfID       *uuid.UUID          `json:"reversalOfId,omitempty"`
	Items              []ConfiguredItemDTO `json:"items,omitempty"`
	WorkflowSteps      []WorkflowStepDTO   `json:"workflowSteps,omitempty"`
	ReviewProgress     *ReviewProgressDTO  `json:"reviewProgress,omitempty"`
	CreatedAt          string              `json:"createdAt"`
	UpdatedAt          string              `json:"updatedAt"`
}

type ConfiguredItemDTO struct {
	ID                 uuid.UUID          `json:"id"`
	AmendmentID        uuid.UUID          `json:"amendmentId"`
	ItemType           ConfiguredItemType `json:"itemType"`
	Name               string             `json:"name"`
	Description        string             `json:"description,omitempty"`
	OriginalPrice      float64            `json:"originalPrice"`
	Price              float64            `json:"price"`
	DiscountPercentage float64            `json:"discountPercentage,omitempty"`
	Quantity           float64            `json:"quantity"`
	DeliveryImpactDays int                `json:"deliveryImpactDays"`
	NeedsFullAnalysis  bool               `json:"needsFullAnalysis"`

	Replacement *ReplacementInfoDTO `json:"replacement,omitempty"`

	ReviewStatus   ItemReviewStatus `json:"reviewStatus"`
	ReviewNotes    string           `json:"reviewNotes,omitempty"`
	ReviewedByName string           `json:"reviewedByName,omitempty"`
	ReviewedAt     *string          `json:"reviewedAt,omitempty"`
	Feasibility    *Feasibility     `json:"feasibility,omitempty"`

	LaborHours       float64           `json:"laborHours,omitempty"`
	LaborCostPerHour float64           `json:"laborCostPerHour,omitempty"`
	MaterialsCost    float64           `json:"materialsCost,omitempty"`
	LaborCost        float64           `json:"laborCost,omitempty"`
	TotalCost        float64           `json:"totalCost,omitempty"`
	SuggestedPrice   float64           `json:"suggestedPrice,omitempty"`
	Materials        []ItemMaterialDTO `json:"materials,omitempty"`
}

// ReplacementInfoDTO is the replacement metadata shown on a superseding item
type ReplacementInfoDTO struct {
	ReplacesUpgradeID    uuid.UUID `json:"replacesUpgradeId"`
	ReplacesUpgradeName  string    `json:"replacesUpgradeName"`
	ReplacesUpgradePrice float64   `json:"replacesUpgradePrice"`
	Delta                float64   `json:"delta"`
	IsPositiveDelta      bool      `json:"isPositiveDelta"`
	Source               string    `json:"source"`
}

type ItemMaterialDTO struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	UnitCost float64   `json:"unitCost"`
	Quantity float64   `json:"quantity"`
	Total    float64   `json:"total"`
}

type WorkflowStepDTO struct {
	ID              uuid.UUID     `json:"id"`
	Phase           WorkflowPhase `json:"phase"`
	Status          StepStatus    `json:"status"`
	Notes           string        `json:"notes,omitempty"`
	Response        string        `json:"response,omitempty"`
	PerformedByID   string        `json:"performedById,omitempty"`
	PerformedByName string        `json:"performedByName,omitempty"`
	PerformedAt     string        `json:"performedAt"`
}

// ReviewProgressDTO is the aggregate item-review progress of an amendment
type ReviewProgressDTO struct {
	Approved    int  `json:"approved"`
	Rejected    int  `json:"rejected"`
	Pending     int  `json:"pending"`
	Total       int  `json:"total"`
	AllApproved bool `json:"allApproved"`
	AllResolved bool `json:"allResolved"`
	AnyApproved bool `json:"anyApproved"`
}

type NotificationDTO struct {
	ID         uuid.UUID  `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Read       bool       `json:"read"`
	ReadAt     *string    `json:"readAt,omitempty"`
	EntityID   *uuid.UUID `json:"entityId,omitempty"`
	EntityType string     `json:"entityType,omitempty"`
	CreatedAt  string     `json:"createdAt"`
}

// DocumentDTO describes a stored file attached to a contract or amendment
type DocumentDTO struct {
	ID          uuid.UUID  `json:"id"`
	Filename    string     `json:"filename"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
	ContractID  *uuid.UUID `json:"contractId,omitempty"`
	AmendmentID *uuid.UUID `json:"amendmentId,omitempty"`
	CreatedAt   string     `json:"createdAt"`
}

// UnreadCountDTO carries the unread notification count for a user
type UnreadCountDTO struct {
	Count int `json:"count"`
}

// AuthUserDTO is the authenticated user's own profile
type AuthUserDTO struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Email               string   `json:"email"`
	Roles               []string `json:"roles"`
	Initials            string   `json:"initials"`
	IsAdmin             bool     `json:"isAdmin"`
	CanApproveDiscounts bool     `json:"canApproveDiscounts"`
	DiscountTier        string   `json:"discountTier"`
}

type UserDTO struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Roles []string `json:"roles"`
}

type ActivityDTO struct {
	ID          uuid.UUID          `json:"id"`
	TargetType  ActivityTargetType `json:"targetType"`
	TargetID    uuid.UUID          `json:"targetId"`
	Title       string             `json:"title"`
	Body        string             `json:"body,omitempty"`
	OccurredAt  string             `json:"occurredAt"`
	CreatorID   string             `json:"creatorId,omitempty"`
	CreatorName string             `json:"creatorName,omitempty"`
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// PaginatedResponse wraps list endpoints
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int         `json:"totalPages"`
}

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

type CreateClientRequest struct {
	Name     string       `json:"name" validate:"required,max=200"`
	Document string       `json:"document,omitempty" validate:"max=20"`
	Email    string       `json:"email" validate:"required,email"`
	Phone    string       `json:"phone,omitempty" validate:"max=50"`
	Address  string       `json:"address,omitempty" validate:"max=500"`
	City     string       `json:"city,omitempty" validate:"max=100"`
	State    string       `json:"state,omitempty" validate:"max=50"`
	Country  string       `json:"country,omitempty" validate:"max=100"`
	Status   ClientStatus `json:"status,omitempty"`
	Notes    string       `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name    *string       `json:"name,omitempty" validate:"omitempty,max=200"`
	Email   *string       `json:"email,omitempty" validate:"omitempty,email"`
	Phone   *string       `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string       `json:"address,omitempty" validate:"omitempty,max=500"`
	City    *string       `json:"city,omitempty" validate:"omitempty,max=100"`
	State   *string       `json:"state,omitempty" validate:"omitempty,max=50"`
	Status  *ClientStatus `json:"status,omitempty"`
	Notes   *string       `json:"notes,omitempty"`
}

type CreateYachtModelRequest struct {
	Name             string  `json:"name" validate:"required,max=200"`
	LengthFeet       float64 `json:"lengthFeet,omitempty" validate:"gte=0"`
	BasePrice        float64 `json:"basePrice" validate:"required,gt=0"`
	BaseDeliveryDays int     `json:"baseDeliveryDays" validate:"gte=0"`
	Description      string  `json:"description,omitempty"`
}

type UpdateYachtModelRequest struct {
	Name             *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	LengthFeet       *float64 `json:"lengthFeet,omitempty" validate:"omitempty,gte=0"`
	BasePrice        *float64 `json:"basePrice,omitempty" validate:"omitempty,gt=0"`
	BaseDeliveryDays *int     `json:"baseDeliveryDays,omitempty" validate:"omitempty,gte=0"`
	Description      *string  `json:"description,omitempty"`
	IsActive         *bool    `json:"isActive,omitempty"`
}

type CreateMemorialItemRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Category     string `json:"category,omitempty" validate:"max=100"`
	Description  string `json:"description,omitempty"`
	DisplayOrder int    `json:"displayOrder,omitempty" validate:"gte=0"`
}

type CreateUpgradeRequest struct {
	MemorialItemID     uuid.UUID `json:"memorialItemId" validate:"required"`
	Name               string    `json:"name" validate:"required,max=200"`
	Description        string    `json:"description,omitempty"`
	Price              float64   `json:"price" validate:"gte=0"`
	DeliveryImpactDays int       `json:"deliveryImpactDays,omitempty" validate:"gte=0"`
}

type CreateOptionRequest struct {
	Name               string  `json:"name" validate:"required,max=200"`
	Description        string  `json:"description,omitempty"`
	UnitPrice          float64 `json:"unitPrice" validate:"gte=0"`
	DeliveryImpactDays int     `json:"deliveryImpactDays,omitempty" validate:"gte=0"`
}

type CreateQuotationRequest struct {
	ClientID           uuid.UUID                    `json:"clientId" validate:"required"`
	YachtModelID       uuid.UUID                    `json:"yachtModelId" validate:"required"`
	BaseDiscountPct    float64                      `json:"baseDiscountPct" validate:"gte=0"`
	OptionsDiscountPct float64                      `json:"optionsDiscountPct" validate:"gte=0"`
	ResponsibleUserID  string                       `json:"responsibleUserId,omitempty"`
	Notes              string                       `json:"notes,omitempty"`
	Items              []CreateQuotationItemRequest `json:"items,omitempty" validate:"dive"`
}

type CreateQuotationItemRequest struct {
	Kind         QuotationItemKind `json:"kind" validate:"required,oneof=option upgrade"`
	OptionItemID *uuid.UUID        `json:"optionItemId,omitempty"`
	UpgradeID    *uuid.UUID        `json:"upgradeId,omitempty"`
	Quantity     float64           `json:"quantity,omitempty" validate:"omitempty,gt=0"`
}

type UpdateQuotationRequest struct {
	BaseDiscountPct    *float64 `json:"baseDiscountPct,omitempty" validate:"omitempty,gte=0"`
	OptionsDiscountPct *float64 `json:"optionsDiscountPct,omitempty" validate:"omitempty,gte=0"`
	Notes              *string  `json:"notes,omitempty"`
	// Items, when present, replaces the item set wholesale
	Items []CreateQuotationItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

type CreateAmendmentRequest struct {
	ContractID         uuid.UUID                     `json:"contractId" validate:"required"`
	Title              string                        `json:"title" validate:"required,max=200"`
	Description        string                        `json:"description,omitempty"`
	DiscountPercentage float64                       `json:"discountPercentage,omitempty" validate:"gte=0,lte=100"`
	DiscountAmount     float64                       `json:"discountAmount,omitempty" validate:"gte=0"`
	AssigneeID         string                        `json:"assigneeId,omitempty"`
	Items              []CreateConfiguredItemRequest `json:"items" validate:"required,min=1,dive"`
	// AcknowledgedConflicts lists upgrade IDs whose replacement conflicts the
	// operator has already acknowledged. Unacknowledged collisions abort the
	// create with the conflict disclosures.
	AcknowledgedConflicts []uuid.UUID `json:"acknowledgedConflicts,omitempty"`
}

type CreateConfiguredItemRequest struct {
	ItemType           ConfiguredItemType `json:"itemType" validate:"required"`
	Name               string             `json:"name" validate:"required,max=200"`
	Description        string             `json:"description,omitempty"`
	OptionItemID       *uuid.UUID         `json:"optionItemId,omitempty"`
	UpgradeID          *uuid.UUID         `json:"upgradeId,omitempty"`
	MemorialItemID     *uuid.UUID         `json:"memorialItemId,omitempty"`
	Price              float64            `json:"price,omitempty"`
	Quantity           float64            `json:"quantity,omitempty" validate:"omitempty,gt=0"`
	DiscountPercentage float64            `json:"discountPercentage,omitempty" validate:"gte=0,lte=100"`
	DeliveryImpactDays int                `json:"deliveryImpactDays,omitempty" validate:"gte=0"`
}

// UpdateAmendmentRequest edits an amendment. Scope fields (description, raw
// price impact, delivery impact) force re-review when changed after draft.
type UpdateAmendmentRequest struct {
	Title              *string  `json:"title,omitempty" validate:"omitempty,max=200"`
	Description        *string  `json:"description,omitempty"`
	PriceImpact        *float64 `json:"priceImpact,omitempty"`
	DeliveryDaysImpact *int     `json:"deliveryDaysImpact,omitempty" validate:"omitempty,gte=0"`
	DiscountPercentage *float64 `json:"discountPercentage,omitempty" validate:"omitempty,gte=0,lte=100"`
	DiscountAmount     *float64 `json:"discountAmount,omitempty" validate:"omitempty,gte=0"`
	AssigneeID         *string  `json:"assigneeId,omitempty"`
}

// ItemReviewOutcome is the explicit outcome of resolving an item. There is
// no approve-that-means-reject overload: infeasible items must be resolved
// with OutcomeRejected.
type ItemReviewOutcome string

const (
	OutcomeApproved ItemReviewOutcome = "approved"
	OutcomeRejected ItemReviewOutcome = "rejected"
)

type ResolveItemRequest struct {
	Outcome            ItemReviewOutcome       `json:"outcome" validate:"required,oneof=approved rejected"`
	Notes              string                  `json:"notes,omitempty"`
	DeliveryImpactDays *int                    `json:"deliveryImpactDays,omitempty" validate:"omitempty,gte=0"`
	Feasibility        *Feasibility            `json:"feasibility,omitempty"`
	Materials          []CreateMaterialRequest `json:"materials,omitempty" validate:"dive"`
	LaborHours         float64                 `json:"laborHours,omitempty" validate:"gte=0"`
	LaborCostPerHour   float64                 `json:"laborCostPerHour,omitempty" validate:"gte=0"`
	Price              *float64                `json:"price,omitempty"` // reviewer may override the suggested price
}

type CreateMaterialRequest struct {
	Name     string  `json:"name" validate:"required,max=200"`
	UnitCost float64 `json:"unitCost" validate:"gte=0"`
	Quantity float64 `json:"quantity" validate:"gt=0"`
}

// RequestRevisionRequest is the whole-amendment rejection submitted by the
// PM, distinct from per-item rejection.
type RequestRevisionRequest struct {
	Reason string `json:"reason" validate:"required,max=2000"`
}

type SendToClientRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type ClientResponseRequest struct {
	Accepted bool   `json:"accepted"`
	Notes    string `json:"notes,omitempty" validate:"max=2000"`
}

type CancelAmendmentRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}

type CommercialApprovalRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

type CreateNoteRequest struct {
	TargetType ActivityTargetType `json:"targetType" validate:"required,oneof=Client Quotation Contract Amendment"`
	TargetID   uuid.UUID          `json:"targetId" validate:"required"`
	Title      string             `json:"title" validate:"required,max=200"`
	Body       string             `json:"body,omitempty" validate:"max=2000"`
}

type RejectQuotationRequest struct {
	Reason string `json:"reason,omitempty" validate:"max=2000"`
}

type UpdateContractStatusRequest struct {
	Status ContractStatus `json:"status" validate:"required,oneof=active delivered cancelled"`
}

// QuotationWithWarningsResponse pairs a saved quotation with the advisory
// discount warnings produced while pricing it.
type QuotationWithWarningsResponse struct {
	Quotation QuotationDTO    `json:"quotation"`
	Warnings  []PolicyWarning `json:"warnings,omitempty"`
}

// ReplacementConflictResponse is returned (HTTP 409) when adding an upgrade
// collides with an existing one and the operator has not acknowledged it.
type ReplacementConflictResponse struct {
	Conflicts []pricing.ReplacementConflict `json:"conflicts"`
}
