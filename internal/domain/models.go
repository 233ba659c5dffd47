package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/oceanis-yachts/sales-api/internal/pricing"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusLead     ClientStatus = "lead"
	ClientStatusActive   ClientStatus = "active"
	ClientStatusInactive ClientStatus = "inactive"
)

// Client represents a yacht buyer (person or company)
type Client struct {
	BaseModel
	Name       string       `gorm:"type:varchar(200);not null;index"`
	Document   string       `gorm:"type:varchar(20);unique;index"` // CPF/CNPJ
	Email      string       `gorm:"type:varchar(255);not null"`
	Phone      string       `gorm:"type:varchar(50)"`
	Address    string       `gorm:"type:varchar(500)"`
	City       string       `gorm:"type:varchar(100)"`
	State      string       `gorm:"type:varchar(50)"`
	Country    string       `gorm:"type:varchar(100);not null;default:'Brazil'"`
	Status     ClientStatus `gorm:"type:varchar(50);not null;default:'lead';index"`
	Notes      string       `gorm:"type:text"`
	Quotations []Quotation  `gorm:"foreignKey:ClientID"`
	Contracts  []Contract   `gorm:"foreignKey:ClientID"`
}

// YachtModel represents a boat model in the sales catalog
type YachtModel struct {
	BaseModel
	Name             string         `gorm:"type:varchar(200);not null;uniqueIndex"`
	LengthFeet       float64        `gorm:"type:decimal(5,1);column:length_feet"`
	BasePrice        float64        `gorm:"type:decimal(15,2);not null;column:base_price"`
	BaseDeliveryDays int            `gorm:"not null;default:0;column:base_delivery_days"`
	Description      string         `gorm:"type:text"`
	IsActive         bool           `gorm:"not null;default:true;column:is_active"`
	MemorialItems    []MemorialItem `gorm:"foreignKey:YachtModelID;constraint:OnDelete:CASCADE"`
	Options          []OptionItem   `gorm:"foreignKey:YachtModelID;constraint:OnDelete:CASCADE"`
}

// MemorialItem is a standard-equipment line in a yacht model's base
// specification. Each memorial item is a "slot" that at most one upgrade can
// occupy at a time.
type MemorialItem struct {
	BaseModel
	YachtModelID uuid.UUID `gorm:"type:uuid;not null;index;column:yacht_model_id"`
	Name         string    `gorm:"type:varchar(200);not null"`
	Category     string    `gorm:"type:varchar(100);index"`
	Description  string    `gorm:"type:text"`
	DisplayOrder int       `gorm:"not null;default:0;column:display_order"`
	Upgrades     []Upgrade `gorm:"foreignKey:MemorialItemID;constraint:OnDelete:CASCADE"`
}

// Upgrade is a priced alternative to a memorial item. Selecting one may
// supersede a previously selected upgrade for the same slot (delta pricing).
type Upgrade struct {
	BaseModel
	MemorialItemID     uuid.UUID     `gorm:"type:uuid;not null;index;column:memorial_item_id"`
	MemorialItem       *MemorialItem `gorm:"foreignKey:MemorialItemID"`
	Name               string        `gorm:"type:varchar(200);not null"`
	Description        string        `gorm:"type:text"`
	Price              float64       `gorm:"type:decimal(15,2);not null"`
	DeliveryImpactDays int           `gorm:"not null;default:0;column:delivery_impact_days"`
	IsActive           bool          `gorm:"not null;default:true;column:is_active"`
}

// OptionItem is an optional extra that can be added to a quotation
type OptionItem struct {
	BaseModel
	YachtModelID       uuid.UUID `gorm:"type:uuid;not null;index;column:yacht_model_id"`
	Name               string    `gorm:"type:varchar(200);not null"`
	Description        string    `gorm:"type:text"`
	UnitPrice          float64   `gorm:"type:decimal(15,2);not null;column:unit_price"`
	DeliveryImpactDays int       `gorm:"not null;default:0;column:delivery_impact_days"`
	IsActive           bool      `gorm:"not null;default:true;column:is_active"`
}

// QuotationStatus represents the status of a quotation
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
	QuotationStatusExpired  QuotationStatus = "expired"
)

// Quotation represents a priced sales proposal: base model + options +
// upgrades + two independent discount percentages.
type Quotation struct {
	BaseModel
	Number             string          `gorm:"type:varchar(50);unique;index"`
	ClientID           uuid.UUID       `gorm:"type:uuid;not null;index;column:client_id"`
	Client             *Client         `gorm:"foreignKey:ClientID"`
	YachtModelID       uuid.UUID       `gorm:"type:uuid;not null;index;column:yacht_model_id"`
	YachtModel         *YachtModel     `gorm:"foreignKey:YachtModelID"`
	Status             QuotationStatus `gorm:"type:varchar(50);not null;default:'draft';index"`
	BaseDiscountPct    float64         `gorm:"type:decimal(5,2);not null;default:0;column:base_discount_pct"`
	OptionsDiscountPct float64         `gorm:"type:decimal(5,2);not null;default:0;column:options_discount_pct"`
	FinalPrice         float64         `gorm:"type:decimal(15,2);not null;default:0;column:final_price"`
	TotalDeliveryDays  int             `gorm:"not null;default:0;column:total_delivery_days"`
	ResponsibleUserID  string          `gorm:"type:varchar(100);index;column:responsible_user_id"`
	SentDate           *time.Time      `gorm:"type:date;column:sent_date"`
	ExpirationDate     *time.Time      `gorm:"type:date;column:expiration_date"`
	Notes              string          `gorm:"type:text"`
	Items              []QuotationItem `gorm:"foreignKey:QuotationID;constraint:OnDelete:CASCADE"`
}

// QuotationItemKind distinguishes option and upgrade lines on a quotation
type QuotationItemKind string

const (
	QuotationItemOption  QuotationItemKind = "option"
	QuotationItemUpgrade QuotationItemKind = "upgrade"
)

// QuotationItem is one priced line on a quotation
type QuotationItem struct {
	BaseModel
	QuotationID        uuid.UUID         `gorm:"type:uuid;not null;index;column:quotation_id"`
	Kind               QuotationItemKind `gorm:"type:varchar(20);not null"`
	OptionItemID       *uuid.UUID        `gorm:"type:uuid;column:option_item_id"`
	UpgradeID          *uuid.UUID        `gorm:"type:uuid;column:upgrade_id"`
	Name               string            `gorm:"type:varchar(200);not null"`
	UnitPrice          float64           `gorm:"type:decimal(15,2);not null;column:unit_price"`
	Quantity           float64           `gorm:"type:decimal(10,2);not null;default:1"`
	DeliveryImpactDays int               `gorm:"not null;default:0;column:delivery_impact_days"`
}

// ContractStatus represents the status of a sales contract
type ContractStatus string

const (
	ContractStatusActive    ContractStatus = "active"
	ContractStatusDelivered ContractStatus = "delivered"
	ContractStatusCancelled ContractStatus = "cancelled"
)

// Contract represents a signed sale. It carries the base price and base
// delivery days frozen at signing; consolidated totals are recomputed from
// approved amendments.
type Contract struct {
	BaseModel
	Number            string            `gorm:"type:varchar(50);unique;not null;index"`
	QuotationID       *uuid.UUID        `gorm:"type:uuid;index;column:quotation_id"`
	Quotation         *Quotation        `gorm:"foreignKey:QuotationID"`
	ClientID          uuid.UUID         `gorm:"type:uuid;not null;index;column:client_id"`
	Client            *Client           `gorm:"foreignKey:ClientID"`
	YachtModelID      uuid.UUID         `gorm:"type:uuid;not null;index;column:yacht_model_id"`
	YachtModel        *YachtModel       `gorm:"foreignKey:YachtModelID"`
	Status            ContractStatus    `gorm:"type:varchar(50);not null;default:'active';index"`
	BasePrice         float64           `gorm:"type:decimal(15,2);not null;column:base_price"`
	BaseDeliveryDays  int               `gorm:"not null;default:0;column:base_delivery_days"`
	TotalPrice        float64           `gorm:"type:decimal(15,2);not null;default:0;column:total_price"`
	TotalDeliveryDays int               `gorm:"not null;default:0;column:total_delivery_days"`
	SignedAt          *time.Time        `gorm:"type:date;column:signed_at"`
	SelectedUpgrades  []ContractUpgrade `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
	Amendments        []Amendment       `gorm:"foreignKey:ContractID;constraint:OnDelete:CASCADE"`
}

// ContractUpgrade records the upgrade currently occupying a memorial slot in
// the contract's configuration. It is the "contract" source for replacement
// conflicts.
type ContractUpgrade struct {
	BaseModel
	ContractID     uuid.UUID `gorm:"type:uuid;not null;index;column:contract_id"`
	MemorialItemID uuid.UUID `gorm:"type:uuid;not null;index;column:memorial_item_id"`
	UpgradeID      uuid.UUID `gorm:"type:uuid;not null;column:upgrade_id"`
	Upgrade        *Upgrade  `gorm:"foreignKey:UpgradeID"`
	Price          float64   `gorm:"type:decimal(15,2);not null"`
}

// AmendmentStatus is the client-facing commercial lifecycle of an ATO
type AmendmentStatus string

const (
	AmendmentStatusDraft           AmendmentStatus = "draft"
	AmendmentStatusPendingApproval AmendmentStatus = "pending_approval"
	AmendmentStatusApproved        AmendmentStatus = "approved"
	AmendmentStatusRejected        AmendmentStatus = "rejected"
	AmendmentStatusCancelled       AmendmentStatus = "cancelled"
)

// IsValid checks if the AmendmentStatus is a valid enum value
func (s AmendmentStatus) IsValid() bool {
	switch s {
	case AmendmentStatusDraft, AmendmentStatusPendingApproval, AmendmentStatusApproved,
		AmendmentStatusRejected, AmendmentStatusCancelled:
		return true
	}
	return false
}

// WorkflowStatus tracks internal technical-review progress of an ATO.
// A nil WorkflowStatus on an amendment marks a legacy record imported from
// the old ERP with no structured workflow.
type WorkflowStatus string

const (
	WorkflowPendingPMReview WorkflowStatus = "pending_pm_review"
	WorkflowNeedsRevision   WorkflowStatus = "needs_revision"
	WorkflowCompleted       WorkflowStatus = "completed"
	WorkflowApproved        WorkflowStatus = "approved"
	WorkflowRejected        WorkflowStatus = "rejected"
)

// Amendment is an ATO (Additional To Order): a proposed change to a signed
// contract that flows through PM technical review, commercial discount
// review, client transmission and acceptance.
type Amendment struct {
	BaseModel
	ContractID         uuid.UUID        `gorm:"type:uuid;not null;index;column:contract_id"`
	Contract           *Contract        `gorm:"foreignKey:ContractID"`
	SequenceNumber     int              `gorm:"not null;column:sequence_number"` // monotonic per contract
	Number             string           `gorm:"type:varchar(50);unique;index"`
	Title              string           `gorm:"type:varchar(200);not null"`
	Description        string           `gorm:"type:text"`
	Status             AmendmentStatus  `gorm:"type:varchar(50);not null;default:'draft';index"`
	WorkflowStatus     *WorkflowStatus  `gorm:"type:varchar(50);index;column:workflow_status"`
	PriceImpact        float64          `gorm:"type:decimal(15,2);not null;default:0;column:price_impact"` // signed, negative = credit
	DiscountPercentage float64          `gorm:"type:decimal(5,2);not null;default:0;column:discount_percentage"`
	DiscountAmount     float64          `gorm:"type:decimal(15,2);not null;default:0;column:discount_amount"`
	FinalPriceImpact   float64          `gorm:"type:decimal(15,2);not null;default:0;column:final_price_impact"` // client-facing, set at send
	DeliveryDaysImpact int              `gorm:"not null;default:0;column:delivery_days_impact"`
	AssigneeID         string           `gorm:"type:varchar(100);index;column:assignee_id"` // PM responsible for technical review
	CreatedByID        string           `gorm:"type:varchar(100);not null;column:created_by_id"`
	CreatedByName      string           `gorm:"type:varchar(200);column:created_by_name"`
	UpdatedByID        string           `gorm:"type:varchar(100);column:updated_by_id"`
	UpdatedByName      string           `gorm:"type:varchar(200);column:updated_by_name"`
	SentAt             *time.Time       `gorm:"column:sent_at"`
	ApprovedAt         *time.Time       `gorm:"column:approved_at"`
	RejectedAt         *time.Time       `gorm:"column:rejected_at"`
	CancelledAt        *time.Time       `gorm:"column:cancelled_at"`
	ClientResponse     string           `gorm:"type:text;column:client_response"`
	ReversalOfID       *uuid.UUID       `gorm:"type:uuid;index;column:reversal_of_id"` // set on reversal amendments
	ReversalOf         *Amendment       `gorm:"foreignKey:ReversalOfID"`
	Items              []ConfiguredItem `gorm:"foreignKey:AmendmentID;constraint:OnDelete:CASCADE"`
	WorkflowSteps      []WorkflowStep   `gorm:"foreignKey:AmendmentID;constraint:OnDelete:CASCADE"`
}

// IsLegacy reports whether the amendment predates the structured workflow
func (a *Amendment) IsLegacy() bool {
	return a.WorkflowStatus == nil
}

// EffectivePriceImpact is the amount an approved amendment contributes to
// the contract total: the client-facing final price when one was computed at
// send time, otherwise the raw price impact (legacy amendments).
func (a *Amendment) EffectivePriceImpact() float64 {
	if a.FinalPriceImpact != 0 {
		return a.FinalPriceImpact
	}
	return a.PriceImpact
}

// ConfiguredItemType is the closed set of line-item types on an amendment
type ConfiguredItemType string

const (
	ItemTypeOption            ConfiguredItemType = "option"
	ItemTypeUpgrade           ConfiguredItemType = "upgrade"
	ItemTypeMemorialItem      ConfiguredItemType = "memorial_item"
	ItemTypeAtoItem           ConfiguredItemType = "ato_item"
	ItemTypeFreeCustomization ConfiguredItemType = "free_customization"
	ItemTypeDefinableItem     ConfiguredItemType = "definable_item"
)

// IsValid checks if the ConfiguredItemType is a valid enum value
func (t ConfiguredItemType) IsValid() bool {
	switch t {
	case ItemTypeOption, ItemTypeUpgrade, ItemTypeMemorialItem,
		ItemTypeAtoItem, ItemTypeFreeCustomization, ItemTypeDefinableItem:
		return true
	}
	return false
}

// NeedsFullAnalysis reports whether PM review of this item type requires a
// full cost breakdown (materials + labor + markup).
func (t ConfiguredItemType) NeedsFullAnalysis() bool {
	return t == ItemTypeFreeCustomization || t == ItemTypeDefinableItem
}

// ItemReviewStatus is the per-item review status during PM review
type ItemReviewStatus string

const (
	ItemReviewPending  ItemReviewStatus = "pending"
	ItemReviewApproved ItemReviewStatus = "approved"
	ItemReviewRejected ItemReviewStatus = "rejected"
)

// Feasibility is the PM's feasibility answer for full-analysis items
type Feasibility string

const (
	FeasibilityYes         Feasibility = "yes"
	FeasibilityNo          Feasibility = "no"
	FeasibilityConditional Feasibility = "conditional"
)

// IsValid checks if the Feasibility is a valid enum value
func (f Feasibility) IsValid() bool {
	switch f {
	case FeasibilityYes, FeasibilityNo, FeasibilityConditional:
		return true
	}
	return false
}

// ConfiguredItem is one line item attached to an amendment
type ConfiguredItem struct {
	BaseModel
	AmendmentID uuid.UUID          `gorm:"type:uuid;not null;index;column:amendment_id"`
	ItemType    ConfiguredItemType `gorm:"type:varchar(50);not null;column:item_type"`
	Name        string             `gorm:"type:varchar(200);not null"`
	Description string             `gorm:"type:text"`

	// Catalog references (set for option/upgrade/memorial items)
	OptionItemID   *uuid.UUID `gorm:"type:uuid;column:option_item_id"`
	UpgradeID      *uuid.UUID `gorm:"type:uuid;column:upgrade_id"`
	MemorialItemID *uuid.UUID `gorm:"type:uuid;column:memorial_item_id"`

	// Pricing. OriginalPrice keeps the gross price for audit/display (shown
	// struck through on replacements); Price is what the amendment charges,
	// i.e. the replacement delta when this item supersedes an upgrade.
	OriginalPrice      float64 `gorm:"type:decimal(15,2);not null;default:0;column:original_price"`
	Price              float64 `gorm:"type:decimal(15,2);not null;default:0"`
	DiscountPercentage float64 `gorm:"type:decimal(5,2);not null;default:0;column:discount_percentage"`
	Quantity           float64 `gorm:"type:decimal(10,2);not null;default:1"`
	DeliveryImpactDays int     `gorm:"not null;default:0;column:delivery_impact_days"`

	// Replacement metadata, present when this item supersedes an upgrade
	// already active on the contract or on a prior approved amendment.
	ReplacesUpgradeID    *uuid.UUID `gorm:"type:uuid;column:replaces_upgrade_id"`
	ReplacesUpgradeName  string     `gorm:"type:varchar(200);column:replaces_upgrade_name"`
	ReplacesUpgradePrice float64    `gorm:"type:decimal(15,2);not null;default:0;column:replaces_upgrade_price"`
	ReplacementDelta     float64    `gorm:"type:decimal(15,2);not null;default:0;column:replacement_delta"`
	ReplacementSource    string     `gorm:"type:varchar(100);column:replacement_source"` // "contract" or the prior amendment number

	// Review
	ReviewStatus   ItemReviewStatus `gorm:"type:varchar(50);not null;default:'pending';column:review_status;index"`
	ReviewNotes    string           `gorm:"type:text;column:review_notes"`
	ReviewedByID   string           `gorm:"type:varchar(100);column:reviewed_by_id"`
	ReviewedByName string           `gorm:"type:varchar(200);column:reviewed_by_name"`
	ReviewedAt     *time.Time       `gorm:"column:reviewed_at"`
	Feasibility    *Feasibility     `gorm:"type:varchar(20)"`

	// Full-analysis cost breakdown, filled during PM review
	LaborHours       float64        `gorm:"type:decimal(10,2);not null;default:0;column:labor_hours"`
	LaborCostPerHour float64        `gorm:"type:decimal(15,2);not null;default:0;column:labor_cost_per_hour"`
	MaterialsCost    float64        `gorm:"type:decimal(15,2);not null;default:0;column:materials_cost"`
	LaborCost        float64        `gorm:"type:decimal(15,2);not null;default:0;column:labor_cost"`
	TotalCost        float64        `gorm:"type:decimal(15,2);not null;default:0;column:total_cost"`
	SuggestedPrice   float64        `gorm:"type:decimal(15,2);not null;default:0;column:suggested_price"`
	Materials        []ItemMaterial `gorm:"foreignKey:ConfiguredItemID;constraint:OnDelete:CASCADE"`
}

// IsResolved reports whether the item has already been approved or rejected
func (i *ConfiguredItem) IsResolved() bool {
	return i.ReviewStatus != ItemReviewPending
}

// IsReplacement reports whether this item supersedes an existing upgrade
func (i *ConfiguredItem) IsReplacement() bool {
	return i.ReplacesUpgradeID != nil
}

// ItemMaterial is one material line in a full-analysis cost breakdown
type ItemMaterial struct {
	BaseModel
	ConfiguredItemID uuid.UUID `gorm:"type:uuid;not null;index;column:configured_item_id"`
	Name             string    `gorm:"type:varchar(200);not null"`
	UnitCost         float64   `gorm:"type:decimal(15,2);not null;column:unit_cost"`
	Quantity         float64   `gorm:"type:decimal(10,2);not null;default:1"`
}

// Total returns unit cost times quantity
func (m *ItemMaterial) Total() float64 {
	return m.UnitCost * m.Quantity
}

// WorkflowPhase identifies the phase a workflow step belongs to
type WorkflowPhase string

const (
	PhasePMReview           WorkflowPhase = "pm_review"
	PhaseCommercialApproval WorkflowPhase = "commercial_approval"
	PhaseClientResponse     WorkflowPhase = "client_response"
	PhaseCancellation       WorkflowPhase = "cancellation"
)

// StepStatus is the status recorded on a workflow step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusCompleted StepStatus = "completed"
	StepStatusRejected  StepStatus = "rejected"
)

// WorkflowStep is an audit record of one phase transition. Response holds
// the structured data captured at that step (for pm_review the full cost
// breakdown) as JSON.
type WorkflowStep struct {
	ID              uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	AmendmentID     uuid.UUID     `gorm:"type:uuid;not null;index;column:amendment_id"`
	Phase           WorkflowPhase `gorm:"type:varchar(50);not null"`
	Status          StepStatus    `gorm:"type:varchar(50);not null"`
	Notes           string        `gorm:"type:text"`
	Response        string        `gorm:"type:jsonb"`
	PerformedByID   string        `gorm:"type:varchar(100);column:performed_by_id"`
	PerformedByName string        `gorm:"type:varchar(200);column:performed_by_name"`
	PerformedAt     time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP;column:performed_at"`
}

// Role names as consumed from the auth collaborator. Roles are opaque
// strings; only these carry special meaning for discount and approval gates.
const (
	RoleAdministrador    = "administrador"
	RolePMEngenharia     = "pm_engenharia"
	RoleDiretorComercial = "diretor_comercial"
	RoleGerenteComercial = "gerente_comercial"
	RoleVendedor         = "vendedor"
)

// DiscountTier maps a role set to its discount authority level. The
// engineering PM and both commercial director roles share the director
// tier; anything else, including an empty set, is standard.
func DiscountTier(roles []string) pricing.Tier {
	tier := pricing.TierStandard
	for _, role := range roles {
		switch role {
		case RoleAdministrador:
			return pricing.TierAdmin
		case RolePMEngenharia, RoleDiretorComercial, RoleGerenteComercial:
			tier = pricing.TierDirector
		}
	}
	return tier
}

// User represents a user in the system
type User struct {
	ID          string         `gorm:"type:varchar(100);primaryKey" json:"id"`
	Email       string         `gorm:"type:varchar(255);not null;unique" json:"email"`
	DisplayName string         `gorm:"type:varchar(200);not null;column:name" json:"displayName"`
	Roles       pq.StringArray `gorm:"type:text[];not null" json:"roles"`
	IsActive    bool           `gorm:"not null;default:true;column:is_active" json:"isActive"`
	LastLoginAt *time.Time     `gorm:"column:last_login_at" json:"lastLoginAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updatedAt"`
}

// HasRole reports whether the user holds the given role
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// ActivityTargetType represents the type of entity an activity is associated with
type ActivityTargetType string

const (
	ActivityTargetClient    ActivityTargetType = "Client"
	ActivityTargetQuotation ActivityTargetType = "Quotation"
	ActivityTargetContract  ActivityTargetType = "Contract"
	ActivityTargetAmendment ActivityTargetType = "Amendment"
)

// Activity represents an event log entry for any entity
type Activity struct {
	BaseModel
	TargetType  ActivityTargetType `gorm:"type:varchar(50);not null;index;column:target_type"`
	TargetID    uuid.UUID          `gorm:"type:uuid;not null;index;column:target_id"`
	Title       string             `gorm:"type:varchar(200);not null"`
	Body        string             `gorm:"type:varchar(2000)"`
	OccurredAt  time.Time          `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:occurred_at"`
	CreatorID   string             `gorm:"type:varchar(100);column:creator_id"`
	CreatorName string             `gorm:"type:varchar(200);column:creator_name"`
}

// NotificationType represents the type of notification
type NotificationType string

const (
	NotificationAmendmentAssigned NotificationType = "amendment_assigned"
	NotificationAmendmentSent     NotificationType = "amendment_sent"
	NotificationAmendmentApproved NotificationType = "amendment_approved"
	NotificationAmendmentRejected NotificationType = "amendment_rejected"
	NotificationDiscountEscalated NotificationType = "discount_escalated"
	NotificationResponseOverdue   NotificationType = "response_overdue"
)

// Notification represents a user notification
type Notification struct {
	BaseModel
	UserID     string `gorm:"type:varchar(100);not null;index;column:user_id"`
	Type       string `gorm:"type:varchar(50);not null"`
	Title      string `gorm:"type:varchar(200);not null"`
	Message    string `gorm:"type:varchar(500);not null"`
	Read       bool   `gorm:"column:read;not null;default:false;index"`
	ReadAt     *time.Time
	EntityID   *uuid.UUID `gorm:"type:uuid"`
	EntityType string     `gorm:"type:varchar(50)"`
}

// NumberSequence backs the atomic counters used for quotation/contract
// numbers (per year) and ATO sequence numbers (per contract).
type NumberSequence struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Scope      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_seq_scope"` // "quotation", "contract", "amendment"
	ScopeKey   string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_seq_scope;column:scope_key"`
	LastNumber int       `gorm:"not null;default:0;column:last_number"`
	CreatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// Document represents a stored file attached to a contract or amendment
// (signed ATO PDFs, technical drawings).
type Document struct {
	BaseModel
	Filename    string     `gorm:"type:varchar(255);not null"`
	ContentType string     `gorm:"type:varchar(100);not null"`
	Size        int64      `gorm:"not null"`
	StoragePath string     `gorm:"type:varchar(500);not null;unique"`
	ContractID  *uuid.UUID `gorm:"type:uuid;index;column:contract_id"`
	AmendmentID *uuid.UUID `gorm:"type:uuid;index;column:amendment_id"`
}

// AuditAction classifies what an audit log entry records
type AuditAction string

const (
	AuditActionCreate   AuditAction = "create"
	AuditActionUpdate   AuditAction = "update"
	AuditActionDelete   AuditAction = "delete"
	AuditActionWorkflow AuditAction = "workflow"
)

// AuditLog is an append-only record of every write against the API.
// Sales contracts carry financial approvals, so modifications keep a
// tamper trail separate from the user-facing activity timeline.
type AuditLog struct {
	ID          uuid.UUID   `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Action      AuditAction `gorm:"type:varchar(30);not null;index" json:"action"`
	EntityType  string      `gorm:"type:varchar(50);not null;index;column:entity_type" json:"entityType"`
	EntityID    *uuid.UUID  `gorm:"type:uuid;index;column:entity_id" json:"entityId,omitempty"`
	EntityName  string      `gorm:"type:varchar(200);column:entity_name" json:"entityName,omitempty"`
	UserID      string      `gorm:"type:varchar(100);index;column:user_id" json:"userId,omitempty"`
	UserName    string      `gorm:"type:varchar(200);column:user_name" json:"userName,omitempty"`
	UserEmail   string      `gorm:"type:varchar(255);column:user_email" json:"userEmail,omitempty"`
	IPAddress   string      `gorm:"type:varchar(45);column:ip_address" json:"ipAddress,omitempty"`
	UserAgent   string      `gorm:"type:varchar(500);column:user_agent" json:"userAgent,omitempty"`
	RequestID   string      `gorm:"type:varchar(100);column:request_id" json:"requestId,omitempty"`
	OldValues   string      `gorm:"type:jsonb;default:'null';column:old_values" json:"oldValues,omitempty"`
	NewValues   string      `gorm:"type:jsonb;default:'null';column:new_values" json:"newValues,omitempty"`
	Changes     string      `gorm:"type:jsonb;default:'null'" json:"changes,omitempty"`
	Metadata    string      `gorm:"type:jsonb;default:'null'" json:"metadata,omitempty"`
	PerformedAt time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP;index;column:performed_at" json:"performedAt"`
}
