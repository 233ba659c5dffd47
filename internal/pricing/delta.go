package pricing

import "github.com/google/uuid"

// ReplacementDelta prices a replacement: the net amount charged when a new
// upgrade supersedes an existing one on the same memorial slot. The
// amendment charges only the difference; the gross new price is kept for
// audit display.
func ReplacementDelta(newUnitPrice, quantity, existingPrice float64) float64 {
	return newUnitPrice*quantity - existingPrice
}

// ReplacementConflict is the disclosure surfaced to the operator before a
// replacement item is accepted. It is not an error: the operator must
// acknowledge it for the add-item action to proceed.
type ReplacementConflict struct {
	ExistingUpgradeID    uuid.UUID `json:"existingUpgradeId"`
	ExistingUpgradeName  string    `json:"existingUpgradeName"`
	ExistingUpgradePrice float64   `json:"existingUpgradePrice"`
	// Source names where the superseded upgrade came from: "contract" or the
	// number of the prior approved amendment.
	Source          string  `json:"source"`
	NewUpgradeName  string  `json:"newUpgradeName"`
	NewUpgradePrice float64 `json:"newUpgradePrice"` // gross: unit price times quantity
	Delta           float64 `json:"delta"`
	IsPositiveDelta bool    `json:"isPositiveDelta"`
}

// NewReplacementConflict builds the full delta breakdown for a candidate
// upgrade colliding with an existing one.
func NewReplacementConflict(existingID uuid.UUID, existingName string, existingPrice float64, source, newName string, newUnitPrice, quantity float64) ReplacementConflict {
	gross := newUnitPrice * quantity
	delta := gross - existingPrice
	return ReplacementConflict{
		ExistingUpgradeID:    existingID,
		ExistingUpgradeName:  existingName,
		ExistingUpgradePrice: existingPrice,
		Source:               source,
		NewUpgradeName:       newName,
		NewUpgradePrice:      gross,
		Delta:                delta,
		IsPositiveDelta:      delta > 0,
	}
}
