package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberSequenceRepository handles database operations for number sequences.
// Sequences are keyed by scope plus a scope key: amendments count per
// contract ("amendment"/<contract number>), quotations and contracts count
// per year ("quotation"/<year>).
type NumberSequenceRepository struct {
	db *gorm.DB
}

// NewNumberSequenceRepository creates a new NumberSequenceRepository
func NewNumberSequenceRepository(db *gorm.DB) *NumberSequenceRepository {
	return &NumberSequenceRepository{db: db}
}

// GetNextNumber atomically retrieves and increments the sequence for a
// scope/key. It is thread-safe and uses SELECT FOR UPDATE to prevent two
// amendments on the same contract from drawing the same sequence number.
// If no sequence exists for the scope/key, it creates one starting at 1.
func (r *NumberSequenceRepository) GetNextNumber(ctx context.Context, scope, scopeKey string) (int, error) {
	var seq domain.NumberSequence
	var next int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ? AND scope_key = ?", scope, scopeKey).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Scope:      scope,
				ScopeKey:   scopeKey,
				LastNumber: 1,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
			next = 1
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else {
			next = seq.LastNumber + 1
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_number": next,
				"updated_at":  time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return next, nil
}

// GetCurrentNumber retrieves the current sequence value without incrementing.
// Returns 0 if no sequence exists for the scope/key.
func (r *NumberSequenceRepository) GetCurrentNumber(ctx context.Context, scope, scopeKey string) (int, error) {
	var seq domain.NumberSequence
	result := r.db.WithContext(ctx).
		Where("scope = ? AND scope_key = ?", scope, scopeKey).
		First(&seq)

	if result.Error == gorm.ErrRecordNotFound {
		return 0, nil
	}
	if result.Error != nil {
		return 0, fmt.Errorf("failed to get number sequence: %w", result.Error)
	}

	return seq.LastNumber, nil
}

// SetNumber sets the sequence to a specific value. Used when importing
// legacy amendments so new ones continue after the highest imported number.
// The value is the LAST USED number (next draw returns value+1). The update
// only raises the sequence, never lowers it.
func (r *NumberSequenceRepository) SetNumber(ctx context.Context, scope, scopeKey string, value int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq domain.NumberSequence
		result := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("scope = ? AND scope_key = ?", scope, scopeKey).
			First(&seq)

		if result.Error == gorm.ErrRecordNotFound {
			seq = domain.NumberSequence{
				Scope:      scope,
				ScopeKey:   scopeKey,
				LastNumber: value,
				CreatedAt:  time.Now(),
				UpdatedAt:  time.Now(),
			}
			if err := tx.Create(&seq).Error; err != nil {
				return fmt.Errorf("failed to create number sequence: %w", err)
			}
		} else if result.Error != nil {
			return fmt.Errorf("failed to get number sequence: %w", result.Error)
		} else if value > seq.LastNumber {
			if err := tx.Model(&seq).Updates(map[string]interface{}{
				"last_number": value,
				"updated_at":  time.Now(),
			}).Error; err != nil {
				return fmt.Errorf("failed to update number sequence: %w", err)
			}
		}

		return nil
	})
}

// ListSequences returns all sequences (useful for debugging/admin)
func (r *NumberSequenceRepository) ListSequences(ctx context.Context) ([]domain.NumberSequence, error) {
	var sequences []domain.NumberSequence
	err := r.db.WithContext(ctx).
		Order("scope ASC, scope_key ASC").
		Find(&sequences).Error
	return sequences, err
}
