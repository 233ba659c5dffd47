package repository

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"gorm.io/gorm"
)

type QuotationRepository struct {
	db *gorm.DB
}

func NewQuotationRepository(db *gorm.DB) *QuotationRepository {
	return &QuotationRepository{db: db}
}

func (r *QuotationRepository) Create(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Create(quotation).Error
}

func (r *QuotationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Quotation, error) {
	var quotation domain.Quotation
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("YachtModel").
		Preload("Items").
		First(&quotation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepository) Update(ctx context.Context, quotation *domain.Quotation) error {
	return r.db.WithContext(ctx).Save(quotation).Error
}

func (r *QuotationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&domain.Quotation{}, "id = ?", id).Error
}

// ReplaceItems swaps the full item set of a quotation in one transaction.
// Items are replaced wholesale on edit so stale lines never survive a
// model or discount change.
func (r *QuotationRepository) ReplaceItems(ctx context.Context, quotationID uuid.UUID, items []domain.QuotationItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&domain.QuotationItem{}, "quotation_id = ?", quotationID).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].QuotationID = quotationID
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

func (r *QuotationRepository) List(ctx context.Context, page, pageSize int, clientID *uuid.UUID, status *domain.QuotationStatus) ([]domain.Quotation, int64, error) {
	var quotations []domain.Quotation
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Preload("Client").
		Preload("YachtModel")

	if clientID != nil {
		query = query.Where("client_id = ?", *clientID)
	}

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&quotations).Error

	return quotations, total, err
}

func (r *QuotationRepository) Search(ctx context.Context, searchQuery string, limit int) ([]domain.Quotation, error) {
	var quotations []domain.Quotation
	searchPattern := "%" + strings.ToLower(searchQuery) + "%"
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("LOWER(number) LIKE ?", searchPattern).
		Limit(limit).
		Find(&quotations).Error
	return quotations, err
}

// MarkExpired flips sent quotations whose expiration date has passed.
// Returns the number of rows updated. Run by the scheduled sweep.
func (r *QuotationRepository) MarkExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&domain.Quotation{}).
		Where("status = ? AND expiration_date IS NOT NULL AND expiration_date < ?", domain.QuotationStatusSent, now).
		Update("status", domain.QuotationStatusExpired)
	return result.RowsAffected, result.Error
}
