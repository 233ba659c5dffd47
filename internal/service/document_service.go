package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/auth"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/mapper"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"github.com/oceanis-yachts/sales-api/internal/storage"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService stores files attached to contracts and amendments: signed
// ATO PDFs, technical drawings, acceptance letters.
type DocumentService struct {
	documentRepo  *repository.DocumentRepository
	contractRepo  *repository.ContractRepository
	amendmentRepo *repository.AmendmentRepository
	activityRepo  *repository.ActivityRepository
	storage       storage.Storage
	logger        *zap.Logger
}

func NewDocumentService(
	documentRepo *repository.DocumentRepository,
	contractRepo *repository.ContractRepository,
	amendmentRepo *repository.AmendmentRepository,
	activityRepo *repository.ActivityRepository,
	storage storage.Storage,
	logger *zap.Logger,
) *DocumentService {
	return &DocumentService{
		documentRepo:  documentRepo,
		contractRepo:  contractRepo,
		amendmentRepo: amendmentRepo,
		activityRepo:  activityRepo,
		storage:       storage,
		logger:        logger,
	}
}

// UploadToContract stores a file and attaches it to a contract
func (s *DocumentService) UploadToContract(ctx context.Context, contractID uuid.UUID, filename, contentType string, data io.Reader) (*domain.DocumentDTO, error) {
	contract, err := s.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: contract %s", ErrNotFound, contractID)
		}
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	doc := &domain.Document{ContractID: &contractID}
	return s.upload(ctx, doc, filename, contentType, data,
		domain.ActivityTargetContract, contract.ID, contract.Number)
}

// UploadToAmendment stores a file and attaches it to an amendment
func (s *DocumentService) UploadToAmendment(ctx context.Context, amendmentID uuid.UUID, filename, contentType string, data io.Reader) (*domain.DocumentDTO, error) {
	amendment, err := s.amendmentRepo.GetByID(ctx, amendmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: amendment %s", ErrNotFound, amendmentID)
		}
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}

	doc := &domain.Document{AmendmentID: &amendmentID}
	return s.upload(ctx, doc, filename, contentType, data,
		domain.ActivityTargetAmendment, amendment.ID, amendment.Number)
}

// Download streams a stored document
func (s *DocumentService) Download(ctx context.Context, id uuid.UUID) (*domain.DocumentDTO, io.ReadCloser, error) {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to get document: %w", err)
	}

	reader, err := s.storage.Download(ctx, doc.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to download document: %w", err)
	}

	dto := mapper.ToDocumentDTO(doc)
	return &dto, reader, nil
}

// Delete removes a document from storage and the database
func (s *DocumentService) Delete(ctx context.Context, id uuid.UUID) error {
	doc, err := s.documentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get document: %w", err)
	}

	if err := s.storage.Delete(ctx, doc.StoragePath); err != nil {
		s.logger.Warn("failed to delete blob, removing record anyway",
			zap.String("storagePath", doc.StoragePath),
			zap.Error(err))
	}

	return s.documentRepo.Delete(ctx, id)
}

// ListByContract lists documents attached to a contract
func (s *DocumentService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]domain.DocumentDTO, error) {
	docs, err := s.documentRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return toDocumentDTOs(docs), nil
}

// ListByAmendment lists documents attached to an amendment
func (s *DocumentService) ListByAmendment(ctx context.Context, amendmentID uuid.UUID) ([]domain.DocumentDTO, error) {
	docs, err := s.documentRepo.ListByAmendment(ctx, amendmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return toDocumentDTOs(docs), nil
}

func (s *DocumentService) upload(ctx context.Context, doc *domain.Document, filename, contentType string, data io.Reader, targetType domain.ActivityTargetType, targetID uuid.UUID, targetLabel string) (*domain.DocumentDTO, error) {
	storagePath, size, err := s.storage.Upload(ctx, filename, contentType, data)
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	doc.Filename = filename
	doc.ContentType = contentType
	doc.Size = size
	doc.StoragePath = storagePath

	if err := s.documentRepo.Create(ctx, doc); err != nil {
		// Best effort cleanup of the orphaned blob
		if delErr := s.storage.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn("failed to clean up orphaned blob",
				zap.String("storagePath", storagePath),
				zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to save document: %w", err)
	}

	activity := &domain.Activity{
		TargetType: targetType,
		TargetID:   targetID,
		Title:      "Documento anexado",
		Body:       fmt.Sprintf("O arquivo '%s' foi anexado a %s", filename, targetLabel),
		OccurredAt: time.Now(),
	}
	if userCtx, ok := auth.FromContext(ctx); ok {
		activity.CreatorID = userCtx.UserID
		activity.CreatorName = userCtx.DisplayName
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.Warn("failed to log activity", zap.Error(err))
	}

	dto := mapper.ToDocumentDTO(doc)
	return &dto, nil
}

func toDocumentDTOs(docs []domain.Document) []domain.DocumentDTO {
	dtos := make([]domain.DocumentDTO, len(docs))
	for i := range docs {
		dtos[i] = mapper.ToDocumentDTO(&docs[i])
	}
	return dtos
}
