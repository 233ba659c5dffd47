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
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ClientService handles business logic for yacht buyers
type ClientService struct {
	clientRepo   *repository.ClientRepository
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewClientService(
	clientRepo *repository.ClientRepository,
	activityRepo *repository.ActivityRepository,
	logger *zap.Logger,
) *ClientService {
	return &ClientService{
		clientRepo:   clientRepo,
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// Create registers a new client. The CPF/CNPJ must be unique when provided.
func (s *ClientService) Create(ctx context.Context, req *domain.CreateClientRequest) (*domain.ClientDTO, error) {
	if req.Document != "" {
		existing, err := s.clientRepo.GetByDocument(ctx, req.Document)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to check document: %w", err)
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: document %s already registered", ErrConflict, req.Document)
		}
	}

	status := req.Status
	if status == "" {
		status = domain.ClientStatusLead
	}
	country := req.Country
	if country == "" {
		country = "Brazil"
	}

	client := &domain.Client{
		Name:     req.Name,
		Document: req.Document,
		Email:    req.Email,
		Phone:    req.Phone,
		Address:  req.Address,
		City:     req.City,
		State:    req.State,
		Country:  country,
		Status:   status,
		Notes:    req.Notes,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	s.logActivity(ctx, client.ID, "Cliente cadastrado",
		fmt.Sprintf("O cliente %s foi cadastrado", client.Name))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}
	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// List returns clients with an optional status filter
func (s *ClientService) List(ctx context.Context, page, pageSize int, status *domain.ClientStatus) ([]domain.ClientDTO, int64, error) {
	clients, total, err := s.clientRepo.List(ctx, page, pageSize, status)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list clients: %w", err)
	}
	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, total, nil
}

// Search finds clients by name, email or document
func (s *ClientService) Search(ctx context.Context, query string, limit int) ([]domain.ClientDTO, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	clients, err := s.clientRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search clients: %w", err)
	}
	dtos := make([]domain.ClientDTO, len(clients))
	for i := range clients {
		dtos[i] = mapper.ToClientDTO(&clients[i])
	}
	return dtos, nil
}

// Update applies a partial update to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateClientRequest) (*domain.ClientDTO, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get client: %w", err)
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.State != nil {
		client.State = *req.State
	}
	if req.Status != nil {
		client.Status = *req.Status
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	s.logActivity(ctx, client.ID, "Cliente atualizado",
		fmt.Sprintf("Os dados do cliente %s foram atualizados", client.Name))

	dto := mapper.ToClientDTO(client)
	return &dto, nil
}

// Delete removes a client without contracts or quotations
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get client: %w", err)
	}

	if len(client.Contracts) > 0 || len(client.Quotations) > 0 {
		return fmt.Errorf("%w: client has quotations or contracts", ErrConflict)
	}

	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) logActivity(ctx context.Context, clientID uuid.UUID, title, body string) {
	activity := &domain.Activity{
		TargetType: domain.ActivityTargetClient,
		TargetID:   clientID,
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
