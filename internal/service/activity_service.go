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

// ErrActivityNotFound is returned when an activity is not found
var ErrActivityNotFound = errors.New("activity not found")

// ActivityService exposes the event log kept on clients, quotations,
// contracts and amendments. Entries are written by the other services as
// side effects; this service only creates manual notes and reads.
type ActivityService struct {
	activityRepo *repository.ActivityRepository
	logger       *zap.Logger
}

func NewActivityService(activityRepo *repository.ActivityRepository, logger *zap.Logger) *ActivityService {
	return &ActivityService{
		activityRepo: activityRepo,
		logger:       logger,
	}
}

// CreateNote records a manual log entry on an entity
func (s *ActivityService) CreateNote(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID, title, body string) (*domain.ActivityDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	activity := &domain.Activity{
		TargetType:  targetType,
		TargetID:    targetID,
		Title:       title,
		Body:        body,
		OccurredAt:  time.Now(),
		CreatorID:   userCtx.UserID,
		CreatorName: userCtx.DisplayName,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// GetByID retrieves one log entry
func (s *ActivityService) GetByID(ctx context.Context, id uuid.UUID) (*domain.ActivityDTO, error) {
	activity, err := s.activityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	dto := mapper.ToActivityDTO(activity)
	return &dto, nil
}

// List returns log entries, optionally filtered by target entity
func (s *ActivityService) List(ctx context.Context, page, pageSize int, targetType *domain.ActivityTargetType, targetID *uuid.UUID) ([]domain.ActivityDTO, int64, error) {
	activities, total, err := s.activityRepo.List(ctx, page, pageSize, targetType, targetID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, total, nil
}

// ListByTarget returns the full history of one entity, newest first
func (s *ActivityService) ListByTarget(ctx context.Context, targetType domain.ActivityTargetType, targetID uuid.UUID) ([]domain.ActivityDTO, error) {
	activities, err := s.activityRepo.ListByTarget(ctx, targetType, targetID, 200)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	dtos := make([]domain.ActivityDTO, len(activities))
	for i := range activities {
		dtos[i] = mapper.ToActivityDTO(&activities[i])
	}
	return dtos, nil
}
