package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

// ActivityHandler handles HTTP requests for the activity log
type ActivityHandler struct {
	activityService *service.ActivityService
	logger          *zap.Logger
}

// NewActivityHandler creates a new ActivityHandler instance
func NewActivityHandler(activityService *service.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		logger:          logger,
	}
}

// List godoc
// @Summary List activities
// @Description Get paginated list of activity log entries with optional target filters
// @Tags Activities
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 200)" default(20)
// @Param targetType query string false "Filter by target type" Enums(Client, Quotation, Contract, Amendment)
// @Param targetId query string false "Filter by target entity ID" format(uuid)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ActivityDTO}
// @Failure 400 {object} domain.ErrorResponse
// @Failure 500 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [get]
func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 200 {
		pageSize = 200
	}

	var targetType *domain.ActivityTargetType
	if tt := r.URL.Query().Get("targetType"); tt != "" {
		t := domain.ActivityTargetType(tt)
		targetType = &t
	}

	var targetID *uuid.UUID
	if idStr := r.URL.Query().Get("targetId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid targetId format, must be a valid UUID")
			return
		}
		targetID = &id
	}

	activities, total, err := h.activityService.List(r.Context(), page, pageSize, targetType, targetID)
	if err != nil {
		h.logger.Error("failed to list activities", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list activities")
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	respondJSON(w, http.StatusOK, domain.PaginatedResponse{
		Data:       activities,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	})
}

// GetByID godoc
// @Summary Get activity by ID
// @Tags Activities
// @Produce json
// @Param id path string true "Activity ID" format(uuid)
// @Success 200 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 404 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities/{id} [get]
func (h *ActivityHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid activity ID format")
		return
	}

	activity, err := h.activityService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrActivityNotFound) {
			respondWithError(w, http.StatusNotFound, "Activity not found")
			return
		}
		h.logger.Error("failed to get activity", zap.Error(err), zap.String("activity_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to get activity")
		return
	}

	respondJSON(w, http.StatusOK, activity)
}

// CreateNote godoc
// @Summary Create note
// @Description Attach a manual note to a client, quotation, contract or amendment
// @Tags Activities
// @Accept json
// @Produce json
// @Param body body domain.CreateNoteRequest true "Note data"
// @Success 201 {object} domain.ActivityDTO
// @Failure 400 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /activities [post]
func (h *ActivityHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	activity, err := h.activityService.CreateNote(r.Context(), req.TargetType, req.TargetID, req.Title, req.Body)
	if err != nil {
		h.logger.Error("failed to create note", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to create note")
		return
	}

	respondJSON(w, http.StatusCreated, activity)
}
