package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

// CatalogHandler handles HTTP requests for the yacht catalog: models, their
// memorial items, upgrades and standalone options.
type CatalogHandler struct {
	catalogService *service.CatalogService
	logger         *zap.Logger
}

func NewCatalogHandler(catalogService *service.CatalogService, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// @Summary Create yacht model
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateYachtModelRequest true "Model data"
// @Success 201 {object} domain.YachtModelDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models [post]
func (h *CatalogHandler) CreateModel(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateYachtModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	model, err := h.catalogService.CreateYachtModel(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create yacht model", zap.Error(err))
		h.handleCatalogError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/catalog/models/"+model.ID.String())
	respondJSON(w, http.StatusCreated, model)
}

// @Summary Get yacht model
// @Description Returns the model with its memorial items, upgrades and options.
// @Tags Catalog
// @Produce json
// @Param id path string true "Model ID"
// @Success 200 {object} domain.YachtModelDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models/{id} [get]
func (h *CatalogHandler) GetModel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid model ID: must be a valid UUID")
		return
	}

	model, err := h.catalogService.GetYachtModel(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get yacht model", zap.Error(err), zap.String("model_id", id.String()))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, model)
}

// @Summary List yacht models
// @Tags Catalog
// @Produce json
// @Param activeOnly query bool false "Only active models" default(false)
// @Success 200 {array} domain.YachtModelDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models [get]
func (h *CatalogHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	models, err := h.catalogService.ListYachtModels(r.Context(), activeOnly)
	if err != nil {
		h.logger.Error("failed to list yacht models", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list yacht models")
		return
	}

	respondJSON(w, http.StatusOK, models)
}

// @Summary Update yacht model
// @Description Updates model data. Price changes apply to new quotations only; existing quotations and contracts keep their snapshots.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Param request body domain.UpdateYachtModelRequest true "Model data"
// @Success 200 {object} domain.YachtModelDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models/{id} [put]
func (h *CatalogHandler) UpdateModel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid model ID: must be a valid UUID")
		return
	}

	var req domain.UpdateYachtModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	model, err := h.catalogService.UpdateYachtModel(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update yacht model", zap.Error(err), zap.String("model_id", id.String()))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, model)
}

// @Summary Add memorial item
// @Description Adds a memorial (standard specification) item to a model. Each memorial item is an upgrade slot.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Param request body domain.CreateMemorialItemRequest true "Memorial item data"
// @Success 201 {object} domain.MemorialItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models/{id}/memorial-items [post]
func (h *CatalogHandler) AddMemorialItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid model ID: must be a valid UUID")
		return
	}

	var req domain.CreateMemorialItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	item, err := h.catalogService.AddMemorialItem(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add memorial item", zap.Error(err), zap.String("model_id", id.String()))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, item)
}

// @Summary Add upgrade
// @Description Registers an upgrade for a memorial item slot.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body domain.CreateUpgradeRequest true "Upgrade data"
// @Success 201 {object} domain.UpgradeDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/upgrades [post]
func (h *CatalogHandler) AddUpgrade(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUpgradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	upgrade, err := h.catalogService.AddUpgrade(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to add upgrade", zap.Error(err))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, upgrade)
}

// @Summary Add option
// @Description Adds a standalone (free-quantity) option to a model.
// @Tags Catalog
// @Accept json
// @Produce json
// @Param id path string true "Model ID"
// @Param request body domain.CreateOptionRequest true "Option data"
// @Success 201 {object} domain.OptionItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models/{id}/options [post]
func (h *CatalogHandler) AddOption(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid model ID: must be a valid UUID")
		return
	}

	var req domain.CreateOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	option, err := h.catalogService.AddOption(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add option", zap.Error(err), zap.String("model_id", id.String()))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, option)
}

// @Summary List options
// @Tags Catalog
// @Produce json
// @Param id path string true "Model ID"
// @Param activeOnly query bool false "Only active options" default(false)
// @Success 200 {array} domain.OptionItemDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /catalog/models/{id}/options [get]
func (h *CatalogHandler) ListOptions(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid model ID: must be a valid UUID")
		return
	}

	activeOnly := r.URL.Query().Get("activeOnly") == "true"

	options, err := h.catalogService.ListOptions(r.Context(), id, activeOnly)
	if err != nil {
		h.logger.Error("failed to list options", zap.Error(err), zap.String("model_id", id.String()))
		h.handleCatalogError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, options)
}

func (h *CatalogHandler) handleCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Catalog entry not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Catalog management requires administrator role")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
