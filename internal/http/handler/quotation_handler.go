package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

// QuotationHandler handles HTTP requests for quotations
type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// @Summary Create quotation
// @Description Creates a draft quotation. Discounts above the requester's tier produce advisory warnings, never a block; only the absolute ceiling rejects the request.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param request body domain.CreateQuotationRequest true "Quotation data"
// @Success 201 {object} domain.QuotationWithWarningsResponse
// @Failure 400 {object} domain.ErrorResponse
// @Failure 422 {object} domain.ErrorResponse "Discount exceeds the absolute ceiling"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [post]
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, warnings, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quotation", zap.Error(err))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, domain.QuotationWithWarningsResponse{
		Quotation: *quotation,
		Warnings:  warnings,
	})
}

// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [get]
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Get quotation pricing breakdown
// @Description Re-prices the quotation and returns the full bucket breakdown with current advisory warnings.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationPricingDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/pricing [get]
func (h *QuotationHandler) GetPricing(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	pricingDTO, err := h.quotationService.GetPricing(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to price quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, pricingDTO)
}

// @Summary List quotations
// @Tags Quotations
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param clientId query string false "Filter by client ID" format(uuid)
// @Param status query string false "Filter by status" Enums(draft, sent, accepted, rejected, expired)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.QuotationDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations [get]
func (h *QuotationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var clientID *uuid.UUID
	if idStr := r.URL.Query().Get("clientId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid clientId: must be a valid UUID")
			return
		}
		clientID = &id
	}

	var status *domain.QuotationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.QuotationStatus(s)
		status = &st
	}

	quotations, total, err := h.quotationService.List(r.Context(), page, pageSize, clientID, status)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list quotations")
		return
	}

	respondJSON(w, http.StatusOK, paginated(quotations, total, page, pageSize))
}

// @Summary Search quotations
// @Tags Quotations
// @Produce json
// @Param q query string true "Search query (number or client name)"
// @Param limit query int false "Max results (max 50)" default(20)
// @Success 200 {array} domain.QuotationDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/search [get]
func (h *QuotationHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	quotations, err := h.quotationService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search quotations", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search quotations")
		return
	}

	respondJSON(w, http.StatusOK, quotations)
}

// @Summary Update quotation
// @Description Updates a draft quotation and re-prices it. Items, when present, replace the item set wholesale.
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.UpdateQuotationRequest true "Quotation data"
// @Success 200 {object} domain.QuotationWithWarningsResponse
// @Failure 400 {object} domain.ErrorResponse "Quotation is not a draft"
// @Failure 422 {object} domain.ErrorResponse "Discount exceeds the absolute ceiling"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [put]
func (h *QuotationHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, warnings, err := h.quotationService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, domain.QuotationWithWarningsResponse{
		Quotation: *quotation,
		Warnings:  warnings,
	})
}

// @Summary Delete quotation
// @Description Deletes a draft quotation. Sent or closed quotations cannot be deleted.
// @Tags Quotations
// @Param id path string true "Quotation ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id} [delete]
func (h *QuotationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	if err := h.quotationService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Send quotation
// @Description Marks a draft quotation as sent to the client, assigning its number and 30-day validity.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse "Quotation is not a draft"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/send [post]
func (h *QuotationHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.Send(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to send quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// @Summary Accept quotation
// @Description Converts a sent quotation into a signed contract with the model's base price/delivery frozen and the quotation's upgrades as the initial slot configuration.
// @Tags Quotations
// @Produce json
// @Param id path string true "Quotation ID"
// @Success 201 {object} domain.ContractDTO "Created contract"
// @Failure 400 {object} domain.ErrorResponse "Quotation is not in sent status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/accept [post]
func (h *QuotationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	contract, err := h.quotationService.Accept(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to accept quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/contracts/"+contract.ID.String())
	respondJSON(w, http.StatusCreated, contract)
}

// @Summary Reject quotation
// @Tags Quotations
// @Accept json
// @Produce json
// @Param id path string true "Quotation ID"
// @Param request body domain.RejectQuotationRequest false "Optional rejection reason"
// @Success 200 {object} domain.QuotationDTO
// @Failure 400 {object} domain.ErrorResponse "Quotation is not in sent status"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /quotations/{id}/reject [post]
func (h *QuotationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.RejectQuotationRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
		if err := validate.Struct(req); err != nil {
			respondValidationError(w, err)
			return
		}
	}

	quotation, err := h.quotationService.Reject(r.Context(), id, req.Reason)
	if err != nil {
		h.logger.Error("failed to reject quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleQuotationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

func (h *QuotationHandler) handleQuotationError(w http.ResponseWriter, err error) {
	var ceiling *pricing.DiscountCeilingError
	switch {
	case errors.As(err, &ceiling):
		respondWithError(w, http.StatusUnprocessableEntity, ceiling.Error())
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Quotation not found")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
