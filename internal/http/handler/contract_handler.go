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

// ContractHandler handles HTTP requests for contracts
type ContractHandler struct {
	contractService *service.ContractService
	logger          *zap.Logger
}

func NewContractHandler(contractService *service.ContractService, logger *zap.Logger) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
		logger:          logger,
	}
}

// @Summary Get contract
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id} [get]
func (h *ContractHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get contract", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Get contract by number
// @Tags Contracts
// @Produce json
// @Param number path string true "Contract number"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/by-number/{number} [get]
func (h *ContractHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	if number == "" {
		respondWithError(w, http.StatusBadRequest, "Contract number is required")
		return
	}

	contract, err := h.contractService.GetByNumber(r.Context(), number)
	if err != nil {
		h.logger.Error("failed to get contract by number", zap.Error(err), zap.String("number", number))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param clientId query string false "Filter by client ID" format(uuid)
// @Param status query string false "Filter by status" Enums(active, delivered, cancelled)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.ContractDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts [get]
func (h *ContractHandler) List(w http.ResponseWriter, r *http.Request) {
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

	var status *domain.ContractStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ContractStatus(s)
		status = &st
	}

	contracts, total, err := h.contractService.List(r.Context(), page, pageSize, clientID, status)
	if err != nil {
		h.logger.Error("failed to list contracts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list contracts")
		return
	}

	respondJSON(w, http.StatusOK, paginated(contracts, total, page, pageSize))
}

// @Summary Search contracts
// @Tags Contracts
// @Produce json
// @Param q query string true "Search query (number or client name)"
// @Param limit query int false "Max results (max 50)" default(20)
// @Success 200 {array} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/search [get]
func (h *ContractHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "Query parameter 'q' is required")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	contracts, err := h.contractService.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error("failed to search contracts", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to search contracts")
		return
	}

	respondJSON(w, http.StatusOK, contracts)
}

// @Summary Get consolidated contract impact
// @Description Folds every approved amendment over the contract baseline and returns the consolidated price and delivery position.
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractImpactDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/impact [get]
func (h *ContractHandler) GetImpact(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	impact, err := h.contractService.GetImpact(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to compute contract impact", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, impact)
}

// @Summary List contract amendments
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {array} domain.AmendmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/amendments [get]
func (h *ContractHandler) ListAmendments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	amendments, err := h.contractService.ListAmendments(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list contract amendments", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendments)
}

// @Summary Recompute contract totals
// @Description Re-runs the consolidation fold and persists the resulting totals. Used after legacy imports or manual corrections.
// @Tags Contracts
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {object} domain.ContractDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/recompute [post]
func (h *ContractHandler) RecomputeTotals(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	contract, err := h.contractService.RecomputeTotals(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to recompute contract totals", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

// @Summary Update contract status
// @Description Moves an active contract to delivered or cancelled.
// @Tags Contracts
// @Accept json
// @Produce json
// @Param id path string true "Contract ID"
// @Param request body domain.UpdateContractStatusRequest true "New status"
// @Success 200 {object} domain.ContractDTO
// @Failure 400 {object} domain.ErrorResponse "Contract is not active"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/status [put]
func (h *ContractHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	var req domain.UpdateContractStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	contract, err := h.contractService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update contract status", zap.Error(err), zap.String("contract_id", id.String()))
		h.handleContractError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, contract)
}

func (h *ContractHandler) handleContractError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Contract not found")
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
