package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/pricing"
	"github.com/oceanis-yachts/sales-api/internal/repository"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

// AmendmentHandler handles HTTP requests for amendments (ATOs): CRUD and the
// operations outside the review/approval flow (cancel, reverse, reopen).
// Lifecycle and item-review endpoints live in amendment_lifecycle_handler.go.
type AmendmentHandler struct {
	amendmentService *service.AmendmentService
	logger           *zap.Logger
}

func NewAmendmentHandler(amendmentService *service.AmendmentService, logger *zap.Logger) *AmendmentHandler {
	return &AmendmentHandler{
		amendmentService: amendmentService,
		logger:           logger,
	}
}

// @Summary Create amendment
// @Description Creates an ATO against an active contract. Upgrade items colliding with an occupied slot return 409 with the conflict disclosures until acknowledged.
// @Tags Amendments
// @Accept json
// @Produce json
// @Param request body domain.CreateAmendmentRequest true "Amendment data"
// @Success 201 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ReplacementConflictResponse "Unacknowledged replacement conflicts"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments [post]
func (h *AmendmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	amendment, err := h.amendmentService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create amendment", zap.Error(err))
		h.handleAmendmentError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/amendments/"+amendment.ID.String())
	respondJSON(w, http.StatusCreated, amendment)
}

// @Summary Get amendment
// @Tags Amendments
// @Produce json
// @Param id path string true "Amendment ID"
// @Success 200 {object} domain.AmendmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id} [get]
func (h *AmendmentHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	amendment, err := h.amendmentService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary List amendments
// @Tags Amendments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 100)" default(20)
// @Param contractId query string false "Filter by contract ID" format(uuid)
// @Param status query string false "Filter by status" Enums(draft, pending_approval, approved, rejected, cancelled)
// @Param workflowStatus query string false "Filter by workflow status" Enums(in_pm_review, needs_revision, technical_complete)
// @Param assigneeId query string false "Filter by assigned PM"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, number, sequenceNumber, priceImpact, status)
// @Param sortOrder query string false "Sort direction" Enums(asc, desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.AmendmentDTO}
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments [get]
func (h *AmendmentHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	var contractID *uuid.UUID
	if idStr := r.URL.Query().Get("contractId"); idStr != "" {
		id, err := uuid.Parse(idStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid contractId: must be a valid UUID")
			return
		}
		contractID = &id
	}

	var status *domain.AmendmentStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.AmendmentStatus(s)
		status = &st
	}

	var workflowStatus *domain.WorkflowStatus
	if ws := r.URL.Query().Get("workflowStatus"); ws != "" {
		w := domain.WorkflowStatus(ws)
		workflowStatus = &w
	}

	assigneeID := r.URL.Query().Get("assigneeId")

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	sort.Order = repository.ParseSortOrder(r.URL.Query().Get("sortOrder"))

	amendments, total, err := h.amendmentService.List(r.Context(), page, pageSize, contractID, status, workflowStatus, assigneeID, sort)
	if err != nil {
		h.logger.Error("failed to list amendments", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list amendments")
		return
	}

	respondJSON(w, http.StatusOK, paginated(amendments, total, page, pageSize))
}

// @Summary Update amendment
// @Description Updates an amendment. Scope changes (description, price impact, delivery impact) reset the technical review.
// @Tags Amendments
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.UpdateAmendmentRequest true "Amendment data"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Amendment is terminal, sent, or legacy"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id} [put]
func (h *AmendmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.UpdateAmendmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	amendment, err := h.amendmentService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Delete amendment
// @Description Deletes an amendment still in technical review. Restricted to the creator or an administrator.
// @Tags Amendments
// @Param id path string true "Amendment ID"
// @Success 204 "No Content"
// @Failure 400 {object} domain.ErrorResponse "Amendment already left technical review"
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id} [delete]
func (h *AmendmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	if err := h.amendmentService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// @Summary Cancel amendment
// @Description Cancels a non-terminal amendment. Cancellation is itself terminal.
// @Tags Amendments
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.CancelAmendmentRequest false "Optional reason"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Amendment is already terminal"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/cancel [post]
func (h *AmendmentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.CancelAmendmentRequest
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

	amendment, err := h.amendmentService.Cancel(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to cancel amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Reverse amendment
// @Description Creates a compensating ATO that undoes an approved amendment. The reversal flows through the normal review workflow.
// @Tags Amendments
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID to reverse"
// @Param request body domain.CreateAmendmentRequest false "Optional title override"
// @Success 201 {object} domain.AmendmentDTO "Reversal amendment"
// @Failure 400 {object} domain.ErrorResponse "Source amendment is not approved"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/reverse [post]
func (h *AmendmentHandler) Reverse(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req *domain.CreateAmendmentRequest
	if r.Body != nil && r.ContentLength > 0 {
		req = &domain.CreateAmendmentRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	reversal, err := h.amendmentService.Reverse(r.Context(), id, req)
	if err != nil {
		h.logger.Error("failed to reverse amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/amendments/"+reversal.ID.String())
	respondJSON(w, http.StatusCreated, reversal)
}

// @Summary Reopen legacy amendment
// @Description Pulls an imported legacy amendment back into the structured workflow. Restricted to administrators and commercial approvers.
// @Tags Amendments
// @Produce json
// @Param id path string true "Amendment ID"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Amendment is not a legacy record"
// @Failure 403 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/reopen [post]
func (h *AmendmentHandler) ReopenLegacy(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	amendment, err := h.amendmentService.ReopenLegacy(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to reopen legacy amendment", zap.Error(err), zap.String("amendment_id", id.String()))
		h.handleAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// handleAmendmentError maps amendment service errors onto HTTP responses.
// Shared with the lifecycle handler, which embeds the same semantics.
func (h *AmendmentHandler) handleAmendmentError(w http.ResponseWriter, err error) {
	respondAmendmentError(w, err)
}

func respondAmendmentError(w http.ResponseWriter, err error) {
	var conflicts *service.ReplacementConflictError
	var ceiling *pricing.DiscountCeilingError
	switch {
	case errors.As(err, &conflicts):
		respondJSON(w, http.StatusConflict, domain.ReplacementConflictResponse{
			Conflicts: conflicts.Conflicts,
		})
	case errors.As(err, &ceiling):
		respondWithError(w, http.StatusUnprocessableEntity, ceiling.Error())
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Amendment not found")
	case errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "You do not have permission to perform this operation")
	case errors.Is(err, service.ErrDiscountRequiresApproval):
		respondWithError(w, http.StatusForbidden, "The discount requires commercial approval before sending")
	case errors.Is(err, service.ErrDiscountCeiling):
		respondWithError(w, http.StatusUnprocessableEntity, "The discount exceeds the absolute ceiling")
	case errors.Is(err, service.ErrItemAlreadyResolved):
		respondWithError(w, http.StatusConflict, "The item has already been resolved")
	case errors.Is(err, service.ErrRejectionNeedsNotes):
		respondWithError(w, http.StatusBadRequest, "Rejecting an item requires notes")
	case errors.Is(err, service.ErrItemsUnresolved):
		respondWithError(w, http.StatusBadRequest, "All items must be resolved before sending")
	case errors.Is(err, service.ErrNoApprovedItems):
		respondWithError(w, http.StatusBadRequest, "The amendment has no approved items to send")
	case errors.Is(err, service.ErrAmendmentTerminal):
		respondWithError(w, http.StatusBadRequest, "The amendment is in a terminal state")
	case errors.Is(err, service.ErrLegacyAmendment):
		respondWithError(w, http.StatusBadRequest, "The amendment predates the approval workflow; reopen it first")
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
