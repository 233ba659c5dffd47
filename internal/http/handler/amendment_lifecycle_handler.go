package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/domain"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

// AmendmentLifecycleHandler exposes the review and approval flow of an
// amendment: item-by-item technical review, commercial clearance, sending to
// the client and recording the client's decision.
type AmendmentLifecycleHandler struct {
	lifecycleService *service.AmendmentLifecycleService
	reviewService    *service.ItemReviewService
	logger           *zap.Logger
}

func NewAmendmentLifecycleHandler(
	lifecycleService *service.AmendmentLifecycleService,
	reviewService *service.ItemReviewService,
	logger *zap.Logger,
) *AmendmentLifecycleHandler {
	return &AmendmentLifecycleHandler{
		lifecycleService: lifecycleService,
		reviewService:    reviewService,
		logger:           logger,
	}
}

// @Summary Resolve review item
// @Description Records the PM's verdict on a configured item. Resolving the last item advances the amendment automatically.
// @Tags Amendment workflow
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param itemId path string true "Configured item ID"
// @Param request body domain.ResolveItemRequest true "Review outcome"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Rejection without notes, or amendment not in review"
// @Failure 409 {object} domain.ErrorResponse "Item already resolved"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/items/{itemId}/resolve [post]
func (h *AmendmentLifecycleHandler) ResolveItem(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid item ID: must be a valid UUID")
		return
	}

	var req domain.ResolveItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	amendment, err := h.reviewService.ResolveItem(r.Context(), amendmentID, itemID, &req)
	if err != nil {
		h.logger.Error("failed to resolve item",
			zap.Error(err),
			zap.String("amendment_id", amendmentID.String()),
			zap.String("item_id", itemID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Request revision
// @Description Sends the amendment back to the vendor with a reason. Item verdicts already recorded are kept.
// @Tags Amendment workflow
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.RequestRevisionRequest true "Revision reason"
// @Success 200 {object} domain.AmendmentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/request-revision [post]
func (h *AmendmentLifecycleHandler) RequestRevision(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.RequestRevisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	amendment, err := h.reviewService.RequestRevision(r.Context(), amendmentID, &req)
	if err != nil {
		h.logger.Error("failed to request revision", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Resubmit amendment
// @Description Returns a revised amendment to PM review. Rejected items re-enter review; approved verdicts stand.
// @Tags Amendment workflow
// @Produce json
// @Param id path string true "Amendment ID"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Amendment is not awaiting revision"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/resubmit [post]
func (h *AmendmentLifecycleHandler) Resubmit(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	amendment, err := h.reviewService.Resubmit(r.Context(), amendmentID)
	if err != nil {
		h.logger.Error("failed to resubmit amendment", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Review progress
// @Tags Amendment workflow
// @Produce json
// @Param id path string true "Amendment ID"
// @Success 200 {object} domain.ReviewProgressDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/review-progress [get]
func (h *AmendmentLifecycleHandler) Progress(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	progress, err := h.reviewService.Progress(r.Context(), amendmentID)
	if err != nil {
		h.logger.Error("failed to get review progress", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// @Summary Approve commercially
// @Description Records the commercial approval required when the effective discount exceeds the standard limit.
// @Tags Amendment workflow
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.CommercialApprovalRequest false "Optional notes"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 403 {object} domain.ErrorResponse "Caller cannot approve discounts at this level"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/approve-commercial [post]
func (h *AmendmentLifecycleHandler) ApproveCommercial(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.CommercialApprovalRequest
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

	amendment, err := h.lifecycleService.ApproveCommercial(r.Context(), amendmentID, &req)
	if err != nil {
		h.logger.Error("failed to approve amendment commercially", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Send to client
// @Description Sends a technically complete, commercially cleared amendment to the client for a decision.
// @Tags Amendment workflow
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.SendToClientRequest false "Optional message"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Review incomplete or no approved items"
// @Failure 403 {object} domain.ErrorResponse "Discount pending commercial approval"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/send [post]
func (h *AmendmentLifecycleHandler) SendToClient(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.SendToClientRequest
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

	amendment, err := h.lifecycleService.SendToClient(r.Context(), amendmentID, &req)
	if err != nil {
		h.logger.Error("failed to send amendment to client", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}

// @Summary Record client response
// @Description Records the client's acceptance or refusal of a sent amendment. Acceptance folds the impact into the contract totals.
// @Tags Amendment workflow
// @Accept json
// @Produce json
// @Param id path string true "Amendment ID"
// @Param request body domain.ClientResponseRequest true "Client decision"
// @Success 200 {object} domain.AmendmentDTO
// @Failure 400 {object} domain.ErrorResponse "Amendment was not sent to the client"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/client-response [post]
func (h *AmendmentLifecycleHandler) RecordClientResponse(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	var req domain.ClientResponseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	amendment, err := h.lifecycleService.RecordClientResponse(r.Context(), amendmentID, &req)
	if err != nil {
		h.logger.Error("failed to record client response", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondAmendmentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, amendment)
}
