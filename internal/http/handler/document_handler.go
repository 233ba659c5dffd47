package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oceanis-yachts/sales-api/internal/service"
	"go.uber.org/zap"
)

type DocumentHandler struct {
	documentService *service.DocumentService
	maxUploadMB     int64
	logger          *zap.Logger
}

func NewDocumentHandler(documentService *service.DocumentService, maxUploadMB int64, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
		maxUploadMB:     maxUploadMB,
		logger:          logger,
	}
}

// @Summary Upload contract document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Contract ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/documents [post]
func (h *DocumentHandler) UploadToContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}
	h.upload(w, r, func(filename, contentType string, data io.Reader) (interface{}, error) {
		return h.documentService.UploadToContract(r.Context(), contractID, filename, contentType, data)
	})
}

// @Summary Upload amendment document
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Amendment ID"
// @Param file formData file true "File to upload"
// @Success 201 {object} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/documents [post]
func (h *DocumentHandler) UploadToAmendment(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}
	h.upload(w, r, func(filename, contentType string, data io.Reader) (interface{}, error) {
		return h.documentService.UploadToAmendment(r.Context(), amendmentID, filename, contentType, data)
	})
}

func (h *DocumentHandler) upload(w http.ResponseWriter, r *http.Request, store func(filename, contentType string, data io.Reader) (interface{}, error)) {
	// Limit request size
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(h.maxUploadMB * 1024 * 1024); err != nil {
		respondWithError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("File too large: maximum size is %dMB", h.maxUploadMB))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid file upload: file field is required")
		return
	}
	defer file.Close()

	doc, err := store(header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Attachment target not found")
			return
		}
		h.logger.Error("failed to upload document", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to upload document")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// @Summary List contract documents
// @Tags Documents
// @Produce json
// @Param id path string true "Contract ID"
// @Success 200 {array} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /contracts/{id}/documents [get]
func (h *DocumentHandler) ListByContract(w http.ResponseWriter, r *http.Request) {
	contractID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid contract ID: must be a valid UUID")
		return
	}

	docs, err := h.documentService.ListByContract(r.Context(), contractID)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err), zap.String("contract_id", contractID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary List amendment documents
// @Tags Documents
// @Produce json
// @Param id path string true "Amendment ID"
// @Success 200 {array} domain.DocumentDTO
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /amendments/{id}/documents [get]
func (h *DocumentHandler) ListByAmendment(w http.ResponseWriter, r *http.Request) {
	amendmentID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid amendment ID: must be a valid UUID")
		return
	}

	docs, err := h.documentService.ListByAmendment(r.Context(), amendmentID)
	if err != nil {
		h.logger.Error("failed to list documents", zap.Error(err), zap.String("amendment_id", amendmentID.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	respondJSON(w, http.StatusOK, docs)
}

// @Summary Download document
// @Tags Documents
// @Produce application/octet-stream
// @Param id path string true "Document ID"
// @Success 200
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	doc, reader, err := h.documentService.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to download document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to download document")
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Disposition", "attachment; filename=\""+doc.Filename+"\"")
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)

	_, _ = io.Copy(w, reader)
}

// @Summary Delete document
// @Tags Documents
// @Param id path string true "Document ID"
// @Success 204 "No Content"
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid document ID: must be a valid UUID")
		return
	}

	if err := h.documentService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.logger.Error("failed to delete document", zap.Error(err), zap.String("document_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
