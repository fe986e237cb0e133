package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/repositories/drafts"
	"github.com/geotrade/marketplace/internal/server/services"
)

// maxResourceUpload caps draft resource bodies at 100 MiB. Bodies over the
// cap are rejected outright, never truncated.
const maxResourceUpload = 100 << 20

type draftRequest struct {
	Title         string                `json:"title"`
	Description   string                `json:"description"`
	AssetType     string                `json:"assetType"`
	PricingModels []models.PricingModel `json:"pricingModels"`
	Lock          bool                  `json:"lock"`
}

func (r draftRequest) command() *services.DraftCommand {
	return &services.DraftCommand{
		Title:         r.Title,
		Description:   r.Description,
		AssetType:     r.AssetType,
		PricingModels: r.PricingModels,
		Lock:          r.Lock,
	}
}

func (h *Handler) createDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}

	var req draftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, err := h.drafts.Create(r.Context(), owner, publisher, req.command())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, draft)
}

func (h *Handler) updateDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	var req draftRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	draft, err := h.drafts.Update(r.Context(), owner, publisher, draftKey, req.command())
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, draft)
}

func (h *Handler) getDraft(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	draft, err := h.drafts.FindOne(r.Context(), publisher, draftKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, draft)
}

func (h *Handler) listDrafts(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	q := drafts.Query{Offset: offset, Limit: limit}
	for _, s := range r.URL.Query()["status"] {
		q.Statuses = append(q.Statuses, models.DraftStatus(s))
	}

	result, err := h.drafts.FindAll(r.Context(), publisher, q)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) deleteDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	if err := h.drafts.Delete(r.Context(), owner, publisher, draftKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) submitDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	draft, err := h.drafts.Submit(r.Context(), owner, publisher, draftKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, draft)
}

func (h *Handler) lockDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	if err := h.drafts.Lock(r.Context(), owner, publisher, draftKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) releaseDraftLock(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	if err := h.drafts.ReleaseLock(r.Context(), owner, draftKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) uploadDraftResource(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	category := models.ResourceCategory(r.URL.Query().Get("category"))
	switch category {
	case models.ResourceCategoryAsset, models.ResourceCategoryAdditional, models.ResourceCategoryContract:
	default:
		respondError(w, msg.Invalid(
			msg.FieldMessage("category", msg.CodeValidation, "Unknown resource category")))
		return
	}

	data, ok := readBody(w, r, maxResourceUpload)
	if !ok {
		return
	}

	draft, err := h.drafts.UploadResource(r.Context(), owner, publisher, draftKey,
		category, r.URL.Query().Get("fileName"), data)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, draft)
}

func (h *Handler) downloadDraftResource(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}
	resourceKey, ok := pathKey(w, chi.URLParam(r, "resourceKey"))
	if !ok {
		return
	}

	resource, data, err := h.drafts.DownloadResource(r.Context(), publisher, draftKey, resourceKey)
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", resource.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+resource.FileName+"\"")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type importDraftRequest struct {
	AssetID string `json:"assetId"`
}

func (h *Handler) importDraft(w http.ResponseWriter, r *http.Request) {
	owner, publisher, ok := identity(w, r)
	if !ok {
		return
	}

	var req importDraftRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.AssetID == "" {
		respondError(w, msg.Invalid(
			msg.FieldMessage("assetId", msg.CodeValidation, "Asset identifier is required")))
		return
	}

	draft, err := h.drafts.ImportFromCatalogue(r.Context(), owner, publisher, req.AssetID)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, draft)
}

type reviewRequest struct {
	Reason string `json:"reason"`
}

func (h *Handler) acceptDraftProvider(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	if err := h.drafts.AcceptProvider(r.Context(), publisher, draftKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) rejectDraftProvider(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.drafts.RejectProvider(r.Context(), publisher, draftKey, req.Reason); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

// Helpdesk review endpoints operate across publishers, so the publisher key
// arrives as a route parameter instead of the token.

func (h *Handler) listHelpdeskDrafts(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r)
	result, err := h.drafts.FindAllPendingHelpdesk(r.Context(), offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) acceptDraftHelpdesk(w http.ResponseWriter, r *http.Request) {
	publisher, ok := pathKey(w, chi.URLParam(r, "publisherKey"))
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	draft, err := h.drafts.AcceptHelpdesk(r.Context(), publisher, draftKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, draft)
}

func (h *Handler) rejectDraftHelpdesk(w http.ResponseWriter, r *http.Request) {
	publisher, ok := pathKey(w, chi.URLParam(r, "publisherKey"))
	if !ok {
		return
	}
	draftKey, ok := pathKey(w, chi.URLParam(r, "draftKey"))
	if !ok {
		return
	}

	var req reviewRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.drafts.RejectHelpdesk(r.Context(), publisher, draftKey, req.Reason); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}
