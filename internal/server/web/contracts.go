package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/models"
	"github.com/geotrade/marketplace/internal/server/services"
)

func (h *Handler) listMasterContracts(w http.ResponseWriter, r *http.Request) {
	offset, limit := paging(r)
	activeOnly := r.URL.Query().Get("active") == "true"

	masters, err := h.contracts.Masters(r.Context(), activeOnly, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, masters)
}

type contractTemplateRequest struct {
	MasterKey uuid.UUID `json:"masterKey"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
}

func (h *Handler) createContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}

	var req contractTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		respondError(w, msg.Invalid(
			msg.FieldMessage("title", msg.CodeValidation, "Title is required")))
		return
	}

	tpl, err := h.contracts.CreateDraft(r.Context(), publisher, &services.ContractCommand{
		MasterKey: req.MasterKey,
		Title:     req.Title,
		Body:      req.Body,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, tpl)
}

func (h *Handler) updateContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	var req contractTemplateRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	tpl, err := h.contracts.UpdateDraft(r.Context(), publisher, key, &services.ContractCommand{
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tpl)
}

func (h *Handler) publishContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	tpl, err := h.contracts.Publish(r.Context(), publisher, key)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tpl)
}

func (h *Handler) deactivateContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	if err := h.contracts.Deactivate(r.Context(), publisher, key); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) cloneContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	tpl, err := h.contracts.CreateDraftFromTemplate(r.Context(), publisher, key)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, tpl)
}

func (h *Handler) deleteContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	if err := h.contracts.DeleteDraft(r.Context(), publisher, key); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) getContractTemplate(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}
	key, ok := pathKey(w, chi.URLParam(r, "templateKey"))
	if !ok {
		return
	}

	tpl, err := h.contracts.Template(r.Context(), publisher, key)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tpl)
}

func (h *Handler) listContractTemplates(w http.ResponseWriter, r *http.Request) {
	_, publisher, ok := identity(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	var statuses []models.ContractStatus
	for _, s := range r.URL.Query()["status"] {
		statuses = append(statuses, models.ContractStatus(s))
	}

	templates, err := h.contracts.Templates(r.Context(), publisher, statuses, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, templates)
}
