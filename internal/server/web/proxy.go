package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/clients"
)

// The catalogue, ratings and notebook endpoints proxy external services.
// The gateway adds authentication and envelope translation but owns no data
// for them.

func (h *Handler) searchCatalogue(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))
	if size <= 0 || size > 100 {
		size = 20
	}

	result, err := h.catalogue.FindAll(r.Context(), r.URL.Query().Get("q"), page, size)
	if err != nil {
		h.logger.Error(r.Context(), "catalogue search failed", "error", err)
		respondError(w, msg.New(msg.CodeCatalogueService, "Catalogue service is unavailable"))
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) getCatalogueItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.catalogue.FindOne(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		if clients.IsNotFound(err) {
			respondMessages(w, http.StatusNotFound,
				msg.Message{Code: msg.CodeNotFound, Description: "Asset was not found"})
			return
		}
		h.logger.Error(r.Context(), "catalogue lookup failed", "error", err)
		respondError(w, msg.New(msg.CodeCatalogueService, "Catalogue service is unavailable"))
		return
	}
	respond(w, http.StatusOK, item)
}

// deleteCatalogueAsset unpublishes an asset from the catalogue. Helpdesk
// only; the route table enforces the role.
func (h *Handler) deleteCatalogueAsset(w http.ResponseWriter, r *http.Request) {
	if err := h.catalogue.DeleteAsset(r.Context(), chi.URLParam(r, "assetID")); err != nil {
		if clients.IsNotFound(err) {
			respondMessages(w, http.StatusNotFound,
				msg.Message{Code: msg.CodeNotFound, Description: "Asset was not found"})
			return
		}
		h.logger.Error(r.Context(), "catalogue delete failed", "error", err)
		respondError(w, msg.New(msg.CodeCatalogueService, "Catalogue service is unavailable"))
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) getAssetRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratings.AssetRatings(r.Context(), chi.URLParam(r, "assetID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ratings)
}

func (h *Handler) getProviderRatings(w http.ResponseWriter, r *http.Request) {
	ratings, err := h.ratings.ProviderRatings(r.Context(), chi.URLParam(r, "providerKey"))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, ratings)
}

type rateRequest struct {
	Value   float32 `json:"value"`
	Comment string  `json:"comment,omitempty"`
}

func (h *Handler) rateAsset(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value < 0 || req.Value > 5 {
		respondError(w, msg.Invalid(
			msg.FieldMessage("value", msg.CodeValidation, "Rating must be between 0 and 5")))
		return
	}

	err := h.ratings.RateAsset(r.Context(), chi.URLParam(r, "assetID"), owner.String(), req.Value, req.Comment)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, nil)
}

func (h *Handler) rateProvider(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	var req rateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Value < 0 || req.Value > 5 {
		respondError(w, msg.Invalid(
			msg.FieldMessage("value", msg.CodeValidation, "Rating must be between 0 and 5")))
		return
	}

	err := h.ratings.RateProvider(r.Context(), chi.URLParam(r, "providerKey"), owner.String(), req.Value, req.Comment)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, nil)
}

type startNotebookRequest struct {
	Profile string `json:"profile"`
}

func (h *Handler) startNotebook(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	var req startNotebookRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	status, err := h.notebook.Start(r.Context(), owner.String(), req.Profile)
	if err != nil {
		h.logger.Error(r.Context(), "notebook start failed", "error", err)
		respondError(w, msg.New(msg.CodeNotebookService, "Notebook service is unavailable"))
		return
	}
	respond(w, http.StatusCreated, status)
}

func (h *Handler) stopNotebook(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	if err := h.notebook.Stop(r.Context(), owner.String()); err != nil {
		h.logger.Error(r.Context(), "notebook stop failed", "error", err)
		respondError(w, msg.New(msg.CodeNotebookService, "Notebook service is unavailable"))
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) notebookStatus(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	status, err := h.notebook.Status(r.Context(), owner.String())
	if err != nil {
		if clients.IsNotFound(err) {
			respondMessages(w, http.StatusNotFound,
				msg.Message{Code: msg.CodeNotFound, Description: "No notebook server is running"})
			return
		}
		h.logger.Error(r.Context(), "notebook status failed", "error", err)
		respondError(w, msg.New(msg.CodeNotebookService, "Notebook service is unavailable"))
		return
	}
	respond(w, http.StatusOK, status)
}
