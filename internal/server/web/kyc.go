package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/geotrade/marketplace/internal/msg"
	"github.com/geotrade/marketplace/internal/server/models"
)

// maxKycUpload bounds a page body read. The service enforces the tighter
// per-page ceiling; this cap guarantees an oversized body is rejected
// before it is buffered whole.
const maxKycUpload = 8 << 20

// customerType validates the "type" query parameter value. The role match
// for the selected type is enforced by RequireCustomerTypeRole in the
// route table before the handler runs.
func customerType(w http.ResponseWriter, r *http.Request) (models.CustomerType, bool) {
	switch t := models.CustomerType(r.URL.Query().Get("type")); t {
	case models.CustomerTypeConsumer, models.CustomerTypeProvider:
		return t, true
	default:
		respondError(w, msg.Invalid(
			msg.FieldMessage("type", msg.CodeValidation, "Customer type must be CONSUMER or PROVIDER")))
		return "", false
	}
}

func (h *Handler) createKycDocument(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	ct, ok := customerType(w, r)
	if !ok {
		return
	}

	doc, err := h.verification.CreateDocument(r.Context(), owner, ct)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, doc)
}

func (h *Handler) addKycPage(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	docKey, ok := pathKey(w, chi.URLParam(r, "docKey"))
	if !ok {
		return
	}

	page, ok := readBody(w, r, maxKycUpload)
	if !ok {
		return
	}

	if err := h.verification.AddPage(r.Context(), owner, docKey, page); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, nil)
}

func (h *Handler) submitKycDocument(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	docKey, ok := pathKey(w, chi.URLParam(r, "docKey"))
	if !ok {
		return
	}

	if err := h.verification.SubmitDocument(r.Context(), owner, docKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) getKycDocument(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	docKey, ok := pathKey(w, chi.URLParam(r, "docKey"))
	if !ok {
		return
	}

	doc, err := h.verification.Document(r.Context(), owner, docKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, doc)
}

func (h *Handler) listKycDocuments(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	ct, ok := customerType(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	docs, err := h.verification.Documents(r.Context(), owner, ct, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, docs)
}

func (h *Handler) createUboDeclaration(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	dec, err := h.verification.CreateDeclaration(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, dec)
}

type uboRequest struct {
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Birthday    time.Time `json:"birthday,omitempty"`
	Nationality string    `json:"nationality"`
	Address     string    `json:"address,omitempty"`
}

func (h *Handler) addUbo(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	decKey, ok := pathKey(w, chi.URLParam(r, "decKey"))
	if !ok {
		return
	}

	var req uboRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	ubo := &models.Ubo{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Birthday:    req.Birthday,
		Nationality: req.Nationality,
		Address:     req.Address,
	}
	if err := h.verification.AddUbo(r.Context(), owner, decKey, ubo); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, nil)
}

func (h *Handler) submitUboDeclaration(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	decKey, ok := pathKey(w, chi.URLParam(r, "decKey"))
	if !ok {
		return
	}

	if err := h.verification.SubmitDeclaration(r.Context(), owner, decKey); err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, nil)
}

func (h *Handler) getUboDeclaration(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	decKey, ok := pathKey(w, chi.URLParam(r, "decKey"))
	if !ok {
		return
	}

	dec, err := h.verification.Declaration(r.Context(), owner, decKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, dec)
}

func (h *Handler) listUboDeclarations(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	decs, err := h.verification.Declarations(r.Context(), owner, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, decs)
}
