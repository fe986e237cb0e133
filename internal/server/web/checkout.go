package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geotrade/marketplace/internal/server/services"
)

func (h *Handler) doCheckout(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	order, err := h.checkout.Checkout(r.Context(), r.Header.Get(cartSessionHeader), owner)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	orderKey, ok := pathKey(w, chi.URLParam(r, "orderKey"))
	if !ok {
		return
	}

	order, err := h.checkout.Order(r.Context(), owner, orderKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	orders, err := h.checkout.Orders(r.Context(), owner, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) createBankwirePayIn(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	orderKey, ok := pathKey(w, chi.URLParam(r, "orderKey"))
	if !ok {
		return
	}

	payin, err := h.payins.CreateBankwire(r.Context(), owner, orderKey, r.Header.Get(cartSessionHeader))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, payin)
}

type cardPayInRequest struct {
	CardID    string `json:"cardId"`
	ReturnURL string `json:"returnUrl"`
}

func (h *Handler) createCardPayIn(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	orderKey, ok := pathKey(w, chi.URLParam(r, "orderKey"))
	if !ok {
		return
	}

	var req cardPayInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	card := &services.CardDetails{CardID: req.CardID, ReturnURL: req.ReturnURL}
	payin, err := h.payins.CreateCardDirect(r.Context(), owner, orderKey, card, r.Header.Get(cartSessionHeader))
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, payin)
}

func (h *Handler) getPayIn(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}
	payinKey, ok := pathKey(w, chi.URLParam(r, "payinKey"))
	if !ok {
		return
	}

	payin, err := h.payins.PayIn(r.Context(), owner, payinKey)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, payin)
}

func (h *Handler) listPayIns(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	offset, limit := paging(r)
	payins, err := h.payins.PayIns(r.Context(), owner, offset, limit)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, payins)
}
