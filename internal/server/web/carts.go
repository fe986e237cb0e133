package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/server/models"
)

// cartSessionHeader carries the signed cart session token. The gateway
// returns the token on every cart response; clients echo it back. A missing
// or invalid token transparently starts a fresh session.
const cartSessionHeader = common.CartSessionHeaderName

func (h *Handler) cartResponse(w http.ResponseWriter, cart *models.Cart, token string) {
	w.Header().Set(cartSessionHeader, token)
	respond(w, http.StatusOK, cart)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	cart, token, err := h.carts.Resolve(r.Context(), r.Header.Get(cartSessionHeader))
	if err != nil {
		respondError(w, err)
		return
	}
	h.cartResponse(w, cart, token)
}

type addCartItemRequest struct {
	AssetID         string    `json:"assetId"`
	PricingModelKey uuid.UUID `json:"pricingModelKey"`
	QuotationRows   int64     `json:"quotationRows,omitempty"`
	QuotationCalls  int64     `json:"quotationCalls,omitempty"`
}

func (h *Handler) addCartItem(w http.ResponseWriter, r *http.Request) {
	var req addCartItemRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	item := &models.CartItem{
		Key:             uuid.New(),
		AssetID:         req.AssetID,
		PricingModelKey: req.PricingModelKey,
		QuotationRows:   req.QuotationRows,
		QuotationCalls:  req.QuotationCalls,
	}

	cart, token, err := h.carts.AddItem(r.Context(), r.Header.Get(cartSessionHeader), item)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cartResponse(w, cart, token)
}

func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	itemKey, ok := pathKey(w, chi.URLParam(r, "itemKey"))
	if !ok {
		return
	}

	cart, token, err := h.carts.RemoveItem(r.Context(), r.Header.Get(cartSessionHeader), itemKey)
	if err != nil {
		respondError(w, err)
		return
	}
	h.cartResponse(w, cart, token)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	cart, token, err := h.carts.Clear(r.Context(), r.Header.Get(cartSessionHeader))
	if err != nil {
		respondError(w, err)
		return
	}
	h.cartResponse(w, cart, token)
}
