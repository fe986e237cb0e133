package web

import (
	"net/http"

	"github.com/geotrade/marketplace/internal/msg"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var fields []msg.Message
	if req.Email == "" {
		fields = append(fields, msg.FieldMessage("email", msg.CodeValidation, "E-mail is required"))
	}
	if len(req.Password) < 8 {
		fields = append(fields, msg.FieldMessage("password", msg.CodeValidation, "Password must be at least 8 characters"))
	}
	if len(fields) > 0 {
		respondError(w, msg.Invalid(fields...))
		return
	}

	account, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusCreated, account)
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	owner, _, ok := identity(w, r)
	if !ok {
		return
	}

	account, err := h.accounts.Profile(r.Context(), owner)
	if err != nil {
		respondError(w, err)
		return
	}
	respond(w, http.StatusOK, account)
}
