// Package web exposes the gateway's public HTTP surface: the response
// envelope, authentication middleware and one handler per domain.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/geotrade/marketplace/internal/common"
	"github.com/geotrade/marketplace/internal/msg"
)

// envelope is the uniform response shape. Business failures travel as
// success=false with coded messages and HTTP 200; transport-level statuses
// (401, 403, 404, 500) are reserved for conditions outside business flow.
type envelope struct {
	Success  bool          `json:"success"`
	Messages []msg.Message `json:"messages"`
	Result   any           `json:"result,omitempty"`
}

func respond(w http.ResponseWriter, status int, result any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success:  true,
		Messages: []msg.Message{},
		Result:   result,
	})
}

func respondMessages(w http.ResponseWriter, status int, messages ...msg.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{Success: false, Messages: messages})
}

// respondError maps service errors to the envelope. Coded business errors
// keep HTTP 200 so API clients distinguish transport failures from domain
// outcomes by the envelope alone.
func respondError(w http.ResponseWriter, err error) {
	var me *msg.Error
	switch {
	case errors.As(err, &me):
		messages := []msg.Message{{Code: me.Code, Description: me.Description}}
		messages = append(messages, me.Fields...)
		respondMessages(w, http.StatusOK, messages...)
	case errors.Is(err, common.ErrorNotFound):
		respondMessages(w, http.StatusNotFound,
			msg.Message{Code: msg.CodeNotFound, Description: "Record was not found"})
	case errors.Is(err, common.ErrorForbidden):
		respondMessages(w, http.StatusForbidden,
			msg.Message{Code: msg.CodeAccessDenied, Description: "Access denied"})
	default:
		respondMessages(w, http.StatusInternalServerError,
			msg.Message{Code: msg.CodeInternalError, Description: "Internal server error"})
	}
}

// decodeJSON reads a request body into dst. A malformed body is a
// validation failure, reported through the envelope.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondMessages(w, http.StatusOK,
			msg.Message{Code: msg.CodeValidation, Description: "Malformed request body"})
		return false
	}
	return true
}

// readBody drains a raw upload body, rejecting bodies over limit instead
// of truncating them.
func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, bool) {
	body := http.MaxBytesReader(w, r.Body, limit)
	data, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(w, msg.Invalid(
				msg.FieldMessage("file", msg.CodeUploadTooLarge, "Upload exceeds the maximum allowed size")))
			return nil, false
		}
		respondError(w, msg.New(msg.CodeValidation, "Failed to read upload body"))
		return nil, false
	}
	return data, true
}
