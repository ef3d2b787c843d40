package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"landmarket/internal/core/port"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// readJSON decodes an optional JSON body into v. An empty body leaves v
// untouched.
func readJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

var errorStatus = []struct {
	err    error
	status int
	code   string
}{
	{port.ErrNoParcel, http.StatusBadRequest, "NoParcel"},
	{port.ErrEmptySelection, http.StatusBadRequest, "EmptySelection"},
	{port.ErrInvalidField, http.StatusBadRequest, "InvalidField"},
	{port.ErrUnknownChannel, http.StatusBadRequest, "UnknownChannel"},
	{port.ErrNoMode, http.StatusBadRequest, "NoMode"},
	{port.ErrInvalidMode, http.StatusBadRequest, "InvalidMode"},
	{port.ErrInvalidDate, http.StatusBadRequest, "InvalidDate"},
	{port.ErrNoLand, http.StatusBadRequest, "NoLand"},
	{port.ErrNoChannel, http.StatusBadRequest, "NoChannel"},
	{port.ErrNoDate, http.StatusBadRequest, "NoDate"},
	{port.ErrDateNotEligible, http.StatusBadRequest, "DateNotEligible"},
	{port.ErrNotMember, http.StatusForbidden, "NotMember"},
	{port.ErrPaymentDeclined, http.StatusPaymentRequired, "PaymentDeclined"},
	{port.ErrCampaignNotFound, http.StatusNotFound, "CampaignNotFound"},
	{port.ErrQuotaExceeded, http.StatusConflict, "QuotaExceeded"},
	{port.ErrAlreadyUnlocked, http.StatusConflict, "AlreadyUnlocked"},
	{port.ErrCartEmpty, http.StatusConflict, "CartEmpty"},
	{port.ErrDuplicateOrder, http.StatusConflict, "DuplicateOrder"},
	{port.ErrInvalidTransition, http.StatusConflict, "InvalidTransition"},
	{port.ErrVersionConflict, http.StatusConflict, "Conflict"},
}

// fail maps a use case error onto a status and client code. Unknown errors
// are logged and reported as 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var full *port.SlotFullError
	if errors.As(err, &full) {
		writeError(w, http.StatusConflict, full.Code(), err.Error())
		return
	}
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			writeError(w, e.status, e.code, err.Error())
			return
		}
	}
	h.logger.Error("request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	writeError(w, http.StatusInternalServerError, "Internal", "internal error")
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "BadRequest", message)
}
