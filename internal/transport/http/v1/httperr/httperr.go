package httperr

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/shop/internal/service/models/apperr"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Status maps an error to its HTTP status code.
func Status(err error) int {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrAlreadyExists),
		errors.Is(err, apperr.ErrProductsUnavailable),
		errors.Is(err, apperr.ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrTransactionConflict):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func code(err error) string {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return "validation_failed"
	case errors.Is(err, apperr.ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, apperr.ErrForbidden):
		return "forbidden"
	case errors.Is(err, apperr.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperr.ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, apperr.ErrProductsUnavailable):
		return "products_unavailable"
	case errors.Is(err, apperr.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, apperr.ErrTransactionConflict):
		return "transaction_conflict"
	default:
		return "internal"
	}
}

// Write sends err as a JSON error response. Internal errors are logged and
// their text is not exposed.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	resp := ErrorResponse{Error: code(err), Message: err.Error()}

	var validationErr *apperr.ValidationError
	if errors.As(err, &validationErr) {
		resp.Field = validationErr.Field
	}

	var stockErr *apperr.InsufficientStockError
	if errors.As(err, &stockErr) {
		resp.Details = stockErr
	}

	switch status {
	case http.StatusInternalServerError:
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		resp.Message = http.StatusText(status)
	case http.StatusServiceUnavailable:
		slog.WarnContext(r.Context(), "Request aborted by store conflict", "path", r.URL.Path, "error", err)
		w.Header().Set("Retry-After", "1")
	}

	WriteJSON(w, r, status, resp)
}

// WriteJSON sends v with the given status.
func WriteJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Error sending response", "error", err)
	}
}

// Message is a body carrying only a human readable message.
type Message struct {
	Message string `json:"message"`
}
