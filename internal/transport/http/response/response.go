package response

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/corray333/backend-labs/pos/internal/service/models/poserr"
)

// envelope is the body of every JSON response.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// JSON writes a successful envelope.
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Success: true, Data: data})
}

// Message writes a successful envelope with a message and no data.
func Message(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: true, Message: message})
}

// Error writes a failed envelope.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Success: false, Error: message})
}

// ServiceError maps service errors to status codes. Unknown errors become 500 with a generic message.
func ServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "path", r.URL.Path, "error", err)
		Error(w, status, "Internal server error")

		return
	}

	Error(w, status, err.Error())
}

// StatusFor returns the HTTP status for err.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, poserr.ErrOrderNotFound),
		errors.Is(err, poserr.ErrProductNotFound),
		errors.Is(err, poserr.ErrTableNotFound):
		return http.StatusNotFound
	case errors.Is(err, poserr.ErrTableExists),
		errors.Is(err, poserr.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, poserr.ErrInvalidStatus),
		errors.Is(err, poserr.ErrInvalidCategory),
		errors.Is(err, poserr.ErrEmptyOrder),
		errors.Is(err, poserr.ErrInvalidQuantity),
		errors.Is(err, poserr.ErrInvalidPrice):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error sending response", "error", err)
	}
}
