package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"ricavi/internal/services"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(ctx, "Failed to encode JSON response", "error", err)
	}
}

// statusFor maps service errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest
	case services.IsInputError(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides internal error details from clients.
func publicMessage(err error, status int) string {
	if status >= 500 {
		return http.StatusText(status)
	}
	return err.Error()
}

func (s *Server) writeJSONError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := statusFor(err)
	if status >= 500 {
		s.events.LogError(r.Context(), "Request failed", err, operation, nil)
	}
	writeJSON(r.Context(), w, status, errorBody{Error: publicMessage(err, status)})
}

func (s *Server) writeTextError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	status := statusFor(err)
	if status >= 500 {
		s.events.LogError(r.Context(), "Request failed", err, operation, nil)
	}
	http.Error(w, publicMessage(err, status), status)
}
