// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/handler/dto"
)

// Handler serves the service banner and router fallbacks.
type Handler struct {
	version string
}

// New creates a new Handler instance.
func New(version string) *Handler {
	return &Handler{version: version}
}

// Hello is a simple hello endpoint for testing.
// GET /
func (h *Handler) Hello(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"message": "Hello from Imaginify!",
		"version": h.version,
	}
	writeJSON(w, http.StatusOK, response)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// writeText writes a plain-text response.
func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// statusFor maps an error kind to an HTTP status and error code.
func statusFor(kind apperr.Kind) (int, string) {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound, "NOT_FOUND"
	case apperr.KindUnauthorized:
		return http.StatusForbidden, "FORBIDDEN"
	case apperr.KindInvalid:
		return http.StatusBadRequest, "INVALID_REQUEST"
	case apperr.KindSignatureInvalid:
		return http.StatusBadRequest, "INVALID_SIGNATURE"
	case apperr.KindUpstream:
		return http.StatusBadGateway, "UPSTREAM_ERROR"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status, code := statusFor(apperr.KindOf(err))

	if status >= http.StatusInternalServerError {
		logger.Error("request failed", slog.String("code", code), slog.String("error", err.Error()))
	}

	message := "An internal error occurred"
	var appErr *apperr.Error
	if errors.As(err, &appErr) && appErr.Msg != "" && status != http.StatusInternalServerError {
		message = appErr.Msg
	} else if status != http.StatusInternalServerError {
		message = http.StatusText(status)
	}

	writeError(w, status, code, message)
}
