package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/auth"
	"github.com/imaginify/imaginify/internal/model"
)

// UserReader looks up local user records.
type UserReader interface {
	GetByClerkID(ctx context.Context, clerkID string) (*model.User, error)
}

// UserHandler handles user record requests.
type UserHandler struct {
	users  UserReader
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users UserReader, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// Me handles GET /api/v1/users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r.Context(), h.users)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Get handles GET /api/v1/users/{clerkId}.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	clerkID := chi.URLParam(r, "clerkId")
	if clerkID == "" {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "clerk id is required")
		return
	}

	user, err := h.users.GetByClerkID(r.Context(), clerkID)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// currentUser resolves the local record of the authenticated caller.
func currentUser(ctx context.Context, users UserReader) (*model.User, error) {
	clerkID := auth.ClerkIDFromContext(ctx)
	if clerkID == "" {
		return nil, apperr.Unauthorized("user.current", "authentication required")
	}
	return users.GetByClerkID(ctx, clerkID)
}
