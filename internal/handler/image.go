package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/imaginify/imaginify/internal/handler/dto"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/service"
)

// ImageManager is the image record surface used by ImageHandler.
type ImageManager interface {
	Add(ctx context.Context, input service.AddImageInput) (*model.Image, error)
	Update(ctx context.Context, input service.UpdateImageInput) (*model.Image, error)
	Delete(ctx context.Context, imageID string) string
	GetByID(ctx context.Context, imageID string) (*model.Image, error)
	List(ctx context.Context, input service.ListImagesInput) (*model.ImagePage, error)
}

// ImageHandler handles image record requests.
type ImageHandler struct {
	images ImageManager
	users  UserReader
	logger *slog.Logger
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(images ImageManager, users UserReader, logger *slog.Logger) *ImageHandler {
	return &ImageHandler{
		images: images,
		users:  users,
		logger: logger,
	}
}

// Create handles POST /api/v1/images.
func (h *ImageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	caller, err := currentUser(r.Context(), h.users)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	img, err := h.images.Add(r.Context(), service.AddImageInput{
		Image:  req.ToImage(""),
		UserID: caller.ID,
		Path:   req.Path,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, img)
}

// Update handles PUT /api/v1/images/{id}.
func (h *ImageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req dto.ImageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return
	}

	caller, err := currentUser(r.Context(), h.users)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	img, err := h.images.Update(r.Context(), service.UpdateImageInput{
		Image:  req.ToImage(id),
		UserID: caller.ID,
		Path:   req.Path,
	})
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

// Delete handles DELETE /api/v1/images/{id}. The caller is always sent to
// the page the service returns.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	path := h.images.Delete(r.Context(), chi.URLParam(r, "id"))
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// Get handles GET /api/v1/images/{id}.
func (h *ImageHandler) Get(w http.ResponseWriter, r *http.Request) {
	img, err := h.images.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, img)
}

// List handles GET /api/v1/images.
func (h *ImageHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	input := service.ListImagesInput{
		SearchQuery: q.Get("query"),
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "limit must be a positive integer")
			return
		}
		input.Limit = n
	}
	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "page must be a positive integer")
			return
		}
		input.Page = n
	}

	page, err := h.images.List(r.Context(), input)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}
