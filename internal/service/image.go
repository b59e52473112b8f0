package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/cache"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/repository"
)

// Listing defaults.
const (
	DefaultImageLimit = 9
	MaxImageLimit     = 100
)

// ImageService handles image record business logic.
type ImageService struct {
	images  ImageStore
	users   UserStore
	views   ViewCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewImageService creates a new ImageService. A nil views disables listing
// cache and path invalidation.
func NewImageService(images ImageStore, users UserStore, views ViewCache, logger *slog.Logger, recorder metrics.Recorder) *ImageService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ImageService{
		images:  images,
		users:   users,
		views:   views,
		logger:  defaultLogger(logger),
		metrics: recorder,
	}
}

// AddImageInput defines input for adding an image.
type AddImageInput struct {
	Image  *model.Image
	UserID string
	Path   string
}

// UpdateImageInput defines input for updating an image.
type UpdateImageInput struct {
	Image  *model.Image
	UserID string
	Path   string
}

// ListImagesInput defines listing filters and paging.
type ListImagesInput struct {
	Limit       int
	Page        int
	SearchQuery string
}

// Add persists img authored by the user with local id UserID and
// invalidates Path along with the root listing.
func (s *ImageService) Add(ctx context.Context, input AddImageInput) (*model.Image, error) {
	const op = "image.add"

	if input.Image == nil {
		return nil, apperr.Invalidf(op, "image is required")
	}
	if err := validateImage(op, input.Image); err != nil {
		return nil, err
	}

	author, err := s.users.GetUserByID(ctx, input.UserID)
	if err != nil {
		return nil, userError(op, err)
	}

	img := *input.Image
	img.ID = ""
	img.AuthorID = author.ID

	if err := s.images.CreateImage(ctx, &img); err != nil {
		if errors.Is(err, repository.ErrAuthorNotFound) {
			return nil, apperr.NotFound(op, "user not found")
		}
		s.logger.Error("failed to create image",
			slog.String("author_id", author.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Persistence(op, err)
	}
	img.Author = authorOf(author)

	s.metrics.IncImageCreated()
	s.revalidate(ctx, input.Path)

	return &img, nil
}

// Update overwrites an image owned by the user with local id UserID. A
// missing image or a different author yields an Unauthorized error and the
// stored record is left untouched.
func (s *ImageService) Update(ctx context.Context, input UpdateImageInput) (*model.Image, error) {
	const op = "image.update"

	if input.Image == nil || input.Image.ID == "" {
		return nil, apperr.Invalidf(op, "image id is required")
	}
	if err := validateImage(op, input.Image); err != nil {
		return nil, err
	}

	existing, err := s.images.GetImageByID(ctx, input.Image.ID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, apperr.Unauthorized(op, "unauthorized or image not found")
		}
		return nil, apperr.Persistence(op, err)
	}

	if input.UserID == "" || existing.AuthorID != input.UserID {
		return nil, apperr.Unauthorized(op, "unauthorized or image not found")
	}

	img := *input.Image
	img.AuthorID = existing.AuthorID
	img.Author = existing.Author
	img.CreatedAt = existing.CreatedAt

	if err := s.images.UpdateImage(ctx, &img); err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, apperr.Unauthorized(op, "unauthorized or image not found")
		}
		s.logger.Error("failed to update image",
			slog.String("image_id", img.ID),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Persistence(op, err)
	}

	s.metrics.IncImageUpdated()
	s.revalidate(ctx, input.Path)

	return &img, nil
}

// Delete removes an image. Failures are logged and swallowed; the caller is
// always sent back to the root page.
func (s *ImageService) Delete(ctx context.Context, imageID string) string {
	if err := s.images.DeleteImage(ctx, imageID); err != nil {
		s.logger.Warn("failed to delete image",
			slog.String("image_id", imageID),
			slog.String("error", err.Error()),
		)
		return RootPath
	}

	s.metrics.IncImageDeleted()
	s.revalidate(ctx, RootPath)

	return RootPath
}

// GetByID returns an image with its author fields.
func (s *ImageService) GetByID(ctx context.Context, imageID string) (*model.Image, error) {
	img, err := s.images.GetImageByID(ctx, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrImageNotFound) {
			return nil, apperr.NotFound("image.get", "image not found")
		}
		return nil, apperr.Persistence("image.get", err)
	}
	return img, nil
}

// List returns one page of images, most recently updated first. Pages are
// cached under the root path until it is invalidated.
func (s *ImageService) List(ctx context.Context, input ListImagesInput) (*model.ImagePage, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveImageListDuration(time.Since(start))
	}()

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultImageLimit
	}
	if limit > MaxImageLimit {
		limit = MaxImageLimit
	}
	page := input.Page
	if page <= 0 {
		page = 1
	}
	query := strings.TrimSpace(input.SearchQuery)

	variant := listVariant(limit, page, query)
	if s.views != nil {
		var cached model.ImagePage
		err := s.views.GetView(ctx, RootPath, variant, &cached)
		if err == nil {
			s.metrics.IncImageListCacheHit()
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("image list cache read failed", slog.String("error", err.Error()))
		}
		s.metrics.IncImageListCacheMiss()
	}

	images, total, err := s.images.ListImages(ctx, repository.ImageFilter{
		Search: query,
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		s.logger.Error("failed to list images", slog.String("error", err.Error()))
		return nil, apperr.Persistence("image.list", err)
	}

	result := &model.ImagePage{
		Data:      images,
		TotalPage: TotalPages(total, limit),
	}

	if s.views != nil {
		if err := s.views.SetView(ctx, RootPath, variant, result); err != nil {
			s.logger.Warn("image list cache write failed", slog.String("error", err.Error()))
		}
	}

	return result, nil
}

// TotalPages returns ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// revalidate invalidates the root listing and, when different, path. Every
// listing is cached under the root path, so any image write must bump it.
func (s *ImageService) revalidate(ctx context.Context, path string) {
	if s.views == nil {
		return
	}
	revalidate(ctx, s.views, s.logger, RootPath)
	if path != "" && path != RootPath {
		revalidate(ctx, s.views, s.logger, path)
	}
}

func validateImage(op string, img *model.Image) error {
	if strings.TrimSpace(img.Title) == "" {
		return apperr.Invalidf(op, "title is required")
	}
	if !img.TransformationType.IsValid() {
		return apperr.Invalidf(op, "unsupported transformation type %q", img.TransformationType)
	}
	return nil
}

func authorOf(u *model.User) *model.Author {
	return &model.Author{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		ClerkID:   u.ClerkID,
	}
}

func listVariant(limit, page int, query string) string {
	return fmt.Sprintf("limit=%d&page=%d&q=%s", limit, page, strings.ToLower(query))
}
