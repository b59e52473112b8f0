// Package service provides business logic for the application.
package service

import (
	"context"
	"log/slog"

	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/repository"
)

// RootPath is the page that lists images. Deletions redirect to it.
const RootPath = "/"

// UserStore persists user records.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateUserProfile(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error)
	DeleteUserByClerkID(ctx context.Context, clerkID string) (*model.User, error)
	IncrementCredits(ctx context.Context, id string, delta int) (*model.User, error)
}

// ImageStore persists image records.
type ImageStore interface {
	CreateImage(ctx context.Context, img *model.Image) error
	GetImageByID(ctx context.Context, id string) (*model.Image, error)
	UpdateImage(ctx context.Context, img *model.Image) error
	DeleteImage(ctx context.Context, id string) error
	ListImages(ctx context.Context, filter repository.ImageFilter) ([]*model.Image, int, error)
}

// TransactionStore persists transaction records.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, tx *model.Transaction) error
}

// Revalidator marks the cached renderings of a page path as stale.
type Revalidator interface {
	InvalidatePath(ctx context.Context, path string) error
}

// ViewCache stores rendered views per path. A cache.Cache satisfies it.
type ViewCache interface {
	Revalidator
	GetView(ctx context.Context, path, variant string, dst any) error
	SetView(ctx context.Context, path, variant string, v any) error
}

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// revalidate invalidates path and logs a failure. A stale view never fails
// the mutation that caused it.
func revalidate(ctx context.Context, r Revalidator, logger *slog.Logger, path string) {
	if r == nil || path == "" {
		return
	}
	if err := r.InvalidatePath(ctx, path); err != nil {
		logger.Warn("failed to invalidate path",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
	}
}
