package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/repository"
)

// UserService handles user record business logic.
type UserService struct {
	store       UserStore
	revalidator Revalidator
	logger      *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(store UserStore, revalidator Revalidator, logger *slog.Logger) *UserService {
	return &UserService{
		store:       store,
		revalidator: revalidator,
		logger:      defaultLogger(logger),
	}
}

// CreateUserInput defines input for creating a user.
type CreateUserInput struct {
	ClerkID   string
	Email     string
	Username  string
	Photo     string
	FirstName string
	LastName  string
}

// UpdateUserInput holds the profile fields overwritten on update.
type UpdateUserInput struct {
	FirstName string
	LastName  string
	Username  string
	Photo     string
}

// Create persists a new user with the default plan and credit balance.
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*model.User, error) {
	const op = "user.create"

	if strings.TrimSpace(input.ClerkID) == "" {
		return nil, apperr.Invalidf(op, "clerk id is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, apperr.Invalidf(op, "email is required")
	}

	user := &model.User{
		ClerkID:       input.ClerkID,
		Email:         input.Email,
		Username:      input.Username,
		Photo:         input.Photo,
		FirstName:     input.FirstName,
		LastName:      input.LastName,
		PlanID:        model.DefaultPlanID,
		CreditBalance: model.DefaultCreditBalance,
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		s.logger.Error("failed to create user",
			slog.String("clerk_id", input.ClerkID),
			slog.String("error", err.Error()),
		)
		return nil, apperr.Persistence(op, err)
	}

	return user, nil
}

// GetByClerkID returns the user mirrored from a Clerk account.
func (s *UserService) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	user, err := s.store.GetUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, userError("user.get_by_clerk_id", err)
	}
	return user, nil
}

// GetByID returns the user with the given local id.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, userError("user.get_by_id", err)
	}
	return user, nil
}

// Update overwrites the profile fields of the user with clerkID and
// invalidates the root page, whose listings carry author names.
func (s *UserService) Update(ctx context.Context, clerkID string, input UpdateUserInput) (*model.User, error) {
	user, err := s.store.UpdateUserProfile(ctx, clerkID, model.UserProfile{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Username:  input.Username,
		Photo:     input.Photo,
	})
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("failed to update user",
				slog.String("clerk_id", clerkID),
				slog.String("error", err.Error()),
			)
		}
		return nil, userError("user.update", err)
	}
	revalidate(ctx, s.revalidator, s.logger, RootPath)
	return user, nil
}

// Delete removes the user with clerkID and invalidates the root page.
// Images the user authored keep existing without an author.
func (s *UserService) Delete(ctx context.Context, clerkID string) (*model.User, error) {
	user, err := s.store.DeleteUserByClerkID(ctx, clerkID)
	if err != nil {
		return nil, userError("user.delete", err)
	}

	revalidate(ctx, s.revalidator, s.logger, RootPath)

	return user, nil
}

// UpdateCredits adds delta to the user's credit balance in one atomic step.
// The balance may go negative.
func (s *UserService) UpdateCredits(ctx context.Context, userID string, delta int) (*model.User, error) {
	user, err := s.store.IncrementCredits(ctx, userID, delta)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Error("failed to update credits",
				slog.String("user_id", userID),
				slog.Int("delta", delta),
				slog.String("error", err.Error()),
			)
		}
		return nil, userError("user.update_credits", err)
	}
	return user, nil
}

func userError(op string, err error) error {
	if errors.Is(err, repository.ErrUserNotFound) {
		return apperr.NotFound(op, "user not found")
	}
	return apperr.Persistence(op, err)
}
