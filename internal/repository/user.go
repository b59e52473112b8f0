package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/imaginify/imaginify/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

const userColumns = `id, clerk_id, email, username, photo, first_name, last_name, plan_id, credit_balance, created_at, updated_at`

// CreateUser inserts a new user. ID, plan and credit defaults are filled in
// when zero.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	if user.PlanID == 0 {
		user.PlanID = model.DefaultPlanID
	}

	query := `
		INSERT INTO users (id, clerk_id, email, username, photo, first_name, last_name, plan_id, credit_balance)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.ClerkID,
		user.Email,
		user.Username,
		user.Photo,
		user.FirstName,
		user.LastName,
		user.PlanID,
		user.CreditBalance,
	).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByClerkID retrieves a user by identity provider subject id.
func (r *Repository) GetUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by clerk ID: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by local id.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// UpdateUserProfile overwrites the profile fields of the user with clerkID
// and returns the updated record.
func (r *Repository) UpdateUserProfile(ctx context.Context, clerkID string, profile model.UserProfile) (*model.User, error) {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, username = $4, photo = $5, updated_at = NOW()
		WHERE clerk_id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query,
		clerkID,
		profile.FirstName,
		profile.LastName,
		profile.Username,
		profile.Photo,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return user, nil
}

// DeleteUserByClerkID removes the user with clerkID and returns the deleted record.
func (r *Repository) DeleteUserByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	query := `DELETE FROM users WHERE clerk_id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, clerkID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}

	return user, nil
}

// IncrementCredits atomically adds delta to the user's credit balance.
// A negative delta consumes credits; the balance is not clamped.
func (r *Repository) IncrementCredits(ctx context.Context, id string, delta int) (*model.User, error) {
	query := `
		UPDATE users
		SET credit_balance = credit_balance + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, id, delta))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to increment credits: %w", err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.ClerkID,
		&user.Email,
		&user.Username,
		&user.Photo,
		&user.FirstName,
		&user.LastName,
		&user.PlanID,
		&user.CreditBalance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
