// Command seed-user creates a local user record and optionally grants it
// credits, so the API can be exercised before Clerk webhooks are wired up.
//
//	go run scripts/seed-user.go -clerk-id user_dev -credits 100 -format json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/repository"
)

type output struct {
	ID            string `json:"id"`
	ClerkID       string `json:"clerk_id"`
	Email         string `json:"email"`
	CreditBalance int    `json:"credit_balance"`
	Created       bool   `json:"created"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		clerkID     = flag.String("clerk-id", "user_dev", "Clerk user id to seed")
		email       = flag.String("email", "", "User email (default <clerk-id>@imaginify.local)")
		credits     = flag.Int("credits", 0, "Credits to add to the balance (may be negative)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*clerkID) == "" {
		fmt.Fprintln(os.Stderr, "clerk-id is required")
		os.Exit(1)
	}
	if *email == "" {
		*email = *clerkID + "@imaginify.local"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, created, err := ensureUser(ctx, repo, *clerkID, *email)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

	if *credits != 0 {
		user, err = repo.IncrementCredits(ctx, user.ID, *credits)
		if err != nil {
			fmt.Fprintln(os.Stderr, "grant credits:", err)
			os.Exit(1)
		}
	}

	out := output{
		ID:            user.ID,
		ClerkID:       user.ClerkID,
		Email:         user.Email,
		CreditBalance: user.CreditBalance,
		Created:       created,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Println(out.ID)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}

func ensureUser(ctx context.Context, repo *repository.Repository, clerkID, email string) (*model.User, bool, error) {
	existing, err := repo.GetUserByClerkID(ctx, clerkID)
	if err == nil {
		if existing.Email != email {
			return nil, false, fmt.Errorf("user %s exists with different email: %s", clerkID, existing.Email)
		}
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("lookup user: %w", err)
	}

	user := &model.User{
		ClerkID:       clerkID,
		Email:         email,
		Username:      clerkID,
		PlanID:        model.DefaultPlanID,
		CreditBalance: model.DefaultCreditBalance,
	}
	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user: %w", err)
	}
	return user, true, nil
}
