//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	user := testutil.NewTestUser(t, "user_create")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if user.ID == "" {
		t.Fatal("expected ID to be generated")
	}

	byClerk, err := repo.GetUserByClerkID(ctx, "user_create")
	if err != nil {
		t.Fatalf("GetUserByClerkID failed: %v", err)
	}
	if byClerk.ID != user.ID || byClerk.Email != user.Email {
		t.Errorf("unexpected user: %+v", byClerk)
	}

	byID, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID failed: %v", err)
	}
	if byID.CreditBalance != model.DefaultCreditBalance {
		t.Errorf("CreditBalance = %d, want %d", byID.CreditBalance, model.DefaultCreditBalance)
	}
}

func TestIntegrationUserRepository_DuplicateClerkID(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	if err := repo.CreateUser(ctx, testutil.NewTestUser(t, "dup")); err != nil {
		t.Fatalf("CreateUser (first) failed: %v", err)
	}

	second := testutil.NewTestUser(t, "dup")
	second.Email = "other@example.com"
	if err := repo.CreateUser(ctx, second); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestIntegrationUserRepository_UpdateAndDelete(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	user := testutil.NewTestUser(t, "user_upd")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	updated, err := repo.UpdateUserProfile(ctx, "user_upd", model.UserProfile{FirstName: "Ada", LastName: "Lovelace"})
	if err != nil {
		t.Fatalf("UpdateUserProfile failed: %v", err)
	}
	if updated.FirstName != "Ada" || updated.Username != "" {
		t.Errorf("unexpected updated user: %+v", updated)
	}

	if _, err := repo.UpdateUserProfile(ctx, "missing", model.UserProfile{}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}

	deleted, err := repo.DeleteUserByClerkID(ctx, "user_upd")
	if err != nil {
		t.Fatalf("DeleteUserByClerkID failed: %v", err)
	}
	if deleted.ID != user.ID {
		t.Errorf("deleted ID = %s, want %s", deleted.ID, user.ID)
	}

	if _, err := repo.DeleteUserByClerkID(ctx, "user_upd"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound on second delete, got %v", err)
	}
}

func TestIntegrationUserRepository_IncrementCreditsRoundTrip(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	user := testutil.NewTestUser(t, "credits")
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	down, err := repo.IncrementCredits(ctx, user.ID, -10)
	if err != nil {
		t.Fatalf("IncrementCredits(-10) failed: %v", err)
	}
	if down.CreditBalance != user.CreditBalance-10 {
		t.Errorf("balance after -10 = %d", down.CreditBalance)
	}

	up, err := repo.IncrementCredits(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("IncrementCredits(+10) failed: %v", err)
	}
	if up.CreditBalance != user.CreditBalance {
		t.Errorf("balance after round trip = %d, want %d", up.CreditBalance, user.CreditBalance)
	}

	if _, err := repo.IncrementCredits(ctx, "missing", 1); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

// ============================================================================
// Image Repository Integration Tests
// ============================================================================

func TestIntegrationImageRepository_CRUD(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	author := testutil.NewTestUser(t, "author")
	if err := repo.CreateUser(ctx, author); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	img := testutil.NewTestImage(t, "Sunset", author.ID)
	if err := repo.CreateImage(ctx, img); err != nil {
		t.Fatalf("CreateImage failed: %v", err)
	}

	got, err := repo.GetImageByID(ctx, img.ID)
	if err != nil {
		t.Fatalf("GetImageByID failed: %v", err)
	}
	if got.Author == nil || got.Author.ClerkID != "author" {
		t.Errorf("expected joined author, got %+v", got.Author)
	}
	if string(got.Config) != `{"restore": true}` && string(got.Config) != `{"restore":true}` {
		t.Errorf("unexpected config: %s", got.Config)
	}

	got.Title = "Sunrise"
	if err := repo.UpdateImage(ctx, got); err != nil {
		t.Fatalf("UpdateImage failed: %v", err)
	}

	if err := repo.DeleteImage(ctx, img.ID); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}
	if _, err := repo.GetImageByID(ctx, img.ID); !errors.Is(err, ErrImageNotFound) {
		t.Errorf("expected ErrImageNotFound, got %v", err)
	}
}

func TestIntegrationImageRepository_CreateUnknownAuthor(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	img := testutil.NewTestImage(t, "Orphan", "missing-author")
	if err := repo.CreateImage(ctx, img); !errors.Is(err, ErrAuthorNotFound) {
		t.Errorf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestIntegrationImageRepository_ListPaging(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	author := testutil.NewTestUser(t, "lister")
	if err := repo.CreateUser(ctx, author); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for i := 0; i < 20; i++ {
		img := testutil.NewTestImage(t, fmt.Sprintf("Photo %02d", i), author.ID)
		if err := repo.CreateImage(ctx, img); err != nil {
			t.Fatalf("CreateImage %d failed: %v", i, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	images, total, err := repo.ListImages(ctx, ImageFilter{Limit: 9, Offset: 9})
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if total != 20 {
		t.Errorf("total = %d, want 20", total)
	}
	if len(images) != 9 {
		t.Fatalf("len(images) = %d, want 9", len(images))
	}
	if images[0].Title != "Photo 10" {
		t.Errorf("first image on page 2 = %q, want %q", images[0].Title, "Photo 10")
	}

	found, total, err := repo.ListImages(ctx, ImageFilter{Search: "photo 1", Limit: 9})
	if err != nil {
		t.Fatalf("ListImages search failed: %v", err)
	}
	if total != 10 || len(found) != 9 {
		t.Errorf("search total = %d, len = %d", total, len(found))
	}
}

// ============================================================================
// Transaction Repository Integration Tests
// ============================================================================

func TestIntegrationTransactionRepository_Create(t *testing.T) {
	ctx, repo := newStoreTestEnv(t)

	buyer := testutil.NewTestUser(t, "buyer")
	if err := repo.CreateUser(ctx, buyer); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	tx := &model.Transaction{StripeID: "cs_test_1", Amount: 40, Plan: "Pro Package", Credits: 120, BuyerID: buyer.ID}
	if err := repo.CreateTransaction(ctx, tx); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}

	again := &model.Transaction{StripeID: "cs_test_1", Amount: 40, Plan: "Pro Package", Credits: 120, BuyerID: buyer.ID}
	if err := repo.CreateTransaction(ctx, again); !errors.Is(err, ErrTransactionExists) {
		t.Errorf("expected ErrTransactionExists, got %v", err)
	}
}

func newStoreTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, repo
}
