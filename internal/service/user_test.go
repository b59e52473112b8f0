package service

import (
	"context"
	"errors"
	"testing"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/model"
)

func newTestUserService() (*UserService, *memStore, *memViews) {
	store := newMemStore()
	views := newMemViews()
	return NewUserService(store, views, nil), store, views
}

func TestUserService_Create(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "ada@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if user.ID == "" {
		t.Error("expected local id")
	}
	if user.PlanID != model.DefaultPlanID || user.CreditBalance != model.DefaultCreditBalance {
		t.Errorf("defaults not applied: plan=%d credits=%d", user.PlanID, user.CreditBalance)
	}
	if user.Username != "" || user.FirstName != "" || user.LastName != "" {
		t.Errorf("optional fields should default to empty: %+v", user)
	}
}

func TestUserService_CreateErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		input    CreateUserInput
		failWith error
		wantKind apperr.Kind
	}{
		{"missing clerk id", CreateUserInput{Email: "a@example.com"}, nil, apperr.KindInvalid},
		{"missing email", CreateUserInput{ClerkID: "user_1"}, nil, apperr.KindInvalid},
		{"store failure", CreateUserInput{ClerkID: "user_1", Email: "a@example.com"}, errStoreDown, apperr.KindPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, _ := newTestUserService()
			store.failWith = tt.failWith

			_, err := svc.Create(ctx, tt.input)
			if got := apperr.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf(err) = %q, want %q (err=%v)", got, tt.wantKind, err)
			}
		})
	}
}

func TestUserService_CreateDuplicateIsPersistenceError(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	_, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "b@example.com"})
	if !errors.Is(err, apperr.ErrPersistence) {
		t.Errorf("expected persistence error, got %v", err)
	}
}

func TestUserService_Lookups(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	byClerk, err := svc.GetByClerkID(ctx, "user_1")
	if err != nil || byClerk.ID != created.ID {
		t.Errorf("GetByClerkID() = %+v, %v", byClerk, err)
	}

	byID, err := svc.GetByID(ctx, created.ID)
	if err != nil || byID.ClerkID != "user_1" {
		t.Errorf("GetByID() = %+v, %v", byID, err)
	}

	if _, err := svc.GetByClerkID(ctx, "user_404"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if _, err := svc.GetByID(ctx, "missing"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	svc, _, views := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com", Username: "old"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := svc.Update(ctx, "user_1", UpdateUserInput{FirstName: "Ada", Photo: "https://img/ada.png"})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.FirstName != "Ada" || updated.Username != "" || updated.Photo != "https://img/ada.png" {
		t.Errorf("unexpected updated user: %+v", updated)
	}
	if len(views.invalidated) != 1 || views.invalidated[0] != RootPath {
		t.Errorf("invalidated = %v, want [/]", views.invalidated)
	}

	if _, err := svc.Update(ctx, "user_404", UpdateUserInput{}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if len(views.invalidated) != 1 {
		t.Errorf("failed update should not invalidate, got %v", views.invalidated)
	}
}

func TestUserService_DeleteInvalidatesRoot(t *testing.T) {
	svc, _, views := newTestUserService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	deleted, err := svc.Delete(ctx, "user_1")
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if deleted.ClerkID != "user_1" {
		t.Errorf("deleted = %+v", deleted)
	}
	if len(views.invalidated) != 1 || views.invalidated[0] != RootPath {
		t.Errorf("invalidated = %v, want [/]", views.invalidated)
	}
}

func TestUserService_DeleteUnknown(t *testing.T) {
	svc, _, views := newTestUserService()

	_, err := svc.Delete(context.Background(), "user_404")
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
	if len(views.invalidated) != 0 {
		t.Errorf("nothing should be invalidated on failure, got %v", views.invalidated)
	}
}

func TestUserService_DeleteSurvivesInvalidationFailure(t *testing.T) {
	svc, _, views := newTestUserService()
	views.failInvalid = errors.New("redis down")
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := svc.Delete(ctx, "user_1"); err != nil {
		t.Errorf("Delete should succeed when invalidation fails, got %v", err)
	}
}

func TestUserService_UpdateCreditsRoundTrip(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	down, err := svc.UpdateCredits(ctx, user.ID, -10)
	if err != nil {
		t.Fatalf("UpdateCredits(-10) failed: %v", err)
	}
	if down.CreditBalance != user.CreditBalance-10 {
		t.Errorf("balance = %d, want %d", down.CreditBalance, user.CreditBalance-10)
	}

	up, err := svc.UpdateCredits(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("UpdateCredits(+10) failed: %v", err)
	}
	if up.CreditBalance != user.CreditBalance {
		t.Errorf("balance after round trip = %d, want %d", up.CreditBalance, user.CreditBalance)
	}
}

func TestUserService_UpdateCreditsAllowsNegative(t *testing.T) {
	svc, _, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Create(ctx, CreateUserInput{ClerkID: "user_1", Email: "a@example.com"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := svc.UpdateCredits(ctx, user.ID, -25)
	if err != nil {
		t.Fatalf("UpdateCredits failed: %v", err)
	}
	if got.CreditBalance != -15 {
		t.Errorf("balance = %d, want -15", got.CreditBalance)
	}

	if _, err := svc.UpdateCredits(ctx, "missing", 1); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}
