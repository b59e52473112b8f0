package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/auth"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/payment"
	"github.com/imaginify/imaginify/internal/service"
	"github.com/imaginify/imaginify/internal/webhook"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withCaller(ctx context.Context, clerkID string) context.Context {
	return auth.WithClaims(ctx, &auth.Claims{Subject: clerkID})
}

type fakeUsers struct {
	users map[string]*model.User
}

func (f *fakeUsers) GetByClerkID(ctx context.Context, clerkID string) (*model.User, error) {
	if u, ok := f.users[clerkID]; ok {
		return u, nil
	}
	return nil, apperr.NotFound("user.get", "user not found")
}

type fakeSyncer struct {
	result *service.SyncResult
	err    error
	got    *webhook.Event
}

func (f *fakeSyncer) HandleEvent(ctx context.Context, evt *webhook.Event) (*service.SyncResult, error) {
	f.got = evt
	return f.result, f.err
}

type fakeEvents struct {
	event *payment.Event
	err   error
	sig   string
}

func (f *fakeEvents) ParseEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	f.sig = signatureHeader
	return f.event, f.err
}

type fakeTransactions struct {
	tx    *model.Transaction
	err   error
	input service.CreateTransactionInput
	calls int
}

func (f *fakeTransactions) CreateTransaction(ctx context.Context, input service.CreateTransactionInput) (*model.Transaction, error) {
	f.calls++
	f.input = input
	return f.tx, f.err
}

type fakeImages struct {
	added   service.AddImageInput
	updated service.UpdateImageInput
	listed  service.ListImagesInput
	deleted string
	image   *model.Image
	page    *model.ImagePage
	err     error
}

func (f *fakeImages) Add(ctx context.Context, input service.AddImageInput) (*model.Image, error) {
	f.added = input
	if f.err != nil {
		return nil, f.err
	}
	img := *input.Image
	img.ID = "img-1"
	img.AuthorID = input.UserID
	return &img, nil
}

func (f *fakeImages) Update(ctx context.Context, input service.UpdateImageInput) (*model.Image, error) {
	f.updated = input
	if f.err != nil {
		return nil, f.err
	}
	return input.Image, nil
}

func (f *fakeImages) Delete(ctx context.Context, imageID string) string {
	f.deleted = imageID
	return service.RootPath
}

func (f *fakeImages) GetByID(ctx context.Context, imageID string) (*model.Image, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

func (f *fakeImages) List(ctx context.Context, input service.ListImagesInput) (*model.ImagePage, error) {
	f.listed = input
	if f.err != nil {
		return nil, f.err
	}
	return f.page, nil
}

type fakeCheckout struct {
	url   string
	err   error
	input service.CheckoutInput
}

func (f *fakeCheckout) Checkout(ctx context.Context, input service.CheckoutInput) (string, error) {
	f.input = input
	return f.url, f.err
}
