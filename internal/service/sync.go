package service

import (
	"context"
	"log/slog"

	"github.com/imaginify/imaginify/internal/apperr"
	"github.com/imaginify/imaginify/internal/metrics"
	"github.com/imaginify/imaginify/internal/model"
	"github.com/imaginify/imaginify/internal/webhook"
)

// MetadataWriter writes public metadata onto an identity provider account.
// An identity.Client satisfies it.
type MetadataWriter interface {
	UpdateUserMetadata(ctx context.Context, userID string, publicMetadata map[string]any) error
}

// SyncResult is the outcome of one lifecycle event.
type SyncResult struct {
	// Handled is false for event types the service ignores.
	Handled bool
	User    *model.User
}

// SyncService mirrors identity provider lifecycle events onto user records.
type SyncService struct {
	users    *UserService
	identity MetadataWriter
	logger   *slog.Logger
	metrics  metrics.Recorder
}

// NewSyncService creates a new SyncService.
func NewSyncService(users *UserService, identity MetadataWriter, logger *slog.Logger, recorder metrics.Recorder) *SyncService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SyncService{
		users:    users,
		identity: identity,
		logger:   defaultLogger(logger),
		metrics:  recorder,
	}
}

// HandleEvent applies a verified lifecycle event.
func (s *SyncService) HandleEvent(ctx context.Context, evt *webhook.Event) (*SyncResult, error) {
	switch evt.Type {
	case webhook.EventUserCreated:
		return s.userCreated(ctx, evt)
	case webhook.EventUserUpdated:
		return s.userUpdated(ctx, evt)
	case webhook.EventUserDeleted:
		return s.userDeleted(ctx, evt)
	default:
		s.logger.Debug("ignoring webhook event", slog.String("type", string(evt.Type)))
		return &SyncResult{Handled: false}, nil
	}
}

func (s *SyncService) userCreated(ctx context.Context, evt *webhook.Event) (*SyncResult, error) {
	const op = "sync.user_created"

	data, err := evt.UserData()
	if err != nil {
		return nil, apperr.Invalidf(op, "malformed user payload: %v", err)
	}

	email, ok := data.PrimaryEmail()
	if !ok {
		return nil, apperr.Invalidf(op, "user %s has no email address", data.ID)
	}

	user, err := s.users.Create(ctx, CreateUserInput{
		ClerkID:   data.ID,
		Email:     email,
		Username:  webhook.StringValue(data.Username),
		Photo:     data.ImageURL,
		FirstName: webhook.StringValue(data.FirstName),
		LastName:  webhook.StringValue(data.LastName),
	})
	if err != nil {
		return nil, err
	}

	if s.identity != nil {
		err := s.identity.UpdateUserMetadata(ctx, user.ClerkID, map[string]any{"userId": user.ID})
		if err != nil {
			s.logger.Error("failed to write user metadata",
				slog.String("clerk_id", user.ClerkID),
				slog.String("user_id", user.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.metrics.IncUserSynced("created")
	return &SyncResult{Handled: true, User: user}, nil
}

func (s *SyncService) userUpdated(ctx context.Context, evt *webhook.Event) (*SyncResult, error) {
	data, err := evt.UserData()
	if err != nil {
		return nil, apperr.Invalidf("sync.user_updated", "malformed user payload: %v", err)
	}

	user, err := s.users.Update(ctx, data.ID, UpdateUserInput{
		FirstName: webhook.StringValue(data.FirstName),
		LastName:  webhook.StringValue(data.LastName),
		Username:  webhook.StringValue(data.Username),
		Photo:     data.ImageURL,
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserSynced("updated")
	return &SyncResult{Handled: true, User: user}, nil
}

func (s *SyncService) userDeleted(ctx context.Context, evt *webhook.Event) (*SyncResult, error) {
	data, err := evt.DeletedData()
	if err != nil {
		return nil, apperr.Invalidf("sync.user_deleted", "malformed deletion payload: %v", err)
	}

	user, err := s.users.Delete(ctx, data.ID)
	if err != nil {
		return nil, err
	}

	s.metrics.IncUserSynced("deleted")
	return &SyncResult{Handled: true, User: user}, nil
}
