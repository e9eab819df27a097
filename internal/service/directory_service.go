package service

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"

	"github.com/spec-kit/tutorial-service/internal/auth"
	"github.com/spec-kit/tutorial-service/internal/domain"
	"github.com/spec-kit/tutorial-service/internal/events"
	"github.com/spec-kit/tutorial-service/internal/repository"
	apperrors "github.com/spec-kit/tutorial-service/pkg/util"
)

// DirectoryService implements the users/items operations. Every call runs
// against the caller's storage session.
type DirectoryService struct {
	dispatcher events.Dispatcher
	bcryptCost int
	logger     *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(dispatcher events.Dispatcher, bcryptCost int, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{dispatcher: dispatcher, bcryptCost: bcryptCost, logger: logger}
}

// CreateUser registers a user unless the email is taken. The check and the
// insert are not atomic: a concurrent registration of the same email fails on
// the unique index and surfaces as an internal error.
func (s *DirectoryService) CreateUser(ctx context.Context, store repository.Store, email, password string) (*domain.User, error) {
	if _, err := store.Users().GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("Email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var created *domain.User
	err = store.WithTx(ctx, func(tx repository.Store) error {
		user := &domain.User{Email: email, HashedPassword: hash, IsActive: true}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		refreshed, err := tx.Users().GetByID(ctx, user.ID)
		if err != nil {
			return err
		}
		created = refreshed
		return nil
	})
	if err != nil {
		return nil, err
	}
	created.Items = []domain.Item{}

	s.publish(ctx, events.New(events.EventUserCreated, strconv.FormatInt(created.ID, 10),
		events.UserCreatedPayload{UserID: created.ID, Email: created.Email}))
	return created, nil
}

// ListUsers returns a page of users ordered by id, each with its items.
func (s *DirectoryService) ListUsers(ctx context.Context, store repository.Store, skip, limit int) ([]domain.User, error) {
	users, err := store.Users().List(ctx, skip, limit)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if err := s.loadItems(ctx, store, &users[i]); err != nil {
			return nil, err
		}
	}
	return users, nil
}

// GetUser returns one user with items.
func (s *DirectoryService) GetUser(ctx context.Context, store repository.Store, id int64) (*domain.User, error) {
	user, err := store.Users().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("User", map[string]any{"user_id": id})
		}
		return nil, err
	}
	if err := s.loadItems(ctx, store, user); err != nil {
		return nil, err
	}
	return user, nil
}

// CreateItemForUser inserts an item for ownerID. The owner is not looked up.
func (s *DirectoryService) CreateItemForUser(ctx context.Context, store repository.Store, ownerID int64, title string, description *string) (*domain.Item, error) {
	item := &domain.Item{Title: title, Description: description, OwnerID: ownerID}
	if err := store.Items().Create(ctx, item); err != nil {
		return nil, err
	}

	s.publish(ctx, events.New(events.EventItemCreated, strconv.FormatInt(item.ID, 10),
		events.ItemCreatedPayload{ItemID: item.ID, OwnerID: ownerID, Title: title}))
	return item, nil
}

// ListItems returns a page of items ordered by id.
func (s *DirectoryService) ListItems(ctx context.Context, store repository.Store, skip, limit int) ([]domain.Item, error) {
	return store.Items().List(ctx, skip, limit)
}

func (s *DirectoryService) loadItems(ctx context.Context, store repository.Store, user *domain.User) error {
	items, err := store.Items().ListByOwner(ctx, user.ID)
	if err != nil {
		return err
	}
	if items == nil {
		items = []domain.Item{}
	}
	user.Items = items
	return nil
}

func (s *DirectoryService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handlers failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}
