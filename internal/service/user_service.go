package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/events"
	"taskmanager/internal/repository"

	"go.uber.org/zap"
)

type UpdateUserInput struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type UserService struct {
	users     repository.UserStore
	publisher events.Publisher
	log       *zap.Logger
}

func NewUserService(users repository.UserStore, publisher events.Publisher, log *zap.Logger) *UserService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &UserService{users: users, publisher: publisher, log: log}
}

func (s *UserService) List(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []*domain.User{}
	}
	return users, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	if in.Username == "" || in.Role == "" {
		return nil, domain.InvalidInput(domain.MsgInvalidInput)
	}
	role := domain.Role(in.Role)
	if !role.Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidRole)
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(domain.MsgNoUser)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	u.Username = in.Username
	u.Role = role
	if err := s.users.Update(ctx, u); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, domain.InvalidInput(domain.MsgUserExists)
		case errors.Is(err, repository.ErrNotFound):
			return nil, domain.NotFound(domain.MsgNoUser)
		default:
			return nil, fmt.Errorf("update user: %w", err)
		}
	}
	return u, nil
}

// Delete removes the user if present. Deleting an unknown id succeeds. The user's
// tasks are not touched.
func (s *UserService) Delete(ctx context.Context, actor domain.Identity, id string) error {
	err := s.users.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.log.Info("user deleted", zap.String("user_id", id), zap.String("by", actor.UserID))
	ev := domain.Event{Type: domain.EventUserDeleted, UserID: id, ActorID: actor.UserID, At: time.Now().UTC()}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish user event failed", zap.String("user_id", id), zap.Error(err))
	}
	return nil
}
