package repository

import (
	"context"
	"errors"

	"taskmanager/internal/domain"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// UserStore is the credential store.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// Update persists username and role.
	Update(ctx context.Context, u *domain.User) error
	SetSessionToken(ctx context.Context, id, token string) error
	Delete(ctx context.Context, id string) error
}

// TaskStore is the task store.
type TaskStore interface {
	List(ctx context.Context) ([]*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Task, error)
	ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error)
	ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]*domain.Task, error)
	// ListByDueDate returns tasks ordered by due date, tasks without a date last.
	ListByDueDate(ctx context.Context) ([]*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	// Update replaces every mutable field of the task with id t.ID.
	Update(ctx context.Context, t *domain.Task) error
}

// Pinger is implemented by stores that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}
