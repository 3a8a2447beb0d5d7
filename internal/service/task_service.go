package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskmanager/internal/domain"
	"taskmanager/internal/events"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TaskInput is the body of create and update requests.
type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
	Username    string `json:"username"`
}

type TaskService struct {
	tasks     repository.TaskStore
	users     repository.UserStore
	publisher events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewTaskService(tasks repository.TaskStore, users repository.UserStore, publisher events.Publisher, log *zap.Logger) *TaskService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TaskService{
		tasks:     tasks,
		users:     users,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// validate checks presence, then status, then priority, then resolves the owner.
func (s *TaskService) validate(ctx context.Context, in TaskInput) (*domain.User, error) {
	if in.Title == "" || in.Description == "" || in.Status == "" ||
		in.Priority == "" || in.DueDate == "" || in.Username == "" {
		return nil, domain.InvalidInput(domain.MsgInvalidInput)
	}
	if !domain.TaskStatus(in.Status).Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidStatus)
	}
	if !domain.TaskPriority(in.Priority).Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidPriority)
	}

	owner, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(domain.MsgCannotFindUser)
		}
		return nil, fmt.Errorf("lookup owner: %w", err)
	}
	return owner, nil
}

func (s *TaskService) Create(ctx context.Context, actor domain.Identity, in TaskInput) (*domain.Task, error) {
	owner, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatus(in.Status),
		Priority:    domain.TaskPriority(in.Priority),
		DueDate:     domain.ParseDueDate(in.DueDate),
		UserID:      owner.ID,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.publish(ctx, domain.EventTaskCreated, actor, t, owner)
	return t, nil
}

// Update replaces every field of an existing task.
func (s *TaskService) Update(ctx context.Context, actor domain.Identity, id string, in TaskInput) (*domain.Task, error) {
	owner, err := s.validate(ctx, in)
	if err != nil {
		return nil, err
	}

	t := &domain.Task{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Status:      domain.TaskStatus(in.Status),
		Priority:    domain.TaskPriority(in.Priority),
		DueDate:     domain.ParseDueDate(in.DueDate),
		UserID:      owner.ID,
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(domain.MsgCannotFindTask)
		}
		return nil, fmt.Errorf("update task: %w", err)
	}

	s.publish(ctx, domain.EventTaskUpdated, actor, t, owner)
	return t, nil
}

func (s *TaskService) List(ctx context.Context) ([]*domain.TaskView, error) {
	return s.populate(ctx)(s.tasks.List(ctx))
}

func (s *TaskService) GetByID(ctx context.Context, id string) (*domain.TaskView, error) {
	t, err := s.tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NotFound(domain.MsgCannotFindTask)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	views, err := s.views(ctx, []*domain.Task{t})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// ListByUser returns an empty list for an unknown user id.
func (s *TaskService) ListByUser(ctx context.Context, userID string) ([]*domain.TaskView, error) {
	tasks, err := s.tasks.ListByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return []*domain.TaskView{}, nil
	}
	return s.populate(ctx)(tasks, err)
}

func (s *TaskService) ListByStatus(ctx context.Context, raw string) ([]*domain.TaskView, error) {
	status := domain.TaskStatus(raw)
	if !status.Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidStatus)
	}
	return s.populate(ctx)(s.tasks.ListByStatus(ctx, status))
}

func (s *TaskService) ListByPriority(ctx context.Context, raw string) ([]*domain.TaskView, error) {
	priority := domain.TaskPriority(raw)
	if !priority.Valid() {
		return nil, domain.InvalidInput(domain.MsgInvalidPriority)
	}
	return s.populate(ctx)(s.tasks.ListByPriority(ctx, priority))
}

func (s *TaskService) ListByDueDate(ctx context.Context) ([]*domain.TaskView, error) {
	return s.populate(ctx)(s.tasks.ListByDueDate(ctx))
}

// populate adapts a store call result into owner-populated views.
func (s *TaskService) populate(ctx context.Context) func([]*domain.Task, error) ([]*domain.TaskView, error) {
	return func(tasks []*domain.Task, err error) ([]*domain.TaskView, error) {
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		return s.views(ctx, tasks)
	}
}

// views attaches owners fetched with a single store call. Tasks whose owner
// was deleted get a nil user.
func (s *TaskService) views(ctx context.Context, tasks []*domain.Task) ([]*domain.TaskView, error) {
	ids := make([]string, 0, len(tasks))
	seen := make(map[string]struct{}, len(tasks))
	for _, t := range tasks {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}

	owners, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("populate owners: %w", err)
	}
	byID := make(map[string]*domain.User, len(owners))
	for _, u := range owners {
		byID[u.ID] = u
	}

	res := make([]*domain.TaskView, 0, len(tasks))
	for _, t := range tasks {
		res = append(res, domain.NewTaskView(t, byID[t.UserID]))
	}
	return res, nil
}

func (s *TaskService) publish(ctx context.Context, typ domain.EventType, actor domain.Identity, t *domain.Task, owner *domain.User) {
	ev := domain.Event{
		Type:    typ,
		Task:    domain.NewTaskView(t, owner),
		ActorID: actor.UserID,
		At:      s.now(),
	}
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.log.Warn("publish task event failed",
			zap.String("type", string(typ)),
			zap.String("task_id", t.ID),
			zap.Error(err),
		)
	}
}
