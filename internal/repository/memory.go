package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"taskmanager/internal/domain"
)

// MemoryStore keeps users and tasks in process memory. Used for tests and
// STORE_DRIVER=memory.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	tasks     map[string]*domain.Task
	userOrder []string
	taskOrder []string
	now       func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*domain.User),
		tasks: make(map[string]*domain.Task),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Users and Tasks expose the store through the narrow interfaces.
func (s *MemoryStore) Users() UserStore { return memoryUsers{s} }
func (s *MemoryStore) Tasks() TaskStore { return memoryTasks{s} }

func (s *MemoryStore) Ping(context.Context) error { return nil }

type memoryUsers struct{ s *MemoryStore }

func (m memoryUsers) Ping(ctx context.Context) error { return m.s.Ping(ctx) }

func (m memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	u, ok := m.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m memoryUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, id := range m.s.userOrder {
		if u := m.s.users[id]; u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) GetBySessionToken(_ context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, id := range m.s.userOrder {
		if u := m.s.users[id]; u.SessionToken == token {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryUsers) ListByIDs(_ context.Context, ids []string) ([]*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	seen := make(map[string]struct{}, len(ids))
	var res []*domain.User
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if u, ok := m.s.users[id]; ok {
			cp := *u
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (m memoryUsers) List(context.Context) ([]*domain.User, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	res := make([]*domain.User, 0, len(m.s.userOrder))
	for _, id := range m.s.userOrder {
		cp := *m.s.users[id]
		res = append(res, &cp)
	}
	return res, nil
}

func (m memoryUsers) Create(_ context.Context, u *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[u.ID]; ok {
		return ErrDuplicate
	}
	for _, existing := range m.s.users {
		if existing.Username == u.Username {
			return ErrDuplicate
		}
	}
	u.CreatedAt = m.s.now()
	cp := *u
	m.s.users[u.ID] = &cp
	m.s.userOrder = append(m.s.userOrder, u.ID)
	return nil
}

func (m memoryUsers) Update(_ context.Context, u *domain.User) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cur, ok := m.s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, other := range m.s.users {
		if id != u.ID && other.Username == u.Username {
			return ErrDuplicate
		}
	}
	cur.Username = u.Username
	cur.Role = u.Role
	return nil
}

func (m memoryUsers) SetSessionToken(_ context.Context, id, token string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	u, ok := m.s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.SessionToken = token
	return nil
}

func (m memoryUsers) Delete(_ context.Context, id string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.users[id]; !ok {
		return ErrNotFound
	}
	delete(m.s.users, id)
	m.s.userOrder = removeID(m.s.userOrder, id)
	return nil
}

type memoryTasks struct{ s *MemoryStore }

func (m memoryTasks) List(context.Context) ([]*domain.Task, error) {
	return m.filter(func(*domain.Task) bool { return true }), nil
}

func (m memoryTasks) GetByID(_ context.Context, id string) (*domain.Task, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	t, ok := m.s.tasks[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m memoryTasks) ListByUser(_ context.Context, userID string) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.UserID == userID }), nil
}

func (m memoryTasks) ListByStatus(_ context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.Status == status }), nil
}

func (m memoryTasks) ListByPriority(_ context.Context, priority domain.TaskPriority) ([]*domain.Task, error) {
	return m.filter(func(t *domain.Task) bool { return t.Priority == priority }), nil
}

func (m memoryTasks) ListByDueDate(context.Context) ([]*domain.Task, error) {
	res := m.filter(func(*domain.Task) bool { return true })
	sort.SliceStable(res, func(i, j int) bool {
		a, b := res[i].DueDate, res[j].DueDate
		switch {
		case a.IsZero():
			return false
		case b.IsZero():
			return true
		default:
			return a.Before(b)
		}
	})
	return res, nil
}

func (m memoryTasks) Create(_ context.Context, t *domain.Task) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if _, ok := m.s.tasks[t.ID]; ok {
		return ErrDuplicate
	}
	t.CreatedAt = m.s.now()
	cp := *t
	m.s.tasks[t.ID] = &cp
	m.s.taskOrder = append(m.s.taskOrder, t.ID)
	return nil
}

func (m memoryTasks) Update(_ context.Context, t *domain.Task) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	cur, ok := m.s.tasks[t.ID]
	if !ok {
		return ErrNotFound
	}
	createdAt := cur.CreatedAt
	*cur = *t
	cur.CreatedAt = createdAt
	return nil
}

func (m memoryTasks) filter(keep func(*domain.Task) bool) []*domain.Task {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	var res []*domain.Task
	for _, id := range m.s.taskOrder {
		t := m.s.tasks[id]
		if keep(t) {
			cp := *t
			res = append(res, &cp)
		}
	}
	return res
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
