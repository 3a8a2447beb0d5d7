package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskmanager/internal/domain"
)

func TestMemoryUsersUniqueUsername(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()

	if err := users.Create(ctx, &domain.User{ID: "u1", Username: "alice", Role: domain.RoleManager}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := users.Create(ctx, &domain.User{ID: "u2", Username: "alice", Role: domain.RoleTeamMember})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	if err := users.Create(ctx, &domain.User{ID: "u2", Username: "bob"}); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	bob, _ := users.GetByID(ctx, "u2")
	bob.Username = "alice"
	if err := users.Update(ctx, bob); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("rename onto taken username: %v", err)
	}
}

func TestMemoryUsersSessionToken(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()
	_ = users.Create(ctx, &domain.User{ID: "u1", Username: "alice"})

	if _, err := users.GetBySessionToken(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty token should not match: %v", err)
	}
	if err := users.SetSessionToken(ctx, "u1", "tok"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	u, err := users.GetBySessionToken(ctx, "tok")
	if err != nil || u.ID != "u1" {
		t.Fatalf("lookup by token: %v %+v", err, u)
	}
	if err := users.SetSessionToken(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryUsersReturnCopies(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()
	_ = users.Create(ctx, &domain.User{ID: "u1", Username: "alice"})

	u, _ := users.GetByID(ctx, "u1")
	u.Username = "mutated"

	again, _ := users.GetByID(ctx, "u1")
	if again.Username != "alice" {
		t.Fatalf("store leaked internal pointer")
	}
}

func TestMemoryUsersListByIDsSkipsMissing(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryStore().Users()
	_ = users.Create(ctx, &domain.User{ID: "u1", Username: "alice"})
	_ = users.Create(ctx, &domain.User{ID: "u2", Username: "bob"})

	got, err := users.ListByIDs(ctx, []string{"u2", "gone", "u2", "u1"})
	if err != nil {
		t.Fatalf("ListByIDs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 users, got %d", len(got))
	}
}

func TestMemoryDeleteUserKeepsTasks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Users().Create(ctx, &domain.User{ID: "u1", Username: "alice"})
	_ = store.Tasks().Create(ctx, &domain.Task{ID: "t1", Title: "x", UserID: "u1"})

	if err := store.Users().Delete(ctx, "u1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Users().Delete(ctx, "u1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	tasks, _ := store.Tasks().ListByUser(ctx, "u1")
	if len(tasks) != 1 {
		t.Fatalf("orphaned task should remain, got %d", len(tasks))
	}
}

func TestMemoryTaskFilters(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	seed := []*domain.Task{
		{ID: "a", Status: domain.StatusToDo, Priority: domain.PriorityHigh, UserID: "u1"},
		{ID: "b", Status: domain.StatusDone, Priority: domain.PriorityLow, UserID: "u2"},
		{ID: "c", Status: domain.StatusToDo, Priority: domain.PriorityLow, UserID: "u1"},
	}
	for _, task := range seed {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create %s: %v", task.ID, err)
		}
	}

	byStatus, _ := tasks.ListByStatus(ctx, domain.StatusToDo)
	if len(byStatus) != 2 || byStatus[0].ID != "a" || byStatus[1].ID != "c" {
		t.Fatalf("ListByStatus = %v", ids(byStatus))
	}
	byPriority, _ := tasks.ListByPriority(ctx, domain.PriorityLow)
	if len(byPriority) != 2 {
		t.Fatalf("ListByPriority = %v", ids(byPriority))
	}
	byUser, _ := tasks.ListByUser(ctx, "u2")
	if len(byUser) != 1 || byUser[0].ID != "b" {
		t.Fatalf("ListByUser = %v", ids(byUser))
	}
	none, _ := tasks.ListByStatus(ctx, domain.StatusInProgress)
	if len(none) != 0 {
		t.Fatalf("expected no tasks, got %v", ids(none))
	}
}

func TestMemoryListByDueDate(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	day := func(d int) time.Time { return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC) }

	_ = tasks.Create(ctx, &domain.Task{ID: "late", DueDate: day(20)})
	_ = tasks.Create(ctx, &domain.Task{ID: "nodate"})
	_ = tasks.Create(ctx, &domain.Task{ID: "early", DueDate: day(1)})
	_ = tasks.Create(ctx, &domain.Task{ID: "mid", DueDate: day(10)})

	got, err := tasks.ListByDueDate(ctx)
	if err != nil {
		t.Fatalf("ListByDueDate: %v", err)
	}
	want := []string{"early", "mid", "late", "nodate"}
	if g := ids(got); len(g) != len(want) {
		t.Fatalf("got %v", g)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %s, want %s (%v)", i, got[i].ID, id, ids(got))
		}
	}
}

func TestMemoryTaskUpdate(t *testing.T) {
	ctx := context.Background()
	tasks := NewMemoryStore().Tasks()
	_ = tasks.Create(ctx, &domain.Task{ID: "t1", Title: "old", Status: domain.StatusToDo})

	if err := tasks.Update(ctx, &domain.Task{ID: "t1", Title: "new", Status: domain.StatusDone}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := tasks.GetByID(ctx, "t1")
	if got.Title != "new" || got.Status != domain.StatusDone || got.CreatedAt.IsZero() {
		t.Fatalf("unexpected task after update: %+v", got)
	}
	if err := tasks.Update(ctx, &domain.Task{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func ids(tasks []*domain.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}
