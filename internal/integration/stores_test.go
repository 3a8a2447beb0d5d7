package integration

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"taskmanager/internal/db"
	"taskmanager/internal/domain"
	"taskmanager/internal/migrations"
	"taskmanager/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func postgresStores(t *testing.T) (repository.UserStore, repository.TaskStore) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, dsn, zap.NewNop())
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := migrations.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return repository.NewUserRepository(pool), repository.NewTaskRepository(pool)
}

func mongoStores(t *testing.T) (repository.UserStore, repository.TaskStore) {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx := context.Background()
	// fresh database per run
	name := "task_manager_it_" + uuid.NewString()[:8]
	client, database, err := db.ConnectMongo(ctx, uri, name, zap.NewNop())
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	if err := repository.EnsureMongoIndexes(ctx, database); err != nil {
		t.Fatalf("indexes: %v", err)
	}
	return repository.NewMongoUserRepository(database), repository.NewMongoTaskRepository(database)
}

func TestPostgresStores(t *testing.T) {
	users, tasks := postgresStores(t)
	exerciseStores(t, users, tasks)
}

func TestMemoryStores(t *testing.T) {
	store := repository.NewMemoryStore()
	exerciseStores(t, store.Users(), store.Tasks())
}

func TestMongoStores(t *testing.T) {
	users, tasks := mongoStores(t)
	exerciseStores(t, users, tasks)
}

// exerciseStores runs the same contract against any backend.
func exerciseStores(t *testing.T, users repository.UserStore, tasks repository.TaskStore) {
	ctx := context.Background()
	suffix := uuid.NewString()[:8]

	alice := &domain.User{ID: uuid.NewString(), Username: "alice_" + suffix, Role: domain.RoleManager, PasswordHash: "h"}
	if err := users.Create(ctx, alice); err != nil {
		t.Fatalf("create user: %v", err)
	}
	dup := &domain.User{ID: uuid.NewString(), Username: alice.Username, Role: domain.RoleTeamMember, PasswordHash: "h"}
	if err := users.Create(ctx, dup); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("duplicate username: %v", err)
	}

	if _, err := users.GetByID(ctx, uuid.NewString()); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("missing user: %v", err)
	}

	if err := users.SetSessionToken(ctx, alice.ID, "tok-"+suffix); err != nil {
		t.Fatalf("set token: %v", err)
	}
	got, err := users.GetBySessionToken(ctx, "tok-"+suffix)
	if err != nil || got.ID != alice.ID || got.Role != domain.RoleManager {
		t.Fatalf("by token: %+v %v", got, err)
	}

	bob := &domain.User{ID: uuid.NewString(), Username: "bob_" + suffix, Role: domain.RoleTeamMember, PasswordHash: "h"}
	if err := users.Create(ctx, bob); err != nil {
		t.Fatalf("create bob: %v", err)
	}
	bob.Username = alice.Username
	if err := users.Update(ctx, bob); !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("rename onto taken name: %v", err)
	}

	owners, err := users.ListByIDs(ctx, []string{alice.ID, bob.ID})
	if err != nil || len(owners) != 2 {
		t.Fatalf("ListByIDs: %d %v", len(owners), err)
	}
	owners, err = users.ListByIDs(ctx, []string{alice.ID, "not-a-uuid"})
	if err != nil || len(owners) != 1 || owners[0].ID != alice.ID {
		t.Fatalf("ListByIDs with malformed id: %d %v", len(owners), err)
	}
	// malformed ids behave like unknown ones on every backend
	none, err := tasks.ListByUser(ctx, "not-a-uuid")
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByUser malformed id: %d %v", len(none), err)
	}
	if _, err := users.GetByID(ctx, "not-a-uuid"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByID malformed id: %v", err)
	}

	due := time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC)
	dated := &domain.Task{ID: uuid.NewString(), Title: "dated", Description: "d", Status: domain.StatusToDo, Priority: domain.PriorityHigh, DueDate: due, UserID: alice.ID}
	undated := &domain.Task{ID: uuid.NewString(), Title: "undated", Description: "d", Status: domain.StatusToDo, Priority: domain.PriorityLow, UserID: bob.ID}
	for _, task := range []*domain.Task{undated, dated} {
		if err := tasks.Create(ctx, task); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	loaded, err := tasks.GetByID(ctx, dated.ID)
	if err != nil || !loaded.DueDate.Equal(due) || loaded.UserID != alice.ID {
		t.Fatalf("GetByID: %+v %v", loaded, err)
	}
	loaded, _ = tasks.GetByID(ctx, undated.ID)
	if !loaded.DueDate.IsZero() {
		t.Fatalf("undated task came back with %v", loaded.DueDate)
	}

	byDate, err := tasks.ListByDueDate(ctx)
	if err != nil {
		t.Fatalf("ListByDueDate: %v", err)
	}
	posDated, posUndated := -1, -1
	for i, task := range byDate {
		switch task.ID {
		case dated.ID:
			posDated = i
		case undated.ID:
			posUndated = i
		}
	}
	if posDated < 0 || posUndated < 0 || posDated > posUndated {
		t.Fatalf("undated task should sort last: dated=%d undated=%d", posDated, posUndated)
	}

	dated.Status = domain.StatusDone
	if err := tasks.Update(ctx, dated); err != nil {
		t.Fatalf("update: %v", err)
	}
	done, _ := tasks.ListByStatus(ctx, domain.StatusDone)
	if !containsTask(done, dated.ID) {
		t.Fatal("updated task missing from Done list")
	}
	missing := &domain.Task{ID: uuid.NewString(), Status: domain.StatusToDo, Priority: domain.PriorityLow, UserID: alice.ID}
	if err := tasks.Update(ctx, missing); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("update missing: %v", err)
	}

	if err := users.Delete(ctx, bob.ID); err != nil {
		t.Fatalf("delete bob: %v", err)
	}
	orphans, _ := tasks.ListByUser(ctx, bob.ID)
	if !containsTask(orphans, undated.ID) {
		t.Fatal("deleting a user removed their tasks")
	}
}

func containsTask(tasks []*domain.Task, id string) bool {
	for _, task := range tasks {
		if task.ID == id {
			return true
		}
	}
	return false
}
