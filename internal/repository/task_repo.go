package repository

import (
	"context"
	"errors"
	"time"

	"taskmanager/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = `id, title, description, status, priority, due_date, user_id, created_at`

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY created_at`)
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, mapPgError(err)
	}
	return t, nil
}

// ListByUser returns no tasks for an id that is not a uuid.
func (r *TaskRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	res, err := r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY created_at`, userID)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return res, err
}

func (r *TaskRepository) ListByStatus(ctx context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE status = $1 ORDER BY created_at`, string(status))
}

func (r *TaskRepository) ListByPriority(ctx context.Context, priority domain.TaskPriority) ([]*domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks WHERE priority = $1 ORDER BY created_at`, string(priority))
}

func (r *TaskRepository) ListByDueDate(ctx context.Context) ([]*domain.Task, error) {
	return r.query(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY due_date ASC NULLS LAST, created_at`)
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, user_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		t.ID, t.Title, t.Description, string(t.Status), string(t.Priority), nullableTime(t.DueDate), t.UserID,
	).Scan(&t.CreatedAt)
	return mapPgError(err)
}

func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5, user_id = $6
		 WHERE id = $7`,
		t.Title, t.Description, string(t.Status), string(t.Priority), nullableTime(t.DueDate), t.UserID, t.ID,
	)
	if err != nil {
		return mapPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *TaskRepository) query(ctx context.Context, sql string, args ...any) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, mapPgError(err)
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, mapPgError(err)
		}
		res = append(res, t)
	}
	// server errors such as 22P02 only surface once the rows are read
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err)
	}
	return res, nil
}

func scanTask(row pgx.Row) (*domain.Task, error) {
	var (
		t        domain.Task
		status   string
		priority string
		due      *time.Time
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &priority, &due, &t.UserID, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.Status = domain.TaskStatus(status)
	t.Priority = domain.TaskPriority(priority)
	if due != nil {
		t.DueDate = due.UTC()
	}
	return &t, nil
}

// Нулевая дата хранится как NULL.
func nullableTime(ts time.Time) *time.Time {
	if ts.IsZero() {
		return nil
	}
	return &ts
}
