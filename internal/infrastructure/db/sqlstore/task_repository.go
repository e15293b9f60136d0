package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tasktracker/task-api/internal/core/domain"
)

type TaskRepository struct {
	db  DBTX
	now func() time.Time
}

func NewTaskRepository(db DBTX) *TaskRepository {
	return &TaskRepository{db: db, now: time.Now}
}

func (r *TaskRepository) List(ctx context.Context) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, description, created_at FROM task ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, description, created_at FROM task WHERE id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("find task: %w", err)
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, description string) (*domain.Task, error) {
	query := `INSERT INTO task (description, created_at)
		VALUES ($1, $2)
		RETURNING id`

	createdAt := r.now().UTC().Truncate(time.Microsecond)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, description, createdAt).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &domain.Task{ID: id, Description: description, CreatedAt: createdAt}, nil
}

// Delete removes the task with id, reporting domain.ErrTaskNotFound when no
// row matched.
func (r *TaskRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM task WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var (
		t         domain.Task
		createdAt timestamp
	)
	if err := s.Scan(&t.ID, &t.Description, &createdAt); err != nil {
		return nil, err
	}
	t.CreatedAt = createdAt.Time
	return &t, nil
}
