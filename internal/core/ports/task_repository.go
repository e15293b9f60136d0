package ports

import (
	"context"

	"github.com/tasktracker/task-api/internal/core/domain"
)

// TaskRepository is the Task Store.
type TaskRepository interface {
	List(ctx context.Context) ([]*domain.Task, error)
	// FindByID returns domain.ErrTaskNotFound when no task matches.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	Create(ctx context.Context, description string) (*domain.Task, error)
	// Delete returns domain.ErrTaskNotFound when no row was removed.
	Delete(ctx context.Context, id int64) error
}
